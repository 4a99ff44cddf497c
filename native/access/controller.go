package access

import (
	"errors"

	"microlend/crypto"
)

var (
	errNilState = errors.New("access controller: state not configured")

	// ErrNotAuthorized marks privileged calls from a non-owner identity.
	ErrNotAuthorized = errors.New("access controller: caller is not the owner")
)

// controllerState abstracts the subset of ledger state owned by the access
// controller: the administrator identity and the emergency-stop flag.
type controllerState interface {
	Owner() crypto.Address
	SetOwner(addr crypto.Address)
	Halted() bool
	SetHalted(halted bool)
}

// Controller gates every privileged operation in the ledger. All other
// modules consult it before mutating state; an authorization failure
// short-circuits the call with no state change anywhere.
type Controller struct {
	state controllerState
}

// NewController constructs a controller bound to the provided state.
func NewController(state controllerState) *Controller {
	return &Controller{state: state}
}

// Owner returns the current administrator identity.
func (c *Controller) Owner() crypto.Address {
	if c == nil || c.state == nil {
		return crypto.Address{}
	}
	return c.state.Owner()
}

// IsOwner reports whether the caller holds administrator rights.
func (c *Controller) IsOwner(caller crypto.Address) bool {
	if c == nil || c.state == nil {
		return false
	}
	owner := c.state.Owner()
	return !owner.IsZero() && owner.Equal(caller)
}

// RequireOwner fails with ErrNotAuthorized unless the caller is the current
// administrator. Authorization runs before any other validation.
func (c *Controller) RequireOwner(caller crypto.Address) error {
	if c == nil || c.state == nil {
		return errNilState
	}
	if !c.IsOwner(caller) {
		return ErrNotAuthorized
	}
	return nil
}

// TransferOwner replaces the administrator identity. Effective immediately:
// the previous owner loses all privileges with this call.
func (c *Controller) TransferOwner(caller, newOwner crypto.Address) error {
	if err := c.RequireOwner(caller); err != nil {
		return err
	}
	c.state.SetOwner(newOwner)
	return nil
}

// ToggleHalt flips the emergency-stop flag and returns its new value. Existing
// loans are unaffected; only new loan creation is gated by the flag.
func (c *Controller) ToggleHalt(caller crypto.Address) (bool, error) {
	if err := c.RequireOwner(caller); err != nil {
		return false, err
	}
	next := !c.state.Halted()
	c.state.SetHalted(next)
	return next, nil
}

// IsHalted satisfies common.HaltView for guarded modules.
func (c *Controller) IsHalted() bool {
	if c == nil || c.state == nil {
		return false
	}
	return c.state.Halted()
}
