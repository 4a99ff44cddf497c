package access

import (
	"strconv"

	"microlend/core/types"
	"microlend/crypto"
)

const (
	// EventTypeOwnerTransferred is emitted when administrator rights move to
	// a new identity.
	EventTypeOwnerTransferred = "access.ownerTransferred"
	// EventTypeHaltToggled is emitted when the emergency stop flips.
	EventTypeHaltToggled = "access.haltToggled"
)

// NewOwnerTransferredEvent returns the canonical payload for an ownership
// transfer.
func NewOwnerTransferredEvent(previous, next crypto.Address) *types.Event {
	return &types.Event{Type: EventTypeOwnerTransferred, Attributes: map[string]string{
		"previousOwner": previous.String(),
		"newOwner":      next.String(),
	}}
}

// NewHaltToggledEvent returns the canonical payload for an emergency-stop
// toggle.
func NewHaltToggledEvent(halted bool) *types.Event {
	return &types.Event{Type: EventTypeHaltToggled, Attributes: map[string]string{
		"halted": strconv.FormatBool(halted),
	}}
}
