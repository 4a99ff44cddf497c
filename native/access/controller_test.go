package access

import (
	"errors"
	"testing"

	"microlend/crypto"
)

type mockState struct {
	owner  crypto.Address
	halted bool
}

func (m *mockState) Owner() crypto.Address        { return m.owner }
func (m *mockState) SetOwner(addr crypto.Address) { m.owner = addr }
func (m *mockState) Halted() bool                 { return m.halted }
func (m *mockState) SetHalted(halted bool)        { m.halted = halted }

func makeAddress(fill byte) crypto.Address {
	buf := make([]byte, 20)
	for i := range buf {
		buf[i] = fill
	}
	return crypto.NewAddress(crypto.LendPrefix, buf)
}

func TestRequireOwner(t *testing.T) {
	owner := makeAddress(0x01)
	controller := NewController(&mockState{owner: owner})

	if err := controller.RequireOwner(owner); err != nil {
		t.Fatalf("owner rejected: %v", err)
	}
	if err := controller.RequireOwner(makeAddress(0x02)); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestTransferOwnerIsImmediate(t *testing.T) {
	owner := makeAddress(0x01)
	successor := makeAddress(0x02)
	controller := NewController(&mockState{owner: owner})

	if err := controller.TransferOwner(successor, successor); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for non-owner transfer, got %v", err)
	}
	if err := controller.TransferOwner(owner, successor); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if err := controller.RequireOwner(owner); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("previous owner retained privileges")
	}
	if err := controller.RequireOwner(successor); err != nil {
		t.Fatalf("new owner rejected: %v", err)
	}
}

func TestToggleHalt(t *testing.T) {
	owner := makeAddress(0x01)
	controller := NewController(&mockState{owner: owner})

	if _, err := controller.ToggleHalt(makeAddress(0x02)); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for non-owner toggle, got %v", err)
	}
	halted, err := controller.ToggleHalt(owner)
	if err != nil || !halted {
		t.Fatalf("expected halt engaged, got halted=%v err=%v", halted, err)
	}
	if !controller.IsHalted() {
		t.Fatalf("halt view out of sync")
	}
	halted, err = controller.ToggleHalt(owner)
	if err != nil || halted {
		t.Fatalf("expected halt released, got halted=%v err=%v", halted, err)
	}
}
