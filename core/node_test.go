package core

import (
	"errors"
	"math/big"
	"testing"

	"microlend/crypto"
	"microlend/native/access"
	"microlend/native/assets"
	"microlend/native/common"
	"microlend/native/lending"
)

func makeAddress(fill byte) crypto.Address {
	buf := make([]byte, 20)
	for i := range buf {
		buf[i] = fill
	}
	return crypto.NewAddress(crypto.LendPrefix, buf)
}

func newTestNode(t *testing.T) (*Node, crypto.Address) {
	t.Helper()
	owner := makeAddress(0x01)
	node, err := NewNode(Genesis{Owner: owner, Params: lending.DefaultRiskParameters()})
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return node, owner
}

func TestLoanLifecycleEndToEnd(t *testing.T) {
	node, owner := newTestNode(t)
	borrower := makeAddress(0x20)
	liquidator := makeAddress(0x40)

	if err := node.AddCollateralAsset(owner, "STX"); err != nil {
		t.Fatalf("add asset: %v", err)
	}
	if err := node.UpdateAssetPrice(owner, "STX", big.NewInt(100_000_000)); err != nil {
		t.Fatalf("update price: %v", err)
	}

	id, err := node.CreateLoanRequest(borrower, big.NewInt(1_000_000_000), big.NewInt(3_000_000_000), "STX", 144_000, 1000)
	if err != nil {
		t.Fatalf("create loan: %v", err)
	}
	if id != 1 {
		t.Fatalf("expected loan id 1, got %d", id)
	}
	loan, ok, err := node.GetLoan(id)
	if err != nil || !ok {
		t.Fatalf("get loan: ok=%v err=%v", ok, err)
	}
	if loan.Status != lending.StatusPending {
		t.Fatalf("expected PENDING, got %s", loan.Status)
	}

	if err := node.ActivateLoan(owner, id); err != nil {
		t.Fatalf("activate: %v", err)
	}
	loan, _, _ = node.GetLoan(id)
	if loan.Status != lending.StatusActive {
		t.Fatalf("expected ACTIVE, got %s", loan.Status)
	}

	due, err := node.CalculateTotalDue(id)
	if err != nil {
		t.Fatalf("total due: %v", err)
	}
	if due.Cmp(big.NewInt(1_100_000_000)) != 0 {
		t.Fatalf("expected due 1100000000, got %s", due)
	}

	// Not defaulted until strictly past the duration.
	node.AdvanceBlocks(144_000)
	if err := node.LiquidateLoan(liquidator, id); !errors.Is(err, lending.ErrLoanNotDefaulted) {
		t.Fatalf("expected LoanNotDefaulted at boundary, got %v", err)
	}
	node.AdvanceBlocks(1)
	if err := node.LiquidateLoan(liquidator, id); err != nil {
		t.Fatalf("liquidate: %v", err)
	}
	loan, _, _ = node.GetLoan(id)
	if loan.Status != lending.StatusLiquidated {
		t.Fatalf("expected LIQUIDATED, got %s", loan.Status)
	}

	record, ok, err := node.GetReputation(borrower)
	if err != nil || !ok {
		t.Fatalf("get reputation: ok=%v err=%v", ok, err)
	}
	if record.Defaults != 1 || record.Score != 80 {
		t.Fatalf("expected defaults=1 score=80, got defaults=%d score=%d", record.Defaults, record.Score)
	}

	// Due is flat: elapsed blocks never change it.
	due, err = node.CalculateTotalDue(id)
	if err != nil || due.Cmp(big.NewInt(1_100_000_000)) != 0 {
		t.Fatalf("expected flat due after expiry, got %s err=%v", due, err)
	}
}

func TestRepaymentCreditsReputation(t *testing.T) {
	node, owner := newTestNode(t)
	borrower := makeAddress(0x20)

	if err := node.AddCollateralAsset(owner, "STX"); err != nil {
		t.Fatalf("add asset: %v", err)
	}
	if err := node.UpdateAssetPrice(owner, "STX", big.NewInt(100_000_000)); err != nil {
		t.Fatalf("update price: %v", err)
	}
	id, err := node.CreateLoanRequest(borrower, big.NewInt(1_000_000), big.NewInt(2_000_000), "STX", 1_440, 500)
	if err != nil {
		t.Fatalf("create loan: %v", err)
	}
	if err := node.ActivateLoan(owner, id); err != nil {
		t.Fatalf("activate: %v", err)
	}
	due, err := node.RepayLoan(borrower, id)
	if err != nil {
		t.Fatalf("repay: %v", err)
	}
	if due.Cmp(big.NewInt(1_050_000)) != 0 {
		t.Fatalf("expected due 1050000, got %s", due)
	}
	record, ok, err := node.GetReputation(borrower)
	if err != nil || !ok {
		t.Fatalf("get reputation: ok=%v err=%v", ok, err)
	}
	if record.CompletedLoans != 1 || record.Score != 100 {
		t.Fatalf("expected completions=1 score=100, got %+v", record)
	}
}

func TestEmergencyStopGatesOnlyNewLoans(t *testing.T) {
	node, owner := newTestNode(t)
	borrower := makeAddress(0x20)

	if err := node.AddCollateralAsset(owner, "STX"); err != nil {
		t.Fatalf("add asset: %v", err)
	}
	if err := node.UpdateAssetPrice(owner, "STX", big.NewInt(100_000_000)); err != nil {
		t.Fatalf("update price: %v", err)
	}
	id, err := node.CreateLoanRequest(borrower, big.NewInt(1_000_000), big.NewInt(2_000_000), "STX", 1_440, 500)
	if err != nil {
		t.Fatalf("create loan: %v", err)
	}

	halted, err := node.ToggleHalt(owner)
	if err != nil || !halted {
		t.Fatalf("toggle halt: halted=%v err=%v", halted, err)
	}
	if !node.GetStatus().Halted {
		t.Fatalf("status does not reflect halt")
	}

	// Valid parameters still fail while halted.
	if _, err := node.CreateLoanRequest(borrower, big.NewInt(1_000_000), big.NewInt(2_000_000), "STX", 1_440, 500); !errors.Is(err, common.ErrHalted) {
		t.Fatalf("expected halt error, got %v", err)
	}

	// Existing loans keep moving.
	if err := node.ActivateLoan(owner, id); err != nil {
		t.Fatalf("activate under halt: %v", err)
	}

	halted, err = node.ToggleHalt(owner)
	if err != nil || halted {
		t.Fatalf("release halt: halted=%v err=%v", halted, err)
	}
	if _, err := node.CreateLoanRequest(borrower, big.NewInt(1_000_000), big.NewInt(2_000_000), "STX", 1_440, 500); err != nil {
		t.Fatalf("create loan after release: %v", err)
	}
}

func TestOwnershipTransferIsImmediate(t *testing.T) {
	node, owner := newTestNode(t)
	successor := makeAddress(0x02)

	if err := node.SetOwner(owner, successor); err != nil {
		t.Fatalf("set owner: %v", err)
	}
	if err := node.AddCollateralAsset(owner, "STX"); !errors.Is(err, access.ErrNotAuthorized) {
		t.Fatalf("previous owner retained privileges: %v", err)
	}
	if err := node.AddCollateralAsset(successor, "STX"); err != nil {
		t.Fatalf("new owner rejected: %v", err)
	}
	if _, err := node.ToggleHalt(owner); !errors.Is(err, access.ErrNotAuthorized) {
		t.Fatalf("previous owner can still toggle halt: %v", err)
	}
}

func TestFailedRequestsLeaveNoTrace(t *testing.T) {
	node, owner := newTestNode(t)
	borrower := makeAddress(0x20)

	if err := node.AddCollateralAsset(owner, "STX"); err != nil {
		t.Fatalf("add asset: %v", err)
	}
	if err := node.UpdateAssetPrice(owner, "STX", big.NewInt(100_000_000)); err != nil {
		t.Fatalf("update price: %v", err)
	}

	if _, err := node.CreateLoanRequest(borrower, big.NewInt(1_000_000), big.NewInt(1), "STX", 1_440, 500); !errors.Is(err, lending.ErrInsufficientCollateral) {
		t.Fatalf("expected collateral failure, got %v", err)
	}
	status := node.GetStatus()
	if status.NextLoanID != 1 {
		t.Fatalf("failed request consumed an id: next=%d", status.NextLoanID)
	}
	if _, ok, _ := node.GetLoan(1); ok {
		t.Fatalf("failed request stored a loan")
	}
}

func TestEventFeed(t *testing.T) {
	node, owner := newTestNode(t)
	borrower := makeAddress(0x20)

	if err := node.AddCollateralAsset(owner, "STX"); err != nil {
		t.Fatalf("add asset: %v", err)
	}
	if err := node.UpdateAssetPrice(owner, "STX", big.NewInt(100_000_000)); err != nil {
		t.Fatalf("update price: %v", err)
	}
	if _, err := node.CreateLoanRequest(borrower, big.NewInt(1_000_000), big.NewInt(2_000_000), "STX", 1_440, 500); err != nil {
		t.Fatalf("create loan: %v", err)
	}

	events := node.Events(0)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Type != assets.EventTypeAssetListed || events[2].Type != lending.EventTypeLoanCreated {
		t.Fatalf("unexpected event order: %s, %s", events[0].Type, events[2].Type)
	}
	if got := node.Events(3); len(got) != 0 {
		t.Fatalf("expected empty tail, got %d", len(got))
	}
}
