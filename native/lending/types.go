package lending

import (
	"math/big"

	"microlend/crypto"
)

// LoanStatus tracks a loan through its lifecycle. Transitions only move
// forward: Pending -> Active -> {Repaid, Liquidated}.
type LoanStatus uint8

const (
	StatusPending LoanStatus = iota
	StatusActive
	StatusRepaid
	StatusLiquidated
)

// String renders the canonical status label used in events and RPC payloads.
func (s LoanStatus) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusActive:
		return "ACTIVE"
	case StatusRepaid:
		return "REPAID"
	case StatusLiquidated:
		return "LIQUIDATED"
	default:
		return "UNKNOWN"
	}
}

// Loan is a single ledger record. Loans are append-only, keyed by a densely
// increasing id starting at 1, and are never deleted. Amounts are denominated
// in micro-units.
type Loan struct {
	ID               uint64         `json:"id"`
	Borrower         crypto.Address `json:"borrower"`
	Amount           *big.Int       `json:"amount"`
	CollateralAmount *big.Int       `json:"collateralAmount"`
	CollateralAsset  string         `json:"collateralAsset"`
	DurationBlocks   uint64         `json:"durationBlocks"`
	InterestRateBps  uint64         `json:"interestRateBps"`
	Status           LoanStatus     `json:"status"`
	CreatedAtBlock   uint64         `json:"createdAtBlock"`
	// ActivatedAtBlock is only meaningful once Status has left Pending.
	ActivatedAtBlock uint64 `json:"activatedAtBlock,omitempty"`
}

// Clone returns a deep copy of the loan record.
func (l *Loan) Clone() *Loan {
	if l == nil {
		return nil
	}
	clone := *l
	if l.Amount != nil {
		clone.Amount = new(big.Int).Set(l.Amount)
	}
	if l.CollateralAmount != nil {
		clone.CollateralAmount = new(big.Int).Set(l.CollateralAmount)
	}
	return &clone
}
