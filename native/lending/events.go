package lending

import (
	"math/big"
	"strconv"

	"microlend/core/types"
	"microlend/crypto"
)

const (
	// EventTypeLoanCreated is emitted when a loan request is accepted.
	EventTypeLoanCreated = "lending.loanCreated"
	// EventTypeLoanActivated is emitted when the administrator activates a
	// pending loan.
	EventTypeLoanActivated = "lending.loanActivated"
	// EventTypeLoanRepaid is emitted when a borrower settles an active loan.
	EventTypeLoanRepaid = "lending.loanRepaid"
	// EventTypeLoanLiquidated is emitted when an expired loan is liquidated.
	EventTypeLoanLiquidated = "lending.loanLiquidated"
)

func loanAttributes(loan *Loan) map[string]string {
	attrs := make(map[string]string)
	if loan == nil {
		return attrs
	}
	attrs["loanId"] = strconv.FormatUint(loan.ID, 10)
	attrs["borrower"] = loan.Borrower.String()
	attrs["status"] = loan.Status.String()
	if loan.Amount != nil {
		attrs["amount"] = loan.Amount.String()
	}
	if loan.CollateralAmount != nil {
		attrs["collateralAmount"] = loan.CollateralAmount.String()
	}
	attrs["collateralAsset"] = loan.CollateralAsset
	attrs["durationBlocks"] = strconv.FormatUint(loan.DurationBlocks, 10)
	attrs["interestRateBps"] = strconv.FormatUint(loan.InterestRateBps, 10)
	return attrs
}

// NewLoanCreatedEvent returns the canonical payload for an accepted request.
func NewLoanCreatedEvent(loan *Loan) *types.Event {
	attrs := loanAttributes(loan)
	if loan != nil {
		attrs["createdAtBlock"] = strconv.FormatUint(loan.CreatedAtBlock, 10)
	}
	return &types.Event{Type: EventTypeLoanCreated, Attributes: attrs}
}

// NewLoanActivatedEvent returns the canonical payload for an activation.
func NewLoanActivatedEvent(loan *Loan) *types.Event {
	attrs := loanAttributes(loan)
	if loan != nil {
		attrs["activatedAtBlock"] = strconv.FormatUint(loan.ActivatedAtBlock, 10)
	}
	return &types.Event{Type: EventTypeLoanActivated, Attributes: attrs}
}

// NewLoanRepaidEvent returns the canonical payload for a repayment.
func NewLoanRepaidEvent(loan *Loan, due *big.Int) *types.Event {
	attrs := loanAttributes(loan)
	if due != nil {
		attrs["amountDue"] = due.String()
	}
	return &types.Event{Type: EventTypeLoanRepaid, Attributes: attrs}
}

// NewLoanLiquidatedEvent returns the canonical payload for a liquidation.
func NewLoanLiquidatedEvent(loan *Loan, caller crypto.Address) *types.Event {
	attrs := loanAttributes(loan)
	attrs["liquidator"] = caller.String()
	return &types.Event{Type: EventTypeLoanLiquidated, Attributes: attrs}
}
