package lending

import "errors"

var (
	errNilState = errors.New("lending engine: state not configured")

	// ErrInvalidAmount marks requests carrying a non-positive amount or
	// collateral amount.
	ErrInvalidAmount = errors.New("lending engine: amount must be positive")
	// ErrInvalidCollateralAsset marks requests posting collateral in a symbol
	// that is not listed or has no posted price.
	ErrInvalidCollateralAsset = errors.New("lending engine: invalid collateral asset")
	// ErrInsufficientCollateral marks requests below the minimum
	// collateralization ratio.
	ErrInsufficientCollateral = errors.New("lending engine: insufficient collateral")
	// ErrInvalidDuration marks requests outside the configured term bounds.
	ErrInvalidDuration = errors.New("lending engine: duration outside allowed bounds")
	// ErrInvalidInterestRate marks requests above the configured rate cap.
	ErrInvalidInterestRate = errors.New("lending engine: interest rate exceeds cap")
	// ErrLoanNotFound marks operations against an unknown loan id.
	ErrLoanNotFound = errors.New("lending engine: loan not found")
	// ErrLoanAlreadyActive marks activation attempts on a loan that has left
	// the pending state.
	ErrLoanAlreadyActive = errors.New("lending engine: loan already activated")
	// ErrNotBorrower marks repayment attempts from an identity other than the
	// loan's borrower.
	ErrNotBorrower = errors.New("lending engine: caller is not the borrower")
	// ErrLoanNotActive marks repayment attempts on a loan that is not active.
	ErrLoanNotActive = errors.New("lending engine: loan not active")
	// ErrLoanNotDefaulted marks liquidation attempts before the loan term has
	// strictly elapsed.
	ErrLoanNotDefaulted = errors.New("lending engine: loan not defaulted")
)
