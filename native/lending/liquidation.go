package lending

import "microlend/crypto"

// Defaulted reports whether the loan term has strictly elapsed at the given
// height. A loan is liquidatable only once currentBlock - activatedAtBlock
// exceeds the agreed duration: at the exact boundary block the borrower still
// has time.
func (l *Loan) Defaulted(currentBlock uint64) bool {
	if l == nil || l.Status != StatusActive {
		return false
	}
	if currentBlock <= l.ActivatedAtBlock {
		return false
	}
	return currentBlock-l.ActivatedAtBlock > l.DurationBlocks
}

// LiquidateLoan drives an expired, unpaid active loan to its liquidated
// terminal state and penalizes the borrower's reputation. Liquidation is open
// to any caller: it only enforces a fact already true on the ledger, so the
// caller identity is recorded in the event but never gates the transition.
func (e *Engine) LiquidateLoan(caller crypto.Address, id uint64) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	loan, err := e.state.GetLoan(id)
	if err != nil {
		return err
	}
	if loan == nil {
		return ErrLoanNotFound
	}
	if !loan.Defaulted(e.blockHeight) {
		return ErrLoanNotDefaulted
	}
	// The reputation write is the only fallible mutation on this path, so it
	// runs first: if it fails the loan record is untouched and the call can
	// be retried.
	if e.reputation != nil {
		if err := e.reputation.RecordDefault(loan.Borrower); err != nil {
			return err
		}
	}
	loan.Status = StatusLiquidated
	if err := e.state.PutLoan(loan); err != nil {
		return err
	}
	e.emitEvent(NewLoanLiquidatedEvent(loan, caller))
	return nil
}
