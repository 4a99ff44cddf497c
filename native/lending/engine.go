package lending

import (
	"math/big"

	"microlend/core/types"
	"microlend/crypto"
	"microlend/native/common"
)

// engineState abstracts the loan collection owned by the ledger. Loans are
// append-only; AllocateLoanID hands out the next dense id and advances the
// counter, so it must only be called once every validation has passed.
type engineState interface {
	GetLoan(id uint64) (*Loan, error)
	PutLoan(loan *Loan) error
	AllocateLoanID() uint64
	NextLoanID() uint64
}

// authority gates the administrator-only transitions.
type authority interface {
	RequireOwner(caller crypto.Address) error
}

// reputationRecorder receives the repayment-history side effects of terminal
// loan transitions.
type reputationRecorder interface {
	RecordDefault(addr crypto.Address) error
	RecordCompletion(addr crypto.Address) error
}

// Engine owns the loan lifecycle state machine. Every mutating operation
// validates completely before its first write so a failed call leaves the
// ledger byte-for-byte unchanged; the hosting node serializes calls so each
// one runs against a single authoritative snapshot.
type Engine struct {
	state       engineState
	auth        authority
	halts       common.HaltView
	assets      AssetView
	reputation  reputationRecorder
	params      RiskParameters
	blockHeight uint64
	emit        func(*types.Event)
}

// NewEngine constructs a lending engine with the provided risk limits.
func NewEngine(params RiskParameters) *Engine {
	return &Engine{params: params.Normalize()}
}

// SetState wires the engine to the ledger state.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetAuthority wires the access controller used for privileged transitions.
func (e *Engine) SetAuthority(auth authority) {
	if e == nil {
		return
	}
	e.auth = auth
}

// SetHaltView wires the emergency-stop flag consulted before loan creation.
func (e *Engine) SetHaltView(h common.HaltView) {
	if e == nil {
		return
	}
	e.halts = h
}

// SetAssetView wires the asset registry consulted during validation.
func (e *Engine) SetAssetView(v AssetView) {
	if e == nil {
		return
	}
	e.assets = v
}

// SetReputationRecorder wires the reputation side effects of terminal
// transitions.
func (e *Engine) SetReputationRecorder(r reputationRecorder) {
	if e == nil {
		return
	}
	e.reputation = r
}

// SetBlockHeight records the host-supplied block height used as the logical
// clock for the duration of the current call.
func (e *Engine) SetBlockHeight(height uint64) {
	if e == nil {
		return
	}
	e.blockHeight = height
}

// SetEmitter wires the event sink notified on successful transitions.
func (e *Engine) SetEmitter(emit func(*types.Event)) {
	if e == nil {
		return
	}
	e.emit = emit
}

// Params returns the risk limits the engine enforces.
func (e *Engine) Params() RiskParameters {
	if e == nil {
		return RiskParameters{}
	}
	return e.params
}

func (e *Engine) emitEvent(evt *types.Event) {
	if e == nil || e.emit == nil || evt == nil {
		return
	}
	e.emit(evt)
}

// CreateLoanRequest validates and stores a new pending loan for the borrower,
// returning the allocated id. On any validation failure no id is consumed and
// no loan is stored.
func (e *Engine) CreateLoanRequest(borrower crypto.Address, amount, collateralAmount *big.Int, symbol string, durationBlocks, interestRateBps uint64) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	if err := e.ValidateLoanRequest(amount, collateralAmount, symbol, durationBlocks, interestRateBps); err != nil {
		return 0, err
	}

	id := e.state.AllocateLoanID()
	loan := &Loan{
		ID:               id,
		Borrower:         borrower,
		Amount:           new(big.Int).Set(amount),
		CollateralAmount: new(big.Int).Set(collateralAmount),
		CollateralAsset:  symbol,
		DurationBlocks:   durationBlocks,
		InterestRateBps:  interestRateBps,
		Status:           StatusPending,
		CreatedAtBlock:   e.blockHeight,
	}
	if err := e.state.PutLoan(loan); err != nil {
		return 0, err
	}
	e.emitEvent(NewLoanCreatedEvent(loan))
	return id, nil
}

// ActivateLoan moves a pending loan to active and stamps the activation
// height. Administrator only. Any status other than pending fails with
// ErrLoanAlreadyActive, covering already-active and terminal loans alike.
func (e *Engine) ActivateLoan(caller crypto.Address, id uint64) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.auth == nil {
		return errNilState
	}
	if err := e.auth.RequireOwner(caller); err != nil {
		return err
	}
	loan, err := e.state.GetLoan(id)
	if err != nil {
		return err
	}
	if loan == nil {
		return ErrLoanNotFound
	}
	if loan.Status != StatusPending {
		return ErrLoanAlreadyActive
	}
	loan.Status = StatusActive
	loan.ActivatedAtBlock = e.blockHeight
	if err := e.state.PutLoan(loan); err != nil {
		return err
	}
	e.emitEvent(NewLoanActivatedEvent(loan))
	return nil
}

// RepayLoan settles an active loan. Only the borrower may repay; settlement of
// the owed funds is the host's concern, the ledger records the terminal state
// and credits the borrower's completion count.
func (e *Engine) RepayLoan(caller crypto.Address, id uint64) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	loan, err := e.state.GetLoan(id)
	if err != nil {
		return nil, err
	}
	if loan == nil {
		return nil, ErrLoanNotFound
	}
	if !loan.Borrower.Equal(caller) {
		return nil, ErrNotBorrower
	}
	if loan.Status != StatusActive {
		return nil, ErrLoanNotActive
	}
	due := TotalDue(loan.Amount, loan.InterestRateBps)
	// The reputation write is the only fallible mutation on this path, so it
	// runs first: if it fails the loan stays ACTIVE and the call can be
	// retried.
	if e.reputation != nil {
		if err := e.reputation.RecordCompletion(loan.Borrower); err != nil {
			return nil, err
		}
	}
	loan.Status = StatusRepaid
	if err := e.state.PutLoan(loan); err != nil {
		return nil, err
	}
	e.emitEvent(NewLoanRepaidEvent(loan, due))
	return due, nil
}

// GetLoan returns a copy of the loan record, or ok=false when the id is
// unknown.
func (e *Engine) GetLoan(id uint64) (*Loan, bool, error) {
	if e == nil || e.state == nil {
		return nil, false, errNilState
	}
	loan, err := e.state.GetLoan(id)
	if err != nil {
		return nil, false, err
	}
	if loan == nil {
		return nil, false, nil
	}
	return loan.Clone(), true, nil
}

// TotalDueByID resolves the loan and computes the flat amount owed.
func (e *Engine) TotalDueByID(id uint64) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	loan, err := e.state.GetLoan(id)
	if err != nil {
		return nil, err
	}
	if loan == nil {
		return nil, ErrLoanNotFound
	}
	return TotalDue(loan.Amount, loan.InterestRateBps), nil
}
