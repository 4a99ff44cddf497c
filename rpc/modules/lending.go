package modules

import (
	"errors"
	"math/big"
	"net/http"
	"time"

	"microlend/core"
	"microlend/core/types"
	"microlend/crypto"
	"microlend/native/access"
	"microlend/native/assets"
	"microlend/native/common"
	"microlend/native/lending"
	"microlend/native/reputation"
	"microlend/observability"
)

// LendingModule adapts the node's ledger operations to RPC semantics: typed
// results, stable error codes and per-method metrics.
type LendingModule struct {
	node *core.Node
}

func NewLendingModule(node *core.Node) *LendingModule {
	return &LendingModule{node: node}
}

func (m *LendingModule) moduleUnavailable() *ModuleError {
	return &ModuleError{HTTPStatus: http.StatusInternalServerError, Code: codeServerError, Message: "lending module not available"}
}

// wrapError converts engine sentinels into the stable caller-facing taxonomy.
func (m *LendingModule) wrapError(err error) *ModuleError {
	if err == nil {
		return nil
	}
	status := http.StatusBadRequest
	code := codeServerError
	switch {
	case errors.Is(err, access.ErrNotAuthorized), errors.Is(err, lending.ErrNotBorrower):
		status = http.StatusUnauthorized
		code = CodeNotAuthorized
	case errors.Is(err, lending.ErrInvalidAmount):
		code = CodeInvalidAmount
	case errors.Is(err, lending.ErrInsufficientCollateral):
		code = CodeInsufficientCollateral
	case errors.Is(err, lending.ErrLoanNotFound):
		status = http.StatusNotFound
		code = CodeLoanNotFound
	case errors.Is(err, lending.ErrLoanAlreadyActive):
		code = CodeLoanAlreadyActive
	case errors.Is(err, lending.ErrLoanNotActive):
		code = CodeLoanNotActive
	case errors.Is(err, lending.ErrLoanNotDefaulted):
		code = CodeLoanNotDefaulted
	case errors.Is(err, lending.ErrInvalidDuration):
		code = CodeInvalidDuration
	case errors.Is(err, lending.ErrInvalidInterestRate):
		code = CodeInvalidInterestRate
	case errors.Is(err, common.ErrHalted):
		code = CodeEmergencyStopActive
	case errors.Is(err, lending.ErrInvalidCollateralAsset), errors.Is(err, assets.ErrInvalidAsset):
		code = CodeInvalidCollateralAsset
	case errors.Is(err, assets.ErrInvalidPrice), errors.Is(err, assets.ErrInvalidSymbol):
		code = codeInvalidParams
	default:
		status = http.StatusInternalServerError
	}
	return &ModuleError{HTTPStatus: status, Code: code, Message: err.Error()}
}

func (m *LendingModule) observe(method string, start time.Time, failed bool) {
	observability.ModuleMetrics().Observe("lending", method, start, failed)
}

func (m *LendingModule) AddCollateralAsset(caller crypto.Address, symbol string) *ModuleError {
	if m == nil || m.node == nil {
		return m.moduleUnavailable()
	}
	start := time.Now()
	err := m.node.AddCollateralAsset(caller, symbol)
	m.observe("addCollateralAsset", start, err != nil)
	return m.wrapError(err)
}

func (m *LendingModule) UpdateAssetPrice(caller crypto.Address, symbol string, price *big.Int) *ModuleError {
	if m == nil || m.node == nil {
		return m.moduleUnavailable()
	}
	start := time.Now()
	err := m.node.UpdateAssetPrice(caller, symbol, price)
	m.observe("updateAssetPrice", start, err != nil)
	return m.wrapError(err)
}

func (m *LendingModule) CreateLoanRequest(borrower crypto.Address, amount, collateralAmount *big.Int, symbol string, durationBlocks, interestRateBps uint64) (uint64, *ModuleError) {
	if m == nil || m.node == nil {
		return 0, m.moduleUnavailable()
	}
	start := time.Now()
	id, err := m.node.CreateLoanRequest(borrower, amount, collateralAmount, symbol, durationBlocks, interestRateBps)
	m.observe("createLoanRequest", start, err != nil)
	if err != nil {
		return 0, m.wrapError(err)
	}
	return id, nil
}

func (m *LendingModule) ActivateLoan(caller crypto.Address, id uint64) *ModuleError {
	if m == nil || m.node == nil {
		return m.moduleUnavailable()
	}
	start := time.Now()
	err := m.node.ActivateLoan(caller, id)
	m.observe("activateLoan", start, err != nil)
	return m.wrapError(err)
}

func (m *LendingModule) RepayLoan(caller crypto.Address, id uint64) (*big.Int, *ModuleError) {
	if m == nil || m.node == nil {
		return nil, m.moduleUnavailable()
	}
	start := time.Now()
	due, err := m.node.RepayLoan(caller, id)
	m.observe("repayLoan", start, err != nil)
	if err != nil {
		return nil, m.wrapError(err)
	}
	return due, nil
}

func (m *LendingModule) LiquidateLoan(caller crypto.Address, id uint64) *ModuleError {
	if m == nil || m.node == nil {
		return m.moduleUnavailable()
	}
	start := time.Now()
	err := m.node.LiquidateLoan(caller, id)
	m.observe("liquidateLoan", start, err != nil)
	return m.wrapError(err)
}

func (m *LendingModule) ToggleHalt(caller crypto.Address) (bool, *ModuleError) {
	if m == nil || m.node == nil {
		return false, m.moduleUnavailable()
	}
	start := time.Now()
	halted, err := m.node.ToggleHalt(caller)
	m.observe("toggleHalt", start, err != nil)
	if err != nil {
		return false, m.wrapError(err)
	}
	return halted, nil
}

func (m *LendingModule) SetOwner(caller, newOwner crypto.Address) *ModuleError {
	if m == nil || m.node == nil {
		return m.moduleUnavailable()
	}
	start := time.Now()
	err := m.node.SetOwner(caller, newOwner)
	m.observe("setOwner", start, err != nil)
	return m.wrapError(err)
}

func (m *LendingModule) GetLoan(id uint64) (*lending.Loan, *ModuleError) {
	if m == nil || m.node == nil {
		return nil, m.moduleUnavailable()
	}
	loan, ok, err := m.node.GetLoan(id)
	if err != nil {
		return nil, m.wrapError(err)
	}
	if !ok {
		return nil, nil
	}
	return loan, nil
}

func (m *LendingModule) CalculateTotalDue(id uint64) (*big.Int, *ModuleError) {
	if m == nil || m.node == nil {
		return nil, m.moduleUnavailable()
	}
	due, err := m.node.CalculateTotalDue(id)
	if err != nil {
		return nil, m.wrapError(err)
	}
	return due, nil
}

func (m *LendingModule) GetReputation(addr crypto.Address) (*reputation.Reputation, *ModuleError) {
	if m == nil || m.node == nil {
		return nil, m.moduleUnavailable()
	}
	record, ok, err := m.node.GetReputation(addr)
	if err != nil {
		return nil, m.wrapError(err)
	}
	if !ok {
		return nil, nil
	}
	return record, nil
}

func (m *LendingModule) GetStatus() (core.Status, *ModuleError) {
	if m == nil || m.node == nil {
		return core.Status{}, m.moduleUnavailable()
	}
	return m.node.GetStatus(), nil
}

func (m *LendingModule) ListAssets() ([]*assets.Asset, *ModuleError) {
	if m == nil || m.node == nil {
		return nil, m.moduleUnavailable()
	}
	list, err := m.node.ListAssets()
	if err != nil {
		return nil, m.wrapError(err)
	}
	return list, nil
}

func (m *LendingModule) Events(from int) ([]types.Event, *ModuleError) {
	if m == nil || m.node == nil {
		return nil, m.moduleUnavailable()
	}
	return m.node.Events(from), nil
}
