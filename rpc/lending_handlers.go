package rpc

import (
	"encoding/json"
	"math/big"
	"net/http"
	"strings"

	"microlend/crypto"
	"microlend/native/lending"
	"microlend/native/reputation"
)

type assetParams struct {
	Caller string `json:"caller"`
	Symbol string `json:"symbol"`
	Price  string `json:"price,omitempty"`
}

type createLoanParams struct {
	Borrower         string `json:"borrower"`
	Amount           string `json:"amount"`
	CollateralAmount string `json:"collateralAmount"`
	Symbol           string `json:"symbol"`
	DurationBlocks   uint64 `json:"durationBlocks"`
	InterestRateBps  uint64 `json:"interestRateBps"`
}

type loanActionParams struct {
	Caller string `json:"caller"`
	LoanID uint64 `json:"loanId"`
}

type loanQueryParams struct {
	LoanID uint64 `json:"loanId"`
}

type ownerParams struct {
	Caller   string `json:"caller"`
	NewOwner string `json:"newOwner"`
}

type callerParams struct {
	Caller string `json:"caller"`
}

type reputationParams struct {
	Address string `json:"address"`
}

type eventsParams struct {
	FromIndex int `json:"fromIndex"`
}

type advanceBlocksParams struct {
	Count uint64 `json:"count"`
}

type createLoanResult struct {
	LoanID uint64 `json:"loanId"`
}

type loanResult struct {
	Loan   *lending.Loan `json:"loan"`
	Status string        `json:"status,omitempty"`
}

type repayResult struct {
	AmountDue *big.Int `json:"amountDue"`
}

type totalDueResult struct {
	AmountDue *big.Int `json:"amountDue"`
}

type haltResult struct {
	Halted bool `json:"emergencyStopped"`
}

type reputationResult struct {
	Reputation *reputation.Reputation `json:"reputation"`
}

type heightResult struct {
	Height uint64 `json:"height"`
}

func decodeParams(w http.ResponseWriter, req *RPCRequest, out interface{}) bool {
	if len(req.Params) != 1 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "expected parameter object", nil)
		return false
	}
	if err := json.Unmarshal(req.Params[0], out); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return false
	}
	return true
}

func decodeAddressParam(w http.ResponseWriter, req *RPCRequest, field, value string) (crypto.Address, bool) {
	addr, err := crypto.DecodeAddress(strings.TrimSpace(value))
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid "+field, err.Error())
		return crypto.Address{}, false
	}
	return addr, true
}

func decodeAmountParam(w http.ResponseWriter, req *RPCRequest, field, value string) (*big.Int, bool) {
	amount, ok := new(big.Int).SetString(strings.TrimSpace(value), 10)
	if !ok {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, field+" must be a base-10 integer", value)
		return nil, false
	}
	return amount, true
}

func (s *Server) handleAddCollateralAsset(w http.ResponseWriter, req *RPCRequest) {
	var input assetParams
	if !decodeParams(w, req, &input) {
		return
	}
	caller, ok := decodeAddressParam(w, req, "caller", input.Caller)
	if !ok {
		return
	}
	if moduleErr := s.lending.AddCollateralAsset(caller, input.Symbol); moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleUpdateAssetPrice(w http.ResponseWriter, req *RPCRequest) {
	var input assetParams
	if !decodeParams(w, req, &input) {
		return
	}
	caller, ok := decodeAddressParam(w, req, "caller", input.Caller)
	if !ok {
		return
	}
	price, ok := decodeAmountParam(w, req, "price", input.Price)
	if !ok {
		return
	}
	if moduleErr := s.lending.UpdateAssetPrice(caller, input.Symbol, price); moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleCreateLoanRequest(w http.ResponseWriter, req *RPCRequest) {
	var input createLoanParams
	if !decodeParams(w, req, &input) {
		return
	}
	borrower, ok := decodeAddressParam(w, req, "borrower", input.Borrower)
	if !ok {
		return
	}
	amount, ok := decodeAmountParam(w, req, "amount", input.Amount)
	if !ok {
		return
	}
	collateral, ok := decodeAmountParam(w, req, "collateralAmount", input.CollateralAmount)
	if !ok {
		return
	}
	id, moduleErr := s.lending.CreateLoanRequest(borrower, amount, collateral, input.Symbol, input.DurationBlocks, input.InterestRateBps)
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, createLoanResult{LoanID: id})
}

func (s *Server) handleActivateLoan(w http.ResponseWriter, req *RPCRequest) {
	var input loanActionParams
	if !decodeParams(w, req, &input) {
		return
	}
	caller, ok := decodeAddressParam(w, req, "caller", input.Caller)
	if !ok {
		return
	}
	if moduleErr := s.lending.ActivateLoan(caller, input.LoanID); moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleRepayLoan(w http.ResponseWriter, req *RPCRequest) {
	var input loanActionParams
	if !decodeParams(w, req, &input) {
		return
	}
	caller, ok := decodeAddressParam(w, req, "caller", input.Caller)
	if !ok {
		return
	}
	due, moduleErr := s.lending.RepayLoan(caller, input.LoanID)
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, repayResult{AmountDue: due})
}

func (s *Server) handleLiquidateLoan(w http.ResponseWriter, req *RPCRequest) {
	var input loanActionParams
	if !decodeParams(w, req, &input) {
		return
	}
	caller, ok := decodeAddressParam(w, req, "caller", input.Caller)
	if !ok {
		return
	}
	if moduleErr := s.lending.LiquidateLoan(caller, input.LoanID); moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleToggleHalt(w http.ResponseWriter, req *RPCRequest) {
	var input callerParams
	if !decodeParams(w, req, &input) {
		return
	}
	caller, ok := decodeAddressParam(w, req, "caller", input.Caller)
	if !ok {
		return
	}
	halted, moduleErr := s.lending.ToggleHalt(caller)
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, haltResult{Halted: halted})
}

func (s *Server) handleSetOwner(w http.ResponseWriter, req *RPCRequest) {
	var input ownerParams
	if !decodeParams(w, req, &input) {
		return
	}
	caller, ok := decodeAddressParam(w, req, "caller", input.Caller)
	if !ok {
		return
	}
	newOwner, ok := decodeAddressParam(w, req, "newOwner", input.NewOwner)
	if !ok {
		return
	}
	if moduleErr := s.lending.SetOwner(caller, newOwner); moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleGetLoan(w http.ResponseWriter, req *RPCRequest) {
	var input loanQueryParams
	if !decodeParams(w, req, &input) {
		return
	}
	loan, moduleErr := s.lending.GetLoan(input.LoanID)
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	result := loanResult{Loan: loan}
	if loan != nil {
		result.Status = loan.Status.String()
	}
	writeResult(w, req.ID, result)
}

func (s *Server) handleGetStatus(w http.ResponseWriter, req *RPCRequest) {
	if len(req.Params) != 0 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "no parameters expected", nil)
		return
	}
	status, moduleErr := s.lending.GetStatus()
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, status)
}

func (s *Server) handleGetReputation(w http.ResponseWriter, req *RPCRequest) {
	var input reputationParams
	if !decodeParams(w, req, &input) {
		return
	}
	addr, ok := decodeAddressParam(w, req, "address", input.Address)
	if !ok {
		return
	}
	record, moduleErr := s.lending.GetReputation(addr)
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, reputationResult{Reputation: record})
}

func (s *Server) handleCalculateTotalDue(w http.ResponseWriter, req *RPCRequest) {
	var input loanQueryParams
	if !decodeParams(w, req, &input) {
		return
	}
	due, moduleErr := s.lending.CalculateTotalDue(input.LoanID)
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, totalDueResult{AmountDue: due})
}

func (s *Server) handleListAssets(w http.ResponseWriter, req *RPCRequest) {
	if len(req.Params) != 0 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "no parameters expected", nil)
		return
	}
	list, moduleErr := s.lending.ListAssets()
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, list)
}

func (s *Server) handleEvents(w http.ResponseWriter, req *RPCRequest) {
	input := eventsParams{}
	if len(req.Params) == 1 {
		if err := json.Unmarshal(req.Params[0], &input); err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
			return
		}
	} else if len(req.Params) > 1 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "too many parameters", nil)
		return
	}
	events, moduleErr := s.lending.Events(input.FromIndex)
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, events)
}

func (s *Server) handleAdvanceBlocks(w http.ResponseWriter, req *RPCRequest) {
	var input advanceBlocksParams
	if !decodeParams(w, req, &input) {
		return
	}
	if input.Count == 0 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "count must be positive", nil)
		return
	}
	height := s.node.AdvanceBlocks(input.Count)
	writeResult(w, req.ID, heightResult{Height: height})
}
