package rpc

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"microlend/core"
	"microlend/crypto"
	"microlend/native/lending"
	"microlend/rpc/modules"
)

func testAddress(fill byte) crypto.Address {
	buf := make([]byte, 20)
	for i := range buf {
		buf[i] = fill
	}
	return crypto.NewAddress(crypto.LendPrefix, buf)
}

func newTestServer(t *testing.T, devClock bool) (*Server, crypto.Address) {
	t.Helper()
	t.Setenv(rpcTokenEnv, "")
	owner := testAddress(0x01)
	node, err := core.NewNode(core.Genesis{Owner: owner, Params: lending.DefaultRiskParameters()})
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return NewServer(node, devClock), owner
}

func rpcCall(t *testing.T, handler http.Handler, token, method string, params ...interface{}) (*httptest.ResponseRecorder, RPCResponse) {
	t.Helper()
	rawParams := make([]json.RawMessage, 0, len(params))
	for _, p := range params {
		encoded, err := json.Marshal(p)
		if err != nil {
			t.Fatalf("marshal params: %v", err)
		}
		rawParams = append(rawParams, encoded)
	}
	body, err := json.Marshal(RPCRequest{JSONRPC: jsonRPCVersion, Method: method, Params: rawParams, ID: 1})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	var resp RPCResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (%s)", err, recorder.Body.String())
	}
	return recorder, resp
}

func decodeResult(t *testing.T, resp RPCResponse, out interface{}) {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("unexpected rpc error: %+v", resp.Error)
	}
	raw, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatalf("re-encode result: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("decode result: %v", err)
	}
}

func TestLoanLifecycleOverRPC(t *testing.T) {
	server, owner := newTestServer(t, false)
	router := server.Router()
	borrower := testAddress(0x20)

	if _, resp := rpcCall(t, router, "", "lend_addCollateralAsset", map[string]string{
		"caller": owner.String(), "symbol": "STX",
	}); resp.Error != nil {
		t.Fatalf("add asset: %+v", resp.Error)
	}
	if _, resp := rpcCall(t, router, "", "lend_updateAssetPrice", map[string]string{
		"caller": owner.String(), "symbol": "STX", "price": "100000000",
	}); resp.Error != nil {
		t.Fatalf("update price: %+v", resp.Error)
	}

	_, resp := rpcCall(t, router, "", "lend_createLoanRequest", map[string]interface{}{
		"borrower":         borrower.String(),
		"amount":           "1000000000",
		"collateralAmount": "3000000000",
		"symbol":           "STX",
		"durationBlocks":   144000,
		"interestRateBps":  1000,
	})
	var created createLoanResult
	decodeResult(t, resp, &created)
	if created.LoanID != 1 {
		t.Fatalf("expected loan id 1, got %d", created.LoanID)
	}

	if _, resp := rpcCall(t, router, "", "lend_activateLoan", map[string]interface{}{
		"caller": owner.String(), "loanId": created.LoanID,
	}); resp.Error != nil {
		t.Fatalf("activate: %+v", resp.Error)
	}

	_, resp = rpcCall(t, router, "", "lend_getLoan", map[string]interface{}{"loanId": created.LoanID})
	var loan loanResult
	decodeResult(t, resp, &loan)
	if loan.Status != "ACTIVE" {
		t.Fatalf("expected ACTIVE, got %s", loan.Status)
	}

	_, resp = rpcCall(t, router, "", "lend_calculateTotalDue", map[string]interface{}{"loanId": created.LoanID})
	var due totalDueResult
	decodeResult(t, resp, &due)
	if due.AmountDue.String() != "1100000000" {
		t.Fatalf("expected due 1100000000, got %s", due.AmountDue)
	}

	_, resp = rpcCall(t, router, "", "lend_repayLoan", map[string]interface{}{
		"caller": borrower.String(), "loanId": created.LoanID,
	})
	var repaid repayResult
	decodeResult(t, resp, &repaid)
	if repaid.AmountDue.String() != "1100000000" {
		t.Fatalf("expected settled amount 1100000000, got %s", repaid.AmountDue)
	}

	_, resp = rpcCall(t, router, "", "lend_getReputation", map[string]string{"address": borrower.String()})
	var rep reputationResult
	decodeResult(t, resp, &rep)
	if rep.Reputation == nil || rep.Reputation.CompletedLoans != 1 || rep.Reputation.Score != 100 {
		t.Fatalf("unexpected reputation: %+v", rep.Reputation)
	}
}

func TestModuleErrorCodes(t *testing.T) {
	server, owner := newTestServer(t, false)
	router := server.Router()
	borrower := testAddress(0x20)
	stranger := testAddress(0x30)

	recorder, resp := rpcCall(t, router, "", "lend_addCollateralAsset", map[string]string{
		"caller": stranger.String(), "symbol": "STX",
	})
	if resp.Error == nil || resp.Error.Code != modules.CodeNotAuthorized {
		t.Fatalf("expected code %d, got %+v", modules.CodeNotAuthorized, resp.Error)
	}
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected HTTP 401, got %d", recorder.Code)
	}

	if _, resp := rpcCall(t, router, "", "lend_addCollateralAsset", map[string]string{
		"caller": owner.String(), "symbol": "STX",
	}); resp.Error != nil {
		t.Fatalf("add asset: %+v", resp.Error)
	}
	if _, resp := rpcCall(t, router, "", "lend_updateAssetPrice", map[string]string{
		"caller": owner.String(), "symbol": "STX", "price": "100000000",
	}); resp.Error != nil {
		t.Fatalf("update price: %+v", resp.Error)
	}

	_, resp = rpcCall(t, router, "", "lend_createLoanRequest", map[string]interface{}{
		"borrower":         borrower.String(),
		"amount":           "1000000000",
		"collateralAmount": "1999999999",
		"symbol":           "STX",
		"durationBlocks":   144000,
		"interestRateBps":  1000,
	})
	if resp.Error == nil || resp.Error.Code != modules.CodeInsufficientCollateral {
		t.Fatalf("expected code %d, got %+v", modules.CodeInsufficientCollateral, resp.Error)
	}

	_, resp = rpcCall(t, router, "", "lend_createLoanRequest", map[string]interface{}{
		"borrower":         borrower.String(),
		"amount":           "1000000000",
		"collateralAmount": "3000000000",
		"symbol":           "DOGE",
		"durationBlocks":   144000,
		"interestRateBps":  1000,
	})
	if resp.Error == nil || resp.Error.Code != modules.CodeInvalidCollateralAsset {
		t.Fatalf("expected code %d, got %+v", modules.CodeInvalidCollateralAsset, resp.Error)
	}

	recorder, resp = rpcCall(t, router, "", "lend_activateLoan", map[string]interface{}{
		"caller": owner.String(), "loanId": 42,
	})
	if resp.Error == nil || resp.Error.Code != modules.CodeLoanNotFound {
		t.Fatalf("expected code %d, got %+v", modules.CodeLoanNotFound, resp.Error)
	}
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected HTTP 404, got %d", recorder.Code)
	}

	if _, resp := rpcCall(t, router, "", "lend_toggleHalt", map[string]string{
		"caller": owner.String(),
	}); resp.Error != nil {
		t.Fatalf("toggle halt: %+v", resp.Error)
	}
	_, resp = rpcCall(t, router, "", "lend_createLoanRequest", map[string]interface{}{
		"borrower":         borrower.String(),
		"amount":           "1000000000",
		"collateralAmount": "3000000000",
		"symbol":           "STX",
		"durationBlocks":   144000,
		"interestRateBps":  1000,
	})
	if resp.Error == nil || resp.Error.Code != modules.CodeEmergencyStopActive {
		t.Fatalf("expected code %d, got %+v", modules.CodeEmergencyStopActive, resp.Error)
	}
}

func TestMethodNotFound(t *testing.T) {
	server, _ := newTestServer(t, false)
	recorder, resp := rpcCall(t, server.Router(), "", "lend_unknownMethod")
	if resp.Error == nil || resp.Error.Code != codeMethodNotFound {
		t.Fatalf("expected method-not-found, got %+v", resp.Error)
	}
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected HTTP 404, got %d", recorder.Code)
	}
}

func TestAdvanceBlocksRequiresDevClock(t *testing.T) {
	server, _ := newTestServer(t, false)
	_, resp := rpcCall(t, server.Router(), "", "node_advanceBlocks", map[string]uint64{"count": 10})
	if resp.Error == nil || resp.Error.Code != codeMethodNotFound {
		t.Fatalf("expected method unavailable, got %+v", resp.Error)
	}

	server, _ = newTestServer(t, true)
	_, resp = rpcCall(t, server.Router(), "", "node_advanceBlocks", map[string]uint64{"count": 10})
	var height heightResult
	decodeResult(t, resp, &height)
	if height.Height != 11 {
		t.Fatalf("expected height 11, got %d", height.Height)
	}
}

func TestBearerTokenGuardsMutatingMethods(t *testing.T) {
	t.Setenv(rpcTokenEnv, "sekrit")
	owner := testAddress(0x01)
	node, err := core.NewNode(core.Genesis{Owner: owner, Params: lending.DefaultRiskParameters()})
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	router := NewServer(node, false).Router()

	recorder, resp := rpcCall(t, router, "", "lend_addCollateralAsset", map[string]string{
		"caller": owner.String(), "symbol": "STX",
	})
	if resp.Error == nil || resp.Error.Code != codeUnauthorized {
		t.Fatalf("expected auth failure, got %+v", resp.Error)
	}
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected HTTP 401, got %d", recorder.Code)
	}

	_, resp = rpcCall(t, router, "wrong", "lend_addCollateralAsset", map[string]string{
		"caller": owner.String(), "symbol": "STX",
	})
	if resp.Error == nil || resp.Error.Code != codeUnauthorized {
		t.Fatalf("expected token mismatch, got %+v", resp.Error)
	}

	if _, resp := rpcCall(t, router, "sekrit", "lend_addCollateralAsset", map[string]string{
		"caller": owner.String(), "symbol": "STX",
	}); resp.Error != nil {
		t.Fatalf("expected success with token, got %+v", resp.Error)
	}

	// Reads stay open.
	if _, resp := rpcCall(t, router, "", "lend_getStatus"); resp.Error != nil {
		t.Fatalf("status read should not require auth: %+v", resp.Error)
	}
}
