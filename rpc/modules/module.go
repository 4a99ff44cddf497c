package modules

const (
	codeInvalidParams = -32602
	codeServerError   = -32000
)

// Stable ledger error codes expected by callers. The numbers are part of the
// public surface and never renumbered.
const (
	CodeNotAuthorized          = 1000
	CodeInvalidAmount          = 1001
	CodeInsufficientCollateral = 1002
	CodeLoanNotFound           = 1003
	CodeLoanAlreadyActive      = 1004
	CodeLoanNotActive          = 1005
	CodeLoanNotDefaulted       = 1006
	CodeInvalidDuration        = 1009
	CodeInvalidInterestRate    = 1010
	CodeEmergencyStopActive    = 1011
	CodeInvalidCollateralAsset = 1013
)

type ModuleError struct {
	HTTPStatus int
	Code       int
	Message    string
	Data       interface{}
}

func (e *ModuleError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}
