package model

// ErrorResponse is the consistent JSON structure for all API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Error codes returned in ErrorResponse.Code.
const (
	CodeMissingParameter  = "MISSING_PARAMETER"
	CodeAlreadyExists     = "ALREADY_EXISTS"
	CodeNotFound          = "NOT_FOUND"
	CodeIncorrectPassword = "INCORRECT_PASSWORD"
	CodeNotUnlocked       = "NOT_UNLOCKED"
	CodeKeyNotFound       = "KEY_NOT_FOUND"
	CodeDecrypt           = "DECRYPT_FAILED"
	CodeLedger            = "LEDGER_ERROR"
)
