package common

// Code is the machine-readable description attached to every use-case
// response.
type Code string

const (
	CodeSuccess            Code = "SUCCESS"
	CodeNotConnected       Code = "NOT_CONNECTED"
	CodeTokenExpired       Code = "TOKEN_EXPIRED"
	CodeTokenRefreshFailed Code = "TOKEN_REFRESH_FAILED"
	CodeTokenInvalid       Code = "TOKEN_INVALID"
	CodeTokenSaveFailed    Code = "TOKEN_SAVE_FAILED"
	CodeProviderAuthError  Code = "PROVIDER_AUTH_ERROR"
	CodeProviderAPIError   Code = "PROVIDER_API_ERROR"
	CodeValidationError    Code = "VALIDATION_ERROR"
	CodeDataAccessError    Code = "DATA_ACCESS_ERROR"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeForbidden          Code = "FORBIDDEN"
	CodeNotFound           Code = "NOT_FOUND"
	CodeAlreadyExists      Code = "ALREADY_EXISTS"
	CodeInternalError      Code = "INTERNAL_ERROR"
)
