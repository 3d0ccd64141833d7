package common

import "errors"

// Outcome is the machine-readable code plus human-facing message carried by
// every downstream response.
type Outcome struct {
	Description Code   `json:"description"`
	Message     string `json:"message"`
}

// Success builds a SUCCESS outcome with the given message.
func Success(msg string) Outcome {
	return Outcome{Description: CodeSuccess, Message: msg}
}

var outcomes = []struct {
	kind error
	code Code
	msg  string
}{
	{ErrNotConnected, CodeNotConnected, "Spotify account not connected"},
	{ErrTokenExpired, CodeTokenExpired, "Spotify token expired and cannot be refreshed, re-authorization required"},
	{ErrTokenRefreshFailed, CodeTokenRefreshFailed, "Failed to refresh Spotify token"},
	{ErrTokenInvalid, CodeTokenInvalid, "Spotify token is invalid"},
	{ErrTokenSaveFailed, CodeTokenSaveFailed, "Failed to save Spotify token"},
	{ErrProviderAuth, CodeProviderAuthError, "Spotify rejected the authorization request"},
	{ErrProviderAPI, CodeProviderAPIError, "Spotify API request failed"},
	{ErrValidation, CodeValidationError, "Invalid request data"},
	{ErrDataAccess, CodeDataAccessError, "Storage is unavailable"},
	{ErrorUnauthorized, CodeUnauthorized, "Unauthorized"},
	{ErrForbidden, CodeForbidden, "Not allowed to access this account"},
	{ErrAlreadyExists, CodeAlreadyExists, "Account already registered"},
	{ErrorNotFound, CodeNotFound, "Resource not found"},
}

// Describe maps err onto the taxonomy. The first matching kind wins, so a
// refresh failure caused by a provider auth error reports TOKEN_REFRESH_FAILED.
// A nil error describes as SUCCESS.
func Describe(err error) Outcome {
	if err == nil {
		return Success("OK")
	}
	for _, o := range outcomes {
		if errors.Is(err, o.kind) {
			return Outcome{Description: o.code, Message: o.msg}
		}
	}
	return Outcome{Description: CodeInternalError, Message: "Internal server error"}
}
