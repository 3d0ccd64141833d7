// Package common defines the shared error taxonomy used across the SoulBeats
// server layers. Callers should match kinds with errors.Is; concrete errors
// wrap one of these sentinels together with the provider or database detail.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// ErrDataAccess marks connectivity or row-mapping failures in the gateway.
	ErrDataAccess = errors.New("data access error")

	// Token lifecycle errors.
	ErrNotConnected       = errors.New("spotify account not connected")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenRefreshFailed = errors.New("token refresh failed")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrTokenSaveFailed    = errors.New("token save failed")

	// Provider errors.
	ErrProviderAuth = errors.New("provider auth error")
	ErrProviderAPI  = errors.New("provider api error")

	// Caller input errors.
	ErrValidation = errors.New("validation error")

	// ErrorUnauthorized is returned by the transport when no caller identity
	// could be established.
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when an authenticated caller acts on another
	// caller's account.
	ErrForbidden = errors.New("forbidden")
)
