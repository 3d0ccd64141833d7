package spotify

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/soulbeats/internal/common"
)

// ProviderError is a non-success answer (or no answer) from the provider.
// Kind is common.ErrProviderAuth for the token endpoint and
// common.ErrProviderAPI for resource endpoints, so callers can match it with
// errors.Is.
type ProviderError struct {
	Kind       error
	StatusCode int
	// Code and Description come from the provider's error body when it
	// parses; otherwise Description holds the raw body text.
	Code        string
	Description string
	Err         error
}

func (e *ProviderError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Code != "" {
		b.WriteString(": " + e.Code)
	}
	if e.Description != "" {
		b.WriteString(": " + e.Description)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *ProviderError) Is(target error) bool {
	return target == e.Kind
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func authError(status int, code, description string, err error) *ProviderError {
	return &ProviderError{Kind: common.ErrProviderAuth, StatusCode: status, Code: code, Description: description, Err: err}
}

func apiError(status int, description string, err error) *ProviderError {
	return &ProviderError{Kind: common.ErrProviderAPI, StatusCode: status, Description: description, Err: err}
}

// AsProviderError extracts a *ProviderError from err's chain.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	ok := errors.As(err, &pe)
	return pe, ok
}
