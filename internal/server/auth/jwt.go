// Package auth turns a caller's bearer JWT into a typed CallerIdentity.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/soulbeats/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// CallerIdentity is built once at the authentication boundary and passed
// explicitly downstream.
type CallerIdentity struct {
	OwnerID string
	Email   string
}

// Claims carries the standard claims plus the optional email of the caller.
// The subject is the owner id.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// ParseIdentity verifies tokenString (HS256 only) and returns its identity.
// Every failure wraps common.ErrorUnauthorized.
func ParseIdentity(tokenString string, secretKey []byte) (CallerIdentity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return CallerIdentity{}, fmt.Errorf("%w: token expired", common.ErrorUnauthorized)
		}
		return CallerIdentity{}, fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}

	if !token.Valid || claims.Subject == "" {
		return CallerIdentity{}, fmt.Errorf("%w: token has no subject", common.ErrorUnauthorized)
	}

	return CallerIdentity{OwnerID: claims.Subject, Email: claims.Email}, nil
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id CallerIdentity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity stored by the transport middleware.
func IdentityFrom(ctx context.Context) (CallerIdentity, bool) {
	id, ok := ctx.Value(identityKey{}).(CallerIdentity)
	return id, ok
}
