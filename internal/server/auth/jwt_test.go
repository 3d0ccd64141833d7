package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/soulbeats/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// signToken mints what the identity provider would hand a caller.
func signToken(id CallerIdentity, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.OwnerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		Email: id.Email,
	}).SignedString(secretKey)
}

func TestSignAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")
	want := CallerIdentity{OwnerID: "user-123", Email: "ann@example.com"}

	tok, err := signToken(want, secret, time.Hour)
	if err != nil {
		t.Fatalf("signToken error: %v", err)
	}

	got, err := ParseIdentity(tok, secret)
	if err != nil {
		t.Fatalf("ParseIdentity error: %v", err)
	}
	if got != want {
		t.Fatalf("identity mismatch: got %+v want %+v", got, want)
	}
}

func TestParseIdentity_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok, err := signToken(CallerIdentity{OwnerID: "u1"}, secret, -1*time.Second)
	if err != nil {
		t.Fatalf("signToken error: %v", err)
	}

	_, err = ParseIdentity(tok, secret)
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("expected common.ErrorUnauthorized, got %v", err)
	}
}

func TestParseIdentity_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := signToken(CallerIdentity{OwnerID: "u2"}, []byte("right-secret"), time.Hour)
	if err != nil {
		t.Fatalf("signToken error: %v", err)
	}

	_, err = ParseIdentity(tok, []byte("wrong-secret"))
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("expected unauthorized for invalid signature, got %v", err)
	}
}

func TestParseIdentity_MalformedString(t *testing.T) {
	t.Parallel()

	_, err := ParseIdentity("not.a.jwt", []byte("k"))
	if err == nil {
		t.Fatalf("expected error for malformed token, got nil")
	}
}

func TestParseIdentity_MissingSubject(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	tok, err := signToken(CallerIdentity{}, secret, time.Hour)
	if err != nil {
		t.Fatalf("signToken error: %v", err)
	}

	if _, err := ParseIdentity(tok, secret); !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("expected unauthorized for empty subject, got %v", err)
	}
}

func TestParseIdentity_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{Subject: "u1"}).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := ParseIdentity(tok, secret); !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("expected HS512 token to be rejected, got %v", err)
	}
}

func TestIdentityContext(t *testing.T) {
	t.Parallel()

	if _, ok := IdentityFrom(context.Background()); ok {
		t.Fatal("empty context must carry no identity")
	}

	ctx := WithIdentity(context.Background(), CallerIdentity{OwnerID: "u1"})
	id, ok := IdentityFrom(ctx)
	if !ok || id.OwnerID != "u1" {
		t.Fatalf("unexpected identity %+v ok=%v", id, ok)
	}
}
