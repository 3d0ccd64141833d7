// Package cryptox seals provider credentials before they reach the database.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// sealedPrefix marks values produced by AESSealer.
const sealedPrefix = "v1:"

// keySalt is the application-wide salt used to stretch the configured passphrase.
var keySalt = []byte("soulbeats/token-sealer")

var ErrMalformedCiphertext = errors.New("malformed ciphertext")

// Sealer turns a secret into its stored form and back.
type Sealer interface {
	Seal(plain string) (string, error)
	Open(stored string) (string, error)
}

func DeriveMasterKey(password []byte, salt []byte) []byte {
	x := argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
	return x
}

// NewSealer returns an AES-GCM sealer keyed from passphrase, or a
// pass-through sealer when passphrase is empty.
func NewSealer(passphrase string) (Sealer, error) {
	if passphrase == "" {
		return PlainSealer{}, nil
	}
	key := DeriveMasterKey([]byte(passphrase), keySalt)
	defer Wipe(key)

	s, err := NewAESSealer(key)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Wipe overwrites b with zeros. The cipher keeps its own expanded key, so
// the derived key is not needed once the sealer exists.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// PlainSealer stores values unchanged.
type PlainSealer struct{}

func (PlainSealer) Seal(plain string) (string, error)  { return plain, nil }
func (PlainSealer) Open(stored string) (string, error) { return stored, nil }

// AESSealer encrypts with AES-GCM. The stored form is
// "v1:" + base64(nonce || ciphertext). A fresh random nonce is used per value.
type AESSealer struct {
	aead cipher.AEAD
}

// NewAESSealer builds a sealer from a 16, 24 or 32 byte key.
func NewAESSealer(key []byte) (*AESSealer, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}
	return &AESSealer{aead: aead}, nil
}

func (s *AESSealer) Seal(plain string) (string, error) {
	if plain == "" {
		return "", nil
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}

	out := s.aead.Seal(nonce, nonce, []byte(plain), nil)
	return sealedPrefix + base64.StdEncoding.EncodeToString(out), nil
}

// Open reverses Seal. Values without the sealed prefix were written before
// sealing was enabled and are returned as they are.
func (s *AESSealer) Open(stored string) (string, error) {
	raw, ok := strings.CutPrefix(stored, sealedPrefix)
	if !ok {
		return stored, nil
	}

	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedCiphertext, err)
	}

	ns := s.aead.NonceSize()
	if len(data) < ns {
		return "", ErrMalformedCiphertext
	}

	plain, err := s.aead.Open(nil, data[:ns], data[ns:], nil)
	if err != nil {
		return "", fmt.Errorf("open: %w", err)
	}
	return string(plain), nil
}
