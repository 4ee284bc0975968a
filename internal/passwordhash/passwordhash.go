// Package passwordhash computes and verifies stored password digests.
package passwordhash

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher turns a plaintext password into the string stored for a user and
// checks a candidate password against it.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(stored, password string) bool
}

// Algorithm names accepted by New.
const (
	SHA256 = "sha256"
	Bcrypt = "bcrypt"
)

// New returns the Hasher registered under name.
func New(name string) (Hasher, error) {
	switch name {
	case SHA256, "":
		return SHA256Hasher{}, nil
	case Bcrypt:
		return BcryptHasher{Cost: bcrypt.DefaultCost}, nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", name)
	}
}

// SHA256Hasher stores the lowercase hex SHA-256 digest of the password.
// The digest is deterministic, so verification recomputes it and compares.
type SHA256Hasher struct{}

// Hash returns the 64-character hex digest of password.
func (SHA256Hasher) Hash(password string) (string, error) {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}

// Verify recomputes the digest and compares it in constant time.
func (h SHA256Hasher) Verify(stored, password string) bool {
	candidate, _ := h.Hash(password)
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}

// BcryptHasher stores salted bcrypt hashes.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(b), nil
}

func (BcryptHasher) Verify(stored, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}
