// Package credential defines the credential directory a session verifies
// logins against: a read-only lookup from contact handle to principal and
// expected secret.
package credential

import (
	"context"
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/xraph/keeper/principal"
)

// ErrNotFound is returned by Lookup when no entry has the handle.
var ErrNotFound = errors.New("credential: handle not found")

// Directory resolves a contact handle to its entry. Implementations must
// match handles case-insensitively and return ErrNotFound (possibly wrapped)
// for unknown handles. Any other error is an infrastructure failure.
type Directory interface {
	Lookup(ctx context.Context, handle string) (*Entry, error)
}

// Entry pairs a principal with the secret that authenticates it.
// Exactly one of Secret or SecretHash is expected to be set; SecretHash is a
// bcrypt hash and takes precedence.
type Entry struct {
	Principal  principal.Principal `json:"principal" yaml:"principal" toml:"principal"`
	Secret     string              `json:"secret,omitempty" yaml:"secret,omitempty" toml:"secret,omitempty"`
	SecretHash string              `json:"secret_hash,omitempty" yaml:"secret_hash,omitempty" toml:"secret_hash,omitempty"`
}

// Verify reports whether secret authenticates the entry.
func (e *Entry) Verify(secret string) bool {
	if e == nil {
		return false
	}
	if e.SecretHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(e.SecretHash), []byte(secret)) == nil
	}
	if e.Secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(e.Secret), []byte(secret)) == 1
}

// Clone returns a deep copy of e.
func (e *Entry) Clone() *Entry {
	cp := *e
	cp.Principal = *e.Principal.Clone()
	return &cp
}

// HashSecret returns a bcrypt hash of secret suitable for Entry.SecretHash.
func HashSecret(secret string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
