package credential

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// dummyHash is compared against when the username does not exist, so a lookup
// miss costs the same as a wrong password and the response never reveals
// whether the username was the failing half.
var dummyHash = []byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5B4P9n1mZkZB0Zp1zGyj5aH4qPzO6")

// HashSource resolves a username to its stored bcrypt hash.
type HashSource interface {
	PasswordHash(ctx context.Context, username string) (string, error)
}

var ErrNoSuchUser = errors.New("no such user")

type Verifier struct {
	source HashSource
}

func NewVerifier(source HashSource) *Verifier {
	return &Verifier{source: source}
}

// Verify checks the supplied plaintext against the stored hash. An unknown
// username and a wrong password are indistinguishable to the caller: both
// return ErrInvalidCredentials.
func (v *Verifier) Verify(ctx context.Context, username, password string) error {
	hash, err := v.source.PasswordHash(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNoSuchUser) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return ErrInvalidCredentials
		}
		return fmt.Errorf("look up credentials: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}

	return nil
}
