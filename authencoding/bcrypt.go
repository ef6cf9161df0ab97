//go:build !authencoding_nobcrypt

package authencoding

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const bcryptAvailable = true

// BcryptScheme hashes passwords with bcrypt. Text passwords are hashed as
// UTF-8; the salt is generated and embedded by the bcrypt primitive.
//
// Build with the authencoding_nobcrypt tag to leave this scheme out.
//
// # Thread safety
//
// BcryptScheme is immutable after construction and safe for concurrent use.
type BcryptScheme struct {
	cost int
}

// NewBcryptScheme constructs a BcryptScheme with the given work factor.
// Returns [ErrInvalidOption] if cost is outside [bcrypt.MinCost, bcrypt.MaxCost].
func NewBcryptScheme(cost int) (*BcryptScheme, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w: bcrypt cost %d must be in [%d, %d]",
			ErrInvalidOption, cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &BcryptScheme{cost: cost}, nil
}

// Cost returns the configured bcrypt work factor.
func (s *BcryptScheme) Cost() int { return s.cost }

// Encrypt implements [Scheme]. bcrypt rejects passwords longer than 72
// bytes; the error wraps [bcrypt.ErrPasswordTooLong].
func (s *BcryptScheme) Encrypt(pw Password) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword(pw.UTF8(), s.cost)
	if err != nil {
		return nil, fmt.Errorf("bcrypt: failed to hash password: %w", err)
	}
	return hash, nil
}

// Validate implements [Scheme]. Any error from the primitive, including a
// malformed salt or version, counts as a mismatch.
func (s *BcryptScheme) Validate(reference []byte, attempt Password) bool {
	return bcrypt.CompareHashAndPassword(reference, attempt.UTF8()) == nil
}

func newBcryptScheme(opts Options) (Scheme, error) {
	return NewBcryptScheme(opts.BcryptCost)
}
