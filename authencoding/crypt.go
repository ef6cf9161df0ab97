//go:build !authencoding_nocrypt

package authencoding

import (
	"fmt"
	"strings"

	descrypt "github.com/digitive/crypt"
)

const cryptAvailable = true

// cryptSaltChars is the crypt(3) salt alphabet.
const cryptSaltChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"abcdefghijklmnopqrstuvwxyz" +
	"0123456789./"

// CryptScheme is traditional DES crypt(3): a 2-character salt followed by
// 11 characters of hash. Only the first 8 characters of a password count.
//
// Build with the authencoding_nocrypt tag to leave this scheme out.
type CryptScheme struct {
	rand RandomSource
}

// NewCryptScheme constructs a CryptScheme drawing salts from r. A nil r
// selects [NewSecureRandom].
func NewCryptScheme(r RandomSource) *CryptScheme {
	if r == nil {
		r = NewSecureRandom()
	}
	return &CryptScheme{rand: r}
}

// Encrypt implements [Scheme].
func (s *CryptScheme) Encrypt(pw Password) ([]byte, error) {
	var salt [2]byte
	for i := range salt {
		c, err := s.rand.Choice(cryptSaltChars)
		if err != nil {
			return nil, fmt.Errorf("crypt: failed to generate salt: %w", err)
		}
		salt[i] = c
	}
	out, err := descrypt.Crypt(pw.Text(), string(salt[:]))
	if err != nil {
		return nil, fmt.Errorf("crypt: failed to hash password: %w", err)
	}
	return []byte(out), nil
}

// Validate implements [Scheme]. The salt is the first two bytes of the
// reference and must come from the crypt(3) salt alphabet.
func (s *CryptScheme) Validate(reference []byte, attempt Password) bool {
	if len(reference) < 2 ||
		strings.IndexByte(cryptSaltChars, reference[0]) < 0 ||
		strings.IndexByte(cryptSaltChars, reference[1]) < 0 {
		return false
	}
	out, err := descrypt.Crypt(attempt.Text(), Text(reference[:2]))
	if err != nil {
		return false
	}
	return ConstantTimeCompare(Binary(out), reference)
}

func newCryptScheme(opts Options) (Scheme, error) {
	return NewCryptScheme(opts.Random), nil
}
