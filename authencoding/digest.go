package authencoding

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

const (
	// DefaultSSHASaltLen is the number of salt bytes drawn per SSHA encoding.
	// Any length can be validated; the salt length is implied by the payload.
	DefaultSSHASaltLen = 7

	// MaxSSHASaltLen bounds the configurable salt length.
	MaxSSHASaltLen = 64
)

// ──────────────────────────────────────────────────────────────────────────────
// SSHA
// ──────────────────────────────────────────────────────────────────────────────

// SSHAScheme is salted SHA-1: base64(SHA1(password || salt) || salt).
//
// The salt starts at byte 20 of the decoded payload, right after the digest.
type SSHAScheme struct {
	rand    RandomSource
	saltLen int
}

// NewSSHAScheme constructs an SSHAScheme drawing saltLen bytes from r for
// each encoding. A nil r selects [NewSecureRandom]. Returns
// [ErrInvalidOption] if saltLen is outside [1, MaxSSHASaltLen].
func NewSSHAScheme(r RandomSource, saltLen int) (*SSHAScheme, error) {
	if saltLen < 1 || saltLen > MaxSSHASaltLen {
		return nil, fmt.Errorf("%w: ssha salt length %d must be in [1, %d]",
			ErrInvalidOption, saltLen, MaxSSHASaltLen)
	}
	if r == nil {
		r = NewSecureRandom()
	}
	return &SSHAScheme{rand: r, saltLen: saltLen}, nil
}

// Encrypt implements [Scheme].
func (s *SSHAScheme) Encrypt(pw Password) ([]byte, error) {
	salt, err := s.rand.Bytes(s.saltLen)
	if err != nil {
		return nil, fmt.Errorf("ssha: failed to generate salt: %w", err)
	}
	return sshaEncode(pw.Latin1(), salt), nil
}

// Validate implements [Scheme]. A reference that is not valid base64 never
// matches.
func (s *SSHAScheme) Validate(reference []byte, attempt Password) bool {
	raw := make([]byte, base64.StdEncoding.DecodedLen(len(reference)))
	n, err := base64.StdEncoding.Decode(raw, reference)
	if err != nil {
		return false
	}
	var salt []byte
	if n > sha1.Size {
		salt = raw[sha1.Size:n]
	}
	return ConstantTimeCompare(sshaEncode(attempt.Latin1(), salt), reference)
}

func sshaEncode(pw, salt []byte) []byte {
	h := sha1.New()
	h.Write(pw)
	h.Write(salt)
	sum := h.Sum(nil)
	sum = append(sum, salt...)
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum)
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// SHA
// ──────────────────────────────────────────────────────────────────────────────

// SHAScheme is unsalted SHA-1, base64 encoded.
type SHAScheme struct{}

// Encrypt implements [Scheme].
func (SHAScheme) Encrypt(pw Password) ([]byte, error) {
	return shaEncode(pw.Latin1()), nil
}

// Validate implements [Scheme].
func (SHAScheme) Validate(reference []byte, attempt Password) bool {
	return ConstantTimeCompare(shaEncode(attempt.Latin1()), reference)
}

func shaEncode(pw []byte) []byte {
	sum := sha1.Sum(pw)
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// SHA256
// ──────────────────────────────────────────────────────────────────────────────

// SHA256Scheme is unsalted SHA-256, lowercase hex encoded.
type SHA256Scheme struct{}

// Encrypt implements [Scheme].
func (SHA256Scheme) Encrypt(pw Password) ([]byte, error) {
	return sha256Encode(pw.Latin1()), nil
}

// Validate implements [Scheme].
func (SHA256Scheme) Validate(reference []byte, attempt Password) bool {
	return ConstantTimeCompare(sha256Encode(attempt.Latin1()), reference)
}

func sha256Encode(pw []byte) []byte {
	sum := sha256.Sum256(pw)
	out := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(out, sum[:])
	return out
}
