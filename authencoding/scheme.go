package authencoding

import "strings"

// Identifier names a password encoding scheme, e.g. "SSHA". Identifiers are
// short uppercase tokens and are embedded in every encoded value as
// "{" + identifier + "}".
type Identifier string

const (
	// SSHA selects salted SHA-1 (the default scheme).
	SSHA Identifier = "SSHA"
	// SHA selects unsalted SHA-1.
	SHA Identifier = "SHA"
	// SHA256 selects unsalted SHA-256, hex encoded.
	SHA256 Identifier = "SHA256"
	// BCRYPT selects bcrypt.
	BCRYPT Identifier = "BCRYPT"
	// CRYPT selects traditional DES crypt(3).
	CRYPT Identifier = "CRYPT"
	// MYSQL selects the legacy pre-4.1 MySQL password hash.
	MYSQL Identifier = "MYSQL"
	// ARGON2 selects argon2 in PHC string format.
	ARGON2 Identifier = "ARGON2"
)

// DefaultScheme is used by [Manager.Encrypt] unless the manager is configured
// otherwise.
const DefaultScheme = SSHA

// Prefix returns the "{ID}" marker for id.
func (id Identifier) Prefix() string {
	return "{" + string(id) + "}"
}

// ParseIdentifier normalises user input such as "ssha" or "{SSHA}" into an
// Identifier. It does not check that the scheme is registered.
func ParseIdentifier(s string) Identifier {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")
	return Identifier(strings.ToUpper(s))
}

// Scheme is implemented by every password encoding scheme.
//
// Encrypt returns the payload only; the "{ID}" prefix is added by the
// [Manager]. Validate receives the reference with the prefix already
// stripped and must report a mismatch, never a panic or an error, for
// malformed input.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type Scheme interface {
	Encrypt(pw Password) ([]byte, error)
	Validate(reference []byte, attempt Password) bool
}

// SchemeFunc adapts two plain functions to the [Scheme] interface.
// It is handy for tests and for small custom schemes.
type SchemeFunc struct {
	EncryptFunc  func(pw Password) ([]byte, error)
	ValidateFunc func(reference []byte, attempt Password) bool
}

// Encrypt calls f.EncryptFunc.
func (f SchemeFunc) Encrypt(pw Password) ([]byte, error) { return f.EncryptFunc(pw) }

// Validate calls f.ValidateFunc. When it is nil, attempt is encrypted with
// f.EncryptFunc and compared to reference in constant time, which suits any
// unsalted scheme.
func (f SchemeFunc) Validate(reference []byte, attempt Password) bool {
	if f.ValidateFunc == nil {
		out, err := f.EncryptFunc(attempt)
		return err == nil && ConstantTimeCompare(out, reference)
	}
	return f.ValidateFunc(reference, attempt)
}
