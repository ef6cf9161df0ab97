package authencoding

import "fmt"

// MySQLScheme reproduces the password hash of MySQL servers before 4.1.
//
// It is not a cryptographic hash and must not be used for new passwords. It
// is kept so that values imported from such servers still validate, which
// requires the arithmetic below to match the server bit for bit: two
// accumulators updated per character, spaces and tabs skipped, both masked
// to 31 bits and printed as 8 hex digits each.
type MySQLScheme struct{}

// Encrypt implements [Scheme].
func (MySQLScheme) Encrypt(pw Password) ([]byte, error) {
	return mysqlHash(pw.Text()), nil
}

// Validate implements [Scheme].
func (MySQLScheme) Validate(reference []byte, attempt Password) bool {
	return ConstantTimeCompare(mysqlHash(attempt.Text()), reference)
}

// mysqlHash works modulo 2^64. Every operation involved (xor, add, multiply,
// left shift) only carries towards higher bits, so the low 31 bits equal
// those of the unbounded computation.
func mysqlHash(s string) []byte {
	nr := uint64(1345345333)
	nr2 := uint64(0x12345671)
	add := uint64(7)
	for _, r := range s {
		if r == ' ' || r == '\t' {
			continue
		}
		c := uint64(r)
		nr ^= ((nr&63)+add)*c + nr<<8
		nr2 += nr2<<8 ^ nr
		add += c
	}
	const mask = 1<<31 - 1
	return fmt.Appendf(nil, "%08x%08x", nr&mask, nr2&mask)
}
