package authencoding

import (
	"log/slog"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

const redacted = "[redacted]"

// Password is a cleartext password handed to a [Scheme].
//
// It remembers whether the caller supplied text or raw bytes because
// schemes coerce the two differently: digest schemes hash text as
// ISO-8859-1, bcrypt hashes text as UTF-8, and the legacy MYSQL and CRYPT
// schemes work on characters.
//
// The zero value is the empty text password. A Password never prints its
// content through fmt or log/slog.
type Password struct {
	raw    []byte
	text   string
	isText bool
}

// TextPassword wraps a text password.
func TextPassword(s string) Password {
	return Password{text: s, isText: true}
}

// BytePassword wraps a raw byte password. The slice is not copied.
func BytePassword(b []byte) Password {
	return Password{raw: b}
}

// IsText reports whether p was built from text.
func (p Password) IsText() bool { return p.isText || p.raw == nil }

// Latin1 returns the binary coercion of p: text encoded as ISO-8859-1, raw
// bytes unchanged. See [Binary] for text outside the Latin-1 repertoire.
func (p Password) Latin1() []byte {
	if !p.IsText() {
		return p.raw
	}
	return Binary(p.text)
}

// UTF8 returns text as UTF-8 and raw bytes unchanged.
func (p Password) UTF8() []byte {
	if !p.IsText() {
		return p.raw
	}
	return []byte(p.text)
}

// Text returns the text coercion of p: text unchanged, raw bytes decoded
// leniently as ASCII. See [Text].
func (p Password) Text() string {
	if !p.IsText() {
		return Text(p.raw)
	}
	return p.text
}

// String implements fmt.Stringer without revealing the password.
func (p Password) String() string { return redacted }

// GoString implements fmt.GoStringer without revealing the password.
func (p Password) GoString() string { return "authencoding.Password{" + redacted + "}" }

// LogValue implements slog.LogValuer without revealing the password.
func (p Password) LogValue() slog.Value { return slog.StringValue(redacted) }

// Binary converts s to bytes as ISO-8859-1 so that every character below
// U+0100 maps to exactly one byte. Text containing characters outside
// Latin-1, or invalid UTF-8, cannot be represented that way and is returned
// as its UTF-8 bytes instead.
func Binary(s string) []byte {
	if isASCII(s) {
		return []byte(s)
	}
	out, err := charmap.ISO8859_1.NewEncoder().String(s)
	if err != nil {
		return []byte(s)
	}
	return []byte(out)
}

// Text converts b to a string for display, decoding it as ASCII. Every byte
// above 0x7F becomes U+FFFD.
func Text(b []byte) string {
	n := 0
	for _, c := range b {
		if c >= utf8.RuneSelf {
			n++
		}
	}
	if n == 0 {
		return string(b)
	}
	buf := make([]byte, 0, len(b)+n*(utf8.RuneLen(utf8.RuneError)-1))
	for _, c := range b {
		if c >= utf8.RuneSelf {
			buf = utf8.AppendRune(buf, utf8.RuneError)
			continue
		}
		buf = append(buf, c)
	}
	return string(buf)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
