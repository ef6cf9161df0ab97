// Package authencoding stores and verifies passwords in the LDAP-style
// notation {SCHEME}payload, dispatching to the scheme named by the prefix.
//
// # Architecture
//
// The central abstraction is the [Scheme] interface. Schemes are collected
// in a [Registry], an ordered, append-only list of (identifier, prefix,
// scheme) entries that is populated once at startup and sealed. The
// [Manager] sits on top of a registry and implements the public operations:
//
//   - [Manager.EncryptWith] produces "{ID}" + scheme payload.
//   - [Manager.Validate] recovers the scheme from the reference prefix; a
//     reference without a registered prefix is compared as cleartext.
//   - [Manager.IsEncrypted] reports whether a value carries a registered prefix.
//   - [Manager.ListSchemes] returns identifiers in registration order.
//
// Built-in schemes:
//
//   - SSHA   salted SHA-1, salt appended to the digest, base64 (the default)
//   - SHA    base64 SHA-1
//   - SHA256 hex SHA-256
//   - BCRYPT bcrypt via golang.org/x/crypto (build tag authencoding_nobcrypt removes it)
//   - CRYPT  traditional DES crypt(3) (build tag authencoding_nocrypt removes it)
//   - MYSQL  legacy pre-4.1 MySQL hash, insecure, kept for interoperability
//   - ARGON2 OpenLDAP-style PHC argon2 (opt-in through [Options].EnableArgon2)
//
// # Quick start
//
//	m, err := authencoding.NewDefaultManager(authencoding.DefaultOptions())
//	if err != nil { log.Fatal(err) }
//
//	stored, _ := m.EncryptString("my-secret-password", authencoding.SSHA)
//	ok := m.ValidateString(stored, "my-secret-password") // true
//
// # Text and bytes
//
// A [Password] remembers whether it was built from text or raw bytes. Text is
// hashed as ISO-8859-1 by the digest schemes so that Latin-1 passwords match
// hashes written by other LDAP implementations byte for byte.
//
// # Timing
//
// Every comparison of a recomputed value against a stored one goes through
// [ConstantTimeCompare]. Only a length mismatch returns early; the stored
// length is not secret.
package authencoding
