//go:build authencoding_nobcrypt

package authencoding

const bcryptAvailable = false

func newBcryptScheme(Options) (Scheme, error) { return nil, nil }
