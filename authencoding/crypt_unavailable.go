//go:build authencoding_nocrypt

package authencoding

const cryptAvailable = false

func newCryptScheme(Options) (Scheme, error) { return nil, nil }
