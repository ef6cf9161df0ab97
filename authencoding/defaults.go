package authencoding

import (
	"fmt"
	"slices"
)

// DefaultBcryptCost is the bcrypt work factor used by [DefaultOptions].
// At cost 12 hashing takes roughly 250 ms on a modern server CPU; that is
// intentional and not a hung call.
const DefaultBcryptCost = 12

// Options configures [NewDefaultRegistry].
//
// Zero values select the defaults, so Options{} is usable as is.
type Options struct {
	// Random supplies salts to SSHA, CRYPT and ARGON2. Default: the result
	// of [NewRandomSource].
	Random RandomSource

	// SSHASaltLen is the SSHA salt length. Default: [DefaultSSHASaltLen].
	SSHASaltLen int

	// BcryptCost is the bcrypt work factor. Default: [DefaultBcryptCost].
	BcryptCost int

	// Disabled lists schemes that must not be registered even though their
	// primitive is available.
	Disabled []Identifier

	// EnableArgon2 registers the ARGON2 scheme after the built-ins.
	EnableArgon2 bool

	// Argon2 configures the ARGON2 scheme. Default: [DefaultArgon2Options].
	Argon2 Argon2Options
}

// DefaultOptions returns Options with every default filled in.
func DefaultOptions() Options {
	r, _ := NewRandomSource()
	return Options{
		Random:      r,
		SSHASaltLen: DefaultSSHASaltLen,
		BcryptCost:  DefaultBcryptCost,
		Argon2:      DefaultArgon2Options(),
	}
}

func (o Options) withDefaults() Options {
	if o.Random == nil {
		o.Random, _ = NewRandomSource()
	}
	if o.SSHASaltLen == 0 {
		o.SSHASaltLen = DefaultSSHASaltLen
	}
	if o.BcryptCost == 0 {
		o.BcryptCost = DefaultBcryptCost
	}
	if o.Argon2 == (Argon2Options{}) {
		o.Argon2 = DefaultArgon2Options()
	}
	return o
}

// Available reports whether the primitive behind id is compiled into this
// binary. It does not consult any registry.
func Available(id Identifier) bool {
	switch id {
	case SSHA, SHA, SHA256, MYSQL, ARGON2:
		return true
	case BCRYPT:
		return bcryptAvailable
	case CRYPT:
		return cryptAvailable
	default:
		return false
	}
}

// NewDefaultRegistry creates a sealed Registry holding the built-in schemes
// in this order: SSHA, SHA, SHA256, BCRYPT, CRYPT, MYSQL, and ARGON2 when
// enabled. Schemes whose primitive is not compiled in, or that are listed in
// opts.Disabled, are skipped.
func NewDefaultRegistry(opts Options) (*Registry, error) {
	opts = opts.withDefaults()

	builders := []struct {
		id    Identifier
		build func(Options) (Scheme, error)
		skip  bool
	}{
		{SSHA, func(o Options) (Scheme, error) { return NewSSHAScheme(o.Random, o.SSHASaltLen) }, false},
		{SHA, func(Options) (Scheme, error) { return SHAScheme{}, nil }, false},
		{SHA256, func(Options) (Scheme, error) { return SHA256Scheme{}, nil }, false},
		{BCRYPT, newBcryptScheme, !bcryptAvailable},
		{CRYPT, newCryptScheme, !cryptAvailable},
		{MYSQL, func(Options) (Scheme, error) { return MySQLScheme{}, nil }, false},
		{ARGON2, func(o Options) (Scheme, error) { return NewArgon2Scheme(o.Argon2, o.Random) }, !opts.EnableArgon2},
	}

	reg := NewRegistry()
	for _, b := range builders {
		if b.skip || slices.Contains(opts.Disabled, b.id) {
			continue
		}
		s, err := b.build(opts)
		if err != nil {
			return nil, fmt.Errorf("authencoding: failed to create %s scheme: %w", b.id, err)
		}
		if err := reg.Register(b.id, s); err != nil {
			return nil, err
		}
	}
	reg.Seal()
	return reg, nil
}

// NewDefaultManager creates a Manager over [NewDefaultRegistry].
//
// This is the recommended starting point for most applications.
//
//	m, err := authencoding.NewDefaultManager(authencoding.DefaultOptions())
//	stored, _ := m.EncryptString("secret", authencoding.SSHA)
func NewDefaultManager(opts Options, mopts ...ManagerOption) (*Manager, error) {
	reg, err := NewDefaultRegistry(opts)
	if err != nil {
		return nil, err
	}
	return NewManager(reg, mopts...), nil
}
