package authencoding

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ──────────────────────────────────────────────────────────────────────────────
// Options
// ──────────────────────────────────────────────────────────────────────────────

// Argon2Variant selects the Argon2 flavour written by [Argon2Scheme].
type Argon2Variant string

const (
	// Argon2i uses data-independent memory access.
	Argon2i Argon2Variant = "argon2i"
	// Argon2id is the hybrid recommended by RFC 9106.
	Argon2id Argon2Variant = "argon2id"
)

const (
	// DefaultArgon2Memory is the default memory cost in KiB (64 MiB).
	DefaultArgon2Memory uint32 = 64 * 1024

	// DefaultArgon2Time is the default number of iterations.
	DefaultArgon2Time uint32 = 3

	// DefaultArgon2Threads is the default degree of parallelism.
	DefaultArgon2Threads uint8 = 2

	// DefaultArgon2KeyLen is the default output key length in bytes.
	DefaultArgon2KeyLen uint32 = 32

	// DefaultArgon2SaltLen is the default random salt length in bytes.
	DefaultArgon2SaltLen uint32 = 16

	// maxArgon2Memory and maxArgon2Time bound the cost of a single
	// derivation, for configured options and stored references alike.
	maxArgon2Memory uint32 = 1024 * 1024 // 1 GiB
	maxArgon2Time   uint32 = 16

	argon2Version = argon2.Version // 0x13 = 19
)

// Argon2Options sets the parameters written into new {ARGON2} values.
//
// Each value records its own m, t and p, so existing references keep
// validating after these options change.
type Argon2Options struct {
	// Variant selects argon2i or argon2id for new values.
	Variant Argon2Variant

	// Memory is the m= field in KiB, between 8*Threads and 1 GiB.
	Memory uint32

	// Time is the t= field, between 1 and 16 passes.
	Time uint32

	// Threads is the p= field, at least 1.
	Threads uint8

	// KeyLen is the size of the trailing hash segment in bytes, at least 4.
	KeyLen uint32

	// SaltLen is the size of the salt segment in bytes, at least 8.
	SaltLen uint32
}

// DefaultArgon2Options returns Argon2Options with the recommended defaults.
func DefaultArgon2Options() Argon2Options {
	return Argon2Options{
		Variant: Argon2id,
		Memory:  DefaultArgon2Memory,
		Time:    DefaultArgon2Time,
		Threads: DefaultArgon2Threads,
		KeyLen:  DefaultArgon2KeyLen,
		SaltLen: DefaultArgon2SaltLen,
	}
}

func validateArgon2Options(opts Argon2Options) error {
	if opts.Variant != Argon2i && opts.Variant != Argon2id {
		return fmt.Errorf("%w: unknown argon2 variant %q", ErrInvalidOption, opts.Variant)
	}
	if opts.Time < 1 || opts.Time > maxArgon2Time {
		return fmt.Errorf("%w: argon2 time %d must be in [1, %d]", ErrInvalidOption, opts.Time, maxArgon2Time)
	}
	if opts.Threads < 1 {
		return fmt.Errorf("%w: argon2 threads must be ≥ 1, got %d", ErrInvalidOption, opts.Threads)
	}
	if opts.Memory < 8*uint32(opts.Threads) || opts.Memory > maxArgon2Memory {
		return fmt.Errorf("%w: argon2 memory (%d KiB) must be in [8×threads, %d]",
			ErrInvalidOption, opts.Memory, maxArgon2Memory)
	}
	if opts.KeyLen < 4 {
		return fmt.Errorf("%w: argon2 key_len must be ≥ 4, got %d", ErrInvalidOption, opts.KeyLen)
	}
	if opts.SaltLen < 8 {
		return fmt.Errorf("%w: argon2 salt_len must be ≥ 8, got %d", ErrInvalidOption, opts.SaltLen)
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// PHC string format helpers
// ──────────────────────────────────────────────────────────────────────────────

// argon2Params holds parameters and raw values decoded from a PHC string.
type argon2Params struct {
	variant Argon2Variant
	version uint32
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	hash    []byte
}

// encodePHC serialises an Argon2 hash in PHC String Format:
//
//	$argon2id$v=19$m=65536,t=3,p=2$<salt_base64>$<hash_base64>
//
// The base64 encoding is the standard alphabet without padding, as written
// by OpenLDAP's argon2 module and the reference implementation.
func encodePHC(variant Argon2Variant, memory, time uint32, threads uint8, salt, hash []byte) []byte {
	return fmt.Appendf(nil, "$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		string(variant),
		argon2Version,
		memory,
		time,
		threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)
}

// decodePHC parses an Argon2 PHC string.
//
// Expected format (6 dollar-delimited segments, first is empty):
//
//	$argon2id$v=19$m=65536,t=3,p=2$<salt>$<hash>
func decodePHC(encoded string) (*argon2Params, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, fmt.Errorf("expected 5-segment PHC string, got %d segments", len(parts)-1)
	}

	var variant Argon2Variant
	switch Argon2Variant(parts[1]) {
	case Argon2i, Argon2id:
		variant = Argon2Variant(parts[1])
	default:
		return nil, fmt.Errorf("unknown argon2 variant %q", parts[1])
	}

	v, ok := strings.CutPrefix(parts[2], "v=")
	if !ok || v != strconv.Itoa(argon2Version) {
		return nil, fmt.Errorf("unsupported argon2 version segment %q", parts[2])
	}

	memory, time, threads, err := parseCost(parts[3])
	if err != nil {
		return nil, err
	}
	if time < 1 || time > maxArgon2Time ||
		threads < 1 || threads > 255 ||
		memory < 8*threads || memory > maxArgon2Memory {
		return nil, fmt.Errorf("argon2 parameters out of range in %q", parts[3])
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, fmt.Errorf("invalid salt base64: %v", err)
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, fmt.Errorf("invalid hash base64: %v", err)
	}
	if len(hash) < 4 {
		return nil, fmt.Errorf("argon2 hash too short: %d bytes", len(hash))
	}

	return &argon2Params{
		variant: variant,
		version: argon2Version,
		memory:  memory,
		time:    time,
		threads: uint8(threads),
		salt:    salt,
		hash:    hash,
	}, nil
}

// parseCost reads the "m=..,t=..,p=.." segment. Each key must appear
// exactly once; unknown keys are rejected.
func parseCost(seg string) (memory, time, threads uint32, err error) {
	var seen [3]bool
	for _, field := range strings.Split(seg, ",") {
		key, val, ok := strings.Cut(field, "=")
		if !ok {
			return 0, 0, 0, fmt.Errorf("malformed argon2 parameter %q", field)
		}
		n, perr := strconv.ParseUint(val, 10, 32)
		if perr != nil {
			return 0, 0, 0, fmt.Errorf("argon2 parameter %q: %w", field, perr)
		}
		var i int
		switch key {
		case "m":
			i, memory = 0, uint32(n)
		case "t":
			i, time = 1, uint32(n)
		case "p":
			i, threads = 2, uint32(n)
		default:
			return 0, 0, 0, fmt.Errorf("unknown argon2 parameter %q", key)
		}
		if seen[i] {
			return 0, 0, 0, fmt.Errorf("duplicate argon2 parameter %q", key)
		}
		seen[i] = true
	}
	if !seen[0] || !seen[1] || !seen[2] {
		return 0, 0, 0, fmt.Errorf("missing m/t/p in argon2 parameters %q", seg)
	}
	return memory, time, threads, nil
}

func deriveArgon2(variant Argon2Variant, pw, salt []byte, time, memory uint32, threads uint8, keyLen uint32) []byte {
	if variant == Argon2i {
		return argon2.Key(pw, salt, time, memory, threads, keyLen)
	}
	return argon2.IDKey(pw, salt, time, memory, threads, keyLen)
}

// ──────────────────────────────────────────────────────────────────────────────
// Argon2Scheme
// ──────────────────────────────────────────────────────────────────────────────

// Argon2Scheme stores passwords as an Argon2 PHC string, the payload format
// used by OpenLDAP's {ARGON2} scheme:
//
//	{ARGON2}$argon2id$v=19$m=65536,t=3,p=2$<salt>$<hash>
//
// Text passwords are hashed as ISO-8859-1, like the digest schemes.
// Validation reads variant and cost parameters from the reference, so both
// argon2i and argon2id values verify regardless of the configured options.
//
// # Thread safety
//
// Argon2Scheme is immutable after construction and safe for concurrent use.
type Argon2Scheme struct {
	opts Argon2Options
	rand RandomSource
}

// NewArgon2Scheme constructs an Argon2Scheme. Use [DefaultArgon2Options] for
// recommended defaults. A nil r selects [NewSecureRandom].
func NewArgon2Scheme(opts Argon2Options, r RandomSource) (*Argon2Scheme, error) {
	if err := validateArgon2Options(opts); err != nil {
		return nil, err
	}
	if r == nil {
		r = NewSecureRandom()
	}
	return &Argon2Scheme{opts: opts, rand: r}, nil
}

// Options returns the current Argon2 parameter set.
func (s *Argon2Scheme) Options() Argon2Options { return s.opts }

// Encrypt implements [Scheme]. A fresh salt is drawn for each call.
func (s *Argon2Scheme) Encrypt(pw Password) ([]byte, error) {
	salt, err := s.rand.Bytes(int(s.opts.SaltLen))
	if err != nil {
		return nil, fmt.Errorf("argon2: failed to generate salt: %w", err)
	}
	key := deriveArgon2(s.opts.Variant, pw.Latin1(), salt,
		s.opts.Time, s.opts.Memory, s.opts.Threads, s.opts.KeyLen)
	return encodePHC(s.opts.Variant, s.opts.Memory, s.opts.Time, s.opts.Threads, salt, key), nil
}

// Validate implements [Scheme]. A reference that does not parse as a PHC
// string, or whose parameters are out of range, never matches.
func (s *Argon2Scheme) Validate(reference []byte, attempt Password) bool {
	p, err := decodePHC(string(reference))
	if err != nil {
		return false
	}
	computed := deriveArgon2(p.variant, attempt.Latin1(), p.salt,
		p.time, p.memory, p.threads, uint32(len(p.hash)))
	return ConstantTimeCompare(computed, p.hash)
}
