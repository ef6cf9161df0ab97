package authencoding_test

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hasbyte1/go-authencoding/authencoding"
)

// testBcryptCost is the minimum bcrypt work factor, used so the suite runs
// quickly. Production code should use DefaultBcryptCost.
const testBcryptCost = 4

func fastArgon2Opts() authencoding.Argon2Options {
	return authencoding.Argon2Options{
		Variant: authencoding.Argon2id,
		Memory:  64,
		Time:    1,
		Threads: 1,
		KeyLen:  16,
		SaltLen: 8,
	}
}

func fastOptions() authencoding.Options {
	return authencoding.Options{
		BcryptCost:   testBcryptCost,
		EnableArgon2: true,
		Argon2:       fastArgon2Opts(),
	}
}

// newTestManager returns a Manager with every available scheme registered
// using fast options. It accepts testing.TB so benchmarks can use it too.
func newTestManager(tb testing.TB, mopts ...authencoding.ManagerOption) *authencoding.Manager {
	tb.Helper()
	m, err := authencoding.NewDefaultManager(fastOptions(), mopts...)
	if err != nil {
		tb.Fatalf("NewDefaultManager: %v", err)
	}
	return m
}

// fixedRandom replays a fixed byte pattern.
type fixedRandom struct {
	b []byte
}

func (f fixedRandom) Bytes(n int) ([]byte, error) {
	out := make([]byte, n)
	for i := range out {
		out[i] = f.b[i%len(f.b)]
	}
	return out, nil
}

func (f fixedRandom) Choice(set string) (byte, error) {
	return set[int(f.b[0])%len(set)], nil
}

var errBrokenRandom = errors.New("entropy pool on fire")

type brokenRandom struct{}

func (brokenRandom) Bytes(int) ([]byte, error) { return nil, errBrokenRandom }
func (brokenRandom) Choice(string) (byte, error) { return 0, errBrokenRandom }
func (brokenRandom) Read(p []byte) (int, error) { return 0, errBrokenRandom }

// recordingObserver keeps every observation for later inspection.
type recordingObserver struct {
	mu        sync.Mutex
	encrypts  []authencoding.Identifier
	encErrs   []error
	validates []authencoding.Identifier
	results   []bool
}

func (o *recordingObserver) ObserveEncrypt(id authencoding.Identifier, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.encrypts = append(o.encrypts, id)
	o.encErrs = append(o.encErrs, err)
}

func (o *recordingObserver) ObserveValidate(id authencoding.Identifier, _ time.Duration, ok bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.validates = append(o.validates, id)
	o.results = append(o.results, ok)
}

// testPasswords covers empty, ASCII, Latin-1, non-Latin-1 text and raw
// bytes with the high bit set.
func testPasswords() map[string]authencoding.Password {
	return map[string]authencoding.Password{
		"empty":       authencoding.TextPassword(""),
		"ascii":       authencoding.TextPassword("hunter2"),
		"spaces":      authencoding.TextPassword("correct horse\tbattery"),
		"latin1":      authencoding.TextPassword("été"),
		"cyrillic":    authencoding.TextPassword("пароль"),
		"cjk":         authencoding.TextPassword("密码"),
		"raw-bytes":   authencoding.BytePassword([]byte{0xff, 0x00, 0x80, 'a', 0xe9}),
		"empty-bytes": authencoding.BytePassword([]byte{}),
	}
}

func hasPrefix(b []byte, id authencoding.Identifier) bool {
	return bytes.HasPrefix(b, []byte(id.Prefix()))
}
