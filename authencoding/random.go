package authencoding

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"math/big"
	mrand "math/rand/v2"
	"os"
	"sync"
	"time"
)

// RandomSource supplies salt material to the salted schemes.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type RandomSource interface {
	// Bytes returns n random bytes, each uniformly distributed over 0..255.
	Bytes(n int) ([]byte, error)

	// Choice returns one byte picked uniformly from set.
	Choice(set string) (byte, error)
}

// SecureRandom draws from the operating system's cryptographically secure
// generator. It needs no synchronisation.
type SecureRandom struct {
	r io.Reader
}

// NewSecureRandom returns a SecureRandom backed by crypto/rand.
func NewSecureRandom() *SecureRandom {
	return &SecureRandom{r: rand.Reader}
}

// NewRandomFromReader returns a SecureRandom that reads from r instead of
// crypto/rand, e.g. a hardware generator. r must be safe for concurrent use.
func NewRandomFromReader(r io.Reader) *SecureRandom {
	return &SecureRandom{r: r}
}

// Bytes implements [RandomSource].
func (s *SecureRandom) Bytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(s.r, b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRandomUnavailable, err)
	}
	return b, nil
}

// Choice implements [RandomSource].
func (s *SecureRandom) Choice(set string) (byte, error) {
	if set == "" {
		return 0, fmt.Errorf("%w: empty choice set", ErrInvalidOption)
	}
	i, err := rand.Int(s.r, big.NewInt(int64(len(set))))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRandomUnavailable, err)
	}
	return set[i.Int64()], nil
}

// ReseedingRandom is the degraded-security mode for platforms without a
// secure generator. Before every draw it reseeds a ChaCha8 generator from
// SHA-256 over the previous generator state, the wall clock and the process
// id, which keeps consecutive salts from being predictable from a single
// observed seed. A mutex serialises reseed and draw.
//
// Prefer [SecureRandom]; [NewRandomSource] only falls back to this type when
// the operating system generator fails.
type ReseedingRandom struct {
	mu  sync.Mutex
	gen *mrand.ChaCha8
	now func() time.Time
}

// NewReseedingRandom returns a ReseedingRandom seeded from the current time
// and process id.
func NewReseedingRandom() *ReseedingRandom {
	r := &ReseedingRandom{now: time.Now}
	r.gen = mrand.NewChaCha8(r.seed(nil))
	return r
}

func (r *ReseedingRandom) seed(state []byte) [32]byte {
	h := sha256.New()
	fmt.Fprintf(h, "%x%d%d", state, r.now().UnixNano(), os.Getpid())
	var s [32]byte
	copy(s[:], h.Sum(nil))
	return s
}

// reseedLocked must be called with r.mu held.
func (r *ReseedingRandom) reseedLocked() {
	state, err := r.gen.MarshalBinary()
	if err != nil {
		state = nil
	}
	r.gen = mrand.NewChaCha8(r.seed(state))
}

// Bytes implements [RandomSource].
func (r *ReseedingRandom) Bytes(n int) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := make([]byte, n)
	for i := range b {
		r.reseedLocked()
		b[i] = byte(r.gen.Uint64())
	}
	return b, nil
}

// Choice implements [RandomSource].
func (r *ReseedingRandom) Choice(set string) (byte, error) {
	if set == "" {
		return 0, fmt.Errorf("%w: empty choice set", ErrInvalidOption)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reseedLocked()
	return set[mrand.New(r.gen).IntN(len(set))], nil
}

// NewRandomSource returns a [SecureRandom] when the operating system
// generator answers a probe read, and a [ReseedingRandom] otherwise. The
// second result reports whether the secure source was selected.
func NewRandomSource() (RandomSource, bool) {
	s := NewSecureRandom()
	if _, err := s.Bytes(1); err != nil {
		return NewReseedingRandom(), false
	}
	return s, true
}
