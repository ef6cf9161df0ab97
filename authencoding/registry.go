package authencoding

import (
	"bytes"
	"fmt"
	"sync"
)

// Entry is one registered scheme.
type Entry struct {
	ID     Identifier
	Prefix []byte
	Scheme Scheme
}

// Registry is an ordered, append-only list of schemes.
//
// The registry is meant to be populated once at startup and then sealed with
// [Registry.Seal]; from then on it is read-only. Lookups scan entries in
// registration order and the first match wins, so registering the same
// identifier twice leaves the first registration in effect.
//
// # Thread safety
//
// All Registry methods are safe for concurrent use by multiple goroutines.
// A [sync.RWMutex] serialises Register while allowing concurrent lookups.
type Registry struct {
	mu      sync.RWMutex
	entries []Entry
	sealed  bool
}

// NewRegistry creates an empty, unsealed Registry.
//
// Use [NewDefaultRegistry] for the variant with every built-in scheme
// registered.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a scheme under id. The prefix is derived as "{id}".
//
// Register does not reject duplicates; callers register each identifier
// once, at startup.
func (r *Registry) Register(id Identifier, s Scheme) error {
	if id == "" {
		return ErrEmptyIdentifier
	}
	if s == nil {
		return ErrNilScheme
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return fmt.Errorf("%w: cannot register %q", ErrRegistrySealed, id)
	}
	r.entries = append(r.entries, Entry{
		ID:     id,
		Prefix: []byte(id.Prefix()),
		Scheme: s,
	})
	return nil
}

// MustRegister is like [Registry.Register] but panics on error. It is meant
// for startup code where a failed registration is a programming error.
func (r *Registry) MustRegister(id Identifier, s Scheme) {
	if err := r.Register(id, s); err != nil {
		panic(err)
	}
}

// Seal makes the registry read-only. Sealing twice is a no-op.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Sealed reports whether [Registry.Seal] has been called.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// Identifiers returns the registered identifiers in registration order.
func (r *Registry) Identifiers() []Identifier {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]Identifier, len(r.entries))
	for i, e := range r.entries {
		ids[i] = e.ID
	}
	return ids
}

// FindByPrefix returns the first entry whose prefix is a byte prefix of
// encoded. Absence is a normal outcome, e.g. for cleartext values.
func (r *Registry) FindByPrefix(encoded []byte) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if bytes.HasPrefix(encoded, e.Prefix) {
			return e, true
		}
	}
	return Entry{}, false
}

// Find returns the first entry registered under id.
func (r *Registry) Find(id Identifier) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Len returns the number of registered entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
