package authencoding

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Cleartext is the scheme label reported to an [Observer] when a reference
// carries no registered prefix and is compared as a plain password.
const Cleartext Identifier = "CLEARTEXT"

// Observer receives the outcome of every encrypt and validate call. It is
// the hook used by the metrics package.
//
// Implementations must be safe for concurrent use and must not block.
type Observer interface {
	ObserveEncrypt(id Identifier, elapsed time.Duration, err error)
	ObserveValidate(id Identifier, elapsed time.Duration, ok bool)
}

// Manager dispatches encoding and validation to the schemes of a [Registry]
// based on the "{ID}" prefix convention.
//
// # Thread safety
//
// All Manager methods are safe for concurrent use by multiple goroutines.
// The registry it wraps is expected to be sealed before the Manager is
// shared.
type Manager struct {
	reg *Registry
	log *slog.Logger
	obs Observer

	mu  sync.RWMutex
	def Identifier
}

// ManagerOption configures a [Manager].
type ManagerOption func(*Manager)

// WithLogger sets the logger. Passwords and digests are never logged.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithObserver installs an [Observer].
func WithObserver(o Observer) ManagerOption {
	return func(m *Manager) { m.obs = o }
}

// WithDefaultScheme changes the scheme used by [Manager.Encrypt]. The
// identifier is checked lazily, on the first Encrypt call.
func WithDefaultScheme(id Identifier) ManagerOption {
	return func(m *Manager) { m.def = id }
}

// NewManager creates a Manager over reg. The default scheme is
// [DefaultScheme] unless changed with [WithDefaultScheme].
func NewManager(reg *Registry, opts ...ManagerOption) *Manager {
	m := &Manager{
		reg: reg,
		log: slog.New(slog.DiscardHandler),
		def: DefaultScheme,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Registry returns the registry the Manager dispatches to.
func (m *Manager) Registry() *Registry { return m.reg }

// DefaultScheme returns the identifier used by [Manager.Encrypt].
func (m *Manager) DefaultScheme() Identifier {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.def
}

// SetDefaultScheme changes the identifier used by [Manager.Encrypt]. The
// scheme must already be registered.
func (m *Manager) SetDefaultScheme(id Identifier) error {
	if _, ok := m.reg.Find(id); !ok {
		return fmt.Errorf("%w: %q is not registered", ErrUnsupportedScheme, id)
	}
	m.mu.Lock()
	m.def = id
	m.mu.Unlock()
	return nil
}

// Encrypt encodes pw with the default scheme.
func (m *Manager) Encrypt(pw Password) ([]byte, error) {
	return m.EncryptWith(pw, m.DefaultScheme())
}

// EncryptWith encodes pw with the scheme registered under id and returns
// "{id}" followed by the scheme payload.
//
// An unregistered identifier fails with [ErrUnsupportedScheme]; that is a
// configuration error and no other scheme is substituted.
func (m *Manager) EncryptWith(pw Password, id Identifier) ([]byte, error) {
	e, ok := m.reg.Find(id)
	if !ok {
		m.log.Warn("encrypt with unsupported scheme", "scheme", string(id))
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, id)
	}

	start := time.Now()
	payload, err := e.Scheme.Encrypt(pw)
	if m.obs != nil {
		m.obs.ObserveEncrypt(e.ID, time.Since(start), err)
	}
	if err != nil {
		m.log.Error("scheme failed to encrypt", "scheme", string(e.ID), "error", err)
		return nil, fmt.Errorf("authencoding: %s: %w", e.ID, err)
	}

	out := make([]byte, 0, len(e.Prefix)+len(payload))
	out = append(out, e.Prefix...)
	return append(out, payload...), nil
}

// Validate reports whether attempt matches reference.
//
// When reference starts with a registered prefix, the prefix is stripped and
// the matching scheme decides. Otherwise reference is taken to be a legacy
// cleartext password and compared with [ConstantTimeCompare] against the
// binary coercion of attempt. A malformed reference yields false.
func (m *Manager) Validate(reference []byte, attempt Password) bool {
	start := time.Now()
	e, ok := m.reg.FindByPrefix(reference)
	if !ok {
		m.log.Debug("no scheme prefix on reference, comparing as cleartext")
		valid := ConstantTimeCompare(reference, attempt.Latin1())
		m.observeValidate(Cleartext, start, valid)
		return valid
	}

	valid := e.Scheme.Validate(reference[len(e.Prefix):], attempt)
	m.observeValidate(e.ID, start, valid)
	return valid
}

func (m *Manager) observeValidate(id Identifier, start time.Time, ok bool) {
	if m.obs != nil {
		m.obs.ObserveValidate(id, time.Since(start), ok)
	}
	if !ok {
		m.log.Debug("password validation failed", "scheme", string(id))
	}
}

// IsEncrypted reports whether value starts with a registered prefix.
func (m *Manager) IsEncrypted(value []byte) bool {
	_, ok := m.reg.FindByPrefix(value)
	return ok
}

// Detect returns the identifier whose prefix value carries. The second
// result is false for cleartext.
func (m *Manager) Detect(value []byte) (Identifier, bool) {
	e, ok := m.reg.FindByPrefix(value)
	if !ok {
		return "", false
	}
	return e.ID, true
}

// ListSchemes returns the registered identifiers in registration order.
func (m *Manager) ListSchemes() []Identifier {
	return m.reg.Identifiers()
}

// NeedsRehash reports whether reference should be re-encoded with the
// default scheme: it is cleartext, or it was produced by another scheme.
//
// On the next successful login, callers should call [Manager.Encrypt] and
// persist the new value when this returns true.
func (m *Manager) NeedsRehash(reference []byte) bool {
	id, ok := m.Detect(reference)
	return !ok || id != m.DefaultScheme()
}

// ──────────────────────────────────────────────────────────────────────────────
// String helpers
// ──────────────────────────────────────────────────────────────────────────────

// EncryptString encodes a text password with the scheme registered under id.
func (m *Manager) EncryptString(password string, id Identifier) (string, error) {
	out, err := m.EncryptWith(TextPassword(password), id)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ValidateString is [Manager.Validate] for a stored reference and a text
// attempt. The reference is coerced with [Binary].
func (m *Manager) ValidateString(reference, attempt string) bool {
	return m.Validate(Binary(reference), TextPassword(attempt))
}

// IsEncryptedString is [Manager.IsEncrypted] for text values.
func (m *Manager) IsEncryptedString(value string) bool {
	return m.IsEncrypted(Binary(value))
}
