package authencoding_test

import (
	"bytes"
	"encoding/base64"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/hasbyte1/go-authencoding/authencoding"
)

// ──────────────────────────────────────────────────────────────────────────────
// NewDefaultManager
// ──────────────────────────────────────────────────────────────────────────────

func TestNewDefaultManager_SchemeOrder(t *testing.T) {
	m, err := authencoding.NewDefaultManager(authencoding.Options{BcryptCost: testBcryptCost})
	if err != nil {
		t.Fatalf("NewDefaultManager: %v", err)
	}
	var want []authencoding.Identifier
	for _, id := range []authencoding.Identifier{
		authencoding.SSHA, authencoding.SHA, authencoding.SHA256,
		authencoding.BCRYPT, authencoding.CRYPT, authencoding.MYSQL,
	} {
		if authencoding.Available(id) {
			want = append(want, id)
		}
	}
	if got := m.ListSchemes(); !slices.Equal(got, want) {
		t.Errorf("ListSchemes = %v, want %v", got, want)
	}
	if m.DefaultScheme() != authencoding.SSHA {
		t.Errorf("default scheme = %q, want SSHA", m.DefaultScheme())
	}
	if !m.Registry().Sealed() {
		t.Error("default registry should be sealed")
	}
}

func TestNewDefaultManager_Argon2OptIn(t *testing.T) {
	m := newTestManager(t)
	ids := m.ListSchemes()
	if ids[len(ids)-1] != authencoding.ARGON2 {
		t.Errorf("ARGON2 should be registered last, got %v", ids)
	}
}

func TestNewDefaultManager_Disabled(t *testing.T) {
	opts := fastOptions()
	opts.Disabled = []authencoding.Identifier{authencoding.MYSQL, authencoding.BCRYPT}
	m, err := authencoding.NewDefaultManager(opts)
	if err != nil {
		t.Fatalf("NewDefaultManager: %v", err)
	}
	for _, id := range opts.Disabled {
		if slices.Contains(m.ListSchemes(), id) {
			t.Errorf("%s should not be listed", id)
		}
		_, err := m.EncryptWith(authencoding.TextPassword("x"), id)
		if !errors.Is(err, authencoding.ErrUnsupportedScheme) {
			t.Errorf("%s: expected ErrUnsupportedScheme, got %v", id, err)
		}
	}
}

func TestNewDefaultManager_InvalidOptions(t *testing.T) {
	_, err := authencoding.NewDefaultManager(authencoding.Options{SSHASaltLen: -1})
	if !errors.Is(err, authencoding.ErrInvalidOption) {
		t.Errorf("expected ErrInvalidOption, got %v", err)
	}
}

func TestAvailable(t *testing.T) {
	for _, id := range []authencoding.Identifier{authencoding.SSHA, authencoding.SHA, authencoding.SHA256, authencoding.MYSQL} {
		if !authencoding.Available(id) {
			t.Errorf("%s should always be available", id)
		}
	}
	if authencoding.Available("NOPE") {
		t.Error("unknown scheme reported as available")
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Round trip
// ──────────────────────────────────────────────────────────────────────────────

func TestManager_RoundTrip_AllSchemes(t *testing.T) {
	m := newTestManager(t)
	for _, id := range m.ListSchemes() {
		for name, pw := range testPasswords() {
			t.Run(string(id)+"/"+name, func(t *testing.T) {
				enc, err := m.EncryptWith(pw, id)
				if err != nil {
					t.Fatalf("EncryptWith: %v", err)
				}
				if !hasPrefix(enc, id) {
					t.Fatalf("missing prefix: %q", enc)
				}
				if !m.Validate(enc, pw) {
					t.Error("Validate returned false for the encrypted password")
				}
				if !m.IsEncrypted(enc) {
					t.Error("IsEncrypted returned false for an encrypted value")
				}
				if got, ok := m.Detect(enc); !ok || got != id {
					t.Errorf("Detect = (%q, %v), want %q", got, ok, id)
				}
			})
		}
	}
}

func TestManager_WrongPassword_AllSchemes(t *testing.T) {
	m := newTestManager(t)
	for _, id := range m.ListSchemes() {
		t.Run(string(id), func(t *testing.T) {
			enc, err := m.EncryptWith(authencoding.TextPassword("hunter2"), id)
			if err != nil {
				t.Fatalf("EncryptWith: %v", err)
			}
			if m.Validate(enc, authencoding.TextPassword("hunter3")) {
				t.Error("Validate accepted a wrong password")
			}
			if m.Validate(enc, authencoding.TextPassword("")) {
				t.Error("Validate accepted an empty password")
			}
		})
	}
}

func TestManager_Encrypt_UsesDefaultScheme(t *testing.T) {
	m := newTestManager(t)
	enc, err := m.Encrypt(authencoding.TextPassword("pw"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if !hasPrefix(enc, authencoding.SSHA) {
		t.Errorf("expected SSHA value, got %q", enc)
	}
}

func TestManager_SSHA_Structure(t *testing.T) {
	m := newTestManager(t)
	enc, err := m.EncryptString("p", authencoding.SSHA)
	if err != nil {
		t.Fatalf("EncryptString: %v", err)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(enc, "{SSHA}"))
	if err != nil {
		t.Fatalf("payload is not base64: %v", err)
	}
	if len(raw) != 20+authencoding.DefaultSSHASaltLen {
		t.Errorf("decoded length = %d, want 27", len(raw))
	}
}

func TestManager_SSHA_FreshSaltPerCall(t *testing.T) {
	m := newTestManager(t)
	a, _ := m.EncryptString("same", authencoding.SSHA)
	b, _ := m.EncryptString("same", authencoding.SSHA)
	if a == b {
		t.Error("two SSHA encodings of the same password should differ")
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Cleartext fallback and prefix discrimination
// ──────────────────────────────────────────────────────────────────────────────

func TestManager_CleartextFallback(t *testing.T) {
	m := newTestManager(t)
	if !m.ValidateString("hunter2", "hunter2") {
		t.Error("cleartext reference should match the same password")
	}
	if m.ValidateString("hunter2", "wrong") {
		t.Error("cleartext reference should not match a different password")
	}
	if m.ValidateString("hunter2", "hunter") {
		t.Error("cleartext prefix should not match")
	}
	if !m.ValidateString("", "") {
		t.Error("empty cleartext should match empty attempt")
	}
	if !m.Validate([]byte{0xe9, 't', 0xe9}, authencoding.TextPassword("été")) {
		t.Error("Latin-1 cleartext should match its text form")
	}
}

func TestManager_UnregisteredPrefixIsCleartext(t *testing.T) {
	m := newTestManager(t)
	if m.IsEncryptedString("{NOPE}abc") {
		t.Error("unregistered prefix should not count as encrypted")
	}
	if !m.ValidateString("{NOPE}abc", "{NOPE}abc") {
		t.Error("unregistered prefix should be compared as cleartext")
	}
}

func TestManager_IsEncrypted(t *testing.T) {
	m := newTestManager(t)
	cases := []struct {
		in   string
		want bool
	}{
		{"hunter2", false},
		{"", false},
		{"{SSHA}", true},
		{"{SHA}87u9ZqY9S/F0eUBXjsPQEDUw4h0=", true},
		{"{MYSQL}43e9a4ab75570f5b", true},
		{"{ssha}abc", false},
		{" {SSHA}abc", false},
	}
	for _, tc := range cases {
		if got := m.IsEncryptedString(tc.in); got != tc.want {
			t.Errorf("IsEncryptedString(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Errors
// ──────────────────────────────────────────────────────────────────────────────

func TestManager_UnsupportedScheme(t *testing.T) {
	m := newTestManager(t)
	_, err := m.EncryptString("x", "NOPE")
	if !errors.Is(err, authencoding.ErrUnsupportedScheme) {
		t.Fatalf("expected ErrUnsupportedScheme, got %v", err)
	}
	if !strings.Contains(err.Error(), "NOPE") {
		t.Errorf("error should name the scheme: %v", err)
	}
}

func TestManager_MalformedReferences(t *testing.T) {
	m := newTestManager(t)
	refs := []string{
		"{SSHA}!!!not base64!!!",
		"{SSHA}",
		"{SSHA}YQ",
		"{SHA}",
		"{SHA256}zz",
		"{BCRYPT}$2a$04$short",
		"{BCRYPT}garbage",
		"{CRYPT}",
		"{CRYPT}x",
		"{CRYPT}\xff\xfeabcdefghijk",
		"{MYSQL}",
		"{ARGON2}$argon2id$v=19$m=0,t=0,p=0$$",
		"{ARGON2}$argon2id$v=16$m=64,t=1,p=1$c2FsdHNhbHQ$aGFzaGhhc2g",
		"{ARGON2}not-phc",
	}
	for _, ref := range refs {
		if m.ValidateString(ref, "") {
			t.Errorf("malformed reference %q validated", ref)
		}
		if m.ValidateString(ref, "hunter2") {
			t.Errorf("malformed reference %q validated", ref)
		}
	}
}

func TestManager_EncryptFailure(t *testing.T) {
	reg := authencoding.NewRegistry()
	ssha, err := authencoding.NewSSHAScheme(brokenRandom{}, authencoding.DefaultSSHASaltLen)
	if err != nil {
		t.Fatalf("NewSSHAScheme: %v", err)
	}
	reg.MustRegister(authencoding.SSHA, ssha)
	reg.Seal()

	obs := &recordingObserver{}
	m := authencoding.NewManager(reg, authencoding.WithObserver(obs))
	_, err = m.Encrypt(authencoding.TextPassword("pw"))
	if !errors.Is(err, errBrokenRandom) {
		t.Errorf("expected wrapped random error, got %v", err)
	}
	if len(obs.encErrs) != 1 || obs.encErrs[0] == nil {
		t.Errorf("observer should see the failure, got %v", obs.encErrs)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Default scheme and NeedsRehash
// ──────────────────────────────────────────────────────────────────────────────

func TestManager_SetDefaultScheme(t *testing.T) {
	m := newTestManager(t)
	if err := m.SetDefaultScheme(authencoding.SHA256); err != nil {
		t.Fatalf("SetDefaultScheme: %v", err)
	}
	enc, _ := m.Encrypt(authencoding.TextPassword("pw"))
	if !hasPrefix(enc, authencoding.SHA256) {
		t.Errorf("expected SHA256 value, got %q", enc)
	}
	if err := m.SetDefaultScheme("NOPE"); !errors.Is(err, authencoding.ErrUnsupportedScheme) {
		t.Errorf("expected ErrUnsupportedScheme, got %v", err)
	}
	if m.DefaultScheme() != authencoding.SHA256 {
		t.Error("failed SetDefaultScheme must not change the default")
	}
}

func TestManager_WithDefaultScheme_Unregistered(t *testing.T) {
	m := newTestManager(t, authencoding.WithDefaultScheme("NOPE"))
	if _, err := m.Encrypt(authencoding.TextPassword("pw")); !errors.Is(err, authencoding.ErrUnsupportedScheme) {
		t.Errorf("expected ErrUnsupportedScheme, got %v", err)
	}
}

// TestManager_Migration simulates upgrading legacy values:
//   - cleartext and SHA values still validate,
//   - NeedsRehash flags them,
//   - the re-encoded value no longer needs rehashing.
func TestManager_Migration(t *testing.T) {
	m := newTestManager(t)
	legacySHA, _ := m.EncryptString("user-password", authencoding.SHA)

	for _, legacy := range []string{"user-password", legacySHA} {
		if !m.ValidateString(legacy, "user-password") {
			t.Fatalf("legacy value %q failed to validate", legacy)
		}
		if !m.NeedsRehash([]byte(legacy)) {
			t.Errorf("legacy value %q should need rehash", legacy)
		}
	}

	fresh, err := m.Encrypt(authencoding.TextPassword("user-password"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if m.NeedsRehash(fresh) {
		t.Error("fresh default-scheme value should not need rehash")
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Observer and logging
// ──────────────────────────────────────────────────────────────────────────────

func TestManager_Observer(t *testing.T) {
	obs := &recordingObserver{}
	m := newTestManager(t, authencoding.WithObserver(obs))

	enc, _ := m.EncryptWith(authencoding.TextPassword("pw"), authencoding.MYSQL)
	m.Validate(enc, authencoding.TextPassword("pw"))
	m.Validate(enc, authencoding.TextPassword("nope"))
	m.ValidateString("plain", "plain")

	if !slices.Equal(obs.encrypts, []authencoding.Identifier{authencoding.MYSQL}) {
		t.Errorf("encrypts = %v", obs.encrypts)
	}
	wantIDs := []authencoding.Identifier{authencoding.MYSQL, authencoding.MYSQL, authencoding.Cleartext}
	if !slices.Equal(obs.validates, wantIDs) {
		t.Errorf("validates = %v, want %v", obs.validates, wantIDs)
	}
	if !slices.Equal(obs.results, []bool{true, false, true}) {
		t.Errorf("results = %v", obs.results)
	}
}

func TestManager_LogsNoSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	m := newTestManager(t, authencoding.WithLogger(logger))

	enc, _ := m.EncryptString("s3cr3t-value", authencoding.SHA256)
	m.ValidateString(enc, "wr0ng-value")
	m.ValidateString("cl34r-value", "wr0ng-value")
	_, _ = m.EncryptString("s3cr3t-value", "NOPE")

	out := buf.String()
	for _, secret := range []string{"s3cr3t-value", "wr0ng-value", "cl34r-value", strings.TrimPrefix(enc, "{SHA256}")} {
		if strings.Contains(out, secret) {
			t.Errorf("log output contains %q:\n%s", secret, out)
		}
	}
	if !strings.Contains(out, "NOPE") {
		t.Errorf("expected unsupported scheme warning in log:\n%s", out)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrency
// ──────────────────────────────────────────────────────────────────────────────

func TestManager_ConcurrentEncryptValidate(t *testing.T) {
	m := newTestManager(t)
	ids := m.ListSchemes()
	const goroutines = 20
	var wg sync.WaitGroup
	wg.Add(goroutines)
	errs := make(chan error, goroutines)

	for i := 0; i < goroutines; i++ {
		go func(id authencoding.Identifier) {
			defer wg.Done()
			enc, err := m.EncryptString("concurrent-pw", id)
			if err != nil {
				errs <- err
				return
			}
			if !m.ValidateString(enc, "concurrent-pw") {
				errs <- errors.New(string(id) + ": Validate returned false for correct password")
			}
		}(ids[i%len(ids)])
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
