package authencoding

import "errors"

// Sentinel errors returned by authencoding operations.
//
// Use [errors.Is] for comparisons:
//
//	_, err := m.EncryptWith(pw, "NOPE")
//	if errors.Is(err, authencoding.ErrUnsupportedScheme) {
//	    // identifier not registered in this process
//	}
//
// Validation never returns an error: a malformed reference is a failed
// validation, not a fault.
var (
	// ErrUnsupportedScheme is returned when an identifier has not been
	// registered, either because it is unknown or because its primitive is
	// not available in this build.
	ErrUnsupportedScheme = errors.New("authencoding: unsupported scheme")

	// ErrEmptyIdentifier is returned by [Registry.Register] when the supplied
	// identifier is an empty string.
	ErrEmptyIdentifier = errors.New("authencoding: scheme identifier must not be empty")

	// ErrNilScheme is returned by [Registry.Register] when a nil [Scheme] is
	// supplied.
	ErrNilScheme = errors.New("authencoding: scheme must not be nil")

	// ErrRegistrySealed is returned by [Registry.Register] once the registry
	// has been sealed.
	ErrRegistrySealed = errors.New("authencoding: registry is sealed")

	// ErrInvalidOption is returned when a constructor is called with a
	// parameter value outside the allowed range (e.g., a bcrypt cost above 31).
	ErrInvalidOption = errors.New("authencoding: invalid option value")

	// ErrRandomUnavailable is returned when the random source cannot supply
	// salt material.
	ErrRandomUnavailable = errors.New("authencoding: random source unavailable")
)
