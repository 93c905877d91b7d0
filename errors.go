package goSession

import "errors"

var (
	// ErrMissingSecret is returned by Config.Validate and Build when no signing secret is configured.
	ErrMissingSecret = errors.New("session signing secret not configured")
	// ErrInvalidValidationMode is returned for an unknown ValidationMode.
	ErrInvalidValidationMode = errors.New("invalid validation mode")
	// ErrInvalidIdentity is returned by CreateSession when userID or email is empty.
	ErrInvalidIdentity = errors.New("session identity requires user id and email")
	// ErrSessionCreationFailed is returned when a token cannot be signed.
	ErrSessionCreationFailed = errors.New("session creation failed")
	// ErrSessionInvalidationFailed is returned when a revocation cannot be recorded.
	ErrSessionInvalidationFailed = errors.New("session invalidation failed")
	// ErrRevocationUnavailable is returned by operations that need the revocation store when none is configured.
	ErrRevocationUnavailable = errors.New("revocation store not configured")
	// ErrNilJar is returned when a write operation is handed a nil cookie jar.
	ErrNilJar = errors.New("nil cookie jar")
	// ErrEngineNotReady is returned by methods called on a nil Engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
