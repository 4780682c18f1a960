package regauth

import "errors"

var (
	// ErrInvalidCredentials reports a password that does not match the
	// stored credential.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound reports that no directory account matched the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrTokenInvalid reports a persisted token that failed validation for
	// any reason. Callers get no finer detail; the reasons are logged.
	ErrTokenInvalid = errors.New("invalid or expired token")
	// ErrEngineNotReady reports use of an Engine that was not built through
	// the Builder.
	ErrEngineNotReady = errors.New("engine not ready")
	// ErrStoreUnavailable wraps backend failures from the token store or
	// the directory.
	ErrStoreUnavailable = errors.New("store unavailable")
)
