package regauth

import (
	"context"
	"errors"

	"github.com/credware/regauth/password"
)

// HashPassword encodes raw through the bounded hashing pool. The call blocks
// until a pool slot is free or ctx is cancelled.
func (e *Engine) HashPassword(ctx context.Context, raw string) (string, error) {
	if e == nil || e.passwords == nil {
		return "", ErrEngineNotReady
	}
	return e.passwords.Encode(ctx, raw)
}

// VerifyPassword reports whether raw matches the stored credential encoding.
// A malformed stored encoding yields [ErrInvalidCredentials] rather than a
// parse error; the caller cannot repair it either way.
func (e *Engine) VerifyPassword(ctx context.Context, raw, encoded string) (bool, error) {
	if e == nil || e.passwords == nil {
		return false, ErrEngineNotReady
	}

	ok, err := e.passwords.Matches(ctx, raw, encoded)
	if errors.Is(err, password.ErrMalformedCredential) {
		return false, ErrInvalidCredentials
	}
	if err != nil {
		return false, err
	}
	return ok, nil
}
