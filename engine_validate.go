package regauth

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/credware/regauth/token"
	"github.com/credware/regauth/tokenstore"
)

// ValidateEmailVerificationToken reports whether tok is a known, pending,
// unexpired, well-signed account-verification token. Validation never
// mutates the record; expired tokens stay PENDING until the sweep or an
// explicit consume retires them.
func (e *Engine) ValidateEmailVerificationToken(ctx context.Context, tok string) bool {
	return e.validatePersisted(ctx, tok, token.CategoryEmailVerification, tokenstore.PurposeAccountVerification)
}

// ValidatePasswordResetToken reports whether tok is a known, pending,
// unexpired, well-signed password-recovery token.
func (e *Engine) ValidatePasswordResetToken(ctx context.Context, tok string) bool {
	return e.validatePersisted(ctx, tok, token.CategoryPasswordReset, tokenstore.PurposePasswordRecovery)
}

// validatePersisted runs the persisted-token checks in order: record lookup,
// purpose, lifecycle state, expiry, signature. Each failing branch logs its
// own reason; callers only ever see the boolean.
func (e *Engine) validatePersisted(
	ctx context.Context,
	tok string,
	category token.Category,
	purpose tokenstore.Purpose,
) bool {
	if e == nil || e.store == nil {
		return false
	}

	record, err := e.store.FindByToken(ctx, tok)
	if err != nil {
		e.log.Warn("token validation failed: record lookup",
			zap.String("purpose", purpose.String()),
			zap.Error(err),
		)
		return false
	}

	if record.Purpose != purpose {
		e.log.Warn("token validation failed: purpose mismatch",
			zap.String("expected", purpose.String()),
			zap.String("actual", record.Purpose.String()),
		)
		return false
	}

	if record.State != tokenstore.StatePending {
		e.log.Warn("token validation failed: not pending",
			zap.String("purpose", purpose.String()),
			zap.String("state", record.State.String()),
		)
		return false
	}

	if time.Now().After(record.ExpireAt) {
		e.log.Warn("token validation failed: expired",
			zap.String("purpose", purpose.String()),
			zap.Time("expire_at", record.ExpireAt),
		)
		return false
	}

	if _, err := token.ParseSubject(e.keychain, category, tok); err != nil {
		e.log.Warn("token validation failed: signature",
			zap.String("purpose", purpose.String()),
			zap.Error(err),
		)
		return false
	}

	return true
}
