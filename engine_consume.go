package regauth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/credware/regauth/token"
	"github.com/credware/regauth/tokenstore"
)

// ConsumeAndInvalidate marks the record's token as VERIFIED so it can never
// be redeemed again. The transition is refused once the record has left the
// pending state.
func (e *Engine) ConsumeAndInvalidate(ctx context.Context, record *tokenstore.Record) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}

	err := e.store.UpdateState(ctx, record.Token, tokenstore.StateVerified)
	switch {
	case errors.Is(err, tokenstore.ErrNotFound), errors.Is(err, tokenstore.ErrTerminalState):
		return ErrTokenInvalid
	case err != nil:
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// ActivateAccount redeems an account-verification token: the account moves
// PENDING -> ACTIVE and the token is consumed. A token that fails validation
// for any reason yields [ErrTokenInvalid].
func (e *Engine) ActivateAccount(ctx context.Context, tok string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}

	if !e.ValidateEmailVerificationToken(ctx, tok) {
		return ErrTokenInvalid
	}

	record, err := e.store.FindByToken(ctx, tok)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if err := e.directory.UpdateUserState(ctx, record.UserID, AccountActive); err != nil {
		if errors.Is(err, tokenstore.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if err := e.ConsumeAndInvalidate(ctx, record); err != nil {
		return err
	}

	e.log.Info("account activated", zap.String("user_id", record.UserID))
	return nil
}

// ResetPassword redeems a password-recovery token: the subject's credential
// is replaced with the hash of newPassword and the token is consumed.
func (e *Engine) ResetPassword(ctx context.Context, tok, newPassword string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}

	if !e.ValidatePasswordResetToken(ctx, tok) {
		return ErrTokenInvalid
	}

	subject, err := token.ParseSubject(e.keychain, token.CategoryPasswordReset, tok)
	if err != nil {
		return ErrTokenInvalid
	}

	user, err := e.directory.FindByUsername(ctx, subject)
	if errors.Is(err, tokenstore.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	encoded, err := e.passwords.Encode(ctx, newPassword)
	if err != nil {
		return err
	}
	if err := e.directory.UpdatePassword(ctx, user.ID, encoded); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	record, err := e.store.FindByToken(ctx, tok)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := e.ConsumeAndInvalidate(ctx, record); err != nil {
		return err
	}

	// Tokens issued before the credential change must not stay redeemable.
	retired, err := e.store.InvalidatePendingForUser(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	e.log.Info("password reset",
		zap.String("user_id", user.ID),
		zap.Int64("tokens_invalidated", retired),
	)
	return nil
}
