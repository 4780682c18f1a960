package regauth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/credware/regauth/token"
	"github.com/credware/regauth/tokenstore"
)

// IssueEmailVerificationToken mints and persists an account-verification
// token for the account registered under email, then queues the
// notification. The returned record is already committed; notification
// delivery is asynchronous and its failure does not undo the issuance.
func (e *Engine) IssueEmailVerificationToken(ctx context.Context, email string) (*tokenstore.Record, error) {
	return e.issuePersisted(ctx, email, token.CategoryEmailVerification, tokenstore.PurposeAccountVerification)
}

// IssuePasswordResetToken mints and persists a password-recovery token for
// the account registered under email, then queues the notification.
func (e *Engine) IssuePasswordResetToken(ctx context.Context, email string) (*tokenstore.Record, error) {
	return e.issuePersisted(ctx, email, token.CategoryPasswordReset, tokenstore.PurposePasswordRecovery)
}

func (e *Engine) issuePersisted(
	ctx context.Context,
	email string,
	category token.Category,
	purpose tokenstore.Purpose,
) (*tokenstore.Record, error) {
	if e == nil || e.generator == nil {
		return nil, ErrEngineNotReady
	}

	user, err := e.directory.FindByEmail(ctx, email)
	if errors.Is(err, tokenstore.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	claims := token.PersistedClaims(user.ID, user.Username, user.Email, purpose.String())
	signed, err := e.generator.Create(claims, user.Username, category)
	if err != nil {
		return nil, err
	}

	ttl, err := e.keychain.Expiration(category)
	if err != nil {
		return nil, err
	}

	record := tokenstore.NewRecord(signed, purpose, user.ID, ttl)
	if err := e.store.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	e.log.Info("persisted token issued",
		zap.String("purpose", purpose.String()),
		zap.String("user_id", user.ID),
		zap.Time("expire_at", record.ExpireAt),
	)

	e.queueNotification(user.Email, purpose, signed)

	return record, nil
}

func (e *Engine) queueNotification(email string, purpose tokenstore.Purpose, signed string) {
	if e.notify == nil {
		return
	}

	var subject, body string
	switch purpose {
	case tokenstore.PurposeAccountVerification:
		subject = verificationSubject
		body = VerificationLink(e.config.Links.BaseURL, signed)
	case tokenstore.PurposePasswordRecovery:
		subject = passwordResetSubject
		body = PasswordResetLink(e.config.Links.BaseURL, signed)
	default:
		return
	}

	e.notify.Queue(notification{To: email, Subject: subject, Body: body})
}
