package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Strategy builds and signs a compact token for exactly one category. Each
// strategy declares its own category so the generator can be assembled as a
// verified, exhaustive mapping at startup instead of inferring categories
// from concrete types.
type Strategy interface {
	Generate(claims map[string]any, subject string) (string, error)
	Category() Category
}

// RoleResolver supplies the current role names of a subject. The
// password-reset strategy snapshots them into the token at generation time;
// they are never re-derived at validation.
type RoleResolver interface {
	RolesOf(username string) ([]string, error)
}

// SessionStrategy signs session JWTs with the EC session key.
type SessionStrategy struct {
	keychain *Keychain
}

// NewSessionStrategy returns the strategy for [CategorySession].
func NewSessionStrategy(keychain *Keychain) *SessionStrategy {
	return &SessionStrategy{keychain: keychain}
}

// Generate signs claims and subject into a compact session token.
func (s *SessionStrategy) Generate(claims map[string]any, subject string) (string, error) {
	return sign(s.keychain, CategorySession, claims, subject)
}

// Category reports [CategorySession].
func (s *SessionStrategy) Category() Category {
	return CategorySession
}

// EmailVerificationStrategy signs account-verification tokens with the
// category's HMAC secret.
type EmailVerificationStrategy struct {
	keychain *Keychain
}

// NewEmailVerificationStrategy returns the strategy for
// [CategoryEmailVerification].
func NewEmailVerificationStrategy(keychain *Keychain) *EmailVerificationStrategy {
	return &EmailVerificationStrategy{keychain: keychain}
}

// Generate signs claims and subject into a compact verification token.
func (s *EmailVerificationStrategy) Generate(claims map[string]any, subject string) (string, error) {
	return sign(s.keychain, CategoryEmailVerification, claims, subject)
}

// Category reports [CategoryEmailVerification].
func (s *EmailVerificationStrategy) Category() Category {
	return CategoryEmailVerification
}

// PasswordResetStrategy signs password-reset tokens and embeds a snapshot of
// the subject's current role set as an extra claim.
type PasswordResetStrategy struct {
	keychain *Keychain
	roles    RoleResolver
}

// NewPasswordResetStrategy returns the strategy for [CategoryPasswordReset].
func NewPasswordResetStrategy(keychain *Keychain, roles RoleResolver) *PasswordResetStrategy {
	return &PasswordResetStrategy{keychain: keychain, roles: roles}
}

// Generate resolves the subject's roles, adds them to the claim set, and
// signs the compact reset token.
func (s *PasswordResetStrategy) Generate(claims map[string]any, subject string) (string, error) {
	if s.roles == nil {
		return "", fmt.Errorf("password reset strategy has no role resolver")
	}

	roles, err := s.roles.RolesOf(subject)
	if err != nil {
		return "", fmt.Errorf("resolving roles for %q: %w", subject, err)
	}

	enriched := make(map[string]any, len(claims)+1)
	for key, value := range claims {
		enriched[key] = value
	}
	enriched[claimRoleSnapshot] = roles

	return sign(s.keychain, CategoryPasswordReset, enriched, subject)
}

// Category reports [CategoryPasswordReset].
func (s *PasswordResetStrategy) Category() Category {
	return CategoryPasswordReset
}

func sign(keychain *Keychain, c Category, claims map[string]any, subject string) (string, error) {
	method, err := keychain.Method(c)
	if err != nil {
		return "", err
	}
	key, err := keychain.SigningKey(c)
	if err != nil {
		return "", err
	}
	ttl, err := keychain.Expiration(c)
	if err != nil {
		return "", err
	}

	issuedAt := time.Now()
	mapped := make(jwt.MapClaims, len(claims)+3)
	for name, value := range claims {
		mapped[name] = value
	}
	mapped["sub"] = subject
	mapped["iat"] = jwt.NewNumericDate(issuedAt)
	mapped["exp"] = jwt.NewNumericDate(issuedAt.Add(ttl))

	return jwt.NewWithClaims(method, mapped).SignedString(key)
}
