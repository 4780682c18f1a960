package token

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnsupportedCategory is returned when key material is requested for a
// category the keychain was not built for. This is a wiring defect, not a
// runtime condition: correct construction makes it unreachable, and callers
// should treat it as fatal.
var ErrUnsupportedCategory = errors.New("unsupported token category")

// KeychainConfig carries the key material and per-category expirations the
// keychain is built from. The session pair comes from the PKCS#12 container;
// the two symmetric secrets are independently configured.
type KeychainConfig struct {
	SessionPrivateKey *ecdsa.PrivateKey
	SessionPublicKey  *ecdsa.PublicKey
	SessionTTL        time.Duration

	EmailVerificationSecret []byte
	EmailVerificationTTL    time.Duration

	PasswordResetSecret []byte
	PasswordResetTTL    time.Duration
}

// Keychain resolves signing key, verification key, signature algorithm and
// expiration per token category. Built once at startup, immutable and safe
// for concurrent use thereafter.
type Keychain struct {
	config KeychainConfig
}

// NewKeychain validates cfg and returns an immutable Keychain.
func NewKeychain(cfg KeychainConfig) (*Keychain, error) {
	if cfg.SessionPrivateKey == nil || cfg.SessionPublicKey == nil {
		return nil, errors.New("keychain requires the session key pair")
	}
	if len(cfg.EmailVerificationSecret) == 0 {
		return nil, errors.New("keychain requires the email verification secret")
	}
	if len(cfg.PasswordResetSecret) == 0 {
		return nil, errors.New("keychain requires the password reset secret")
	}
	if cfg.SessionTTL <= 0 || cfg.EmailVerificationTTL <= 0 || cfg.PasswordResetTTL <= 0 {
		return nil, errors.New("keychain requires positive expirations for every category")
	}

	return &Keychain{config: cfg}, nil
}

// SigningKey returns the key used to sign tokens of category c: the EC
// private key for sessions, the category's HMAC secret otherwise.
func (k *Keychain) SigningKey(c Category) (any, error) {
	switch c {
	case CategorySession:
		return k.config.SessionPrivateKey, nil
	case CategoryEmailVerification:
		return k.config.EmailVerificationSecret, nil
	case CategoryPasswordReset:
		return k.config.PasswordResetSecret, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCategory, c)
	}
}

// VerificationKey returns the key used to verify tokens of category c: the
// EC public key for sessions, the shared HMAC secret otherwise.
func (k *Keychain) VerificationKey(c Category) (any, error) {
	switch c {
	case CategorySession:
		return k.config.SessionPublicKey, nil
	case CategoryEmailVerification:
		return k.config.EmailVerificationSecret, nil
	case CategoryPasswordReset:
		return k.config.PasswordResetSecret, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCategory, c)
	}
}

// Method returns the fixed signature algorithm for category c.
func (k *Keychain) Method(c Category) (jwt.SigningMethod, error) {
	switch c {
	case CategorySession:
		return jwt.SigningMethodES256, nil
	case CategoryEmailVerification, CategoryPasswordReset:
		return jwt.SigningMethodHS256, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCategory, c)
	}
}

// Expiration returns the configured token lifetime for category c.
func (k *Keychain) Expiration(c Category) (time.Duration, error) {
	switch c {
	case CategorySession:
		return k.config.SessionTTL, nil
	case CategoryEmailVerification:
		return k.config.EmailVerificationTTL, nil
	case CategoryPasswordReset:
		return k.config.PasswordResetTTL, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedCategory, c)
	}
}

// ExpirationMillis returns the configured token lifetime in milliseconds.
func (k *Keychain) ExpirationMillis(c Category) (int64, error) {
	ttl, err := k.Expiration(c)
	if err != nil {
		return 0, err
	}
	return ttl.Milliseconds(), nil
}
