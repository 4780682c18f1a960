package regauth

import (
	"errors"
	"time"
)

// Config carries everything the Builder needs beyond the wired dependencies.
// Zero values are filled from defaultConfig where a sane default exists;
// key material and secrets have no defaults and must be provided.
type Config struct {
	KeyStore          KeyStoreConfig
	EmailVerification TokenPolicy
	PasswordReset     TokenPolicy
	Password          PasswordConfig
	Sweep             SweepConfig
	Links             LinkConfig
	Notify            NotifyConfig
}

// KeyStoreConfig locates the PKCS#12 container holding the session EC key
// pair and sets the session token lifetime.
type KeyStoreConfig struct {
	Path              string
	Password          string
	Alias             string
	ExpirationMinutes int
}

// TokenPolicy configures one persisted-token category: the base64-encoded
// HMAC secret and the token lifetime.
type TokenPolicy struct {
	Secret            string
	ExpirationMinutes int
}

// PasswordConfig tunes the argon2id hasher and its worker pool. Secret is
// the base64-encoded server pepper.
type PasswordConfig struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	HashLength  uint32
	Secret      string
	PoolSize    int
}

// SweepConfig sets how often the background sweep retires expired pending
// token records.
type SweepConfig struct {
	Interval time.Duration
}

// LinkConfig is the external base URL embedded in verification and reset
// notification links.
type LinkConfig struct {
	BaseURL string
}

// NotifyConfig tunes the async notification dispatcher.
type NotifyConfig struct {
	BufferSize int
	DropIfFull bool
}

func defaultConfig() Config {
	return Config{
		KeyStore: KeyStoreConfig{
			ExpirationMinutes: 60,
		},
		EmailVerification: TokenPolicy{
			ExpirationMinutes: 24 * 60,
		},
		PasswordReset: TokenPolicy{
			ExpirationMinutes: 30,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Iterations:  3,
			Parallelism: 2,
			SaltLength:  16,
			HashLength:  32,
		},
		Sweep: SweepConfig{
			Interval: 15 * time.Minute,
		},
		Notify: NotifyConfig{
			BufferSize: 64,
			DropIfFull: true,
		},
	}
}

func validateConfig(cfg Config) error {
	if cfg.KeyStore.Path == "" {
		return errors.New("key store path required")
	}
	if cfg.KeyStore.Password == "" {
		return errors.New("key store password required")
	}
	if cfg.KeyStore.ExpirationMinutes <= 0 {
		return errors.New("session expiration minutes must be positive")
	}
	if cfg.EmailVerification.Secret == "" {
		return errors.New("email verification secret required")
	}
	if cfg.EmailVerification.ExpirationMinutes <= 0 {
		return errors.New("email verification expiration minutes must be positive")
	}
	if cfg.PasswordReset.Secret == "" {
		return errors.New("password reset secret required")
	}
	if cfg.PasswordReset.ExpirationMinutes <= 0 {
		return errors.New("password reset expiration minutes must be positive")
	}
	if cfg.Password.Secret == "" {
		return errors.New("password pepper required")
	}
	if cfg.Links.BaseURL == "" {
		return errors.New("link base url required")
	}
	if cfg.Sweep.Interval <= 0 {
		return errors.New("sweep interval must be positive")
	}
	return nil
}
