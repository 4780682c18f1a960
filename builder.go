package regauth

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/credware/regauth/keystore"
	"github.com/credware/regauth/password"
	"github.com/credware/regauth/token"
	"github.com/credware/regauth/tokenstore"
)

// Builder assembles an Engine. All key material is loaded and all strategy
// wiring is verified inside Build; a Builder that returns an Engine returns
// one that is fully ready.
type Builder struct {
	config    Config
	store     tokenstore.Store
	directory Directory
	sender    Sender
	log       *zap.Logger

	built bool
}

// New returns a Builder carrying the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the builder's configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithStore sets the persisted-token record store.
func (b *Builder) WithStore(store tokenstore.Store) *Builder {
	b.store = store
	return b
}

// WithDirectory sets the consumer's user directory.
func (b *Builder) WithDirectory(directory Directory) *Builder {
	b.directory = directory
	return b
}

// WithSender sets the notification sender. Without one, issued tokens are
// persisted but no notification leaves the engine.
func (b *Builder) WithSender(sender Sender) *Builder {
	b.sender = sender
	return b
}

// WithLogger sets the structured logger. Defaults to a no-op logger.
func (b *Builder) WithLogger(log *zap.Logger) *Builder {
	b.log = log
	return b
}

// Build loads the key container, assembles the keychain, generator and
// validator, and returns the ready Engine. Configuration errors, unreadable
// key material, and incomplete strategy coverage all fail here, before any
// token can be issued.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.store == nil {
		return nil, errors.New("token store required")
	}
	if b.directory == nil {
		return nil, errors.New("directory required")
	}
	if err := validateConfig(b.config); err != nil {
		return nil, err
	}

	log := b.log
	if log == nil {
		log = zap.NewNop()
	}

	pair, err := keystore.Load(b.config.KeyStore.Path, b.config.KeyStore.Password, b.config.KeyStore.Alias)
	if err != nil {
		return nil, err
	}

	verificationSecret, err := base64.StdEncoding.DecodeString(b.config.EmailVerification.Secret)
	if err != nil {
		return nil, fmt.Errorf("decoding email verification secret: %w", err)
	}
	resetSecret, err := base64.StdEncoding.DecodeString(b.config.PasswordReset.Secret)
	if err != nil {
		return nil, fmt.Errorf("decoding password reset secret: %w", err)
	}
	pepper, err := base64.StdEncoding.DecodeString(b.config.Password.Secret)
	if err != nil {
		return nil, fmt.Errorf("decoding password pepper: %w", err)
	}

	keychain, err := token.NewKeychain(token.KeychainConfig{
		SessionPrivateKey:       pair.Private,
		SessionPublicKey:        pair.Public,
		SessionTTL:              time.Duration(b.config.KeyStore.ExpirationMinutes) * time.Minute,
		EmailVerificationSecret: verificationSecret,
		EmailVerificationTTL:    time.Duration(b.config.EmailVerification.ExpirationMinutes) * time.Minute,
		PasswordResetSecret:     resetSecret,
		PasswordResetTTL:        time.Duration(b.config.PasswordReset.ExpirationMinutes) * time.Minute,
	})
	if err != nil {
		return nil, err
	}

	generator, err := token.NewGenerator(
		token.NewSessionStrategy(keychain),
		token.NewEmailVerificationStrategy(keychain),
		token.NewPasswordResetStrategy(keychain, &directoryRoles{directory: b.directory}),
	)
	if err != nil {
		return nil, err
	}

	hasher, err := password.NewHasher(password.Config{
		Memory:      b.config.Password.Memory,
		Iterations:  b.config.Password.Iterations,
		Parallelism: b.config.Password.Parallelism,
		SaltLength:  b.config.Password.SaltLength,
		HashLength:  b.config.Password.HashLength,
		Secret:      pepper,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:           b.config,
		keychain:         keychain,
		generator:        generator,
		sessionValidator: token.NewSessionValidator(keychain, log),
		passwords:        password.NewPool(hasher, b.config.Password.PoolSize),
		store:            b.store,
		directory:        b.directory,
		notify:           newNotifyDispatcher(b.config.Notify, b.sender, log),
		log:              log,
	}
	engine.sweeper = newSweeper(b.store, b.config.Sweep.Interval, log)

	b.built = true

	return engine, nil
}

// directoryRoles exposes the directory's current role set to the
// password-reset strategy.
type directoryRoles struct {
	directory Directory
}

func (r *directoryRoles) RolesOf(username string) ([]string, error) {
	user, err := r.directory.FindByUsername(context.Background(), username)
	if err != nil {
		return nil, err
	}
	return user.Roles, nil
}
