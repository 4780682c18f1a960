package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	minMemoryKB     uint32 = 8 * 1024
	minIterations   uint32 = 1
	minParallelism  uint8  = 1
	minSaltLength   uint32 = 16
	minHashLength   uint32 = 16
	minSecretLength        = 16
	encodedSegments        = 3
)

// ErrMalformedCredential is returned by [Hasher.Matches] when the stored
// credential does not have the expected three-segment structure. It marks a
// corrupt or foreign record, not a wrong password.
var ErrMalformedCredential = errors.New("malformed encoded credential")

// Config holds the Argon2id cost parameters and the server secret.
//
// Config instances are intended to be configured during initialization and then treated as immutable.
type Config struct {
	Memory      uint32 // in KB
	Iterations  uint32
	Parallelism uint8
	HashLength  uint32
	SaltLength  uint32
	Secret      []byte
}

// Hasher encodes and verifies passwords. Safe for concurrent use.
type Hasher struct {
	config Config
}

// NewHasher validates cfg and returns a ready Hasher.
func NewHasher(cfg Config) (*Hasher, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)
	cfg.Secret = secret

	return &Hasher{config: cfg}, nil
}

// Encode hashes raw with a fresh random salt and the configured server secret
// and returns the colon-joined encoded credential.
func (h *Hasher) Encode(raw string) (string, error) {
	salt := make([]byte, h.config.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	hash := h.derive(raw, salt, h.config.Secret)

	enc := base64.StdEncoding
	return strings.Join([]string{
		enc.EncodeToString(salt),
		enc.EncodeToString(h.config.Secret),
		enc.EncodeToString(hash),
	}, ":"), nil
}

// Matches recomputes the hash from the stored salt and secret and compares it
// against the stored digest in constant time. A credential that does not split
// into exactly three segments fails with [ErrMalformedCredential].
func (h *Hasher) Matches(raw string, encoded string) (bool, error) {
	parts := strings.Split(encoded, ":")
	if len(parts) != encodedSegments {
		return false, ErrMalformedCredential
	}

	dec := base64.StdEncoding
	salt, err := dec.DecodeString(parts[0])
	if err != nil {
		return false, ErrMalformedCredential
	}
	secret, err := dec.DecodeString(parts[1])
	if err != nil {
		return false, ErrMalformedCredential
	}
	expected, err := dec.DecodeString(parts[2])
	if err != nil {
		return false, ErrMalformedCredential
	}

	actual := h.derive(raw, salt, secret)
	return subtle.ConstantTimeCompare(actual, expected) == 1, nil
}

// derive runs Argon2id over (raw, salt, secret). The secret is folded into
// the password input: x/crypto/argon2 does not expose the keyed-secret
// parameter, and appending the pepper to the password bytes is the
// established substitute.
func (h *Hasher) derive(raw string, salt, secret []byte) []byte {
	input := make([]byte, 0, len(raw)+len(secret))
	input = append(input, raw...)
	input = append(input, secret...)

	return argon2.IDKey(
		input,
		salt,
		h.config.Iterations,
		h.config.Memory,
		h.config.Parallelism,
		h.config.HashLength,
	)
}

func validateConfig(cfg Config) error {
	if cfg.Memory < minMemoryKB {
		return errors.New("password memory must be >= 8192 KB")
	}
	if cfg.Iterations < minIterations {
		return errors.New("password iterations must be >= 1")
	}
	if cfg.Parallelism < minParallelism {
		return errors.New("password parallelism must be >= 1")
	}
	if cfg.HashLength < minHashLength {
		return errors.New("password hash length must be >= 16")
	}
	if cfg.SaltLength < minSaltLength {
		return errors.New("password salt length must be >= 16")
	}
	if len(cfg.Secret) < minSecretLength {
		return errors.New("password secret must be >= 16 bytes")
	}

	return nil
}
