package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// ParseSubject verifies tok against the keychain material for category c and
// returns its subject claim. The parser accepts only the category's fixed
// algorithm, so an HS256 token can never be replayed against the EC public
// key or vice versa.
func ParseSubject(keychain *Keychain, c Category, tok string) (string, error) {
	claims, err := parseClaims(keychain, c, tok)
	if err != nil {
		return "", err
	}

	subject, err := claims.GetSubject()
	if err != nil {
		return "", err
	}
	if subject == "" {
		return "", errors.New("token has no subject")
	}
	return subject, nil
}

func parseClaims(keychain *Keychain, c Category, tok string) (jwt.MapClaims, error) {
	method, err := keychain.Method(c)
	if err != nil {
		return nil, err
	}
	key, err := keychain.VerificationKey(c)
	if err != nil {
		return nil, err
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithExpirationRequired(),
	)
	parsed, err := parser.Parse(tok, func(*jwt.Token) (any, error) {
		return key, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// SessionValidator verifies session bearer tokens against the EC public key.
// Every failure collapses to false at the boundary; the specific cause is
// only logged.
type SessionValidator struct {
	keychain *Keychain
	log      *zap.Logger
}

// NewSessionValidator returns a validator over keychain. A nil logger
// disables logging.
func NewSessionValidator(keychain *Keychain, log *zap.Logger) *SessionValidator {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionValidator{keychain: keychain, log: log}
}

// Validate reports whether tok carries a valid signature, names
// expectedUsername as its subject, and expires in the future.
func (v *SessionValidator) Validate(tok, expectedUsername string) bool {
	claims, err := parseClaims(v.keychain, CategorySession, tok)
	if err != nil {
		v.log.Warn("session token rejected", zap.Error(err))
		return false
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		v.log.Warn("session token has no usable subject", zap.Error(err))
		return false
	}
	if subject != expectedUsername {
		v.log.Warn("session token subject mismatch",
			zap.String("expected", expectedUsername))
		return false
	}

	expiration, err := claims.GetExpirationTime()
	if err != nil || expiration == nil {
		v.log.Warn("session token has no usable expiration", zap.Error(err))
		return false
	}
	if !expiration.After(time.Now()) {
		v.log.Warn("session token expired",
			zap.Time("expiration", expiration.Time))
		return false
	}

	return true
}
