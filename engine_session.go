package regauth

import (
	"github.com/credware/regauth/token"
)

// IssueSessionToken signs a session JWT for the authenticated principal.
// Session tokens are stateless: nothing is persisted and validation needs
// only the public key.
func (e *Engine) IssueSessionToken(p token.Principal) (string, error) {
	if e == nil || e.generator == nil {
		return "", ErrEngineNotReady
	}
	return e.generator.Create(token.SessionClaims(p), p.Username, token.CategorySession)
}

// ValidateSessionToken reports whether tok is a well-signed, unexpired
// session token issued to username. All failure reasons collapse to false;
// the distinct reasons are logged.
func (e *Engine) ValidateSessionToken(tok, username string) bool {
	if e == nil || e.sessionValidator == nil {
		return false
	}
	return e.sessionValidator.Validate(tok, username)
}
