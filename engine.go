package regauth

import (
	"go.uber.org/zap"

	"github.com/credware/regauth/password"
	"github.com/credware/regauth/token"
	"github.com/credware/regauth/tokenstore"
)

// Engine is the credential-issuance and verification core. Build one through
// the [Builder]; every field is immutable afterwards and all methods are safe
// for concurrent use.
type Engine struct {
	config           Config
	keychain         *token.Keychain
	generator        *token.Generator
	sessionValidator *token.SessionValidator
	passwords        *password.Pool
	store            tokenstore.Store
	directory        Directory
	notify           *notifyDispatcher
	sweeper          *Sweeper
	log              *zap.Logger
}

// Start launches the background expiration sweep. Calling Start is optional;
// an engine without a running sweeper still issues and validates tokens, but
// expired pending records are only retired by explicit RunOnce calls.
func (e *Engine) Start() {
	if e == nil || e.sweeper == nil {
		return
	}
	e.sweeper.Start()
}

// Close stops the sweeper and drains the notification dispatcher.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.sweeper != nil {
		e.sweeper.Stop()
	}
	if e.notify != nil {
		e.notify.Close()
	}
}

// Sweeper returns the engine's expiration sweeper, for callers that schedule
// sweeps themselves instead of using [Engine.Start].
func (e *Engine) Sweeper() *Sweeper {
	return e.sweeper
}
