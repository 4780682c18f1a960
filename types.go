package regauth

import (
	"context"

	"github.com/credware/regauth/tokenstore"
)

// Account lifecycle states as the directory persists them.
const (
	AccountPending = "PENDING"
	AccountActive  = "ACTIVE"
)

// Directory is the consumer-supplied user store. The engine never creates
// accounts; it looks them up, activates them, and rewrites credentials.
//
// The update methods are named so a single store type can also satisfy
// [tokenstore.Store], whose UpdateState acts on token records.
type Directory interface {
	FindByUsername(ctx context.Context, username string) (*tokenstore.User, error)
	FindByEmail(ctx context.Context, email string) (*tokenstore.User, error)
	FindByID(ctx context.Context, id string) (*tokenstore.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateUserState(ctx context.Context, userID, state string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

// Sender delivers a notification to one recipient. Failures are logged by
// the dispatcher and never reach the issuance path.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}
