package tokenstore

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle state of a persisted token record. A record starts
// as [StatePending] and moves exactly once into one of the terminal states.
type State uint8

const (
	// StatePending marks a token that has been issued but not yet redeemed.
	StatePending State = iota
	// StateVerified marks a token that was successfully redeemed.
	StateVerified
	// StateExpired marks a token whose lifetime elapsed before redemption.
	StateExpired
	// StateForciblyExpired marks a token retired by the background sweep
	// rather than by its own redemption or validation.
	StateForciblyExpired
)

// String returns the canonical wire name of the state.
func (s State) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateVerified:
		return "VERIFIED"
	case StateExpired:
		return "EXPIRED"
	case StateForciblyExpired:
		return "FORCIBLY_EXPIRED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether the state permits no further transitions.
func (s State) Terminal() bool {
	return s != StatePending
}

func parseState(name string) (State, error) {
	switch name {
	case "PENDING":
		return StatePending, nil
	case "VERIFIED":
		return StateVerified, nil
	case "EXPIRED":
		return StateExpired, nil
	case "FORCIBLY_EXPIRED":
		return StateForciblyExpired, nil
	default:
		return 0, fmt.Errorf("unknown token state %q", name)
	}
}

// Purpose distinguishes what a persisted token authorizes.
type Purpose uint8

const (
	// PurposeAccountVerification authorizes activating a freshly registered
	// account.
	PurposeAccountVerification Purpose = iota
	// PurposePasswordRecovery authorizes setting a new password without
	// knowing the old one.
	PurposePasswordRecovery
)

// String returns the canonical wire name of the purpose.
func (p Purpose) String() string {
	switch p {
	case PurposeAccountVerification:
		return "ACCOUNT_VERIFICATION"
	case PurposePasswordRecovery:
		return "PASSWORD_RECOVERY"
	default:
		return "UNKNOWN"
	}
}

func parsePurpose(name string) (Purpose, error) {
	switch name {
	case "ACCOUNT_VERIFICATION":
		return PurposeAccountVerification, nil
	case "PASSWORD_RECOVERY":
		return PurposePasswordRecovery, nil
	default:
		return 0, fmt.Errorf("unknown token purpose %q", name)
	}
}

// Record is one persisted token together with its lifecycle metadata. The
// compact token string doubles as the lookup key.
type Record struct {
	ID       string
	Token    string
	ExpireAt time.Time
	Purpose  Purpose
	State    State
	UserID   string
}

// NewRecord builds a pending record for a freshly signed token. The record
// ID is assigned here; ExpireAt mirrors the token's own exp claim so the
// sweep can retire records without parsing tokens.
func NewRecord(token string, purpose Purpose, userID string, ttl time.Duration) *Record {
	return &Record{
		ID:       uuid.NewString(),
		Token:    token,
		ExpireAt: time.Now().Add(ttl),
		Purpose:  purpose,
		State:    StatePending,
		UserID:   userID,
	}
}

// User is one directory account as the stores persist it.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	State        string
	Roles        []string
}
