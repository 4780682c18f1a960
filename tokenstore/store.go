package tokenstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound reports that no record or user matched the lookup.
	ErrNotFound = errors.New("tokenstore: record not found")
	// ErrUnavailable wraps backend failures so callers can distinguish a
	// missing record from a store that cannot answer at all.
	ErrUnavailable = errors.New("tokenstore: backend unavailable")
	// ErrTerminalState reports an attempt to transition a record that has
	// already left the pending state.
	ErrTerminalState = errors.New("tokenstore: record already in terminal state")
)

// Store persists token records keyed by their compact token string.
//
// Implementations must enforce the lifecycle: Save accepts only pending
// records, UpdateState refuses to move a record out of a terminal state, and
// MarkExpired retires pending records whose expiry has passed.
type Store interface {
	// FindByToken returns the record for the exact compact token, or
	// [ErrNotFound].
	FindByToken(ctx context.Context, token string) (*Record, error)

	// Save persists a new pending record. A record already in a terminal
	// state is rejected with [ErrTerminalState].
	Save(ctx context.Context, record *Record) error

	// UpdateState moves the record for token into next. It returns
	// [ErrTerminalState] when the record is no longer pending and
	// [ErrNotFound] when the token is unknown.
	UpdateState(ctx context.Context, token string, next State) error

	// MarkExpired transitions every pending record whose expiry is in the
	// past to [StateForciblyExpired] and returns how many it retired.
	MarkExpired(ctx context.Context) (int64, error)

	// InvalidatePendingForUser transitions every pending record owned by
	// userID to [StateForciblyExpired], regardless of expiry, and returns
	// how many it retired.
	InvalidatePendingForUser(ctx context.Context, userID string) (int64, error)
}
