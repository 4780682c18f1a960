package tokenstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite persists token records and directory accounts in a single SQLite
// database file. It implements [Store] and the account lookups the engine's
// directory needs.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if necessary) the database at path and applies
// the schema.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: enabling foreign keys: %v", ErrUnavailable, err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	for _, stmt := range []struct {
		name string
		ddl  string
	}{
		{"user_account", `
			CREATE TABLE IF NOT EXISTS user_account (
				id            TEXT PRIMARY KEY,
				username      TEXT UNIQUE NOT NULL,
				email         TEXT UNIQUE NOT NULL,
				password_hash TEXT NOT NULL,
				state         TEXT NOT NULL,
				roles         TEXT NOT NULL DEFAULT ''
			);`},
		{"user_token", `
			CREATE TABLE IF NOT EXISTS user_token (
				id        TEXT PRIMARY KEY,
				token     TEXT UNIQUE NOT NULL,
				expire_at INTEGER NOT NULL,
				purpose   TEXT NOT NULL,
				state     TEXT NOT NULL,
				user_id   TEXT NOT NULL,
				FOREIGN KEY (user_id) REFERENCES user_account (id) ON DELETE CASCADE
			);`},
	} {
		if _, err := db.Exec(stmt.ddl); err != nil {
			return fmt.Errorf("%w: init %s schema: %v", ErrUnavailable, stmt.name, err)
		}
	}
	return nil
}

// FindByToken returns the record keyed by the exact compact token.
func (s *SQLite) FindByToken(ctx context.Context, token string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, token, expire_at, purpose, state, user_id
		FROM user_token WHERE token = ?`, token)

	return scanRecord(row)
}

func scanRecord(row *sql.Row) (*Record, error) {
	var (
		record       Record
		expireMillis int64
		purpose      string
		state        string
	)
	err := row.Scan(&record.ID, &record.Token, &expireMillis, &purpose, &state, &record.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	record.ExpireAt = time.UnixMilli(expireMillis)
	if record.Purpose, err = parsePurpose(purpose); err != nil {
		return nil, err
	}
	if record.State, err = parseState(state); err != nil {
		return nil, err
	}
	return &record, nil
}

// Save persists a new pending record.
func (s *SQLite) Save(ctx context.Context, record *Record) error {
	if record.State.Terminal() {
		return fmt.Errorf("%w: %s", ErrTerminalState, record.State)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_token (id, token, expire_at, purpose, state, user_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		record.ID, record.Token, record.ExpireAt.UnixMilli(),
		record.Purpose.String(), record.State.String(), record.UserID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// UpdateState moves the record for token into next. Only pending records may
// transition.
func (s *SQLite) UpdateState(ctx context.Context, token string, next State) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE user_token SET state = ? WHERE token = ? AND state = ?`,
		next.String(), token, StatePending.String())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if affected == 0 {
		var state string
		err := s.db.QueryRowContext(ctx,
			`SELECT state FROM user_token WHERE token = ?`, token).Scan(&state)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return fmt.Errorf("%w: %s", ErrTerminalState, state)
	}
	return nil
}

// MarkExpired retires, in a single transaction, every pending record whose
// expiry has passed.
func (s *SQLite) MarkExpired(ctx context.Context) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE user_token SET state = ?
		WHERE state = ? AND expire_at < ?`,
		StateForciblyExpired.String(), StatePending.String(), time.Now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return affected, nil
}

// InvalidatePendingForUser retires every pending record owned by userID,
// regardless of expiry. Password reset uses this so no token issued before
// the credential change stays redeemable.
func (s *SQLite) InvalidatePendingForUser(ctx context.Context, userID string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE user_token SET state = ?
		WHERE user_id = ? AND state = ?`,
		StateForciblyExpired.String(), userID, StatePending.String())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return affected, nil
}

// SaveUser inserts a new directory account.
func (s *SQLite) SaveUser(ctx context.Context, user *User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_account (id, username, email, password_hash, state, roles)
		VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.Email, user.PasswordHash,
		user.State, strings.Join(user.Roles, ","))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// FindByUsername returns the account with the given username.
func (s *SQLite) FindByUsername(ctx context.Context, username string) (*User, error) {
	return scanUser(s.db.QueryRowContext(ctx, userSelect+`WHERE username = ?`, username))
}

// FindByEmail returns the account with the given email address.
func (s *SQLite) FindByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(s.db.QueryRowContext(ctx, userSelect+`WHERE email = ?`, email))
}

// FindByID returns the account with the given ID.
func (s *SQLite) FindByID(ctx context.Context, id string) (*User, error) {
	return scanUser(s.db.QueryRowContext(ctx, userSelect+`WHERE id = ?`, id))
}

const userSelect = `SELECT id, username, email, password_hash, state, roles FROM user_account `

func scanUser(row *sql.Row) (*User, error) {
	var (
		user  User
		roles string
	)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.State, &roles)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if roles != "" {
		user.Roles = strings.Split(roles, ",")
	}
	return &user, nil
}

// ExistsByUsername reports whether an account with the username exists.
func (s *SQLite) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM user_account WHERE username = ?`, username)
}

// ExistsByEmail reports whether an account with the email exists.
func (s *SQLite) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM user_account WHERE email = ?`, email)
}

func (s *SQLite) exists(ctx context.Context, query, arg string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return true, nil
}

// UpdateUserState sets the account's lifecycle state, e.g. PENDING to ACTIVE
// after email verification.
func (s *SQLite) UpdateUserState(ctx context.Context, userID, state string) error {
	return s.updateUser(ctx, `UPDATE user_account SET state = ? WHERE id = ?`, state, userID)
}

// UpdatePassword replaces the account's stored credential encoding.
func (s *SQLite) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return s.updateUser(ctx, `UPDATE user_account SET password_hash = ? WHERE id = ?`, passwordHash, userID)
}

func (s *SQLite) updateUser(ctx context.Context, query, value, userID string) error {
	result, err := s.db.ExecContext(ctx, query, value, userID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
