package tokenstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newSQLiteTest(t *testing.T) *SQLite {
	t.Helper()
	store, err := NewSQLite(filepath.Join(t.TempDir(), "regauth.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seedUser(t *testing.T, store *SQLite, id string) *User {
	t.Helper()
	user := &User{
		ID:           id,
		Username:     "user-" + id,
		Email:        "user-" + id + "@example.com",
		PasswordHash: "salt:secret:hash",
		State:        "PENDING",
		Roles:        []string{"USER"},
	}
	if err := store.SaveUser(context.Background(), user); err != nil {
		t.Fatalf("save user: %v", err)
	}
	return user
}

func TestSQLiteRecordLifecycle(t *testing.T) {
	store := newSQLiteTest(t)
	ctx := context.Background()
	user := seedUser(t, store, "u-1")

	record := NewRecord("tok-abc", PurposeAccountVerification, user.ID, time.Hour)
	if err := store.Save(ctx, record); err != nil {
		t.Fatalf("save record: %v", err)
	}

	found, err := store.FindByToken(ctx, "tok-abc")
	if err != nil {
		t.Fatalf("find record: %v", err)
	}
	if found.State != StatePending {
		t.Fatalf("expected PENDING, got %s", found.State)
	}
	if found.Purpose != PurposeAccountVerification {
		t.Fatalf("expected ACCOUNT_VERIFICATION, got %s", found.Purpose)
	}
	if found.UserID != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, found.UserID)
	}

	if err := store.UpdateState(ctx, "tok-abc", StateVerified); err != nil {
		t.Fatalf("update state: %v", err)
	}

	found, err = store.FindByToken(ctx, "tok-abc")
	if err != nil {
		t.Fatalf("find after update: %v", err)
	}
	if found.State != StateVerified {
		t.Fatalf("expected VERIFIED, got %s", found.State)
	}

	// Terminal states never transition again.
	err = store.UpdateState(ctx, "tok-abc", StateForciblyExpired)
	if !errors.Is(err, ErrTerminalState) {
		t.Fatalf("expected ErrTerminalState, got %v", err)
	}
}

func TestSQLiteFindUnknownToken(t *testing.T) {
	store := newSQLiteTest(t)

	if _, err := store.FindByToken(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.UpdateState(context.Background(), "missing", StateVerified); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
}

func TestSQLiteMarkExpired(t *testing.T) {
	store := newSQLiteTest(t)
	ctx := context.Background()
	user := seedUser(t, store, "u-1")

	stale := NewRecord("tok-stale", PurposePasswordRecovery, user.ID, -time.Minute)
	fresh := NewRecord("tok-fresh", PurposePasswordRecovery, user.ID, time.Hour)
	redeemed := NewRecord("tok-redeemed", PurposeAccountVerification, user.ID, -time.Minute)
	for _, record := range []*Record{stale, fresh, redeemed} {
		if err := store.Save(ctx, record); err != nil {
			t.Fatalf("save %s: %v", record.Token, err)
		}
	}
	if err := store.UpdateState(ctx, "tok-redeemed", StateVerified); err != nil {
		t.Fatalf("redeem: %v", err)
	}

	retired, err := store.MarkExpired(ctx)
	if err != nil {
		t.Fatalf("mark expired: %v", err)
	}
	if retired != 1 {
		t.Fatalf("expected 1 retired record, got %d", retired)
	}

	for token, want := range map[string]State{
		"tok-stale":    StateForciblyExpired,
		"tok-fresh":    StatePending,
		"tok-redeemed": StateVerified,
	} {
		found, err := store.FindByToken(ctx, token)
		if err != nil {
			t.Fatalf("find %s: %v", token, err)
		}
		if found.State != want {
			t.Fatalf("%s: expected %s, got %s", token, want, found.State)
		}
	}

	// Second sweep is a no-op.
	retired, err = store.MarkExpired(ctx)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if retired != 0 {
		t.Fatalf("expected idempotent sweep, retired %d", retired)
	}
}

func TestSQLiteSaveRejectsTerminalRecord(t *testing.T) {
	store := newSQLiteTest(t)
	user := seedUser(t, store, "u-1")

	record := NewRecord("tok-done", PurposeAccountVerification, user.ID, time.Hour)
	record.State = StateVerified
	if err := store.Save(context.Background(), record); !errors.Is(err, ErrTerminalState) {
		t.Fatalf("expected ErrTerminalState, got %v", err)
	}
}

func TestSQLiteInvalidatePendingForUser(t *testing.T) {
	store := newSQLiteTest(t)
	ctx := context.Background()
	owner := seedUser(t, store, "u-1")
	other := seedUser(t, store, "u-2")

	pending := NewRecord("tok-pending", PurposeAccountVerification, owner.ID, time.Hour)
	redeemed := NewRecord("tok-redeemed", PurposePasswordRecovery, owner.ID, time.Hour)
	unrelated := NewRecord("tok-other", PurposeAccountVerification, other.ID, time.Hour)
	for _, record := range []*Record{pending, redeemed, unrelated} {
		if err := store.Save(ctx, record); err != nil {
			t.Fatalf("save %s: %v", record.Token, err)
		}
	}
	if err := store.UpdateState(ctx, "tok-redeemed", StateVerified); err != nil {
		t.Fatalf("redeem: %v", err)
	}

	retired, err := store.InvalidatePendingForUser(ctx, owner.ID)
	if err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if retired != 1 {
		t.Fatalf("expected 1 retired record, got %d", retired)
	}

	for token, want := range map[string]State{
		"tok-pending":  StateForciblyExpired,
		"tok-redeemed": StateVerified,
		"tok-other":    StatePending,
	} {
		found, err := store.FindByToken(ctx, token)
		if err != nil {
			t.Fatalf("find %s: %v", token, err)
		}
		if found.State != want {
			t.Fatalf("%s: expected %s, got %s", token, want, found.State)
		}
	}
}

func TestSQLiteDirectoryLookups(t *testing.T) {
	store := newSQLiteTest(t)
	ctx := context.Background()
	user := seedUser(t, store, "u-1")

	byName, err := store.FindByUsername(ctx, user.Username)
	if err != nil {
		t.Fatalf("find by username: %v", err)
	}
	byEmail, err := store.FindByEmail(ctx, user.Email)
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	byID, err := store.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	for _, got := range []*User{byName, byEmail, byID} {
		if got.ID != user.ID || got.Username != user.Username {
			t.Fatalf("lookup mismatch: %+v", got)
		}
	}
	if len(byName.Roles) != 1 || byName.Roles[0] != "USER" {
		t.Fatalf("expected roles [USER], got %v", byName.Roles)
	}

	exists, err := store.ExistsByUsername(ctx, user.Username)
	if err != nil || !exists {
		t.Fatalf("expected username to exist, got %v %v", exists, err)
	}
	exists, err = store.ExistsByEmail(ctx, "nobody@example.com")
	if err != nil || exists {
		t.Fatalf("expected email to be free, got %v %v", exists, err)
	}

	if _, err := store.FindByUsername(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteDirectoryUpdates(t *testing.T) {
	store := newSQLiteTest(t)
	ctx := context.Background()
	user := seedUser(t, store, "u-1")

	if err := store.UpdateUserState(ctx, user.ID, "ACTIVE"); err != nil {
		t.Fatalf("update state: %v", err)
	}
	if err := store.UpdatePassword(ctx, user.ID, "new:secret:hash"); err != nil {
		t.Fatalf("update password: %v", err)
	}

	updated, err := store.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if updated.State != "ACTIVE" {
		t.Fatalf("expected ACTIVE, got %s", updated.State)
	}
	if updated.PasswordHash != "new:secret:hash" {
		t.Fatalf("password hash not updated: %s", updated.PasswordHash)
	}

	if err := store.UpdateUserState(ctx, "ghost", "ACTIVE"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
