// ABOUTME: Tests for desk user accounts and server-side sessions
// ABOUTME: Covers one-time seeding, username uniqueness, password overwrite and session expiry

package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	user := &User{Username: "guard", PasswordHash: "hash", Role: RoleAdmin}
	require.NoError(t, store.CreateUser(ctx, user))
	assert.NotZero(t, user.ID)

	got, err := store.GetUserByUsername(ctx, "guard")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.Equal(t, RoleAdmin, got.Role)

	byID, err := store.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "guard", byID.Username)
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, &User{Username: "admin", PasswordHash: "a"}))
	err := store.CreateUser(ctx, &User{Username: "admin", PasswordHash: "b"})
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestGetUser_NotFound(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.GetUserByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = store.GetUser(ctx, 42)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetUserByUsername_CaseSensitive(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, &User{Username: "admin", PasswordHash: "h"}))

	_, err := store.GetUserByUsername(ctx, "Admin")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCreateUserIfNone(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	created, err := store.CreateUserIfNone(ctx, &User{Username: "admin", PasswordHash: "h1", Role: RoleAdmin})
	require.NoError(t, err)
	assert.True(t, created)

	// Any existing user suppresses seeding, even with a different name
	created, err = store.CreateUserIfNone(ctx, &User{Username: "other", PasswordHash: "h2"})
	require.NoError(t, err)
	assert.False(t, created)

	count, err := store.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCreateUserIfNone_Concurrent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.CreateUserIfNone(ctx, &User{Username: "admin", PasswordHash: "h", Role: RoleAdmin})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	count, err := store.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUpdateUserPassword(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	user := &User{Username: "admin", PasswordHash: "old"}
	require.NoError(t, store.CreateUser(ctx, user))

	require.NoError(t, store.UpdateUserPassword(ctx, user.ID, "new"))

	got, err := store.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.PasswordHash)

	err = store.UpdateUserPassword(ctx, 9999, "x")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSessions(t *testing.T) {
	store, _ := setupClockedStore(t)
	ctx := context.Background()

	user := &User{Username: "admin", PasswordHash: "h"}
	require.NoError(t, store.CreateUser(ctx, user))

	session := &Session{ID: "tok-1", UserID: user.ID, Username: user.Username}
	require.NoError(t, store.CreateSession(ctx, session))
	assert.False(t, session.CreatedAt.IsZero())

	got, err := store.GetSession(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.UserID)
	assert.Equal(t, "admin", got.Username)
	assert.Nil(t, got.ExpiresAt)

	require.NoError(t, store.DeleteSession(ctx, "tok-1"))
	_, err = store.GetSession(ctx, "tok-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Deleting twice is fine
	assert.NoError(t, store.DeleteSession(ctx, "tok-1"))
}

func TestSessions_Expiry(t *testing.T) {
	store, clock := setupClockedStore(t)
	ctx := context.Background()

	user := &User{Username: "admin", PasswordHash: "h"}
	require.NoError(t, store.CreateUser(ctx, user))

	expires := clock.Now().Add(time.Hour)
	require.NoError(t, store.CreateSession(ctx, &Session{ID: "short", UserID: user.ID, Username: "admin", ExpiresAt: &expires}))
	require.NoError(t, store.CreateSession(ctx, &Session{ID: "forever", UserID: user.ID, Username: "admin"}))

	_, err := store.GetSession(ctx, "short")
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)

	_, err = store.GetSession(ctx, "short")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	removed, err := store.DeleteExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = store.GetSession(ctx, "forever")
	assert.NoError(t, err)
}

func TestDeleteUserSessions(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	alice := &User{Username: "alice", PasswordHash: "h"}
	bob := &User{Username: "bob", PasswordHash: "h"}
	require.NoError(t, store.CreateUser(ctx, alice))
	require.NoError(t, store.CreateUser(ctx, bob))

	require.NoError(t, store.CreateSession(ctx, &Session{ID: "a1", UserID: alice.ID, Username: "alice"}))
	require.NoError(t, store.CreateSession(ctx, &Session{ID: "a2", UserID: alice.ID, Username: "alice"}))
	require.NoError(t, store.CreateSession(ctx, &Session{ID: "b1", UserID: bob.ID, Username: "bob"}))

	removed, err := store.DeleteUserSessions(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	_, err = store.GetSession(ctx, "a1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = store.GetSession(ctx, "b1")
	assert.NoError(t, err)
}
