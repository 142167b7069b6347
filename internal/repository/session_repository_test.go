package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyayamitra/nyaya-mitra/internal/database"
	"github.com/nyayamitra/nyaya-mitra/internal/model"
)

func newTestDB(t *testing.T) *UserRepo {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))
	return NewUserRepo(db)
}

func createTestUser(t *testing.T, users *UserRepo, email string) uint64 {
	t.Helper()
	uid, err := users.Create(context.Background(), "user-"+email, email, "password123", "Test User", nil, model.RoleCitizen, 4)
	require.NoError(t, err)
	return uid
}

func TestSessionLifecycle(t *testing.T) {
	users := newTestDB(t)
	sessions := NewSessionRepo(users.DB)
	ctx := context.Background()

	uid := createTestUser(t, users, "session@example.com")

	_, err := sessions.Create(ctx, model.Session{
		UserID:       uid,
		SessionToken: "access-token",
		RefreshToken: "refresh-token",
		ExpiresAt:    time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	sess, u, err := sessions.FindActiveWithUser(ctx, "access-token")
	require.NoError(t, err)
	assert.Equal(t, uid, sess.UserID)
	assert.Equal(t, "session@example.com", u.Email)
	assert.True(t, u.IsActive)

	// Deactivation hides the session and is idempotent.
	require.NoError(t, sessions.Deactivate(ctx, "access-token"))
	_, _, err = sessions.FindActiveWithUser(ctx, "access-token")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, sessions.Deactivate(ctx, "access-token"))
}

func TestFindActiveWithUser_Expired(t *testing.T) {
	users := newTestDB(t)
	sessions := NewSessionRepo(users.DB)
	ctx := context.Background()

	uid := createTestUser(t, users, "expired@example.com")

	_, err := sessions.Create(ctx, model.Session{
		UserID:       uid,
		SessionToken: "stale-token",
		RefreshToken: "stale-refresh",
		ExpiresAt:    time.Now().Add(-time.Minute),
	})
	require.NoError(t, err)

	_, _, err = sessions.FindActiveWithUser(ctx, "stale-token")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRotateAccessToken(t *testing.T) {
	users := newTestDB(t)
	sessions := NewSessionRepo(users.DB)
	ctx := context.Background()

	uid := createTestUser(t, users, "rotate@example.com")

	_, err := sessions.Create(ctx, model.Session{
		UserID:       uid,
		SessionToken: "old-access",
		RefreshToken: "the-refresh",
		ExpiresAt:    time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	require.NoError(t, sessions.RotateAccessToken(ctx, "the-refresh", "new-access"))

	sess, err := sessions.FindActiveByRefresh(ctx, "the-refresh")
	require.NoError(t, err)
	assert.Equal(t, "new-access", sess.SessionToken)

	// The old access token no longer resolves.
	_, _, err = sessions.FindActiveWithUser(ctx, "old-access")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	users := newTestDB(t)
	ctx := context.Background()

	_, err := users.Create(ctx, "dup1", "dup@example.com", "password123", "First", nil, model.RoleCitizen, 4)
	require.NoError(t, err)
	_, err = users.Create(ctx, "dup2", "dup@example.com", "password123", "Second", nil, model.RoleCitizen, 4)
	assert.ErrorIs(t, err, ErrUserExists)
}
