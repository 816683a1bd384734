package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate())
	return s
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Migrate())
}

func TestSaveAndGetSession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := SessionRecord{
		ID:           "abc",
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	require.NoError(t, s.SaveSession(ctx, rec))

	got, err := s.GetSession(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "access-1", got.AccessToken)
	assert.Equal(t, "refresh-1", got.RefreshToken)
	assert.WithinDuration(t, rec.ExpiresAt, got.ExpiresAt, time.Second)

	rec.AccessToken = "access-2"
	require.NoError(t, s.SaveSession(ctx, rec))
	got, err = s.GetSession(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "access-2", got.AccessToken)
}

func TestGetSession_MissingAndExpired(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetSession(ctx, "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, s.SaveSession(ctx, SessionRecord{ID: "old", AccessToken: "a", ExpiresAt: time.Now().Add(-time.Minute)}))
	_, err = s.GetSession(ctx, "old")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestDeleteAndPruneSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.SaveSession(ctx, SessionRecord{ID: "live", AccessToken: "a", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, s.SaveSession(ctx, SessionRecord{ID: "dead1", AccessToken: "a", ExpiresAt: now.Add(-time.Hour)}))
	require.NoError(t, s.SaveSession(ctx, SessionRecord{ID: "dead2", AccessToken: "a", ExpiresAt: now.Add(-time.Minute)}))

	live, expired, err := s.SessionStats(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, live)
	assert.Equal(t, 2, expired)

	n, err := s.PruneSessions(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, s.DeleteSession(ctx, "live"))
	_, err = s.GetSession(ctx, "live")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
