//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copydesk/copydesk/internal/model"
	"github.com/copydesk/copydesk/internal/session"
	"github.com/copydesk/copydesk/internal/testutil"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	ctx := context.Background()
	redisURL := testutil.RequireEnv(t, "TEST_REDIS_URL")

	c, err := New(ctx, redisURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, testutil.FlushRedis(ctx, c.Client()))
	return c
}

func TestCache_SessionRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	sess := &model.Session{
		ID:        "01HZX0000000000000000000AA",
		Email:     "a@x.com",
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	require.NoError(t, c.Save(ctx, sess))

	got, err := c.Load(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.Email, got.Email)
	assert.True(t, sess.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, got.ExpiresAt.IsZero())

	ttl, err := c.Client().TTL(ctx, sessionKey(sess.ID)).Result()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(-1), ttl, "sessions without expiry have no key TTL")

	require.NoError(t, c.Delete(ctx, sess.ID))
	_, err = c.Load(ctx, sess.ID)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestCache_SessionKeyIsHashed(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	sess := &model.Session{ID: "raw-session-id", Email: "a@x.com", CreatedAt: time.Now()}
	require.NoError(t, c.Save(ctx, sess))

	exists, err := c.Client().Exists(ctx, "session:raw-session-id").Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}

func TestCache_SessionExpiry(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	sess := &model.Session{
		ID:        "expiring",
		Email:     "a@x.com",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Minute),
	}
	require.NoError(t, c.Save(ctx, sess))

	ttl, err := c.Client().TTL(ctx, sessionKey(sess.ID)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	c.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = c.Load(ctx, sess.ID)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestCache_ManagerIntegration(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	m := session.NewManager(c, session.Options{Secret: []byte("0123456789abcdef0123456789abcdef")})

	sess, err := m.Start(ctx, "a@x.com")
	require.NoError(t, err)
	token, err := m.Encode(sess)
	require.NoError(t, err)

	got, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email)

	require.NoError(t, m.End(ctx, sess))
	_, err = m.Resolve(ctx, token)
	assert.ErrorIs(t, err, session.ErrNoSession)
}
