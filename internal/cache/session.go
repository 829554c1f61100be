package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/copydesk/copydesk/internal/auth"
	"github.com/copydesk/copydesk/internal/model"
	"github.com/copydesk/copydesk/internal/session"
)

const sessionKeyPrefix = "session:"

// sessionKey hashes the ID so raw session IDs never appear in Redis.
func sessionKey(id string) string {
	return sessionKeyPrefix + auth.QuickHash(id)
}

// Save stores sess as a hash. Sessions with an expiry get a matching key TTL.
func (c *Cache) Save(ctx context.Context, sess *model.Session) error {
	key := sessionKey(sess.ID)

	fields := map[string]any{
		"id":         sess.ID,
		"email":      sess.Email,
		"created_at": sess.CreatedAt.UTC().Format(time.RFC3339Nano),
	}

	var ttl time.Duration
	if !sess.ExpiresAt.IsZero() {
		ttl = sess.ExpiresAt.Sub(c.now())
		if ttl <= 0 {
			return c.Delete(ctx, sess.ID)
		}
		fields["expires_at"] = sess.ExpiresAt.UTC().Format(time.RFC3339Nano)
	}

	pipe := c.client.Pipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fields)
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis save session failed: %w", err)
	}
	return nil
}

// Load fetches a session by ID. Returns session.ErrSessionNotFound if the key
// is missing or the record has expired.
func (c *Cache) Load(ctx context.Context, id string) (*model.Session, error) {
	result, err := c.client.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}

	if len(result) == 0 {
		return nil, session.ErrSessionNotFound
	}

	sess := &model.Session{
		ID:    result["id"],
		Email: result["email"],
	}

	if v := result["created_at"]; v != "" {
		sess.CreatedAt, err = time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil, fmt.Errorf("parse session created_at: %w", err)
		}
	}
	if v := result["expires_at"]; v != "" {
		sess.ExpiresAt, err = time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil, fmt.Errorf("parse session expires_at: %w", err)
		}
	}

	if sess.ID != id || sess.IsExpiredAt(c.now()) {
		return nil, session.ErrSessionNotFound
	}

	return sess, nil
}

// Delete removes the session record. Missing keys are not an error.
func (c *Cache) Delete(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

var _ session.Store = (*Cache)(nil)
