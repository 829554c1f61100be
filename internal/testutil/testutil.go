package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/copydesk/copydesk/internal/auth"
	"github.com/copydesk/copydesk/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

// ResetUsersTable empties the users table between PostgreSQL integration tests.
func ResetUsersTable(ctx context.Context, databaseURL string) error {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, "TRUNCATE TABLE users RESTART IDENTITY"); err != nil {
		return fmt.Errorf("truncate users: %w", err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// FastHasher returns an argon2id hasher cheap enough for unit tests.
func FastHasher() *auth.Argon2Hasher {
	return auth.NewArgon2Hasher(auth.Argon2Params{
		Time:    1,
		Memory:  8 * 1024,
		Threads: 1,
		KeyLen:  32,
		SaltLen: 16,
	})
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a user record with sensible defaults.
func NewTestUser(t testing.TB, email string) *model.User {
	t.Helper()
	return &model.User{
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0$aGFzaGhhc2hoYXNo",
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
}

// UniqueEmail generates a unique email address for tests.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}

// ============================================================================
// Completion API double
// ============================================================================

// CompletionServer is an httptest server speaking the completions wire format.
type CompletionServer struct {
	*httptest.Server
	calls atomic.Int64
}

// Calls returns how many requests the server has received.
func (s *CompletionServer) Calls() int64 {
	return s.calls.Load()
}

// NewCompletionServer returns a server that answers every completion request
// with text as the first choice. It is closed when the test ends.
func NewCompletionServer(t testing.TB, text string) *CompletionServer {
	t.Helper()

	srv := &CompletionServer{}
	srv.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srv.calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "cmpl-test",
			"object": "text_completion",
			"model":  "gpt-3.5-turbo-instruct",
			"choices": []map[string]any{
				{"index": 0, "text": text, "finish_reason": "stop"},
			},
		})
	}))
	t.Cleanup(srv.Close)

	return srv
}
