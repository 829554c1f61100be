package repository

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copydesk/copydesk/internal/testutil"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(context.Background(), memoryPath, testutil.DiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLite_CreateAndGetUser(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	user := testutil.NewTestUser(t, "a@x.com")
	require.NoError(t, store.CreateUser(ctx, user))
	assert.NotZero(t, user.ID, "store should assign an id")

	got, err := store.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, user.Email, got.Email)
	assert.Equal(t, user.PasswordHash, got.PasswordHash)
	assert.True(t, user.CreatedAt.Equal(got.CreatedAt), "created_at should round-trip")
}

func TestSQLite_AssignsDistinctIDs(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	first := testutil.NewTestUser(t, "one@x.com")
	second := testutil.NewTestUser(t, "two@x.com")
	require.NoError(t, store.CreateUser(ctx, first))
	require.NoError(t, store.CreateUser(ctx, second))

	assert.NotEqual(t, first.ID, second.ID)
}

func TestSQLite_GetUserByEmail_NotFound(t *testing.T) {
	store := newTestSQLiteStore(t)

	_, err := store.GetUserByEmail(context.Background(), "missing@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSQLite_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	original := testutil.NewTestUser(t, "dup@x.com")
	require.NoError(t, store.CreateUser(ctx, original))

	duplicate := testutil.NewTestUser(t, "dup@x.com")
	duplicate.PasswordHash = "different"
	err := store.CreateUser(ctx, duplicate)
	assert.ErrorIs(t, err, ErrEmailExists)

	// Existing record is untouched.
	got, err := store.GetUserByEmail(ctx, "dup@x.com")
	require.NoError(t, err)
	assert.Equal(t, original.PasswordHash, got.PasswordHash)
}

func TestSQLite_EmailIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	require.NoError(t, store.CreateUser(ctx, testutil.NewTestUser(t, "Case@x.com")))
	require.NoError(t, store.CreateUser(ctx, testutil.NewTestUser(t, "case@x.com")))

	_, err := store.GetUserByEmail(ctx, "CASE@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSQLite_ConcurrentDuplicateInserts(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "users.db")

	store, err := OpenSQLite(ctx, path, testutil.DiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	const workers = 8
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		successes  int
		duplicates int
	)

	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := store.CreateUser(ctx, testutil.NewTestUser(t, "race@x.com"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrEmailExists):
				duplicates++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes, "exactly one concurrent signup may succeed")
	assert.Equal(t, workers-1, duplicates)
}

func TestSQLite_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "users.db")

	store, err := OpenSQLite(ctx, path, testutil.DiscardLogger())
	require.NoError(t, err)
	require.NoError(t, store.CreateUser(ctx, testutil.NewTestUser(t, "persist@x.com")))
	require.NoError(t, store.Close())

	// Migrations are idempotent and the file survives.
	reopened, err := OpenSQLite(ctx, path, testutil.DiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	_, err = reopened.GetUserByEmail(ctx, "persist@x.com")
	assert.NoError(t, err)
}

func TestSQLite_Ping(t *testing.T) {
	store := newTestSQLiteStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}

func TestSQLitePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"sqlite:copydesk.db", "copydesk.db"},
		{"sqlite:///var/lib/copydesk/users.db", "/var/lib/copydesk/users.db"},
		{"sqlite::memory:", ":memory:"},
		{"data/users.db", "data/users.db"},
		{"sqlite:", "copydesk.db"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SQLitePath(tt.in))
		})
	}
}

func TestOpen_DispatchesToSQLite(t *testing.T) {
	store, err := Open(context.Background(), "sqlite::memory:", testutil.DiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, ok := store.(*SQLiteStore)
	assert.True(t, ok, "expected SQLite backend, got %T", store)
}
