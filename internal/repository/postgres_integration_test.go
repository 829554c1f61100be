//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copydesk/copydesk/internal/testutil"
)

func newTestPostgresStore(t *testing.T) *PostgresStore {
	t.Helper()
	ctx := context.Background()
	databaseURL := testutil.RequireEnv(t, "TEST_DATABASE_URL")

	store, err := OpenPostgres(ctx, databaseURL, testutil.DiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, testutil.ResetUsersTable(ctx, databaseURL))
	return store
}

func TestIntegrationPostgres_CreateAndGetUser(t *testing.T) {
	ctx := context.Background()
	store := newTestPostgresStore(t)

	email := testutil.UniqueEmail("pg")
	user := testutil.NewTestUser(t, email)
	require.NoError(t, store.CreateUser(ctx, user))
	assert.NotZero(t, user.ID)

	got, err := store.GetUserByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, user.PasswordHash, got.PasswordHash)
}

func TestIntegrationPostgres_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	store := newTestPostgresStore(t)

	email := testutil.UniqueEmail("pgdup")
	require.NoError(t, store.CreateUser(ctx, testutil.NewTestUser(t, email)))

	err := store.CreateUser(ctx, testutil.NewTestUser(t, email))
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestIntegrationPostgres_NotFound(t *testing.T) {
	store := newTestPostgresStore(t)

	_, err := store.GetUserByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
