// Package repository provides the credential store.
//
// Two backends implement Store: SQLite (the default, a single local file) and
// PostgreSQL. Both create their schema on first use through embedded goose
// migrations and enforce email uniqueness with a UNIQUE constraint, so
// concurrent signups for one address cannot both succeed.
package repository

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/copydesk/copydesk/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")
)

// UserStore is the credential store boundary used by the auth workflow.
type UserStore interface {
	// CreateUser inserts user and sets its store-assigned ID.
	// Returns ErrEmailExists if the email is already registered.
	CreateUser(ctx context.Context, user *model.User) error
	// GetUserByEmail finds a user by exact email match.
	// Returns ErrUserNotFound if absent.
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// Store is a UserStore with a connection lifecycle.
type Store interface {
	UserStore
	Ping(ctx context.Context) error
	Close() error
}

const sqlitePrefix = "sqlite:"

// Open connects to the store named by databaseURL and applies pending
// migrations. postgres:// and postgresql:// URLs select PostgreSQL; anything
// else is treated as a SQLite path, optionally prefixed with "sqlite:".
func Open(ctx context.Context, databaseURL string, logger *slog.Logger) (Store, error) {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		store, err := OpenPostgres(ctx, databaseURL, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	store, err := OpenSQLite(ctx, SQLitePath(databaseURL), logger)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// SQLitePath extracts the file path from a sqlite DATABASE_URL.
func SQLitePath(databaseURL string) string {
	path := strings.TrimPrefix(databaseURL, sqlitePrefix)
	path = strings.TrimPrefix(path, "//")
	if path == "" {
		return "copydesk.db"
	}
	return path
}
