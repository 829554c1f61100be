// Package session issues and checks the per-client marker that says
// "authenticated as email E".
//
// The cookie carries an HS256-signed token whose jti names a server-side
// session record; logout deletes the record, so a replayed cookie stops
// working even though its signature is still valid.
package session

import (
	"context"
	"errors"

	"github.com/copydesk/copydesk/internal/model"
)

var (
	// ErrSessionNotFound is returned by stores when no live record exists.
	ErrSessionNotFound = errors.New("session not found")
	// ErrNoSession means the request carries no usable session.
	ErrNoSession = errors.New("no valid session")
)

// Store persists session records.
type Store interface {
	Save(ctx context.Context, sess *model.Session) error
	// Load returns ErrSessionNotFound for unknown or expired IDs.
	Load(ctx context.Context, id string) (*model.Session, error)
	// Delete is idempotent.
	Delete(ctx context.Context, id string) error
}
