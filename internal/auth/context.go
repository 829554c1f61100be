package auth

import (
	"context"

	"github.com/copydesk/copydesk/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// sessionContextKey is the context key for storing the resolved session.
	sessionContextKey contextKey = "session"
)

// ContextWithSession adds the resolved session to the context.
func ContextWithSession(ctx context.Context, sess *model.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

// SessionFromContext retrieves the session from the context.
// Returns nil if the request carries no session.
func SessionFromContext(ctx context.Context) *model.Session {
	sess, ok := ctx.Value(sessionContextKey).(*model.Session)
	if !ok {
		return nil
	}
	return sess
}

// EmailFromContext is a convenience function to get the authenticated email.
// Returns empty string if not authenticated.
func EmailFromContext(ctx context.Context) string {
	sess := SessionFromContext(ctx)
	if sess == nil {
		return ""
	}
	return sess.Email
}
