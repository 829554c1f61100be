package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/copydesk/copydesk/internal/auth"
	"github.com/copydesk/copydesk/internal/model"
	"github.com/copydesk/copydesk/internal/session"
)

// SessionLoader resolves the session carried by a request.
type SessionLoader interface {
	Load(r *http.Request) (*model.Session, error)
	CookieName() string
	ClearCookie(w http.ResponseWriter)
}

// Session resolves the request's session cookie and stores the session in
// the request context. Requests without a usable session continue
// anonymously; a stale cookie is cleared.
func Session(loader SessionLoader, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := loader.Load(r)
			if err != nil {
				if errors.Is(err, session.ErrNoSession) {
					if _, cerr := r.Cookie(loader.CookieName()); cerr == nil {
						loader.ClearCookie(w)
					}
				} else {
					logger.Warn("session lookup failed",
						slog.String("request_id", GetRequestID(r.Context())),
						slog.String("error", err.Error()),
					)
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := auth.ContextWithSession(r.Context(), sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession serves deny instead of next when the request carries no
// live session.
func RequireSession(deny http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !auth.SessionFromContext(r.Context()).Authenticated(time.Now()) {
				deny(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
