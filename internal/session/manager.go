package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"

	"github.com/copydesk/copydesk/internal/model"
)

const issuer = "copydesk"

// Options configures a Manager.
type Options struct {
	// Secret signs session tokens (HS256).
	Secret []byte
	// TTL bounds session lifetime. Zero means sessions last until logout.
	TTL time.Duration
	// CookieName names the session cookie.
	CookieName string
	// SecureCookie sets the Secure attribute (HTTPS only).
	SecureCookie bool
}

// Manager issues, resolves and ends sessions.
type Manager struct {
	store Store
	opts  Options
	now   func() time.Time
}

// NewManager creates a Manager backed by store.
func NewManager(store Store, opts Options) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = "copydesk_session"
	}
	return &Manager{
		store: store,
		opts:  opts,
		now:   time.Now,
	}
}

// Start creates and persists a new session for email.
func (m *Manager) Start(ctx context.Context, email string) (*model.Session, error) {
	now := m.now().UTC()

	sess := &model.Session{
		ID:        ulid.Make().String(),
		Email:     email,
		CreatedAt: now,
	}
	if m.opts.TTL > 0 {
		sess.ExpiresAt = now.Add(m.opts.TTL)
	}

	if err := m.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return sess, nil
}

// End deletes the session record. A nil session is a no-op.
func (m *Manager) End(ctx context.Context, sess *model.Session) error {
	if sess == nil || sess.ID == "" {
		return nil
	}
	if err := m.store.Delete(ctx, sess.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Encode signs a token naming sess.
func (m *Manager) Encode(sess *model.Session) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:       sess.ID,
		Subject:  sess.Email,
		Issuer:   issuer,
		IssuedAt: jwt.NewNumericDate(sess.CreatedAt),
	}
	if !sess.ExpiresAt.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(sess.ExpiresAt)
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.opts.Secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// Resolve verifies token and returns the live session it names.
// Every failure is reported as ErrNoSession.
func (m *Manager) Resolve(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return m.opts.Secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSession, err)
	}

	sess, err := m.store.Load(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	if sess.Email != claims.Subject || !sess.Authenticated(m.now()) {
		return nil, ErrNoSession
	}

	return sess, nil
}

// Load resolves the session carried by the request's cookie.
func (m *Manager) Load(r *http.Request) (*model.Session, error) {
	cookie, err := r.Cookie(m.opts.CookieName)
	if err != nil {
		return nil, ErrNoSession
	}
	return m.Resolve(r.Context(), cookie.Value)
}

// WriteCookie sets the session cookie for sess.
func (m *Manager) WriteCookie(w http.ResponseWriter, sess *model.Session) error {
	token, err := m.Encode(sess)
	if err != nil {
		return err
	}

	cookie := &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	if !sess.ExpiresAt.IsZero() {
		cookie.Expires = sess.ExpiresAt
		cookie.MaxAge = int(sess.ExpiresAt.Sub(m.now()).Seconds())
	}

	http.SetCookie(w, cookie)
	return nil
}

// ClearCookie expires the session cookie on the client.
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// CookieName returns the configured cookie name.
func (m *Manager) CookieName() string {
	return m.opts.CookieName
}
