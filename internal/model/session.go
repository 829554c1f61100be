package model

import "time"

// Session asserts that a client is authenticated as Email.
// A zero ExpiresAt means the session lives until it is ended explicitly.
type Session struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// IsExpiredAt reports whether the session has expired at t.
func (s *Session) IsExpiredAt(t time.Time) bool {
	return !s.ExpiresAt.IsZero() && !t.Before(s.ExpiresAt)
}

// Authenticated reports whether the session carries an email and is still live at t.
func (s *Session) Authenticated(t time.Time) bool {
	return s != nil && s.Email != "" && !s.IsExpiredAt(t)
}
