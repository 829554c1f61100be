package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/copydesk/copydesk/internal/auth"
	"github.com/copydesk/copydesk/internal/model"
	"github.com/copydesk/copydesk/internal/repository"
)

// SessionIssuer starts and ends sessions.
type SessionIssuer interface {
	Start(ctx context.Context, email string) (*model.Session, error)
	End(ctx context.Context, sess *model.Session) error
}

// AuthService handles signup, login and logout.
type AuthService struct {
	users    repository.UserStore
	hasher   auth.PasswordHasher
	sessions SessionIssuer
	logger   *slog.Logger
	now      func() time.Time

	// decoyHash is verified against when the email is unknown, so both
	// login failure paths cost one hash verification.
	decoyHash string
}

// NewAuthService creates a new AuthService.
func NewAuthService(users repository.UserStore, hasher auth.PasswordHasher, sessions SessionIssuer, logger *slog.Logger) (*AuthService, error) {
	if logger == nil {
		logger = slog.Default()
	}

	secret, err := auth.GenerateSecret(auth.MinSecretLen)
	if err != nil {
		return nil, fmt.Errorf("generate decoy password: %w", err)
	}
	decoy, err := hasher.Hash(secret)
	if err != nil {
		return nil, fmt.Errorf("hash decoy password: %w", err)
	}

	return &AuthService{
		users:     users,
		hasher:    hasher,
		sessions:  sessions,
		logger:    logger,
		now:       time.Now,
		decoyHash: decoy,
	}, nil
}

// SignupInput defines input for creating an account.
type SignupInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	TermsAccepted   bool
}

// Signup creates an account and starts a session for it.
//
// Checks run in order: duplicate email, missing fields, password mismatch,
// terms. No record is written unless every check passes. The storage
// unique constraint is the authoritative duplicate check.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*model.Session, error) {
	if !blank(input.Email) {
		_, err := s.users.GetUserByEmail(ctx, input.Email)
		switch {
		case err == nil:
			return nil, ErrDuplicateEmail
		case !errors.Is(err, repository.ErrUserNotFound):
			return nil, fmt.Errorf("check existing user: %w", err)
		}
	}

	if blank(input.Email) || blank(input.Password) || blank(input.ConfirmPassword) {
		return nil, ErrMissingField
	}
	if input.Password != input.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	if !input.TermsAccepted {
		return nil, ErrTermsNotAccepted
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        input.Email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user signed up", "user_id", user.ID)

	sess, err := s.sessions.Start(ctx, user.Email)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	return sess, nil
}

// Login verifies credentials and starts a session.
// Unknown email and wrong password both return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.Session, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("find user: %w", err)
		}
		_, _ = s.hasher.Verify(password, s.decoyHash)
		return nil, ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		s.logger.Error("stored password hash is unreadable",
			"user_id", user.ID,
			"error", err,
		)
		return nil, ErrInvalidCredentials
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	sess, err := s.sessions.Start(ctx, user.Email)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	return sess, nil
}

// Logout ends sess and clears it in place, so later checks against the same
// value fail. It is idempotent and accepts a nil session.
func (s *AuthService) Logout(ctx context.Context, sess *model.Session) error {
	if sess == nil {
		return nil
	}

	ended := *sess
	*sess = model.Session{}

	if err := s.sessions.End(ctx, &ended); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

// RequireAuthenticated returns the session's email or ErrNotAuthenticated.
func (s *AuthService) RequireAuthenticated(sess *model.Session) (string, error) {
	return requireAuthenticated(sess, s.now())
}

func requireAuthenticated(sess *model.Session, now time.Time) (string, error) {
	if !sess.Authenticated(now) {
		return "", ErrNotAuthenticated
	}
	return sess.Email, nil
}

// blank reports whether a form value is empty or only whitespace.
func blank(v string) bool {
	return strings.TrimSpace(v) == ""
}
