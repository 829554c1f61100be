package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/copydesk/copydesk/internal/auth"
	"github.com/copydesk/copydesk/internal/model"
	"github.com/copydesk/copydesk/internal/service"
	"github.com/copydesk/copydesk/internal/view"
)

// User-visible messages.
const (
	msgLoginRequired      = "Please login to continue."
	msgAlreadyLoggedIn    = "You are already logged in"
	msgInvalidCredentials = "Invalid Email/Password."
	msgEmailExists        = "Email address already exists."
	msgFillAllFields      = "Please fill out all fields."
	msgPasswordMismatch   = "Passwords do not match."
	msgAcceptTerms        = "Please accept the terms and conditions."
	msgInvalidForm        = "The form could not be read. Please try again."
	msgSomethingWrong     = "Something went wrong. Please try again."
)

// Authenticator is the auth workflow used by AuthHandler.
type Authenticator interface {
	Signup(ctx context.Context, input service.SignupInput) (*model.Session, error)
	Login(ctx context.Context, email, password string) (*model.Session, error)
	Logout(ctx context.Context, sess *model.Session) error
}

// SessionWriter sets and clears the session cookie.
type SessionWriter interface {
	WriteCookie(w http.ResponseWriter, sess *model.Session) error
	ClearCookie(w http.ResponseWriter)
}

// AuthHandler handles signup, login and logout.
type AuthHandler struct {
	pages    *Handler
	auth     Authenticator
	sessions SessionWriter
	logger   *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(pages *Handler, authenticator Authenticator, sessions SessionWriter, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		pages:    pages,
		auth:     authenticator,
		sessions: sessions,
		logger:   logger,
	}
}

// LoginForm renders the login page.
// GET /login
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.pages.views.Render(w, http.StatusOK, view.PageLogin, h.pages.page(r, "Log in"))
}

// LoginRequired renders the login page with a prompt. Gated routes serve it
// to anonymous visitors.
func (h *AuthHandler) LoginRequired(w http.ResponseWriter, r *http.Request) {
	data := h.pages.page(r, "Log in")
	data.Error = msgLoginRequired
	h.pages.views.Render(w, http.StatusOK, view.PageLogin, data)
}

// Login verifies credentials and starts a session.
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	data := h.pages.page(r, "Log in")

	if err := r.ParseForm(); err != nil {
		data.Error = msgInvalidForm
		h.pages.views.Render(w, formErrorStatus(err), view.PageLogin, data)
		return
	}

	email := r.PostForm.Get("email")
	data.Form = map[string]string{"email": email}

	sess, err := h.auth.Login(r.Context(), email, r.PostForm.Get("password"))
	if err != nil {
		status := http.StatusUnauthorized
		data.Error = msgInvalidCredentials
		if !errors.Is(err, service.ErrInvalidCredentials) {
			h.logError(r, "login failed", err)
			status = http.StatusInternalServerError
			data.Error = msgSomethingWrong
		}
		h.pages.views.Render(w, status, view.PageLogin, data)
		return
	}

	// A browser holds one session; the one it carried in is ended.
	if prev := auth.SessionFromContext(r.Context()); prev != nil {
		if err := h.auth.Logout(r.Context(), prev); err != nil {
			h.logError(r, "failed to end previous session", err)
		}
	}

	h.startSession(w, r, sess)
}

// SignupForm renders the signup page, or the home page when the visitor is
// already signed in.
// GET /signup
func (h *AuthHandler) SignupForm(w http.ResponseWriter, r *http.Request) {
	if h.alreadyLoggedIn(w, r) {
		return
	}
	h.pages.views.Render(w, http.StatusOK, view.PageSignup, h.pages.page(r, "Sign up"))
}

// Signup creates an account and signs the visitor in.
// POST /signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if h.alreadyLoggedIn(w, r) {
		return
	}

	data := h.pages.page(r, "Sign up")

	if err := r.ParseForm(); err != nil {
		data.Error = msgInvalidForm
		h.pages.views.Render(w, formErrorStatus(err), view.PageSignup, data)
		return
	}

	input := service.SignupInput{
		Email:           r.PostForm.Get("email"),
		Password:        r.PostForm.Get("password"),
		ConfirmPassword: r.PostForm.Get("confirm-password"),
		TermsAccepted:   r.PostForm.Get("terms") != "",
	}
	data.Form = map[string]string{"email": input.Email}
	if input.TermsAccepted {
		data.Form["terms"] = "on"
	}

	sess, err := h.auth.Signup(r.Context(), input)
	if err != nil {
		status, msg := signupError(err)
		if status == http.StatusInternalServerError {
			h.logError(r, "signup failed", err)
		}
		data.Error = msg
		h.pages.views.Render(w, status, view.PageSignup, data)
		return
	}

	h.startSession(w, r, sess)
}

// Logout ends the session and returns to the login page.
// GET /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), auth.SessionFromContext(r.Context())); err != nil {
		h.logError(r, "logout failed", err)
	}
	h.sessions.ClearCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, sess *model.Session) {
	if err := h.sessions.WriteCookie(w, sess); err != nil {
		h.logError(r, "failed to write session cookie", err)
		h.pages.InternalError(w, r)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) alreadyLoggedIn(w http.ResponseWriter, r *http.Request) bool {
	if auth.EmailFromContext(r.Context()) == "" {
		return false
	}
	data := h.pages.page(r, "")
	data.Error = msgAlreadyLoggedIn
	h.pages.views.Render(w, http.StatusOK, view.PageHome, data)
	return true
}

func (h *AuthHandler) logError(r *http.Request, msg string, err error) {
	h.logger.Error(msg,
		slog.String("request_id", requestID(r)),
		slog.String("error", err.Error()),
	)
}

// signupError maps a signup failure to a status and message.
func signupError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrDuplicateEmail):
		return http.StatusConflict, msgEmailExists
	case errors.Is(err, service.ErrMissingField):
		return http.StatusBadRequest, msgFillAllFields
	case errors.Is(err, service.ErrPasswordMismatch):
		return http.StatusBadRequest, msgPasswordMismatch
	case errors.Is(err, service.ErrTermsNotAccepted):
		return http.StatusBadRequest, msgAcceptTerms
	default:
		return http.StatusInternalServerError, msgSomethingWrong
	}
}

// formErrorStatus distinguishes oversized bodies from malformed ones.
func formErrorStatus(err error) int {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}
