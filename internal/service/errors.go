// Package service implements the authentication and content-generation
// workflows.
package service

import "errors"

// Auth workflow errors. Each maps to a user-visible message on the
// originating form.
var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrMissingField       = errors.New("missing required field")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrTermsNotAccepted   = errors.New("terms and conditions not accepted")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotAuthenticated   = errors.New("not authenticated")
)
