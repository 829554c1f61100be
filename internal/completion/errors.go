package completion

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/samber/oops"
)

// Errors returned by Generate. Each is wrapped in an oops error carrying a
// code and context; match with errors.Is.
var (
	ErrUnauthenticated    = errors.New("completion service rejected the API key")
	ErrQuotaExceeded      = errors.New("completion quota exceeded")
	ErrServiceUnavailable = errors.New("completion service unavailable")
	ErrRequestRejected    = errors.New("completion request rejected")
	ErrEmptyCompletion    = errors.New("completion contained no text")
)

// Error codes attached to oops errors.
const (
	CodeUnauthenticated = "COMPLETION_UNAUTHENTICATED"
	CodeQuotaExceeded   = "COMPLETION_QUOTA_EXCEEDED"
	CodeUnavailable     = "COMPLETION_UNAVAILABLE"
	CodeRejected        = "COMPLETION_REJECTED"
	CodeEmpty           = "COMPLETION_EMPTY"
)

// maxErrorBody bounds how much of an error response is kept for logging.
const maxErrorBody = 200

// classifyStatus maps a non-200 response to an error.
func classifyStatus(status int, body []byte) error {
	snippet := string(body)
	if len(snippet) > maxErrorBody {
		snippet = snippet[:maxErrorBody] + "..."
	}

	builder := oops.With("status", status).With("body", snippet)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return builder.Code(CodeUnauthenticated).Wrap(ErrUnauthenticated)
	case status == http.StatusTooManyRequests:
		return builder.Code(CodeQuotaExceeded).Wrap(ErrQuotaExceeded)
	case status >= 500:
		return builder.Code(CodeUnavailable).Wrap(ErrServiceUnavailable)
	case status >= 400:
		return builder.Code(CodeRejected).Wrap(ErrRequestRejected)
	default:
		return builder.Code(CodeUnavailable).
			Wrap(fmt.Errorf("%w: unexpected status %d", ErrServiceUnavailable, status))
	}
}

// unavailable wraps a transport-level failure.
func unavailable(op string, err error) error {
	return oops.Code(CodeUnavailable).
		With("operation", op).
		Wrap(fmt.Errorf("%w: %w", ErrServiceUnavailable, err))
}
