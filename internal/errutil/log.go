// Package errutil logs errors with their structured context.
package errutil

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
)

// LogError logs err at error level. For oops errors the code and context are
// emitted as separate attributes; other errors are logged as a string.
func LogError(ctx context.Context, logger *slog.Logger, msg string, err error, attrs ...any) {
	Log(ctx, logger, slog.LevelError, msg, err, attrs...)
}

// Log is LogError at an arbitrary level.
func Log(ctx context.Context, logger *slog.Logger, level slog.Level, msg string, err error, attrs ...any) {
	if logger == nil {
		logger = slog.Default()
	}

	if oopsErr, ok := oops.AsOops(err); ok {
		attrs = append(attrs, "error", oopsErr.Error())
		if code := oopsErr.Code(); code != nil && code != "" {
			attrs = append(attrs, "code", code)
		}
		if errCtx := oopsErr.Context(); len(errCtx) > 0 {
			attrs = append(attrs, "context", errCtx)
		}
	} else {
		attrs = append(attrs, "error", err)
	}

	logger.Log(ctx, level, msg, attrs...)
}
