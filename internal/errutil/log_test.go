package errutil_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copydesk/copydesk/internal/errutil"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLogError_WithOopsError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := oops.Code("COMPLETION_UNAVAILABLE").
		With("status", 503).
		Errorf("upstream failed")

	errutil.LogError(context.Background(), logger, "generation failed", err, "kind", "blog")

	entry := decode(t, &buf)
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "generation failed", entry["msg"])
	assert.Equal(t, "COMPLETION_UNAVAILABLE", entry["code"])
	assert.Equal(t, "blog", entry["kind"])

	ctx, ok := entry["context"].(map[string]any)
	require.True(t, ok, "context should be an object")
	assert.InDelta(t, 503, ctx["status"], 0)
}

func TestLogError_WithStandardError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	errutil.LogError(context.Background(), logger, "operation failed", errors.New("standard error"))

	entry := decode(t, &buf)
	assert.Equal(t, "ERROR", entry["level"])
	assert.Contains(t, entry["error"], "standard error")
	assert.NotContains(t, entry, "code")
}

func TestLog_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	errutil.Log(context.Background(), logger, slog.LevelWarn, "retrying", errors.New("flaky"))

	entry := decode(t, &buf)
	assert.Equal(t, "WARN", entry["level"])
}
