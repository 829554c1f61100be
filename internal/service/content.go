package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/copydesk/copydesk/internal/errutil"
	"github.com/copydesk/copydesk/internal/model"
)

// PromptBuilder renders a prompt request into prompt text and options.
type PromptBuilder interface {
	Build(req model.PromptRequest) (string, model.GenerationOptions, error)
}

// Generator produces text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts model.GenerationOptions) (string, error)
}

// ContentService runs session-gated content generation.
type ContentService struct {
	prompts   PromptBuilder
	generator Generator
	logger    *slog.Logger
	now       func() time.Time
}

// NewContentService creates a new ContentService.
func NewContentService(prompts PromptBuilder, generator Generator, logger *slog.Logger) *ContentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentService{
		prompts:   prompts,
		generator: generator,
		logger:    logger,
		now:       time.Now,
	}
}

// Generate builds the prompt for req and returns the generated text.
// The session is checked before anything else: an unauthenticated caller
// gets ErrNotAuthenticated and the generator is never called.
func (s *ContentService) Generate(ctx context.Context, sess *model.Session, req model.PromptRequest) (string, error) {
	if _, err := requireAuthenticated(sess, s.now()); err != nil {
		return "", err
	}

	prompt, opts, err := s.prompts.Build(req)
	if err != nil {
		return "", err
	}

	start := time.Now()
	text, err := s.generator.Generate(ctx, prompt, opts)
	if err != nil {
		errutil.LogError(ctx, s.logger, "content generation failed", err,
			"kind", req.Kind,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("generate %s: %w", req.Kind, err)
	}

	s.logger.Info("content generated",
		"kind", req.Kind,
		"duration_ms", time.Since(start).Milliseconds(),
		"chars", len(text),
	)
	return text, nil
}
