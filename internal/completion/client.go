// Package completion is the client for an OpenAI-compatible text-completion
// API.
//
// Transient failures (network errors, timeouts, 5xx) are retried with
// exponential backoff and jitter; every other failure is returned at once.
// One call to Generate, retries included, is bounded by the configured
// timeout.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/copydesk/copydesk/internal/errutil"
	"github.com/copydesk/copydesk/internal/model"
)

const (
	// DefaultBaseURL is the OpenAI v1 API root.
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultModel is the instruction-tuned completion model.
	DefaultModel = "gpt-3.5-turbo-instruct"
	// DefaultTimeout bounds one Generate call.
	DefaultTimeout = 60 * time.Second
	// DefaultRetryBase is the first retry delay.
	DefaultRetryBase = 500 * time.Millisecond

	maxRetryDelay   = 10 * time.Second
	jitterPercent   = 20
	maxResponseSize = 1 << 20 // 1MB
	userAgent       = "copydesk/1.0"
)

// Config configures a Client.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries uint64
	RetryBase  time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client calls the completions endpoint. It is safe for concurrent use.
type Client struct {
	apiKey     string
	endpoint   string
	model      string
	timeout    time.Duration
	maxRetries uint64
	retryBase  time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Client. A blank API key fails with ErrUnauthenticated.
func New(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, oops.Code(CodeUnauthenticated).
			Wrap(fmt.Errorf("%w: API key is not set", ErrUnauthenticated))
	}

	c := &Client{
		apiKey:     cfg.APIKey,
		endpoint:   strings.TrimRight(orDefault(cfg.BaseURL, DefaultBaseURL), "/") + "/completions",
		model:      orDefault(cfg.Model, DefaultModel),
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		retryBase:  cfg.RetryBase,
		httpClient: NewHTTPClient(),
		logger:     slog.Default(),
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.retryBase <= 0 {
		c.retryBase = DefaultRetryBase
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

type completionRequest struct {
	Model            string  `json:"model"`
	Prompt           string  `json:"prompt"`
	Temperature      float64 `json:"temperature"`
	MaxTokens        int     `json:"max_tokens"`
	TopP             float64 `json:"top_p"`
	FrequencyPenalty float64 `json:"frequency_penalty"`
	PresencePenalty  float64 `json:"presence_penalty"`
}

type completionResponse struct {
	Choices []struct {
		Text         string `json:"text"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Generate sends prompt with opts and returns the first choice's text with
// surrounding whitespace trimmed.
func (c *Client) Generate(ctx context.Context, prompt string, opts model.GenerationOptions) (string, error) {
	body, err := json.Marshal(completionRequest{
		Model:            c.model,
		Prompt:           prompt,
		Temperature:      opts.Temperature,
		MaxTokens:        opts.MaxOutputTokens,
		TopP:             opts.TopP,
		FrequencyPenalty: opts.FrequencyPenalty,
		PresencePenalty:  opts.PresencePenalty,
	})
	if err != nil {
		return "", oops.Code(CodeRejected).Wrap(fmt.Errorf("%w: encode request: %w", ErrRequestRejected, err))
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	backoff := retry.NewExponential(c.retryBase)
	backoff = retry.WithCappedDuration(maxRetryDelay, backoff)
	backoff = retry.WithJitterPercent(jitterPercent, backoff)
	backoff = retry.WithMaxRetries(c.maxRetries, backoff)

	var (
		text    string
		attempt int
	)
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++

		out, err := c.do(ctx, body)
		if err == nil {
			text = out
			return nil
		}

		if errors.Is(err, ErrServiceUnavailable) && ctx.Err() == nil {
			errutil.Log(ctx, c.logger, slog.LevelWarn, "completion attempt failed, retrying", err,
				"attempt", attempt,
				"max_retries", c.maxRetries,
			)
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ErrServiceUnavailable) {
			return "", unavailable("wait for completion", ctxErr)
		}
		return "", err
	}

	return text, nil
}

// do performs one request.
func (c *Client) do(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", oops.Code(CodeRejected).Wrap(fmt.Errorf("%w: build request: %w", ErrRequestRejected, err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", unavailable("send request", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", unavailable("read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp.StatusCode, respBody)
	}

	var parsed completionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", unavailable("decode response", err)
	}

	if len(parsed.Choices) == 0 {
		return "", oops.Code(CodeEmpty).Wrap(ErrEmptyCompletion)
	}

	text := strings.TrimSpace(parsed.Choices[0].Text)
	if text == "" {
		return "", oops.Code(CodeEmpty).
			With("finish_reason", parsed.Choices[0].FinishReason).
			Wrap(ErrEmptyCompletion)
	}

	return text, nil
}
