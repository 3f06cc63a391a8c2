// Package backend talks to the locally hosted text-completion service that
// performs question cleanup.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
)

// DefaultTimeout bounds a single completion call.
const DefaultTimeout = 2 * time.Minute

// Config holds client settings.
type Config struct {
	// URL is the full completion endpoint, e.g. http://localhost:11434/api/generate.
	URL string

	// Model is the identifier passed to the backend.
	Model string

	// MaxTokens is the generation budget per request.
	MaxTokens int

	// Timeout bounds each HTTP call. Defaults to DefaultTimeout.
	Timeout time.Duration

	// RetryAttempts is the number of tries for transport-level failures.
	// HTTP responses, whatever their status, are never retried here.
	RetryAttempts uint

	// RetryDelay is the base delay between transport retries.
	RetryDelay time.Duration
}

// Client issues completion requests.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// completionRequest is the wire format the backend accepts.
type completionRequest struct {
	Model     string `json:"model"`
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens"`
}

// New creates a completion client.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RetryAttempts == 0 {
		cfg.RetryAttempts = 1
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Complete sends prompt to the backend and returns the raw response body.
// The body is opaque text; callers scan it for the JSON array themselves.
//
// Transport failures (after bounded retries) come back as *TransportError and
// are fatal to the whole run. Non-2xx statuses come back as *StatusError and
// are page-scoped.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	requestID := uuid.New().String()[:8]

	body, err := json.Marshal(completionRequest{
		Model:     c.cfg.Model,
		Prompt:    prompt,
		MaxTokens: c.cfg.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion request: %w", err)
	}

	c.logger.Debug("sending completion request",
		"request_id", requestID, "model", c.cfg.Model, "prompt_bytes", len(prompt))

	start := time.Now()
	var respText string
	err = retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.URL, bytes.NewReader(body))
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			respBody, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}

			if resp.StatusCode < 200 || resp.StatusCode > 299 {
				return retry.Unrecoverable(&StatusError{
					RequestID:  requestID,
					StatusCode: resp.StatusCode,
					Body:       truncate(string(respBody), 512),
				})
			}

			respText = string(respBody)
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.cfg.RetryAttempts),
		retry.Delay(c.cfg.RetryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			c.logger.Debug("completion request rejected",
				"request_id", requestID, "status", statusErr.StatusCode)
			return "", statusErr
		}
		return "", &TransportError{RequestID: requestID, Err: err}
	}

	c.logger.Debug("completion request done",
		"request_id", requestID,
		"response_bytes", len(respText),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return respText, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...[truncated]"
}
