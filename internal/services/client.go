package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/chainydev/chainyctl/internal/auth"
	"github.com/chainydev/chainyctl/internal/shared"
)

// listRetryAttempts is the total number of tries for a list fetch.
const listRetryAttempts = 3

// retryBackoffUnit is multiplied by the attempt number between tries.
const retryBackoffUnit = 1000 * time.Millisecond

// Client is the HTTP client shared by all Chainy operations.
//
// Authenticated requests fail fast with [shared.ErrNotAuthenticated]
// when no live session exists, and a 401 or 403 from the backend always
// clears the stored session before the error is returned.
type Client struct {
	baseURL     string
	redirectURI string
	locale      string
	httpClient  *http.Client
	sessions    *auth.SessionManager
	limiter     *rate.Limiter
	logger      *log.Logger
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewClient creates a [Client] for the given backend endpoint.
func NewClient(cfg *shared.Config, sessions *auth.SessionManager, httpClient *http.Client, logger *log.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		baseURL:     cfg.API.Endpoint,
		redirectURI: cfg.Google.RedirectURI,
		locale:      cfg.API.Locale,
		httpClient:  httpClient,
		sessions:    sessions,
		limiter:     rate.NewLimiter(rate.Limit(10), 10),
		logger:      logger,
		sleep:       sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// response is a fully read backend reply.
type response struct {
	statusCode int
	body       []byte
}

func (r *response) ok() bool {
	return r.statusCode >= 200 && r.statusCode < 300
}

// newRequest builds an unauthenticated JSON request.
func (c *Client) newRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// newAuthorizedRequest builds a request carrying the stored credential.
//
// No request is built when the client is not authenticated, so callers
// never send doomed traffic to the backend.
func (c *Client) newAuthorizedRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	credential, err := c.sessions.Credential()
	if err != nil {
		return nil, err
	}
	if credential == "" {
		return nil, shared.ErrNotAuthenticated
	}

	req, err := c.newRequest(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+credential)
	return req, nil
}

// do sends the request and maps failures:
//
//   - transport errors become a retryable network [ServiceDownError]
//   - 401 and 403 clear the session and return [shared.ErrAuthInvalidated]
//   - 503 is classified via [ClassifyUnavailable]
//
// Any other status is returned to the caller for interpretation.
func (c *Client) do(req *http.Request) (*response, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request transport failure", "url", req.URL.Path, "error", err)
		return nil, &ServiceDownError{Status: NetworkStatus(c.locale)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		c.logger.Warn("credential rejected, clearing session", "status", resp.StatusCode)
		if err := c.sessions.Clear(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: status %d", shared.ErrAuthInvalidated, resp.StatusCode)
	case http.StatusServiceUnavailable:
		status := ClassifyUnavailable(body, c.locale)
		c.logger.Warn("service unavailable", "kind", status.Kind, "retryable", status.Retryable)
		return nil, &ServiceDownError{Status: status}
	}

	return &response{statusCode: resp.StatusCode, body: body}, nil
}

// doWithRetry runs do up to listRetryAttempts times with a linear
// backoff. Only retryable outages are retried; an emergency stop or any
// other error surfaces immediately.
func (c *Client) doWithRetry(ctx context.Context, build func() (*http.Request, error)) (*response, error) {
	var lastErr error

	for attempt := 1; attempt <= listRetryAttempts; attempt++ {
		req, err := build()
		if err != nil {
			return nil, err
		}

		resp, err := c.do(req)
		if err == nil {
			return resp, nil
		}

		down, ok := err.(*ServiceDownError)
		if !ok || !down.Status.Retryable {
			return nil, err
		}

		lastErr = err
		if attempt == listRetryAttempts {
			break
		}

		backoff := time.Duration(attempt) * retryBackoffUnit
		c.logger.Debug("retrying after outage", "attempt", attempt, "backoff", backoff)
		if err := c.sleep(ctx, backoff); err != nil {
			return nil, err
		}
	}

	return nil, lastErr
}

// errorMessage extracts the backend's error message, falling back to the
// HTTP status.
func errorMessage(resp *response) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(resp.body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return http.StatusText(resp.statusCode)
}
