// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

// Package restclient is the authenticated JSON client shared by the CRM and
// list platform integrations.
//
// One logical call (Do) may take up to MaxAttempts HTTP attempts. 429, 5xx
// and transport failures are retried with capped exponential backoff plus
// jitter; every other 4xx is returned at once as an *APIError whose body has
// been PII-redacted. The whole call counts as one request against the
// platform's circuit breaker and is paced by a token bucket.
package restclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/awardsync/internal/logging"
	"github.com/tomtom215/awardsync/internal/metrics"
)

const (
	// IdempotencyHeader carries the per-operation key on mutating requests.
	IdempotencyHeader = "Idempotency-Key"
	// CorrelationHeader echoes the caller's correlation id.
	CorrelationHeader = "X-Correlation-ID"

	maxErrorBody     = 64 * 1024
	defaultUserAgent = "awardsync/1.0"
)

// Doer is what the platform integrations depend on. *Client implements it;
// tests substitute fakes.
type Doer interface {
	Do(ctx context.Context, req Request, out any) error
}

// Request describes one logical API call.
type Request struct {
	Method         string
	Path           string
	Query          url.Values
	Body           any
	IdempotencyKey string
}

// Options configures a Client. Zero values fall back to the defaults noted.
type Options struct {
	Platform          string
	BaseURL           string
	Token             string
	MaxAttempts       int           // default 3
	BaseDelay         time.Duration // default 1s
	MaxDelay          time.Duration // default 30s
	Timeout           time.Duration // per attempt, default 30s
	RequestsPerSecond float64       // 0 disables pacing
	Burst             int
	UserAgent         string
	HTTPClient        *http.Client
	Breaker           *BreakerSettings // nil uses DefaultBreakerSettings
}

// Client talks to one remote platform.
type Client struct {
	platform    string
	baseURL     string
	token       string
	userAgent   string
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	httpClient  *http.Client
	limiter     *rate.Limiter
	breaker     *gobreaker.CircuitBreaker[struct{}]

	random func() float64
	now    func() time.Time
}

// New builds a Client from opts.
func New(opts Options) *Client {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 3
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = time.Second
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 30 * time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	breaker := DefaultBreakerSettings()
	if opts.Breaker != nil {
		breaker = *opts.Breaker
	}

	c := &Client{
		platform:    opts.Platform,
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		token:       opts.Token,
		userAgent:   opts.UserAgent,
		maxAttempts: opts.MaxAttempts,
		baseDelay:   opts.BaseDelay,
		maxDelay:    opts.MaxDelay,
		httpClient:  httpClient,
		breaker:     newBreaker(opts.Platform+"-api", breaker),
		now:         time.Now,
	}
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return c
}

// Platform returns the platform label used in logs and metrics.
func (c *Client) Platform() string {
	return c.platform
}

// Do executes req and decodes a JSON response into out (when non-nil and the
// response has a body).
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	ctx = logging.EnsureCorrelationID(ctx)

	var payload []byte
	if req.Body != nil {
		var err error
		payload, err = json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("%s %s %s: encode body: %w", c.platform, req.Method, req.Path, err)
		}
	}

	_, err := c.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, c.doWithRetry(ctx, req, payload, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%s %s %s: %w", c.platform, req.Method, req.Path, ErrCircuitOpen)
	}
	return err
}

func (c *Client) doWithRetry(ctx context.Context, req Request, payload []byte, out any) error {
	log := logging.Ctx(ctx).With().Str("platform", c.platform).
		Str("method", req.Method).Str("path", req.Path).Logger()

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		start := c.now()
		resp, err := c.send(ctx, req, payload)
		elapsed := time.Since(start)

		if err != nil {
			metrics.RecordRemoteAttempt(c.platform, req.Method, 0, elapsed)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn().Err(err).Int("attempt", attempt).Dur("duration", elapsed).Msg("Remote request failed")
			lastErr = err
			if attempt == c.maxAttempts {
				break
			}
			metrics.RecordRemoteRetry(c.platform, "network_error")
			if err := c.wait(ctx, Backoff(attempt, c.baseDelay, c.maxDelay, c.random)); err != nil {
				return err
			}
			continue
		}

		metrics.RecordRemoteAttempt(c.platform, req.Method, resp.StatusCode, elapsed)
		log.Debug().Int("status", resp.StatusCode).Int("attempt", attempt).Dur("duration", elapsed).Msg("Remote request")

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return decodeBody(resp, out)
		}

		body := readBodyForError(resp.Body)
		resp.Body.Close()
		apiErr := &APIError{
			Platform: c.platform,
			Method:   req.Method,
			Path:     req.Path,
			Status:   resp.StatusCode,
			Body:     logging.RedactJSON(body),
			Attempts: attempt,
		}

		if !retryableStatus(resp.StatusCode) {
			log.Warn().Int("status", resp.StatusCode).Str("body", apiErr.Body).Msg("Remote request rejected")
			return apiErr
		}

		if attempt == c.maxAttempts {
			apiErr.Exhausted = true
			log.Error().Int("status", resp.StatusCode).Int("attempts", attempt).Msg("Remote request retries exhausted")
			return apiErr
		}

		delay := Backoff(attempt, c.baseDelay, c.maxDelay, c.random)
		reason := "server_error"
		if resp.StatusCode == http.StatusTooManyRequests {
			reason = "rate_limited"
			if ra, ok := parseRetryAfter(resp.Header.Get("Retry-After"), c.now()); ok && ra > delay {
				delay = min(ra, c.maxDelay)
			}
		}
		metrics.RecordRemoteRetry(c.platform, reason)
		log.Warn().Int("status", resp.StatusCode).Int("attempt", attempt).
			Int("max_attempts", c.maxAttempts).Dur("retry_delay", delay).Msg("Remote request retrying")

		if err := c.wait(ctx, delay); err != nil {
			return err
		}
	}

	return fmt.Errorf("%s %s %s: %w after %d attempts: %w",
		c.platform, req.Method, req.Path, ErrRetriesExhausted, c.maxAttempts, lastErr)
}

func (c *Client) send(ctx context.Context, req Request, payload []byte) (*http.Response, error) {
	reqURL := c.baseURL + req.Path
	if len(req.Query) > 0 {
		reqURL += "?" + req.Query.Encode()
	}

	var body io.Reader = http.NoBody
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		httpReq.Header.Set(CorrelationHeader, id)
	}
	if req.IdempotencyKey != "" && isMutating(req.Method) {
		httpReq.Header.Set(IdempotencyHeader, req.IdempotencyKey)
	}

	return c.httpClient.Do(httpReq)
}

func (c *Client) wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPatch, http.MethodPut:
		return true
	}
	return false
}

func decodeBody(resp *http.Response, out any) error {
	defer resp.Body.Close()
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// readBodyForError reads at most 64KB of an error response body.
func readBodyForError(r io.Reader) []byte {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return nil
	}
	return data
}
