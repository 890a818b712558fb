package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"

	"github.com/Conte777/operator-service/config"
	"github.com/Conte777/operator-service/internal/infrastructure/metrics"
	pkgerrors "github.com/Conte777/operator-service/pkg/errors"
)

// ErrUnavailableMessage is returned to callers once every attempt has failed transiently
const ErrUnavailableMessage = "session service temporarily unavailable"

// Client calls the session service over HTTP with bounded retries
type Client struct {
	http        *fasthttp.Client
	baseURL     string
	timeout     time.Duration
	maxAttempts int
	retryDelay  time.Duration
	limiter     *rate.Limiter
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewClient creates a session service client
func NewClient(cfg *config.UpstreamConfig, m *metrics.Metrics, logger zerolog.Logger) *Client {
	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}
	burst := cfg.RateBurst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		http:        &fasthttp.Client{Name: "operator-service"},
		baseURL:     cfg.BaseURL,
		timeout:     cfg.Timeout,
		maxAttempts: cfg.MaxAttempts,
		retryDelay:  cfg.RetryDelay,
		limiter:     rate.NewLimiter(limit, burst),
		metrics:     m,
		logger:      logger.With().Str("component", "upstream_client").Logger(),
	}
}

// MaxAttempts returns the configured attempt budget per logical call
func (c *Client) MaxAttempts() int {
	return c.maxAttempts
}

// Call posts payload to endpoint and returns the raw JSON body of the first
// successful response. maxAttempts < 1 falls back to the configured budget.
func (c *Client) Call(ctx context.Context, endpoint string, payload interface{}, maxAttempts int) (json.RawMessage, error) {
	if maxAttempts < 1 {
		maxAttempts = c.maxAttempts
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s request: %w", endpoint, err)
	}

	start := time.Now()
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait: %w", err)
		}

		c.metrics.RecordUpstreamAttempt(endpoint, attempt > 1)

		result, err := c.attempt(endpoint, body)
		if err == nil {
			c.metrics.RecordUpstreamCall(endpoint, "success", time.Since(start).Seconds())
			return result, nil
		}

		if !isRetryable(err) {
			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("attempt", attempt).
				Err(err).
				Msg("Session service rejected request")
			c.metrics.RecordUpstreamCall(endpoint, "rejected", time.Since(start).Seconds())
			return nil, err
		}

		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("attempt", attempt).
			Int("max_attempts", maxAttempts).
			Err(err).
			Msg("Transient session service failure")

		if attempt < maxAttempts {
			if err := sleep(ctx, c.retryDelay); err != nil {
				c.metrics.RecordUpstreamCall(endpoint, "cancelled", time.Since(start).Seconds())
				return nil, err
			}
		}
	}

	c.logger.Error().
		Str("endpoint", endpoint).
		Int("attempts", maxAttempts).
		Msg("Session service attempts exhausted")
	c.metrics.RecordUpstreamCall(endpoint, "exhausted", time.Since(start).Seconds())

	return nil, pkgerrors.NewServiceUnavailableError(ErrUnavailableMessage)
}

// transientError marks an attempt failure that may succeed on retry
type transientError struct {
	err error
}

func (e *transientError) Error() string {
	return e.err.Error()
}

func (e *transientError) Unwrap() error {
	return e.err
}

func isRetryable(err error) bool {
	_, ok := err.(*transientError)
	return ok
}

func (c *Client) attempt(endpoint string, body []byte) (json.RawMessage, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBodyRaw(body)

	if err := c.http.DoTimeout(req, resp, c.timeout); err != nil {
		return nil, &transientError{err: fmt.Errorf("%s: %w", endpoint, err)}
	}

	status := resp.StatusCode()
	respBody := append([]byte(nil), resp.Body()...)

	return classifyResponse(status, respBody)
}

// classifyResponse turns a completed HTTP exchange into a body or an attempt error
func classifyResponse(status int, body []byte) (json.RawMessage, error) {
	ok := status >= 200 && status < 300

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		if ok {
			return nil, pkgerrors.NewUpstreamError(status, fmt.Sprintf("invalid response: %s", truncate(body)))
		}
		return nil, upstreamFailure(status, fmt.Sprintf("HTTP %d: %s", status, truncate(body)))
	}

	failed := !ok || env.Error != "" || (env.Success != nil && !*env.Success)
	if !failed {
		return body, nil
	}

	message := env.Error
	if message == "" {
		message = env.Message
	}
	if message == "" {
		message = fmt.Sprintf("HTTP %d: %s", status, truncate(body))
	}

	return nil, upstreamFailure(status, message)
}

func upstreamFailure(status int, message string) error {
	err := pkgerrors.NewUpstreamError(status, message)
	if IsTransient(message) {
		return &transientError{err: err}
	}
	return err
}

func truncate(body []byte) string {
	const limit = 512
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
