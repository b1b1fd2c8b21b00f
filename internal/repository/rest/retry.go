package rest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PizzaHomicide/shuchu/internal/log"
)

// HTTPError carries the status and body of a non-2xx response
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http error: %s %s status=%d body=%s", e.Method, e.URL, e.StatusCode, snippet(e.Body, 300))
}

func snippet(b []byte, max int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// RetryConfig controls retry behaviour of the REST client
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    5 * time.Second,
	}
}

func (c RetryConfig) withDefaults() RetryConfig {
	def := DefaultRetryConfig()
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = def.MaxAttempts
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = def.BaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = def.MaxDelay
	}
	return c
}

var retryStatuses = map[int]bool{
	http.StatusRequestTimeout:     true,
	http.StatusTooEarly:           true,
	http.StatusTooManyRequests:    true,
	http.StatusBadGateway:         true,
	http.StatusServiceUnavailable: true,
	http.StatusGatewayTimeout:     true,
}

func isRetryableStatus(code int) bool {
	return retryStatuses[code] || (code >= 500 && code <= 599)
}

// isIdempotent reports whether repeating a request with this method leaves the server in the same state.
// POST and PATCH are sent exactly once.
func isIdempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// doWithRetry executes the request built by buildReq, retrying transient failures of idempotent requests.
// The body is always read fully so the connection can be reused.
func doWithRetry(
	ctx context.Context,
	client *http.Client,
	buildReq func(context.Context) (*http.Request, error),
	cfg RetryConfig,
) (*http.Response, []byte, error) {
	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		req, err := buildReq(ctx)
		if err != nil {
			return nil, nil, err
		}

		canRetry := isIdempotent(req.Method) && attempt < cfg.MaxAttempts

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			if canRetry && isRetryableNetErr(err) {
				log.Debug("Retrying request after network error", "url", req.URL.String(), "attempt", attempt, "error", err)
				if err := sleepBackoff(ctx, attempt, cfg, 0); err != nil {
					return nil, nil, err
				}
				continue
			}
			return nil, nil, err
		}

		body, err := readAndClose(resp.Body)
		if err != nil {
			lastErr = err
			if canRetry && isRetryableNetErr(err) {
				if err := sleepBackoff(ctx, attempt, cfg, 0); err != nil {
					return nil, nil, err
				}
				continue
			}
			return resp, body, err
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, body, nil
		}

		herr := &HTTPError{
			Method:     req.Method,
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			Header:     resp.Header.Clone(),
			Body:       body,
		}
		lastErr = herr

		if canRetry && isRetryableStatus(resp.StatusCode) {
			log.Debug("Retrying request after error status", "url", herr.URL, "status", herr.StatusCode, "attempt", attempt)
			if err := sleepBackoff(ctx, attempt, cfg, parseRetryAfter(resp)); err != nil {
				return nil, nil, err
			}
			continue
		}

		return resp, body, herr
	}

	if lastErr != nil {
		return nil, nil, lastErr
	}
	return nil, nil, errors.New("request failed")
}

func readAndClose(rc io.ReadCloser) ([]byte, error) {
	defer rc.Close()
	return io.ReadAll(rc)
}

// backoffDelay is base*2^(attempt-1) capped at MaxDelay, plus up to 20% jitter.  A Retry-After value replaces it, still capped.
func backoffDelay(attempt int, cfg RetryConfig, retryAfter time.Duration) time.Duration {
	if retryAfter > 0 {
		return min(retryAfter, cfg.MaxDelay)
	}
	delay := cfg.BaseDelay << (attempt - 1)
	if delay <= 0 || delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	return delay + time.Duration(rand.Int64N(int64(delay)/5+1))
}

func sleepBackoff(ctx context.Context, attempt int, cfg RetryConfig, retryAfter time.Duration) error {
	t := time.NewTimer(backoffDelay(attempt, cfg, retryAfter))
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func isRetryableNetErr(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "eof")
}

// parseRetryAfter reads Retry-After as seconds or an HTTP date.  Missing or invalid values are 0.
func parseRetryAfter(resp *http.Response) time.Duration {
	v := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
