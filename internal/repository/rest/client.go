package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PizzaHomicide/shuchu/internal/log"
	"github.com/google/uuid"
)

// Client is the generic client for the protocols REST API
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	authToken  string
	retry      RetryConfig
}

// ClientConfig holds what is needed to reach the backend.  An empty AuthToken sends unauthenticated requests.
type ClientConfig struct {
	BaseURL   string
	AuthToken string
	Timeout   time.Duration
	Retry     RetryConfig
}

func NewClient(cfg ClientConfig) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("REST client base URL is empty")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	if cfg.AuthToken == "" {
		log.Warn("REST client has no auth token, requests will be unauthenticated")
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    base,
		authToken:  cfg.AuthToken,
		retry:      cfg.Retry.withDefaults(),
	}, nil
}

// NetworkError wraps failures to reach the backend at all, as opposed to error responses from it
type NetworkError struct {
	Err error
}

func (e NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e NetworkError) Unwrap() error {
	return e.Err
}

// Do sends a JSON request to path (relative to the base URL) and decodes a JSON response into out when out is non-nil
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	endpoint := c.baseURL.JoinPath(path).String()
	requestID := uuid.NewString()

	buildReq := func(ctx context.Context) (*http.Request, error) {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-ID", requestID)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.authToken != "" {
			req.Header.Set("Authorization", "Bearer "+c.authToken)
		}
		return req, nil
	}

	start := time.Now()
	resp, respBody, err := doWithRetry(ctx, c.httpClient, buildReq, c.retry)
	if err != nil {
		var herr *HTTPError
		if !errors.As(err, &herr) && !errors.Is(err, context.Canceled) {
			err = NetworkError{Err: err}
		}
		log.Warn("REST request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return err
	}

	log.Debug("REST request complete", "method", method, "path", path, "status", resp.StatusCode,
		"request_id", requestID, "duration_ms", time.Since(start).Milliseconds())

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w body=%s", err, snippet(respBody, 300))
	}
	return nil
}
