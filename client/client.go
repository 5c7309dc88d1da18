// Package client provides the HTTP client for the recap analysis backend.
// It handles request construction, auth headers, retry logic, and maps
// non-success responses to transport errors.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	rerrors "github.com/recaplabs/recap-cli/pkg/errors"
	"github.com/recaplabs/recap-cli/pkg/logging"
	"github.com/recaplabs/recap-cli/pkg/metrics"
)

// Default client settings.
const (
	DefaultRequestTimeout = 2 * time.Minute
	DefaultMaxRetries     = 2
	DefaultInitialBackoff = 200 * time.Millisecond
	DefaultMaxBackoff     = 3 * time.Second
)

// Options configures the APIClient behavior.
type Options struct {
	// RequestTimeout bounds each attempt, including retries overall via the
	// caller's context.
	RequestTimeout time.Duration

	// MaxRetries is the number of retry attempts after the first failure.
	// Retries apply to network errors and 5xx responses only.
	MaxRetries uint64

	// InitialBackoff is the first retry delay.
	InitialBackoff time.Duration

	// MaxBackoff caps the exponential retry delay.
	MaxBackoff time.Duration

	// Token is the static bearer token. Empty disables the header.
	Token string

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// DefaultOptions returns Options with default values.
func DefaultOptions() *Options {
	return &Options{
		RequestTimeout: DefaultRequestTimeout,
		MaxRetries:     DefaultMaxRetries,
		InitialBackoff: DefaultInitialBackoff,
		MaxBackoff:     DefaultMaxBackoff,
	}
}

// APIClient talks to the analysis backend over JSON/HTTP.
type APIClient struct {
	baseURL string
	opts    *Options
	http    *http.Client
	log     logging.Logger
	m       *metrics.Metrics
}

// New creates an APIClient for the given base URL (including any path
// prefix, e.g. http://localhost:8000/api). A nil opts uses defaults; nil
// logger and metrics get no-op implementations.
func New(baseURL string, opts *Options, log logging.Logger, m *metrics.Metrics) *APIClient {
	if opts == nil {
		opts = DefaultOptions()
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	if m == nil {
		m = metrics.Nop()
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.RequestTimeout}
	}

	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		opts:    opts,
		http:    httpClient,
		log:     log,
		m:       m,
	}
}

// BaseURL returns the configured backend base URL.
func (c *APIClient) BaseURL() string {
	return c.baseURL
}

// statusError is an HTTP-level failure carrying the response code.
type statusError struct {
	endpoint string
	code     int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.endpoint, e.code, rerrors.ErrTransport)
}

func (e *statusError) Unwrap() error { return rerrors.ErrTransport }

// postJSON sends body to the endpoint and decodes the response into out.
// Network errors and 5xx responses are retried with exponential backoff;
// 4xx responses fail immediately. Every failure unwraps to ErrTransport.
func (c *APIClient) postJSON(ctx context.Context, endpoint string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", endpoint, err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.opts.InitialBackoff
	policy.MaxInterval = c.opts.MaxBackoff

	start := time.Now()
	var respBody []byte

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("building %s request: %w", endpoint, err))
		}
		req.Header.Set("Content-Type", "application/json")
		if c.opts.Token != "" {
			req.Header.Set("Authorization", "Bearer "+c.opts.Token)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("calling %s: %w", endpoint, rerrors.ErrTransport)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			serr := &statusError{endpoint: endpoint, code: resp.StatusCode}
			if resp.StatusCode >= 500 {
				return serr // retryable
			}
			return backoff.Permanent(serr)
		}

		respBody, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading %s response: %w", endpoint, rerrors.ErrTransport)
		}
		return nil
	}

	err = backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, c.opts.MaxRetries), ctx))
	c.m.BackendDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if err != nil {
		c.m.BackendRequests.WithLabelValues(endpoint, metrics.OutcomeError).Inc()
		c.log.Warn("backend call failed",
			logging.F("endpoint", endpoint),
			logging.F("elapsed", time.Since(start)),
			logging.Err(err))
		return err
	}

	c.m.BackendRequests.WithLabelValues(endpoint, metrics.OutcomeOK).Inc()
	c.log.Debug("backend call succeeded",
		logging.F("endpoint", endpoint),
		logging.F("elapsed", time.Since(start)))

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", endpoint, rerrors.ErrMalformedPayload)
	}
	return nil
}

// Ping checks backend reachability with a lightweight GET against the base
// URL. Any HTTP response counts as reachable; only network failures error.
func (c *APIClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return fmt.Errorf("building ping request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", rerrors.ErrTransport)
	}
	resp.Body.Close()
	return nil
}
