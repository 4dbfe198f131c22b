// Package session provides the user and profile services the dashboard
// resolves before a route activates.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/che-dashboard/pkg/etag"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for dashboard API calls.
var (
	apiRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_api_requests_total",
		Help: "Total dashboard API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	apiRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dashboard_api_request_duration_seconds",
		Help:    "Dashboard API request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})
)

// maxErrorBody bounds how much of an error response is kept as message.
const maxErrorBody = 512

// Config holds the API client configuration.
type Config struct {
	// BaseURL of the Che server, e.g. "http://localhost:8080"
	BaseURL string

	// Prefix is the API root below BaseURL (default: "/api")
	Prefix string

	// Token is sent as a bearer token when set
	Token string

	// Timeout per request (default: 30s)
	Timeout time.Duration

	// Store keeps ETag validators (default: in-memory)
	Store etag.Store

	// Transport is the base transport (default: http.DefaultTransport)
	Transport http.RoundTripper
}

// Client performs JSON GET requests against the dashboard API through the
// conditional-fetch pipeline.
type Client struct {
	httpClient  *http.Client
	interceptor *etag.Interceptor
	apiURL      string
	token       string
	logger      zerolog.Logger
}

// NewClient creates an API client.
func NewClient(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base URL must be absolute (got %q)", cfg.BaseURL)
	}

	if cfg.Prefix == "" {
		cfg.Prefix = etag.DefaultPrefix
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Store == nil {
		cfg.Store = etag.NewMemoryStore()
	}

	// The interceptor sees request URIs, which include any base path
	monitored := strings.TrimSuffix(base.Path, "/") + cfg.Prefix
	interceptor := etag.NewInterceptor(monitored, cfg.Store, logger)

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: etag.NewTransport(interceptor, etag.NewReplay(cfg.Transport).WithPrefix(monitored)),
		},
		interceptor: interceptor,
		apiURL:      strings.TrimSuffix(cfg.BaseURL, "/") + cfg.Prefix,
		token:       cfg.Token,
		logger:      logger.With().Str("component", "api-client").Logger(),
	}, nil
}

// Interceptor returns the conditional-fetch interceptor of the client.
func (c *Client) Interceptor() *etag.Interceptor {
	return c.interceptor
}

// Get fetches endpoint (relative to the API root) and decodes the JSON
// answer into v.
func (c *Client) Get(ctx context.Context, endpoint string, v any) error {
	startTime := time.Now()
	defer func() {
		apiRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		apiRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("API request failed")
		return fmt.Errorf("get %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	apiRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode == http.StatusNotModified {
		return fmt.Errorf("get %s: %w", endpoint, ErrNotModifiedWithoutBody)
	}

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		message := strings.TrimSpace(string(body))
		if message == "" {
			message = resp.Status
		}

		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Msg("API request error")

		return &APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   endpoint,
			Message:    message,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Msg("API request succeeded")

	return nil
}
