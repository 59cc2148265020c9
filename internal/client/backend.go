// Package client provides the outbound HTTP client for the gateway's backends.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"sales-gateway/internal/config"
	"sales-gateway/internal/metrics"
	"sales-gateway/internal/model"
)

// Request describes one outbound call.
type Request struct {
	// Backend labels the call in logs and metrics.
	Backend string
	Method  string
	URL     string
	Header  http.Header
	Body    []byte
	Cookies []*http.Cookie
}

// BackendClient sends requests to the services behind the gateway.
type BackendClient struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewBackendClient creates a BackendClient with connection pooling. The whole
// round-trip is bounded by upstream.timeout_seconds; zero leaves it unbounded.
// The metrics parameter is optional; pass nil to disable upstream metrics recording.
func NewBackendClient(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *BackendClient {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        cfg.Upstream.IdleConnections,
		MaxIdleConnsPerHost: cfg.Upstream.IdleConnections,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	return &BackendClient{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second,
		},
		logger:  logger.With("component", "backend_client"),
		metrics: m,
	}
}

// Do sends the request and reads the whole response body. Any error returned
// is a transport failure; backend status codes, including 4xx and 5xx, are
// reported through the response.
func (c *BackendClient) Do(ctx context.Context, r *Request) (*model.UpstreamResponse, error) {
	var body io.Reader = http.NoBody
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, body)
	if err != nil {
		return nil, fmt.Errorf("build backend request: %w", err)
	}
	for k, vals := range r.Header {
		req.Header[k] = vals
	}
	for _, ck := range r.Cookies {
		req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	}

	c.logger.Debug("backend request",
		"backend", r.Backend,
		"method", r.Method,
		"url", r.URL,
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	method := metrics.NormalizeMethod(r.Method)
	if err != nil {
		c.observe(r.Backend, method, start)
		if c.metrics != nil {
			c.metrics.UpstreamFailures.WithLabelValues(r.Backend, method).Inc()
		}
		return nil, fmt.Errorf("backend request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	c.observe(r.Backend, method, start)
	if err != nil {
		if c.metrics != nil {
			c.metrics.UpstreamFailures.WithLabelValues(r.Backend, method).Inc()
		}
		return nil, fmt.Errorf("read backend response: %w", err)
	}

	if c.metrics != nil {
		c.metrics.UpstreamResponses.WithLabelValues(r.Backend, method, strconv.Itoa(resp.StatusCode)).Inc()
	}

	return &model.UpstreamResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
		Cookies:    resp.Cookies(),
	}, nil
}

func (c *BackendClient) observe(backend, method string, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.UpstreamDuration.WithLabelValues(backend, method).Observe(time.Since(start).Seconds())
}
