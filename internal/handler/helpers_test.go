package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"

	"sales-gateway/internal/backend"
	"sales-gateway/internal/client"
	"sales-gateway/internal/config"
	"sales-gateway/internal/service"
)

// unreachable is a backend URL nothing listens on.
const unreachable = "http://127.0.0.1:1"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestGateway wires the full route table against the given backend URLs.
func newTestGateway(t *testing.T, subscriptionURL, carURL, userURL string) *echo.Echo {
	t.Helper()

	cfg := &config.Config{
		Backends: config.BackendsConfig{
			SubscriptionURL: subscriptionURL,
			CarURL:          carURL,
			UserURL:         userURL,
		},
		Upstream: config.UpstreamConfig{
			TimeoutSeconds:  2,
			IdleConnections: 10,
		},
	}
	logger := discardLogger()
	reg := backend.NewRegistry(cfg)
	bc := client.NewBackendClient(cfg, logger, nil)

	e := echo.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(logger)
	RegisterRoutes(e,
		NewProxyHandler(service.NewProxyService(bc, logger), reg, logger),
		NewLoginHandler(service.NewAuthService(bc, reg, logger), logger),
		NewHealthHandler(),
	)
	return e
}

// recordedRequest is what a fake backend saw.
type recordedRequest struct {
	Method      string
	Path        string
	Body        string
	ContentType string
	Cookies     map[string]string
}

// backendRecorder collects the requests a fake backend received.
type backendRecorder struct {
	mu   sync.Mutex
	reqs []recordedRequest
}

func (r *backendRecorder) add(req recordedRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
}

// Requests returns a copy of everything recorded so far.
func (r *backendRecorder) Requests() []recordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedRequest(nil), r.reqs...)
}

// fakeBackend answers every request with status and body and records it.
// Extra cookies are set on every response.
func fakeBackend(t *testing.T, status int, body string, cookies ...*http.Cookie) (*httptest.Server, *backendRecorder) {
	t.Helper()
	rec := &backendRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		seen := make(map[string]string)
		for _, c := range r.Cookies() {
			seen[c.Name] = c.Value
		}
		rec.add(recordedRequest{
			Method:      r.Method,
			Path:        r.URL.Path,
			Body:        string(data),
			ContentType: r.Header.Get("Content-Type"),
			Cookies:     seen,
		})
		for _, c := range cookies {
			http.SetCookie(w, c)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}
