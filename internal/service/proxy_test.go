package service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sales-gateway/internal/backend"
	"sales-gateway/internal/client"
	"sales-gateway/internal/config"
	"sales-gateway/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(timeoutSeconds int) *client.BackendClient {
	cfg := &config.Config{
		Upstream: config.UpstreamConfig{
			TimeoutSeconds:  timeoutSeconds,
			IdleConnections: 10,
		},
	}
	return client.NewBackendClient(cfg, discardLogger(), nil)
}

func subscriptionTarget(url string) backend.Target {
	return backend.Target{Name: backend.Subscription, BaseURL: url}
}

func TestForward_Passthrough(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantBody   string
	}{
		{"ok object", http.StatusOK, `{"id":3,"status":"active"}`, http.StatusOK, `{"id":3,"status":"active"}`},
		{"ok array", http.StatusOK, `[{"id":1}]`, http.StatusOK, `[{"id":1}]`},
		{"created", http.StatusCreated, `{"id":9}`, http.StatusCreated, `{"id":9}`},
		{"not found passes through", http.StatusNotFound, `{"error":"Subscription not found"}`, http.StatusNotFound, `{"error":"Subscription not found"}`},
		{"unauthorized passes through", http.StatusUnauthorized, `{"error":"missing token"}`, http.StatusUnauthorized, `{"error":"missing token"}`},
		{"server error passes through", http.StatusServiceUnavailable, `{"error":"db down"}`, http.StatusServiceUnavailable, `{"error":"db down"}`},
		{"non-json normalized", http.StatusOK, `OK`, http.StatusOK, `[]`},
		{"empty normalized", http.StatusNoContent, ``, http.StatusNoContent, `[]`},
		{"non-json error normalized", http.StatusInternalServerError, `<h1>oops</h1>`, http.StatusInternalServerError, `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer upstream.Close()

			svc := NewProxyService(newTestClient(10), discardLogger())
			got := svc.Forward(context.Background(), subscriptionTarget(upstream.URL), &model.ProxyRequest{
				Method: http.MethodGet,
				Path:   "/subscriptions",
			})

			if got.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", got.StatusCode, tt.wantStatus)
			}
			if string(got.Body) != tt.wantBody {
				t.Errorf("Body = %s, want %s", got.Body, tt.wantBody)
			}
		})
	}
}

func TestForward_BuildsOutboundRequest(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		path     string
		body     []byte
		wantBody string
		wantCT   string
	}{
		{"GET drops body", http.MethodGet, "/subscriptions/5", []byte(`{"x":1}`), "", ""},
		{"DELETE drops body", http.MethodDelete, "/subscriptions/5", nil, "", ""},
		{"POST sends body", http.MethodPost, "/subscriptions", []byte(`{"car_id":2}`), `{"car_id":2}`, "application/json"},
		{"PATCH sends body", http.MethodPatch, "/subscriptions/5", []byte(`{"status":"paused"}`), `{"status":"paused"}`, "application/json"},
		{"POST without body", http.MethodPost, "/subscriptions", nil, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != tt.method {
					t.Errorf("method = %q, want %q", r.Method, tt.method)
				}
				if r.URL.Path != tt.path {
					t.Errorf("path = %q, want %q", r.URL.Path, tt.path)
				}
				body, _ := io.ReadAll(r.Body)
				if string(body) != tt.wantBody {
					t.Errorf("body = %q, want %q", body, tt.wantBody)
				}
				if got := r.Header.Get("Content-Type"); got != tt.wantCT {
					t.Errorf("Content-Type = %q, want %q", got, tt.wantCT)
				}
				for name, want := range map[string]string{"Authorization": "tok123", "session": "abc"} {
					ck, err := r.Cookie(name)
					if err != nil || ck.Value != want {
						t.Errorf("cookie %s = %v, %v; want %q", name, ck, err, want)
					}
				}
				_, _ = w.Write([]byte(`{}`))
			}))
			defer upstream.Close()

			svc := NewProxyService(newTestClient(10), discardLogger())
			got := svc.Forward(context.Background(), subscriptionTarget(upstream.URL), &model.ProxyRequest{
				Method: tt.method,
				Path:   tt.path,
				Body:   tt.body,
				Cookies: []*http.Cookie{
					{Name: "Authorization", Value: "tok123"},
					{Name: "session", Value: "abc"},
				},
			})
			if got.StatusCode != http.StatusOK {
				t.Errorf("StatusCode = %d, want %d", got.StatusCode, http.StatusOK)
			}
		})
	}
}

func TestForward_TransportFailure(t *testing.T) {
	svc := NewProxyService(newTestClient(1), discardLogger())

	got := svc.Forward(context.Background(), subscriptionTarget("http://127.0.0.1:1"), &model.ProxyRequest{
		Method: http.MethodGet,
		Path:   "/subscriptions",
	})

	if got.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want %d", got.StatusCode, http.StatusInternalServerError)
	}
	assertTransportEnvelope(t, got.Body)
}

// The original gateway has no outbound timeout; a configured one turns a
// hung backend into the same transport failure envelope.
func TestForward_ConfiguredTimeout(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer upstream.Close()

	svc := NewProxyService(newTestClient(1), discardLogger())
	got := svc.Forward(context.Background(), subscriptionTarget(upstream.URL), &model.ProxyRequest{
		Method: http.MethodGet,
		Path:   "/subscriptions",
	})

	if got.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want %d", got.StatusCode, http.StatusInternalServerError)
	}
	assertTransportEnvelope(t, got.Body)
}

func assertTransportEnvelope(t *testing.T, raw json.RawMessage) {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("unmarshal %s: %v", raw, err)
	}
	if body["error"] != "Failed to fetch from microservice" {
		t.Errorf("error = %q, want %q", body["error"], "Failed to fetch from microservice")
	}
	if body["details"] == "" {
		t.Error("details should describe the transport failure")
	}
}
