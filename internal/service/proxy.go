// Package service implements the gateway's forwarding and login relay logic.
package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"sales-gateway/internal/backend"
	"sales-gateway/internal/client"
	"sales-gateway/internal/model"
)

// fetchFailedMessage is the "error" value of every gateway-generated
// envelope describing a failed backend call.
const fetchFailedMessage = "Failed to fetch from microservice"

// transportError is the body returned when a backend could not be reached.
type transportError struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// ProxyService forwards requests to backends and normalizes their replies.
type ProxyService struct {
	client *client.BackendClient
	logger *slog.Logger
}

// NewProxyService creates a ProxyService.
func NewProxyService(c *client.BackendClient, logger *slog.Logger) *ProxyService {
	return &ProxyService{
		client: c,
		logger: logger.With("component", "proxy_service"),
	}
}

// Forward sends pr to target and returns the normalized backend response.
//
// Backend status codes are passed through unchanged, errors included. Only
// transport failures (DNS, refused connection, timeout) are replaced, all by
// the same 500 envelope carrying the failure description.
func (s *ProxyService) Forward(ctx context.Context, target backend.Target, pr *model.ProxyRequest) model.NormalizedResponse {
	req := &client.Request{
		Backend: string(target.Name),
		Method:  pr.Method,
		URL:     target.URL(pr.Path),
		Cookies: pr.Cookies,
	}
	if carriesBody(pr.Method) && pr.Body != nil {
		req.Body = pr.Body
		req.Header = http.Header{"Content-Type": {"application/json"}}
	}

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		s.logger.Error("backend unreachable",
			"backend", target.Name,
			"method", pr.Method,
			"path", pr.Path,
			"err", err,
		)
		return transportFailure(err)
	}

	s.logger.Debug("backend responded",
		"backend", target.Name,
		"method", pr.Method,
		"path", pr.Path,
		"status", resp.StatusCode,
	)
	return Normalize(resp.StatusCode, resp.Body)
}

// carriesBody reports whether the gateway forwards a request body for method.
func carriesBody(method string) bool {
	return method == http.MethodPost || method == http.MethodPatch
}

func transportFailure(err error) model.NormalizedResponse {
	body, _ := json.Marshal(transportError{
		Error:   fetchFailedMessage,
		Details: err.Error(),
	})
	return model.NormalizedResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       body,
	}
}
