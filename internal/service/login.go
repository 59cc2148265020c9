package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"sales-gateway/internal/backend"
	"sales-gateway/internal/client"
	"sales-gateway/internal/model"
)

// ErrInvalidJSON is returned when the user service answers a login with a
// body that is not JSON.
var ErrInvalidJSON = errors.New("user service returned a non-JSON body")

// loginPath is the user service endpoint that authenticates credentials.
const loginPath = "/login"

// loginFailure wraps a rejected login together with the user service's reply.
type loginFailure struct {
	Error string          `json:"error"`
	Data  json.RawMessage `json:"data_returned_from_microservice"`
}

// AuthService relays logins to the user service and lifts the issued token
// into a gateway cookie.
type AuthService struct {
	client *client.BackendClient
	target backend.Target
	logger *slog.Logger
}

// NewAuthService creates an AuthService bound to the user backend.
func NewAuthService(c *client.BackendClient, reg *backend.Registry, logger *slog.Logger) *AuthService {
	return &AuthService{
		client: c,
		target: reg.Resolve(backend.User),
		logger: logger.With("component", "auth_service"),
	}
}

// Login posts the credentials in pr to the user service.
//
// On 200 the backend body is returned as is and, when the backend set an
// Authorization cookie, its value is carried as the result's Cookie. Any
// other status is wrapped in an error envelope with the status preserved.
//
// Unlike Forward, a transport failure is returned as an error rather than
// translated into a 500 envelope, and so is a body that is not JSON.
func (s *AuthService) Login(ctx context.Context, pr *model.ProxyRequest) (*model.LoginResult, error) {
	resp, err := s.client.Do(ctx, &client.Request{
		Backend: string(s.target.Name),
		Method:  http.MethodPost,
		URL:     s.target.URL(loginPath),
		Header:  http.Header{"Content-Type": {"application/json"}},
		Body:    pr.Body,
		Cookies: pr.Cookies,
	})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if !json.Valid(resp.Body) {
		return nil, fmt.Errorf("login: status %d: %w", resp.StatusCode, ErrInvalidJSON)
	}

	if resp.StatusCode != http.StatusOK {
		s.logger.Info("login rejected", "status", resp.StatusCode)
		body, err := json.Marshal(loginFailure{
			Error: fetchFailedMessage,
			Data:  resp.Body,
		})
		if err != nil {
			return nil, fmt.Errorf("login: encode failure: %w", err)
		}
		return &model.LoginResult{StatusCode: resp.StatusCode, Body: body}, nil
	}

	result := &model.LoginResult{
		StatusCode: http.StatusOK,
		Body:       normalizeBody(resp.Body),
	}
	if ck := resp.Cookie(model.AuthCookieName); ck != nil {
		result.Cookie = model.NewAuthCookie(ck.Value)
	} else {
		s.logger.Warn("login succeeded without an Authorization cookie")
	}
	return result, nil
}
