package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"sales-gateway/internal/model"
	"sales-gateway/internal/service"
)

// LoginHandler relays POST /login and sets the session cookie it yields.
type LoginHandler struct {
	service *service.AuthService
	logger  *slog.Logger
}

// NewLoginHandler creates a LoginHandler.
func NewLoginHandler(svc *service.AuthService, logger *slog.Logger) *LoginHandler {
	return &LoginHandler{
		service: svc,
		logger:  logger.With("component", "login_handler"),
	}
}

// Login forwards the credentials to the user service. A failure to reach it
// is returned to echo as a plain error and rendered as a generic 500.
func (h *LoginHandler) Login(c echo.Context) error {
	req := c.Request()

	body, err := readJSONBody(req)
	if err != nil {
		return err
	}

	res, err := h.service.Login(req.Context(), &model.ProxyRequest{
		Method:  http.MethodPost,
		Path:    "/login",
		Body:    body,
		Cookies: req.Cookies(),
	})
	if err != nil {
		return fmt.Errorf("relay login: %w", err)
	}

	if res.Cookie != nil {
		c.SetCookie(res.Cookie.HTTPCookie())
	}
	h.logger.Debug("login relayed", "status", res.StatusCode, "cookie_set", res.Cookie != nil)
	return c.JSONBlob(res.StatusCode, res.Body)
}
