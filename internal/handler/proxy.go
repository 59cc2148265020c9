package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"sales-gateway/internal/backend"
	"sales-gateway/internal/model"
	"sales-gateway/internal/service"
)

// ProxyHandler serves the routes that are plain passthroughs to a backend.
type ProxyHandler struct {
	service  *service.ProxyService
	registry *backend.Registry
	logger   *slog.Logger
}

// NewProxyHandler creates a ProxyHandler.
func NewProxyHandler(svc *service.ProxyService, reg *backend.Registry, logger *slog.Logger) *ProxyHandler {
	return &ProxyHandler{
		service:  svc,
		registry: reg,
		logger:   logger.With("component", "proxy_handler"),
	}
}

// ListSubscriptions proxies GET /subscriptions.
func (h *ProxyHandler) ListSubscriptions(c echo.Context) error {
	return h.forward(c, backend.Subscription, "/subscriptions")
}

// CreateSubscription proxies POST /subscriptions.
func (h *ProxyHandler) CreateSubscription(c echo.Context) error {
	return h.forward(c, backend.Subscription, "/subscriptions")
}

// GetSubscription proxies GET /subscriptions/:id.
func (h *ProxyHandler) GetSubscription(c echo.Context) error {
	return h.forwardByID(c, "/subscriptions/%d")
}

// UpdateSubscription proxies PATCH /subscriptions/:id.
func (h *ProxyHandler) UpdateSubscription(c echo.Context) error {
	return h.forwardByID(c, "/subscriptions/%d")
}

// DeleteSubscription proxies DELETE /subscriptions/:id.
func (h *ProxyHandler) DeleteSubscription(c echo.Context) error {
	return h.forwardByID(c, "/subscriptions/%d")
}

// GetSubscriptionCar proxies GET /subscriptions/:id/car.
func (h *ProxyHandler) GetSubscriptionCar(c echo.Context) error {
	return h.forwardByID(c, "/subscriptions/%d/car")
}

// AvailableCars proxies GET /cars/available.
func (h *ProxyHandler) AvailableCars(c echo.Context) error {
	return h.forward(c, backend.Car, "/cars/available")
}

func (h *ProxyHandler) forwardByID(c echo.Context, pathFormat string) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return echo.ErrNotFound
	}
	return h.forward(c, backend.Subscription, fmt.Sprintf(pathFormat, id))
}

func (h *ProxyHandler) forward(c echo.Context, name backend.Name, path string) error {
	req := c.Request()

	pr := &model.ProxyRequest{
		Method:  req.Method,
		Path:    path,
		Cookies: req.Cookies(),
	}
	if req.Method == http.MethodPost || req.Method == http.MethodPatch {
		body, err := readJSONBody(req)
		if err != nil {
			return err
		}
		pr.Body = body
	}

	resp := h.service.Forward(req.Context(), h.registry.Resolve(name), pr)
	return c.JSONBlob(resp.StatusCode, resp.Body)
}

// parseID accepts a non-negative decimal integer made of digits only.
// Leading zeros are allowed; the id is re-rendered without them.
func parseID(raw string) (uint64, error) {
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return 0, fmt.Errorf("id %q is not a decimal integer", raw)
		}
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// readJSONBody returns the request body, nil when it is empty, or a 400 when
// it is present but not JSON.
func readJSONBody(req *http.Request) ([]byte, error) {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, nil
	}
	if !json.Valid(body) {
		return nil, echo.NewHTTPError(http.StatusBadRequest, invalidBodyMessage)
	}
	return body, nil
}
