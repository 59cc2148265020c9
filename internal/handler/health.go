package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthHandler serves the health and service description endpoints.
// Neither contacts a backend.
type HealthHandler struct {
	info ServiceInfo
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{info: serviceInfo}
}

// Health always reports healthy; it does not probe the backends.
func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// ServiceInfo returns the static description of the gateway's endpoints.
func (h *HealthHandler) ServiceInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, h.info)
}
