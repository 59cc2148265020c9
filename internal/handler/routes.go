package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sales-gateway/internal/config"
	"sales-gateway/internal/metrics"
)

// RegisterRoutes wires all route handlers onto the Echo instance.
func RegisterRoutes(e *echo.Echo, proxy *ProxyHandler, login *LoginHandler, health *HealthHandler) {
	e.GET("/", health.ServiceInfo)
	e.GET("/health", health.Health)

	e.GET("/subscriptions", proxy.ListSubscriptions)
	e.POST("/subscriptions", proxy.CreateSubscription)
	e.GET("/subscriptions/:id", proxy.GetSubscription)
	e.PATCH("/subscriptions/:id", proxy.UpdateSubscription)
	e.DELETE("/subscriptions/:id", proxy.DeleteSubscription)
	e.GET("/subscriptions/:id/car", proxy.GetSubscriptionCar)
	e.GET("/cars/available", proxy.AvailableCars)

	e.POST("/login", login.Login)
}

// RegisterMetrics exposes the Prometheus registry when metrics are enabled.
func RegisterMetrics(e *echo.Echo, cfg *config.Config, m *metrics.Metrics) {
	if !cfg.Metrics.Enabled {
		return
	}
	e.GET(cfg.Metrics.Path, echo.WrapHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
}
