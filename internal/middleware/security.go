package middleware

import (
	"github.com/labstack/echo/v4"
)

// hopByHopHeaders are headers that apply to a single connection and must not
// reach handlers of a gateway.
var hopByHopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"TE",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// SecurityHeaders returns an Echo middleware that strips hop-by-hop request
// headers and marks every response as non-sniffable, non-framable and
// non-cacheable. The headers are set before the handler runs so they are
// present once the body is written.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			for _, h := range hopByHopHeaders {
				c.Request().Header.Del(h)
			}

			h := c.Response().Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			// Responses may carry a session cookie or per-user data.
			h.Set("Cache-Control", "no-store")

			return next(c)
		}
	}
}
