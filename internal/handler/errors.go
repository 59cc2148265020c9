package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Messages for the gateway's own routing failures.
const (
	notFoundMessage         = "Endpoint does not exist"
	methodNotAllowedMessage = "Method not allowed - double-check the method you are using"
	invalidBodyMessage      = "Request body must be valid JSON"
)

// errorBody is the JSON shape of every error the gateway raises itself.
type errorBody struct {
	Message string `json:"message"`
}

// NewHTTPErrorHandler returns the echo error handler. Router misses become
// 404/405 with fixed messages, other *echo.HTTPError values keep their code,
// and any other error is logged and rendered as a generic 500. Bodies are
// always JSON.
func NewHTTPErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	logger = logger.With("component", "error_handler")

	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		msg := http.StatusText(code)

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			switch code {
			case http.StatusNotFound:
				msg = notFoundMessage
			case http.StatusMethodNotAllowed:
				msg = methodNotAllowedMessage
			default:
				if m, ok := he.Message.(string); ok {
					msg = m
				} else {
					msg = http.StatusText(code)
				}
			}
		} else {
			logger.Error("unhandled error",
				"err", err,
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, errorBody{Message: msg})
		}
		if err != nil {
			logger.Error("writing error response", "err", err)
		}
	}
}
