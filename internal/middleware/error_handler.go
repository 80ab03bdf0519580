package middleware

import (
	"errors"
	"net/http"

	"marketplace/pkg/logger"
	jsonres "marketplace/pkg/response"

	"github.com/labstack/echo/v4"
)

// ErrorHandler renders unhandled errors with the shared JSON envelope.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := http.StatusText(code)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(code)
		}
	}

	if code >= http.StatusInternalServerError {
		logger.Error("Unhandled request error",
			"error", err,
			"method", c.Request().Method,
			"path", c.Path(),
		)
	}

	var respErr error
	if c.Request().Method == http.MethodHead {
		respErr = c.NoContent(code)
	} else {
		respErr = c.JSON(code, jsonres.Error(http.StatusText(code), message, nil))
	}
	if respErr != nil {
		logger.Error("Failed to write error response", "error", respErr)
	}
}
