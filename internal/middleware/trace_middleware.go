package middleware

import (
	"marketplace/business/recommend"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestTrace tags every request with a trace id, reusing X-Request-ID when
// the caller supplies one. The id is echoed back and stored on the request
// context for the recommendation logs.
func RequestTrace() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			traceID := c.Request().Header.Get(echo.HeaderXRequestID)
			if traceID == "" {
				traceID = uuid.NewString()
			}

			req := c.Request()
			c.SetRequest(req.WithContext(recommend.WithTraceID(req.Context(), traceID)))
			c.Response().Header().Set(echo.HeaderXRequestID, traceID)
			c.Set("trace_id", traceID)

			return next(c)
		}
	}
}
