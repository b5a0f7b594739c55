package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/logger"
)

const (
	headerRequestID = "X-Request-ID"
	ctxLogger       = "logger"
)

// RequestLogger propagates X-Request-ID (generating one when absent), puts a
// request-scoped logger in the context and logs one line per request.
func RequestLogger(base *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(headerRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			c.Response().Header().Set(headerRequestID, id)
			log := base.WithRequestID(id)
			c.Set(ctxLogger, log)

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			fields := map[string]any{
				"method":     c.Request().Method,
				"route":      c.Path(),
				"status":     c.Response().Status,
				"latency_ms": time.Since(start).Milliseconds(),
			}
			if err != nil {
				log.Error("http_request", err, fields)
			} else {
				log.Info("http_request", fields)
			}
			return nil
		}
	}
}

// Logger returns the request-scoped logger, or fallback outside
// RequestLogger.
func Logger(c echo.Context, fallback *logger.Logger) *logger.Logger {
	if l, ok := c.Get(ctxLogger).(*logger.Logger); ok {
		return l
	}
	return fallback
}
