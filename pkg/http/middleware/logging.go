package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	applogger "ParamSweep/pkg/logger"
)

// RequestLogging logs HTTP requests at debug, and 5xx responses at error.
func RequestLogging(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			status := c.Response().Status
			fields := []applogger.Field{
				applogger.String("method", req.Method),
				applogger.String("route", routeLabel(c)),
				applogger.String("remote", c.RealIP()),
				applogger.Int("status", status),
				applogger.Duration("latency", time.Since(start)),
			}
			if status >= 500 {
				if err != nil {
					fields = append(fields, applogger.Error(err))
				}
				l.Error("HTTP request failed", fields...)
			} else {
				l.Debug("HTTP request", fields...)
			}
			return nil
		}
	}
}
