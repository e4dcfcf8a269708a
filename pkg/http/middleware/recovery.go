package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"

	applogger "ParamSweep/pkg/logger"
)

// Recover logs handler panics with their stack and hands a plain error to
// the echo error handler, which renders it as a 500. http.ErrAbortHandler
// is re-raised so net/http can drop the connection.
func Recover(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				perr, ok := r.(error)
				if !ok {
					perr = fmt.Errorf("%v", r)
				}
				if errors.Is(perr, http.ErrAbortHandler) {
					panic(r)
				}
				l.Error("Panic in HTTP handler",
					applogger.Error(perr),
					applogger.String("route", routeLabel(c)),
					applogger.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
					applogger.String("stack", string(debug.Stack())))
				c.Error(fmt.Errorf("panic: %w", perr))
				err = nil
			}()
			return next(c)
		}
	}
}
