package middleware

import (
	"fmt"
	"net/http"
	"runtime"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// PanicMessage is the error text returned for a recovered panic.
const PanicMessage = "Something went wrong"

// Recovery turns a handler panic into a 500 whose body carries the panic
// text. Only the panicking request is affected.
func Recovery(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					var stack [4096]byte
					n := runtime.Stack(stack[:], false)
					detail := fmt.Sprintf("%v", r)

					logger.Error().
						Str("request_id", fmt.Sprintf("%v", c.Get("request_id"))).
						Str("panic", detail).
						Str("stack", string(stack[:n])).
						Msg("panic recovered")

					err = echo.NewHTTPError(http.StatusInternalServerError, map[string]string{
						"error":  PanicMessage,
						"detail": detail,
					})
				}
			}()
			return next(c)
		}
	}
}
