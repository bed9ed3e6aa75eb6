package auth

import (
	"github.com/labstack/echo/v4"
)

// publicPaths bypass authentication: health probes and the development token
// endpoint.
var publicPaths = map[string]bool{
	"/health":         true,
	"/health/db":      true,
	"/api/auth/token": true,
}

// AuthSkipper reports whether the request path is public. It is meant for
// JWTConfig.Skipper.
func AuthSkipper(c echo.Context) bool {
	return IsPublicPath(c.Request().URL.Path)
}

// IsPublicPath reports whether path is a public endpoint.
func IsPublicPath(path string) bool {
	return publicPaths[path]
}
