package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// SecurityHeaders sets response headers for a JSON and XML API that serves
// no HTML. Generated documents are fresh on every call and must not be
// cached, while catalogue and terminology responses are static for the life
// of the process and may be cached briefly.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			h.Set("Referrer-Policy", "no-referrer")

			if cacheable(c.Request().Method, c.Request().URL.Path) {
				h.Set("Cache-Control", "public, max-age=300")
			} else {
				h.Set("Cache-Control", "no-store")
			}
			return next(c)
		}
	}
}

func cacheable(method, path string) bool {
	if method != "GET" {
		return false
	}
	return strings.HasPrefix(path, "/api/v1/catalogue") ||
		strings.HasPrefix(path, "/fhir/CodeSystem") ||
		strings.HasPrefix(path, "/fhir/ValueSet")
}
