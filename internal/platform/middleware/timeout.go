package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/cce/oncogen/internal/platform/fhir"
)

// RequestTimeout puts a deadline on each request context. The handler runs on
// the request goroutine and sinks honour the context, so an overrun surfaces
// as context.DeadlineExceeded and the client gets a 504 with an
// OperationOutcome. Zero disables the deadline.
func RequestTimeout(timeout time.Duration) echo.MiddlewareFunc {
	if timeout <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return echomw.ContextTimeoutWithConfig(echomw.ContextTimeoutConfig{
		Timeout:      timeout,
		ErrorHandler: timeoutError,
	})
}

func timeoutError(err error, c echo.Context) error {
	if !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if c.Response().Committed {
		return nil
	}
	return c.JSON(http.StatusGatewayTimeout,
		fhir.NewOperationOutcome("error", "timeout", "request processing exceeded the allowed time limit"))
}
