package config

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// SetupMiddleware installs the global middleware: tracing, request logs,
// panic recovery and CORS
func SetupMiddleware(e *echo.Echo, serviceName string) {
	e.Use(echo.WrapMiddleware(otelhttp.NewMiddleware(serviceName)))
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
}
