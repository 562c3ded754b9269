package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Pinger is a dependency the health check probes
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck reports the service status; it degrades when a probed
// dependency is unreachable
func HealthCheck(serviceName string, deps map[string]Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		status, code := "healthy", http.StatusOK
		checks := make(map[string]string, len(deps))
		for name, dep := range deps {
			if err := dep.Ping(c.Request().Context()); err != nil {
				checks[name] = err.Error()
				status, code = "degraded", http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}
		return c.JSON(code, echo.Map{
			"status":  status,
			"service": serviceName,
			"checks":  checks,
		})
	}
}
