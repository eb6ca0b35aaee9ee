// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
)

// Check reports whether one dependency is reachable.
type Check = func(ctx context.Context) error

// NewHealthCheck creates a Fiber healthcheck middleware with Kubernetes-style endpoints.
//
// Endpoints:
//   - GET /livez  - Liveness probe (app is running)
//   - GET /readyz - Readiness probe (every check passes within timeout)
//
// Providers are not checked: the stores serve fallbacks while they are down.
// This middleware should be registered BEFORE other routes.
func NewHealthCheck(timeout time.Duration, checks map[string]Check) fiber.Handler {
	return healthcheck.New(healthcheck.Config{
		LivenessEndpoint: "/livez",
		LivenessProbe: func(_ *fiber.Ctx) bool {
			return true
		},

		ReadinessEndpoint: "/readyz",
		ReadinessProbe: func(c *fiber.Ctx) bool {
			ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
			defer cancel()

			for _, check := range checks {
				if check == nil {
					continue
				}
				if err := check(ctx); err != nil {
					return false
				}
			}

			return true
		},
	})
}
