package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORS allows any origin to read the API. Nothing is authenticated, so
// credentials are never allowed.
func CORS() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: strings.Join([]string{
			fiber.MethodGet,
			fiber.MethodPost,
			fiber.MethodDelete,
			fiber.MethodOptions,
		}, ","),
		AllowHeaders:  "Origin, Content-Type, Accept",
		ExposeHeaders: fiber.HeaderXRequestID,
		MaxAge:        600,
	})
}
