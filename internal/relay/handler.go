package relay

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler serves GET /api/relay/:provider?path=...
func (r *Relay) Handler(c *fiber.Ctx) error {
	c.Set(fiber.HeaderAccessControlAllowOrigin, "*")

	query := url.Values{}
	c.Context().QueryArgs().VisitAll(func(k, v []byte) {
		query.Add(string(k), string(v))
	})

	resp, err := r.Forward(c.UserContext(), c.Params("provider"), query.Get(PathParam), query)
	if err != nil {
		status := StatusFor(err)
		if status >= fiber.StatusInternalServerError {
			r.logger.Error("relay failed", zap.String("target", c.Params("provider")), zap.Error(err))
		}

		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	if resp.ContentType != "" {
		c.Set(fiber.HeaderContentType, resp.ContentType)
	}

	return c.Status(resp.Status).Send(resp.Body)
}
