package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"classichub-service/internal/app/service"
	"classichub-service/internal/transport/httpserver/dto"
	"classichub-service/internal/validator"
)

// NewsHandler handles news search requests.
type NewsHandler struct {
	service   *service.NewsService
	validator *validator.Validator
	logger    *zap.Logger
}

// NewNewsHandler creates a new NewsHandler.
func NewNewsHandler(svc *service.NewsService, v *validator.Validator, logger *zap.Logger) *NewsHandler {
	return &NewsHandler{
		service:   svc,
		validator: v,
		logger:    logger,
	}
}

// Search handles GET /api/v1/news
func (h *NewsHandler) Search(c *fiber.Ctx) error {
	var req dto.NewsRequest
	if e := bind(h.validator, &req, c.QueryParser); e != nil {
		return badRequest(c, e)
	}

	result, err := h.service.Search(c.UserContext(), req.ToQuery(), req.Source)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(dto.FromResult(result))
}

// Sources handles GET /api/v1/news/sources
func (h *NewsHandler) Sources(c *fiber.Ctx) error {
	return c.JSON(dto.SourcesResponse{Sources: h.service.Sources()})
}
