package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"classichub-service/internal/app/service"
	"classichub-service/internal/transport/httpserver/dto"
	"classichub-service/internal/validator"
)

// MediaHandler handles video requests.
type MediaHandler struct {
	service   *service.MediaService
	validator *validator.Validator
	logger    *zap.Logger
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(svc *service.MediaService, v *validator.Validator, logger *zap.Logger) *MediaHandler {
	return &MediaHandler{
		service:   svc,
		validator: v,
		logger:    logger,
	}
}

// Search handles GET /api/v1/videos?q=
func (h *MediaHandler) Search(c *fiber.Ctx) error {
	var req dto.VideoRequest
	if e := bind(h.validator, &req, c.QueryParser); e != nil {
		return badRequest(c, e)
	}

	result, err := h.service.Search(c.UserContext(), req.Query, req.Limit)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(dto.FromResult(result))
}

// ArtistVideos handles GET /api/v1/artists/:id/videos
func (h *MediaHandler) ArtistVideos(c *fiber.Ctx) error {
	id, e := pathID(c, "id")
	if e != nil {
		return badRequest(c, e)
	}

	var req dto.ArtistVideoRequest
	if e := bind(h.validator, &req, c.QueryParser); e != nil {
		return badRequest(c, e)
	}

	result, err := h.service.ForArtist(c.UserContext(), id, req.Limit)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(dto.FromResult(result))
}
