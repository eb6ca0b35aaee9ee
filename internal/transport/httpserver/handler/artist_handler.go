package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"classichub-service/internal/app/service"
	"classichub-service/internal/domain"
	"classichub-service/internal/transport/httpserver/dto"
	"classichub-service/internal/validator"
)

// ArtistHandler handles roster, composer, follow and cheer requests.
type ArtistHandler struct {
	service   *service.ArtistService
	validator *validator.Validator
	logger    *zap.Logger
}

// NewArtistHandler creates a new ArtistHandler.
func NewArtistHandler(svc *service.ArtistService, v *validator.Validator, logger *zap.Logger) *ArtistHandler {
	return &ArtistHandler{
		service:   svc,
		validator: v,
		logger:    logger,
	}
}

// List handles GET /api/v1/artists?category=
func (h *ArtistHandler) List(c *fiber.Ctx) error {
	var req dto.ArtistListRequest
	if e := bind(h.validator, &req, c.QueryParser); e != nil {
		return badRequest(c, e)
	}

	result, err := h.service.List(c.UserContext(), domain.ArtistCategory(req.Category))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(dto.FromResult(result))
}

// Weekly handles GET /api/v1/artists/weekly
func (h *ArtistHandler) Weekly(c *fiber.Ctx) error {
	result, err := h.service.Weekly(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(dto.FromResult(result))
}

// Get handles GET /api/v1/artists/:id
func (h *ArtistHandler) Get(c *fiber.Ctx) error {
	id, e := pathID(c, "id")
	if e != nil {
		return badRequest(c, e)
	}

	result, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	cheers := h.service.Cheers(id)

	return c.JSON(dto.ArtistDetailResponse{
		Envelope:   dto.FromResult(result),
		Followed:   h.service.IsFollowed(id),
		Cheers:     cheers,
		CheerCount: len(cheers),
	})
}

// ToggleFollow handles POST /api/v1/artists/:id/follow
func (h *ArtistHandler) ToggleFollow(c *fiber.Ctx) error {
	id, e := pathID(c, "id")
	if e != nil {
		return badRequest(c, e)
	}

	followed, err := h.service.ToggleFollow(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(dto.FollowResponse{ArtistID: id, Followed: followed})
}

// Follows handles GET /api/v1/follows
func (h *ArtistHandler) Follows(c *fiber.Ctx) error {
	return c.JSON(dto.FollowsResponse{ArtistIDs: h.service.Follows()})
}

// Cheers handles GET /api/v1/artists/:id/cheers
func (h *ArtistHandler) Cheers(c *fiber.Ctx) error {
	id, e := pathID(c, "id")
	if e != nil {
		return badRequest(c, e)
	}

	return c.JSON(dto.CheersResponse{ArtistID: id, Cheers: h.service.Cheers(id)})
}

// AddCheer handles POST /api/v1/artists/:id/cheers
func (h *ArtistHandler) AddCheer(c *fiber.Ctx) error {
	id, e := pathID(c, "id")
	if e != nil {
		return badRequest(c, e)
	}

	var req dto.CheerRequest
	if e := bind(h.validator, &req, c.BodyParser); e != nil {
		return badRequest(c, e)
	}

	msg, err := h.service.AddCheer(c.UserContext(), id, req.Author, req.Message)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.Status(fiber.StatusCreated).JSON(msg)
}

// DeleteCheer handles DELETE /api/v1/cheers/:id
func (h *ArtistHandler) DeleteCheer(c *fiber.Ctx) error {
	id, e := pathID(c, "id")
	if e != nil {
		return badRequest(c, e)
	}

	if err := h.service.DeleteCheer(c.UserContext(), id); err != nil {
		return respondError(c, h.logger, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Composers handles GET /api/v1/composers
func (h *ArtistHandler) Composers(c *fiber.Ctx) error {
	result, err := h.service.PopularComposers(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(dto.FromResult(result))
}

// Works handles GET /api/v1/composers/:id/works
func (h *ArtistHandler) Works(c *fiber.Ctx) error {
	id, e := pathID(c, "id")
	if e != nil {
		return badRequest(c, e)
	}

	result, err := h.service.Works(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(dto.FromResult(result))
}
