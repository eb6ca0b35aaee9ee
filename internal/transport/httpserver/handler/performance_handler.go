package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"classichub-service/internal/app/service"
	"classichub-service/internal/transport/httpserver/dto"
	"classichub-service/internal/validator"
)

// PerformanceHandler handles performance catalog requests.
type PerformanceHandler struct {
	service   *service.PerformanceService
	validator *validator.Validator
	loc       *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

// NewPerformanceHandler creates a new PerformanceHandler. Query dates are
// read in loc.
func NewPerformanceHandler(svc *service.PerformanceService, v *validator.Validator, loc *time.Location, logger *zap.Logger) *PerformanceHandler {
	if loc == nil {
		loc = time.UTC
	}

	return &PerformanceHandler{
		service:   svc,
		validator: v,
		loc:       loc,
		now:       time.Now,
		logger:    logger,
	}
}

// List handles GET /api/v1/performances
func (h *PerformanceHandler) List(c *fiber.Ctx) error {
	var req dto.PerformanceListRequest
	if e := bind(h.validator, &req, c.QueryParser); e != nil {
		return badRequest(c, e)
	}

	ctx := c.UserContext()
	q := req.ToQuery(h.loc)
	q.Normalize(h.now().In(h.loc))

	result, err := h.service.List(ctx, q, req.ToFilter())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if req.WithLocations {
		result.Data = h.service.WithLocations(ctx, result.Data)
	}

	return c.JSON(dto.FromPerformancePage(result, q))
}

// Detail handles GET /api/v1/performances/:id
func (h *PerformanceHandler) Detail(c *fiber.Ctx) error {
	id, e := pathID(c, "id")
	if e != nil {
		return badRequest(c, e)
	}

	perf, err := h.service.Detail(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(perf)
}

// Location handles GET /api/v1/performances/:id/location
func (h *PerformanceHandler) Location(c *fiber.Ctx) error {
	id, e := pathID(c, "id")
	if e != nil {
		return badRequest(c, e)
	}

	coords, err := h.service.Location(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(coords)
}
