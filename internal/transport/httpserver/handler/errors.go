// Package handler provides HTTP handlers for the API.
package handler

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"classichub-service/internal/app/service"
	"classichub-service/internal/domain"
	"classichub-service/internal/store"
	"classichub-service/internal/transport/httpserver/dto"
	"classichub-service/internal/validator"
)

// maxIDLength matches the width of the id columns.
const maxIDLength = 64

// bind parses a request with parse and validates it. A non-nil result is the
// 400 body to send.
func bind(v *validator.Validator, req interface{}, parse func(interface{}) error) *dto.ErrorResponse {
	if err := parse(req); err != nil {
		return &dto.ErrorResponse{
			Error: "invalid request parameters",
			Code:  dto.CodeInvalidParams,
		}
	}

	if err := v.Validate(req); err != nil {
		return &dto.ErrorResponse{
			Error:   "validation failed",
			Code:    dto.CodeValidation,
			Details: err,
		}
	}

	return nil
}

// pathID reads a route id parameter.
func pathID(c *fiber.Ctx, name string) (string, *dto.ErrorResponse) {
	id := strings.TrimSpace(c.Params(name))
	if id == "" || len(id) > maxIDLength {
		return "", &dto.ErrorResponse{
			Error: name + " is missing or too long",
			Code:  dto.CodeInvalidParams,
		}
	}

	return id, nil
}

func badRequest(c *fiber.Ctx, body *dto.ErrorResponse) error {
	return c.Status(fiber.StatusBadRequest).JSON(body)
}

// respondError maps service errors to statuses. Fallback data never reaches
// here; an error means nothing at all could be shown.
func respondError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	status, body := errorResponse(err)
	if status == fiber.StatusInternalServerError {
		logger.Error("handler failed",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	return c.Status(status).JSON(body)
}

func errorResponse(err error) (int, dto.ErrorResponse) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Error: err.Error(), Code: dto.CodeNotFound}
	case errors.Is(err, service.ErrInvalidCategory):
		return fiber.StatusBadRequest, dto.ErrorResponse{Error: err.Error(), Code: dto.CodeInvalidCategory}
	case errors.Is(err, service.ErrUnknownSource):
		return fiber.StatusBadRequest, dto.ErrorResponse{Error: err.Error(), Code: dto.CodeUnknownSource}
	case errors.Is(err, store.ErrEmptyCheer), errors.Is(err, store.ErrCheerTooLong):
		return fiber.StatusBadRequest, dto.ErrorResponse{Error: err.Error(), Code: dto.CodeInvalidCheer}
	case errors.Is(err, domain.ErrUnavailable):
		return fiber.StatusServiceUnavailable, dto.ErrorResponse{Error: "data is unavailable, try again later", Code: dto.CodeUnavailable}
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout, dto.ErrorResponse{Error: "upstream took too long", Code: dto.CodeTimeout}
	case store.IsCancelled(err):
		return fiber.StatusServiceUnavailable, dto.ErrorResponse{Error: "request was cancelled", Code: dto.CodeCancelled}
	default:
		return fiber.StatusInternalServerError, dto.ErrorResponse{Error: "internal error", Code: dto.CodeInternal}
	}
}
