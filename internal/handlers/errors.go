package handlers

import (
	"errors"

	"github.com/dkoleva/modelhub-api/internal/database"
	"github.com/dkoleva/modelhub-api/internal/services"
	"github.com/dkoleva/modelhub-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

// respondListingError maps listing service failures onto HTTP responses.
// Ownership failures arrive as not-found so callers cannot probe for
// existence.
func respondListingError(c *drift.Context, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		_ = c.JSON(400, dto.ValidationErrorResponse{Error: "validation failed", Fields: ve.Fields})
	case errors.Is(err, services.ErrListingNotFound):
		c.NotFound("model not found")
	case errors.Is(err, services.ErrListingApproved):
		_ = c.JSON(409, map[string]string{"error": "approved models cannot be edited"})
	case errors.Is(err, services.ErrDuplicateName):
		_ = c.JSON(409, map[string]string{"error": "you already have a model with this name"})
	case errors.Is(err, services.ErrDuplicateSlug):
		_ = c.JSON(409, map[string]string{"error": "a model with a conflicting slug was just created, please retry"})
	case errors.Is(err, services.ErrInvalidStatus):
		c.BadRequest("status must be one of pending, approved, rejected")
	case errors.Is(err, services.ErrReasonRequired):
		c.BadRequest("a rejection reason is required when rejecting a model")
	case database.IsUnavailable(err):
		_ = c.JSON(503, map[string]string{"error": "storage temporarily unavailable"})
	default:
		c.InternalServerError("internal error")
	}
}
