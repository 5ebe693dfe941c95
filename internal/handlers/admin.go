package handlers

import (
	"context"

	"github.com/dkoleva/modelhub-api/internal/models"
	"github.com/dkoleva/modelhub-api/internal/services"
	"github.com/dkoleva/modelhub-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type AdminHandler struct {
	listingService ListingServiceInterface
}

func NewAdminHandler(listingService ListingServiceInterface) *AdminHandler {
	return &AdminHandler{listingService: listingService}
}

// List exposes the moderation queue: any status, owner email included,
// rejection reasons visible.
func (h *AdminHandler) List(c *drift.Context) {
	status := models.ListingStatus(c.QueryParam("status"))
	if status != "" && !status.Valid() {
		c.BadRequest("status must be one of pending, approved, rejected")
		return
	}

	page := pageFromQuery(c)
	filter := services.ListingFilter{
		Status:            status,
		Category:          c.QueryParam("category"),
		Pricing:           c.QueryParam("pricing"),
		Search:            c.QueryParam("search"),
		IncludeOwnerEmail: true,
	}

	listings, total, err := h.listingService.List(context.Background(), filter, page)
	if err != nil {
		respondListingError(c, err)
		return
	}

	items := make([]dto.AdminListingResponse, len(listings))
	for i := range listings {
		items[i] = dto.NewAdminListingResponse(&listings[i])
	}

	_ = c.JSON(200, dto.AdminListingsPageResponse{
		Models:     items,
		Pagination: dto.NewPageInfo(page.Number, page.Size, total),
	})
}

func (h *AdminHandler) SetStatus(c *drift.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid model id")
		return
	}

	var req dto.SetStatusRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	listing, err := h.listingService.AdminSetStatus(
		context.Background(), id, models.ListingStatus(req.Status), req.RejectionReason,
	)
	if err != nil {
		respondListingError(c, err)
		return
	}

	_ = c.JSON(200, dto.NewAdminListingResponse(listing))
}
