package handlers

import (
	"context"
	"strconv"

	"github.com/dkoleva/modelhub-api/internal/middleware"
	"github.com/dkoleva/modelhub-api/internal/models"
	"github.com/dkoleva/modelhub-api/internal/services"
	"github.com/dkoleva/modelhub-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type ListingHandler struct {
	listingService ListingServiceInterface
}

func NewListingHandler(listingService ListingServiceInterface) *ListingHandler {
	return &ListingHandler{listingService: listingService}
}

func listingInputFromRequest(req dto.SubmitListingRequest) services.ListingInput {
	return services.ListingInput{
		Name:             req.Name,
		ShortDescription: req.ShortDescription,
		LongDescription:  req.LongDescription,
		Category:         req.Category,
		Provider:         req.Provider,
		Pricing:          models.Pricing(req.Pricing),
		ModelType:        req.ModelType,
		ExternalURL:      req.ExternalURL,
		Tags:             req.Tags,
		Capabilities:     req.Capabilities,
		BestFor:          req.BestFor,
		Features:         req.Features,
		ExamplePrompts:   req.ExamplePrompts,
	}
}

func pageFromQuery(c *drift.Context) services.Page {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return services.NormalizePage(page, limit)
}

// List is the public browse endpoint: approved listings only.
func (h *ListingHandler) List(c *drift.Context) {
	page := pageFromQuery(c)
	filter := services.ListingFilter{
		Status:   models.StatusApproved,
		Category: c.QueryParam("category"),
		Pricing:  c.QueryParam("pricing"),
		Search:   c.QueryParam("search"),
	}

	listings, total, err := h.listingService.List(context.Background(), filter, page)
	if err != nil {
		respondListingError(c, err)
		return
	}

	items := make([]dto.ListingResponse, len(listings))
	for i := range listings {
		items[i] = dto.NewListingResponse(&listings[i])
	}

	_ = c.JSON(200, dto.ListingsPageResponse{
		Models:     items,
		Pagination: dto.NewPageInfo(page.Number, page.Size, total),
	})
}

func (h *ListingHandler) Get(c *drift.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid model id")
		return
	}

	listing, err := h.listingService.GetApproved(context.Background(), id)
	if err != nil {
		respondListingError(c, err)
		return
	}

	_ = c.JSON(200, dto.NewListingResponse(listing))
}

func (h *ListingHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.SubmitListingRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	listing, err := h.listingService.Create(context.Background(), userID, listingInputFromRequest(req))
	if err != nil {
		respondListingError(c, err)
		return
	}

	_ = c.JSON(201, dto.NewListingResponse(listing))
}

func (h *ListingHandler) Update(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid model id")
		return
	}

	var req dto.SubmitListingRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	listing, err := h.listingService.Update(context.Background(), userID, id, listingInputFromRequest(req))
	if err != nil {
		respondListingError(c, err)
		return
	}

	_ = c.JSON(200, dto.NewListingResponse(listing))
}

func (h *ListingHandler) Delete(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid model id")
		return
	}

	if err := h.listingService.Delete(context.Background(), userID, id); err != nil {
		respondListingError(c, err)
		return
	}

	_ = c.JSON(200, map[string]string{"status": "deleted"})
}

// MyModels lists the caller's own submissions in every review state.
func (h *ListingHandler) MyModels(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	listings, err := h.listingService.ListByOwner(context.Background(), userID)
	if err != nil {
		respondListingError(c, err)
		return
	}

	items := make([]dto.ListingResponse, len(listings))
	for i := range listings {
		items[i] = dto.NewListingResponse(&listings[i])
	}

	_ = c.JSON(200, items)
}
