package dto

import (
	"time"

	"github.com/dkoleva/modelhub-api/internal/models"
	"github.com/google/uuid"
)

type SubmitListingRequest struct {
	Name             string   `json:"name"`
	ShortDescription string   `json:"short_description"`
	LongDescription  *string  `json:"long_description,omitempty"`
	Category         string   `json:"category"`
	Provider         string   `json:"provider"`
	Pricing          string   `json:"pricing,omitempty"`
	ModelType        *string  `json:"model_type,omitempty"`
	ExternalURL      *string  `json:"external_url,omitempty"`
	Tags             []string `json:"tags,omitempty"`
	Capabilities     []string `json:"capabilities,omitempty"`
	BestFor          []string `json:"best_for,omitempty"`
	Features         []string `json:"features,omitempty"`
	ExamplePrompts   []string `json:"example_prompts,omitempty"`
}

type SetStatusRequest struct {
	Status          string `json:"status"`
	RejectionReason string `json:"rejection_reason,omitempty"`
}

type OwnerResponse struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email,omitempty"`
}

// ListingResponse is the public and my-models projection: no rejection
// reason, owner reduced to a display name.
type ListingResponse struct {
	ID               uuid.UUID      `json:"id"`
	Name             string         `json:"name"`
	Slug             string         `json:"slug"`
	ShortDescription string         `json:"short_description"`
	LongDescription  *string        `json:"long_description,omitempty"`
	Category         string         `json:"category"`
	Provider         string         `json:"provider"`
	Pricing          string         `json:"pricing"`
	ModelType        *string        `json:"model_type,omitempty"`
	ExternalURL      *string        `json:"external_url,omitempty"`
	Tags             []string       `json:"tags"`
	Capabilities     []string       `json:"capabilities"`
	BestFor          []string       `json:"best_for"`
	Features         []string       `json:"features"`
	ExamplePrompts   []string       `json:"example_prompts"`
	Rating           float64        `json:"rating"`
	ReviewsCount     int            `json:"reviews_count"`
	InstallsCount    int            `json:"installs_count"`
	TrendingScore    int            `json:"trending_score"`
	Featured         bool           `json:"featured"`
	Status           string         `json:"status"`
	Owner            *OwnerResponse `json:"owner,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// AdminListingResponse additionally exposes the rejection reason and the
// owner's email.
type AdminListingResponse struct {
	ListingResponse
	RejectionReason *string `json:"rejection_reason,omitempty"`
}

func NewListingResponse(l *models.Listing) ListingResponse {
	var owner *OwnerResponse
	if l.Owner != nil {
		owner = &OwnerResponse{
			ID:        l.Owner.ID,
			FirstName: l.Owner.FirstName,
			LastName:  l.Owner.LastName,
			Email:     l.Owner.Email,
		}
	}
	return ListingResponse{
		ID:               l.ID,
		Name:             l.Name,
		Slug:             l.Slug,
		ShortDescription: l.ShortDescription,
		LongDescription:  l.LongDescription,
		Category:         l.Category,
		Provider:         l.Provider,
		Pricing:          string(l.Pricing),
		ModelType:        l.ModelType,
		ExternalURL:      l.ExternalURL,
		Tags:             l.Tags,
		Capabilities:     l.Capabilities,
		BestFor:          l.BestFor,
		Features:         l.Features,
		ExamplePrompts:   l.ExamplePrompts,
		Rating:           l.Rating,
		ReviewsCount:     l.ReviewsCount,
		InstallsCount:    l.InstallsCount,
		TrendingScore:    l.TrendingScore,
		Featured:         l.Featured,
		Status:           string(l.Status),
		Owner:            owner,
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}
}

func NewAdminListingResponse(l *models.Listing) AdminListingResponse {
	return AdminListingResponse{
		ListingResponse: NewListingResponse(l),
		RejectionReason: l.RejectionReason,
	}
}

type PageInfo struct {
	CurrentPage int  `json:"current_page"`
	TotalPages  int  `json:"total_pages"`
	TotalModels int  `json:"total_models"`
	HasNext     bool `json:"has_next"`
	HasPrev     bool `json:"has_prev"`
}

func NewPageInfo(page, limit, total int) PageInfo {
	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return PageInfo{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalModels: total,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}
}

type ListingsPageResponse struct {
	Models     []ListingResponse `json:"models"`
	Pagination PageInfo          `json:"pagination"`
}

type AdminListingsPageResponse struct {
	Models     []AdminListingResponse `json:"models"`
	Pagination PageInfo               `json:"pagination"`
}

// ValidationErrorResponse itemizes rejected payload fields.
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}
