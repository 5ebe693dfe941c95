package models

import (
	"time"

	"github.com/google/uuid"
)

type ListingStatus string

const (
	StatusPending  ListingStatus = "pending"
	StatusApproved ListingStatus = "approved"
	StatusRejected ListingStatus = "rejected"
)

func (s ListingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type Pricing string

const (
	PricingFree     Pricing = "free"
	PricingFreemium Pricing = "freemium"
	PricingPaid     Pricing = "paid"
)

func (p Pricing) Valid() bool {
	switch p {
	case PricingFree, PricingFreemium, PricingPaid:
		return true
	}
	return false
}

// Categories a listing can be filed under.
var Categories = []string{
	"chat",
	"image-generation",
	"video-generation",
	"audio-speech",
	"music",
	"code-assistant",
	"writing",
	"productivity",
	"research",
	"education",
	"marketing",
	"design",
	"data-analysis",
	"translation",
	"search",
	"agents",
	"developer-tools",
	"other",
}

// Capabilities a model can declare.
var Capabilities = []string{"text", "image", "audio", "video", "code", "agent"}

func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

func ValidCapability(c string) bool {
	for _, v := range Capabilities {
		if v == c {
			return true
		}
	}
	return false
}

// OwnerSummary is the projection of the uploading user attached to public
// listing views. Email is only populated on admin queries.
type OwnerSummary struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email,omitempty"`
}

type Listing struct {
	ID               uuid.UUID     `json:"id"`
	Name             string        `json:"name"`
	Slug             string        `json:"slug"`
	ShortDescription string        `json:"short_description"`
	LongDescription  *string       `json:"long_description,omitempty"`
	Category         string        `json:"category"`
	Provider         string        `json:"provider"`
	Pricing          Pricing       `json:"pricing"`
	ModelType        *string       `json:"model_type,omitempty"`
	ExternalURL      *string       `json:"external_url,omitempty"`
	Tags             []string      `json:"tags"`
	Capabilities     []string      `json:"capabilities"`
	BestFor          []string      `json:"best_for"`
	Features         []string      `json:"features"`
	ExamplePrompts   []string      `json:"example_prompts"`
	Rating           float64       `json:"rating"`
	ReviewsCount     int           `json:"reviews_count"`
	InstallsCount    int           `json:"installs_count"`
	TrendingScore    int           `json:"trending_score"`
	Featured         bool          `json:"featured"`
	Status           ListingStatus `json:"status"`
	RejectionReason  *string       `json:"rejection_reason,omitempty"`
	UploadedBy       uuid.UUID     `json:"uploaded_by"`
	Owner            *OwnerSummary `json:"owner,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}
