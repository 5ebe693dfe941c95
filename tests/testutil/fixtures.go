package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/dkoleva/modelhub-api/internal/database"
	"github.com/dkoleva/modelhub-api/internal/models"
	"github.com/dkoleva/modelhub-api/internal/services"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// UserOption configures a test user
type UserOption func(*models.User)

// WithEmail sets the user email
func WithEmail(email string) UserOption {
	return func(u *models.User) { u.Email = email }
}

// WithRole sets the user role
func WithRole(role string) UserOption {
	return func(u *models.User) { u.Role = role }
}

// AsAdmin marks the user as an admin
func AsAdmin() UserOption {
	return WithRole(models.RoleAdmin)
}

// WithName sets the user name
func WithName(first, last string) UserOption {
	return func(u *models.User) {
		u.FirstName = first
		u.LastName = last
	}
}

// CreateUser creates a test user with default values and password "password123"
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash fixture password: %v", err)
	}
	passwordHash := string(hash)

	user := &models.User{
		Email:        fmt.Sprintf("user%d@example.com", f.counter),
		PasswordHash: &passwordHash,
		FirstName:    "Test",
		LastName:     fmt.Sprintf("User%d", f.counter),
		Role:         models.RoleUser,
	}

	for _, opt := range opts {
		opt(user)
	}

	ctx := context.Background()
	err = f.db.Pool.QueryRow(ctx, `
		INSERT INTO users (email, phone, password_hash, first_name, last_name, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, user.Email, user.Phone, user.PasswordHash, user.FirstName, user.LastName, user.Role).Scan(
		&user.ID, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// ListingOption configures a test listing
type ListingOption func(*models.Listing)

// WithListingName sets the listing name and regenerates its slug
func WithListingName(name string) ListingOption {
	return func(l *models.Listing) {
		l.Name = name
		l.Slug = services.Slugify(name)
	}
}

// WithSlug overrides the listing slug
func WithSlug(slug string) ListingOption {
	return func(l *models.Listing) { l.Slug = slug }
}

// WithStatus sets the review status
func WithStatus(status models.ListingStatus) ListingOption {
	return func(l *models.Listing) { l.Status = status }
}

// Approved marks the listing as approved
func Approved() ListingOption {
	return WithStatus(models.StatusApproved)
}

// WithCategory sets the listing category
func WithCategory(category string) ListingOption {
	return func(l *models.Listing) { l.Category = category }
}

// WithPricing sets the pricing model
func WithPricing(pricing models.Pricing) ListingOption {
	return func(l *models.Listing) { l.Pricing = pricing }
}

// WithTags sets the listing tags
func WithTags(tags ...string) ListingOption {
	return func(l *models.Listing) { l.Tags = tags }
}

// WithTrendingScore sets the trending score
func WithTrendingScore(score int) ListingOption {
	return func(l *models.Listing) { l.TrendingScore = score }
}

// Featured marks the listing as featured
func Featured() ListingOption {
	return func(l *models.Listing) { l.Featured = true }
}

// WithRejectionReason sets the status to rejected with a reason
func WithRejectionReason(reason string) ListingOption {
	return func(l *models.Listing) {
		l.Status = models.StatusRejected
		l.RejectionReason = &reason
	}
}

// CreateListing creates a test listing owned by ownerID, pending by default
func (f *Fixtures) CreateListing(t *testing.T, ownerID uuid.UUID, opts ...ListingOption) *models.Listing {
	t.Helper()
	f.counter++

	name := fmt.Sprintf("Test Model %d", f.counter)
	listing := &models.Listing{
		Name:             name,
		Slug:             services.Slugify(name),
		ShortDescription: "A model used in tests",
		Category:         "chat",
		Provider:         "Test Provider",
		Pricing:          models.PricingFreemium,
		Tags:             []string{},
		Capabilities:     []string{},
		BestFor:          []string{},
		Features:         []string{},
		ExamplePrompts:   []string{},
		Status:           models.StatusPending,
		UploadedBy:       ownerID,
	}

	for _, opt := range opts {
		opt(listing)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO listings (name, slug, short_description, long_description, category, provider, pricing, model_type, external_url, tags, capabilities, best_for, features, example_prompts, trending_score, featured, status, rejection_reason, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id, created_at, updated_at
	`, listing.Name, listing.Slug, listing.ShortDescription, listing.LongDescription,
		listing.Category, listing.Provider, listing.Pricing, listing.ModelType,
		listing.ExternalURL, listing.Tags, listing.Capabilities, listing.BestFor,
		listing.Features, listing.ExamplePrompts, listing.TrendingScore,
		listing.Featured, listing.Status, listing.RejectionReason, listing.UploadedBy,
	).Scan(&listing.ID, &listing.CreatedAt, &listing.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to create listing: %v", err)
	}

	return listing
}
