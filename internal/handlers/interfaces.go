package handlers

import (
	"context"
	"time"

	"github.com/dkoleva/modelhub-api/internal/models"
	"github.com/dkoleva/modelhub-api/internal/oauth"
	"github.com/dkoleva/modelhub-api/internal/services"
	"github.com/google/uuid"
)

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	FindOrCreateFromOAuth(ctx context.Context, info *oauth.UserInfo) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, firstName, lastName string) (*models.User, error)
}

// ListingServiceInterface defines the methods used by handlers from ListingService
type ListingServiceInterface interface {
	Create(ctx context.Context, ownerID uuid.UUID, in services.ListingInput) (*models.Listing, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, in services.ListingInput) (*models.Listing, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	GetApproved(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Listing, error)
	List(ctx context.Context, filter services.ListingFilter, page services.Page) ([]models.Listing, int, error)
	AdminSetStatus(ctx context.Context, id uuid.UUID, status models.ListingStatus, reason string) (*models.Listing, error)
}

// TokenServiceInterface defines the methods used by handlers from TokenService
type TokenServiceInterface interface {
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	ValidateRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
}

// JWTServiceInterface defines the methods used by handlers from JWTService
type JWTServiceInterface interface {
	GenerateTokenPair(userID uuid.UUID, email, role string) (*services.TokenPair, error)
	ValidateAccessToken(tokenString string) (*services.Claims, error)
	ValidateRefreshToken(tokenString string) (uuid.UUID, error)
}
