package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dkoleva/modelhub-api/internal/database"
	"github.com/dkoleva/modelhub-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const listingColumns = `id, name, slug, short_description, long_description, category, provider, pricing, model_type, external_url, tags, capabilities, best_for, features, example_prompts, rating, reviews_count, installs_count, trending_score, featured, status, rejection_reason, uploaded_by, created_at, updated_at`

const listingColumnsPrefixed = `l.id, l.name, l.slug, l.short_description, l.long_description, l.category, l.provider, l.pricing, l.model_type, l.external_url, l.tags, l.capabilities, l.best_for, l.features, l.example_prompts, l.rating, l.reviews_count, l.installs_count, l.trending_score, l.featured, l.status, l.rejection_reason, l.uploaded_by, l.created_at, l.updated_at`

var externalURLPattern = regexp.MustCompile(`^https?://\S+$`)

type ListingService struct {
	db    *database.DB
	slugs *SlugService
}

func NewListingService(db *database.DB, slugs *SlugService) *ListingService {
	return &ListingService{db: db, slugs: slugs}
}

// ListingInput is the owner-editable portion of a listing.
type ListingInput struct {
	Name             string
	ShortDescription string
	LongDescription  *string
	Category         string
	Provider         string
	Pricing          models.Pricing
	ModelType        *string
	ExternalURL      *string
	Tags             []string
	Capabilities     []string
	BestFor          []string
	Features         []string
	ExamplePrompts   []string
}

func validateListingInput(in *ListingInput) error {
	ve := newValidationError()

	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		ve.add("name", "name is required")
	} else if len(in.Name) > 100 {
		ve.add("name", "name must be at most 100 characters")
	}

	if strings.TrimSpace(in.ShortDescription) == "" {
		ve.add("shortDescription", "short description is required")
	} else if len(in.ShortDescription) > 200 {
		ve.add("shortDescription", "short description must be at most 200 characters")
	}

	if in.LongDescription != nil && len(*in.LongDescription) > 2000 {
		ve.add("longDescription", "long description must be at most 2000 characters")
	}

	if !models.ValidCategory(in.Category) {
		ve.add("category", "category is not one of the supported categories")
	}

	if strings.TrimSpace(in.Provider) == "" {
		ve.add("provider", "provider is required")
	} else if len(in.Provider) > 50 {
		ve.add("provider", "provider must be at most 50 characters")
	}

	if in.Pricing == "" {
		in.Pricing = models.PricingFreemium
	} else if !in.Pricing.Valid() {
		ve.add("pricing", "pricing must be one of free, freemium, paid")
	}

	if in.ModelType != nil && len(*in.ModelType) > 50 {
		ve.add("modelType", "model type must be at most 50 characters")
	}

	if in.ExternalURL != nil && *in.ExternalURL != "" && !externalURLPattern.MatchString(*in.ExternalURL) {
		ve.add("externalUrl", "external URL must start with http:// or https://")
	}

	for _, tag := range in.Tags {
		if len(tag) > 30 {
			ve.add("tags", "tags must be at most 30 characters each")
			break
		}
	}
	for _, capability := range in.Capabilities {
		if !models.ValidCapability(capability) {
			ve.add("capabilities", fmt.Sprintf("unknown capability %q", capability))
			break
		}
	}
	for _, item := range in.BestFor {
		if len(item) > 50 {
			ve.add("bestFor", "best-for entries must be at most 50 characters each")
			break
		}
	}
	for _, item := range in.Features {
		if len(item) > 100 {
			ve.add("features", "features must be at most 100 characters each")
			break
		}
	}
	for _, prompt := range in.ExamplePrompts {
		if len(prompt) > 200 {
			ve.add("examplePrompts", "example prompts must be at most 200 characters each")
			break
		}
	}

	in.Tags = orEmpty(in.Tags)
	in.Capabilities = orEmpty(in.Capabilities)
	in.BestFor = orEmpty(in.BestFor)
	in.Features = orEmpty(in.Features)
	in.ExamplePrompts = orEmpty(in.ExamplePrompts)

	return ve.orNil()
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func listingFields(l *models.Listing) []any {
	return []any{
		&l.ID, &l.Name, &l.Slug, &l.ShortDescription, &l.LongDescription,
		&l.Category, &l.Provider, &l.Pricing, &l.ModelType, &l.ExternalURL,
		&l.Tags, &l.Capabilities, &l.BestFor, &l.Features, &l.ExamplePrompts,
		&l.Rating, &l.ReviewsCount, &l.InstallsCount, &l.TrendingScore, &l.Featured,
		&l.Status, &l.RejectionReason, &l.UploadedBy, &l.CreatedAt, &l.UpdatedAt,
	}
}

// Create validates a submission, rejects a duplicate name for the same owner,
// derives a unique slug and persists the listing in pending state. A slug
// race lost to a concurrent create is retried once before surfacing.
func (s *ListingService) Create(ctx context.Context, ownerID uuid.UUID, in ListingInput) (*models.Listing, error) {
	if err := validateListingInput(&in); err != nil {
		return nil, err
	}

	var exists bool
	err := s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM listings WHERE uploaded_by = $1 AND name = $2)
	`, ownerID, in.Name).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate name: %w", err)
	}
	if exists {
		return nil, ErrDuplicateName
	}

	slug, err := s.slugs.Generate(ctx, in.Name, uuid.Nil)
	if err != nil {
		return nil, err
	}

	listing, err := s.insert(ctx, ownerID, in, slug)
	if err == nil {
		return listing, nil
	}
	if !database.IsUniqueViolation(err, "listings_slug_key") {
		return nil, err
	}

	// a concurrent create claimed the slug between probe and insert
	slug, err = s.slugs.Generate(ctx, in.Name, uuid.Nil)
	if err != nil {
		return nil, err
	}
	listing, err = s.insert(ctx, ownerID, in, slug)
	if err != nil {
		if database.IsUniqueViolation(err, "listings_slug_key") {
			return nil, ErrDuplicateSlug
		}
		return nil, err
	}
	return listing, nil
}

func (s *ListingService) insert(ctx context.Context, ownerID uuid.UUID, in ListingInput, slug string) (*models.Listing, error) {
	var listing models.Listing
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO listings (name, slug, short_description, long_description, category, provider, pricing, model_type, external_url, tags, capabilities, best_for, features, example_prompts, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING `+listingColumns+`
	`, in.Name, slug, in.ShortDescription, in.LongDescription, in.Category,
		in.Provider, in.Pricing, in.ModelType, in.ExternalURL,
		in.Tags, in.Capabilities, in.BestFor, in.Features, in.ExamplePrompts,
		ownerID,
	).Scan(listingFields(&listing)...)
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// Update applies an owner edit. Foreign ownership is reported as not-found so
// existence is not leaked; approved listings reject the edit outright; a
// rejected listing goes back to pending with its reason cleared. A concurrent
// admin transition racing this write is last-write-wins.
func (s *ListingService) Update(ctx context.Context, ownerID, id uuid.UUID, in ListingInput) (*models.Listing, error) {
	current, err := s.getByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	if current.UploadedBy != ownerID {
		return nil, ErrListingNotFound
	}
	if current.Status == models.StatusApproved {
		return nil, ErrListingApproved
	}

	if err := validateListingInput(&in); err != nil {
		return nil, err
	}

	slug := current.Slug
	if in.Name != current.Name {
		slug, err = s.slugs.Generate(ctx, in.Name, id)
		if err != nil {
			return nil, err
		}
	}

	status := current.Status
	if status == models.StatusRejected {
		status = models.StatusPending
	}

	listing, err := s.applyUpdate(ctx, id, in, slug, status)
	if err == nil {
		return listing, nil
	}
	if !database.IsUniqueViolation(err, "listings_slug_key") {
		return nil, err
	}

	slug, err = s.slugs.Generate(ctx, in.Name, id)
	if err != nil {
		return nil, err
	}
	listing, err = s.applyUpdate(ctx, id, in, slug, status)
	if err != nil {
		if database.IsUniqueViolation(err, "listings_slug_key") {
			return nil, ErrDuplicateSlug
		}
		return nil, err
	}
	return listing, nil
}

func (s *ListingService) applyUpdate(ctx context.Context, id uuid.UUID, in ListingInput, slug string, status models.ListingStatus) (*models.Listing, error) {
	var listing models.Listing
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE listings SET
			name = $1, slug = $2, short_description = $3, long_description = $4,
			category = $5, provider = $6, pricing = $7, model_type = $8,
			external_url = $9, tags = $10, capabilities = $11, best_for = $12,
			features = $13, example_prompts = $14, status = $15,
			rejection_reason = CASE WHEN $15 = 'rejected' THEN rejection_reason ELSE NULL END,
			updated_at = NOW()
		WHERE id = $16
		RETURNING `+listingColumns+`
	`, in.Name, slug, in.ShortDescription, in.LongDescription, in.Category,
		in.Provider, in.Pricing, in.ModelType, in.ExternalURL,
		in.Tags, in.Capabilities, in.BestFor, in.Features, in.ExamplePrompts,
		status, id,
	).Scan(listingFields(&listing)...)
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// Delete removes a listing owned by ownerID. The uploaded_by predicate makes
// a foreign delete indistinguishable from a missing listing.
func (s *ListingService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	tag, err := s.db.Pool.Exec(ctx, `
		DELETE FROM listings WHERE id = $1 AND uploaded_by = $2
	`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrListingNotFound
	}
	return nil
}

func (s *ListingService) getByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	err := s.db.Pool.QueryRow(ctx, `
		SELECT `+listingColumns+` FROM listings WHERE id = $1
	`, id).Scan(listingFields(&listing)...)
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// GetApproved fetches a single approved listing with its owner's name
// attached. Non-approved listings are not publicly visible.
func (s *ListingService) GetApproved(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	var owner models.OwnerSummary
	fields := append(listingFields(&listing), &owner.FirstName, &owner.LastName)
	err := s.db.Pool.QueryRow(ctx, `
		SELECT `+listingColumnsPrefixed+`, u.first_name, u.last_name
		FROM listings l
		JOIN users u ON u.id = l.uploaded_by
		WHERE l.id = $1 AND l.status = 'approved'
	`, id).Scan(fields...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	owner.ID = listing.UploadedBy
	listing.Owner = &owner
	return &listing, nil
}

// ListByOwner is the derived my-models view: ownership is recomputed from
// uploaded_by on every call rather than kept as a back-reference array.
func (s *ListingService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Listing, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+listingColumns+` FROM listings
		WHERE uploaded_by = $1
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		var l models.Listing
		if err := rows.Scan(listingFields(&l)...); err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// ListingFilter narrows a browse query. An empty Status means no status
// predicate, which only the admin listing uses; public queries always pass
// StatusApproved.
type ListingFilter struct {
	Status            models.ListingStatus
	Category          string
	Pricing           string
	Search            string
	IncludeOwnerEmail bool
}

type Page struct {
	Number int
	Size   int
}

func NormalizePage(page, limit int) Page {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return Page{Number: page, Size: limit}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// List runs the filtered, sorted, paginated browse query and reports the
// total match count alongside the page of items. Sort order is featured
// first, then trending score, then newest, with id as a stable tiebreak so
// pagination is reproducible.
func (s *ListingService) List(ctx context.Context, filter ListingFilter, page Page) ([]models.Listing, int, error) {
	var predicates []string
	var args []any

	if filter.Status != "" {
		args = append(args, filter.Status)
		predicates = append(predicates, fmt.Sprintf("l.status = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		predicates = append(predicates, fmt.Sprintf("l.category = $%d", len(args)))
	}
	if filter.Pricing != "" {
		args = append(args, filter.Pricing)
		predicates = append(predicates, fmt.Sprintf("l.pricing = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, filter.Search)
		n := len(args)
		predicates = append(predicates, fmt.Sprintf(
			`(l.name ILIKE '%%' || $%d || '%%' OR l.short_description ILIKE '%%' || $%d || '%%' OR EXISTS (SELECT 1 FROM unnest(l.tags) AS tag WHERE tag ILIKE '%%' || $%d || '%%'))`,
			n, n, n,
		))
	}

	where := ""
	if len(predicates) > 0 {
		where = " WHERE " + strings.Join(predicates, " AND ")
	}

	var total int
	err := s.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM listings l`+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count listings: %w", err)
	}

	args = append(args, page.Size, page.Offset())
	query := fmt.Sprintf(`
		SELECT `+listingColumnsPrefixed+`, u.first_name, u.last_name, u.email
		FROM listings l
		JOIN users u ON u.id = l.uploaded_by
		%s
		ORDER BY l.featured DESC, l.trending_score DESC, l.created_at DESC, l.id
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := s.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		var l models.Listing
		var owner models.OwnerSummary
		var email string
		fields := append(listingFields(&l), &owner.FirstName, &owner.LastName, &email)
		if err := rows.Scan(fields...); err != nil {
			return nil, 0, err
		}
		owner.ID = l.UploadedBy
		if filter.IncludeOwnerEmail {
			owner.Email = email
		}
		l.Owner = &owner
		listings = append(listings, l)
	}
	return listings, total, rows.Err()
}

// AdminSetStatus applies an explicit review transition. Any current state may
// move to any of the three states; moving to rejected requires a reason and
// any other target clears it.
func (s *ListingService) AdminSetStatus(ctx context.Context, id uuid.UUID, status models.ListingStatus, reason string) (*models.Listing, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	reason = strings.TrimSpace(reason)
	var reasonArg *string
	if status == models.StatusRejected {
		if reason == "" {
			return nil, ErrReasonRequired
		}
		reasonArg = &reason
	}

	var listing models.Listing
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE listings SET status = $1, rejection_reason = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING `+listingColumns+`
	`, status, reasonArg, id).Scan(listingFields(&listing)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return &listing, nil
}
