package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/dkoleva/modelhub-api/internal/database"
	"github.com/google/uuid"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify reduces a display name to its URL-safe base form: lowercase, runs
// of anything outside [a-z0-9] collapsed to a single hyphen, edges trimmed.
func Slugify(name string) string {
	slug := strings.ToLower(name)
	slug = nonSlugChars.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		// names made entirely of symbols still need a non-empty slug
		slug = "model"
	}
	return slug
}

type SlugService struct {
	db *database.DB
}

func NewSlugService(db *database.DB) *SlugService {
	return &SlugService{db: db}
}

// Generate derives a unique slug for name, probing storage and appending a
// numeric suffix until the candidate is free. excludeID keeps a listing from
// colliding with its own row when its name is unchanged on update; pass
// uuid.Nil on create.
func (s *SlugService) Generate(ctx context.Context, name string, excludeID uuid.UUID) (string, error) {
	base := Slugify(name)

	candidate := base
	for counter := 1; ; counter++ {
		var exists bool
		err := s.db.Pool.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM listings WHERE slug = $1 AND id <> $2)
		`, candidate, excludeID).Scan(&exists)
		if err != nil {
			return "", fmt.Errorf("failed to probe slug %q: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, counter)
	}
}
