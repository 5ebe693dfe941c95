package integration

import (
	"context"
	"testing"

	"github.com/dkoleva/modelhub-api/internal/models"
	"github.com/dkoleva/modelhub-api/internal/services"
	"github.com/dkoleva/modelhub-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newListingService(tdb *testutil.TestDB) *services.ListingService {
	return services.NewListingService(tdb.DB, services.NewSlugService(tdb.DB))
}

func submission(name string) services.ListingInput {
	return services.ListingInput{
		Name:             name,
		ShortDescription: "fast inference",
		Category:         "chat",
		Provider:         "Acme AI",
		Tags:             []string{"reasoning"},
		Capabilities:     []string{"text"},
	}
}

func TestListingService_Integration_SubmitReviewResubmit(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := newListingService(tdb)
	ctx := context.Background()

	owner := fixtures.CreateUser(t)

	// submit: lands pending with a derived slug
	listing, err := svc.Create(ctx, owner.ID, submission("GPT 4 Turbo!"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, listing.Status)
	assert.Equal(t, "gpt-4-turbo", listing.Slug)
	assert.Nil(t, listing.RejectionReason)

	// reject with a reason
	rejected, err := svc.AdminSetStatus(ctx, listing.ID, models.StatusRejected, "too niche")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "too niche", *rejected.RejectionReason)

	// owner edit resubmits: back to pending, reason cleared
	resubmitted, err := svc.Update(ctx, owner.ID, listing.ID, submission("GPT 4 Turbo!"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, resubmitted.Status)
	assert.Nil(t, resubmitted.RejectionReason)

	// approve, then the owner can no longer edit
	_, err = svc.AdminSetStatus(ctx, listing.ID, models.StatusApproved, "")
	require.NoError(t, err)
	_, err = svc.Update(ctx, owner.ID, listing.ID, submission("GPT 4 Turbo!"))
	assert.ErrorIs(t, err, services.ErrListingApproved)
}

func TestListingService_Integration_SlugCollisionAcrossOwners(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := newListingService(tdb)
	ctx := context.Background()

	alice := fixtures.CreateUser(t)
	bob := fixtures.CreateUser(t)

	first, err := svc.Create(ctx, alice.ID, submission("Bot X"))
	require.NoError(t, err)
	assert.Equal(t, "bot-x", first.Slug)

	// same name from another owner is allowed but gets a suffixed slug
	second, err := svc.Create(ctx, bob.ID, submission("Bot X"))
	require.NoError(t, err)
	assert.Equal(t, "bot-x-1", second.Slug)

	third, err := svc.Create(ctx, fixtures.CreateUser(t).ID, submission("Bot X"))
	require.NoError(t, err)
	assert.Equal(t, "bot-x-2", third.Slug)
}

func TestListingService_Integration_DuplicateNameSameOwner(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := newListingService(tdb)
	ctx := context.Background()

	owner := fixtures.CreateUser(t)

	_, err := svc.Create(ctx, owner.ID, submission("Bot X"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, owner.ID, submission("Bot X"))
	assert.ErrorIs(t, err, services.ErrDuplicateName)
}

func TestListingService_Integration_RenameKeepsSlugUnique(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := newListingService(tdb)
	ctx := context.Background()

	owner := fixtures.CreateUser(t)

	listing, err := svc.Create(ctx, owner.ID, submission("Bot X"))
	require.NoError(t, err)

	// renaming and renaming back must not collide with the listing's own slug
	renamed, err := svc.Update(ctx, owner.ID, listing.ID, submission("Bot Y"))
	require.NoError(t, err)
	assert.Equal(t, "bot-y", renamed.Slug)

	back, err := svc.Update(ctx, owner.ID, listing.ID, submission("Bot X"))
	require.NoError(t, err)
	assert.Equal(t, "bot-x", back.Slug)
}

func TestListingService_Integration_OwnershipMasked(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := newListingService(tdb)
	ctx := context.Background()

	owner := fixtures.CreateUser(t)
	stranger := fixtures.CreateUser(t)
	listing := fixtures.CreateListing(t, owner.ID)

	_, err := svc.Update(ctx, stranger.ID, listing.ID, submission("Hijacked"))
	assert.ErrorIs(t, err, services.ErrListingNotFound)

	err = svc.Delete(ctx, stranger.ID, listing.ID)
	assert.ErrorIs(t, err, services.ErrListingNotFound)

	// still there for the real owner
	mine, err := svc.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestListingService_Integration_PublicListOnlyApproved(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := newListingService(tdb)
	ctx := context.Background()

	owner := fixtures.CreateUser(t, testutil.WithName("Ada", "Lovelace"))
	fixtures.CreateListing(t, owner.ID, testutil.Approved(), testutil.WithListingName("Approved Model"))
	fixtures.CreateListing(t, owner.ID, testutil.WithListingName("Pending Model"))
	fixtures.CreateListing(t, owner.ID, testutil.WithRejectionReason("too niche"), testutil.WithListingName("Rejected Model"))

	listings, total, err := svc.List(ctx,
		services.ListingFilter{Status: models.StatusApproved},
		services.NormalizePage(1, 20),
	)

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, listings, 1)
	assert.Equal(t, "Approved Model", listings[0].Name)
	require.NotNil(t, listings[0].Owner)
	assert.Equal(t, "Ada", listings[0].Owner.FirstName)
	assert.Empty(t, listings[0].Owner.Email)

	// the detail endpoint behaves the same way
	pending := fixtures.CreateListing(t, owner.ID, testutil.WithListingName("Another Pending"))
	_, err = svc.GetApproved(ctx, pending.ID)
	assert.ErrorIs(t, err, services.ErrListingNotFound)
}

func TestListingService_Integration_SearchAndFilters(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := newListingService(tdb)
	ctx := context.Background()

	owner := fixtures.CreateUser(t)
	fixtures.CreateListing(t, owner.ID, testutil.Approved(),
		testutil.WithListingName("Reasoning Engine"), testutil.WithCategory("chat"))
	fixtures.CreateListing(t, owner.ID, testutil.Approved(),
		testutil.WithListingName("Image Studio"), testutil.WithCategory("image-generation"),
		testutil.WithPricing(models.PricingPaid))
	fixtures.CreateListing(t, owner.ID, testutil.Approved(),
		testutil.WithListingName("Plain Bot"), testutil.WithTags("reasoning"))

	// search matches names and tags, case-insensitively
	matches, total, err := svc.List(ctx,
		services.ListingFilter{Status: models.StatusApproved, Search: "REASON"},
		services.NormalizePage(1, 20),
	)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, matches, 2)

	// category filter
	_, total, err = svc.List(ctx,
		services.ListingFilter{Status: models.StatusApproved, Category: "image-generation"},
		services.NormalizePage(1, 20),
	)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	// pricing filter
	_, total, err = svc.List(ctx,
		services.ListingFilter{Status: models.StatusApproved, Pricing: "paid"},
		services.NormalizePage(1, 20),
	)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestListingService_Integration_OrderingAndPagination(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := newListingService(tdb)
	ctx := context.Background()

	owner := fixtures.CreateUser(t)
	fixtures.CreateListing(t, owner.ID, testutil.Approved(),
		testutil.WithListingName("Quiet Model"))
	fixtures.CreateListing(t, owner.ID, testutil.Approved(),
		testutil.WithListingName("Trending Model"), testutil.WithTrendingScore(80))
	fixtures.CreateListing(t, owner.ID, testutil.Approved(),
		testutil.WithListingName("Featured Model"), testutil.Featured())

	page1, total, err := svc.List(ctx,
		services.ListingFilter{Status: models.StatusApproved},
		services.NormalizePage(1, 2),
	)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page1, 2)
	assert.Equal(t, "Featured Model", page1[0].Name)
	assert.Equal(t, "Trending Model", page1[1].Name)

	page2, _, err := svc.List(ctx,
		services.ListingFilter{Status: models.StatusApproved},
		services.NormalizePage(2, 2),
	)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, "Quiet Model", page2[0].Name)
}

func TestListingService_Integration_AdminQueue(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := newListingService(tdb)
	ctx := context.Background()

	owner := fixtures.CreateUser(t)
	fixtures.CreateListing(t, owner.ID)
	fixtures.CreateListing(t, owner.ID, testutil.Approved())
	fixtures.CreateListing(t, owner.ID, testutil.WithRejectionReason("too niche"))

	// no status filter sees everything, with owner emails
	all, total, err := svc.List(ctx,
		services.ListingFilter{IncludeOwnerEmail: true},
		services.NormalizePage(1, 20),
	)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	for _, l := range all {
		require.NotNil(t, l.Owner)
		assert.Equal(t, owner.Email, l.Owner.Email)
	}

	// narrowed to the pending queue
	_, total, err = svc.List(ctx,
		services.ListingFilter{Status: models.StatusPending, IncludeOwnerEmail: true},
		services.NormalizePage(1, 20),
	)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestListingService_Integration_Delete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := newListingService(tdb)
	ctx := context.Background()

	owner := fixtures.CreateUser(t)
	listing := fixtures.CreateListing(t, owner.ID, testutil.Approved())

	// owners can delete in any state, approved included
	require.NoError(t, svc.Delete(ctx, owner.ID, listing.ID))

	mine, err := svc.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)
}
