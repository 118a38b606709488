package models_test

import (
	"os"
	"strings"
	"testing"

	"github.com/vsfastfood/restaurant_backend/models"
	"github.com/vsfastfood/restaurant_backend/utils"
)

func TestHeroOfferDisplaySelection(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := setupIntegrationEnv(t)

	// No banner selected yet is a clean not-found, not a storage failure.
	if _, err := models.GetDisplayedHeroOffer(ctx); err != utils.ErrorRecordNotFound {
		t.Fatalf("expected ErrorRecordNotFound with no displayed offer, got %v", err)
	}

	first, err := models.CreateHeroOffer(ctx, &models.NewHeroOffer{Title: "Weekend Combo"})
	if err != nil {
		t.Fatalf("CreateHeroOffer: %v", err)
	}
	second, err := models.CreateHeroOffer(ctx, &models.NewHeroOffer{Title: "Family Feast"})
	if err != nil {
		t.Fatalf("CreateHeroOffer: %v", err)
	}

	// Still nothing displayed until an admin picks one.
	if _, err := models.GetDisplayedHeroOffer(ctx); err != utils.ErrorRecordNotFound {
		t.Fatalf("expected ErrorRecordNotFound before selection, got %v", err)
	}

	if _, err := models.SetDisplayedHeroOffer(ctx, first.ID); err != nil {
		t.Fatalf("SetDisplayedHeroOffer: %v", err)
	}
	displayed, err := models.GetDisplayedHeroOffer(ctx)
	if err != nil {
		t.Fatalf("GetDisplayedHeroOffer: %v", err)
	}
	if displayed.ID != first.ID {
		t.Errorf("expected offer %d displayed, got %d", first.ID, displayed.ID)
	}

	// Swapping clears the old flag.
	if _, err := models.SetDisplayedHeroOffer(ctx, second.ID); err != nil {
		t.Fatalf("SetDisplayedHeroOffer (swap): %v", err)
	}
	displayed, err = models.GetDisplayedHeroOffer(ctx)
	if err != nil {
		t.Fatalf("GetDisplayedHeroOffer: %v", err)
	}
	if displayed.ID != second.ID {
		t.Errorf("expected offer %d displayed after swap, got %d", second.ID, displayed.ID)
	}
	offers, err := models.ListHeroOffers(ctx)
	if err != nil {
		t.Fatalf("ListHeroOffers: %v", err)
	}
	shown := 0
	for _, o := range offers {
		if o.IsDisplayed != nil && *o.IsDisplayed {
			shown++
		}
	}
	if shown != 1 {
		t.Errorf("expected exactly one displayed offer, got %d", shown)
	}
}

func TestReviewLikeOncePerCustomer(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := setupIntegrationEnv(t)

	author, err := models.UpsertCustomerByEmail(ctx, &models.NewCustomer{
		Name:  "Ravi",
		Email: "ravi@example.com",
	})
	if err != nil {
		t.Fatalf("UpsertCustomerByEmail: %v", err)
	}
	fan, err := models.UpsertCustomerByEmail(ctx, &models.NewCustomer{
		Name:  "Priya",
		Email: "priya@example.com",
	})
	if err != nil {
		t.Fatalf("UpsertCustomerByEmail: %v", err)
	}

	review, err := models.SubmitReview(ctx, &models.NewReview{
		CustomerId: author.ID,
		Rating:     5,
		Comment:    "best burger in town",
	})
	if err != nil {
		t.Fatalf("SubmitReview: %v", err)
	}

	// Pending reviews cannot be liked yet.
	if _, err := models.LikeReview(ctx, review.ID, fan.ID); err == nil {
		t.Fatal("expected like on a pending review to be rejected")
	}
	if _, err := models.ApproveReview(ctx, review.ID); err != nil {
		t.Fatalf("ApproveReview: %v", err)
	}

	liked, err := models.LikeReview(ctx, review.ID, fan.ID)
	if err != nil {
		t.Fatalf("LikeReview: %v", err)
	}
	if liked.Likes != 1 {
		t.Fatalf("expected 1 like, got %d", liked.Likes)
	}

	// A second like by the same customer trips the unique pair and must come
	// back as a validation error, not a storage failure.
	_, err = models.LikeReview(ctx, review.ID, fan.ID)
	if err == nil {
		t.Fatal("expected duplicate like to be rejected")
	}
	if err == utils.ErrorStorageUnavailable {
		t.Fatalf("duplicate like surfaced as storage failure: %v", err)
	}
	if _, ok := utils.AsValidationError(err); !ok {
		t.Fatalf("expected validation error for duplicate like, got %v", err)
	}

	after, err := utils.FetchModel[models.Review](ctx, review.ID)
	if err != nil {
		t.Fatalf("GetReview: %v", err)
	}
	if after.Likes != 1 {
		t.Errorf("duplicate like must not bump the counter: got %d", after.Likes)
	}

	// A different customer still counts.
	other, err := models.LikeReview(ctx, review.ID, author.ID)
	if err != nil {
		t.Fatalf("LikeReview (second customer): %v", err)
	}
	if other.Likes != 2 {
		t.Errorf("expected 2 likes, got %d", other.Likes)
	}
}

func TestReviewDeleteCleansUpMedia(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := setupIntegrationEnv(t)

	customer, err := models.UpsertCustomerByEmail(ctx, &models.NewCustomer{
		Name:  "Dev",
		Email: "dev@example.com",
	})
	if err != nil {
		t.Fatalf("UpsertCustomerByEmail: %v", err)
	}

	review, err := models.SubmitReview(ctx, &models.NewReview{
		CustomerId: customer.ID,
		Rating:     4,
		Comment:    "crispy fries",
		MediaUrl:   "https://storage.googleapis.com/vsf-media/review/abc123.jpg",
	})
	if err != nil {
		t.Fatalf("SubmitReview: %v", err)
	}
	if review.MediaUrl == "" {
		t.Fatal("expected media url to persist on the review")
	}
	stored, err := utils.FetchModel[models.Review](ctx, review.ID)
	if err != nil {
		t.Fatalf("GetReview: %v", err)
	}
	if stored.MediaUrl != review.MediaUrl {
		t.Fatalf("media url lost on read: %q", stored.MediaUrl)
	}

	// Deletion succeeds even when the bucket is unreachable; the media
	// cleanup is best effort.
	if _, err := models.DeleteReview(ctx, review.ID); err != nil {
		t.Fatalf("DeleteReview: %v", err)
	}
	if _, err := utils.FetchModel[models.Review](ctx, review.ID); err != utils.ErrorRecordNotFound {
		t.Fatalf("expected deleted review to be gone, got %v", err)
	}
}
