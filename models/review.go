package models

import (
	"context"
	"errors"
	"time"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/vsfastfood/restaurant_backend/config"
	"github.com/vsfastfood/restaurant_backend/utils"
	"gorm.io/gorm"
)

// the unique review_likes pair reports mysql error 1062 on a second like
func isDuplicateEntryErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}

// Review is guest feedback. Reviews start pending and are shown publicly
// only after an admin approves them. Likes is a denormalized counter backed
// by the review_likes join table.
type Review struct {
	ID         int          `gorm:"primary_key" json:"id"`
	CustomerId int          `gorm:"index;not null" json:"customer_id" binding:"required"`
	Customer   *Customer    `json:"customer"`
	Rating     int          `gorm:"not null" json:"rating" binding:"required"`
	Comment    string       `gorm:"type:text" json:"comment"`
	MediaUrl   string       `json:"media_url"`
	Status     ReviewStatus `gorm:"type:enum('pending','approved');not null;default:'pending'" json:"status"`
	Likes      int          `gorm:"not null;default:0" json:"likes"`
	CreatedAt  time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

// ReviewLike enforces like-once per customer via its unique pair.
type ReviewLike struct {
	ID         int       `gorm:"primary_key" json:"id"`
	ReviewId   int       `gorm:"not null;index:uniq_review_like,unique,priority:1" json:"review_id"`
	CustomerId int       `gorm:"not null;index:uniq_review_like,unique,priority:2" json:"customer_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type NewReview struct {
	CustomerId int    `json:"customer_id" binding:"required"`
	Rating     int    `json:"rating" binding:"required"`
	Comment    string `json:"comment"`
	MediaUrl   string `json:"media_url"`
}

func (input *NewReview) validate(ctx context.Context) error {
	if err := utils.ValidateResourceId[Customer](ctx, input.CustomerId); err != nil {
		return utils.NewValidationError("customer_id", "not found")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return utils.NewValidationError("rating", "must be between 1 and 5")
	}
	return nil
}

func SubmitReview(ctx context.Context, input *NewReview) (*Review, error) {
	db := config.GetDB()

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	review := Review{
		CustomerId: input.CustomerId,
		Rating:     input.Rating,
		Comment:    input.Comment,
		MediaUrl:   input.MediaUrl,
		Status:     ReviewStatusPending,
	}
	if err := db.WithContext(ctx).Create(&review).Error; err != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	return &review, nil
}

func ApproveReview(ctx context.Context, id int) (*Review, error) {
	db := config.GetDB()

	review, err := utils.FetchModel[Review](ctx, id)
	if err != nil {
		return nil, err
	}
	err = db.WithContext(ctx).Model(&review).Update("status", ReviewStatusApproved).Error
	if err != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	return review, nil
}

func DeleteReview(ctx context.Context, id int) (*Review, error) {
	db := config.GetDB()

	review, err := utils.FetchModel[Review](ctx, id)
	if err != nil {
		return nil, err
	}

	tx := db.Begin()
	if err := tx.WithContext(ctx).Where("review_id = ?", id).Delete(&ReviewLike{}).Error; err != nil {
		tx.Rollback()
		return nil, utils.ErrorStorageUnavailable
	}
	if err := tx.WithContext(ctx).Delete(&review).Error; err != nil {
		tx.Rollback()
		return nil, utils.ErrorStorageUnavailable
	}
	if err := tx.Commit().Error; err != nil {
		return nil, utils.ErrorStorageUnavailable
	}

	// Best effort: the review is gone either way, an orphaned media object
	// only costs storage.
	if review.MediaUrl != "" {
		if key := utils.ExtractObjectKeyFromURL(review.MediaUrl); key != "" {
			if err := utils.DeleteObjectFromGCS(ctx, key); err != nil {
				config.LogError(config.GetLogger(), "review", "DeleteReview", "removing media object", key, err)
			}
			_ = utils.DeleteObjectFromGCS(ctx, utils.ThumbnailObjectKey(key))
		}
	}
	return review, nil
}

// LikeReview records a like exactly once per (review, customer). The unique
// index is the arbiter: the counter increments only when the like row
// inserts cleanly, both inside one transaction.
func LikeReview(ctx context.Context, reviewId int, customerId int) (*Review, error) {
	db := config.GetDB()

	review, err := utils.FetchModel[Review](ctx, reviewId)
	if err != nil {
		return nil, err
	}
	if review.Status != ReviewStatusApproved {
		return nil, utils.NewValidationError("review_id", "is not approved")
	}
	if err := utils.ValidateResourceId[Customer](ctx, customerId); err != nil {
		return nil, utils.NewValidationError("customer_id", "not found")
	}

	tx := db.Begin()
	like := ReviewLike{ReviewId: reviewId, CustomerId: customerId}
	if err := tx.WithContext(ctx).Create(&like).Error; err != nil {
		tx.Rollback()
		if isDuplicateEntryErr(err) {
			return nil, utils.NewValidationError("customer_id", "already liked this review")
		}
		return nil, utils.ErrorStorageUnavailable
	}
	err = tx.WithContext(ctx).Model(&Review{}).Where("id = ?", reviewId).
		UpdateColumn("likes", gorm.Expr("likes + 1")).Error
	if err != nil {
		tx.Rollback()
		return nil, utils.ErrorStorageUnavailable
	}
	if err := tx.Commit().Error; err != nil {
		return nil, utils.ErrorStorageUnavailable
	}

	return utils.FetchModel[Review](ctx, reviewId)
}

func ListReviews(ctx context.Context, status *ReviewStatus) ([]*Review, error) {
	db := config.GetDB()

	var results []*Review
	dbCtx := db.WithContext(ctx).Preload("Customer")
	if status != nil && status.IsValid() {
		dbCtx = dbCtx.Where("status = ?", status)
	}
	if err := dbCtx.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	return results, nil
}

// TopLikedReviews returns the most liked approved reviews, ties broken by
// id for a stable order.
func TopLikedReviews(ctx context.Context, limit int) ([]*Review, error) {
	db := config.GetDB()

	if limit <= 0 {
		limit = 5
	}
	var results []*Review
	err := db.WithContext(ctx).Preload("Customer").
		Where("status = ?", ReviewStatusApproved).
		Order("likes DESC, id ASC").
		Limit(limit).
		Find(&results).Error
	if err != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	return results, nil
}
