package models

import (
	"context"
	"time"

	"github.com/vsfastfood/restaurant_backend/config"
	"github.com/vsfastfood/restaurant_backend/utils"
	"gorm.io/gorm"
)

// HeroOffer is a promotional banner. At most one offer is displayed at a
// time; SetDisplayedHeroOffer swaps the flag atomically.
type HeroOffer struct {
	ID          int       `gorm:"primary_key" json:"id"`
	Title       string    `gorm:"size:100;not null" json:"title" binding:"required"`
	Description string    `gorm:"type:text" json:"description"`
	ImageUrl    string    `json:"image_url"`
	IsDisplayed *bool     `gorm:"not null;default:false" json:"is_displayed"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewHeroOffer struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	ImageUrl    string `json:"image_url"`
}

func CreateHeroOffer(ctx context.Context, input *NewHeroOffer) (*HeroOffer, error) {
	db := config.GetDB()

	offer := HeroOffer{
		Title:       input.Title,
		Description: input.Description,
		ImageUrl:    input.ImageUrl,
		IsDisplayed: utils.NewFalse(),
	}
	if err := db.WithContext(ctx).Create(&offer).Error; err != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	if err := utils.RemoveRedisList[HeroOffer](); err != nil {
		return nil, err
	}
	return &offer, nil
}

func DeleteHeroOffer(ctx context.Context, id int) (*HeroOffer, error) {
	db := config.GetDB()

	offer, err := utils.FetchModel[HeroOffer](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Delete(&offer).Error; err != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	if err := utils.RemoveRedisList[HeroOffer](); err != nil {
		return nil, err
	}
	return offer, nil
}

func ListHeroOffers(ctx context.Context) ([]*HeroOffer, error) {
	return utils.FetchAllModels[HeroOffer](ctx)
}

// GetDisplayedHeroOffer returns the currently displayed banner, or
// RecordNotFound when none is set.
func GetDisplayedHeroOffer(ctx context.Context) (*HeroOffer, error) {
	db := config.GetDB()

	var result HeroOffer
	err := db.WithContext(ctx).Where("is_displayed = ?", true).First(&result).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, utils.ErrorStorageUnavailable
	}
	return &result, nil
}

// SetDisplayedHeroOffer clears every display flag and sets the chosen one
// inside a single transaction, so readers never observe two displayed offers.
func SetDisplayedHeroOffer(ctx context.Context, id int) (*HeroOffer, error) {
	db := config.GetDB()

	if err := utils.ValidateResourceId[HeroOffer](ctx, id); err != nil {
		return nil, err
	}

	tx := db.Begin()
	err := tx.WithContext(ctx).Model(&HeroOffer{}).Where("is_displayed = ?", true).
		Update("is_displayed", false).Error
	if err != nil {
		tx.Rollback()
		return nil, utils.ErrorStorageUnavailable
	}
	err = tx.WithContext(ctx).Model(&HeroOffer{}).Where("id = ?", id).
		Update("is_displayed", true).Error
	if err != nil {
		tx.Rollback()
		return nil, utils.ErrorStorageUnavailable
	}
	if err := tx.Commit().Error; err != nil {
		return nil, utils.ErrorStorageUnavailable
	}

	if err := utils.RemoveRedisList[HeroOffer](); err != nil {
		return nil, err
	}
	return utils.FetchModel[HeroOffer](ctx, id)
}
