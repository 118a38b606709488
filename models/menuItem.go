package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsfastfood/restaurant_backend/config"
	"github.com/vsfastfood/restaurant_backend/utils"
)

// MenuItem is a priced entry on the public menu. Half and full portion
// prices are kept separately; a zero PriceHalf means the item has no half
// portion.
type MenuItem struct {
	ID          int             `gorm:"primary_key" json:"id"`
	Name        string          `gorm:"size:100;not null;unique" json:"name" binding:"required"`
	Description string          `gorm:"type:text" json:"description"`
	PriceHalf   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"price_half"`
	PriceFull   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"price_full"`
	ImageUrl    string          `json:"image_url"`
	IsActive    *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewMenuItem struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	PriceHalf   decimal.Decimal `json:"price_half"`
	PriceFull   decimal.Decimal `json:"price_full"`
	ImageUrl    string          `json:"image_url"`
	IsActive    *bool           `json:"is_active"`
}

func (input *NewMenuItem) validate(ctx context.Context, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[MenuItem](ctx, id); err != nil {
			return err
		}
	}
	if err := utils.ValidateUnique[MenuItem](ctx, "name", input.Name, id); err != nil {
		return utils.NewValidationError("name", "already exists")
	}
	if input.PriceHalf.IsNegative() || input.PriceFull.IsNegative() {
		return utils.NewValidationError("price", "must not be negative")
	}
	return nil
}

func CreateMenuItem(ctx context.Context, input *NewMenuItem) (*MenuItem, error) {
	db := config.GetDB()

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	item := MenuItem{
		Name:        input.Name,
		Description: input.Description,
		PriceHalf:   input.PriceHalf,
		PriceFull:   input.PriceFull,
		ImageUrl:    input.ImageUrl,
		IsActive:    input.IsActive,
	}
	if err := db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	if err := utils.RemoveRedisList[MenuItem](); err != nil {
		return nil, err
	}
	return &item, nil
}

func UpdateMenuItem(ctx context.Context, id int, input *NewMenuItem) (*MenuItem, error) {
	db := config.GetDB()

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	item, err := utils.FetchModel[MenuItem](ctx, id)
	if err != nil {
		return nil, err
	}
	err = db.WithContext(ctx).Model(&item).Updates(map[string]interface{}{
		"Name":        input.Name,
		"Description": input.Description,
		"PriceHalf":   input.PriceHalf,
		"PriceFull":   input.PriceFull,
		"ImageUrl":    input.ImageUrl,
		"IsActive":    input.IsActive,
	}).Error
	if err != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	if err := utils.RemoveRedisList[MenuItem](); err != nil {
		return nil, err
	}
	return item, nil
}

func DeleteMenuItem(ctx context.Context, id int) (*MenuItem, error) {
	db := config.GetDB()

	item, err := utils.FetchModel[MenuItem](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Delete(&item).Error; err != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	if err := utils.RemoveRedisList[MenuItem](); err != nil {
		return nil, err
	}
	return item, nil
}

func GetMenuItem(ctx context.Context, id int) (*MenuItem, error) {
	return utils.FetchModel[MenuItem](ctx, id)
}

// ListMenuItems reads the menu from cache, falling back to the DB.
func ListMenuItems(ctx context.Context) ([]*MenuItem, error) {
	results, err := utils.RetrieveRedisList[MenuItem]()
	if err != nil {
		return nil, err
	}
	if results == nil {
		results, err = utils.FetchAllModels[MenuItem](ctx)
		if err != nil {
			return nil, err
		}
		if err := utils.StoreRedisList[MenuItem](results); err != nil {
			return nil, err
		}
	}
	return results, nil
}
