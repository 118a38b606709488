package models

import (
	"context"
	"time"

	"github.com/vsfastfood/restaurant_backend/config"
	"github.com/vsfastfood/restaurant_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Customer is an ordering guest, keyed by email. Coins are the loyalty
// balance granted by admins for approved reviews.
type Customer struct {
	ID    int    `gorm:"primary_key" json:"id"`
	Name  string `gorm:"size:100;not null" json:"name" binding:"required"`
	Email string `gorm:"size:100;not null;uniqueIndex" json:"email" binding:"required"`
	Phone string `gorm:"size:20" json:"phone"`
	Coins int    `gorm:"not null;default:0" json:"coins"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCustomer struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
	Phone string `json:"phone"`
}

func (input *NewCustomer) validate() error {
	if !utils.IsValidEmail(input.Email) {
		return utils.NewValidationError("email", "is not a valid email")
	}
	if input.Name == "" {
		return utils.NewValidationError("name", "is required")
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return utils.NewValidationError("phone", "is not a valid phone number")
		}
	}
	return nil
}

// UpsertCustomerByEmail creates the customer on first contact and refreshes
// name/phone on subsequent checkouts with the same email.
func UpsertCustomerByEmail(ctx context.Context, input *NewCustomer) (*Customer, error) {
	db := config.GetDB()

	if err := input.validate(); err != nil {
		return nil, err
	}

	customer := Customer{
		Name:  input.Name,
		Email: input.Email,
		Phone: input.Phone,
	}
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "phone"}),
	}).Create(&customer).Error
	if err != nil {
		return nil, utils.ErrorStorageUnavailable
	}

	// re-read so updates return the existing row's id and coin balance
	var result Customer
	if err := db.WithContext(ctx).Where("email = ?", input.Email).First(&result).Error; err != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	return &result, nil
}

func GetCustomer(ctx context.Context, id int) (*Customer, error) {
	return utils.FetchModel[Customer](ctx, id)
}

func GetCustomerByEmail(ctx context.Context, email string) (*Customer, error) {
	db := config.GetDB()

	var result Customer
	err := db.WithContext(ctx).Where("email = ?", email).First(&result).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, utils.ErrorStorageUnavailable
	}
	return &result, nil
}

func ListCustomers(ctx context.Context) ([]*Customer, error) {
	return utils.FetchAllModels[Customer](ctx)
}

// AddCustomerCoins adjusts the loyalty balance with an atomic in-place
// increment (no read-modify-write).
func AddCustomerCoins(ctx context.Context, id int, coins int) (*Customer, error) {
	db := config.GetDB()

	if err := utils.ValidateResourceId[Customer](ctx, id); err != nil {
		return nil, err
	}

	err := db.WithContext(ctx).Model(&Customer{}).Where("id = ?", id).
		UpdateColumn("coins", gorm.Expr("coins + ?", coins)).Error
	if err != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	return GetCustomer(ctx, id)
}
