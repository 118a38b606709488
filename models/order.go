package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsfastfood/restaurant_backend/config"
	"github.com/vsfastfood/restaurant_backend/utils"
)

// Order is one row of the live ledger. It exists only while "open": once the
// invoice has been delivered, the order is archived (hard-deleted). Its
// contribution to the DailyAggregate is recorded at creation time, in the
// same transaction, and is never touched again.
type Order struct {
	ID         int       `gorm:"primary_key" json:"id"`
	CustomerId int       `gorm:"index;not null" json:"customer_id" binding:"required"`
	Customer   *Customer `json:"customer"`

	// Date is the business day (YYYY-MM-DD, restaurant local time), stamped
	// once at creation.
	Date        string          `gorm:"column:date;size:10;not null;index" json:"date"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	Note        string          `gorm:"type:text" json:"note"`

	// IsAggregated marks whether the order is already folded into the daily
	// rollup. CreateOrder always sets it; the reconcile tool repairs rows
	// left behind by a crashed write path.
	IsAggregated *bool `gorm:"not null;default:true" json:"is_aggregated"`

	Items []*OrderItem `json:"items"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type OrderItem struct {
	ID       int             `gorm:"primary_key" json:"id"`
	OrderId  int             `gorm:"index;not null" json:"order_id"`
	Name     string          `gorm:"size:100;not null" json:"name" binding:"required"`
	Size     ItemSize        `gorm:"type:enum('half','full');not null;default:'full'" json:"size"`
	Quantity int             `gorm:"not null;default:1" json:"quantity"`
	Price    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"price"`
}

type NewOrderItem struct {
	Name     string          `json:"name" binding:"required"`
	Size     ItemSize        `json:"size" binding:"required"`
	Quantity int             `json:"quantity" binding:"required"`
	Price    decimal.Decimal `json:"price"`
}

type NewOrder struct {
	CustomerId int             `json:"customer_id" binding:"required"`
	Items      []*NewOrderItem `json:"items" binding:"required"`
	Note       string          `json:"note"`
}

func (input *NewOrder) validate(ctx context.Context) error {
	if err := utils.ValidateResourceId[Customer](ctx, input.CustomerId); err != nil {
		return utils.NewValidationError("customer_id", "not found")
	}
	if len(input.Items) == 0 {
		return utils.NewValidationError("items", "must not be empty")
	}
	for _, item := range input.Items {
		if item.Name == "" {
			return utils.NewValidationError("items.name", "is required")
		}
		if item.Quantity < 1 {
			return utils.NewValidationError("items.quantity", "must be at least 1")
		}
		if !item.Size.IsValid() {
			return utils.NewValidationError("items.size", "must be half or full")
		}
		if item.Price.IsNegative() {
			return utils.NewValidationError("items.price", "must not be negative")
		}
	}
	return nil
}

// CreateOrder persists the order and folds it into the daily aggregate in a
// single transaction. The business day is computed once here; a crash leaves
// either both writes or neither.
func CreateOrder(ctx context.Context, input *NewOrder) (*Order, error) {
	db := config.GetDB()

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	items := make([]*OrderItem, 0, len(input.Items))
	total := decimal.Zero
	for _, item := range input.Items {
		items = append(items, &OrderItem{
			Name:     item.Name,
			Size:     item.Size,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	order := Order{
		CustomerId:   input.CustomerId,
		Date:         utils.LocalDateString(time.Now()),
		TotalAmount:  total,
		Note:         input.Note,
		IsAggregated: utils.NewTrue(),
		Items:        items,
	}

	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&order).Error; err != nil {
		tx.Rollback()
		return nil, utils.ErrorStorageUnavailable
	}
	if err := applyOrderToAggregate(tx.WithContext(ctx), order.Date, order.TotalAmount, order.Items); err != nil {
		tx.Rollback()
		return nil, utils.ErrorStorageUnavailable
	}

	if err := tx.Commit().Error; err != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	return &order, nil
}

// ArchiveOrder removes a delivered order from the ledger. It never touches
// the DailyAggregate: the rollup already carries this order. Callers must
// only invoke this after the invoice email is confirmed sent.
func ArchiveOrder(ctx context.Context, id int) (*Order, error) {
	db := config.GetDB()

	order, err := GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	tx := db.Begin()
	if err := tx.WithContext(ctx).Where("order_id = ?", id).Delete(&OrderItem{}).Error; err != nil {
		tx.Rollback()
		return nil, utils.ErrorStorageUnavailable
	}
	if err := tx.WithContext(ctx).Delete(&Order{}, id).Error; err != nil {
		tx.Rollback()
		return nil, utils.ErrorStorageUnavailable
	}
	if err := tx.Commit().Error; err != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	return order, nil
}

func GetOrder(ctx context.Context, id int) (*Order, error) {
	return utils.FetchModel[Order](ctx, id, "Items", "Customer")
}

// ListOpenOrdersByDate returns the still-open orders stamped with the given
// business day, oldest first.
func ListOpenOrdersByDate(ctx context.Context, date string) ([]*Order, error) {
	db := config.GetDB()

	var results []*Order
	err := db.WithContext(ctx).Preload("Items").
		Where("date = ?", date).
		Order("id ASC").
		Find(&results).Error
	if err != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	return results, nil
}

// ListOpenOrders returns the whole ledger, newest first.
func ListOpenOrders(ctx context.Context) ([]*Order, error) {
	db := config.GetDB()

	var results []*Order
	err := db.WithContext(ctx).Preload("Items").Preload("Customer").
		Order("id DESC").
		Find(&results).Error
	if err != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	return results, nil
}
