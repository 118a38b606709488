package models

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsfastfood/restaurant_backend/config"
	"github.com/vsfastfood/restaurant_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DailyAggregate is the per-date rollup of order counts and revenue used by
// the analytics dashboard.
//
// Grain: date (YYYY-MM-DD in the restaurant's local timezone). The date is
// stamped once when the order is recorded and never re-derived.
//
// NOTE: rows are only ever mutated through atomic additive upserts; the read
// path never writes here.
type DailyAggregate struct {
	Date         string          `gorm:"primaryKey;column:date;size:10" json:"date"`
	TotalOrders  int             `gorm:"not null;default:0" json:"total_orders"`
	TotalRevenue decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_revenue"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// DailyAggregateProduct tallies quantity per (date, name, size). The
// surrogate id preserves first-seen insertion order for deterministic reads.
type DailyAggregateProduct struct {
	ID       int      `gorm:"primary_key" json:"id"`
	Date     string   `gorm:"column:date;size:10;not null;index:uniq_dap,unique,priority:1" json:"date"`
	Name     string   `gorm:"size:100;not null;index:uniq_dap,unique,priority:2" json:"name"`
	Size     ItemSize `gorm:"type:enum('half','full');not null;index:uniq_dap,unique,priority:3" json:"size"`
	Quantity int      `gorm:"not null;default:0" json:"quantity"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// applyOrderToAggregate folds one order into the daily rollup inside the
// caller's transaction. Both statements are additive upserts so concurrent
// orders for the same date never lose updates.
func applyOrderToAggregate(tx *gorm.DB, date string, totalAmount decimal.Decimal, items []*OrderItem) error {

	err := tx.Exec(`
        INSERT INTO daily_aggregates (date, total_orders, total_revenue)
        VALUES (?, 1, ?)
        ON DUPLICATE KEY UPDATE total_orders = total_orders + 1, total_revenue = total_revenue + VALUES(total_revenue)
    `, date, totalAmount).Error
	if err != nil {
		return err
	}

	// Collapse duplicate (name, size) lines within the order, then apply in
	// sorted key order so concurrent transactions take row locks in the same
	// sequence.
	tallies := TallyOrderItems(items)
	sort.Slice(tallies, func(i, j int) bool {
		if tallies[i].Name != tallies[j].Name {
			return tallies[i].Name < tallies[j].Name
		}
		return tallies[i].Size < tallies[j].Size
	})

	for _, t := range tallies {
		err = tx.Exec(`
            INSERT INTO daily_aggregate_products (date, name, size, quantity)
            VALUES (?, ?, ?, ?)
            ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity)
        `, date, t.Name, t.Size, t.Quantity).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// ProductTally is one merged (name, size) quantity entry.
type ProductTally struct {
	Name     string   `json:"name"`
	Size     ItemSize `json:"size"`
	Quantity int      `json:"quantity"`
}

// TallyOrderItems collapses an order's line items into (name, size) tallies,
// preserving first-seen order.
func TallyOrderItems(items []*OrderItem) []ProductTally {
	type key struct {
		name string
		size ItemSize
	}
	index := make(map[key]int)
	var tallies []ProductTally
	for _, item := range items {
		k := key{name: item.Name, size: item.Size}
		if i, ok := index[k]; ok {
			tallies[i].Quantity += item.Quantity
			continue
		}
		index[k] = len(tallies)
		tallies = append(tallies, ProductTally{Name: item.Name, Size: item.Size, Quantity: item.Quantity})
	}
	return tallies
}

// MergeProductTallies merges the stored per-product tallies with the line
// items of the given open orders, summed by (name, size). Entries keep
// first-seen order: stored entries first, then new keys as orders introduce
// them.
func MergeProductTallies(stored []ProductTally, openOrders []*Order) []ProductTally {
	type key struct {
		name string
		size ItemSize
	}
	index := make(map[key]int)
	merged := make([]ProductTally, 0, len(stored))
	for _, t := range stored {
		k := key{name: t.Name, size: t.Size}
		if i, ok := index[k]; ok {
			merged[i].Quantity += t.Quantity
			continue
		}
		index[k] = len(merged)
		merged = append(merged, t)
	}
	for _, order := range openOrders {
		for _, item := range order.Items {
			k := key{name: item.Name, size: item.Size}
			if i, ok := index[k]; ok {
				merged[i].Quantity += item.Quantity
				continue
			}
			index[k] = len(merged)
			merged = append(merged, ProductTally{Name: item.Name, Size: item.Size, Quantity: item.Quantity})
		}
	}
	return merged
}

// DailySummaryView is the assembled read model for one business day.
type DailySummaryView struct {
	Date         string          `json:"date"`
	TotalOrders  int             `json:"total_orders"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	Products     []ProductTally  `json:"products"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// BuildDailySummary assembles the summary for a date from the stored
// aggregate and the open orders whose contribution is not yet in it.
//
// Returns ErrorRecordNotFound when there is neither an aggregate row nor any
// open order for the date. When the aggregate row is missing but open orders
// exist, a summary is synthesized from the orders alone.
func BuildDailySummary(date string, agg *DailyAggregate, stored []ProductTally, unapplied []*Order) (*DailySummaryView, error) {
	if agg == nil && len(unapplied) == 0 {
		return nil, utils.ErrorRecordNotFound
	}

	view := DailySummaryView{
		Date:         date,
		TotalRevenue: decimal.Zero,
	}
	if agg != nil {
		view.TotalOrders = agg.TotalOrders
		view.TotalRevenue = agg.TotalRevenue
		view.CreatedAt = agg.CreatedAt
		view.UpdatedAt = agg.UpdatedAt
	}
	for _, order := range unapplied {
		view.TotalOrders++
		view.TotalRevenue = view.TotalRevenue.Add(order.TotalAmount)
	}
	view.Products = MergeProductTallies(stored, unapplied)
	return &view, nil
}

// GetDailySummary computes the summary fresh on every call. It is strictly
// read-only: neither the aggregate nor the ledger is mutated here.
func GetDailySummary(ctx context.Context, date string) (*DailySummaryView, error) {
	db := config.GetDB()

	var agg *DailyAggregate
	var found DailyAggregate
	err := db.WithContext(ctx).Where("date = ?", date).First(&found).Error
	switch err {
	case nil:
		agg = &found
	case gorm.ErrRecordNotFound:
		agg = nil
	default:
		return nil, utils.ErrorStorageUnavailable
	}

	var products []*DailyAggregateProduct
	if agg != nil {
		// id order preserves first-seen sequence
		if err := db.WithContext(ctx).Where("date = ?", date).Order("id ASC").Find(&products).Error; err != nil {
			return nil, utils.ErrorStorageUnavailable
		}
	}
	stored := make([]ProductTally, 0, len(products))
	for _, p := range products {
		stored = append(stored, ProductTally{Name: p.Name, Size: p.Size, Quantity: p.Quantity})
	}

	openOrders, err := ListOpenOrdersByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	// Orders recorded through CreateOrder are folded into the aggregate in
	// the same transaction, so merging them again would double count. Only
	// rows whose rollup is missing contribute here; when the aggregate row
	// itself is absent, every open order does.
	var unapplied []*Order
	for _, order := range openOrders {
		if agg == nil || !utils.DereferencePtr(order.IsAggregated, true) {
			unapplied = append(unapplied, order)
		}
	}

	return BuildDailySummary(date, agg, stored, unapplied)
}

// FindUnaggregatedOrders lists open orders whose rollup contribution is
// missing, oldest first. Empty date means all dates.
func FindUnaggregatedOrders(ctx context.Context, date string) ([]*Order, error) {
	db := config.GetDB()

	dbCtx := db.WithContext(ctx).Preload("Items").Where("is_aggregated = ?", false)
	if date != "" {
		dbCtx = dbCtx.Where("date = ?", date)
	}
	var results []*Order
	if err := dbCtx.Order("id ASC").Find(&results).Error; err != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	return results, nil
}

// ReconcileUnaggregatedOrders folds orders left behind by a crashed write
// path into the daily rollup and marks them aggregated. Each order is
// repaired in its own transaction so one bad row does not block the rest.
func ReconcileUnaggregatedOrders(ctx context.Context, date string) ([]int, error) {
	db := config.GetDB()

	orders, err := FindUnaggregatedOrders(ctx, date)
	if err != nil {
		return nil, err
	}

	repaired := make([]int, 0, len(orders))
	for _, order := range orders {
		tx := db.WithContext(ctx).Begin()
		if tx.Error != nil {
			return repaired, utils.ErrorStorageUnavailable
		}

		// Re-check under lock so a concurrent repair cannot double-apply.
		var locked Order
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND is_aggregated = ?", order.ID, false).
			First(&locked).Error
		if err == gorm.ErrRecordNotFound {
			tx.Rollback()
			continue
		}
		if err != nil {
			tx.Rollback()
			return repaired, utils.ErrorStorageUnavailable
		}

		if err := applyOrderToAggregate(tx, order.Date, order.TotalAmount, order.Items); err != nil {
			tx.Rollback()
			return repaired, utils.ErrorStorageUnavailable
		}
		if err := tx.Model(&Order{}).Where("id = ?", order.ID).
			Update("is_aggregated", true).Error; err != nil {
			tx.Rollback()
			return repaired, utils.ErrorStorageUnavailable
		}
		if err := tx.Commit().Error; err != nil {
			return repaired, utils.ErrorStorageUnavailable
		}
		repaired = append(repaired, order.ID)
	}
	return repaired, nil
}

// ListDailyAggregates returns rollups in a date range, newest first,
// with their product tallies attached.
func ListDailyAggregates(ctx context.Context, fromDate string, toDate string) ([]*DailySummaryView, error) {
	db := config.GetDB()

	var aggs []*DailyAggregate
	dbCtx := db.WithContext(ctx)
	if fromDate != "" {
		dbCtx = dbCtx.Where("date >= ?", fromDate)
	}
	if toDate != "" {
		dbCtx = dbCtx.Where("date <= ?", toDate)
	}
	if err := dbCtx.Order("date DESC").Find(&aggs).Error; err != nil {
		return nil, utils.ErrorStorageUnavailable
	}

	views := make([]*DailySummaryView, 0, len(aggs))
	for _, agg := range aggs {
		var products []*DailyAggregateProduct
		if err := db.WithContext(ctx).Where("date = ?", agg.Date).Order("id ASC").Find(&products).Error; err != nil {
			return nil, utils.ErrorStorageUnavailable
		}
		stored := make([]ProductTally, 0, len(products))
		for _, p := range products {
			stored = append(stored, ProductTally{Name: p.Name, Size: p.Size, Quantity: p.Quantity})
		}
		views = append(views, &DailySummaryView{
			Date:         agg.Date,
			TotalOrders:  agg.TotalOrders,
			TotalRevenue: agg.TotalRevenue,
			Products:     stored,
			CreatedAt:    agg.CreatedAt,
			UpdatedAt:    agg.UpdatedAt,
		})
	}
	return views, nil
}
