package reports

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsfastfood/restaurant_backend/config"
	"github.com/vsfastfood/restaurant_backend/utils"
)

func reportCacheEnabled() bool {
	v := strings.TrimSpace(os.Getenv("ENABLE_REPORT_CACHE"))
	return v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes") || strings.EqualFold(v, "on")
}

func reportCacheTTL() time.Duration {
	// Env: REPORT_CACHE_TTL_SECONDS (default 120s)
	ttl := 120
	if v := strings.TrimSpace(os.Getenv("REPORT_CACHE_TTL_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ttl = n
		}
	}
	return time.Duration(ttl) * time.Second
}

type SalesByProductResponse struct {
	Name     string          `json:"name"`
	Size     string          `json:"size"`
	SoldQty  int             `json:"soldQty"`
	DayCount int             `json:"dayCount"`
	AvgQty   decimal.Decimal `json:"avgQty"`
}

type SalesRangeResponse struct {
	FromDate     string                    `json:"fromDate"`
	ToDate       string                    `json:"toDate"`
	TotalOrders  int                       `json:"totalOrders"`
	TotalRevenue decimal.Decimal           `json:"totalRevenue"`
	Products     []*SalesByProductResponse `json:"products"`
}

// GetSalesRangeReport sums the per-day aggregates over an inclusive date
// range. Reads the rolled up tables only, never the live orders.
func GetSalesRangeReport(ctx context.Context, fromDate string, toDate string) (*SalesRangeResponse, error) {
	if !utils.ValidDateString(fromDate) {
		return nil, utils.NewValidationError("fromDate", "must be YYYY-MM-DD")
	}
	if !utils.ValidDateString(toDate) {
		return nil, utils.NewValidationError("toDate", "must be YYYY-MM-DD")
	}
	if fromDate > toDate {
		return nil, utils.NewValidationError("fromDate", "must not be after toDate")
	}

	cacheKey := "Report:SalesRange:" + fromDate + ":" + toDate
	if reportCacheEnabled() {
		var cached SalesRangeResponse
		if exists, err := config.GetRedisObject(cacheKey, &cached); err == nil && exists {
			return &cached, nil
		}
	}

	db := config.GetDB()

	var totals struct {
		TotalOrders  int
		TotalRevenue decimal.Decimal
	}
	err := db.WithContext(ctx).Raw(`
        SELECT
            COALESCE(SUM(total_orders), 0) AS total_orders,
            COALESCE(SUM(total_revenue), 0) AS total_revenue
        FROM daily_aggregates
        WHERE date BETWEEN ? AND ?
    `, fromDate, toDate).Scan(&totals).Error
	if err != nil {
		return nil, utils.ErrorStorageUnavailable
	}

	var products []*SalesByProductResponse
	err = db.WithContext(ctx).Raw(`
        SELECT
            name,
            size,
            SUM(quantity) AS sold_qty,
            COUNT(DISTINCT date) AS day_count,
            ROUND(SUM(quantity) / COUNT(DISTINCT date), 2) AS avg_qty
        FROM daily_aggregate_products
        WHERE date BETWEEN ? AND ?
        GROUP BY name, size
        ORDER BY sold_qty DESC, name ASC, size ASC
    `, fromDate, toDate).Scan(&products).Error
	if err != nil {
		return nil, utils.ErrorStorageUnavailable
	}

	report := &SalesRangeResponse{
		FromDate:     fromDate,
		ToDate:       toDate,
		TotalOrders:  totals.TotalOrders,
		TotalRevenue: totals.TotalRevenue,
		Products:     products,
	}

	if reportCacheEnabled() {
		_ = config.SetRedisObject(cacheKey, report, reportCacheTTL())
	}

	return report, nil
}

// ExportSalesRangeExcel renders the range report as an xlsx for download.
func ExportSalesRangeExcel(ctx context.Context, fromDate string, toDate string) ([]byte, error) {
	report, err := GetSalesRangeReport(ctx, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	return renderSalesRangeExcel(report)
}
