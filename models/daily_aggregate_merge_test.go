package models_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsfastfood/restaurant_backend/models"
	"github.com/vsfastfood/restaurant_backend/utils"
)

func item(name string, size models.ItemSize, qty int, price string) *models.OrderItem {
	return &models.OrderItem{
		Name:     name,
		Size:     size,
		Quantity: qty,
		Price:    decimal.RequireFromString(price),
	}
}

func TestTallyOrderItems_CollapsesDuplicateLines(t *testing.T) {
	items := []*models.OrderItem{
		item("Burger", models.ItemSizeFull, 1, "150"),
		item("Fries", models.ItemSizeHalf, 2, "50"),
		item("Burger", models.ItemSizeFull, 1, "150"),
	}

	tallies := models.TallyOrderItems(items)
	if len(tallies) != 2 {
		t.Fatalf("expected 2 tallies, got %d", len(tallies))
	}
	if tallies[0].Name != "Burger" || tallies[0].Quantity != 2 {
		t.Errorf("expected Burger qty 2 first, got %+v", tallies[0])
	}
	if tallies[1].Name != "Fries" || tallies[1].Quantity != 2 {
		t.Errorf("expected Fries qty 2 second, got %+v", tallies[1])
	}
}

func TestTallyOrderItems_SizeIsPartOfTheKey(t *testing.T) {
	items := []*models.OrderItem{
		item("Biryani", models.ItemSizeHalf, 1, "120"),
		item("Biryani", models.ItemSizeFull, 1, "200"),
	}

	tallies := models.TallyOrderItems(items)
	if len(tallies) != 2 {
		t.Fatalf("half and full portions must tally separately, got %d entries", len(tallies))
	}
}

func TestMergeProductTallies_SumsStoredAndOpen(t *testing.T) {
	stored := []models.ProductTally{
		{Name: "Burger", Size: models.ItemSizeFull, Quantity: 5},
	}
	open := []*models.Order{
		{Items: []*models.OrderItem{item("Burger", models.ItemSizeFull, 2, "150")}},
	}

	merged := models.MergeProductTallies(stored, open)
	if len(merged) != 1 {
		t.Fatalf("expected 1 merged entry, got %d", len(merged))
	}
	if merged[0].Quantity != 7 {
		t.Errorf("expected stored 5 + open 2 = 7, got %d", merged[0].Quantity)
	}
}

func TestMergeProductTallies_PreservesFirstSeenOrder(t *testing.T) {
	stored := []models.ProductTally{
		{Name: "Pizza", Size: models.ItemSizeFull, Quantity: 3},
		{Name: "Burger", Size: models.ItemSizeFull, Quantity: 5},
	}
	open := []*models.Order{
		{Items: []*models.OrderItem{
			item("Burger", models.ItemSizeFull, 1, "150"),
			item("Samosa", models.ItemSizeHalf, 4, "20"),
		}},
	}

	merged := models.MergeProductTallies(stored, open)
	want := []string{"Pizza", "Burger", "Samosa"}
	if len(merged) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(merged))
	}
	for i, name := range want {
		if merged[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, merged[i].Name)
		}
	}
	if merged[1].Quantity != 6 {
		t.Errorf("Burger should sum to 6, got %d", merged[1].Quantity)
	}
}

func TestBuildDailySummary_NotFoundWhenNothingExists(t *testing.T) {
	_, err := models.BuildDailySummary("2026-08-30", nil, nil, nil)
	if err != utils.ErrorRecordNotFound {
		t.Fatalf("expected ErrorRecordNotFound, got %v", err)
	}
}

func TestBuildDailySummary_SingleOrderScenario(t *testing.T) {
	// One recorded order: Burger qty 2 at 150 each, already rolled up.
	agg := &models.DailyAggregate{
		Date:         "2026-08-30",
		TotalOrders:  1,
		TotalRevenue: decimal.RequireFromString("300"),
	}
	stored := []models.ProductTally{
		{Name: "Burger", Size: models.ItemSizeFull, Quantity: 2},
	}

	view, err := models.BuildDailySummary("2026-08-30", agg, stored, nil)
	if err != nil {
		t.Fatalf("BuildDailySummary: %v", err)
	}
	if view.TotalOrders != 1 {
		t.Errorf("expected totalOrders 1, got %d", view.TotalOrders)
	}
	if !view.TotalRevenue.Equal(decimal.RequireFromString("300")) {
		t.Errorf("expected revenue 300, got %s", view.TotalRevenue)
	}
	if len(view.Products) != 1 || view.Products[0].Quantity != 2 {
		t.Errorf("expected Burger quantity 2 (not double counted), got %+v", view.Products)
	}
}

func TestBuildDailySummary_SynthesizedFromOrdersOnly(t *testing.T) {
	// The aggregate row is missing but open orders for the date exist:
	// the summary is synthesized from the orders alone.
	open := []*models.Order{
		{
			TotalAmount: decimal.RequireFromString("100"),
			Items:       []*models.OrderItem{item("Dosa", models.ItemSizeFull, 1, "100")},
		},
		{
			TotalAmount: decimal.RequireFromString("200"),
			Items:       []*models.OrderItem{item("Dosa", models.ItemSizeFull, 2, "100")},
		},
	}

	view, err := models.BuildDailySummary("2026-08-30", nil, nil, open)
	if err != nil {
		t.Fatalf("BuildDailySummary: %v", err)
	}
	if view.TotalOrders != 2 {
		t.Errorf("expected 2 orders, got %d", view.TotalOrders)
	}
	if !view.TotalRevenue.Equal(decimal.RequireFromString("300")) {
		t.Errorf("expected revenue 300, got %s", view.TotalRevenue)
	}
	if len(view.Products) != 1 || view.Products[0].Quantity != 3 {
		t.Errorf("expected Dosa quantity 3, got %+v", view.Products)
	}
}

func TestBuildDailySummary_AddsUnappliedOrdersOnTop(t *testing.T) {
	agg := &models.DailyAggregate{
		Date:         "2026-08-30",
		TotalOrders:  5,
		TotalRevenue: decimal.RequireFromString("1250"),
		CreatedAt:    time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC),
	}
	stored := []models.ProductTally{
		{Name: "Thali", Size: models.ItemSizeFull, Quantity: 5},
	}
	unapplied := []*models.Order{
		{
			TotalAmount: decimal.RequireFromString("250"),
			Items:       []*models.OrderItem{item("Thali", models.ItemSizeFull, 1, "250")},
		},
	}

	view, err := models.BuildDailySummary("2026-08-30", agg, stored, unapplied)
	if err != nil {
		t.Fatalf("BuildDailySummary: %v", err)
	}
	if view.TotalOrders != 6 {
		t.Errorf("expected 5 + 1 = 6 orders, got %d", view.TotalOrders)
	}
	if !view.TotalRevenue.Equal(decimal.RequireFromString("1500")) {
		t.Errorf("expected revenue 1500, got %s", view.TotalRevenue)
	}
	if view.Products[0].Quantity != 6 {
		t.Errorf("expected Thali quantity 6, got %d", view.Products[0].Quantity)
	}
}

func TestBuildDailySummary_Deterministic(t *testing.T) {
	stored := []models.ProductTally{
		{Name: "Burger", Size: models.ItemSizeFull, Quantity: 2},
		{Name: "Fries", Size: models.ItemSizeHalf, Quantity: 1},
	}
	agg := &models.DailyAggregate{Date: "2026-08-30", TotalOrders: 2, TotalRevenue: decimal.RequireFromString("350")}

	first, err := models.BuildDailySummary("2026-08-30", agg, stored, nil)
	if err != nil {
		t.Fatalf("BuildDailySummary: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := models.BuildDailySummary("2026-08-30", agg, stored, nil)
		if err != nil {
			t.Fatalf("BuildDailySummary: %v", err)
		}
		for j := range first.Products {
			if first.Products[j] != again.Products[j] {
				t.Fatalf("product order changed between identical calls: %+v vs %+v", first.Products, again.Products)
			}
		}
	}
}
