package reports_test

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/vsfastfood/restaurant_backend/models"
	"github.com/vsfastfood/restaurant_backend/models/reports"
	"github.com/vsfastfood/restaurant_backend/utils"
	"github.com/xuri/excelize/v2"
)

func TestRenderOrderInvoice_NilOrder(t *testing.T) {
	_, err := reports.RenderOrderInvoice(nil)
	if err != utils.ErrorRecordNotFound {
		t.Fatalf("expected ErrorRecordNotFound, got %v", err)
	}
}

func TestRenderOrderInvoice_ProducesReadableWorkbook(t *testing.T) {
	order := &models.Order{
		ID:          42,
		Date:        "2026-08-30",
		TotalAmount: decimal.RequireFromString("350"),
		Note:        "extra spicy",
		Customer: &models.Customer{
			Name:  "Asha",
			Email: "asha@example.com",
		},
		Items: []*models.OrderItem{
			{Name: "Burger", Size: models.ItemSizeFull, Quantity: 2, Price: decimal.RequireFromString("150")},
			{Name: "Fries", Size: models.ItemSizeHalf, Quantity: 1, Price: decimal.RequireFromString("50")},
		},
	}

	content, err := reports.RenderOrderInvoice(order)
	if err != nil {
		t.Fatalf("RenderOrderInvoice: %v", err)
	}
	if len(content) == 0 {
		t.Fatal("expected non-empty workbook")
	}

	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		t.Fatalf("rendered bytes are not a valid workbook: %v", err)
	}
	defer f.Close()

	if v, _ := f.GetCellValue("Invoice", "B3"); v != "42" {
		t.Errorf("expected order no 42, got %q", v)
	}
	if v, _ := f.GetCellValue("Invoice", "A9"); v != "Burger" {
		t.Errorf("expected first line item Burger, got %q", v)
	}
	if v, _ := f.GetCellValue("Invoice", "E9"); v != "300" {
		t.Errorf("expected Burger amount 300, got %q", v)
	}
}
