package reports

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/vsfastfood/restaurant_backend/models"
	"github.com/vsfastfood/restaurant_backend/utils"
	"github.com/xuri/excelize/v2"
)

// RenderOrderInvoice builds the xlsx invoice sent to the customer after
// an order completes. Returns the file content ready to attach.
func RenderOrderInvoice(order *models.Order) ([]byte, error) {
	if order == nil {
		return nil, utils.ErrorRecordNotFound
	}

	f := excelize.NewFile()
	sheetName := "Invoice"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	f.SetCellValue(sheetName, "A1", "VS Fastfood")
	f.SetCellValue(sheetName, "A2", "Order Invoice")
	f.SetCellValue(sheetName, "A3", "Order No")
	f.SetCellValue(sheetName, "B3", order.ID)
	f.SetCellValue(sheetName, "A4", "Date")
	f.SetCellValue(sheetName, "B4", order.Date)
	if order.Customer != nil {
		f.SetCellValue(sheetName, "A5", "Customer")
		f.SetCellValue(sheetName, "B5", order.Customer.Name)
		f.SetCellValue(sheetName, "A6", "Email")
		f.SetCellValue(sheetName, "B6", order.Customer.Email)
	}

	// Line item table
	headerRow := 8
	f.SetCellValue(sheetName, "A"+fmt.Sprint(headerRow), "Item")
	f.SetCellValue(sheetName, "B"+fmt.Sprint(headerRow), "Size")
	f.SetCellValue(sheetName, "C"+fmt.Sprint(headerRow), "Qty")
	f.SetCellValue(sheetName, "D"+fmt.Sprint(headerRow), "Price")
	f.SetCellValue(sheetName, "E"+fmt.Sprint(headerRow), "Amount")

	row := headerRow + 1
	for _, item := range order.Items {
		amount := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		f.SetCellValue(sheetName, "A"+fmt.Sprint(row), item.Name)
		f.SetCellValue(sheetName, "B"+fmt.Sprint(row), string(item.Size))
		f.SetCellValue(sheetName, "C"+fmt.Sprint(row), item.Quantity)
		f.SetCellValue(sheetName, "D"+fmt.Sprint(row), item.Price.String())
		f.SetCellValue(sheetName, "E"+fmt.Sprint(row), amount.String())
		row++
	}

	row++
	f.SetCellValue(sheetName, "D"+fmt.Sprint(row), "Total")
	f.SetCellValue(sheetName, "E"+fmt.Sprint(row), order.TotalAmount.String())

	if order.Note != "" {
		row += 2
		f.SetCellValue(sheetName, "A"+fmt.Sprint(row), "Note")
		f.SetCellValue(sheetName, "B"+fmt.Sprint(row), order.Note)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderSalesRangeExcel(report *SalesRangeResponse) ([]byte, error) {
	f := excelize.NewFile()
	sheetName := "Sales"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	f.SetCellValue(sheetName, "A1", "Sales Report")
	f.SetCellValue(sheetName, "A2", "From")
	f.SetCellValue(sheetName, "B2", report.FromDate)
	f.SetCellValue(sheetName, "A3", "To")
	f.SetCellValue(sheetName, "B3", report.ToDate)
	f.SetCellValue(sheetName, "A4", "Total Orders")
	f.SetCellValue(sheetName, "B4", report.TotalOrders)
	f.SetCellValue(sheetName, "A5", "Total Revenue")
	f.SetCellValue(sheetName, "B5", report.TotalRevenue.String())

	f.SetCellValue(sheetName, "A7", "Item")
	f.SetCellValue(sheetName, "B7", "Size")
	f.SetCellValue(sheetName, "C7", "SoldQty")
	f.SetCellValue(sheetName, "D7", "Days")
	f.SetCellValue(sheetName, "E7", "AvgPerDay")

	for i, p := range report.Products {
		row := fmt.Sprint(i + 8)
		f.SetCellValue(sheetName, "A"+row, p.Name)
		f.SetCellValue(sheetName, "B"+row, p.Size)
		f.SetCellValue(sheetName, "C"+row, p.SoldQty)
		f.SetCellValue(sheetName, "D"+row, p.DayCount)
		f.SetCellValue(sheetName, "E"+row, p.AvgQty.String())
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
