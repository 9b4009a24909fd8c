package excel

import (
	"bytes"
	"context"
	"fmt"

	"shopdesk/backend/internal/report"

	"github.com/xuri/excelize/v2"
)

const (
	itemsSheet  = "Items"
	totalsSheet = "Totals"
)

var reportHeader = []any{
	"#", "Item", "Code", "Sub Category", "Unit", "Quantity", "Min Stock",
	"Purchase Price", "Sale Price", "Stock Value", "Sale Value", "Margin %", "Band", "Low Stock",
}

// WriteCategoryReport builds an xlsx workbook with one row per item and a
// totals sheet.
func WriteCategoryReport(ctx context.Context, cat report.Category) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", itemsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := file.SetSheetRow(itemsSheet, "A1", &reportHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	bold, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}
	if err := file.SetRowStyle(itemsSheet, 1, 1, bold); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	for i, row := range cat.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		code, sub := "", row.SubCategory
		if row.Item.ItemCode != nil {
			code = *row.Item.ItemCode
		}
		values := []any{
			i + 1, row.Item.Name, code, sub, row.Item.Unit,
			row.Item.OpeningQuantity, row.Item.MinStockToMaintain,
			row.Item.PurchasePrice, row.Item.SalePrice, row.StockValue, row.SaleValue,
			round2(row.Margin), string(row.Band), row.IsLowStock,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := file.SetSheetRow(itemsSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if _, err := file.NewSheet(totalsSheet); err != nil {
		return nil, fmt.Errorf("create totals sheet: %w", err)
	}
	t := cat.Totals
	totals := [][]any{
		{"Category", cat.Name},
		{"Sub Category", cat.SubCategory},
		{"Generated At", cat.GeneratedAt.Format("2006-01-02 15:04")},
		{"Total Items", t.TotalItems},
		{"Total Stock Value", t.TotalStockValue},
		{"Total Sale Value", t.TotalSaleValue},
		{"Average Profit Margin %", round2(t.AverageProfitMargin)},
		{"Low Stock Items", t.LowStockItems},
		{"Potential Profit", t.PotentialProfit},
		{"Profit Ratio %", round2(t.ProfitRatio)},
	}
	for i, values := range totals {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := file.SetSheetRow(totalsSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write totals: %w", err)
		}
	}

	var buf bytes.Buffer
	if _, err := file.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func round2(v float64) float64 {
	if v < 0 {
		return -float64(int64(-v*100+0.5)) / 100
	}
	return float64(int64(v*100+0.5)) / 100
}
