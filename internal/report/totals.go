package report

import (
	"strings"
	"time"

	"shopdesk/backend/internal/domain"
)

type Totals struct {
	TotalItems          int     `json:"total_items"`
	TotalStockValue     float64 `json:"total_stock_value"`
	TotalSaleValue      float64 `json:"total_sale_value"`
	AverageProfitMargin float64 `json:"average_profit_margin"`
	LowStockItems       int     `json:"low_stock_items"`
	PotentialProfit     float64 `json:"potential_profit"`
	ProfitRatio         float64 `json:"profit_ratio"`
}

type MarginBand string

const (
	MarginHigh   MarginBand = "high"
	MarginMedium MarginBand = "medium"
	MarginLow    MarginBand = "low"
)

type Row struct {
	Item        domain.Item `json:"item"`
	StockValue  float64     `json:"stock_value"`
	SaleValue   float64     `json:"sale_value"`
	Margin      float64     `json:"profit_margin"`
	Band        MarginBand  `json:"margin_band"`
	IsLowStock  bool        `json:"is_low_stock"`
	SubCategory string      `json:"sub_category"`
}

type Category struct {
	Name        string    `json:"category"`
	SubCategory string    `json:"sub_category,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	Rows        []Row     `json:"rows"`
	Totals      Totals    `json:"totals"`
}

// ProfitMargin is the margin on the sale price in percent. Items without a
// sale price have no margin.
func ProfitMargin(item domain.Item) float64 {
	if item.SalePrice <= 0 {
		return 0
	}
	return (item.SalePrice - item.PurchasePrice) / item.SalePrice * 100
}

func Band(margin float64) MarginBand {
	switch {
	case margin >= 50:
		return MarginHigh
	case margin >= 20:
		return MarginMedium
	default:
		return MarginLow
	}
}

func IsLowStock(item domain.Item) bool {
	return item.OpeningQuantity <= item.MinStockToMaintain
}

func CalculateTotals(items []domain.Item) Totals {
	var (
		totals      Totals
		marginTotal float64
	)
	for _, item := range items {
		totals.TotalItems++
		totals.TotalStockValue += item.PurchasePrice * item.OpeningQuantity
		totals.TotalSaleValue += item.SalePrice * item.OpeningQuantity
		marginTotal += ProfitMargin(item)
		if IsLowStock(item) {
			totals.LowStockItems++
		}
	}
	if totals.TotalItems > 0 {
		totals.AverageProfitMargin = marginTotal / float64(totals.TotalItems)
	}
	totals.PotentialProfit = totals.TotalSaleValue - totals.TotalStockValue
	if totals.TotalStockValue > 0 {
		totals.ProfitRatio = totals.PotentialProfit / totals.TotalStockValue * 100
	}
	return totals
}

func Build(category, subCategory string, items []domain.Item, now time.Time) Category {
	rows := make([]Row, 0, len(items))
	for _, item := range items {
		margin := ProfitMargin(item)
		sub := ""
		if item.SubCategory != nil {
			sub = *item.SubCategory
		}
		rows = append(rows, Row{
			Item:        item,
			StockValue:  item.PurchasePrice * item.OpeningQuantity,
			SaleValue:   item.SalePrice * item.OpeningQuantity,
			Margin:      margin,
			Band:        Band(margin),
			IsLowStock:  IsLowStock(item),
			SubCategory: sub,
		})
	}
	return Category{
		Name:        category,
		SubCategory: subCategory,
		GeneratedAt: now,
		Rows:        rows,
		Totals:      CalculateTotals(items),
	}
}

// FileStem returns "{category}_Report_{YYYY-MM-DD}".
func FileStem(category string, at time.Time) string {
	name := strings.Join(strings.Fields(category), "_")
	if name == "" {
		name = "Category"
	}
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		return r
	}, name)
	return name + "_Report_" + at.Format("2006-01-02")
}
