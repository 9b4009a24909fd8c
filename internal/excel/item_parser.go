package excel

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"shopdesk/backend/internal/domain"

	"github.com/xuri/excelize/v2"
)

var headerAliases = map[string]string{
	"name":                  "name",
	"item":                  "name",
	"item name":             "name",
	"product":               "name",
	"product name":          "name",
	"item code":             "item_code",
	"code":                  "item_code",
	"sku":                   "item_code",
	"category":              "category",
	"sub category":          "sub_category",
	"subcategory":           "sub_category",
	"unit":                  "unit",
	"uom":                   "unit",
	"sale price":            "sale_price",
	"sell price":            "sale_price",
	"selling price":         "sale_price",
	"purchase price":        "purchase_price",
	"cost":                  "purchase_price",
	"cost price":            "purchase_price",
	"opening quantity":      "opening_quantity",
	"opening qty":           "opening_quantity",
	"quantity":              "opening_quantity",
	"qty":                   "opening_quantity",
	"stock":                 "opening_quantity",
	"min stock":             "min_stock_to_maintain",
	"min stock to maintain": "min_stock_to_maintain",
	"reorder level":         "min_stock_to_maintain",
}

var requiredColumns = []string{"name", "category", "sale_price"}

// ParseItemRows reads items from the first sheet. The header row is matched
// against headerAliases; name, category and sale price are required.
func ParseItemRows(reader io.Reader) ([]domain.ItemImportRow, error) {
	file, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("open excel file: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel file has no sheets")
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("excel file is empty")
	}

	colMap := mapColumns(rows[0])
	for _, column := range requiredColumns {
		if _, ok := colMap[column]; !ok {
			return nil, fmt.Errorf("missing required column: %s", column)
		}
	}

	result := make([]domain.ItemImportRow, 0, len(rows)-1)
	for index := 1; index < len(rows); index++ {
		cells := rows[index]
		name := strings.TrimSpace(readCell(cells, colMap["name"]))
		if name == "" {
			continue
		}

		salePrice, err := parseFloat(readCell(cells, colMap["sale_price"]))
		if err != nil {
			return nil, fmt.Errorf("row %d invalid sale_price: %w", index+1, err)
		}

		row := domain.ItemImportRow{
			Name:      name,
			Category:  strings.TrimSpace(readCell(cells, colMap["category"])),
			Unit:      "pcs",
			SalePrice: salePrice,
		}
		if row.Category == "" {
			return nil, fmt.Errorf("row %d: category is required", index+1)
		}

		optionalNumbers := []struct {
			column string
			target *float64
		}{
			{"purchase_price", &row.PurchasePrice},
			{"opening_quantity", &row.OpeningQuantity},
			{"min_stock_to_maintain", &row.MinStockToMaintain},
		}
		for _, opt := range optionalNumbers {
			idx, ok := colMap[opt.column]
			if !ok {
				continue
			}
			raw := strings.TrimSpace(readCell(cells, idx))
			if raw == "" {
				continue
			}
			value, err := parseFloat(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d invalid %s: %w", index+1, opt.column, err)
			}
			*opt.target = value
		}

		if idx, ok := colMap["unit"]; ok {
			if value := strings.TrimSpace(readCell(cells, idx)); value != "" {
				row.Unit = value
			}
		}
		row.ItemCode = optionalText(cells, colMap, "item_code")
		row.SubCategory = optionalText(cells, colMap, "sub_category")

		result = append(result, row)
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("excel file has no valid data rows")
	}
	return result, nil
}

func optionalText(cells []string, colMap map[string]int, column string) *string {
	idx, ok := colMap[column]
	if !ok {
		return nil
	}
	value := strings.TrimSpace(readCell(cells, idx))
	if value == "" {
		return nil
	}
	return &value
}

func mapColumns(header []string) map[string]int {
	mapped := make(map[string]int)
	for idx, col := range header {
		normalized := normalizeHeader(col)
		if normalized == "" {
			continue
		}
		canonical, ok := headerAliases[normalized]
		if !ok {
			continue
		}
		if _, exists := mapped[canonical]; !exists {
			mapped[canonical] = idx
		}
	}
	return mapped
}

func normalizeHeader(raw string) string {
	value := strings.TrimSpace(raw)
	value = strings.TrimPrefix(value, "\ufeff")
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, "_", " ")
	value = strings.Join(strings.Fields(value), " ")
	return value
}

func readCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func parseFloat(raw string) (float64, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, fmt.Errorf("value is empty")
	}
	parsed, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	if parsed < 0 {
		return 0, fmt.Errorf("cannot be negative")
	}
	return parsed, nil
}
