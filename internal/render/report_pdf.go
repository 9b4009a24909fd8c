package render

import (
	"context"
	"fmt"
	"strconv"

	"shopdesk/backend/internal/money"
	"shopdesk/backend/internal/report"
)

var reportColumns = []struct {
	title string
	width float64
	align string
}{
	{"#", 8, "L"},
	{"Item", 46, "L"},
	{"Code", 18, "L"},
	{"Sub Category", 24, "L"},
	{"Qty", 14, "R"},
	{"Purchase", 18, "R"},
	{"Sale", 18, "R"},
	{"Stock Value", 20, "R"},
	{"Margin", 14, "R"},
}

var bandColors = map[string]string{
	string(report.MarginHigh):   "#16a34a",
	string(report.MarginMedium): "#f59e0b",
	string(report.MarginLow):    "#dc2626",
}

// ReportPDF lays the category report out as an A4 table. Rows that do not fit
// move to a new page with the table header repeated.
func (r *Renderer) ReportPDF(ctx context.Context, cat report.Category, companyName string, f *money.Formatter) ([]byte, error) {
	view := buildReportView(cat, companyName, pdfFormatter(f))
	d := newPDF("P")
	d.pdf.SetTitle(d.tr(view.Title), false)
	d.pdf.AliasNbPages("{nb}")
	d.pdf.SetFooterFunc(func() {
		_, h := d.pdf.GetPageSize()
		d.pdf.SetY(h - 12)
		d.font("", 8)
		d.textColor("#9ca3af")
		d.cell(0, 5, fmt.Sprintf("%s - page %d of {nb}", view.Title, d.pdf.PageNo()), "", 0, "C", false)
	})
	d.pdf.AddPage()

	d.textColor("#111827")
	d.font("B", 16)
	d.cell(0, 8, view.Title, "", 1, "L", false)
	d.font("", 9)
	d.textColor("#6b7280")
	sub := "Generated " + view.GeneratedAt
	if view.CompanyName != "" {
		sub = view.CompanyName + " - " + sub
	}
	d.cell(0, 5, sub, "", 1, "L", false)
	d.pdf.Ln(3)

	reportTotalsBlock(d, view.Totals)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	const rowH = 6.5
	reportTableHeader(d)
	if len(view.Rows) == 0 {
		d.textColor("#9ca3af")
		d.font("I", 9)
		d.cell(d.contentWidth(), 12, "No items in this category", "B", 1, "C", false)
	}
	for _, row := range view.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if d.ensure(rowH) {
			reportTableHeader(d)
		}
		if row.LowStock {
			d.fillColor("#fef2f2")
		}
		values := []string{strconv.Itoa(row.Index), row.Name, row.Code, row.SubCategory, row.Quantity,
			row.PurchasePrice, row.SalePrice, row.StockValue, row.Margin + "%"}
		for i, col := range reportColumns {
			text := values[i]
			if col.align == "L" && i > 0 {
				text = fitText(d, text, col.width-1.5)
			}
			if i == len(reportColumns)-1 {
				d.textColor(bandColors[row.Band])
				d.font("B", 8)
			}
			d.cell(col.width, rowH, text, "B", 0, col.align, row.LowStock)
		}
		d.textColor("#111827")
		d.font("", 8)
		d.pdf.Ln(-1)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := d.bytes()
	if err != nil {
		return nil, fmt.Errorf("write %s pdf: %w", view.Title, err)
	}
	return out, nil
}

func reportTableHeader(d *pdfDoc) {
	d.fillColor("#111827")
	d.pdf.SetTextColor(255, 255, 255)
	d.font("B", 8)
	for _, col := range reportColumns {
		d.cell(col.width, 7, col.title, "", 0, col.align, true)
	}
	d.pdf.Ln(-1)
	d.textColor("#111827")
	d.font("", 8)
}

func reportTotalsBlock(d *pdfDoc, t reportTotalsView) {
	cards := [][2]string{
		{"Total Items", strconv.Itoa(t.TotalItems)},
		{"Stock Value", t.StockValue},
		{"Sale Value", t.SaleValue},
		{"Potential Profit", t.PotentialProfit},
		{"Avg. Margin", t.AverageMargin + "%"},
		{"Profit Ratio", t.ProfitRatio + "%"},
		{"Low Stock Items", strconv.Itoa(t.LowStockItems)},
	}
	width := d.contentWidth() / 4
	for i, card := range cards {
		if i > 0 && i%4 == 0 {
			d.pdf.Ln(14)
		}
		x := pageMargin + float64(i%4)*width
		y := d.pdf.GetY()
		d.pdf.SetXY(x, y)
		d.font("", 7)
		d.textColor("#6b7280")
		d.cell(width-2, 5, card[0], "LTR", 2, "L", false)
		d.font("B", 10)
		d.textColor("#111827")
		d.cell(width-2, 7, card[1], "LBR", 0, "L", false)
		d.pdf.SetXY(x+width, y)
	}
	d.pdf.Ln(18)
	d.pdf.SetX(pageMargin)
}
