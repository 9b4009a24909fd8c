package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"shopdesk/backend/internal/domain"
	"shopdesk/backend/internal/money"
	"shopdesk/backend/internal/report"
)

//go:embed templates/*.tmpl
var templateFiles embed.FS

var templates = template.Must(template.New("render").Funcs(template.FuncMap{
	"css": func(value string) template.CSS { return template.CSS(value) },
}).ParseFS(templateFiles, "templates/*.tmpl"))

type Renderer struct {
	images ImageFetcher
	now    func() time.Time
}

// New returns a Renderer. images may be nil, in which case logos and
// signatures are left out of PDFs.
func New(images ImageFetcher) *Renderer {
	return &Renderer{images: images, now: time.Now}
}

func (r *Renderer) WithClock(now func() time.Time) *Renderer {
	clone := *r
	clone.now = now
	return &clone
}

func (r *Renderer) InvoiceHTML(ctx context.Context, inv domain.InvoiceData, f *money.Formatter) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	view := buildInvoiceView(inv, f, r.now())
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "invoice.html.tmpl", view); err != nil {
		return nil, fmt.Errorf("render invoice html: %w", err)
	}
	return buf.Bytes(), nil
}

type reportRowView struct {
	Index         int
	Name          string
	Code          string
	SubCategory   string
	Quantity      string
	PurchasePrice string
	SalePrice     string
	StockValue    string
	Margin        string
	Band          string
	LowStock      bool
}

type reportTotalsView struct {
	TotalItems      int
	StockValue      string
	SaleValue       string
	PotentialProfit string
	AverageMargin   string
	ProfitRatio     string
	LowStockItems   int
}

type reportView struct {
	Title       string
	CompanyName string
	GeneratedAt string
	Currency    string
	Rows        []reportRowView
	Totals      reportTotalsView
}

func reportTitle(cat report.Category) string {
	title := orDefault(cat.Name, "Category")
	if cat.SubCategory != "" {
		title += " / " + cat.SubCategory
	}
	return title + " Report"
}

func buildReportView(cat report.Category, companyName string, f *money.Formatter) reportView {
	rows := make([]reportRowView, 0, len(cat.Rows))
	for i, row := range cat.Rows {
		code := "-"
		if row.Item.ItemCode != nil && *row.Item.ItemCode != "" {
			code = *row.Item.ItemCode
		}
		rows = append(rows, reportRowView{
			Index:         i + 1,
			Name:          orDefault(row.Item.Name, placeholder),
			Code:          code,
			SubCategory:   orDefault(row.SubCategory, "-"),
			Quantity:      strconv.FormatFloat(row.Item.OpeningQuantity, 'f', -1, 64),
			PurchasePrice: f.Format(row.Item.PurchasePrice),
			SalePrice:     f.Format(row.Item.SalePrice),
			StockValue:    f.Format(row.StockValue),
			Margin:        f.Number(row.Margin, 1),
			Band:          string(row.Band),
			LowStock:      row.IsLowStock,
		})
	}
	t := cat.Totals
	generated := cat.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	return reportView{
		Title:       reportTitle(cat),
		CompanyName: companyName,
		GeneratedAt: generated.Format("02 Jan 2006 15:04"),
		Currency:    f.Settings().Code,
		Rows:        rows,
		Totals: reportTotalsView{
			TotalItems:      t.TotalItems,
			StockValue:      f.Format(t.TotalStockValue),
			SaleValue:       f.Format(t.TotalSaleValue),
			PotentialProfit: f.Format(t.PotentialProfit),
			AverageMargin:   f.Number(t.AverageProfitMargin, 1),
			ProfitRatio:     f.Number(t.ProfitRatio, 1),
			LowStockItems:   t.LowStockItems,
		},
	}
}

// ReportHTML renders the standalone, printable category report.
func (r *Renderer) ReportHTML(ctx context.Context, cat report.Category, companyName string, f *money.Formatter) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "report.html.tmpl", buildReportView(cat, companyName, f)); err != nil {
		return nil, fmt.Errorf("render report html: %w", err)
	}
	return buf.Bytes(), nil
}
