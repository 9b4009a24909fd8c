package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shopdesk/backend/internal/domain"
	"shopdesk/backend/internal/excel"
	"shopdesk/backend/internal/export"
	"shopdesk/backend/internal/render"
	"shopdesk/backend/internal/report"
	"shopdesk/backend/internal/validation"
)

const (
	FormatJSON = "json"
	FormatHTML = "html"
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"

	KindInvoice        = "invoice"
	KindCategoryReport = "category_report"

	contentTypeHTML = "text/html; charset=utf-8"
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var ErrExportsDisabled = errors.New("background exports are not configured")

func unsupportedFormat(format string, allowed ...string) error {
	return &validation.Error{
		Field:   "format",
		Tab:     "export",
		Message: fmt.Sprintf("format %q is not supported, use one of %s", format, strings.Join(allowed, ", ")),
	}
}

func normalizeFormat(raw, fallback string) string {
	format := strings.ToLower(strings.TrimSpace(raw))
	if format == "" {
		return fallback
	}
	return format
}

// RenderInvoice renders inv as a printable HTML page or a PDF file. Empty
// company fields are taken from the shop profile.
func (s *Service) RenderInvoice(ctx context.Context, inv domain.InvoiceData, format string) (export.Result, error) {
	format = normalizeFormat(format, FormatHTML)
	if format != FormatHTML && format != FormatPDF {
		return export.Result{}, unsupportedFormat(format, FormatHTML, FormatPDF)
	}
	f, profile, err := s.formatter(ctx)
	if err != nil {
		return export.Result{}, err
	}
	inv = inv.WithCompany(profile)
	filename := render.InvoiceFilename(inv.InvoiceNumber)

	if format == FormatHTML {
		data, err := s.renderer.InvoiceHTML(ctx, inv, f)
		if err != nil {
			return export.Result{}, err
		}
		return export.Result{
			Filename:    strings.TrimSuffix(filename, ".pdf") + ".html",
			ContentType: contentTypeHTML,
			Data:        data,
		}, nil
	}

	data, err := s.renderer.InvoicePDF(ctx, inv, f)
	if err != nil {
		return export.Result{}, fmt.Errorf("export invoice %q: %w", inv.InvoiceNumber, err)
	}
	return export.Result{Filename: filename, ContentType: contentTypePDF, Data: data}, nil
}

// CategoryReportData totals the items of one category (and optional sub
// category).
func (s *Service) CategoryReportData(ctx context.Context, category, subCategory string) (report.Category, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return report.Category{}, &validation.Error{Field: "category", Tab: "report", Message: "category is required"}
	}
	items, err := s.store.ListItemsByCategory(ctx, category, subCategory)
	if err != nil {
		return report.Category{}, err
	}
	return report.Build(category, strings.TrimSpace(subCategory), items, s.now()), nil
}

// CategoryReport renders the report document. A failed PDF degrades to the
// HTML document unless the export was cancelled.
func (s *Service) CategoryReport(ctx context.Context, category, subCategory, format string) (export.Result, error) {
	result, err := s.categoryReport(ctx, category, subCategory, format)
	if err != nil {
		return export.Result{}, err
	}
	if result.Fallback && s.recorder != nil {
		s.recorder.Fallback(KindCategoryReport)
	}
	return result, nil
}

func (s *Service) categoryReport(ctx context.Context, category, subCategory, format string) (export.Result, error) {
	format = normalizeFormat(format, FormatPDF)
	if format != FormatHTML && format != FormatPDF && format != FormatXLSX {
		return export.Result{}, unsupportedFormat(format, FormatHTML, FormatPDF, FormatXLSX)
	}
	cat, err := s.CategoryReportData(ctx, category, subCategory)
	if err != nil {
		return export.Result{}, err
	}
	stem := report.FileStem(cat.Name, cat.GeneratedAt)

	if format == FormatXLSX {
		data, err := excel.WriteCategoryReport(ctx, cat)
		if err != nil {
			return export.Result{}, fmt.Errorf("export category %q: %w", cat.Name, err)
		}
		return export.Result{Filename: stem + ".xlsx", ContentType: contentTypeXLSX, Data: data}, nil
	}

	f, profile, err := s.formatter(ctx)
	if err != nil {
		return export.Result{}, err
	}
	companyName := strings.TrimSpace(profile.Name)

	if format == FormatPDF {
		data, pdfErr := s.renderer.ReportPDF(ctx, cat, companyName, f)
		if pdfErr == nil {
			return export.Result{Filename: stem + ".pdf", ContentType: contentTypePDF, Data: data}, nil
		}
		if ctx.Err() != nil || errors.Is(pdfErr, context.Canceled) {
			return export.Result{}, pdfErr
		}
		s.logger.Warn("category report pdf failed, serving html", "category", cat.Name, "error", pdfErr)
	}

	data, err := s.renderer.ReportHTML(ctx, cat, companyName, f)
	if err != nil {
		return export.Result{}, fmt.Errorf("export category %q: %w", cat.Name, err)
	}
	return export.Result{
		Filename:    stem + ".pdf.html",
		ContentType: contentTypeHTML,
		Data:        data,
		Fallback:    format == FormatPDF,
	}, nil
}

// ExportRequest describes a background export. Invoice is used for invoice
// exports, Category and SubCategory for category reports.
type ExportRequest struct {
	Kind        string              `json:"kind"`
	Format      string              `json:"format"`
	Invoice     *domain.InvoiceData `json:"invoice,omitempty"`
	Category    string              `json:"category,omitempty"`
	SubCategory string              `json:"sub_category,omitempty"`
}

// SubmitExport queues the export and returns its initial status. The job runs
// on the export manager's context, not the caller's.
func (s *Service) SubmitExport(req ExportRequest) (export.Status, error) {
	if s.exports == nil {
		return export.Status{}, ErrExportsDisabled
	}
	kind := strings.ToLower(strings.TrimSpace(req.Kind))
	switch kind {
	case KindInvoice:
		if req.Invoice == nil {
			return export.Status{}, &validation.Error{Field: "invoice", Tab: "export", Message: "invoice is required"}
		}
		format := normalizeFormat(req.Format, FormatPDF)
		if format != FormatHTML && format != FormatPDF {
			return export.Status{}, unsupportedFormat(format, FormatHTML, FormatPDF)
		}
		inv := *req.Invoice
		return s.exports.Submit(kind, format, func(ctx context.Context) (export.Result, error) {
			return s.RenderInvoice(ctx, inv, format)
		}), nil
	case KindCategoryReport:
		if strings.TrimSpace(req.Category) == "" {
			return export.Status{}, &validation.Error{Field: "category", Tab: "export", Message: "category is required"}
		}
		format := normalizeFormat(req.Format, FormatPDF)
		if format != FormatHTML && format != FormatPDF && format != FormatXLSX {
			return export.Status{}, unsupportedFormat(format, FormatHTML, FormatPDF, FormatXLSX)
		}
		category, sub := req.Category, req.SubCategory
		return s.exports.Submit(kind, format, func(ctx context.Context) (export.Result, error) {
			return s.categoryReport(ctx, category, sub, format)
		}), nil
	}
	return export.Status{}, &validation.Error{
		Field:   "kind",
		Tab:     "export",
		Message: fmt.Sprintf("kind must be %s or %s", KindInvoice, KindCategoryReport),
	}
}

func (s *Service) ExportStatus(id string) (export.Status, error) {
	if s.exports == nil {
		return export.Status{}, ErrExportsDisabled
	}
	return s.exports.Get(id)
}

func (s *Service) ExportResult(id string) (export.Result, error) {
	if s.exports == nil {
		return export.Result{}, ErrExportsDisabled
	}
	return s.exports.Result(id)
}

func (s *Service) CancelExport(id string) (export.Status, error) {
	if s.exports == nil {
		return export.Status{}, ErrExportsDisabled
	}
	return s.exports.Cancel(id)
}
