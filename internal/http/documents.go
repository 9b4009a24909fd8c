package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"shopdesk/backend/internal/domain"
	"shopdesk/backend/internal/service"
	"shopdesk/backend/internal/validation"

	"github.com/go-chi/chi/v5"
)

// invoiceRequest accepts plain YYYY-MM-DD dates on top of InvoiceData.
type invoiceRequest struct {
	domain.InvoiceData
	InvoiceDate string `json:"invoice_date"`
	DueDate     string `json:"due_date"`
}

func (req invoiceRequest) invoice() (domain.InvoiceData, error) {
	inv := req.InvoiceData
	date, err := parseOptionalTime(req.InvoiceDate)
	if err != nil {
		return domain.InvoiceData{}, &validation.Error{Field: "invoice_date", Tab: "invoice", Message: err.Error()}
	}
	due, err := parseOptionalTime(req.DueDate)
	if err != nil {
		return domain.InvoiceData{}, &validation.Error{Field: "due_date", Tab: "invoice", Message: err.Error()}
	}
	inv.InvoiceDate = date
	inv.DueDate = due
	return inv, nil
}

// RenderInvoice returns the invoice as an HTML page for printing, or as a PDF
// download with format=pdf.
func (h *Handler) RenderInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	inv, err := req.invoice()
	if err != nil {
		h.failure(w, r, err, "invoice not found")
		return
	}
	format := r.URL.Query().Get("format")
	doc, err := h.svc.RenderInvoice(r.Context(), inv, format)
	if err != nil {
		h.failure(w, r, err, "invoice not found")
		return
	}
	writeDocument(w, doc, strings.EqualFold(format, service.FormatPDF) || wantsDownload(r))
}

func (h *Handler) CategoryReport(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	if unescaped, err := url.PathUnescape(category); err == nil {
		category = unescaped
	}
	query := r.URL.Query()
	subCategory := query.Get("sub_category")
	format := strings.ToLower(strings.TrimSpace(query.Get("format")))

	if format == "" || format == service.FormatJSON {
		data, err := h.svc.CategoryReportData(r.Context(), category, subCategory)
		if err != nil {
			h.failure(w, r, err, "category not found")
			return
		}
		writeJSON(w, http.StatusOK, data)
		return
	}

	doc, err := h.svc.CategoryReport(r.Context(), category, subCategory, format)
	if err != nil {
		h.failure(w, r, err, "category not found")
		return
	}
	attachment := format != service.FormatHTML || wantsDownload(r)
	writeDocument(w, doc, attachment)
}

type exportRequest struct {
	Kind        string          `json:"kind"`
	Format      string          `json:"format"`
	Invoice     *invoiceRequest `json:"invoice"`
	Category    string          `json:"category"`
	SubCategory string          `json:"sub_category"`
}

func (h *Handler) SubmitExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	submit := service.ExportRequest{
		Kind:        req.Kind,
		Format:      req.Format,
		Category:    req.Category,
		SubCategory: req.SubCategory,
	}
	if req.Invoice != nil {
		inv, err := req.Invoice.invoice()
		if err != nil {
			h.failure(w, r, err, "invoice not found")
			return
		}
		submit.Invoice = &inv
	}
	status, err := h.svc.SubmitExport(submit)
	if err != nil {
		h.failure(w, r, err, "export not found")
		return
	}
	w.Header().Set("Location", "/api/exports/"+status.ID)
	writeJSON(w, http.StatusAccepted, status)
}

func (h *Handler) ExportStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.svc.ExportStatus(chi.URLParam(r, "id"))
	if err != nil {
		h.failure(w, r, err, "export not found")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) DownloadExport(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.ExportResult(chi.URLParam(r, "id"))
	if err != nil {
		h.failure(w, r, err, "export not found")
		return
	}
	writeDocument(w, doc, true)
}

func (h *Handler) CancelExport(w http.ResponseWriter, r *http.Request) {
	status, err := h.svc.CancelExport(chi.URLParam(r, "id"))
	if err != nil {
		h.failure(w, r, err, "export not found")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func wantsDownload(r *http.Request) bool {
	raw := strings.TrimSpace(r.URL.Query().Get("download"))
	if raw == "" {
		return false
	}
	download, err := strconv.ParseBool(raw)
	return err == nil && download
}
