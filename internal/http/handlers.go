package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shopdesk/backend/internal/export"
	"shopdesk/backend/internal/listing"
	"shopdesk/backend/internal/repository"
	"shopdesk/backend/internal/service"
	"shopdesk/backend/internal/validation"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	svc    *service.Service
	logger *slog.Logger
}

func NewHandler(svc *service.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

type envelope struct {
	Status     string            `json:"status"`
	Data       any               `json:"data,omitempty"`
	Pagination *listing.PageInfo `json:"pagination,omitempty"`
	Error      string            `json:"error,omitempty"`
	Field      string            `json:"field,omitempty"`
	Tab        string            `json:"tab,omitempty"`
}

// failure maps service errors to a status code and message. Unknown errors
// are logged and reported as 500.
func (h *Handler) failure(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		writeEnvelope(w, http.StatusBadRequest, envelope{Status: "error", Error: verr.Message, Field: verr.Field, Tab: verr.Tab})
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, export.ErrNotFound):
		writeError(w, http.StatusNotFound, notFound)
	case errors.Is(err, repository.ErrConflict):
		writeError(w, http.StatusConflict, "a record with the same name already exists")
	case errors.Is(err, repository.ErrInUse):
		writeError(w, http.StatusConflict, "record is still referenced by other records")
	case errors.Is(err, export.ErrNotReady), errors.Is(err, export.ErrFinished):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrExportsDisabled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, "request cancelled")
	default:
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

func listQuery(r *http.Request) (listing.Query, error) {
	query := r.URL.Query()
	page, err := parseOptionalInt(query.Get("page"), 1)
	if err != nil {
		return listing.Query{}, err
	}
	perPage, err := parseOptionalInt(query.Get("per_page"), 0)
	if err != nil {
		return listing.Query{}, err
	}
	return listing.Query{
		Search:    query.Get("search"),
		SortKey:   strings.TrimSpace(query.Get("sort")),
		Direction: listing.ParseDirection(query.Get("dir")),
		Page:      page,
		PerPage:   perPage,
	}, nil
}

func writeList(w http.ResponseWriter, items any, info listing.PageInfo) {
	writeEnvelope(w, http.StatusOK, envelope{Status: "success", Data: items, Pagination: &info})
}

// writeDocument sends a rendered file. attachment selects a download over
// inline display.
func writeDocument(w http.ResponseWriter, doc export.Result, attachment bool) {
	disposition := "inline"
	if attachment {
		disposition = "attachment"
	}
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": doc.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
	if doc.Fallback {
		w.Header().Set("X-Export-Fallback", "html")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Data)
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func parseOptionalInt(raw string, defaultValue int) (int, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer: %s", raw)
	}
	if parsed < 0 {
		return 0, fmt.Errorf("value cannot be negative")
	}
	return parsed, nil
}

func parseOptionalTime(raw string) (*time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return &parsed, nil
		}
	}
	return nil, fmt.Errorf("invalid time: %s", raw)
}

func parseOptionalInt64(raw string) (*int64, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil || parsed <= 0 {
		return nil, fmt.Errorf("invalid id value: %s", raw)
	}
	return &parsed, nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id")
	}
	return id, nil
}

func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return 0, false
	}
	return id, true
}

func writeEnvelope(w http.ResponseWriter, status int, payload envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, status, envelope{Status: "success", Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeEnvelope(w, status, envelope{Status: "error", Error: message})
}
