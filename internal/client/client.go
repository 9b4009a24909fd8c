package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shopdesk/backend/internal/domain"
	"shopdesk/backend/internal/money"

	"github.com/go-resty/resty/v2"
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	StatusCode int
	Message    string
	Field      string
	Tab        string
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("api error %d: %s (%s)", e.StatusCode, e.Message, e.Field)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

type envelope[T any] struct {
	Status string `json:"status"`
	Data   T      `json:"data"`
	Error  string `json:"error"`
	Field  string `json:"field"`
	Tab    string `json:"tab"`
}

type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout).
		SetRetryCount(1).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return resp != nil && resp.StatusCode() == http.StatusServiceUnavailable
		})
	return &Client{http: httpClient, logger: logger.With("component", "client")}
}

func getData[T any](ctx context.Context, c *Client, path string, query map[string]string) (T, error) {
	var out envelope[T]
	req := c.http.R().SetContext(ctx).SetResult(&out)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	resp, err := req.Get(path)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("GET %s: %w", path, err)
	}
	if resp.IsError() {
		var zero T
		return zero, apiErrorFromResponse(resp)
	}
	return out.Data, nil
}

func sendData[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var out envelope[T]
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&out).
		Execute(method, path)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		var zero T
		return zero, apiErrorFromResponse(resp)
	}
	return out.Data, nil
}

func apiErrorFromResponse(resp *resty.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode(), Message: strings.TrimSpace(resp.Status())}
	var body envelope[json.RawMessage]
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Field = body.Field
		apiErr.Tab = body.Tab
	}
	return apiErr
}

// PrintData is the shop identity and currency used for invoice headers.
type PrintData struct {
	Company  domain.CompanyProfile `json:"company"`
	Currency money.Settings        `json:"currency"`
}

func (c *Client) PrintData(ctx context.Context) (PrintData, error) {
	return getData[PrintData](ctx, c, "/api/print-data", nil)
}

func (c *Client) ListUserRoles(ctx context.Context) ([]domain.UserRole, error) {
	return getData[[]domain.UserRole](ctx, c, "/api/user-role", nil)
}

func (c *Client) PatchUserRole(ctx context.Context, id int64, role string) (domain.UserRole, error) {
	return sendData[domain.UserRole](ctx, c, http.MethodPatch, "/api/user-role/"+strconv.FormatInt(id, 10), map[string]any{"role": role})
}

// Document is a rendered file as served by the backend.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
	Fallback    bool
}

// RenderInvoice asks the backend to render inv as html or pdf.
func (c *Client) RenderInvoice(ctx context.Context, inv domain.InvoiceData, format string) (Document, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "*/*").
		SetQueryParam("format", format).
		SetBody(inv).
		Post("/api/invoices/render")
	if err != nil {
		return Document{}, fmt.Errorf("render invoice: %w", err)
	}
	if resp.IsError() {
		return Document{}, apiErrorFromResponse(resp)
	}
	return documentFromResponse(resp), nil
}

func documentFromResponse(resp *resty.Response) Document {
	doc := Document{
		ContentType: resp.Header().Get("Content-Type"),
		Data:        resp.Body(),
		Fallback:    resp.Header().Get("X-Export-Fallback") != "",
	}
	if _, params, err := mime.ParseMediaType(resp.Header().Get("Content-Disposition")); err == nil {
		doc.Filename = params["filename"]
	}
	return doc
}
