package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"shopdesk/backend/internal/domain"
	"shopdesk/backend/internal/export"
	"shopdesk/backend/internal/listing"
	"shopdesk/backend/internal/money"
	"shopdesk/backend/internal/render"
	"shopdesk/backend/internal/report"
	"shopdesk/backend/internal/repository"
	"shopdesk/backend/internal/validation"
)

var fixedNow = time.Date(2026, 3, 9, 8, 30, 0, 0, time.UTC)

type fakeStore struct {
	items        []domain.Item
	company      domain.CompanyProfile
	companyReads int
	purchases    []domain.Purchase
	users        map[int64]domain.UserRole
}

func (f *fakeStore) ListItems(context.Context) ([]domain.Item, error) { return f.items, nil }

func (f *fakeStore) ListItemsByCategory(_ context.Context, category, sub string) ([]domain.Item, error) {
	out := make([]domain.Item, 0)
	for _, item := range f.items {
		if !strings.EqualFold(item.Category, category) {
			continue
		}
		if sub != "" && !strings.EqualFold(deref(item.SubCategory), sub) {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (f *fakeStore) GetItem(_ context.Context, id int64) (*domain.Item, error) {
	for _, item := range f.items {
		if item.ID == id {
			return &item, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) CreateItem(_ context.Context, input domain.Item) (domain.Item, error) {
	input.ID = int64(len(f.items) + 1)
	f.items = append(f.items, input)
	return input, nil
}

func (f *fakeStore) UpdateItem(_ context.Context, id int64, input domain.Item) (*domain.Item, error) {
	input.ID = id
	return &input, nil
}

func (f *fakeStore) DeleteItem(context.Context, int64) error { return nil }

func (f *fakeStore) UpsertItems(_ context.Context, rows []domain.ItemImportRow) (int, int, error) {
	return len(rows), 0, nil
}

func (f *fakeStore) ListAccounts(context.Context) ([]domain.CashBankAccount, error) { return nil, nil }

func (f *fakeStore) GetAccount(context.Context, int64) (*domain.CashBankAccount, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeStore) CreateAccount(_ context.Context, input domain.CashBankAccount) (domain.CashBankAccount, error) {
	return input, nil
}

func (f *fakeStore) UpdateAccount(_ context.Context, _ int64, input domain.CashBankAccount) (*domain.CashBankAccount, error) {
	return &input, nil
}

func (f *fakeStore) DeleteAccount(context.Context, int64) error { return nil }

func (f *fakeStore) ListTransactions(context.Context, int64) ([]domain.BankTransaction, error) {
	return nil, nil
}

func (f *fakeStore) CreateTransaction(_ context.Context, input domain.BankTransaction) (domain.BankTransaction, error) {
	return input, nil
}

func (f *fakeStore) ListExpenseCategories(context.Context) ([]domain.ExpenseCategory, error) {
	return nil, nil
}

func (f *fakeStore) CreateExpenseCategory(_ context.Context, input domain.ExpenseCategory) (domain.ExpenseCategory, error) {
	return input, nil
}

func (f *fakeStore) DeleteExpenseCategory(context.Context, int64) error { return nil }

func (f *fakeStore) ListExpenses(context.Context, *int64) ([]domain.Expense, error) { return nil, nil }

func (f *fakeStore) GetExpense(context.Context, int64) (*domain.Expense, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeStore) CreateExpense(_ context.Context, input domain.Expense) (domain.Expense, error) {
	return input, nil
}

func (f *fakeStore) UpdateExpense(_ context.Context, _ int64, input domain.Expense) (*domain.Expense, error) {
	return &input, nil
}

func (f *fakeStore) DeleteExpense(context.Context, int64) error { return nil }

func (f *fakeStore) ListPurchases(context.Context) ([]domain.Purchase, error) { return f.purchases, nil }

func (f *fakeStore) GetPurchase(context.Context, int64) (*domain.Purchase, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeStore) CreatePurchase(_ context.Context, input domain.Purchase) (domain.Purchase, error) {
	input.BalanceDue = input.TotalAmount - input.PaidAmount
	f.purchases = append(f.purchases, input)
	return input, nil
}

func (f *fakeStore) DeletePurchase(context.Context, int64) error { return nil }

func (f *fakeStore) ListUserRoles(context.Context) ([]domain.UserRole, error) { return nil, nil }

func (f *fakeStore) CreateUserRole(_ context.Context, input domain.UserRole) (domain.UserRole, error) {
	return input, nil
}

func (f *fakeStore) PatchUserRole(_ context.Context, id int64, patch repository.UserRolePatch) (*domain.UserRole, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	if patch.SyncEnabled != nil {
		u.SyncEnabled = *patch.SyncEnabled
	}
	f.users[id] = u
	return &u, nil
}

func (f *fakeStore) GetCompany(context.Context) (domain.CompanyProfile, error) {
	f.companyReads++
	return f.company, nil
}

func (f *fakeStore) UpdateCompany(_ context.Context, input domain.CompanyProfile) (domain.CompanyProfile, error) {
	f.company = input
	return input, nil
}

type memoryCache struct {
	profile     *domain.CompanyProfile
	invalidated int
}

func (c *memoryCache) GetCompany(context.Context) (*domain.CompanyProfile, bool, error) {
	return c.profile, c.profile != nil, nil
}

func (c *memoryCache) SetCompany(_ context.Context, profile domain.CompanyProfile, _ time.Duration) error {
	c.profile = &profile
	return nil
}

func (c *memoryCache) InvalidateCompany(context.Context) error {
	c.profile = nil
	c.invalidated++
	return nil
}

type failingPDF struct {
	*render.Renderer
	err error
}

func (f failingPDF) ReportPDF(context.Context, report.Category, string, *money.Formatter) ([]byte, error) {
	return nil, f.err
}

type countingRecorder struct {
	fallbacks int
}

func (r *countingRecorder) ObserveExport(string, string, string, time.Duration) {}
func (r *countingRecorder) Fallback(string)                                     { r.fallbacks++ }

func strPtr(v string) *string { return &v }

func sampleStore() *fakeStore {
	return &fakeStore{
		company: domain.CompanyProfile{Name: "Corner Shop", Address: "12 High Street"},
		items: []domain.Item{
			{ID: 1, Name: "Pencil", Category: "Stationery", SubCategory: strPtr("Writing"), Unit: "pcs", SalePrice: 2, PurchasePrice: 1, OpeningQuantity: 100, MinStockToMaintain: 10},
			{ID: 2, Name: "eraser", Category: "Stationery", Unit: "pcs", SalePrice: 1, PurchasePrice: 0.5, OpeningQuantity: 3, MinStockToMaintain: 5},
			{ID: 3, Name: "Apple", Category: "Fruit", Unit: "kg", SalePrice: 4, PurchasePrice: 3, OpeningQuantity: 20},
		},
		users: map[int64]domain.UserRole{7: {ID: 7, Name: "Sam", Email: "sam@example.com", Role: domain.RoleStaff}},
	}
}

func newTestService(store *fakeStore, opts Options) *Service {
	opts.Now = func() time.Time { return fixedNow }
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	renderer := render.New(nil).WithClock(func() time.Time { return fixedNow })
	return New(store, renderer, opts)
}

func TestCreateItemRejectsInvalidInput(t *testing.T) {
	store := sampleStore()
	svc := newTestService(store, Options{})

	_, err := svc.CreateItem(context.Background(), domain.Item{Name: "Pen", Category: "Stationery", Unit: "pcs"})
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Field != "sale_price" || verr.Tab != "pricing" {
		t.Fatalf("unexpected failing field %s/%s", verr.Field, verr.Tab)
	}
	if len(store.items) != 3 {
		t.Fatalf("store was written despite validation failure")
	}
}

func TestListItemsSearchSortAndPage(t *testing.T) {
	svc := newTestService(sampleStore(), Options{})

	items, info, err := svc.ListItems(context.Background(), listing.Query{Search: "STATION", SortKey: "name", Direction: listing.Asc, Page: 1, PerPage: 1})
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if info.Total != 2 || info.TotalPages != 2 {
		t.Fatalf("unexpected page info %+v", info)
	}
	if len(items) != 1 || items[0].Name != "eraser" {
		t.Fatalf("expected eraser first with case-insensitive collation, got %+v", items)
	}
}

func TestCompanyIsReadThroughCache(t *testing.T) {
	store := sampleStore()
	c := &memoryCache{}
	svc := newTestService(store, Options{Cache: c})

	for i := 0; i < 3; i++ {
		if _, err := svc.Company(context.Background()); err != nil {
			t.Fatalf("Company: %v", err)
		}
	}
	if store.companyReads != 1 {
		t.Fatalf("expected one store read, got %d", store.companyReads)
	}

	if _, err := svc.UpdateCompany(context.Background(), domain.CompanyProfile{Name: "New Name"}); err != nil {
		t.Fatalf("UpdateCompany: %v", err)
	}
	if c.invalidated != 1 {
		t.Fatalf("expected cache invalidation after update")
	}
	profile, err := svc.Company(context.Background())
	if err != nil {
		t.Fatalf("Company: %v", err)
	}
	if profile.Name != "New Name" {
		t.Fatalf("expected fresh profile, got %q", profile.Name)
	}
}

func TestPrintDataUsesShopCurrency(t *testing.T) {
	store := sampleStore()
	store.company.CurrencyCode = "eur"
	store.company.CurrencySymbol = "€"
	svc := newTestService(store, Options{Currency: money.DefaultSettings()})

	data, err := svc.PrintData(context.Background())
	if err != nil {
		t.Fatalf("PrintData: %v", err)
	}
	if data.Currency.Code != "EUR" || data.Currency.Symbol != "€" {
		t.Fatalf("unexpected currency %+v", data.Currency)
	}
	if data.Company.Name != "Corner Shop" {
		t.Fatalf("unexpected company %+v", data.Company)
	}
}

func TestRenderInvoiceFillsCompanyFromProfile(t *testing.T) {
	svc := newTestService(sampleStore(), Options{})
	inv := domain.InvoiceData{
		InvoiceNumber: "INV 7",
		Items:         []domain.LineItem{{Description: "Pencil", Quantity: 2, Rate: 2, Amount: 4}},
		TotalAmount:   4,
	}

	html, err := svc.RenderInvoice(context.Background(), inv, "html")
	if err != nil {
		t.Fatalf("RenderInvoice html: %v", err)
	}
	if !strings.Contains(string(html.Data), "Corner Shop") || !strings.Contains(string(html.Data), "12 High Street") {
		t.Fatalf("invoice html does not carry the shop profile")
	}
	if html.Filename != "Invoice-INV-7.html" {
		t.Fatalf("unexpected html filename %q", html.Filename)
	}

	pdf, err := svc.RenderInvoice(context.Background(), inv, "PDF")
	if err != nil {
		t.Fatalf("RenderInvoice pdf: %v", err)
	}
	if !bytes.HasPrefix(pdf.Data, []byte("%PDF")) || pdf.Filename != "Invoice-INV-7.pdf" || pdf.ContentType != contentTypePDF {
		t.Fatalf("unexpected pdf result %q %q", pdf.Filename, pdf.ContentType)
	}

	if _, err := svc.RenderInvoice(context.Background(), inv, "docx"); !errors.As(err, new(*validation.Error)) {
		t.Fatalf("expected validation error for unknown format, got %v", err)
	}
}

func TestCategoryReportFormats(t *testing.T) {
	svc := newTestService(sampleStore(), Options{})
	ctx := context.Background()

	data, err := svc.CategoryReportData(ctx, "stationery", "")
	if err != nil {
		t.Fatalf("CategoryReportData: %v", err)
	}
	if data.Totals.TotalItems != 2 || data.Totals.LowStockItems != 1 {
		t.Fatalf("unexpected totals %+v", data.Totals)
	}

	tests := []struct {
		format      string
		filename    string
		contentType string
	}{
		{format: "pdf", filename: "stationery_Report_2026-03-09.pdf", contentType: contentTypePDF},
		{format: "html", filename: "stationery_Report_2026-03-09.pdf.html", contentType: contentTypeHTML},
		{format: "xlsx", filename: "stationery_Report_2026-03-09.xlsx", contentType: contentTypeXLSX},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			result, err := svc.CategoryReport(ctx, "stationery", "", tt.format)
			if err != nil {
				t.Fatalf("CategoryReport: %v", err)
			}
			if result.Filename != tt.filename || result.ContentType != tt.contentType || result.Fallback {
				t.Fatalf("unexpected result %q %q fallback=%v", result.Filename, result.ContentType, result.Fallback)
			}
			if len(result.Data) == 0 {
				t.Fatalf("empty document")
			}
		})
	}
}

func TestCategoryReportFallsBackToHTML(t *testing.T) {
	store := sampleStore()
	recorder := &countingRecorder{}
	svc := newTestService(store, Options{Recorder: recorder})
	svc.renderer = failingPDF{Renderer: render.New(nil), err: errors.New("font table missing")}

	result, err := svc.CategoryReport(context.Background(), "Fruit", "", "pdf")
	if err != nil {
		t.Fatalf("CategoryReport: %v", err)
	}
	if !result.Fallback || result.ContentType != contentTypeHTML || result.Filename != "Fruit_Report_2026-03-09.pdf.html" {
		t.Fatalf("expected html fallback, got %+v", result.Filename)
	}
	if !strings.Contains(string(result.Data), "Apple") {
		t.Fatalf("fallback document is missing rows")
	}
	if recorder.fallbacks != 1 {
		t.Fatalf("expected one recorded fallback, got %d", recorder.fallbacks)
	}
}

func TestCategoryReportCancelledDoesNotFallBack(t *testing.T) {
	svc := newTestService(sampleStore(), Options{})
	svc.renderer = failingPDF{Renderer: render.New(nil), err: context.Canceled}

	_, err := svc.CategoryReport(context.Background(), "Fruit", "", "pdf")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation to surface, got %v", err)
	}
}

func TestSubmitExportRunsInBackground(t *testing.T) {
	manager := export.NewManager(time.Minute, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer manager.Close()
	svc := newTestService(sampleStore(), Options{Exports: manager})

	status, err := svc.SubmitExport(ExportRequest{Kind: KindCategoryReport, Format: "xlsx", Category: "Fruit"})
	if err != nil {
		t.Fatalf("SubmitExport: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	final, err := manager.Wait(ctx, status.ID)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if final.State != export.StateDone {
		t.Fatalf("expected done, got %s (%s)", final.State, final.Error)
	}
	result, err := svc.ExportResult(status.ID)
	if err != nil {
		t.Fatalf("ExportResult: %v", err)
	}
	if result.Filename != "Fruit_Report_2026-03-09.xlsx" {
		t.Fatalf("unexpected filename %q", result.Filename)
	}
}

func TestSubmitExportValidation(t *testing.T) {
	svc := newTestService(sampleStore(), Options{})
	if _, err := svc.SubmitExport(ExportRequest{Kind: KindInvoice}); !errors.Is(err, ErrExportsDisabled) {
		t.Fatalf("expected ErrExportsDisabled, got %v", err)
	}

	manager := export.NewManager(time.Minute, nil, nil)
	defer manager.Close()
	svc = newTestService(sampleStore(), Options{Exports: manager})
	for _, req := range []ExportRequest{
		{Kind: KindInvoice},
		{Kind: KindCategoryReport},
		{Kind: "ledger"},
		{Kind: KindInvoice, Format: "xlsx", Invoice: &domain.InvoiceData{}},
	} {
		if _, err := svc.SubmitExport(req); !errors.As(err, new(*validation.Error)) {
			t.Errorf("SubmitExport(%+v): expected validation error, got %v", req, err)
		}
	}
}

func TestCreatePurchaseTotalsLines(t *testing.T) {
	store := sampleStore()
	svc := newTestService(store, Options{})

	created, err := svc.CreatePurchase(context.Background(), domain.Purchase{
		PartyName:  "Wholesale Co",
		BillDate:   fixedNow,
		PaidAmount: 10,
		Lines: []domain.PurchaseLine{
			{ItemID: 1, Quantity: 10, Price: 1.25},
			{ItemID: 3, Quantity: 2, Price: 3, Amount: 6},
		},
	})
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}
	if created.TotalAmount != 18.5 || created.BalanceDue != 8.5 {
		t.Fatalf("unexpected totals %v / %v", created.TotalAmount, created.BalanceDue)
	}
	if created.Lines[0].Name != "Pencil" || created.Lines[0].Amount != 12.5 {
		t.Fatalf("line not filled from catalogue: %+v", created.Lines[0])
	}

	_, err = svc.CreatePurchase(context.Background(), domain.Purchase{
		PartyName:  "Wholesale Co",
		BillDate:   fixedNow,
		PaidAmount: 100,
		Lines:      []domain.PurchaseLine{{ItemID: 1, Quantity: 1, Price: 1}},
	})
	var verr *validation.Error
	if !errors.As(err, &verr) || verr.Field != "paid_amount" {
		t.Fatalf("expected paid_amount validation error, got %v", err)
	}
}

func TestCreateExpenseDerivesTotal(t *testing.T) {
	svc := newTestService(sampleStore(), Options{})
	created, err := svc.CreateExpense(context.Background(), domain.Expense{
		CategoryID:  1,
		ExpenseDate: fixedNow,
		Lines: []domain.ExpenseLine{
			{Name: "Rent", Amount: 500},
			{Name: "Bulbs", Quantity: 4, Price: 2.5},
		},
	})
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}
	if created.TotalAmount != 510 || created.PaymentType != "cash" {
		t.Fatalf("unexpected expense %+v", created)
	}
}

func TestPatchUserRole(t *testing.T) {
	store := sampleStore()
	svc := newTestService(store, Options{})

	role := "Manager"
	updated, err := svc.PatchUserRole(context.Background(), 7, repository.UserRolePatch{Role: &role})
	if err != nil {
		t.Fatalf("PatchUserRole: %v", err)
	}
	if updated.Role != domain.RoleManager {
		t.Fatalf("expected manager, got %q", updated.Role)
	}

	bad := "owner"
	if _, err := svc.PatchUserRole(context.Background(), 7, repository.UserRolePatch{Role: &bad}); !errors.As(err, new(*validation.Error)) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.PatchUserRole(context.Background(), 7, repository.UserRolePatch{}); err == nil {
		t.Fatalf("expected error for empty patch")
	}
}
