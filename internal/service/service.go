package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"shopdesk/backend/internal/cache"
	"shopdesk/backend/internal/domain"
	"shopdesk/backend/internal/export"
	"shopdesk/backend/internal/money"
	"shopdesk/backend/internal/render"
	"shopdesk/backend/internal/report"
	"shopdesk/backend/internal/repository"
	"shopdesk/backend/internal/validation"
)

// Store is the persistence surface the service needs. *repository.Repository
// implements it.
type Store interface {
	ListItems(ctx context.Context) ([]domain.Item, error)
	ListItemsByCategory(ctx context.Context, category, subCategory string) ([]domain.Item, error)
	GetItem(ctx context.Context, id int64) (*domain.Item, error)
	CreateItem(ctx context.Context, input domain.Item) (domain.Item, error)
	UpdateItem(ctx context.Context, id int64, input domain.Item) (*domain.Item, error)
	DeleteItem(ctx context.Context, id int64) error
	UpsertItems(ctx context.Context, rows []domain.ItemImportRow) (int, int, error)

	ListAccounts(ctx context.Context) ([]domain.CashBankAccount, error)
	GetAccount(ctx context.Context, id int64) (*domain.CashBankAccount, error)
	CreateAccount(ctx context.Context, input domain.CashBankAccount) (domain.CashBankAccount, error)
	UpdateAccount(ctx context.Context, id int64, input domain.CashBankAccount) (*domain.CashBankAccount, error)
	DeleteAccount(ctx context.Context, id int64) error
	ListTransactions(ctx context.Context, accountID int64) ([]domain.BankTransaction, error)
	CreateTransaction(ctx context.Context, input domain.BankTransaction) (domain.BankTransaction, error)

	ListExpenseCategories(ctx context.Context) ([]domain.ExpenseCategory, error)
	CreateExpenseCategory(ctx context.Context, input domain.ExpenseCategory) (domain.ExpenseCategory, error)
	DeleteExpenseCategory(ctx context.Context, id int64) error
	ListExpenses(ctx context.Context, categoryID *int64) ([]domain.Expense, error)
	GetExpense(ctx context.Context, id int64) (*domain.Expense, error)
	CreateExpense(ctx context.Context, input domain.Expense) (domain.Expense, error)
	UpdateExpense(ctx context.Context, id int64, input domain.Expense) (*domain.Expense, error)
	DeleteExpense(ctx context.Context, id int64) error

	ListPurchases(ctx context.Context) ([]domain.Purchase, error)
	GetPurchase(ctx context.Context, id int64) (*domain.Purchase, error)
	CreatePurchase(ctx context.Context, input domain.Purchase) (domain.Purchase, error)
	DeletePurchase(ctx context.Context, id int64) error

	ListUserRoles(ctx context.Context) ([]domain.UserRole, error)
	CreateUserRole(ctx context.Context, input domain.UserRole) (domain.UserRole, error)
	PatchUserRole(ctx context.Context, id int64, patch repository.UserRolePatch) (*domain.UserRole, error)

	GetCompany(ctx context.Context) (domain.CompanyProfile, error)
	UpdateCompany(ctx context.Context, input domain.CompanyProfile) (domain.CompanyProfile, error)
}

var _ Store = (*repository.Repository)(nil)

// Renderer draws invoices and reports. *render.Renderer implements it.
type Renderer interface {
	InvoiceHTML(ctx context.Context, inv domain.InvoiceData, f *money.Formatter) ([]byte, error)
	InvoicePDF(ctx context.Context, inv domain.InvoiceData, f *money.Formatter) ([]byte, error)
	ReportHTML(ctx context.Context, cat report.Category, companyName string, f *money.Formatter) ([]byte, error)
	ReportPDF(ctx context.Context, cat report.Category, companyName string, f *money.Formatter) ([]byte, error)
}

const companyCacheTTL = 10 * time.Minute

type Options struct {
	Cache    cache.CompanyCache
	Exports  *export.Manager
	Recorder export.Recorder
	Logger   *slog.Logger
	Currency money.Settings
	Now      func() time.Time
}

type Service struct {
	store    Store
	renderer Renderer
	cache    cache.CompanyCache
	exports  *export.Manager
	recorder export.Recorder
	logger   *slog.Logger
	currency money.Settings
	now      func() time.Time
}

func New(store Store, renderer Renderer, opts Options) *Service {
	s := &Service{
		store:    store,
		renderer: renderer,
		cache:    opts.Cache,
		exports:  opts.Exports,
		recorder: opts.Recorder,
		logger:   opts.Logger,
		currency: opts.Currency,
		now:      opts.Now,
	}
	if s.cache == nil {
		s.cache = cache.NoopCompanyCache{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.currency == (money.Settings{}) {
		s.currency = money.DefaultSettings()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.renderer == nil {
		s.renderer = render.New(nil)
	}
	return s
}

// Company returns the shop profile, read through the cache. Cache failures
// only cost a database round trip.
func (s *Service) Company(ctx context.Context) (domain.CompanyProfile, error) {
	if cached, ok, err := s.cache.GetCompany(ctx); err != nil {
		s.logger.Warn("company cache read failed", "error", err)
	} else if ok {
		return *cached, nil
	}
	profile, err := s.store.GetCompany(ctx)
	if err != nil {
		return domain.CompanyProfile{}, err
	}
	if err := s.cache.SetCompany(ctx, profile, companyCacheTTL); err != nil {
		s.logger.Warn("company cache write failed", "error", err)
	}
	return profile, nil
}

// UpdateCompany validates and stores the profile, then drops the cached copy.
func (s *Service) UpdateCompany(ctx context.Context, input domain.CompanyProfile) (domain.CompanyProfile, error) {
	if err := validation.Company(input); err != nil {
		return domain.CompanyProfile{}, err
	}
	updated, err := s.store.UpdateCompany(ctx, input)
	if err != nil {
		return domain.CompanyProfile{}, err
	}
	if err := s.cache.InvalidateCompany(ctx); err != nil {
		s.logger.Warn("company cache invalidate failed", "error", err)
	}
	return updated, nil
}

// PrintData is what invoice headers need: the shop identity and the currency
// amounts are printed in.
type PrintData struct {
	Company  domain.CompanyProfile `json:"company"`
	Currency money.Settings        `json:"currency"`
}

func (s *Service) PrintData(ctx context.Context) (PrintData, error) {
	profile, err := s.Company(ctx)
	if err != nil {
		return PrintData{}, err
	}
	return PrintData{Company: profile, Currency: s.currencyFor(profile)}, nil
}

// currencyFor overlays the shop's own currency on the configured default.
func (s *Service) currencyFor(profile domain.CompanyProfile) money.Settings {
	settings := s.currency
	if code := strings.TrimSpace(profile.CurrencyCode); code != "" {
		if !strings.EqualFold(code, settings.Code) {
			settings.Symbol = ""
		}
		settings.Code = strings.ToUpper(code)
	}
	if symbol := strings.TrimSpace(profile.CurrencySymbol); symbol != "" {
		settings.Symbol = symbol
	}
	return settings
}

func (s *Service) formatter(ctx context.Context) (*money.Formatter, domain.CompanyProfile, error) {
	profile, err := s.Company(ctx)
	if err != nil {
		return nil, domain.CompanyProfile{}, err
	}
	return money.NewFormatter(s.currencyFor(profile)), profile, nil
}
