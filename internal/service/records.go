package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"shopdesk/backend/internal/domain"
	"shopdesk/backend/internal/excel"
	"shopdesk/backend/internal/listing"
	"shopdesk/backend/internal/repository"
	"shopdesk/backend/internal/validation"

	"github.com/shopspring/decimal"
)

func (s *Service) ListItems(ctx context.Context, q listing.Query) ([]domain.Item, listing.PageInfo, error) {
	items, err := s.store.ListItems(ctx)
	if err != nil {
		return nil, listing.PageInfo{}, err
	}
	page, info := s.itemTable().Run(items, q)
	return page, info, nil
}

func (s *Service) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	return s.store.GetItem(ctx, id)
}

func (s *Service) CreateItem(ctx context.Context, input domain.Item) (domain.Item, error) {
	if err := validation.Item(input); err != nil {
		return domain.Item{}, err
	}
	return s.store.CreateItem(ctx, input)
}

func (s *Service) UpdateItem(ctx context.Context, id int64, input domain.Item) (*domain.Item, error) {
	if err := validation.Item(input); err != nil {
		return nil, err
	}
	return s.store.UpdateItem(ctx, id, input)
}

func (s *Service) DeleteItem(ctx context.Context, id int64) error {
	return s.store.DeleteItem(ctx, id)
}

type ImportSummary struct {
	TotalRows int `json:"total_rows"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
}

// ImportItems reads an item sheet and upserts every row by name.
func (s *Service) ImportItems(ctx context.Context, reader io.Reader) (ImportSummary, error) {
	rows, err := excel.ParseItemRows(reader)
	if err != nil {
		return ImportSummary{}, &validation.Error{Field: "file", Tab: "import", Message: err.Error()}
	}
	if len(rows) == 0 {
		return ImportSummary{}, &validation.Error{Field: "file", Tab: "import", Message: "import file has no data rows"}
	}
	created, updated, err := s.store.UpsertItems(ctx, rows)
	if err != nil {
		return ImportSummary{}, err
	}
	s.logger.Info("items imported", "rows", len(rows), "created", created, "updated", updated)
	return ImportSummary{TotalRows: len(rows), Created: created, Updated: updated}, nil
}

func (s *Service) ListAccounts(ctx context.Context, q listing.Query) ([]domain.CashBankAccount, listing.PageInfo, error) {
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return nil, listing.PageInfo{}, err
	}
	page, info := s.accountTable().Run(accounts, q)
	return page, info, nil
}

func (s *Service) GetAccount(ctx context.Context, id int64) (*domain.CashBankAccount, error) {
	return s.store.GetAccount(ctx, id)
}

func (s *Service) CreateAccount(ctx context.Context, input domain.CashBankAccount) (domain.CashBankAccount, error) {
	input.AccountType = strings.ToLower(strings.TrimSpace(input.AccountType))
	if err := validation.BankAccount(input); err != nil {
		return domain.CashBankAccount{}, err
	}
	return s.store.CreateAccount(ctx, input)
}

func (s *Service) UpdateAccount(ctx context.Context, id int64, input domain.CashBankAccount) (*domain.CashBankAccount, error) {
	input.AccountType = strings.ToLower(strings.TrimSpace(input.AccountType))
	if err := validation.BankAccount(input); err != nil {
		return nil, err
	}
	return s.store.UpdateAccount(ctx, id, input)
}

func (s *Service) DeleteAccount(ctx context.Context, id int64) error {
	return s.store.DeleteAccount(ctx, id)
}

func (s *Service) ListTransactions(ctx context.Context, accountID int64) ([]domain.BankTransaction, error) {
	if _, err := s.store.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}
	return s.store.ListTransactions(ctx, accountID)
}

func (s *Service) CreateTransaction(ctx context.Context, input domain.BankTransaction) (domain.BankTransaction, error) {
	input.Type = strings.ToLower(strings.TrimSpace(input.Type))
	if err := validation.Transaction(input); err != nil {
		return domain.BankTransaction{}, err
	}
	return s.store.CreateTransaction(ctx, input)
}

func (s *Service) ListExpenseCategories(ctx context.Context, q listing.Query) ([]domain.ExpenseCategory, listing.PageInfo, error) {
	categories, err := s.store.ListExpenseCategories(ctx)
	if err != nil {
		return nil, listing.PageInfo{}, err
	}
	page, info := s.categoryTable().Run(categories, q)
	return page, info, nil
}

func (s *Service) CreateExpenseCategory(ctx context.Context, input domain.ExpenseCategory) (domain.ExpenseCategory, error) {
	input.CategoryType = strings.ToLower(strings.TrimSpace(input.CategoryType))
	if err := validation.ExpenseCategory(input); err != nil {
		return domain.ExpenseCategory{}, err
	}
	return s.store.CreateExpenseCategory(ctx, input)
}

func (s *Service) DeleteExpenseCategory(ctx context.Context, id int64) error {
	return s.store.DeleteExpenseCategory(ctx, id)
}

func (s *Service) ListExpenses(ctx context.Context, categoryID *int64, q listing.Query) ([]domain.Expense, listing.PageInfo, error) {
	expenses, err := s.store.ListExpenses(ctx, categoryID)
	if err != nil {
		return nil, listing.PageInfo{}, err
	}
	page, info := s.expenseTable().Run(expenses, q)
	return page, info, nil
}

func (s *Service) GetExpense(ctx context.Context, id int64) (*domain.Expense, error) {
	return s.store.GetExpense(ctx, id)
}

func (s *Service) CreateExpense(ctx context.Context, input domain.Expense) (domain.Expense, error) {
	input = prepareExpense(input)
	if err := validation.Expense(input); err != nil {
		return domain.Expense{}, err
	}
	return s.store.CreateExpense(ctx, input)
}

func (s *Service) UpdateExpense(ctx context.Context, id int64, input domain.Expense) (*domain.Expense, error) {
	input = prepareExpense(input)
	if err := validation.Expense(input); err != nil {
		return nil, err
	}
	return s.store.UpdateExpense(ctx, id, input)
}

func (s *Service) DeleteExpense(ctx context.Context, id int64) error {
	return s.store.DeleteExpense(ctx, id)
}

// prepareExpense derives missing line amounts from quantity × price and sets
// the total to their sum.
func prepareExpense(input domain.Expense) domain.Expense {
	if input.PaymentType == "" {
		input.PaymentType = "cash"
	}
	total := decimal.Zero
	lines := make([]domain.ExpenseLine, len(input.Lines))
	for i, line := range input.Lines {
		line.Name = strings.TrimSpace(line.Name)
		if line.Amount == 0 && line.Quantity > 0 {
			line.Amount = lineAmount(line.Quantity, line.Price)
		}
		total = total.Add(decimal.NewFromFloat(line.Amount))
		lines[i] = line
	}
	input.Lines = lines
	input.TotalAmount = total.Round(2).InexactFloat64()
	return input
}

func lineAmount(quantity, price float64) float64 {
	return decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(price)).Round(2).InexactFloat64()
}

func (s *Service) ListPurchases(ctx context.Context, q listing.Query) ([]domain.Purchase, listing.PageInfo, error) {
	purchases, err := s.store.ListPurchases(ctx)
	if err != nil {
		return nil, listing.PageInfo{}, err
	}
	page, info := s.purchaseTable().Run(purchases, q)
	return page, info, nil
}

func (s *Service) GetPurchase(ctx context.Context, id int64) (*domain.Purchase, error) {
	return s.store.GetPurchase(ctx, id)
}

// CreatePurchase fills line names from the item catalogue, totals the bill and
// stores it. Stock moves with it.
func (s *Service) CreatePurchase(ctx context.Context, input domain.Purchase) (domain.Purchase, error) {
	if err := validation.Purchase(input); err != nil {
		return domain.Purchase{}, err
	}
	total := decimal.Zero
	lines := make([]domain.PurchaseLine, len(input.Lines))
	for i, line := range input.Lines {
		if strings.TrimSpace(line.Name) == "" {
			item, err := s.store.GetItem(ctx, line.ItemID)
			if err != nil {
				return domain.Purchase{}, fmt.Errorf("purchase line %d: %w", i+1, err)
			}
			line.Name = item.Name
		}
		if line.Amount == 0 {
			line.Amount = lineAmount(line.Quantity, line.Price)
		}
		total = total.Add(decimal.NewFromFloat(line.Amount))
		lines[i] = line
	}
	input.Lines = lines
	input.TotalAmount = total.Round(2).InexactFloat64()
	if input.PaidAmount > input.TotalAmount {
		return domain.Purchase{}, &validation.Error{Field: "paid_amount", Tab: "payment", Message: "paid_amount cannot exceed the bill total"}
	}
	return s.store.CreatePurchase(ctx, input)
}

func (s *Service) DeletePurchase(ctx context.Context, id int64) error {
	return s.store.DeletePurchase(ctx, id)
}

func (s *Service) ListUserRoles(ctx context.Context, q listing.Query) ([]domain.UserRole, listing.PageInfo, error) {
	users, err := s.store.ListUserRoles(ctx)
	if err != nil {
		return nil, listing.PageInfo{}, err
	}
	page, info := s.userTable().Run(users, q)
	return page, info, nil
}

func (s *Service) CreateUserRole(ctx context.Context, input domain.UserRole) (domain.UserRole, error) {
	input.Role = strings.ToLower(strings.TrimSpace(input.Role))
	if err := validation.User(input); err != nil {
		return domain.UserRole{}, err
	}
	return s.store.CreateUserRole(ctx, input)
}

func (s *Service) PatchUserRole(ctx context.Context, id int64, patch repository.UserRolePatch) (*domain.UserRole, error) {
	if patch.Role != nil {
		role := strings.ToLower(strings.TrimSpace(*patch.Role))
		if !validation.ValidRole(role) {
			return nil, &validation.Error{Field: "role", Tab: "profile", Message: "role must be one of " + strings.Join(domain.Roles, ", ")}
		}
		patch.Role = &role
	}
	if patch.Role == nil && patch.SyncEnabled == nil {
		return nil, &validation.Error{Field: "role", Tab: "profile", Message: "nothing to update"}
	}
	return s.store.PatchUserRole(ctx, id, patch)
}
