package service

import (
	"golang.org/x/text/language"

	"shopdesk/backend/internal/domain"
	"shopdesk/backend/internal/listing"
)

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func textColumn[T any](fn func(T) string) listing.Column[T] {
	return listing.Column[T]{Text: fn}
}

func numberColumn[T any](fn func(T) float64) listing.Column[T] {
	return listing.Column[T]{Number: fn}
}

func (s *Service) locale() language.Tag {
	tag, err := language.Parse(s.currency.Locale)
	if err != nil {
		return language.AmericanEnglish
	}
	return tag
}

func (s *Service) itemTable() listing.Table[domain.Item] {
	return listing.Table[domain.Item]{
		Locale: s.locale(),
		Fields: []func(domain.Item) string{
			func(i domain.Item) string { return i.Name },
			func(i domain.Item) string { return deref(i.ItemCode) },
			func(i domain.Item) string { return i.Category },
			func(i domain.Item) string { return deref(i.SubCategory) },
		},
		Columns: map[string]listing.Column[domain.Item]{
			"name":             textColumn(func(i domain.Item) string { return i.Name }),
			"category":         textColumn(func(i domain.Item) string { return i.Category }),
			"sale_price":       numberColumn(func(i domain.Item) float64 { return i.SalePrice }),
			"purchase_price":   numberColumn(func(i domain.Item) float64 { return i.PurchasePrice }),
			"opening_quantity": numberColumn(func(i domain.Item) float64 { return i.OpeningQuantity }),
		},
	}
}

func (s *Service) accountTable() listing.Table[domain.CashBankAccount] {
	return listing.Table[domain.CashBankAccount]{
		Locale: s.locale(),
		Fields: []func(domain.CashBankAccount) string{
			func(a domain.CashBankAccount) string { return a.AccountName },
			func(a domain.CashBankAccount) string { return deref(a.BankName) },
			func(a domain.CashBankAccount) string { return deref(a.AccountNumber) },
		},
		Columns: map[string]listing.Column[domain.CashBankAccount]{
			"account_name":    textColumn(func(a domain.CashBankAccount) string { return a.AccountName }),
			"account_type":    textColumn(func(a domain.CashBankAccount) string { return a.AccountType }),
			"opening_balance": numberColumn(func(a domain.CashBankAccount) float64 { return a.OpeningBalance }),
			"current_balance": numberColumn(func(a domain.CashBankAccount) float64 { return a.CurrentBalance }),
		},
	}
}

func (s *Service) categoryTable() listing.Table[domain.ExpenseCategory] {
	return listing.Table[domain.ExpenseCategory]{
		Locale: s.locale(),
		Fields: []func(domain.ExpenseCategory) string{
			func(c domain.ExpenseCategory) string { return c.Name },
		},
		Columns: map[string]listing.Column[domain.ExpenseCategory]{
			"name":         textColumn(func(c domain.ExpenseCategory) string { return c.Name }),
			"total_amount": numberColumn(func(c domain.ExpenseCategory) float64 { return c.TotalAmount }),
		},
	}
}

func (s *Service) expenseTable() listing.Table[domain.Expense] {
	return listing.Table[domain.Expense]{
		Locale: s.locale(),
		Fields: []func(domain.Expense) string{
			func(e domain.Expense) string { return e.CategoryName },
			func(e domain.Expense) string { return deref(e.ExpenseNumber) },
			func(e domain.Expense) string { return deref(e.Description) },
			func(e domain.Expense) string { return e.PaymentType },
		},
		Columns: map[string]listing.Column[domain.Expense]{
			"expense_date":  numberColumn(func(e domain.Expense) float64 { return float64(e.ExpenseDate.Unix()) }),
			"category_name": textColumn(func(e domain.Expense) string { return e.CategoryName }),
			"total_amount":  numberColumn(func(e domain.Expense) float64 { return e.TotalAmount }),
		},
	}
}

func (s *Service) purchaseTable() listing.Table[domain.Purchase] {
	return listing.Table[domain.Purchase]{
		Locale: s.locale(),
		Fields: []func(domain.Purchase) string{
			func(p domain.Purchase) string { return p.PartyName },
			func(p domain.Purchase) string { return deref(p.BillNumber) },
		},
		Columns: map[string]listing.Column[domain.Purchase]{
			"bill_date":    numberColumn(func(p domain.Purchase) float64 { return float64(p.BillDate.Unix()) }),
			"party_name":   textColumn(func(p domain.Purchase) string { return p.PartyName }),
			"total_amount": numberColumn(func(p domain.Purchase) float64 { return p.TotalAmount }),
			"balance_due":  numberColumn(func(p domain.Purchase) float64 { return p.BalanceDue }),
		},
	}
}

func (s *Service) userTable() listing.Table[domain.UserRole] {
	return listing.Table[domain.UserRole]{
		Locale: s.locale(),
		Fields: []func(domain.UserRole) string{
			func(u domain.UserRole) string { return u.Name },
			func(u domain.UserRole) string { return u.Email },
			func(u domain.UserRole) string { return u.Role },
		},
		Columns: map[string]listing.Column[domain.UserRole]{
			"name":  textColumn(func(u domain.UserRole) string { return u.Name }),
			"email": textColumn(func(u domain.UserRole) string { return u.Email }),
			"role":  textColumn(func(u domain.UserRole) string { return u.Role }),
		},
	}
}
