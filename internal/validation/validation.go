package validation

import (
	"fmt"
	"strings"
	"time"

	"shopdesk/backend/internal/domain"
)

// Error reports the first field that failed and the form tab it lives on.
type Error struct {
	Field   string `json:"field"`
	Tab     string `json:"tab"`
	Message string `json:"error"`
}

func (e *Error) Error() string {
	return e.Message
}

type rule struct {
	field string
	tab   string
	ok    bool
	msg   string
}

func check(field, tab string, ok bool, msg string) rule {
	return rule{field: field, tab: tab, ok: ok, msg: msg}
}

// first returns the first failing rule, keeping the order the form shows them.
func first(rules ...rule) error {
	for _, r := range rules {
		if !r.ok {
			return &Error{Field: r.field, Tab: r.tab, Message: r.msg}
		}
	}
	return nil
}

func present(value string) bool {
	return strings.TrimSpace(value) != ""
}

func presentPtr(value *string) bool {
	return value != nil && present(*value)
}

func Item(item domain.Item) error {
	return first(
		check("name", "basic", present(item.Name), "name is required"),
		check("category", "basic", present(item.Category), "category is required"),
		check("unit", "basic", present(item.Unit), "unit is required"),
		check("sale_price", "pricing", item.SalePrice > 0, "sale_price must be greater than zero"),
		check("purchase_price", "pricing", item.PurchasePrice >= 0, "purchase_price cannot be negative"),
		check("opening_quantity", "stock", item.OpeningQuantity >= 0, "opening_quantity cannot be negative"),
		check("min_stock_to_maintain", "stock", item.MinStockToMaintain >= 0, "min_stock_to_maintain cannot be negative"),
	)
}

func Expense(expense domain.Expense) error {
	if err := first(
		check("category_id", "details", expense.CategoryID > 0, "category_id is required"),
		check("expense_date", "details", !expense.ExpenseDate.IsZero(), "expense_date is required"),
		check("lines", "items", len(expense.Lines) > 0, "at least one expense line is required"),
	); err != nil {
		return err
	}
	for i, line := range expense.Lines {
		if err := first(
			check(fmt.Sprintf("lines[%d].name", i), "items", present(line.Name), fmt.Sprintf("line %d: name is required", i+1)),
			check(fmt.Sprintf("lines[%d].amount", i), "items", line.Amount > 0, fmt.Sprintf("line %d: amount must be greater than zero", i+1)),
		); err != nil {
			return err
		}
	}
	return nil
}

func ExpenseCategory(category domain.ExpenseCategory) error {
	return first(
		check("name", "details", present(category.Name), "name is required"),
		check("category_type", "details",
			category.CategoryType == "" || category.CategoryType == "direct" || category.CategoryType == "indirect",
			"category_type must be direct or indirect"),
	)
}

func BankAccount(account domain.CashBankAccount) error {
	isBank := account.AccountType == domain.AccountTypeBank
	return first(
		check("account_name", "details", present(account.AccountName), "account_name is required"),
		check("account_type", "details",
			account.AccountType == domain.AccountTypeCash || isBank,
			"account_type must be cash or bank"),
		check("bank_name", "bank", !isBank || presentPtr(account.BankName), "bank_name is required for bank accounts"),
		check("account_number", "bank", !isBank || presentPtr(account.AccountNumber), "account_number is required for bank accounts"),
	)
}

func Transaction(txn domain.BankTransaction) error {
	return first(
		check("type", "details",
			txn.Type == domain.TransactionDeposit || txn.Type == domain.TransactionWithdrawal || txn.Type == domain.TransactionTransfer,
			"type must be deposit, withdrawal or transfer"),
		check("amount", "details", txn.Amount > 0, "amount must be greater than zero"),
		check("date", "details", !txn.Date.IsZero(), "date is required"),
	)
}

func Purchase(purchase domain.Purchase) error {
	if err := first(
		check("party_name", "party", present(purchase.PartyName), "party_name is required"),
		check("bill_date", "party", !purchase.BillDate.IsZero(), "bill_date is required"),
		check("lines", "items", len(purchase.Lines) > 0, "at least one purchase line is required"),
		check("paid_amount", "payment", purchase.PaidAmount >= 0, "paid_amount cannot be negative"),
	); err != nil {
		return err
	}
	for i, line := range purchase.Lines {
		if err := first(
			check(fmt.Sprintf("lines[%d].item_id", i), "items", line.ItemID > 0, fmt.Sprintf("line %d: item is required", i+1)),
			check(fmt.Sprintf("lines[%d].quantity", i), "items", line.Quantity > 0, fmt.Sprintf("line %d: quantity must be greater than zero", i+1)),
			check(fmt.Sprintf("lines[%d].price", i), "items", line.Price >= 0, fmt.Sprintf("line %d: price cannot be negative", i+1)),
		); err != nil {
			return err
		}
	}
	return nil
}

func User(user domain.UserRole) error {
	return first(
		check("name", "profile", present(user.Name), "name is required"),
		check("email", "profile", present(user.Email) && strings.Contains(user.Email, "@"), "a valid email is required"),
		check("role", "profile", ValidRole(user.Role), "role must be one of "+strings.Join(domain.Roles, ", ")),
	)
}

func ValidRole(role string) bool {
	for _, r := range domain.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func Company(profile domain.CompanyProfile) error {
	return first(
		check("name", "shop", present(profile.Name), "shop name is required"),
		check("email", "shop", profile.Email == "" || strings.Contains(profile.Email, "@"), "email is invalid"),
	)
}

// Date parses the two date layouts accepted from forms.
func Date(field, tab, raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, &Error{Field: field, Tab: tab, Message: field + " is required"}
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, &Error{Field: field, Tab: tab, Message: field + " must be YYYY-MM-DD"}
}
