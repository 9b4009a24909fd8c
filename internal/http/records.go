package http

import (
	"net/http"
	"strings"
	"time"

	"shopdesk/backend/internal/domain"
	"shopdesk/backend/internal/repository"
	"shopdesk/backend/internal/validation"
)

type itemRequest struct {
	Name               string  `json:"name"`
	ItemCode           *string `json:"item_code"`
	Category           string  `json:"category"`
	SubCategory        *string `json:"sub_category"`
	Unit               string  `json:"unit"`
	SalePrice          float64 `json:"sale_price"`
	PurchasePrice      float64 `json:"purchase_price"`
	OpeningQuantity    float64 `json:"opening_quantity"`
	MinStockToMaintain float64 `json:"min_stock_to_maintain"`
	Location           *string `json:"location"`
	TaxRate            float64 `json:"tax_rate"`
}

func (req itemRequest) item() domain.Item {
	return domain.Item{
		Name:               strings.TrimSpace(req.Name),
		ItemCode:           req.ItemCode,
		Category:           strings.TrimSpace(req.Category),
		SubCategory:        req.SubCategory,
		Unit:               strings.TrimSpace(req.Unit),
		SalePrice:          req.SalePrice,
		PurchasePrice:      req.PurchasePrice,
		OpeningQuantity:    req.OpeningQuantity,
		MinStockToMaintain: req.MinStockToMaintain,
		Location:           req.Location,
		TaxRate:            req.TaxRate,
	}
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, info, err := h.svc.ListItems(r.Context(), q)
	if err != nil {
		h.failure(w, r, err, "items not found")
		return
	}
	writeList(w, items, info)
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	item, err := h.svc.GetItem(r.Context(), id)
	if err != nil {
		h.failure(w, r, err, "item not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.svc.CreateItem(r.Context(), req.item())
	if err != nil {
		h.failure(w, r, err, "item not found")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.svc.UpdateItem(r.Context(), id, req.item())
	if err != nil {
		h.failure(w, r, err, "item not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteItem(r.Context(), id); err != nil {
		h.failure(w, r, err, "item not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ImportItemsExcel(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	summary, err := h.svc.ImportItems(r.Context(), file)
	if err != nil {
		h.failure(w, r, err, "item not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"file_name":  header.Filename,
		"total_rows": summary.TotalRows,
		"created":    summary.Created,
		"updated":    summary.Updated,
	})
}

type accountRequest struct {
	AccountName    string  `json:"account_name"`
	AccountType    string  `json:"account_type"`
	BankName       *string `json:"bank_name"`
	AccountNumber  *string `json:"account_number"`
	IFSCCode       *string `json:"ifsc_code"`
	OpeningBalance float64 `json:"opening_balance"`
	AsOfDate       string  `json:"as_of_date"`
}

func (req accountRequest) account() (domain.CashBankAccount, error) {
	asOf, err := parseOptionalTime(req.AsOfDate)
	if err != nil {
		return domain.CashBankAccount{}, &validation.Error{Field: "as_of_date", Tab: "details", Message: err.Error()}
	}
	return domain.CashBankAccount{
		AccountName:    strings.TrimSpace(req.AccountName),
		AccountType:    req.AccountType,
		BankName:       req.BankName,
		AccountNumber:  req.AccountNumber,
		IFSCCode:       req.IFSCCode,
		OpeningBalance: req.OpeningBalance,
		AsOfDate:       asOf,
	}, nil
}

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	accounts, info, err := h.svc.ListAccounts(r.Context(), q)
	if err != nil {
		h.failure(w, r, err, "accounts not found")
		return
	}
	writeList(w, accounts, info)
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	account, err := h.svc.GetAccount(r.Context(), id)
	if err != nil {
		h.failure(w, r, err, "account not found")
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	input, err := req.account()
	if err != nil {
		h.failure(w, r, err, "account not found")
		return
	}
	created, err := h.svc.CreateAccount(r.Context(), input)
	if err != nil {
		h.failure(w, r, err, "account not found")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	input, err := req.account()
	if err != nil {
		h.failure(w, r, err, "account not found")
		return
	}
	updated, err := h.svc.UpdateAccount(r.Context(), id, input)
	if err != nil {
		h.failure(w, r, err, "account not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteAccount(r.Context(), id); err != nil {
		h.failure(w, r, err, "account not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type transactionRequest struct {
	Type   string  `json:"type"`
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
	Date   string  `json:"date"`
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	txns, err := h.svc.ListTransactions(r.Context(), id)
	if err != nil {
		h.failure(w, r, err, "account not found")
		return
	}
	writeJSON(w, http.StatusOK, txns)
}

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	date, err := validation.Date("date", "details", req.Date)
	if err != nil {
		h.failure(w, r, err, "account not found")
		return
	}
	created, err := h.svc.CreateTransaction(r.Context(), domain.BankTransaction{
		AccountID: id,
		Type:      req.Type,
		Label:     strings.TrimSpace(req.Label),
		Amount:    req.Amount,
		Date:      date,
	})
	if err != nil {
		h.failure(w, r, err, "account not found")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type expenseCategoryRequest struct {
	Name         string `json:"name"`
	CategoryType string `json:"category_type"`
}

func (h *Handler) ListExpenseCategories(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	categories, info, err := h.svc.ListExpenseCategories(r.Context(), q)
	if err != nil {
		h.failure(w, r, err, "categories not found")
		return
	}
	writeList(w, categories, info)
}

func (h *Handler) CreateExpenseCategory(w http.ResponseWriter, r *http.Request) {
	var req expenseCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.svc.CreateExpenseCategory(r.Context(), domain.ExpenseCategory{Name: strings.TrimSpace(req.Name), CategoryType: req.CategoryType})
	if err != nil {
		h.failure(w, r, err, "category not found")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) DeleteExpenseCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteExpenseCategory(r.Context(), id); err != nil {
		h.failure(w, r, err, "category not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type expenseRequest struct {
	CategoryID    int64                `json:"category_id"`
	ExpenseNumber *string              `json:"expense_number"`
	ExpenseDate   string               `json:"expense_date"`
	PaymentType   string               `json:"payment_type"`
	Description   *string              `json:"description"`
	Lines         []domain.ExpenseLine `json:"lines"`
}

func (req expenseRequest) expense() (domain.Expense, error) {
	date, err := validation.Date("expense_date", "details", req.ExpenseDate)
	if err != nil {
		return domain.Expense{}, err
	}
	return domain.Expense{
		CategoryID:    req.CategoryID,
		ExpenseNumber: req.ExpenseNumber,
		ExpenseDate:   date,
		PaymentType:   strings.TrimSpace(req.PaymentType),
		Description:   req.Description,
		Lines:         req.Lines,
	}, nil
}

func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	categoryID, err := parseOptionalInt64(r.URL.Query().Get("category_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	expenses, info, err := h.svc.ListExpenses(r.Context(), categoryID, q)
	if err != nil {
		h.failure(w, r, err, "expenses not found")
		return
	}
	writeList(w, expenses, info)
}

func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	expense, err := h.svc.GetExpense(r.Context(), id)
	if err != nil {
		h.failure(w, r, err, "expense not found")
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	input, err := req.expense()
	if err != nil {
		h.failure(w, r, err, "expense not found")
		return
	}
	created, err := h.svc.CreateExpense(r.Context(), input)
	if err != nil {
		h.failure(w, r, err, "expense category not found")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	input, err := req.expense()
	if err != nil {
		h.failure(w, r, err, "expense not found")
		return
	}
	updated, err := h.svc.UpdateExpense(r.Context(), id, input)
	if err != nil {
		h.failure(w, r, err, "expense not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteExpense(r.Context(), id); err != nil {
		h.failure(w, r, err, "expense not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type purchaseRequest struct {
	BillNumber *string               `json:"bill_number"`
	PartyName  string                `json:"party_name"`
	BillDate   string                `json:"bill_date"`
	PaidAmount float64               `json:"paid_amount"`
	Lines      []domain.PurchaseLine `json:"lines"`
}

func (h *Handler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	purchases, info, err := h.svc.ListPurchases(r.Context(), q)
	if err != nil {
		h.failure(w, r, err, "purchases not found")
		return
	}
	writeList(w, purchases, info)
}

func (h *Handler) GetPurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	purchase, err := h.svc.GetPurchase(r.Context(), id)
	if err != nil {
		h.failure(w, r, err, "purchase not found")
		return
	}
	writeJSON(w, http.StatusOK, purchase)
}

func (h *Handler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	date, err := validation.Date("bill_date", "party", req.BillDate)
	if err != nil {
		h.failure(w, r, err, "purchase not found")
		return
	}
	created, err := h.svc.CreatePurchase(r.Context(), domain.Purchase{
		BillNumber: req.BillNumber,
		PartyName:  strings.TrimSpace(req.PartyName),
		BillDate:   date,
		PaidAmount: req.PaidAmount,
		Lines:      req.Lines,
	})
	if err != nil {
		h.failure(w, r, err, "item not found")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) DeletePurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeletePurchase(r.Context(), id); err != nil {
		h.failure(w, r, err, "purchase not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type userRoleRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	SyncEnabled bool   `json:"sync_enabled"`
}

type patchUserRoleRequest struct {
	Role        *string `json:"role"`
	SyncEnabled *bool   `json:"sync_enabled"`
}

func (h *Handler) ListUserRoles(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	users, info, err := h.svc.ListUserRoles(r.Context(), q)
	if err != nil {
		h.failure(w, r, err, "users not found")
		return
	}
	writeList(w, users, info)
}

func (h *Handler) CreateUserRole(w http.ResponseWriter, r *http.Request) {
	var req userRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.svc.CreateUserRole(r.Context(), domain.UserRole{
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.TrimSpace(req.Email),
		Role:        req.Role,
		SyncEnabled: req.SyncEnabled,
	})
	if err != nil {
		h.failure(w, r, err, "user not found")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) PatchUserRole(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req patchUserRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.svc.PatchUserRole(r.Context(), id, repository.UserRolePatch{Role: req.Role, SyncEnabled: req.SyncEnabled})
	if err != nil {
		h.failure(w, r, err, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) GetCompany(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.Company(r.Context())
	if err != nil {
		h.failure(w, r, err, "company profile not found")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	var req domain.CompanyProfile
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.UpdatedAt = time.Time{}
	updated, err := h.svc.UpdateCompany(r.Context(), req)
	if err != nil {
		h.failure(w, r, err, "company profile not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) PrintData(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.PrintData(r.Context())
	if err != nil {
		h.failure(w, r, err, "company profile not found")
		return
	}
	writeJSON(w, http.StatusOK, data)
}
