package domain

import "time"

type Item struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	ItemCode           *string   `json:"item_code,omitempty"`
	Category           string    `json:"category"`
	SubCategory        *string   `json:"sub_category,omitempty"`
	Unit               string    `json:"unit"`
	SalePrice          float64   `json:"sale_price"`
	PurchasePrice      float64   `json:"purchase_price"`
	OpeningQuantity    float64   `json:"opening_quantity"`
	MinStockToMaintain float64   `json:"min_stock_to_maintain"`
	Location           *string   `json:"location,omitempty"`
	TaxRate            float64   `json:"tax_rate"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

const (
	AccountTypeCash = "cash"
	AccountTypeBank = "bank"
)

type CashBankAccount struct {
	ID             int64      `json:"id"`
	AccountName    string     `json:"account_name"`
	AccountType    string     `json:"account_type"`
	BankName       *string    `json:"bank_name,omitempty"`
	AccountNumber  *string    `json:"account_number,omitempty"`
	IFSCCode       *string    `json:"ifsc_code,omitempty"`
	OpeningBalance float64    `json:"opening_balance"`
	CurrentBalance float64    `json:"current_balance"`
	AsOfDate       *time.Time `json:"as_of_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

const (
	TransactionDeposit    = "deposit"
	TransactionWithdrawal = "withdrawal"
	TransactionTransfer   = "transfer"
)

type BankTransaction struct {
	ID        int64     `json:"id"`
	AccountID int64     `json:"account_id"`
	Type      string    `json:"type"`
	Label     string    `json:"label"`
	Amount    float64   `json:"amount"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

type ExpenseCategory struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	CategoryType string    `json:"category_type"`
	TotalAmount  float64   `json:"total_amount"`
	CreatedAt    time.Time `json:"created_at"`
}

type ExpenseLine struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
	Amount   float64 `json:"amount"`
}

type Expense struct {
	ID            int64         `json:"id"`
	CategoryID    int64         `json:"category_id"`
	CategoryName  string        `json:"category_name,omitempty"`
	ExpenseNumber *string       `json:"expense_number,omitempty"`
	ExpenseDate   time.Time     `json:"expense_date"`
	PaymentType   string        `json:"payment_type"`
	Description   *string       `json:"description,omitempty"`
	Lines         []ExpenseLine `json:"lines"`
	TotalAmount   float64       `json:"total_amount"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

type PurchaseLine struct {
	ItemID   int64   `json:"item_id"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
	Amount   float64 `json:"amount"`
}

type Purchase struct {
	ID          int64          `json:"id"`
	BillNumber  *string        `json:"bill_number,omitempty"`
	PartyName   string         `json:"party_name"`
	BillDate    time.Time      `json:"bill_date"`
	Lines       []PurchaseLine `json:"lines"`
	TotalAmount float64        `json:"total_amount"`
	PaidAmount  float64        `json:"paid_amount"`
	BalanceDue  float64        `json:"balance_due"`
	CreatedAt   time.Time      `json:"created_at"`
}

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"
	RoleViewer  = "viewer"
)

var Roles = []string{RoleAdmin, RoleManager, RoleStaff, RoleViewer}

type UserRole struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	SyncEnabled bool      `json:"sync_enabled"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CompanyProfile struct {
	Name           string    `json:"name"`
	Address        string    `json:"address"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email"`
	Website        string    `json:"website"`
	LogoURL        string    `json:"logo_url"`
	SignatureURL   string    `json:"signature_url"`
	CurrencyCode   string    `json:"currency_code"`
	CurrencySymbol string    `json:"currency_symbol"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ItemImportRow struct {
	Name               string
	ItemCode           *string
	Category           string
	SubCategory        *string
	Unit               string
	SalePrice          float64
	PurchasePrice      float64
	OpeningQuantity    float64
	MinStockToMaintain float64
}
