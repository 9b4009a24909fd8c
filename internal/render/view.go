package render

import (
	"strconv"
	"strings"
	"time"

	"shopdesk/backend/internal/billing"
	"shopdesk/backend/internal/domain"
	"shopdesk/backend/internal/money"
)

const (
	placeholder           = "N/A"
	defaultCompanyName    = "Your Company"
	defaultCompanyAddress = "Company Address"
	dateLayout            = "02 Jan 2006"
)

type lineView struct {
	Index       int
	Description string
	Quantity    string
	Rate        string
	Amount      string
}

type invoiceView struct {
	Number   string
	Date     string
	DueDate  string
	Filename string

	CompanyName    string
	CompanyAddress string
	CompanyPhone   string
	CompanyEmail   string
	CompanyWebsite string
	LogoURL        string
	SignatureURL   string

	BillTo        string
	BillToPhone   string
	BillToAddress string
	BillToEmail   string

	Items []lineView

	Subtotal        string
	TaxPercent      string
	TaxAmount       string
	DiscountPercent string
	DiscountValue   string
	FinalPrice      string
	Total           string
	Paid            string
	BalanceDue      string
	HasBalance      bool

	Status       string
	StatusColor  string
	BalanceColor string
	Words        string
	Currency     string

	Notes string
	Terms string
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

func percent(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// InvoiceFilename is "Invoice-{number}.pdf".
func InvoiceFilename(number string) string {
	number = strings.TrimSpace(number)
	if number == "" {
		return "Invoice.pdf"
	}
	number = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == '"' || r == ' ' {
			return '-'
		}
		return r
	}, number)
	return "Invoice-" + number + ".pdf"
}

func buildInvoiceView(inv domain.InvoiceData, f *money.Formatter, now time.Time) invoiceView {
	summary := billing.Compute(inv)

	date := now
	if inv.InvoiceDate != nil && !inv.InvoiceDate.IsZero() {
		date = *inv.InvoiceDate
	}
	due := placeholder
	if inv.DueDate != nil && !inv.DueDate.IsZero() {
		due = inv.DueDate.Format(dateLayout)
	}

	items := make([]lineView, 0, len(inv.Items))
	for i, item := range inv.Items {
		items = append(items, lineView{
			Index:       i + 1,
			Description: orDefault(item.Description, "Item "+strconv.Itoa(i+1)),
			Quantity:    strconv.FormatFloat(item.Quantity, 'f', -1, 64),
			Rate:        f.Format(item.Rate),
			Amount:      f.Format(item.Amount),
		})
	}

	return invoiceView{
		Number:   orDefault(inv.InvoiceNumber, placeholder),
		Date:     date.Format(dateLayout),
		DueDate:  due,
		Filename: InvoiceFilename(inv.InvoiceNumber),

		CompanyName:    orDefault(inv.CompanyName, defaultCompanyName),
		CompanyAddress: orDefault(inv.CompanyAddress, defaultCompanyAddress),
		CompanyPhone:   orDefault(inv.CompanyPhone, placeholder),
		CompanyEmail:   orDefault(inv.CompanyEmail, placeholder),
		CompanyWebsite: strings.TrimSpace(inv.CompanyWebsite),
		LogoURL:        strings.TrimSpace(inv.LogoURL),
		SignatureURL:   strings.TrimSpace(inv.SignatureURL),

		BillTo:        orDefault(inv.BillTo, placeholder),
		BillToPhone:   orDefault(inv.BillToPhone, placeholder),
		BillToAddress: orDefault(inv.BillToAddress, placeholder),
		BillToEmail:   orDefault(inv.BillToEmail, placeholder),

		Items: items,

		Subtotal:        f.FormatDecimal(summary.Subtotal),
		TaxPercent:      percent(inv.Tax),
		TaxAmount:       f.FormatDecimal(summary.TaxAmount),
		DiscountPercent: percent(inv.Discount),
		DiscountValue:   f.FormatDecimal(summary.DiscountValue),
		FinalPrice:      f.FormatDecimal(summary.FinalPrice),
		Total:           f.FormatDecimal(summary.TotalAmount),
		Paid:            f.FormatDecimal(summary.PaidAmount),
		BalanceDue:      f.FormatDecimal(summary.BalanceDue),
		HasBalance:      summary.BalanceDue.IsPositive(),

		Status:       string(summary.Status),
		StatusColor:  summary.StatusColor,
		BalanceColor: summary.BalanceColor,
		Words:        summary.AmountInWords,
		Currency:     f.Settings().Code,

		Notes: strings.TrimSpace(inv.Notes),
		Terms: strings.TrimSpace(inv.Terms),
	}
}
