package domain

import "time"

type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
	Amount      float64 `json:"amount"`
}

// InvoiceData is the render input for one invoice. TotalAmount and BalanceDue
// are supplied by the caller and shown as given.
type InvoiceData struct {
	InvoiceNumber string     `json:"invoice_number"`
	InvoiceDate   *time.Time `json:"invoice_date,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`

	CompanyName    string `json:"company_name"`
	CompanyAddress string `json:"company_address"`
	CompanyPhone   string `json:"company_phone"`
	CompanyEmail   string `json:"company_email"`
	CompanyWebsite string `json:"company_website"`
	LogoURL        string `json:"logo_url"`
	SignatureURL   string `json:"signature_url"`

	BillTo        string `json:"bill_to"`
	BillToPhone   string `json:"bill_to_phone"`
	BillToAddress string `json:"bill_to_address"`
	BillToEmail   string `json:"bill_to_email"`

	Items       []LineItem `json:"items"`
	Tax         float64    `json:"tax"`
	Discount    float64    `json:"discount"`
	TotalAmount float64    `json:"total_amount"`
	PaidAmount  float64    `json:"paid_amount"`
	BalanceDue  float64    `json:"balance_due"`
	IsPaid      bool       `json:"is_paid"`

	Notes string `json:"notes"`
	Terms string `json:"terms"`
}

// WithCompany fills empty company identity fields from profile.
func (d InvoiceData) WithCompany(profile CompanyProfile) InvoiceData {
	fill := func(dst *string, value string) {
		if *dst == "" {
			*dst = value
		}
	}
	fill(&d.CompanyName, profile.Name)
	fill(&d.CompanyAddress, profile.Address)
	fill(&d.CompanyPhone, profile.Phone)
	fill(&d.CompanyEmail, profile.Email)
	fill(&d.CompanyWebsite, profile.Website)
	fill(&d.LogoURL, profile.LogoURL)
	fill(&d.SignatureURL, profile.SignatureURL)
	return d
}
