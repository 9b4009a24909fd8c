package billing

import (
	"shopdesk/backend/internal/domain"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	StatusPaid          PaymentStatus = "PAID"
	StatusPartiallyPaid PaymentStatus = "PARTIALLY PAID"
	StatusUnpaid        PaymentStatus = "UNPAID"
)

const (
	ColorGreen  = "#16a34a"
	ColorOrange = "#f59e0b"
	ColorRed    = "#dc2626"
)

var hundred = decimal.NewFromInt(100)

// Discount is the result of CalculateTotalDiscount, each value fixed to two
// decimals.
type Discount struct {
	GrandTotal    string `json:"grand_total"`
	DiscountValue string `json:"discount_value"`
	FinalPrice    string `json:"final_price"`
}

// Summary holds every derived value shown on an invoice. TotalAmount and
// BalanceDue are copied from the caller and never recomputed here.
type Summary struct {
	Subtotal      decimal.Decimal
	TaxPercent    decimal.Decimal
	TaxAmount     decimal.Decimal
	Discount      Discount
	DiscountValue decimal.Decimal
	FinalPrice    decimal.Decimal
	TotalAmount   decimal.Decimal
	PaidAmount    decimal.Decimal
	BalanceDue    decimal.Decimal
	Status        PaymentStatus
	StatusColor   string
	BalanceColor  string
	AmountInWords string
}

func Subtotal(items []domain.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(decimal.NewFromFloat(item.Amount))
	}
	return total
}

func TaxAmount(subtotal decimal.Decimal, taxPercent float64) decimal.Decimal {
	return subtotal.Mul(decimal.NewFromFloat(taxPercent)).Div(hundred).Round(2)
}

func CalculateTotalDiscount(items []domain.LineItem, discountPercent float64) Discount {
	grand, value, final := discountParts(items, discountPercent)
	return Discount{
		GrandTotal:    grand.StringFixed(2),
		DiscountValue: value.StringFixed(2),
		FinalPrice:    final.StringFixed(2),
	}
}

func discountParts(items []domain.LineItem, discountPercent float64) (decimal.Decimal, decimal.Decimal, decimal.Decimal) {
	grand := Subtotal(items).Round(2)
	value := grand.Mul(decimal.NewFromFloat(discountPercent)).Div(hundred).Round(2)
	return grand, value, grand.Sub(value)
}

func ClassifyPayment(isPaid bool, paidAmount, totalAmount float64) PaymentStatus {
	if isPaid {
		return StatusPaid
	}
	if paidAmount > 0 && paidAmount < totalAmount {
		return StatusPartiallyPaid
	}
	return StatusUnpaid
}

func (s PaymentStatus) Color() string {
	switch s {
	case StatusPaid:
		return ColorGreen
	case StatusPartiallyPaid:
		return ColorOrange
	default:
		return ColorRed
	}
}

func BalanceColor(balanceDue float64) string {
	if balanceDue > 0 {
		return ColorRed
	}
	return ColorGreen
}

// Compute derives the display values for one invoice. It accepts partial data
// and never fails.
func Compute(inv domain.InvoiceData) Summary {
	subtotal := Subtotal(inv.Items)
	_, discountValue, finalPrice := discountParts(inv.Items, inv.Discount)
	status := ClassifyPayment(inv.IsPaid, inv.PaidAmount, inv.TotalAmount)
	return Summary{
		Subtotal:      subtotal,
		TaxPercent:    decimal.NewFromFloat(inv.Tax),
		TaxAmount:     TaxAmount(subtotal, inv.Tax),
		Discount:      CalculateTotalDiscount(inv.Items, inv.Discount),
		DiscountValue: discountValue,
		FinalPrice:    finalPrice,
		TotalAmount:   decimal.NewFromFloat(inv.TotalAmount),
		PaidAmount:    decimal.NewFromFloat(inv.PaidAmount),
		BalanceDue:    decimal.NewFromFloat(inv.BalanceDue),
		Status:        status,
		StatusColor:   status.Color(),
		BalanceColor:  BalanceColor(inv.BalanceDue),
		AmountInWords: AmountInWords(inv.TotalAmount),
	}
}
