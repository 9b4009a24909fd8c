package billing

import (
	"testing"

	"shopdesk/backend/internal/domain"

	"github.com/shopspring/decimal"
)

func TestClassifyPayment(t *testing.T) {
	cases := []struct {
		name   string
		isPaid bool
		paid   float64
		total  float64
		want   PaymentStatus
		color  string
	}{
		{name: "paid in full", isPaid: true, paid: 200, total: 200, want: StatusPaid, color: ColorGreen},
		{name: "flag wins over amounts", isPaid: true, paid: 0, total: 200, want: StatusPaid, color: ColorGreen},
		{name: "partial", paid: 50, total: 200, want: StatusPartiallyPaid, color: ColorOrange},
		{name: "nothing paid", paid: 0, total: 200, want: StatusUnpaid, color: ColorRed},
		{name: "paid equals total without flag", paid: 200, total: 200, want: StatusUnpaid, color: ColorRed},
		{name: "negative paid", paid: -5, total: 200, want: StatusUnpaid, color: ColorRed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ClassifyPayment(tc.isPaid, tc.paid, tc.total)
			if got != tc.want {
				t.Fatalf("status = %q, want %q", got, tc.want)
			}
			if got.Color() != tc.color {
				t.Fatalf("color = %q, want %q", got.Color(), tc.color)
			}
		})
	}
}

func TestCalculateTotalDiscountFinalPriceIdentity(t *testing.T) {
	itemSets := [][]domain.LineItem{
		nil,
		{{Amount: 0.01}},
		{{Amount: 19.99}, {Amount: 0.333}, {Amount: 7}},
		{{Amount: 1234.567}, {Amount: 89.1}},
		{{Amount: 100}, {Amount: 50}, {Amount: 25}},
	}
	discounts := []float64{0, 0.5, 5, 12.5, 33.333, 99.99, 100}
	for _, items := range itemSets {
		for _, discount := range discounts {
			got := CalculateTotalDiscount(items, discount)
			grand := decimal.RequireFromString(got.GrandTotal)
			value := decimal.RequireFromString(got.DiscountValue)
			final := decimal.RequireFromString(got.FinalPrice)
			if !grand.Sub(value).Equal(final) {
				t.Fatalf("items=%v discount=%v: %s - %s != %s", items, discount, got.GrandTotal, got.DiscountValue, got.FinalPrice)
			}
		}
	}
}

func TestComputeScenario(t *testing.T) {
	inv := domain.InvoiceData{
		Items: []domain.LineItem{
			{Description: "A", Amount: 100},
			{Description: "B", Amount: 50},
			{Description: "C", Amount: 25},
		},
		Tax:         10,
		Discount:    5,
		TotalAmount: 180,
		BalanceDue:  180,
	}
	s := Compute(inv)
	if s.Subtotal.StringFixed(2) != "175.00" {
		t.Fatalf("subtotal = %s", s.Subtotal)
	}
	if s.TaxAmount.StringFixed(2) != "17.50" {
		t.Fatalf("tax = %s", s.TaxAmount)
	}
	if s.Discount.DiscountValue != "8.75" {
		t.Fatalf("discount value = %s", s.Discount.DiscountValue)
	}
	if s.Discount.GrandTotal != "175.00" || s.Discount.FinalPrice != "166.25" {
		t.Fatalf("discount = %+v", s.Discount)
	}
	if s.TotalAmount.StringFixed(2) != "180.00" {
		t.Fatalf("total amount must be taken from the caller, got %s", s.TotalAmount)
	}
	if s.BalanceColor != ColorRed {
		t.Fatalf("balance color = %s", s.BalanceColor)
	}
}

func TestComputeHandlesEmptyInvoice(t *testing.T) {
	s := Compute(domain.InvoiceData{})
	if !s.Subtotal.IsZero() || s.Status != StatusUnpaid || s.BalanceColor != ColorGreen {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if s.AmountInWords != "Zero Only" {
		t.Fatalf("words = %q", s.AmountInWords)
	}
}

func TestAmountInWords(t *testing.T) {
	cases := map[float64]string{
		0:          "Zero Only",
		7:          "Seven Only",
		15:         "Fifteen Only",
		175.99:     "One Hundred Seventy Five Only",
		1000:       "One Thousand Only",
		1000001:    "One Million One Only",
		2345678:    "Two Million Three Hundred Forty Five Thousand Six Hundred Seventy Eight Only",
		-42.5:      "Minus Forty Two Only",
		90:         "Ninety Only",
		1000000000: "One Billion Only",
		1e20:       "One Hundred Quintillion Only",
		-1e20:      "Minus One Hundred Quintillion Only",
		1e33:       "One Decillion Only",
		1e36:       "One Thousand Decillion Only",
	}
	for in, want := range cases {
		if got := AmountInWords(in); got != want {
			t.Errorf("AmountInWords(%v) = %q, want %q", in, got, want)
		}
	}
}
