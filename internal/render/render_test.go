package render

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"shopdesk/backend/internal/domain"
	"shopdesk/backend/internal/money"
	"shopdesk/backend/internal/report"
)

var fixedNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func testRenderer(images ImageFetcher) *Renderer {
	return New(images).WithClock(func() time.Time { return fixedNow })
}

func usd() *money.Formatter {
	return money.NewFormatter(money.Settings{Code: "USD", Symbol: "$", Locale: "en-US"})
}

func sampleInvoice() domain.InvoiceData {
	return domain.InvoiceData{
		InvoiceNumber: "1042",
		CompanyName:   "Acme Traders",
		BillTo:        "Jane Buyer",
		Items: []domain.LineItem{
			{Description: "Widget", Quantity: 2, Rate: 50, Amount: 100},
			{Description: "Gadget", Quantity: 1, Rate: 50, Amount: 50},
			{Description: "Cable", Quantity: 5, Rate: 5, Amount: 25},
		},
		Tax:         10,
		Discount:    5,
		TotalAmount: 184.25,
		PaidAmount:  50,
		BalanceDue:  134.25,
	}
}

type stubImages struct {
	calls int
	err   error
}

func (s *stubImages) Fetch(_ context.Context, _ string) (Image, error) {
	s.calls++
	return Image{}, s.err
}

func TestInvoiceHTMLContainsComputedValues(t *testing.T) {
	out, err := testRenderer(nil).InvoiceHTML(context.Background(), sampleInvoice(), usd())
	if err != nil {
		t.Fatalf("InvoiceHTML: %v", err)
	}
	html := string(out)
	for _, want := range []string{
		"Acme Traders", "Jane Buyer", "PARTIALLY PAID", "#f59e0b",
		"$175.00", "$17.50", "$8.75", "$184.25", "$134.25", "#dc2626",
		"One Hundred Eighty Four Only", "width: 794px",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("invoice html missing %q", want)
		}
	}
}

func TestInvoiceHTMLPlaceholders(t *testing.T) {
	out, err := testRenderer(nil).InvoiceHTML(context.Background(), domain.InvoiceData{}, usd())
	if err != nil {
		t.Fatalf("InvoiceHTML: %v", err)
	}
	html := string(out)
	for _, want := range []string{"Your Company", "Company Address", "N/A", "UNPAID", "No items on this invoice", "04 May 2026"} {
		if !strings.Contains(html, want) {
			t.Errorf("invoice html missing %q", want)
		}
	}
}

func TestInvoicePDF(t *testing.T) {
	images := &stubImages{err: errors.New("offline")}
	inv := sampleInvoice()
	inv.LogoURL = "https://cdn.example.com/logo.png"
	inv.SignatureURL = "https://cdn.example.com/sign.png"
	out, err := testRenderer(images).InvoicePDF(context.Background(), inv, usd())
	if err != nil {
		t.Fatalf("InvoicePDF: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("output is not a pdf")
	}
	if images.calls != 2 {
		t.Fatalf("expected logo and signature fetches, got %d", images.calls)
	}
}

func TestInvoicePDFWithZeroItems(t *testing.T) {
	inv := sampleInvoice()
	inv.Items = nil
	out, err := testRenderer(nil).InvoicePDF(context.Background(), inv, usd())
	if err != nil {
		t.Fatalf("InvoicePDF with zero items: %v", err)
	}
	if len(out) == 0 {
		t.Fatalf("empty pdf")
	}
}

func TestInvoicePDFCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := testRenderer(nil).InvoicePDF(ctx, sampleInvoice(), usd())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestInvoiceFilename(t *testing.T) {
	cases := map[string]string{
		"1042":     "Invoice-1042.pdf",
		"":         "Invoice.pdf",
		"INV/2026": "Invoice-INV-2026.pdf",
	}
	for in, want := range cases {
		if got := InvoiceFilename(in); got != want {
			t.Errorf("InvoiceFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func reportItems(n int) []domain.Item {
	items := make([]domain.Item, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, domain.Item{
			Name:               "Item " + strconv.Itoa(i+1),
			Category:           "Hardware",
			PurchasePrice:      10,
			SalePrice:          float64(11 + i%20),
			OpeningQuantity:    float64(i % 7),
			MinStockToMaintain: 3,
		})
	}
	return items
}

func TestReportHTML(t *testing.T) {
	cat := report.Build("Hardware", "", reportItems(3), fixedNow)
	out, err := testRenderer(nil).ReportHTML(context.Background(), cat, "Acme Traders", usd())
	if err != nil {
		t.Fatalf("ReportHTML: %v", err)
	}
	html := string(out)
	for _, want := range []string{"Hardware Report", "@media print", "Item 3", "margin-low", "low-stock", "Acme Traders"} {
		if !strings.Contains(html, want) {
			t.Errorf("report html missing %q", want)
		}
	}
}

func TestReportPDFPaginates(t *testing.T) {
	r := testRenderer(nil)
	small, err := r.ReportPDF(context.Background(), report.Build("Hardware", "", reportItems(2), fixedNow), "", usd())
	if err != nil {
		t.Fatalf("ReportPDF small: %v", err)
	}
	large, err := r.ReportPDF(context.Background(), report.Build("Hardware", "", reportItems(150), fixedNow), "", usd())
	if err != nil {
		t.Fatalf("ReportPDF large: %v", err)
	}
	if got := bytes.Count(small, []byte("/Type /Page\n")); got != 1 {
		t.Fatalf("small report pages = %d", got)
	}
	if got := bytes.Count(large, []byte("/Type /Page\n")); got < 3 {
		t.Fatalf("large report should span several pages, got %d", got)
	}
}

func TestReportPDFEmptyCategory(t *testing.T) {
	if _, err := testRenderer(nil).ReportPDF(context.Background(), report.Build("Empty", "", nil, fixedNow), "", usd()); err != nil {
		t.Fatalf("ReportPDF: %v", err)
	}
}

func TestImageType(t *testing.T) {
	cases := []struct{ ct, url, want string }{
		{"image/png", "x", "PNG"},
		{"image/jpeg", "x", "JPG"},
		{"", "https://a/b/logo.JPEG?v=2", "JPG"},
		{"", "https://a/b/logo.gif", "GIF"},
		{"text/html", "https://a/b/logo", ""},
	}
	for _, tc := range cases {
		if got := imageType(tc.ct, tc.url); got != tc.want {
			t.Errorf("imageType(%q, %q) = %q, want %q", tc.ct, tc.url, got, tc.want)
		}
	}
}

func TestHexRGB(t *testing.T) {
	r, g, b := hexRGB("#16a34a")
	if r != 0x16 || g != 0xa3 || b != 0x4a {
		t.Fatalf("hexRGB = %d %d %d", r, g, b)
	}
	if r, g, b := hexRGB("bad"); r != 0 || g != 0 || b != 0 {
		t.Fatalf("invalid hex should be black")
	}
}

func TestPDFFormatterSymbols(t *testing.T) {
	cases := []struct {
		code, symbol, want string
	}{
		{"USD", "$", "$100.00"},
		{"EUR", "€", "€100.00"},
		{"GBP", "£", "£100.00"},
		{"INR", "₹", "INR 100.00"},
		{"BDT", "৳", "BDT 100.00"},
		{"RUB", "₽", "RUB 100.00"},
	}
	for _, tc := range cases {
		f := money.NewFormatter(money.Settings{Code: tc.code, Symbol: tc.symbol, Locale: "en-US"})
		if got := pdfFormatter(f).Format(100); got != tc.want {
			t.Errorf("%s: pdf amount = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestPDFDrawsCurrencyCodeForUnencodableSymbol(t *testing.T) {
	f := money.NewFormatter(money.Settings{Code: "INR", Symbol: "₹", Locale: "en-US"})
	d := newPDF("P")
	d.pdf.SetCompression(false)
	d.pdf.AddPage()
	d.font("", 10)
	d.cell(40, 6, pdfFormatter(f).Format(100), "", 1, "L", false)
	out, err := d.bytes()
	if err != nil {
		t.Fatalf("bytes: %v", err)
	}
	if !bytes.Contains(out, []byte("(INR 100.00)")) {
		t.Fatalf("content stream does not carry the currency code")
	}
	if bytes.Contains(out, []byte("(.100.00)")) {
		t.Fatalf("symbol was replaced by a placeholder")
	}
}

func TestInvoicePDFWithRupeeSymbol(t *testing.T) {
	f := money.NewFormatter(money.Settings{Code: "INR", Symbol: "₹", Locale: "en-IN"})
	out, err := testRenderer(nil).InvoicePDF(context.Background(), sampleInvoice(), f)
	if err != nil {
		t.Fatalf("InvoicePDF: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("output is not a pdf")
	}
}
