package render

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"shopdesk/backend/internal/domain"
	"shopdesk/backend/internal/money"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/encoding/charmap"
)

const (
	pageMargin  = 15.0
	bottomSpace = 18.0
	fontFamily  = "Helvetica"
)

type pdfDoc struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func newPDF(orientation string) *pdfDoc {
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, bottomSpace)
	pdf.SetCreator("shopdesk", true)
	return &pdfDoc{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

// pdfFormatter swaps the currency symbol for its code when the core fonts
// cannot draw it. The translator maps runes outside cp1252 to ".".
func pdfFormatter(f *money.Formatter) *money.Formatter {
	for _, r := range f.Symbol() {
		if _, ok := charmap.Windows1252.EncodeRune(r); !ok {
			return f.WithSymbol("")
		}
	}
	return f
}

func (d *pdfDoc) font(style string, size float64) {
	d.pdf.SetFont(fontFamily, style, size)
}

func (d *pdfDoc) textColor(hex string) {
	r, g, b := hexRGB(hex)
	d.pdf.SetTextColor(r, g, b)
}

func (d *pdfDoc) fillColor(hex string) {
	r, g, b := hexRGB(hex)
	d.pdf.SetFillColor(r, g, b)
}

func (d *pdfDoc) cell(w, h float64, text, border string, ln int, align string, fill bool) {
	d.pdf.CellFormat(w, h, d.tr(text), border, ln, align, fill, 0, "")
}

func (d *pdfDoc) contentWidth() float64 {
	w, _ := d.pdf.GetPageSize()
	return w - 2*pageMargin
}

func (d *pdfDoc) bottom() float64 {
	_, h := d.pdf.GetPageSize()
	return h - bottomSpace
}

// ensure adds a page when height does not fit below the cursor and reports
// whether it did.
func (d *pdfDoc) ensure(height float64) bool {
	if d.pdf.GetY()+height <= d.bottom() {
		return false
	}
	d.pdf.AddPage()
	return true
}

func (d *pdfDoc) image(ctx context.Context, images ImageFetcher, url, name string, x, y, w float64) bool {
	if images == nil || url == "" {
		return false
	}
	img, err := images.Fetch(ctx, url)
	if err != nil {
		return false
	}
	opts := gofpdf.ImageOptions{ImageType: img.Type, ReadDpi: true}
	d.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.Data))
	if !d.pdf.Ok() {
		d.pdf.ClearError()
		return false
	}
	d.pdf.ImageOptions(name, x, y, w, 0, false, opts, 0, "")
	return d.pdf.Ok()
}

func (d *pdfDoc) bytes() ([]byte, error) {
	if err := d.pdf.Error(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func hexRGB(hex string) (int, int, int) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return 0, 0, 0
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}

// InvoicePDF draws one invoice onto A4 pages. The context is checked between
// sections so a cancelled export stops early.
func (r *Renderer) InvoicePDF(ctx context.Context, inv domain.InvoiceData, f *money.Formatter) ([]byte, error) {
	view := buildInvoiceView(inv, pdfFormatter(f), r.now())
	d := newPDF("P")
	d.pdf.SetTitle(d.tr("Invoice "+view.Number), false)
	d.pdf.AddPage()

	stages := []func(){
		func() { r.invoiceHeader(ctx, d, view) },
		func() { invoiceParties(d, view) },
		func() { invoiceTable(ctx, d, view) },
		func() { invoiceSummary(d, view) },
		func() { r.invoiceFooter(ctx, d, view) },
	}
	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stage()
		if err := d.pdf.Error(); err != nil {
			return nil, fmt.Errorf("draw invoice %s: %w", view.Number, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := d.bytes()
	if err != nil {
		return nil, fmt.Errorf("write invoice %s pdf: %w", view.Number, err)
	}
	return out, nil
}

func (r *Renderer) invoiceHeader(ctx context.Context, d *pdfDoc, v invoiceView) {
	pageW, _ := d.pdf.GetPageSize()

	// decorative corner
	d.fillColor("#e0e7ff")
	d.pdf.Circle(pageW, 0, 45, "F")

	top := pageMargin
	if d.image(ctx, r.images, v.LogoURL, "logo", pageMargin, top, 30) {
		d.pdf.SetY(top + 22)
	}

	d.textColor("#1f2937")
	d.font("B", 18)
	d.cell(120, 9, v.CompanyName, "", 1, "L", false)
	d.font("", 9)
	d.textColor("#4b5563")
	for _, line := range []string{v.CompanyAddress, "Phone: " + v.CompanyPhone, "Email: " + v.CompanyEmail, v.CompanyWebsite} {
		if strings.TrimSpace(line) == "" {
			continue
		}
		d.cell(120, 4.5, line, "", 1, "L", false)
	}

	badgeW := 38.0
	d.pdf.SetXY(pageW-pageMargin-badgeW, top+2)
	d.fillColor(v.StatusColor)
	d.pdf.SetTextColor(255, 255, 255)
	d.font("B", 10)
	d.cell(badgeW, 8, v.Status, "", 1, "C", true)

	d.pdf.SetXY(pageW-pageMargin-60, top+14)
	d.textColor("#1f2937")
	d.font("B", 14)
	d.cell(60, 7, "INVOICE", "", 2, "R", false)
	d.font("", 9)
	d.cell(60, 5, "No: "+v.Number, "", 2, "R", false)
	d.cell(60, 5, "Date: "+v.Date, "", 2, "R", false)
	d.cell(60, 5, "Due: "+v.DueDate, "", 2, "R", false)

	if d.pdf.GetY() < top+42 {
		d.pdf.SetY(top + 42)
	}
	d.pdf.SetX(pageMargin)
	d.pdf.Ln(4)
}

func invoiceParties(d *pdfDoc, v invoiceView) {
	d.textColor("#6b7280")
	d.font("B", 9)
	d.cell(0, 5, "BILL TO", "", 1, "L", false)
	d.textColor("#1f2937")
	d.font("B", 11)
	d.cell(0, 6, v.BillTo, "", 1, "L", false)
	d.font("", 9)
	d.cell(0, 4.5, v.BillToAddress, "", 1, "L", false)
	d.cell(0, 4.5, "Phone: "+v.BillToPhone, "", 1, "L", false)
	d.cell(0, 4.5, "Email: "+v.BillToEmail, "", 1, "L", false)
	d.pdf.Ln(6)
}

var invoiceColumns = []struct {
	title string
	width float64
	align string
}{
	{"#", 10, "L"},
	{"Description", 85, "L"},
	{"Qty", 20, "R"},
	{"Rate", 32.5, "R"},
	{"Amount", 32.5, "R"},
}

func invoiceTableHeader(d *pdfDoc) {
	d.fillColor("#1f2937")
	d.pdf.SetTextColor(255, 255, 255)
	d.font("B", 9)
	for _, col := range invoiceColumns {
		d.cell(col.width, 8, col.title, "", 0, col.align, true)
	}
	d.pdf.Ln(-1)
	d.textColor("#1f2937")
	d.font("", 9)
}

func invoiceTable(ctx context.Context, d *pdfDoc, v invoiceView) {
	const rowH = 7.0
	invoiceTableHeader(d)
	if len(v.Items) == 0 {
		d.textColor("#9ca3af")
		d.font("I", 9)
		d.cell(d.contentWidth(), 14, "No items on this invoice", "B", 1, "C", false)
		d.textColor("#1f2937")
		return
	}
	for _, item := range v.Items {
		if ctx.Err() != nil {
			return
		}
		if d.ensure(rowH) {
			invoiceTableHeader(d)
		}
		values := []string{strconv.Itoa(item.Index), item.Description, item.Quantity, item.Rate, item.Amount}
		for i, col := range invoiceColumns {
			text := values[i]
			if col.title == "Description" {
				text = fitText(d, text, col.width-2)
			}
			d.cell(col.width, rowH, text, "B", 0, col.align, false)
		}
		d.pdf.Ln(-1)
	}
}

func fitText(d *pdfDoc, text string, width float64) string {
	if d.pdf.GetStringWidth(d.tr(text)) <= width {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 && d.pdf.GetStringWidth(d.tr(string(runes)+"...")) > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

func invoiceSummary(d *pdfDoc, v invoiceView) {
	const (
		rowH   = 6.0
		labelW = 45.0
		valueW = 40.0
	)
	d.ensure(rowH*7 + 4)
	d.pdf.Ln(4)
	left := pageMargin + d.contentWidth() - labelW - valueW

	row := func(label, value, color, style string) {
		d.pdf.SetX(left)
		d.font(style, 9)
		d.textColor("#1f2937")
		d.cell(labelW, rowH, label, "", 0, "L", false)
		d.textColor(color)
		d.cell(valueW, rowH, value, "", 1, "R", false)
	}
	row("Subtotal", v.Subtotal, "#1f2937", "")
	row("Tax ("+v.TaxPercent+"%)", v.TaxAmount, "#1f2937", "")
	row("Discount ("+v.DiscountPercent+"%)", "-"+v.DiscountValue, "#1f2937", "")

	d.pdf.SetDrawColor(31, 41, 55)
	d.pdf.SetLineWidth(0.5)
	y := d.pdf.GetY() + 1
	d.pdf.Line(left, y, left+labelW+valueW, y)
	d.pdf.SetLineWidth(0.2)
	d.pdf.Ln(2)

	row("Total", v.Total, "#1f2937", "B")
	row("Paid", v.Paid, "#1f2937", "")
	row("Balance Due", v.BalanceDue, v.BalanceColor, "B")
	d.textColor("#1f2937")
}

func (r *Renderer) invoiceFooter(ctx context.Context, d *pdfDoc, v invoiceView) {
	d.ensure(24)
	d.pdf.Ln(6)
	d.pdf.SetX(pageMargin)
	d.font("B", 9)
	d.cell(32, 5, "Amount in words:", "", 0, "L", false)
	d.font("", 9)
	d.pdf.MultiCell(0, 5, d.tr(v.Words), "", "L", false)

	for _, block := range []struct{ title, body string }{{"Notes", v.Notes}, {"Terms & Conditions", v.Terms}} {
		if block.body == "" {
			continue
		}
		d.ensure(16)
		d.pdf.Ln(3)
		d.font("B", 9)
		d.cell(0, 5, block.title, "", 1, "L", false)
		d.font("", 8.5)
		d.textColor("#4b5563")
		d.pdf.MultiCell(0, 4.5, d.tr(block.body), "", "L", false)
		d.textColor("#1f2937")
	}

	if v.SignatureURL == "" {
		return
	}
	d.ensure(30)
	pageW, _ := d.pdf.GetPageSize()
	y := d.pdf.GetY() + 8
	d.image(ctx, r.images, v.SignatureURL, "signature", pageW-pageMargin-40, y, 40)
	d.pdf.SetXY(pageW-pageMargin-60, y+18)
	d.font("", 9)
	d.cell(60, 5, "Authorised Signatory", "T", 1, "R", false)
}
