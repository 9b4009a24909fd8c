package money

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Settings is the currency/locale configuration handed to every component that
// prints an amount. It is passed explicitly; there is no process-wide copy.
type Settings struct {
	Code   string `json:"currency_code"`
	Symbol string `json:"currency_symbol"`
	Locale string `json:"locale"`
}

func DefaultSettings() Settings {
	return Settings{Code: "USD", Symbol: "$", Locale: "en-US"}
}

type Formatter struct {
	settings Settings
	printer  *message.Printer
}

func NewFormatter(settings Settings) *Formatter {
	defaults := DefaultSettings()
	if strings.TrimSpace(settings.Code) == "" {
		settings.Code = defaults.Code
	}
	if strings.TrimSpace(settings.Symbol) == "" && strings.EqualFold(settings.Code, defaults.Code) {
		settings.Symbol = defaults.Symbol
	}
	if strings.TrimSpace(settings.Locale) == "" {
		settings.Locale = defaults.Locale
	}
	tag, err := language.Parse(settings.Locale)
	if err != nil {
		tag = language.AmericanEnglish
	}
	return &Formatter{settings: settings, printer: message.NewPrinter(tag)}
}

func (f *Formatter) Settings() Settings {
	return f.settings
}

// WithSymbol returns a copy that prints symbol instead. An empty symbol falls
// back to the currency code.
func (f *Formatter) WithSymbol(symbol string) *Formatter {
	settings := f.settings
	settings.Symbol = symbol
	return &Formatter{settings: settings, printer: f.printer}
}

func (f *Formatter) Symbol() string {
	if f.settings.Symbol != "" {
		return f.settings.Symbol
	}
	return f.settings.Code + " "
}

// Format renders value with two fraction digits and the configured symbol.
func (f *Formatter) Format(value float64) string {
	return f.FormatDecimal(decimal.NewFromFloat(value))
}

func (f *Formatter) FormatDecimal(value decimal.Decimal) string {
	sign := ""
	if value.IsNegative() {
		sign = "-"
		value = value.Neg()
	}
	rounded, _ := value.Round(2).Float64()
	amount := f.printer.Sprint(number.Decimal(rounded, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
	return sign + f.Symbol() + amount
}

// Number renders value with locale grouping and no currency symbol.
func (f *Formatter) Number(value float64, fractionDigits int) string {
	return f.printer.Sprint(number.Decimal(value,
		number.MinFractionDigits(fractionDigits),
		number.MaxFractionDigits(fractionDigits),
	))
}
