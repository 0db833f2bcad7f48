package reporting

import (
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ngolasuite/ngola/pkg/plans"
)

// DefaultLocale is the locale amounts are formatted for.
var DefaultLocale = language.MustParse("pt-AO")

const (
	perSeatSuffix = "/utilizador"
	contactUs     = "Sob consulta"
)

var symbols = map[string]string{
	"AOA": "Kz",
}

// Formatter renders money amounts with locale digit grouping.
type Formatter struct {
	printer *message.Printer
}

// NewFormatter returns a formatter for the given locale.
func NewFormatter(tag language.Tag) *Formatter {
	return &Formatter{printer: message.NewPrinter(tag)}
}

var defaultFormatter = sync.OnceValue(func() *Formatter { return NewFormatter(DefaultLocale) })

// Currency formats amount in whole units followed by the currency symbol,
// e.g. "12 000 Kz". Unknown currencies fall back to their ISO code.
func (f *Formatter) Currency(amount decimal.Decimal, currency string) string {
	n := amount.Round(0).IntPart()
	return f.printer.Sprintf("%d", n) + " " + symbol(currency)
}

// Price formats a plan price, per seat when perSeat is set.
func (f *Formatter) Price(p plans.Price, perSeat bool) string {
	if p.ContactUs {
		return contactUs
	}
	s := f.Currency(p.Amount, p.Currency)
	if perSeat {
		s += perSeatSuffix
	}
	return s
}

// FormatCurrency formats an AOA amount for the default locale.
func FormatCurrency(amount decimal.Decimal) string {
	return defaultFormatter().Currency(amount, "AOA")
}

// FormatPrice formats a plan's per-seat price for the default locale.
func FormatPrice(p plans.Plan) string {
	return defaultFormatter().Price(p.Price, true)
}

func symbol(currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if s, ok := symbols[currency]; ok {
		return s
	}
	if currency == "" {
		return symbols["AOA"]
	}
	return currency
}
