package format

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// RupeeSymbol prefixes every formatted price.
const RupeeSymbol = "₹"

// Formatter renders amounts with locale digit grouping.
type Formatter struct {
	printer *message.Printer
}

// New returns a Formatter for lang (BCP 47). Unparseable tags fall back to English.
func New(lang string) Formatter {
	tag, err := language.Parse(strings.TrimSpace(lang))
	if err != nil || tag == language.Und {
		tag = language.English
	}
	return Formatter{printer: message.NewPrinter(tag)}
}

// Number groups digits for the formatter's locale.
// Example: Number(11998) => "11,998" for English.
func (f Formatter) Number(n int64) string {
	p := f.printer
	if p == nil {
		p = message.NewPrinter(language.English)
	}
	return p.Sprintf("%d", n)
}

// Rupees formats whole rupee units with the fixed currency prefix.
// Example: Rupees(5999) => "₹5,999"
func (f Formatter) Rupees(amount int64) string {
	if amount < 0 {
		return "-" + RupeeSymbol + f.Number(-amount)
	}
	return RupeeSymbol + f.Number(amount)
}

// TotalLabel renders the cart footer label, e.g. "Total: ₹11,998".
func (f Formatter) TotalLabel(amount int64) string {
	return "Total: " + f.Rupees(amount)
}
