package shared

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var brPrinter = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL renders an amount as "R$ 1.234,56".
func FormatBRL(amount decimal.Decimal) string {
	f, _ := amount.Round(2).Float64()
	return brPrinter.Sprintf("R$ %.2f", f)
}
