package ledger

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Invoice lines are printed for French speaking clients.
var labelPrinter = message.NewPrinter(language.French)

func formatKg(d decimal.Decimal) string {
	f, _ := d.Float64()
	return labelPrinter.Sprint(number.Decimal(f, number.MaxFractionDigits(Precision)))
}

func serviceLineLabel(receiptNumber string, netWeight decimal.Decimal) string {
	return labelPrinter.Sprintf("Service de trituration - %s (%s kg d'olives)", receiptNumber, formatKg(netWeight))
}

func oilLineLabel(noteNumber string) string {
	return labelPrinter.Sprintf("Huile d'olive - %s", noteNumber)
}
