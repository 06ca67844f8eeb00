package ledger

import "github.com/shopspring/decimal"

// Precision is the number of decimals kept on amounts and quantities.
const Precision = 3

var (
	zero    = decimal.Zero
	hundred = decimal.NewFromInt(100)
)

func round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Precision)
}

func roundPtr(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := round(*d)
	return &v
}

// percentOf returns base * rate / 100.
func percentOf(base, rate decimal.Decimal) decimal.Decimal {
	return round(base.Mul(rate).Div(hundred))
}

// Amounts holds the derived figures of a taxed document.
type Amounts struct {
	ExclTax   decimal.Decimal `json:"amount_excl_tax"`
	VATRate   decimal.Decimal `json:"vat_rate"`
	VATAmount decimal.Decimal `json:"vat_amount"`
	StampDuty decimal.Decimal `json:"stamp_duty"`
	Total     decimal.Decimal `json:"total"`
}

// ComputeAmounts derives VAT and total. Stamp duty is a flat addition.
func ComputeAmounts(exclTax, vatRate, stampDuty decimal.Decimal) Amounts {
	exclTax = round(exclTax)
	vat := percentOf(exclTax, vatRate)
	stamp := round(stampDuty)
	return Amounts{
		ExclTax:   exclTax,
		VATRate:   vatRate,
		VATAmount: vat,
		StampDuty: stamp,
		Total:     exclTax.Add(vat).Add(stamp),
	}
}

func orDefault(v *decimal.Decimal, def decimal.Decimal) decimal.Decimal {
	if v == nil {
		return def
	}
	return *v
}

func copyDec(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
