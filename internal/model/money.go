package model

import "github.com/shopspring/decimal"

// MoneyScale is the number of decimal places every money column stores.
const MoneyScale = 2

// FitsMoneyScale reports whether d is stored without rounding. The register
// balance is derived from ledger amounts, so an amount the database would
// round makes the two disagree.
func FitsMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MoneyScale))
}
