package utils

import "github.com/shopspring/decimal"

// MoneyPrecision is the number of decimals amounts are displayed with.
const MoneyPrecision = 2

// FormatWithPrecision formats an amount with the given precision, keeping trailing zeros.
// Example: amount 12.3456 with precision 2 returns "12.35"
// Example: amount 1000 with precision 2 returns "1000.00"
func FormatWithPrecision(amount decimal.Decimal, precision int) string {
	return amount.StringFixed(int32(precision))
}

// FormatMoney formats an amount with MoneyPrecision.
func FormatMoney(amount decimal.Decimal) string {
	return FormatWithPrecision(amount, MoneyPrecision)
}
