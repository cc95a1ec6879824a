package types

import "github.com/shopspring/decimal"

// ApplyBpsToCents computes amountCents * rateBps / 10000 rounded half-up
// to whole cents. The arithmetic runs on integer-valued decimals so the
// result is deterministic with no floating-point drift.
func ApplyBpsToCents(amountCents, rateBps int64) int64 {
	return decimal.NewFromInt(amountCents).
		Mul(decimal.NewFromInt(rateBps)).
		Div(decimal.NewFromInt(10000)).
		Round(0).
		IntPart()
}

// BpsToPercent renders a basis-point rate as a percentage string for
// labels and logs, e.g. 1900 -> "19", 750 -> "7.5".
func BpsToPercent(rateBps int64) string {
	return decimal.NewFromInt(rateBps).Div(decimal.NewFromInt(100)).String()
}
