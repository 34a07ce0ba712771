// Package mathutil provides common decimal helpers for currency amounts.
package mathutil

import (
	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/shopspring/decimal"
)

// Epsilon is the one-cent tolerance used for balance clamping and comparisons.
var Epsilon = decimal.NewFromFloat(constants.BalanceEpsilon)

// Round rounds a value to two decimals, i.e. to represent real currency.
func Round(val decimal.Decimal) decimal.Decimal {
	return val.Round(constants.DecimalPlaces)
}

// Guard trims an intermediate amount to the engine's guard precision so that
// repeated multiplication does not grow the number of digits without bound.
func Guard(val decimal.Decimal) decimal.Decimal {
	return val.Round(constants.GuardPlaces)
}

// BelowEpsilon reports whether a value is strictly below one cent.
func BelowEpsilon(val decimal.Decimal) bool {
	return val.LessThan(Epsilon)
}

// AboveEpsilon reports whether a value is strictly above one cent.
func AboveEpsilon(val decimal.Decimal) bool {
	return val.GreaterThan(Epsilon)
}

// ClampBalance returns zero for balances below one cent.
func ClampBalance(val decimal.Decimal) decimal.Decimal {
	if BelowEpsilon(val) {
		return decimal.Zero
	}
	return val
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance decimal.Decimal) bool {
	return val1.Sub(val2).Abs().LessThanOrEqual(tolerance)
}

// NonNegative floors a value at zero.
func NonNegative(val decimal.Decimal) decimal.Decimal {
	if val.IsNegative() {
		return decimal.Zero
	}
	return val
}

// Min returns the minimum of two decimal values
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Max returns the maximum of two decimal values
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}
