// Package core provides money parsing and handling utilities.
//
// This file contains the helpers used to turn spreadsheet cells into decimal
// amounts and to render amounts at the presentation boundary. Arithmetic is
// always done on unrounded decimals.
package core

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Bounds for parsed numbers. Larger exponents make every later operation
// rescale huge coefficients.
const (
	maxExponent = 18
	maxDigits   = 20
)

// ParseDecimal parses s as a plain decimal number. Exponent notation is
// accepted only while the value stays within maxDigits significant digits
// and an exponent of ±maxExponent.
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 64 {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return decimal.Zero, ErrInvalidAmount
	}
	if len(new(big.Int).Abs(d.Coefficient()).String()) > maxDigits {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseAmount converts a cell to a decimal amount.
//
// Surrounding whitespace is ignored and the decimal point must be a dot, the
// same way a numeric coercion of the column would behave. Negative values
// parse but are reported with ErrNegativeAmount.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount(" 5000 ") -> 5000, nil
//	ParseAmount("12,34")  -> 0, ErrInvalidAmount
//	ParseAmount("1e5000") -> 0, ErrInvalidAmount
//	ParseAmount("-3")     -> -3, ErrNegativeAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := ParseDecimal(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return d, ErrNegativeAmount
	}
	return d, nil
}

// Percent returns part/whole*100. whole must be non-zero.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	return part.Div(whole).Mul(hundred)
}

// PercentOf returns pct% of base.
func PercentOf(pct, base decimal.Decimal) decimal.Decimal {
	return pct.Div(hundred).Mul(base)
}

// FormatMoney renders an amount rounded to two places with the currency symbol.
func FormatMoney(symbol string, d decimal.Decimal) string {
	return symbol + d.StringFixed(2)
}

// Round2 rounds for display or serialization. Never feed the result back into
// further arithmetic.
func Round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
