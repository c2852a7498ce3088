// Package core holds the domain types shared by the ledger store and
// the aggregation engine: records, flags, calendar dates and monetary
// amounts.
//
// Amounts are stored as text in the persisted form. Coercion to a
// numeric value may fail; a failed coercion never aborts a load, the
// amount is carried through flagged as invalid and every aggregation
// excludes it from its sums.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a decimal monetary value backed by its original text.
type Amount struct {
	raw   string
	value decimal.Decimal
	valid bool
}

// ParseAmount coerces text to a decimal amount. It accepts both dot and
// comma decimal separators. It never returns an error: non-numeric text
// yields an Amount whose Valid method reports false.
func ParseAmount(s string) Amount {
	trimmed := strings.TrimSpace(s)
	normalized := strings.ReplaceAll(trimmed, ",", ".")
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return Amount{raw: s}
	}
	return Amount{raw: s, value: d, valid: true}
}

// NewAmount wraps an already-numeric value.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{raw: d.String(), value: d, valid: true}
}

// Valid reports whether the original text coerced to a number.
func (a Amount) Valid() bool {
	return a.valid
}

// Decimal returns the numeric value; zero when the amount is invalid.
func (a Amount) Decimal() decimal.Decimal {
	return a.value
}

// String returns the original text, preserved verbatim for persistence.
func (a Amount) String() string {
	return a.raw
}
