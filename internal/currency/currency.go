// Package currency holds the fixed currency tables used by the planning
// guardrails. The rates are deliberately coarse approximations; they feed
// plausibility heuristics, never money movement.
package currency

import "strings"

const (
	USD = "USD"
	EUR = "EUR"
	GBP = "GBP"
	ILS = "ILS"
	NIS = "NIS"

	// Reference is the currency budget equivalents are expressed in.
	Reference = ILS

	// DefaultSymbol is used when no currency code is known at all.
	DefaultSymbol = "$"
)

var symbols = map[string]string{
	ILS: "₪",
	USD: "$",
	EUR: "€",
	GBP: "£",
	NIS: "₪",
}

// toReference converts one unit of a currency into the reference currency.
var toReference = map[string]float64{
	USD: 3.8,
	EUR: 4.0,
	GBP: 4.8,
	ILS: 1.0,
	NIS: 1.0,
}

// fromUSD converts one US dollar into a currency. Sanity floors are defined
// in dollars and scaled through this table.
var fromUSD = map[string]float64{
	USD: 1,
	ILS: 3.8,
	EUR: 0.92,
	GBP: 0.79,
	NIS: 3.8,
}

// Normalize upper-cases and trims a currency code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Symbol returns the display symbol for a code. Unknown codes are returned
// as-is and an empty code yields DefaultSymbol.
func Symbol(code string) string {
	if s, ok := symbols[Normalize(code)]; ok {
		return s
	}
	if code == "" {
		return DefaultSymbol
	}
	return code
}

// Known reports whether the code is in the fixed table.
func Known(code string) bool {
	_, ok := symbols[Normalize(code)]
	return ok
}

// RateToReference returns the multiplier from code to the reference
// currency. Unknown codes are treated as US dollars.
func RateToReference(code string) float64 {
	if r, ok := toReference[Normalize(code)]; ok {
		return r
	}
	return toReference[USD]
}

// FromUSD returns how many units of code one US dollar buys. Unknown codes
// get 1, leaving dollar floors unscaled.
func FromUSD(code string) float64 {
	if r, ok := fromUSD[Normalize(code)]; ok {
		return r
	}
	return 1
}
