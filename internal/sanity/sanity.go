// Package sanity catches implausibly cheap line items in generated plans.
package sanity

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/NadavGB86/event-pragmetizer-oss/internal/currency"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/model"
)

// Floors are in US dollars and scaled to the plan currency at check time.
const (
	MinFlightUSD        = 150.0
	MinAccommodationUSD = 40.0
	MinTripWithFlights  = 200.0
)

var (
	flightTitle        = regexp.MustCompile(`(?i)flight|fly|air|plane|tlv|ben gurion|airport`)
	accommodationTitle = regexp.MustCompile(`(?i)hotel|hostel|airbnb|stay`)
)

// Check runs every floor against the plan. Callers must have validated the
// plan's shape.
func Check(plan model.CandidatePlan) model.SanityResult {
	code := plan.CurrencyCodeOrDefault()
	minFlight := Floor(MinFlightUSD, code)
	minStay := Floor(MinAccommodationUSD, code)

	violations := []string{}
	hasFlight := false

	for _, c := range plan.Components {
		if IsFlight(c) {
			hasFlight = true
			if c.CostEstimate < minFlight {
				violations = append(violations, fmt.Sprintf("Flight cost (%s %s) is suspiciously low (min ~%s %s)",
					formatAmount(c.CostEstimate), code, formatAmount(minFlight), code))
			}
		}
		if IsAccommodation(c) && c.CostEstimate < minStay {
			violations = append(violations, fmt.Sprintf("Accommodation (%s %s) is suspicious (min ~%s %s)",
				formatAmount(c.CostEstimate), code, formatAmount(minStay), code))
		}
	}

	if hasFlight {
		if minTotal := Floor(MinTripWithFlights, code); plan.TotalEstimatedBudget < minTotal {
			violations = append(violations, fmt.Sprintf("Total budget (%s %s) is impossible for a trip with flights.",
				formatAmount(plan.TotalEstimatedBudget), code))
		}
	}

	return model.SanityResult{IsSane: len(violations) == 0, Violations: violations}
}

// IsFlight classifies by keyword because the declared type is unreliable:
// a flight is anything typed "flight", a transport item with an air-travel
// hint in its title, or anything titled as a flight.
func IsFlight(c model.PlanComponent) bool {
	typ := model.ComponentType(strings.ToLower(string(c.Type)))
	switch {
	case typ == model.ComponentTypeFlight:
		return true
	case typ == model.ComponentTypeTransport && flightTitle.MatchString(c.Title):
		return true
	default:
		return strings.Contains(strings.ToLower(c.Title), "flight")
	}
}

func IsAccommodation(c model.PlanComponent) bool {
	return strings.EqualFold(string(c.Type), string(model.ComponentTypeAccommodation)) ||
		accommodationTitle.MatchString(c.Title)
}

// Floor converts a dollar floor into code, rounded to a whole unit.
func Floor(usd float64, code string) float64 {
	return math.Round(usd * currency.FromUSD(code))
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
