package synthesis

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/NadavGB86/event-pragmetizer-oss/internal/currency"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/model"
)

var (
	// A comma-grouped number wins over a plain digit run, so "10,000" and
	// "10000" both read as ten thousand.
	amountPattern  = regexp.MustCompile(`\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?`)
	integerPattern = regexp.MustCompile(`\d+`)
)

// currencyHints is scanned in order; the first hit decides.
var currencyHints = []struct {
	code  string
	hints []string
}{
	{currency.EUR, []string{"eur", "€", "euro"}},
	{currency.ILS, []string{"ils", "₪", "shekel", "nis"}},
	{currency.GBP, []string{"gbp", "£", "pound"}},
}

type Budget struct {
	Amount    float64
	Currency  string
	Symbol    string
	Reference float64
}

// ParseBudget reads the first amount in a budget phrase and classifies its
// currency, defaulting to US dollars.
func ParseBudget(value string) (Budget, bool) {
	text := strings.ToLower(value)

	raw := amountPattern.FindString(text)
	if raw == "" {
		return Budget{}, false
	}
	amount, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return Budget{}, false
	}

	code := DetectCurrency(text)
	return Budget{
		Amount:    amount,
		Currency:  code,
		Symbol:    currency.Symbol(code),
		Reference: amount * currency.RateToReference(code),
	}, true
}

// DetectCurrency classifies free text by currency words and symbols.
func DetectCurrency(text string) string {
	text = strings.ToLower(text)
	for _, h := range currencyHints {
		for _, hint := range h.hints {
			if strings.Contains(text, hint) {
				return h.code
			}
		}
	}
	return currency.USD
}

// ParseDuration reads every integer in a phrase such as "4-5 nights". One
// integer gives a fixed length, several give their min and max.
func ParseDuration(value string) (model.DurationRange, bool) {
	tokens := integerPattern.FindAllString(value, -1)
	if len(tokens) == 0 {
		return model.DurationRange{}, false
	}

	d := model.DurationRange{Min: math.MaxInt, Max: math.MinInt}
	for _, t := range tokens {
		n, err := strconv.Atoi(t)
		if err != nil {
			continue
		}
		d.Min = min(d.Min, n)
		d.Max = max(d.Max, n)
	}
	if d.Min > d.Max {
		return model.DurationRange{}, false
	}
	return d, true
}

// NightsBetween counts whole days from start to end. Dates are ISO
// calendar dates; full RFC 3339 timestamps are accepted too.
func NightsBetween(start, end string) (int, bool) {
	s, ok := parseDate(start)
	if !ok {
		return 0, false
	}
	e, ok := parseDate(end)
	if !ok {
		return 0, false
	}
	return int(math.Round(e.Sub(s).Hours() / 24)), true
}

func parseDate(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// WeightsFor picks the scoring weights from the traveller's traits.
func WeightsFor(traits []string) model.ScoringWeights {
	for _, t := range traits {
		lower := strings.ToLower(t)
		if strings.Contains(lower, "stress") || strings.Contains(lower, "logistics") {
			return LogisticsSensitiveWeights
		}
	}
	return DefaultWeights
}
