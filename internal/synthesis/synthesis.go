// Package synthesis turns a free-form profile into the strict numeric
// envelope and scoring weights that generation and scoring run against.
package synthesis

import (
	"github.com/NadavGB86/event-pragmetizer-oss/internal/currency"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/model"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/profile"
)

// DefaultOrigin is the departure point when nothing else is known. Scores
// are only reproducible while it stays fixed.
const DefaultOrigin = "TLV"

var (
	DefaultWeights = model.ScoringWeights{BudgetFit: 0.4, ExperienceMatch: 0.4, LogisticsEase: 0.2}

	// LogisticsSensitiveWeights replaces DefaultWeights outright for travellers
	// who flag stress or logistics as a concern.
	LogisticsSensitiveWeights = model.ScoringWeights{BudgetFit: 0.4, ExperienceMatch: 0.2, LogisticsEase: 0.4}
)

type options struct {
	origin string
}

type Option func(*options)

// WithOrigin overrides DefaultOrigin. Empty values are ignored.
func WithOrigin(origin string) Option {
	return func(o *options) {
		if origin != "" {
			o.origin = origin
		}
	}
}

// Build derives a fresh SynthesisRequest. It never fails: anything that
// cannot be read from the profile is left absent.
func Build(p model.UserProfile, opts ...Option) model.SynthesisRequest {
	o := options{origin: DefaultOrigin}
	for _, opt := range opts {
		opt(&o)
	}

	env := model.HardEnvelope{
		Currency:       currency.USD,
		CurrencySymbol: currency.DefaultSymbol,
		Origin:         o.origin,
		DateInfo:       p.DateInfo,
	}
	if env.DateInfo.Tier == "" {
		env.DateInfo = model.NoDates()
	}

	if c, ok := p.ConstraintOf(model.ConstraintTypeBudget); ok {
		if b, ok := ParseBudget(string(c.Value)); ok {
			amount, reference := b.Amount, b.Reference
			env.Budget = &amount
			env.BudgetReference = &reference
			env.Currency = b.Currency
			env.CurrencySymbol = b.Symbol
		}
	}

	env.DurationNights = durationFor(p)

	return model.SynthesisRequest{
		HardEnvelope:   env,
		ScoringWeights: WeightsFor(p.Needs.Traits),
		UserContext:    profile.Clone(p),
	}
}

// durationFor prefers an exact date window over any stated length.
func durationFor(p model.UserProfile) *model.DurationRange {
	if p.DateInfo.HasExactRange() {
		if nights, ok := NightsBetween(p.DateInfo.StartDate, p.DateInfo.EndDate); ok && nights > 0 {
			return &model.DurationRange{Min: nights, Max: nights}
		}
	}
	if c, ok := p.ConstraintOf(model.ConstraintTypeTime); ok {
		if d, ok := ParseDuration(string(c.Value)); ok {
			return &d
		}
	}
	return nil
}
