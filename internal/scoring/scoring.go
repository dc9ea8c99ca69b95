// Package scoring evaluates generated plans against the hard envelope.
package scoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/NadavGB86/event-pragmetizer-oss/internal/model"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/sanity"
)

const (
	// HardFailScore replaces the weighted sum whenever a plan hard-fails.
	HardFailScore = 20.0

	// CurrencyMismatchOverage is the overage ratio above which a plan is
	// assumed to be priced in the wrong unit rather than genuinely over budget.
	CurrencyMismatchOverage = 5.0

	// OveragePenalty is the points lost per percent over budget.
	OveragePenalty = 5.0

	DefaultExperienceScore = 80.0
	LogisticsPlaceholder   = 80.0
)

const (
	ReasonUnrealisticPrices = "Unrealistic Prices"
	ReasonNoLimit           = "No strict limit set"
	ReasonWithinBudget      = "Within budget"
	ReasonCurrencyMismatch  = "Currency Mismatch Detected (Ignored)"
	ReasonNoWants           = "Default (no preferences to match)"
	ReasonEstimated         = "Estimated"
	ReasonPass              = "Pass"
)

// Score evaluates one plan. It is pure and assumes a structurally valid plan.
//
// The overall score weighs the constraints dimension with LogisticsEase; the
// logistics dimension is reported but not weighted. Existing scores depend on
// this, so it must not be "corrected" silently.
func Score(plan model.CandidatePlan, req model.SynthesisRequest) model.FeasibilityEvaluation {
	check := sanity.Check(plan)

	budget := budgetDimension(plan, req.HardEnvelope, check)
	experience := experienceDimension(plan, req.UserContext.Goals.DeclaredWants)
	constraints := model.DimensionScore{Score: 100, Reason: ReasonPass}

	hardFail := false
	if !check.IsSane {
		hardFail = true
		constraints = model.DimensionScore{Score: 0, Reason: check.Violations[0]}
	}
	if budget.Score < 0 {
		hardFail = true
	}

	w := req.ScoringWeights
	overall := math.Round(budget.Score*w.BudgetFit + experience.Score*w.ExperienceMatch + constraints.Score*w.LogisticsEase)
	if hardFail {
		overall = HardFailScore
	}

	return model.FeasibilityEvaluation{
		OverallScore: overall,
		Dimensions: model.Dimensions{
			Budget:      model.DimensionScore{Score: math.Round(budget.Score), Reason: budget.Reason},
			Experience:  model.DimensionScore{Score: math.Round(experience.Score), Reason: experience.Reason},
			Logistics:   model.DimensionScore{Score: LogisticsPlaceholder, Reason: ReasonEstimated},
			Constraints: constraints,
		},
		IsValidHard: !hardFail,
	}
}

// ScorePlans scores each plan in input order. Ranking is left to the caller.
func ScorePlans(plans []model.CandidatePlan, req model.SynthesisRequest) []model.ScoredPlan {
	scored := make([]model.ScoredPlan, 0, len(plans))
	for _, p := range plans {
		scored = append(scored, model.ScoredPlan{CandidatePlan: p, ComputedScore: Score(p, req)})
	}
	return scored
}

// Limit is the budget a plan is measured against: the stated amount, else
// its reference-currency equivalent, else none.
func Limit(env model.HardEnvelope) (float64, bool) {
	if env.Budget != nil && *env.Budget > 0 {
		return *env.Budget, true
	}
	if env.BudgetReference != nil && *env.BudgetReference > 0 {
		return *env.BudgetReference, true
	}
	return 0, false
}

func budgetDimension(plan model.CandidatePlan, env model.HardEnvelope, check model.SanityResult) model.DimensionScore {
	if !check.IsSane {
		return model.DimensionScore{Score: 0, Reason: ReasonUnrealisticPrices}
	}

	limit, ok := Limit(env)
	if !ok {
		return model.DimensionScore{Score: 100, Reason: ReasonNoLimit}
	}

	cost := plan.TotalEstimatedBudget
	if cost <= limit {
		return model.DimensionScore{Score: 100, Reason: ReasonWithinBudget}
	}

	overage := (cost - limit) / limit
	if overage > CurrencyMismatchOverage {
		return model.DimensionScore{Score: 100, Reason: ReasonCurrencyMismatch}
	}
	return model.DimensionScore{
		Score:  math.Max(0, 100-overage*100*OveragePenalty),
		Reason: fmt.Sprintf("Over budget by %d%%", int(math.Round(overage*100))),
	}
}

func experienceDimension(plan model.CandidatePlan, wants []string) model.DimensionScore {
	if len(wants) == 0 {
		return model.DimensionScore{Score: DefaultExperienceScore, Reason: ReasonNoWants}
	}

	text := planText(plan)
	hits := 0
	for _, w := range wants {
		if strings.Contains(text, strings.ToLower(w)) {
			hits++
		}
	}

	return model.DimensionScore{
		Score:  math.Min(100, float64(hits)/float64(len(wants))*100),
		Reason: fmt.Sprintf("Matched %d/%d wants", hits, len(wants)),
	}
}

// planText is the lower-cased JSON form of the whole plan, so wants match
// against every field the generator filled in.
func planText(plan model.CandidatePlan) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(plan); err != nil {
		return ""
	}
	return strings.ToLower(buf.String())
}
