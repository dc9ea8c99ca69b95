package model

type ComponentType string

const (
	ComponentTypeTransport     ComponentType = "transport"
	ComponentTypeAccommodation ComponentType = "accommodation"
	ComponentTypeActivity      ComponentType = "activity"
	ComponentTypeDining        ComponentType = "dining"
	ComponentTypeLogistics     ComponentType = "logistics"

	// ComponentTypeFlight is not part of the requested schema but generators
	// emit it often enough that classification has to accept it.
	ComponentTypeFlight ComponentType = "flight"
)

func (t *ComponentType) UnmarshalJSON(b []byte) error {
	s, err := normalizedString(b, "component type")
	if err != nil {
		return err
	}
	*t = ComponentType(s)
	return nil
}

type ComponentFlexibility string

const (
	ComponentFlexibilityFixed    ComponentFlexibility = "fixed"
	ComponentFlexibilityMovable  ComponentFlexibility = "movable"
	ComponentFlexibilityOptional ComponentFlexibility = "optional"
)

func (f *ComponentFlexibility) UnmarshalJSON(b []byte) error {
	s, err := normalizedString(b, "component flexibility")
	if err != nil {
		return err
	}
	*f = ComponentFlexibility(s)
	return nil
}

type PlanComponent struct {
	Type         ComponentType        `json:"type"`
	Title        string               `json:"title"`
	Details      string               `json:"details"`
	CostEstimate float64              `json:"cost_estimate"`
	ItineraryDay *int                 `json:"itinerary_day,omitempty"`
	Flexibility  ComponentFlexibility `json:"flexibility"`
}

type LogisticsTask struct {
	Description       string  `json:"description"`
	Resolved          bool    `json:"resolved"`
	CostEstimate      float64 `json:"cost_estimate"`
	OutsideTripBudget bool    `json:"outside_trip_budget"`
}

type PreDepartureLogistics struct {
	Childcare []LogisticsTask `json:"childcare"`
	PetCare   []LogisticsTask `json:"pet_care"`
	Documents []LogisticsTask `json:"documents"`
	Other     []string        `json:"other"`
}

type DisplayCurrency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
}

// CandidatePlan is generator output. None of its numbers are trusted.
type CandidatePlan struct {
	ID                    string                 `json:"id"`
	Title                 string                 `json:"title"`
	Summary               string                 `json:"summary"`
	Components            []PlanComponent        `json:"components"`
	PreDepartureLogistics *PreDepartureLogistics `json:"pre_departure_logistics,omitempty"`
	TotalEstimatedBudget  float64                `json:"total_estimated_budget"`
	FeasibilityScore      float64                `json:"feasibility_score"`
	MatchReasoning        string                 `json:"match_reasoning"`
	Tradeoffs             []string               `json:"tradeoffs"`
	CurrencyCode          string                 `json:"currency_code,omitempty"`
	DisplayCurrency       *DisplayCurrency       `json:"display_currency,omitempty"`
}

// CurrencyCodeOrDefault is the currency the plan's numbers are stated in.
func (p CandidatePlan) CurrencyCodeOrDefault() string {
	if p.DisplayCurrency != nil && p.DisplayCurrency.Code != "" {
		return p.DisplayCurrency.Code
	}
	return "USD"
}

type DimensionScore struct {
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

type Dimensions struct {
	Budget      DimensionScore `json:"budget"`
	Logistics   DimensionScore `json:"logistics"`
	Experience  DimensionScore `json:"experience"`
	Constraints DimensionScore `json:"constraints"`
}

type FeasibilityEvaluation struct {
	OverallScore float64    `json:"overall_score"`
	Dimensions   Dimensions `json:"dimensions"`
	IsValidHard  bool       `json:"is_valid_hard"`
}

// ScoredPlan is a candidate plan with its evaluation attached. EvaluationID
// changes every time a plan is scored, so a refined plan that keeps the
// generator's ID is still a distinct plan.
type ScoredPlan struct {
	CandidatePlan
	ComputedScore FeasibilityEvaluation `json:"computed_score"`
	EvaluationID  int64                 `json:"evaluation_id,string,omitempty"`
}

type SanityResult struct {
	IsSane     bool     `json:"is_sane"`
	Violations []string `json:"violations"`
}
