package model

type DurationRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// HardEnvelope is the numeric subset of a profile a generated plan must respect.
// Budget and BudgetReference are nil when no budget could be read.
type HardEnvelope struct {
	BudgetReference *float64       `json:"budget_ils"`
	Budget          *float64       `json:"budget"`
	Currency        string         `json:"currency"`
	CurrencySymbol  string         `json:"currency_symbol"`
	DurationNights  *DurationRange `json:"duration_nights"`
	Origin          string         `json:"origin"`
	DateInfo        DateInfo       `json:"date_info"`
}

type ScoringWeights struct {
	BudgetFit       float64 `json:"budget_fit"`
	ExperienceMatch float64 `json:"experience_match"`
	LogisticsEase   float64 `json:"logistics_ease"`
}

// SynthesisRequest is rebuilt from the profile at every generation and never stored.
type SynthesisRequest struct {
	HardEnvelope   HardEnvelope   `json:"hard_envelope"`
	ScoringWeights ScoringWeights `json:"scoring_weights"`
	UserContext    UserProfile    `json:"user_context"`
}
