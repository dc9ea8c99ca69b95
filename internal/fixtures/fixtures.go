// Package fixtures provides shared profiles, plans and requests for tests.
// Every function returns a fresh value so callers may mutate freely.
package fixtures

import "github.com/NadavGB86/event-pragmetizer-oss/internal/model"

func day(n int) *int { return &n }

func EmptyProfile() model.UserProfile {
	return model.UserProfile{
		Needs: model.Needs{
			Participants:  model.DefaultParticipants(),
			Standards:     []string{},
			Habits:        []string{},
			Traits:        []string{},
			Constraints:   []model.Constraint{},
			LatentDesires: []string{},
		},
		Goals: model.Goals{
			Targets:        []model.Target{},
			DeclaredWants:  []string{},
			Considerations: []string{},
			Visions:        []model.Vision{},
		},
		DateInfo: model.NoDates(),
	}
}

// MinimalReadyProfile has exactly enough to pass readiness.
func MinimalReadyProfile() model.UserProfile {
	p := EmptyProfile()
	p.Needs.Participants = model.Participants{Adults: 2, Children: 0, RoomCount: 1, Description: "Couple"}
	p.Needs.Constraints = []model.Constraint{
		{Type: model.ConstraintTypeBudget, Value: "$3,000 USD", Flexibility: model.FlexibilityHard},
	}
	p.Goals.DeclaredWants = []string{"beach", "relaxation"}
	p.Goals.Visions = []model.Vision{
		{Description: "Relaxing beach getaway", ReferenceType: model.ReferenceTypeText},
	}
	return p
}

func FullProfile() model.UserProfile {
	return model.UserProfile{
		Needs: model.Needs{
			Participants: model.Participants{Adults: 2, Children: 1, RoomCount: 1, Description: "2 Adults + 1 Child"},
			Standards:    []string{"4-star hotels", "kid-friendly"},
			Habits:       []string{"early riser"},
			Traits:       []string{"stress-sensitive"},
			Constraints: []model.Constraint{
				{Type: model.ConstraintTypeBudget, Value: "$5,000 USD", Flexibility: model.FlexibilitySoft},
				{Type: model.ConstraintTypeTime, Value: "4-5 nights", Flexibility: model.FlexibilityHard},
				{Type: model.ConstraintTypeLogistics, Value: "Need car seat for child", Flexibility: model.FlexibilityHard},
			},
			LatentDesires: []string{"wants quality time"},
		},
		Goals: model.Goals{
			Targets: []model.Target{
				{Description: "Visit Barcelona", Priority: model.TargetPriorityMustHave, Category: model.TargetCategoryExperience},
			},
			DeclaredWants:  []string{"beach", "culture", "family dining"},
			Considerations: []string{"child-safe activities"},
			Visions: []model.Vision{
				{Description: "Mediterranean family vacation", ReferenceType: model.ReferenceTypeText},
			},
		},
		DateInfo: model.ExactDates("2026-07-10", "2026-07-14"),
	}
}

func FlightComponent() model.PlanComponent {
	return model.PlanComponent{
		Type:         model.ComponentTypeTransport,
		Title:        "Round-trip flight to Barcelona",
		Details:      "TLV → BCN direct",
		CostEstimate: 800,
		ItineraryDay: day(1),
		Flexibility:  model.ComponentFlexibilityFixed,
	}
}

func CheapFlightComponent() model.PlanComponent {
	return model.PlanComponent{
		Type:         model.ComponentTypeTransport,
		Title:        "Flight to Barcelona",
		Details:      "Budget airline",
		CostEstimate: 50,
		ItineraryDay: day(1),
		Flexibility:  model.ComponentFlexibilityFixed,
	}
}

func HotelComponent() model.PlanComponent {
	return model.PlanComponent{
		Type:         model.ComponentTypeAccommodation,
		Title:        "Hotel Arts Barcelona",
		Details:      "4-star beachfront",
		CostEstimate: 600,
		ItineraryDay: day(1),
		Flexibility:  model.ComponentFlexibilityMovable,
	}
}

func CheapHotelComponent() model.PlanComponent {
	return model.PlanComponent{
		Type:         model.ComponentTypeAccommodation,
		Title:        "Budget Hostel",
		Details:      "Shared dorm",
		CostEstimate: 10,
		ItineraryDay: day(1),
		Flexibility:  model.ComponentFlexibilityMovable,
	}
}

func ActivityComponent() model.PlanComponent {
	return model.PlanComponent{
		Type:         model.ComponentTypeActivity,
		Title:        "Sagrada Familia Tour",
		Details:      "Guided tour of the basilica",
		CostEstimate: 120,
		ItineraryDay: day(2),
		Flexibility:  model.ComponentFlexibilityMovable,
	}
}

func DiningComponent() model.PlanComponent {
	return model.PlanComponent{
		Type:         model.ComponentTypeDining,
		Title:        "La Boqueria Market Dinner",
		Details:      "Fresh seafood dinner at the market",
		CostEstimate: 80,
		ItineraryDay: day(2),
		Flexibility:  model.ComponentFlexibilityOptional,
	}
}

func ValidPlan() model.CandidatePlan {
	return model.CandidatePlan{
		ID:                   "plan-1",
		Title:                "Barcelona Beach & Culture",
		Summary:              "A balanced beach and culture trip to Barcelona with family dining options.",
		Components:           []model.PlanComponent{FlightComponent(), HotelComponent(), ActivityComponent(), DiningComponent()},
		TotalEstimatedBudget: 1600,
		FeasibilityScore:     85,
		MatchReasoning:       "Good match for beach + culture wants",
		Tradeoffs:            []string{"Could be tighter on budget with upgrades"},
		DisplayCurrency:      &model.DisplayCurrency{Code: "USD", Symbol: "$"},
	}
}

func InsanePlan() model.CandidatePlan {
	return model.CandidatePlan{
		ID:                   "plan-insane",
		Title:                "Too Good to Be True",
		Summary:              "Suspiciously cheap plan.",
		Components:           []model.PlanComponent{CheapFlightComponent(), CheapHotelComponent()},
		TotalEstimatedBudget: 60,
		FeasibilityScore:     90,
		MatchReasoning:       "Budget-friendly",
		Tradeoffs:            []string{},
		DisplayCurrency:      &model.DisplayCurrency{Code: "USD", Symbol: "$"},
	}
}

// OverBudgetPlan is a third over the default request's limit.
func OverBudgetPlan() model.CandidatePlan {
	p := ValidPlan()
	p.ID = "plan-over"
	p.TotalEstimatedBudget = 4000
	return p
}

func DefaultRequest() model.SynthesisRequest {
	budget, reference := 3000.0, 11400.0
	return model.SynthesisRequest{
		HardEnvelope: model.HardEnvelope{
			BudgetReference: &reference,
			Budget:          &budget,
			Currency:        "USD",
			CurrencySymbol:  "$",
			DurationNights:  &model.DurationRange{Min: 4, Max: 5},
			Origin:          "TLV",
			DateInfo:        model.NoDates(),
		},
		ScoringWeights: model.ScoringWeights{BudgetFit: 0.4, ExperienceMatch: 0.4, LogisticsEase: 0.2},
		UserContext:    MinimalReadyProfile(),
	}
}
