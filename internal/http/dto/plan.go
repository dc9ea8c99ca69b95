package dto

import (
	"github.com/NadavGB86/event-pragmetizer-oss/internal/model"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/service"
)

type GenerationResponse struct {
	Plans        []model.ScoredPlan `json:"plans"`
	DatesMissing bool               `json:"dates_missing"`
}

func ToGenerationResponse(r *service.GenerationResult) *GenerationResponse {
	plans := r.Plans
	if plans == nil {
		plans = []model.ScoredPlan{}
	}
	return &GenerationResponse{Plans: plans, DatesMissing: r.DatesMissing}
}

// NotReadyResponse is returned with 409 when generation is gated.
type NotReadyResponse struct {
	Error           string   `json:"error"`
	MissingCritical []string `json:"missing_critical"`
	MissingOptional []string `json:"missing_optional"`
}

type SelectPlanRequest struct {
	EvaluationID int64 `json:"evaluation_id,string" binding:"required"`
}

type RefinePlanRequest struct {
	Instruction string `json:"instruction" binding:"required,max=2000"`
}

type EvaluateRequest struct {
	Profile model.UserProfile     `json:"profile"`
	Plans   []model.CandidatePlan `json:"plans" binding:"required,min=1,max=20"`
}

type EvaluateResponse struct {
	Request model.SynthesisRequest `json:"request"`
	Plans   []model.ScoredPlan     `json:"plans"`
}

func ToEvaluateResponse(r service.EvaluationResult) *EvaluateResponse {
	return &EvaluateResponse{Request: r.Request, Plans: r.Plans}
}
