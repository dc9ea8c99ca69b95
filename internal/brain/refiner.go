package brain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/NadavGB86/event-pragmetizer-oss/common/llm"
	"github.com/NadavGB86/event-pragmetizer-oss/common/logger"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/model"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/scoring"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/synthesis"
)

var ErrEmptyInstruction = errors.New("refinement instruction is empty")

type Refiner struct {
	llm    llm.Client
	origin string
	retry  llm.RetryPolicy
}

func NewRefiner(client llm.Client, origin string) *Refiner {
	return &Refiner{llm: client, origin: origin, retry: llm.DefaultRetry}
}

func (r *Refiner) WithRetry(p llm.RetryPolicy) *Refiner {
	r.retry = p
	return r
}

// Refine rewrites current according to instruction and rescores it. The
// previous display currency is kept. On error the caller keeps current.
// The returned plan has no EvaluationID yet.
func (r *Refiner) Refine(ctx context.Context, current model.ScoredPlan, instruction string, profile model.UserProfile) (model.ScoredPlan, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		PlanID:    logger.Ptr(current.ID),
		Component: "planner.brain.refiner",
	})

	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return model.ScoredPlan{}, ErrEmptyInstruction
	}

	planJSON, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return model.ScoredPlan{}, fmt.Errorf("encoding plan: %w", err)
	}
	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return model.ScoredPlan{}, fmt.Errorf("encoding profile: %w", err)
	}

	prompt := fmt.Sprintf("CURRENT PLAN:\n%s\n\nUSER INSTRUCTION:\n%q\n\nUSER CONTEXT:\n%s\n\nUpdate the plan to address the instruction while keeping it feasible.",
		planJSON, instruction, profileJSON)

	var refined model.CandidatePlan
	if _, err := llm.ChatWithRetry(ctx, r.llm, llm.Request{
		SystemPrompt: refinerInstruction,
		UserPrompt:   prompt,
		SchemaName:   "candidate_plan",
		Schema:       llm.GenerateSchema[model.CandidatePlan](),
		Temperature:  llm.Temp(0.5),
	}, &refined, r.retry); err != nil {
		return model.ScoredPlan{}, fmt.Errorf("refining plan %s: %w", current.ID, err)
	}

	refined.DisplayCurrency = current.DisplayCurrency
	if refined.DisplayCurrency == nil {
		ReconcileCurrency(&refined, current.CurrencyCode)
	}

	req := synthesis.Build(profile, synthesis.WithOrigin(r.origin))
	scored := model.ScoredPlan{
		CandidatePlan: refined,
		ComputedScore: scoring.Score(refined, req),
	}

	slog.InfoContext(ctx, "plan refined",
		"overall_score", scored.ComputedScore.OverallScore,
		"instruction", logger.Truncate(instruction, 120))
	return scored, nil
}
