package brain

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/NadavGB86/event-pragmetizer-oss/common/llm"
	"github.com/NadavGB86/event-pragmetizer-oss/common/logger"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/model"
)

const (
	DefaultAdvisoryCacheSize = 256
	fallbackAdvisoryScore    = 50
	fallbackAdvisorySummary  = "Could not complete advisory review. Plan may still be valid."
)

// FallbackVerdict is what an advisory shows when the review failed.
func FallbackVerdict() model.SoftJudgeVerdict {
	return model.SoftJudgeVerdict{
		Score:          fallbackAdvisoryScore,
		Summary:        fallbackAdvisorySummary,
		Suggestions:    []string{},
		GroundingNotes: []string{},
	}
}

// Advisor is the soft judge. Verdicts are cached per evaluation.
type Advisor struct {
	llm   llm.Client
	cache *lru.Cache[int64, model.SoftJudgeVerdict]
}

func NewAdvisor(client llm.Client, cacheSize int) (*Advisor, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultAdvisoryCacheSize
	}
	cache, err := lru.New[int64, model.SoftJudgeVerdict](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating advisory cache: %w", err)
	}
	return &Advisor{llm: client, cache: cache}, nil
}

// Review returns the fallback verdict together with the error when the
// model call fails. Failures are not cached.
func (a *Advisor) Review(ctx context.Context, plan model.ScoredPlan, profile model.UserProfile) (model.SoftJudgeVerdict, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		EvaluationID: logger.Ptr(plan.EvaluationID),
		PlanID:       logger.Ptr(plan.ID),
		Component:    "planner.brain.advisor",
	})

	if plan.EvaluationID != 0 {
		if v, ok := a.cache.Get(plan.EvaluationID); ok {
			slog.DebugContext(ctx, "advisory cache hit")
			return v, nil
		}
	}

	planJSON, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return FallbackVerdict(), fmt.Errorf("encoding plan: %w", err)
	}
	profileJSON, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return FallbackVerdict(), fmt.Errorf("encoding profile: %w", err)
	}

	var verdict model.SoftJudgeVerdict
	if _, err := a.llm.Chat(ctx, llm.Request{
		SystemPrompt: advisorInstruction,
		UserPrompt:   fmt.Sprintf("REVIEW THIS PLAN (ADVISORY):\n%s\n\nUSER PROFILE:\n%s", planJSON, profileJSON),
		SchemaName:   "advisory_verdict",
		Schema:       llm.GenerateSchema[model.SoftJudgeVerdict](),
		Temperature:  llm.Temp(0.3),
	}, &verdict); err != nil {
		return FallbackVerdict(), fmt.Errorf("advisory review: %w", err)
	}

	if verdict.Suggestions == nil {
		verdict.Suggestions = []string{}
	}
	if verdict.GroundingNotes == nil {
		verdict.GroundingNotes = []string{}
	}

	if plan.EvaluationID != 0 {
		a.cache.Add(plan.EvaluationID, verdict)
	}
	return verdict, nil
}
