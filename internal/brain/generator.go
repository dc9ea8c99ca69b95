package brain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/NadavGB86/event-pragmetizer-oss/common/llm"
	"github.com/NadavGB86/event-pragmetizer-oss/common/logger"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/currency"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/model"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/scoring"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/synthesis"
)

// GeneratorOutput is the structured answer the generator is asked for.
type GeneratorOutput struct {
	Plans []model.CandidatePlan `json:"plans" jsonschema:"required,description=Three distinct candidate plans"`
}

type Generation struct {
	Request model.SynthesisRequest
	Plans   []model.ScoredPlan
}

type Generator struct {
	llm    llm.Client
	origin string
	retry  llm.RetryPolicy
}

func NewGenerator(client llm.Client, origin string) *Generator {
	return &Generator{llm: client, origin: origin, retry: llm.DefaultRetry}
}

// WithRetry replaces llm.DefaultRetry.
func (g *Generator) WithRetry(p llm.RetryPolicy) *Generator {
	g.retry = p
	return g
}

// Generate asks the model for candidate plans and scores them. Model and
// parse failures degrade to an empty plan list; only the request is always
// returned.
func (g *Generator) Generate(ctx context.Context, profile model.UserProfile) Generation {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "planner.brain.generator"})
	start := time.Now()

	req := synthesis.Build(profile, synthesis.WithOrigin(g.origin))
	out := Generation{Request: req, Plans: []model.ScoredPlan{}}

	prompt, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode synthesis request", "error", err)
		return out
	}

	var raw json.RawMessage
	_, err = llm.ChatWithRetry(ctx, g.llm, llm.Request{
		SystemPrompt: generatorInstruction,
		UserPrompt:   "GENERATE PLANS FOR THIS REQUEST:\n" + string(prompt),
		SchemaName:   "candidate_plans",
		Schema:       llm.GenerateSchema[GeneratorOutput](),
		Temperature:  llm.Temp(0.5),
	}, &raw, g.retry)
	if err != nil {
		slog.WarnContext(ctx, "plan generation failed", "error", err)
		return out
	}

	plans, err := decodePlans(raw)
	if err != nil {
		slog.WarnContext(ctx, "discarding unparseable plans", "error", err)
		return out
	}

	for i := range plans {
		ReconcileCurrency(&plans[i], req.HardEnvelope.Currency)
		if code := plans[i].DisplayCurrency.Code; !currency.Known(code) {
			slog.WarnContext(ctx, "plan priced in an unlisted currency, sanity floors stay in dollars",
				"plan_id", plans[i].ID,
				"currency", code)
		}
	}
	out.Plans = scoring.ScorePlans(plans, req)

	slog.InfoContext(ctx, "plans generated",
		"count", len(out.Plans),
		"duration_ms", time.Since(start).Milliseconds())
	return out
}

// decodePlans accepts {"plans": [...]} and, from older prompts, a bare array.
func decodePlans(raw json.RawMessage) ([]model.CandidatePlan, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var plans []model.CandidatePlan
		if err := json.Unmarshal(trimmed, &plans); err != nil {
			return nil, fmt.Errorf("decoding plan list: %w", err)
		}
		return plans, nil
	}

	var out GeneratorOutput
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("decoding plans: %w", err)
	}
	return out.Plans, nil
}

// ReconcileCurrency turns the generator's currency_code into the plan's
// display currency, falling back to the requested currency.
func ReconcileCurrency(plan *model.CandidatePlan, requested string) {
	code := currency.Normalize(plan.CurrencyCode)
	if code == "" {
		code = currency.Normalize(requested)
	}
	if code == "" {
		code = currency.USD
	}
	plan.DisplayCurrency = &model.DisplayCurrency{Code: code, Symbol: currency.Symbol(code)}
}
