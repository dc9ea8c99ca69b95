package advisory_test

import (
	"context"

	"github.com/NadavGB86/event-pragmetizer-oss/internal/model"
)

type mockReviewer struct {
	reviewFn func(ctx context.Context, plan model.ScoredPlan, profile model.UserProfile) (model.SoftJudgeVerdict, error)
}

func (m *mockReviewer) Review(ctx context.Context, plan model.ScoredPlan, profile model.UserProfile) (model.SoftJudgeVerdict, error) {
	if m.reviewFn != nil {
		return m.reviewFn(ctx, plan, profile)
	}
	return model.SoftJudgeVerdict{Score: 7, Summary: "looks fine"}, nil
}

func scored(evaluationID int64) model.ScoredPlan {
	return model.ScoredPlan{
		CandidatePlan: model.CandidatePlan{ID: "plan-1", Title: "Beach"},
		EvaluationID:  evaluationID,
	}
}
