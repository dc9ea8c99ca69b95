package advisory_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/NadavGB86/event-pragmetizer-oss/internal/advisory"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/model"
)

var _ = Describe("Tracker", func() {
	var (
		ctx      context.Context
		store    advisory.Store
		reviewer *mockReviewer
		tracker  *advisory.Tracker
		profile  model.UserProfile
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = advisory.NewMemoryStore()
		reviewer = &mockReviewer{}
		tracker = advisory.NewTracker(reviewer, store, time.Second)
		DeferCleanup(func() {
			Expect(tracker.Shutdown(context.Background())).To(Succeed())
		})
	})

	latest := func(sessionID int64) model.Advisory {
		a, err := tracker.Latest(ctx, sessionID)
		Expect(err).NotTo(HaveOccurred())
		return a
	}

	It("stores a ready verdict", func() {
		Expect(tracker.Start(ctx, 1, scored(100), profile)).To(Succeed())
		Expect(tracker.Wait(ctx, 1)).To(Succeed())

		a := latest(1)
		Expect(a.Status).To(Equal(model.AdvisoryStatusReady))
		Expect(a.EvaluationID).To(Equal(int64(100)))
		Expect(a.Verdict.Score).To(Equal(7.0))
	})

	It("reports pending while the review runs", func() {
		release := make(chan struct{})
		reviewer.reviewFn = func(ctx context.Context, _ model.ScoredPlan, _ model.UserProfile) (model.SoftJudgeVerdict, error) {
			<-release
			return model.SoftJudgeVerdict{Score: 5}, nil
		}

		Expect(tracker.Start(ctx, 1, scored(100), profile)).To(Succeed())
		Expect(latest(1).Status).To(Equal(model.AdvisoryStatusPending))

		close(release)
		Expect(tracker.Wait(ctx, 1)).To(Succeed())
		Expect(latest(1).Status).To(Equal(model.AdvisoryStatusReady))
	})

	It("marks a failed review unavailable", func() {
		reviewer.reviewFn = func(context.Context, model.ScoredPlan, model.UserProfile) (model.SoftJudgeVerdict, error) {
			return model.SoftJudgeVerdict{Summary: "Advisory review unavailable."}, errors.New("upstream 500")
		}

		Expect(tracker.Start(ctx, 1, scored(100), profile)).To(Succeed())
		Expect(tracker.Wait(ctx, 1)).To(Succeed())

		a := latest(1)
		Expect(a.Status).To(Equal(model.AdvisoryStatusUnavailable))
		Expect(a.Verdict.Summary).To(Equal("Advisory review unavailable."))
	})

	It("marks a review that times out unavailable", func() {
		tracker = advisory.NewTracker(reviewer, store, 20*time.Millisecond)
		reviewer.reviewFn = func(ctx context.Context, _ model.ScoredPlan, _ model.UserProfile) (model.SoftJudgeVerdict, error) {
			<-ctx.Done()
			return model.SoftJudgeVerdict{}, ctx.Err()
		}

		Expect(tracker.Start(ctx, 1, scored(100), profile)).To(Succeed())
		Expect(tracker.Wait(ctx, 1)).To(Succeed())
		Expect(latest(1).Status).To(Equal(model.AdvisoryStatusUnavailable))
	})

	It("keeps only the latest evaluation when a new one starts", func() {
		firstCancelled := make(chan struct{})
		reviewer.reviewFn = func(ctx context.Context, plan model.ScoredPlan, _ model.UserProfile) (model.SoftJudgeVerdict, error) {
			if plan.EvaluationID == 100 {
				<-ctx.Done()
				close(firstCancelled)
				return model.SoftJudgeVerdict{Summary: "stale"}, nil
			}
			return model.SoftJudgeVerdict{Summary: "fresh"}, nil
		}

		Expect(tracker.Start(ctx, 1, scored(100), profile)).To(Succeed())
		Expect(tracker.Start(ctx, 1, scored(200), profile)).To(Succeed())
		Eventually(firstCancelled).Should(BeClosed())
		Expect(tracker.Wait(ctx, 1)).To(Succeed())

		a := latest(1)
		Expect(a.EvaluationID).To(Equal(int64(200)))
		Expect(a.Verdict.Summary).To(Equal("fresh"))
	})

	It("does not cancel reviews of other sessions", func() {
		Expect(tracker.Start(ctx, 1, scored(100), profile)).To(Succeed())
		Expect(tracker.Start(ctx, 2, scored(200), profile)).To(Succeed())
		Expect(tracker.Wait(ctx, 1)).To(Succeed())
		Expect(tracker.Wait(ctx, 2)).To(Succeed())

		Expect(latest(1).Status).To(Equal(model.AdvisoryStatusReady))
		Expect(latest(2).Status).To(Equal(model.AdvisoryStatusReady))
	})

	It("survives cancellation of the caller's context", func() {
		callerCtx, cancel := context.WithCancel(ctx)
		Expect(tracker.Start(callerCtx, 1, scored(100), profile)).To(Succeed())
		cancel()

		Eventually(func() model.AdvisoryStatus { return latest(1).Status }).
			Should(Equal(model.AdvisoryStatusReady))
	})

	It("clears the slot on cancel", func() {
		reviewer.reviewFn = func(ctx context.Context, _ model.ScoredPlan, _ model.UserProfile) (model.SoftJudgeVerdict, error) {
			<-ctx.Done()
			return model.SoftJudgeVerdict{}, ctx.Err()
		}

		Expect(tracker.Start(ctx, 1, scored(100), profile)).To(Succeed())
		Expect(tracker.Cancel(ctx, 1)).To(Succeed())

		Consistently(func() model.AdvisoryStatus { return latest(1).Status }, 50*time.Millisecond).
			Should(Equal(model.AdvisoryStatusNone))
	})
})
