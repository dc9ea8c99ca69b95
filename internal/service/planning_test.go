package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/NadavGB86/event-pragmetizer-oss/common/logger"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/brain"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/fixtures"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/model"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/readiness"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/service"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/store"
)

func updateFrom(p model.UserProfile) model.ProfileUpdate {
	participants := p.Needs.Participants
	date := p.DateInfo
	return model.ProfileUpdate{
		Needs: &model.NeedsUpdate{
			Participants: &participants,
			Constraints:  p.Needs.Constraints,
			Traits:       p.Needs.Traits,
		},
		Goals: &model.GoalsUpdate{
			DeclaredWants: p.Goals.DeclaredWants,
			Visions:       p.Goals.Visions,
		},
		DateInfo: &date,
	}
}

func budgetUpdate(value string) *model.ProfileUpdate {
	return &model.ProfileUpdate{Needs: &model.NeedsUpdate{
		Constraints: []model.Constraint{{Type: model.ConstraintTypeBudget, Value: model.ConstraintValue(value), Flexibility: model.FlexibilityHard}},
	}}
}

var _ = Describe("PlanningService", func() {
	var (
		ctx       context.Context
		sessions  store.SessionStore
		analyst   *mockAnalyst
		generator *mockGenerator
		refiner   *mockRefiner
		tracker   *mockTracker
		svc       service.PlanningService
	)

	BeforeEach(func() {
		ctx = context.Background()
		sessions = store.NewMemorySessionStore()
		analyst = &mockAnalyst{}
		generator = &mockGenerator{}
		refiner = &mockRefiner{}
		tracker = &mockTracker{}
		svc = service.NewPlanningService(service.PlanningDeps{
			Sessions:  sessions,
			Analyst:   analyst,
			Generator: generator,
			Refiner:   refiner,
			Advisory:  tracker,
			Origin:    "TLV",
			NewID:     sequentialIDs(),
		})
	})

	newSession := func() *model.Session {
		sess, err := svc.Create(ctx)
		Expect(err).NotTo(HaveOccurred())
		return sess
	}

	readySession := func(p model.UserProfile) *model.Session {
		sess := newSession()
		_, err := svc.UpdateProfile(ctx, sess.ID, updateFrom(p))
		Expect(err).NotTo(HaveOccurred())
		return sess
	}

	generatedPlans := func() []model.ScoredPlan {
		return []model.ScoredPlan{
			{CandidatePlan: fixtures.ValidPlan()},
			{CandidatePlan: fixtures.OverBudgetPlan()},
		}
	}

	Describe("Create", func() {
		It("starts an intake session with the default profile", func() {
			sess := newSession()

			Expect(sess.State.Version).To(Equal(model.SessionStateVersion))
			Expect(sess.State.Data.Phase).To(Equal(model.PhaseIntake))
			Expect(sess.State.Data.UserProfile.Needs.Participants).To(Equal(model.DefaultParticipants()))
			Expect(sess.State.Data.UserProfile.DateInfo.Tier).To(Equal(model.DateTierNone))
			Expect(sess.State.Data.Messages).To(BeEmpty())
		})
	})

	Describe("SendMessage", func() {
		It("records both turns and merges the extracted profile", func() {
			sess := newSession()
			analyst.replyFn = func(_ context.Context, history []model.ChatMessage, _ model.UserProfile, _ brain.GuidanceMode) brain.AnalystTurn {
				Expect(history[len(history)-1].Content).To(Equal("We have $3,000 USD"))
				return brain.AnalystTurn{Text: "Great, noted the budget.", Update: budgetUpdate("$3,000 USD")}
			}

			res, err := svc.SendMessage(ctx, sess.ID, "  We have $3,000 USD ", "")

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Reply.Role).To(Equal(model.MessageRoleModel))
			Expect(res.Reply.Content).To(Equal("Great, noted the budget."))
			Expect(res.Profile.Needs.Constraints).To(HaveLen(1))
			Expect(res.Readiness.MissingCritical).NotTo(ContainElement(readiness.MissingBudget))

			stored, err := svc.Get(ctx, sess.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.State.Data.Messages).To(HaveLen(2))
			Expect(stored.State.Data.Messages[0].Role).To(Equal(model.MessageRoleUser))
			Expect(stored.State.Data.Messages[1].Role).To(Equal(model.MessageRoleModel))
		})

		It("records the connection error text without touching the profile", func() {
			sess := newSession()
			analyst.replyFn = func(context.Context, []model.ChatMessage, model.UserProfile, brain.GuidanceMode) brain.AnalystTurn {
				return brain.AnalystTurn{Text: brain.ConnectionErrorText, Failed: true}
			}

			res, err := svc.SendMessage(ctx, sess.ID, "hello", "")

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Reply.Content).To(Equal(brain.ConnectionErrorText))
			Expect(res.Profile.Needs.Constraints).To(BeEmpty())
			Expect(res.Readiness.IsReady).To(BeFalse())
		})

		It("rejects empty messages", func() {
			sess := newSession()
			_, err := svc.SendMessage(ctx, sess.ID, "   ", "")
			Expect(err).To(MatchError(service.ErrEmptyMessage))
		})

		It("returns ErrNotFound for unknown sessions", func() {
			_, err := svc.SendMessage(ctx, 999, "hi", "")
			Expect(err).To(MatchError(store.ErrNotFound))
		})

		It("applies overlapping turns in arrival order", func() {
			sess := newSession()
			release := make(chan struct{})
			firstCalled := make(chan struct{})
			secondCalled := make(chan struct{})

			analyst.replyFn = func(_ context.Context, history []model.ChatMessage, _ model.UserProfile, _ brain.GuidanceMode) brain.AnalystTurn {
				last := history[len(history)-1].Content
				if strings.HasPrefix(last, "first") {
					close(firstCalled)
					<-release
					return brain.AnalystTurn{Text: "reply 1", Update: budgetUpdate("1000 USD")}
				}
				close(secondCalled)
				return brain.AnalystTurn{Text: "reply 2", Update: budgetUpdate("2000 USD")}
			}

			var wg sync.WaitGroup
			wg.Add(2)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				_, err := svc.SendMessage(ctx, sess.ID, "first: 1000 USD", "")
				Expect(err).NotTo(HaveOccurred())
			}()
			Eventually(firstCalled).Should(BeClosed())

			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				_, err := svc.SendMessage(ctx, sess.ID, "second: 2000 USD", "")
				Expect(err).NotTo(HaveOccurred())
			}()

			Eventually(secondCalled).Should(BeClosed())
			close(release)
			wg.Wait()

			stored, err := svc.Get(ctx, sess.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.State.Data.UserProfile.Needs.Constraints).To(HaveLen(1))
			Expect(string(stored.State.Data.UserProfile.Needs.Constraints[0].Value)).To(Equal("2000 USD"))

			var contents []string
			for _, m := range stored.State.Data.Messages {
				contents = append(contents, m.Content)
			}
			Expect(contents).To(Equal([]string{"first: 1000 USD", "reply 1", "second: 2000 USD", "reply 2"}))
		})

		It("keeps the session usable after a turn panics", func() {
			sess := newSession()
			analyst.replyFn = func(context.Context, []model.ChatMessage, model.UserProfile, brain.GuidanceMode) brain.AnalystTurn {
				panic("analyst exploded")
			}
			Expect(func() { _, _ = svc.SendMessage(ctx, sess.ID, "hello", "") }).To(Panic())

			analyst.replyFn = func(context.Context, []model.ChatMessage, model.UserProfile, brain.GuidanceMode) brain.AnalystTurn {
				return brain.AnalystTurn{Text: "Back again.", Update: budgetUpdate("500 USD")}
			}
			turnCtx, cancel := context.WithTimeout(ctx, time.Second)
			defer cancel()

			res, err := svc.SendMessage(turnCtx, sess.ID, "hello again", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Reply.Content).To(Equal("Back again."))

			_, err = svc.UpdateProfile(turnCtx, sess.ID, *budgetUpdate("700 USD"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("tags the turn's log fields with the session phase", func() {
			sess := newSession()
			var fields logger.LogFields
			analyst.replyFn = func(ctx context.Context, _ []model.ChatMessage, _ model.UserProfile, _ brain.GuidanceMode) brain.AnalystTurn {
				fields = logger.GetLogFields(ctx)
				return brain.AnalystTurn{Text: "ok"}
			}

			_, err := svc.SendMessage(ctx, sess.ID, "hi", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(*fields.SessionID).To(Equal(sess.ID))
			Expect(*fields.Phase).To(Equal(string(model.PhaseIntake)))
		})
	})

	Describe("GeneratePlans", func() {
		It("blocks with the missing critical items when not ready", func() {
			sess := newSession()

			_, err := svc.GeneratePlans(ctx, sess.ID)

			Expect(err).To(MatchError(service.ErrNotReady))
			var notReady *service.NotReadyError
			Expect(errors.As(err, &notReady)).To(BeTrue())
			Expect(notReady.Readiness.MissingCritical).To(ContainElements(readiness.MissingBudget, readiness.MissingVision))
			Expect(generator.callCount).To(Equal(0))
		})

		It("stores plans with fresh evaluation IDs and moves to matching", func() {
			sess := readySession(fixtures.MinimalReadyProfile())
			generator.generateFn = func(context.Context, model.UserProfile) brain.Generation {
				return brain.Generation{Plans: generatedPlans()}
			}

			res, err := svc.GeneratePlans(ctx, sess.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Plans).To(HaveLen(2))
			Expect(res.Plans[0].EvaluationID).NotTo(BeZero())
			Expect(res.Plans[1].EvaluationID).NotTo(Equal(res.Plans[0].EvaluationID))
			Expect(res.DatesMissing).To(BeTrue())
			Expect(tracker.canceled).To(ConsistOf(sess.ID))

			stored, err := svc.Get(ctx, sess.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.State.Data.Phase).To(Equal(model.PhaseMatching))
			Expect(stored.State.Data.GeneratedPlans).To(Equal(res.Plans))
		})

		It("does not flag missing dates when the profile has them", func() {
			sess := readySession(fixtures.FullProfile())

			res, err := svc.GeneratePlans(ctx, sess.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(res.DatesMissing).To(BeFalse())
			Expect(res.Plans).To(BeEmpty())
		})
	})

	Describe("SelectPlan and RefinePlan", func() {
		var (
			sess  *model.Session
			plans []model.ScoredPlan
		)

		BeforeEach(func() {
			sess = readySession(fixtures.MinimalReadyProfile())
			generator.generateFn = func(context.Context, model.UserProfile) brain.Generation {
				return brain.Generation{Plans: generatedPlans()}
			}
			res, err := svc.GeneratePlans(ctx, sess.ID)
			Expect(err).NotTo(HaveOccurred())
			plans = res.Plans
		})

		It("selects a generated plan and starts its advisory", func() {
			selected, err := svc.SelectPlan(ctx, sess.ID, plans[1].EvaluationID)

			Expect(err).NotTo(HaveOccurred())
			Expect(selected.ID).To(Equal("plan-over"))
			Expect(tracker.started).To(HaveLen(1))
			Expect(tracker.started[0].EvaluationID).To(Equal(plans[1].EvaluationID))

			stored, err := svc.Get(ctx, sess.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.State.Data.Phase).To(Equal(model.PhaseExecution))
			Expect(stored.State.Data.SelectedPlan.EvaluationID).To(Equal(plans[1].EvaluationID))
		})

		It("rejects unknown evaluation IDs", func() {
			_, err := svc.SelectPlan(ctx, sess.ID, 424242)
			Expect(err).To(MatchError(service.ErrPlanNotFound))
		})

		It("requires a selected plan before refining", func() {
			_, err := svc.RefinePlan(ctx, sess.ID, "cheaper")
			Expect(err).To(MatchError(service.ErrNoSelectedPlan))
		})

		It("replaces the selected plan with a new evaluation", func() {
			_, err := svc.SelectPlan(ctx, sess.ID, plans[0].EvaluationID)
			Expect(err).NotTo(HaveOccurred())

			refiner.refineFn = func(_ context.Context, current model.ScoredPlan, instruction string, _ model.UserProfile) (model.ScoredPlan, error) {
				Expect(instruction).To(Equal("Add a spa day"))
				out := current
				out.Title = "Barcelona Spa"
				out.EvaluationID = 0
				return out, nil
			}

			refined, err := svc.RefinePlan(ctx, sess.ID, "Add a spa day")

			Expect(err).NotTo(HaveOccurred())
			Expect(refined.Title).To(Equal("Barcelona Spa"))
			Expect(refined.ID).To(Equal(plans[0].ID))
			Expect(refined.EvaluationID).NotTo(Equal(plans[0].EvaluationID))
			Expect(tracker.started).To(HaveLen(2))
			Expect(tracker.started[1].EvaluationID).To(Equal(refined.EvaluationID))
		})

		It("keeps the selected plan when refinement fails", func() {
			_, err := svc.SelectPlan(ctx, sess.ID, plans[0].EvaluationID)
			Expect(err).NotTo(HaveOccurred())
			refiner.refineFn = func(context.Context, model.ScoredPlan, string, model.UserProfile) (model.ScoredPlan, error) {
				return model.ScoredPlan{}, errors.New("model unavailable")
			}

			_, err = svc.RefinePlan(ctx, sess.ID, "cheaper")
			Expect(err).To(HaveOccurred())

			stored, err := svc.Get(ctx, sess.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.State.Data.SelectedPlan.EvaluationID).To(Equal(plans[0].EvaluationID))
		})
	})

	Describe("Delete", func() {
		It("removes the session and clears its advisory", func() {
			sess := newSession()

			Expect(svc.Delete(ctx, sess.ID)).To(Succeed())

			_, err := svc.Get(ctx, sess.ID)
			Expect(err).To(MatchError(store.ErrNotFound))
			Expect(tracker.canceled).To(ContainElement(sess.ID))
		})

		It("returns ErrNotFound for unknown sessions", func() {
			Expect(svc.Delete(ctx, 424242)).To(MatchError(store.ErrNotFound))
			Expect(tracker.canceled).To(BeEmpty())
		})
	})

	Describe("Export and Import", func() {
		It("round-trips a session into a new one", func() {
			sess := readySession(fixtures.FullProfile())

			state, err := svc.Export(ctx, sess.ID)
			Expect(err).NotTo(HaveOccurred())
			raw, err := json.Marshal(state)
			Expect(err).NotTo(HaveOccurred())

			imported, err := svc.Import(ctx, raw)

			Expect(err).NotTo(HaveOccurred())
			Expect(imported.ID).NotTo(Equal(sess.ID))
			Expect(imported.State.Data.UserProfile.DateInfo).To(Equal(fixtures.FullProfile().DateInfo))
			Expect(imported.State.Data.UserProfile.Goals.DeclaredWants).To(Equal(fixtures.FullProfile().Goals.DeclaredWants))
		})

		It("fills defaults and evaluation IDs for older envelopes", func() {
			raw := []byte(`{"version":1,"timestamp":1,"data":{"phase":"MATCHING","messages":[],
				"userProfile":{"needs":{"constraints":[]},"goals":{}},
				"generatedPlans":[{"id":"p1","title":"Old plan","components":[],"total_estimated_budget":100}],
				"selectedPlan":null}}`)

			imported, err := svc.Import(ctx, raw)

			Expect(err).NotTo(HaveOccurred())
			Expect(imported.State.Data.UserProfile.DateInfo.Tier).To(Equal(model.DateTierNone))
			Expect(imported.State.Data.UserProfile.Goals.DeclaredWants).NotTo(BeNil())
			Expect(imported.State.Data.GeneratedPlans[0].EvaluationID).NotTo(BeZero())
		})

		DescribeTable("rejects invalid envelopes",
			func(raw string, want error, detail string) {
				_, err := svc.Import(ctx, []byte(raw))
				Expect(err).To(MatchError(want))
				Expect(err.Error()).To(ContainSubstring(detail))
			},
			Entry("not JSON", `nope`, service.ErrInvalidState, "invalid"),
			Entry("no version", `{"data":{}}`, service.ErrInvalidState, "missing version or data"),
			Entry("future version", `{"version":2,"data":{}}`, service.ErrUnsupportedVersion, "2"),
			Entry("missing keys", `{"version":1,"data":{"phase":"INTAKE"}}`, service.ErrInvalidState, "messages, userProfile"),
			Entry("unknown phase", `{"version":1,"data":{"phase":"DONE","messages":[],"userProfile":{}}}`, service.ErrInvalidState, "DONE"),
		)
	})

	Describe("Evaluate", func() {
		It("scores caller-supplied plans against the profile", func() {
			plan := fixtures.ValidPlan()
			plan.DisplayCurrency = nil

			res := svc.Evaluate(ctx, fixtures.MinimalReadyProfile(), []model.CandidatePlan{plan, fixtures.InsanePlan()})

			Expect(res.Request.HardEnvelope.Origin).To(Equal("TLV"))
			Expect(res.Plans).To(HaveLen(2))
			Expect(res.Plans[0].DisplayCurrency.Code).To(Equal("USD"))
			Expect(res.Plans[0].ComputedScore.IsValidHard).To(BeTrue())
			Expect(res.Plans[0].ComputedScore.OverallScore).To(BeNumerically(">=", 60))
			Expect(res.Plans[1].ComputedScore.OverallScore).To(Equal(20.0))
		})
	})
})
