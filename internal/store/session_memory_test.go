package store_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/NadavGB86/event-pragmetizer-oss/internal/fixtures"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/model"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/store"
)

var _ = Describe("MemorySessionStore", func() {
	var (
		ctx      context.Context
		sessions store.SessionStore
		sess     *model.Session
	)

	BeforeEach(func() {
		ctx = context.Background()
		sessions = store.NewStores(nil).Sessions()
		sess = &model.Session{
			ID: 1001,
			State: model.SessionState{
				Version:   model.SessionStateVersion,
				Timestamp: 1700000000000,
				Data: model.SessionData{
					Phase:          model.PhaseIntake,
					Messages:       []model.ChatMessage{},
					UserProfile:    fixtures.FullProfile(),
					GeneratedPlans: []model.ScoredPlan{},
				},
			},
		}
	})

	It("creates and reads back a session", func() {
		Expect(sessions.Create(ctx, sess)).To(Succeed())
		Expect(sess.CreatedAt).NotTo(BeZero())

		got, err := sessions.Get(ctx, 1001)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.State.Data.UserProfile).To(Equal(fixtures.FullProfile()))
		Expect(got.State.Data.Phase).To(Equal(model.PhaseIntake))
	})

	It("rejects duplicate IDs", func() {
		Expect(sessions.Create(ctx, sess)).To(Succeed())
		Expect(sessions.Create(ctx, sess)).To(MatchError(store.ErrAlreadyExists))
	})

	It("returns ErrNotFound for unknown sessions", func() {
		_, err := sessions.Get(ctx, 9)
		Expect(err).To(MatchError(store.ErrNotFound))

		_, err = sessions.Update(ctx, 9, func(*model.Session) error { return nil })
		Expect(err).To(MatchError(store.ErrNotFound))

		Expect(sessions.Delete(ctx, 9)).To(MatchError(store.ErrNotFound))
	})

	It("isolates callers from the stored copy", func() {
		Expect(sessions.Create(ctx, sess)).To(Succeed())
		sess.State.Data.UserProfile.Goals.DeclaredWants[0] = "mutated"

		got, err := sessions.Get(ctx, 1001)
		Expect(err).NotTo(HaveOccurred())
		got.State.Data.Phase = model.PhaseExecution

		again, err := sessions.Get(ctx, 1001)
		Expect(err).NotTo(HaveOccurred())
		Expect(again.State.Data.UserProfile.Goals.DeclaredWants[0]).To(Equal("beach"))
		Expect(again.State.Data.Phase).To(Equal(model.PhaseIntake))
	})

	It("applies updates atomically", func() {
		Expect(sessions.Create(ctx, sess)).To(Succeed())

		updated, err := sessions.Update(ctx, 1001, func(s *model.Session) error {
			s.State.Data.Phase = model.PhaseMatching
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(updated.State.Data.Phase).To(Equal(model.PhaseMatching))

		boom := errors.New("boom")
		_, err = sessions.Update(ctx, 1001, func(s *model.Session) error {
			s.State.Data.Phase = model.PhaseExecution
			return boom
		})
		Expect(err).To(MatchError(boom))

		got, err := sessions.Get(ctx, 1001)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.State.Data.Phase).To(Equal(model.PhaseMatching))
	})

	It("deletes sessions", func() {
		Expect(sessions.Create(ctx, sess)).To(Succeed())
		Expect(sessions.Delete(ctx, 1001)).To(Succeed())
		_, err := sessions.Get(ctx, 1001)
		Expect(err).To(MatchError(store.ErrNotFound))
	})
})
