package readiness_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/NadavGB86/event-pragmetizer-oss/internal/fixtures"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/model"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/readiness"
)

var _ = Describe("Assess", func() {
	Context("with an empty profile", func() {
		It("is never ready", func() {
			r := readiness.Assess(fixtures.EmptyProfile())
			Expect(r.IsReady).To(BeFalse())
			Expect(r.MissingCritical).To(Equal([]string{readiness.MissingBudget, readiness.MissingVision}))
			Expect(r.Note).To(Equal(readiness.NoteNotReady))
		})

		It("reports every optional signal", func() {
			r := readiness.Assess(fixtures.EmptyProfile())
			Expect(r.MissingOptional).To(Equal([]string{
				readiness.MissingWho, readiness.MissingDates, readiness.MissingLogistics,
			}))
		})
	})

	It("becomes ready with one budget constraint and one declared want", func() {
		p := fixtures.EmptyProfile()
		p.Needs.Constraints = append(p.Needs.Constraints, model.Constraint{
			Type: model.ConstraintTypeBudget, Value: "2000 EUR", Flexibility: model.FlexibilitySoft,
		})
		p.Goals.DeclaredWants = append(p.Goals.DeclaredWants, "museums")

		r := readiness.Assess(p)
		Expect(r.IsReady).To(BeTrue())
		Expect(r.MissingCritical).To(BeEmpty())
		Expect(r.Note).To(Equal(readiness.NoteReady))
	})

	DescribeTable("accepts any one goal kind as a vision",
		func(mutate func(*model.UserProfile)) {
			p := fixtures.EmptyProfile()
			p.Needs.Constraints = []model.Constraint{{Type: model.ConstraintTypeBudget, Value: "$500"}}
			mutate(&p)
			Expect(readiness.Assess(p).IsReady).To(BeTrue())
		},
		Entry("target", func(p *model.UserProfile) {
			p.Goals.Targets = []model.Target{{Description: "See the northern lights"}}
		}),
		Entry("declared want", func(p *model.UserProfile) {
			p.Goals.DeclaredWants = []string{"skiing"}
		}),
		Entry("vision", func(p *model.UserProfile) {
			p.Goals.Visions = []model.Vision{{Description: "Cabin in the snow"}}
		}),
	)

	It("still blocks a budget-only profile without goals", func() {
		p := fixtures.EmptyProfile()
		p.Needs.Constraints = []model.Constraint{{Type: model.ConstraintTypeBudget, Value: "$500"}}
		r := readiness.Assess(p)
		Expect(r.IsReady).To(BeFalse())
		Expect(r.MissingCritical).To(ConsistOf(readiness.MissingVision))
	})

	Describe("optional signals", func() {
		It("clears 'Who's coming' once participants move off the default", func() {
			p := fixtures.EmptyProfile()
			p.Needs.Participants.Adults = 2
			Expect(readiness.Assess(p).MissingOptional).NotTo(ContainElement(readiness.MissingWho))
		})

		It("ignores room count when comparing to the default", func() {
			p := fixtures.EmptyProfile()
			p.Needs.Participants.RoomCount = 3
			Expect(readiness.Assess(p).MissingOptional).To(ContainElement(readiness.MissingWho))
		})

		It("clears 'Dates' for a proximity date", func() {
			p := fixtures.EmptyProfile()
			p.DateInfo = model.Proximity("sometime in April", "", "")
			Expect(readiness.Assess(p).MissingOptional).NotTo(ContainElement(readiness.MissingDates))
		})

		It("clears 'Dates' for a time constraint", func() {
			p := fixtures.EmptyProfile()
			p.Needs.Constraints = []model.Constraint{{Type: model.ConstraintTypeTime, Value: "3 nights"}}
			Expect(readiness.Assess(p).MissingOptional).NotTo(ContainElement(readiness.MissingDates))
		})

		It("clears everything for a full profile", func() {
			r := readiness.Assess(fixtures.FullProfile())
			Expect(r.IsReady).To(BeTrue())
			Expect(r.MissingOptional).To(BeEmpty())
		})
	})
})
