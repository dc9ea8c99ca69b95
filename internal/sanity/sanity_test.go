package sanity_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/NadavGB86/event-pragmetizer-oss/internal/fixtures"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/model"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/sanity"
)

func planWith(code string, total float64, comps ...model.PlanComponent) model.CandidatePlan {
	p := fixtures.ValidPlan()
	p.Components = comps
	p.TotalEstimatedBudget = total
	if code == "" {
		p.DisplayCurrency = nil
	} else {
		p.DisplayCurrency = &model.DisplayCurrency{Code: code}
	}
	return p
}

var _ = Describe("Check", func() {
	It("passes a plan whose costs clear every floor", func() {
		r := sanity.Check(fixtures.ValidPlan())
		Expect(r.IsSane).To(BeTrue())
		Expect(r.Violations).To(BeEmpty())
	})

	It("passes a plan without flights when every cost clears its floor", func() {
		r := sanity.Check(planWith("USD", 700, fixtures.HotelComponent(), fixtures.ActivityComponent()))
		Expect(r.IsSane).To(BeTrue())
	})

	It("flags a flight far below the floor", func() {
		r := sanity.Check(planWith("USD", 900, fixtures.CheapFlightComponent(), fixtures.HotelComponent()))
		Expect(r.IsSane).To(BeFalse())
		Expect(r.Violations).To(ConsistOf("Flight cost (50 USD) is suspiciously low (min ~150 USD)"))
	})

	It("flags a cheap stay", func() {
		r := sanity.Check(planWith("USD", 900, fixtures.FlightComponent(), fixtures.CheapHotelComponent()))
		Expect(r.Violations).To(ConsistOf("Accommodation (10 USD) is suspicious (min ~40 USD)"))
	})

	It("reports component violations before the total check, in component order", func() {
		r := sanity.Check(fixtures.InsanePlan())
		Expect(r.Violations).To(Equal([]string{
			"Flight cost (50 USD) is suspiciously low (min ~150 USD)",
			"Accommodation (10 USD) is suspicious (min ~40 USD)",
			"Total budget (60 USD) is impossible for a trip with flights.",
		}))
	})

	It("checks the total only when a flight is present", func() {
		r := sanity.Check(planWith("USD", 100, fixtures.ActivityComponent()))
		Expect(r.IsSane).To(BeTrue())
	})

	It("uses the flight classifier for the total check, not a bare air-travel word", func() {
		balloon := fixtures.ActivityComponent()
		balloon.Title = "Hot air balloon ride"
		balloon.CostEstimate = 150

		r := sanity.Check(planWith("USD", 150, balloon))

		Expect(sanity.IsFlight(balloon)).To(BeFalse())
		Expect(r.IsSane).To(BeTrue())
		Expect(r.Violations).To(BeEmpty())
	})

	Describe("currency scaling", func() {
		It("scales floors into shekels", func() {
			flight := fixtures.FlightComponent()
			flight.CostEstimate = 500
			r := sanity.Check(planWith("ILS", 5000, flight))
			Expect(r.Violations).To(ConsistOf("Flight cost (500 ILS) is suspiciously low (min ~570 ILS)"))
		})

		It("rounds scaled floors", func() {
			Expect(sanity.Floor(150, "EUR")).To(Equal(138.0))
			Expect(sanity.Floor(40, "GBP")).To(Equal(32.0))
			Expect(sanity.Floor(200, "NIS")).To(Equal(760.0))
		})

		It("treats a missing display currency as dollars", func() {
			r := sanity.Check(planWith("", 900, fixtures.CheapFlightComponent(), fixtures.HotelComponent()))
			Expect(r.Violations[0]).To(ContainSubstring("USD"))
		})

		It("leaves unknown currencies unscaled", func() {
			flight := fixtures.FlightComponent()
			flight.CostEstimate = 149.5
			r := sanity.Check(planWith("CHF", 1000, flight))
			Expect(r.Violations).To(ConsistOf("Flight cost (149.5 CHF) is suspiciously low (min ~150 CHF)"))
		})
	})
})

var _ = Describe("IsFlight", func() {
	DescribeTable("classifies by type and title",
		func(typ model.ComponentType, title string, expected bool) {
			Expect(sanity.IsFlight(model.PlanComponent{Type: typ, Title: title})).To(Equal(expected))
		},
		Entry("declared flight", model.ComponentTypeFlight, "BCN outbound", true),
		Entry("transport to the airport code", model.ComponentTypeTransport, "TLV to BCN", true),
		Entry("transport by plane", model.ComponentTypeTransport, "Plane tickets", true),
		Entry("transport via Ben Gurion", model.ComponentTypeTransport, "Ben Gurion departure", true),
		Entry("transport by train", model.ComponentTypeTransport, "High-speed train to Madrid", false),
		Entry("any type titled flight", model.ComponentTypeActivity, "Helicopter flight over the bay", true),
		Entry("activity mentioning air", model.ComponentTypeActivity, "Open-air concert", false),
	)
})

var _ = Describe("IsAccommodation", func() {
	DescribeTable("classifies by type and title",
		func(typ model.ComponentType, title string, expected bool) {
			Expect(sanity.IsAccommodation(model.PlanComponent{Type: typ, Title: title})).To(Equal(expected))
		},
		Entry("declared accommodation", model.ComponentTypeAccommodation, "Casa Bonay", true),
		Entry("Airbnb logistics item", model.ComponentTypeLogistics, "Airbnb cleaning fee", true),
		Entry("hostel booking", model.ComponentTypeActivity, "Hostel pub crawl", true),
		Entry("plain dinner", model.ComponentTypeDining, "Tapas night", false),
	)
})
