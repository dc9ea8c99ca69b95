// Package readiness decides whether a profile carries enough information to
// attempt plan generation.
package readiness

import "github.com/NadavGB86/event-pragmetizer-oss/internal/model"

const (
	MissingBudget    = "Budget"
	MissingVision    = "Event Vision / Wants"
	MissingWho       = "Who's coming"
	MissingDates     = "Dates"
	MissingLogistics = "Logistics"

	NoteReady    = "Ready to generate base plans."
	NoteNotReady = "We need a bit more info to make plans that fit."
)

// Assess is pure and cheap; it runs after every profile change.
func Assess(p model.UserProfile) model.ProfileReadiness {
	critical := []string{}
	optional := []string{}

	if !p.HasConstraint(model.ConstraintTypeBudget) {
		critical = append(critical, MissingBudget)
	}
	if len(p.Goals.Targets) == 0 && len(p.Goals.DeclaredWants) == 0 && len(p.Goals.Visions) == 0 {
		critical = append(critical, MissingVision)
	}

	if p.Needs.Participants.IsDefault() {
		optional = append(optional, MissingWho)
	}
	if p.DateInfo.IsNone() && !p.HasConstraint(model.ConstraintTypeTime) {
		optional = append(optional, MissingDates)
	}
	if !p.HasConstraint(model.ConstraintTypeLogistics) {
		optional = append(optional, MissingLogistics)
	}

	r := model.ProfileReadiness{
		IsReady:         len(critical) == 0,
		MissingCritical: critical,
		MissingOptional: optional,
		Note:            NoteNotReady,
	}
	if r.IsReady {
		r.Note = NoteReady
	}
	return r
}
