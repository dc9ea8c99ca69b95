package model

// ProfileUpdate is a partial UserProfile produced by one extraction turn.
// Every field is independently optional: a nil pointer or nil slice means
// "not mentioned".
type ProfileUpdate struct {
	Needs    *NeedsUpdate `json:"needs,omitempty"`
	Goals    *GoalsUpdate `json:"goals,omitempty"`
	DateInfo *DateInfo    `json:"date_info,omitempty"`
}

type NeedsUpdate struct {
	Participants  *Participants `json:"participants,omitempty"`
	Standards     []string      `json:"standards,omitempty"`
	Habits        []string      `json:"habits,omitempty"`
	Traits        []string      `json:"traits,omitempty"`
	Constraints   []Constraint  `json:"constraints,omitempty"`
	LatentDesires []string      `json:"latent_desires,omitempty"`
}

type GoalsUpdate struct {
	Targets        []Target `json:"targets,omitempty"`
	DeclaredWants  []string `json:"declared_wants,omitempty"`
	Considerations []string `json:"considerations,omitempty"`
	Visions        []Vision `json:"visions,omitempty"`
}

func (u ProfileUpdate) IsEmpty() bool {
	return u.Needs == nil && u.Goals == nil && u.DateInfo == nil
}

// ReadinessSignal is the out-of-band readiness hint an extraction turn may
// carry next to the profile data. It is never merged into the profile.
type ReadinessSignal struct {
	ReadyToGenerate *bool    `json:"ready_to_generate,omitempty"`
	StillNeeded     []string `json:"still_needed,omitempty"`
}

func (s ReadinessSignal) IsEmpty() bool {
	return s.ReadyToGenerate == nil && len(s.StillNeeded) == 0
}
