package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

type ConstraintType string

const (
	ConstraintTypeBudget     ConstraintType = "budget"
	ConstraintTypeTime       ConstraintType = "time"
	ConstraintTypeLogistics  ConstraintType = "logistics"
	ConstraintTypeGeographic ConstraintType = "geographic"
	ConstraintTypeSocial     ConstraintType = "social"
)

// Singleton reports whether only the latest constraint of this type is kept.
func (t ConstraintType) Singleton() bool {
	switch t {
	case ConstraintTypeBudget, ConstraintTypeTime:
		return true
	default:
		return false
	}
}

func (t *ConstraintType) UnmarshalJSON(b []byte) error {
	s, err := normalizedString(b, "constraint type")
	if err != nil {
		return err
	}
	*t = ConstraintType(s)
	return nil
}

type Flexibility string

const (
	FlexibilityHard       Flexibility = "hard"
	FlexibilitySoft       Flexibility = "soft"
	FlexibilityNegotiable Flexibility = "negotiable"
)

func (f *Flexibility) UnmarshalJSON(b []byte) error {
	s, err := normalizedString(b, "flexibility")
	if err != nil {
		return err
	}
	*f = Flexibility(s)
	return nil
}

// ConstraintValue is free text. Extraction sometimes emits bare numbers
// ("budget": 3000), which are kept as their literal text.
type ConstraintValue string

func (v *ConstraintValue) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = ""
		return nil
	}
	if len(b) == 0 {
		return fmt.Errorf("constraint value empty")
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = ConstraintValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("constraint value must be a string or number: %w", err)
	}
	*v = ConstraintValue(n.String())
	return nil
}

type Constraint struct {
	Type        ConstraintType  `json:"type"`
	Value       ConstraintValue `json:"value"`
	Flexibility Flexibility     `json:"flexibility"`
	Notes       string          `json:"notes,omitempty"`
}

type Participants struct {
	Adults      int    `json:"adults"`
	Children    int    `json:"children"`
	RoomCount   int    `json:"room_count"`
	Description string `json:"description"`
}

const DefaultParticipantsDescription = "Single Traveler"

// DefaultParticipants is the headcount every session starts with.
func DefaultParticipants() Participants {
	return Participants{Adults: 1, Children: 0, RoomCount: 1, Description: DefaultParticipantsDescription}
}

// IsDefault ignores room count; only the people and the description matter.
func (p Participants) IsDefault() bool {
	return p.Adults == 1 && p.Children == 0 && p.Description == DefaultParticipantsDescription
}

type Needs struct {
	Participants  Participants `json:"participants"`
	Standards     []string     `json:"standards"`
	Habits        []string     `json:"habits"`
	Traits        []string     `json:"traits"`
	Constraints   []Constraint `json:"constraints"`
	LatentDesires []string     `json:"latent_desires"`
}

type TargetPriority string

const (
	TargetPriorityMustHave   TargetPriority = "must_have"
	TargetPriorityStrongWant TargetPriority = "strong_want"
	TargetPriorityNiceToHave TargetPriority = "nice_to_have"
)

func (p *TargetPriority) UnmarshalJSON(b []byte) error {
	s, err := normalizedString(b, "priority")
	if err != nil {
		return err
	}
	*p = TargetPriority(s)
	return nil
}

type TargetCategory string

const (
	TargetCategoryExperience TargetCategory = "experience"
	TargetCategoryLogistics  TargetCategory = "logistics"
	TargetCategoryEmotional  TargetCategory = "emotional"
	TargetCategorySocial     TargetCategory = "social"
)

func (c *TargetCategory) UnmarshalJSON(b []byte) error {
	s, err := normalizedString(b, "category")
	if err != nil {
		return err
	}
	*c = TargetCategory(s)
	return nil
}

type Target struct {
	Description string         `json:"description"`
	Priority    TargetPriority `json:"priority"`
	Category    TargetCategory `json:"category"`
}

type ReferenceType string

const (
	ReferenceTypeText  ReferenceType = "text"
	ReferenceTypeImage ReferenceType = "image"
	ReferenceTypeLink  ReferenceType = "link"
)

func (r *ReferenceType) UnmarshalJSON(b []byte) error {
	s, err := normalizedString(b, "reference type")
	if err != nil {
		return err
	}
	*r = ReferenceType(s)
	return nil
}

type Vision struct {
	Description   string        `json:"description"`
	ReferenceType ReferenceType `json:"reference_type"`
	Content       string        `json:"content,omitempty"`
}

type Goals struct {
	Targets        []Target `json:"targets"`
	DeclaredWants  []string `json:"declared_wants"`
	Considerations []string `json:"considerations"`
	Visions        []Vision `json:"visions"`
}

// UserProfile is the accumulated state of one planning session.
// It is only ever changed by merging a ProfileUpdate into it.
type UserProfile struct {
	Needs    Needs    `json:"needs"`
	Goals    Goals    `json:"goals"`
	DateInfo DateInfo `json:"date_info"`
}

// ConstraintOf returns the first constraint of the given type.
func (p UserProfile) ConstraintOf(t ConstraintType) (Constraint, bool) {
	for _, c := range p.Needs.Constraints {
		if c.Type == t {
			return c, true
		}
	}
	return Constraint{}, false
}

func (p UserProfile) HasConstraint(t ConstraintType) bool {
	_, ok := p.ConstraintOf(t)
	return ok
}

func normalizedString(b []byte, field string) (string, error) {
	if string(b) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return "", fmt.Errorf("%s must be a string: %w", field, err)
	}
	return strings.ToLower(strings.TrimSpace(s)), nil
}
