package model

import (
	"encoding/json"
	"strings"
)

type DateTier string

const (
	DateTierNone      DateTier = "none"
	DateTierProximity DateTier = "proximity"
	DateTierExact     DateTier = "exact"
)

// DateInfo holds exactly one active tier. Fields that do not belong to the
// active tier are dropped on construction and on decode.
type DateInfo struct {
	Tier      DateTier `json:"tier"`
	StartDate string   `json:"start_date,omitempty"`
	EndDate   string   `json:"end_date,omitempty"`
	Hint      string   `json:"hint,omitempty"`
	Earliest  string   `json:"earliest,omitempty"`
	Latest    string   `json:"latest,omitempty"`
}

func NoDates() DateInfo {
	return DateInfo{Tier: DateTierNone}
}

func Proximity(hint, earliest, latest string) DateInfo {
	return DateInfo{Tier: DateTierProximity, Hint: hint, Earliest: earliest, Latest: latest}
}

func ExactDates(start, end string) DateInfo {
	return DateInfo{Tier: DateTierExact, StartDate: start, EndDate: end}
}

func (d DateInfo) IsNone() bool {
	return d.Tier == DateTierNone || d.Tier == ""
}

// HasExactRange reports whether both ends of an exact window are known.
func (d DateInfo) HasExactRange() bool {
	return d.Tier == DateTierExact && d.StartDate != "" && d.EndDate != ""
}

func (d *DateInfo) UnmarshalJSON(b []byte) error {
	type raw DateInfo
	var r raw
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}

	switch DateTier(strings.ToLower(strings.TrimSpace(string(r.Tier)))) {
	case DateTierExact:
		*d = ExactDates(r.StartDate, r.EndDate)
	case DateTierProximity:
		*d = Proximity(r.Hint, r.Earliest, r.Latest)
	default:
		*d = NoDates()
	}
	return nil
}
