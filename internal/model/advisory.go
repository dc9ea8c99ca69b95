package model

import "time"

// SoftJudgeVerdict is an advisory review. It never gates anything.
type SoftJudgeVerdict struct {
	Score          float64  `json:"score"`
	Summary        string   `json:"summary"`
	Suggestions    []string `json:"suggestions"`
	DateAlignment  string   `json:"date_alignment,omitempty"`
	GroundingNotes []string `json:"grounding_notes"`
}

type AdvisoryStatus string

const (
	AdvisoryStatusNone        AdvisoryStatus = "none"
	AdvisoryStatusPending     AdvisoryStatus = "pending"
	AdvisoryStatusReady       AdvisoryStatus = "ready"
	AdvisoryStatusUnavailable AdvisoryStatus = "unavailable"
)

// Advisory is the single latest advisory slot of a session.
type Advisory struct {
	SessionID    int64             `json:"session_id,string"`
	EvaluationID int64             `json:"evaluation_id,string"`
	Status       AdvisoryStatus    `json:"status"`
	Verdict      *SoftJudgeVerdict `json:"verdict,omitempty"`
	UpdatedAt    time.Time         `json:"updated_at"`
}
