package model

import "time"

type Phase string

const (
	PhaseIntake         Phase = "INTAKE"
	PhaseSynthesis      Phase = "SYNTHESIS"
	PhaseMatching       Phase = "MATCHING"
	PhaseExecution      Phase = "EXECUTION"
	PhaseFinalExecution Phase = "FINAL_EXECUTION"
)

func (p Phase) Valid() bool {
	switch p {
	case PhaseIntake, PhaseSynthesis, PhaseMatching, PhaseExecution, PhaseFinalExecution:
		return true
	default:
		return false
	}
}

type MessageRole string

const (
	MessageRoleUser   MessageRole = "user"
	MessageRoleModel  MessageRole = "model"
	MessageRoleSystem MessageRole = "system"
)

type ChatMessage struct {
	ID         string      `json:"id"`
	Role       MessageRole `json:"role"`
	Content    string      `json:"content"`
	Timestamp  int64       `json:"timestamp"`
	IsThinking bool        `json:"isThinking,omitempty"`
}

// SessionData is everything a session needs to resume.
type SessionData struct {
	Phase          Phase         `json:"phase"`
	Messages       []ChatMessage `json:"messages"`
	UserProfile    UserProfile   `json:"userProfile"`
	GeneratedPlans []ScoredPlan  `json:"generatedPlans"`
	SelectedPlan   *ScoredPlan   `json:"selectedPlan"`
}

const SessionStateVersion = 1

// SessionState is the versioned persistence envelope.
type SessionState struct {
	Version   int         `json:"version"`
	Timestamp int64       `json:"timestamp"`
	Data      SessionData `json:"data"`
}

type Session struct {
	ID        int64        `json:"id,string"`
	State     SessionState `json:"state"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
