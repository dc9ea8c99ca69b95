package dto

import (
	"time"

	"github.com/NadavGB86/event-pragmetizer-oss/internal/model"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/service"
)

type SessionResponse struct {
	ID        int64              `json:"id,string"`
	State     model.SessionState `json:"state"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func ToSessionResponse(s *model.Session) *SessionResponse {
	return &SessionResponse{
		ID:        s.ID,
		State:     s.State,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required,max=8000"`
	Mode    string `json:"mode,omitempty" binding:"omitempty,oneof=quick guided deep"`
}

type MessageResponse struct {
	Reply     model.ChatMessage      `json:"reply"`
	Profile   model.UserProfile      `json:"profile"`
	Readiness model.ProfileReadiness `json:"readiness"`
	Signal    *model.ReadinessSignal `json:"signal,omitempty"`
}

func ToMessageResponse(r *service.MessageResult) *MessageResponse {
	return &MessageResponse{
		Reply:     r.Reply,
		Profile:   r.Profile,
		Readiness: r.Readiness,
		Signal:    r.Signal,
	}
}

type ProfileResponse struct {
	Profile   model.UserProfile      `json:"profile"`
	Readiness model.ProfileReadiness `json:"readiness"`
}

func ToProfileResponse(r *service.ProfileResult) *ProfileResponse {
	return &ProfileResponse{Profile: r.Profile, Readiness: r.Readiness}
}

// ProfileUpdateRequest is a partial profile; every field may be omitted.
type ProfileUpdateRequest struct {
	model.ProfileUpdate
}
