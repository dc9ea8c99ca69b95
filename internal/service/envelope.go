package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/NadavGB86/event-pragmetizer-oss/internal/model"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/profile"
)

var requiredStateKeys = []string{"phase", "messages", "userProfile"}

// Export returns the session as a versioned envelope stamped with the
// export time.
func (s *planningService) Export(ctx context.Context, sessionID int64) (model.SessionState, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return model.SessionState{}, err
	}
	state := sess.State
	state.Version = model.SessionStateVersion
	state.Timestamp = s.now().UnixMilli()
	return state, nil
}

// Import validates an exported envelope and stores it as a new session.
func (s *planningService) Import(ctx context.Context, raw []byte) (*model.Session, error) {
	state, err := ParseSessionState(raw)
	if err != nil {
		return nil, err
	}

	// Envelopes written by older clients carry no evaluation IDs.
	for i := range state.Data.GeneratedPlans {
		if state.Data.GeneratedPlans[i].EvaluationID == 0 {
			state.Data.GeneratedPlans[i].EvaluationID = s.newID()
		}
	}
	if sp := state.Data.SelectedPlan; sp != nil && sp.EvaluationID == 0 {
		sp.EvaluationID = s.newID()
	}

	sess := &model.Session{ID: s.newID(), State: state}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("creating imported session: %w", err)
	}

	slog.InfoContext(ctx, "planning session imported",
		"session_id", sess.ID,
		"phase", state.Data.Phase,
		"messages", len(state.Data.Messages))
	return sess, nil
}

// ParseSessionState decodes and validates an exported envelope. Older
// envelopes without date_info or list fields are filled with defaults.
func ParseSessionState(raw []byte) (model.SessionState, error) {
	var header struct {
		Version int                        `json:"version"`
		Data    map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &header); err != nil {
		return model.SessionState{}, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if header.Version == 0 || header.Data == nil {
		return model.SessionState{}, fmt.Errorf("%w: missing version or data", ErrInvalidState)
	}
	if header.Version != model.SessionStateVersion {
		return model.SessionState{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, header.Version)
	}

	var missing []string
	for _, k := range requiredStateKeys {
		if _, ok := header.Data[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return model.SessionState{}, fmt.Errorf("%w: missing %s", ErrInvalidState, strings.Join(missing, ", "))
	}

	var state model.SessionState
	if err := json.Unmarshal(raw, &state); err != nil {
		return model.SessionState{}, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if !state.Data.Phase.Valid() {
		return model.SessionState{}, fmt.Errorf("%w: unknown phase %q", ErrInvalidState, state.Data.Phase)
	}

	state.Data.UserProfile = profile.Clone(state.Data.UserProfile)
	if state.Data.UserProfile.DateInfo.Tier == "" {
		state.Data.UserProfile.DateInfo = model.NoDates()
	}
	if state.Data.Messages == nil {
		state.Data.Messages = []model.ChatMessage{}
	}
	if state.Data.GeneratedPlans == nil {
		state.Data.GeneratedPlans = []model.ScoredPlan{}
	}
	return state, nil
}
