package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/NadavGB86/event-pragmetizer-oss/common/id"
	"github.com/NadavGB86/event-pragmetizer-oss/common/logger"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/brain"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/model"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/profile"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/readiness"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/scoring"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/session"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/store"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/synthesis"
)

type Analyst interface {
	Reply(ctx context.Context, history []model.ChatMessage, p model.UserProfile, mode brain.GuidanceMode) brain.AnalystTurn
}

type Generator interface {
	Generate(ctx context.Context, p model.UserProfile) brain.Generation
}

type Refiner interface {
	Refine(ctx context.Context, current model.ScoredPlan, instruction string, p model.UserProfile) (model.ScoredPlan, error)
}

type AdvisoryTracker interface {
	Start(ctx context.Context, sessionID int64, plan model.ScoredPlan, p model.UserProfile) error
	Cancel(ctx context.Context, sessionID int64) error
	Latest(ctx context.Context, sessionID int64) (model.Advisory, error)
}

type MessageResult struct {
	Reply     model.ChatMessage
	Profile   model.UserProfile
	Readiness model.ProfileReadiness
	Signal    *model.ReadinessSignal
}

type ProfileResult struct {
	Profile   model.UserProfile
	Readiness model.ProfileReadiness
}

type GenerationResult struct {
	Plans        []model.ScoredPlan
	DatesMissing bool
}

type EvaluationResult struct {
	Request model.SynthesisRequest
	Plans   []model.ScoredPlan
}

type PlanningService interface {
	Create(ctx context.Context) (*model.Session, error)
	Get(ctx context.Context, sessionID int64) (*model.Session, error)
	SendMessage(ctx context.Context, sessionID int64, content string, mode brain.GuidanceMode) (*MessageResult, error)
	UpdateProfile(ctx context.Context, sessionID int64, update model.ProfileUpdate) (*ProfileResult, error)
	Readiness(ctx context.Context, sessionID int64) (model.ProfileReadiness, error)
	Synthesis(ctx context.Context, sessionID int64) (model.SynthesisRequest, error)
	GeneratePlans(ctx context.Context, sessionID int64) (*GenerationResult, error)
	SelectPlan(ctx context.Context, sessionID, evaluationID int64) (*model.ScoredPlan, error)
	RefinePlan(ctx context.Context, sessionID int64, instruction string) (*model.ScoredPlan, error)
	Advisory(ctx context.Context, sessionID int64) (model.Advisory, error)
	Export(ctx context.Context, sessionID int64) (model.SessionState, error)
	Import(ctx context.Context, raw []byte) (*model.Session, error)
	Delete(ctx context.Context, sessionID int64) error
	Evaluate(ctx context.Context, p model.UserProfile, plans []model.CandidatePlan) EvaluationResult
}

type PlanningDeps struct {
	Sessions  store.SessionStore
	Sequencer *session.Sequencer
	Analyst   Analyst
	Generator Generator
	Refiner   Refiner
	Advisory  AdvisoryTracker
	Origin    string

	NewID func() int64     // defaults to id.New
	Now   func() time.Time // defaults to time.Now
}

type planningService struct {
	sessions  store.SessionStore
	seq       *session.Sequencer
	analyst   Analyst
	generator Generator
	refiner   Refiner
	advisory  AdvisoryTracker
	origin    string
	newID     func() int64
	now       func() time.Time
}

func NewPlanningService(deps PlanningDeps) PlanningService {
	s := &planningService{
		sessions:  deps.Sessions,
		seq:       deps.Sequencer,
		analyst:   deps.Analyst,
		generator: deps.Generator,
		refiner:   deps.Refiner,
		advisory:  deps.Advisory,
		origin:    deps.Origin,
		newID:     deps.NewID,
		now:       deps.Now,
	}
	if s.seq == nil {
		s.seq = session.NewSequencer()
	}
	if s.newID == nil {
		s.newID = id.New
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *planningService) Create(ctx context.Context) (*model.Session, error) {
	sess := &model.Session{
		ID: s.newID(),
		State: model.SessionState{
			Version:   model.SessionStateVersion,
			Timestamp: s.now().UnixMilli(),
			Data: model.SessionData{
				Phase:          model.PhaseIntake,
				Messages:       []model.ChatMessage{},
				UserProfile:    profile.Default(),
				GeneratedPlans: []model.ScoredPlan{},
			},
		},
	}

	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	slog.InfoContext(ctx, "planning session created", "session_id", sess.ID)
	return sess, nil
}

func (s *planningService) Get(ctx context.Context, sessionID int64) (*model.Session, error) {
	return s.sessions.Get(ctx, sessionID)
}

// SendMessage runs one analyst turn. Model calls of overlapping turns may
// run concurrently but their merges apply in the order the messages arrived.
func (s *planningService) SendMessage(ctx context.Context, sessionID int64, content string, mode brain.GuidanceMode) (*MessageResult, error) {
	span := logger.StartSpan(ctx, "service.planning.send_message", sessionFields(sessionID))
	defer span.End()
	ctx = span.Context()

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	// Every exit short of Commit abandons the ticket, panics included;
	// an unspent ticket would block all later merges of the session.
	ticket := s.seq.Begin(sessionID)
	committed := false
	defer func() {
		if !committed {
			s.seq.Abandon(ticket)
		}
	}()

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	ctx = span.Annotate(phaseFields(sess.State.Data.Phase))

	userMsg := s.message(model.MessageRoleUser, content)
	history := append(slices.Clone(sess.State.Data.Messages), userMsg)
	turn := s.analyst.Reply(ctx, history, sess.State.Data.UserProfile, mode)
	modelMsg := s.message(model.MessageRoleModel, turn.Text)

	if n := s.seq.Pending(sessionID); n > 1 {
		slog.DebugContext(ctx, "waiting for earlier turns", "pending", n)
	}

	var updated *model.Session
	committed = true
	err = s.seq.Commit(ctx, ticket, func() error {
		var err error
		updated, err = s.sessions.Update(ctx, sessionID, func(cur *model.Session) error {
			cur.State.Data.Messages = append(cur.State.Data.Messages, userMsg, modelMsg)
			if turn.Update != nil {
				cur.State.Data.UserProfile = profile.Merge(cur.State.Data.UserProfile, *turn.Update)
			}
			cur.State.Timestamp = s.now().UnixMilli()
			return nil
		})
		return err
	})
	if err != nil {
		span.Fail(err)
		return nil, fmt.Errorf("recording turn: %w", err)
	}

	p := updated.State.Data.UserProfile
	slog.InfoContext(ctx, "analyst turn recorded",
		"profile_updated", turn.Update != nil,
		"analyst_failed", turn.Failed)

	return &MessageResult{
		Reply:     modelMsg,
		Profile:   p,
		Readiness: readiness.Assess(p),
		Signal:    turn.Signal,
	}, nil
}

// UpdateProfile merges a caller-supplied update, ordered with chat turns.
func (s *planningService) UpdateProfile(ctx context.Context, sessionID int64, update model.ProfileUpdate) (*ProfileResult, error) {
	ctx = s.withSession(ctx, sessionID)

	ticket := s.seq.Begin(sessionID)
	var updated *model.Session
	err := s.seq.Commit(ctx, ticket, func() error {
		var err error
		updated, err = s.sessions.Update(ctx, sessionID, func(cur *model.Session) error {
			cur.State.Data.UserProfile = profile.Merge(cur.State.Data.UserProfile, update)
			cur.State.Timestamp = s.now().UnixMilli()
			return nil
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	p := updated.State.Data.UserProfile
	return &ProfileResult{Profile: p, Readiness: readiness.Assess(p)}, nil
}

func (s *planningService) Readiness(ctx context.Context, sessionID int64) (model.ProfileReadiness, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return model.ProfileReadiness{}, err
	}
	return readiness.Assess(sess.State.Data.UserProfile), nil
}

func (s *planningService) Synthesis(ctx context.Context, sessionID int64) (model.SynthesisRequest, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return model.SynthesisRequest{}, err
	}
	return synthesis.Build(sess.State.Data.UserProfile, synthesis.WithOrigin(s.origin)), nil
}

// GeneratePlans is gated on readiness. Every returned plan gets a fresh
// evaluation ID and any advisory for the previous plan set is dropped.
func (s *planningService) GeneratePlans(ctx context.Context, sessionID int64) (*GenerationResult, error) {
	span := logger.StartSpan(ctx, "service.planning.generate_plans", sessionFields(sessionID))
	defer span.End()
	ctx = span.Context()

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	ctx = span.Annotate(phaseFields(sess.State.Data.Phase))

	p := sess.State.Data.UserProfile
	verdict := readiness.Assess(p)
	if !verdict.IsReady {
		slog.InfoContext(ctx, "generation blocked", "missing_critical", verdict.MissingCritical)
		return nil, &NotReadyError{Readiness: verdict}
	}

	if _, err := s.sessions.Update(ctx, sessionID, func(cur *model.Session) error {
		cur.State.Data.Phase = model.PhaseSynthesis
		return nil
	}); err != nil {
		return nil, err
	}
	ctx = span.Annotate(phaseFields(model.PhaseSynthesis))

	gen := s.generator.Generate(ctx, p)
	for i := range gen.Plans {
		gen.Plans[i].EvaluationID = s.newID()
	}

	if _, err := s.sessions.Update(ctx, sessionID, func(cur *model.Session) error {
		cur.State.Data.GeneratedPlans = gen.Plans
		cur.State.Data.SelectedPlan = nil
		cur.State.Data.Phase = model.PhaseMatching
		cur.State.Timestamp = s.now().UnixMilli()
		return nil
	}); err != nil {
		span.Fail(err)
		return nil, fmt.Errorf("storing plans: %w", err)
	}

	if err := s.advisory.Cancel(ctx, sessionID); err != nil {
		slog.WarnContext(ctx, "failed to clear advisory", "error", err)
	}

	slog.InfoContext(ctx, "plans generated", "count", len(gen.Plans))
	return &GenerationResult{
		Plans:        gen.Plans,
		DatesMissing: p.DateInfo.IsNone() && !p.HasConstraint(model.ConstraintTypeTime),
	}, nil
}

func (s *planningService) SelectPlan(ctx context.Context, sessionID, evaluationID int64) (*model.ScoredPlan, error) {
	ctx = s.withSession(ctx, sessionID)

	var selected model.ScoredPlan
	updated, err := s.sessions.Update(ctx, sessionID, func(cur *model.Session) error {
		i := slices.IndexFunc(cur.State.Data.GeneratedPlans, func(p model.ScoredPlan) bool {
			return p.EvaluationID == evaluationID
		})
		if i < 0 {
			return ErrPlanNotFound
		}
		selected = cur.State.Data.GeneratedPlans[i]
		cur.State.Data.SelectedPlan = &selected
		cur.State.Data.Phase = model.PhaseExecution
		cur.State.Timestamp = s.now().UnixMilli()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.startAdvisory(ctx, sessionID, selected, updated.State.Data.UserProfile)
	return &selected, nil
}

// RefinePlan replaces the selected plan with a refined, rescored copy. On
// failure the selected plan is left untouched.
func (s *planningService) RefinePlan(ctx context.Context, sessionID int64, instruction string) (*model.ScoredPlan, error) {
	span := logger.StartSpan(ctx, "service.planning.refine_plan", sessionFields(sessionID))
	defer span.End()
	ctx = span.Context()

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	ctx = span.Annotate(phaseFields(sess.State.Data.Phase))
	current := sess.State.Data.SelectedPlan
	if current == nil {
		return nil, ErrNoSelectedPlan
	}

	refined, err := s.refiner.Refine(ctx, *current, instruction, sess.State.Data.UserProfile)
	if err != nil {
		span.Fail(err)
		return nil, err
	}
	refined.EvaluationID = s.newID()

	updated, err := s.sessions.Update(ctx, sessionID, func(cur *model.Session) error {
		if cur.State.Data.SelectedPlan == nil || cur.State.Data.SelectedPlan.EvaluationID != current.EvaluationID {
			return ErrPlanChanged
		}
		cur.State.Data.SelectedPlan = &refined
		cur.State.Timestamp = s.now().UnixMilli()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.startAdvisory(ctx, sessionID, refined, updated.State.Data.UserProfile)
	return &refined, nil
}

// Delete removes the session and drops any advisory still running for it.
func (s *planningService) Delete(ctx context.Context, sessionID int64) error {
	ctx = s.withSession(ctx, sessionID)

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	if err := s.advisory.Cancel(ctx, sessionID); err != nil {
		slog.WarnContext(ctx, "failed to clear advisory", "error", err)
	}

	slog.InfoContext(ctx, "planning session deleted")
	return nil
}

func (s *planningService) Advisory(ctx context.Context, sessionID int64) (model.Advisory, error) {
	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return model.Advisory{}, err
	}
	return s.advisory.Latest(ctx, sessionID)
}

// Evaluate scores caller-supplied plans against a caller-supplied profile
// without touching any session.
func (s *planningService) Evaluate(ctx context.Context, p model.UserProfile, plans []model.CandidatePlan) EvaluationResult {
	req := synthesis.Build(profile.Clone(p), synthesis.WithOrigin(s.origin))

	candidates := slices.Clone(plans)
	for i := range candidates {
		if candidates[i].DisplayCurrency == nil {
			brain.ReconcileCurrency(&candidates[i], req.HardEnvelope.Currency)
		}
	}

	scored := scoring.ScorePlans(candidates, req)
	slog.DebugContext(ctx, "evaluated plans", "count", len(scored))
	return EvaluationResult{Request: req, Plans: scored}
}

// startAdvisory never fails the caller; advisories are best effort.
func (s *planningService) startAdvisory(ctx context.Context, sessionID int64, plan model.ScoredPlan, p model.UserProfile) {
	if err := s.advisory.Start(ctx, sessionID, plan, p); err != nil {
		slog.WarnContext(ctx, "failed to start advisory", "error", err, "evaluation_id", plan.EvaluationID)
	}
}

func (s *planningService) message(role model.MessageRole, content string) model.ChatMessage {
	return model.ChatMessage{
		ID:        strconv.FormatInt(s.newID(), 10),
		Role:      role,
		Content:   content,
		Timestamp: s.now().UnixMilli(),
	}
}

func (s *planningService) withSession(ctx context.Context, sessionID int64) context.Context {
	return logger.WithLogFields(ctx, sessionFields(sessionID))
}

func sessionFields(sessionID int64) logger.LogFields {
	return logger.LogFields{
		SessionID: logger.Ptr(sessionID),
		Component: "planner.service.planning",
	}
}

func phaseFields(phase model.Phase) logger.LogFields {
	return logger.LogFields{Phase: logger.Ptr(string(phase))}
}
