// Package advisory runs the soft judge in the background and keeps the latest
// verdict per session. Advisories never gate anything; a slow or failed
// review only changes what the advisory slot reports.
package advisory

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/NadavGB86/event-pragmetizer-oss/common/logger"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/model"
)

const (
	DefaultTimeout = 60 * time.Second
	writeTimeout   = 5 * time.Second
)

// Reviewer produces a soft-judge verdict for one scored plan. On failure it
// may still return a fallback verdict alongside the error.
type Reviewer interface {
	Review(ctx context.Context, plan model.ScoredPlan, profile model.UserProfile) (model.SoftJudgeVerdict, error)
}

type Tracker struct {
	reviewer Reviewer
	store    Store
	timeout  time.Duration

	mu      sync.Mutex
	running map[int64]*task
	wg      sync.WaitGroup
}

type task struct {
	evaluationID int64
	cancel       context.CancelFunc
	done         chan struct{}
}

func NewTracker(reviewer Reviewer, store Store, timeout time.Duration) *Tracker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Tracker{
		reviewer: reviewer,
		store:    store,
		timeout:  timeout,
		running:  make(map[int64]*task),
	}
}

// Start reviews plan in the background as the session's current advisory.
// Any review still running for the session is cancelled and its result is
// discarded.
func (t *Tracker) Start(ctx context.Context, sessionID int64, plan model.ScoredPlan, profile model.UserProfile) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		SessionID:    logger.Ptr(sessionID),
		EvaluationID: logger.Ptr(plan.EvaluationID),
		Component:    "planner.advisory",
	})

	// Held across Begin so the stored identity and the running task agree.
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.store.Begin(ctx, sessionID, plan.EvaluationID); err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.timeout)
	tk := &task{evaluationID: plan.EvaluationID, cancel: cancel, done: make(chan struct{})}

	if prev, ok := t.running[sessionID]; ok {
		prev.cancel()
		slog.DebugContext(ctx, "superseded running advisory", "previous_evaluation_id", prev.evaluationID)
	}
	t.running[sessionID] = tk
	t.wg.Add(1)

	go t.run(runCtx, sessionID, tk, plan, profile)
	return nil
}

func (t *Tracker) run(ctx context.Context, sessionID int64, tk *task, plan model.ScoredPlan, profile model.UserProfile) {
	defer t.wg.Done()
	defer close(tk.done)
	defer t.forget(sessionID, tk)
	defer tk.cancel()

	verdict, err := t.reviewer.Review(ctx, plan, profile)
	if errors.Is(ctx.Err(), context.Canceled) {
		slog.DebugContext(ctx, "advisory cancelled")
		return
	}

	result := model.Advisory{
		SessionID:    sessionID,
		EvaluationID: plan.EvaluationID,
		Status:       model.AdvisoryStatusReady,
		Verdict:      &verdict,
	}
	if err != nil {
		slog.WarnContext(ctx, "advisory review failed", "error", err)
		result.Status = model.AdvisoryStatusUnavailable
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	if err := t.store.Complete(writeCtx, result); err != nil {
		if errors.Is(err, ErrStaleEvaluation) {
			slog.DebugContext(ctx, "discarded stale advisory")
			return
		}
		slog.ErrorContext(ctx, "failed to store advisory", "error", err)
		return
	}

	slog.InfoContext(ctx, "advisory completed", "status", result.Status, "score", verdict.Score)
}

func (t *Tracker) forget(sessionID int64, tk *task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running[sessionID] == tk {
		delete(t.running, sessionID)
	}
}

// Cancel stops any running review for the session and clears its slot.
func (t *Tracker) Cancel(ctx context.Context, sessionID int64) error {
	t.mu.Lock()
	if tk, ok := t.running[sessionID]; ok {
		tk.cancel()
		delete(t.running, sessionID)
	}
	t.mu.Unlock()

	return t.store.Clear(ctx, sessionID)
}

func (t *Tracker) Latest(ctx context.Context, sessionID int64) (model.Advisory, error) {
	return t.store.Get(ctx, sessionID)
}

// Wait blocks until the session's current review finishes or ctx ends.
func (t *Tracker) Wait(ctx context.Context, sessionID int64) error {
	t.mu.Lock()
	tk, ok := t.running[sessionID]
	t.mu.Unlock()
	if !ok {
		return nil
	}

	select {
	case <-tk.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown cancels every running review and waits for them to exit.
func (t *Tracker) Shutdown(ctx context.Context) error {
	t.mu.Lock()
	for _, tk := range t.running {
		tk.cancel()
	}
	t.mu.Unlock()

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
