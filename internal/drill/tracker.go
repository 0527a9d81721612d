package drill

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Tracker decides whether an incoming submission continues the student's
// current run of a drill or opens a new one. The latest run_number in the
// store is its only source of truth; nothing is cached between calls, so the
// caller must serialize Resolve per (student, drill).
type Tracker struct {
	store Store
	now   func() time.Time
}

func NewTracker(store Store) *Tracker {
	return &Tracker{store: store, now: time.Now}
}

// Resolve returns the attempt the submission belongs to, creating run 1 on a
// student's first submission or run n+1 once run n has answered every
// question in the drill. The second return reports whether a new attempt was
// created.
func (t *Tracker) Resolve(ctx context.Context, studentID, drillID string) (Attempt, bool, error) {
	latest, err := t.store.LatestAttempt(ctx, studentID, drillID)
	if err == nil {
		done, derr := t.isComplete(ctx, latest)
		if derr != nil {
			return Attempt{}, false, derr
		}
		if !done {
			return latest, false, nil
		}
		return t.open(ctx, studentID, drillID, latest.RunNumber+1)
	}
	if errors.Is(err, ErrNotFound) {
		return t.open(ctx, studentID, drillID, 1)
	}
	return Attempt{}, false, err
}

// isComplete compares distinct outcomes against the drill's question count.
// Completion is never stored as tracker state; it is derived fresh on every
// submission.
func (t *Tracker) isComplete(ctx context.Context, a Attempt) (bool, error) {
	total, err := t.store.QuestionCount(ctx, a.DrillID)
	if err != nil {
		return false, err
	}
	if total == 0 {
		return false, nil
	}
	answered, err := t.store.OutcomeCount(ctx, a.ID)
	if err != nil {
		return false, err
	}
	return answered >= total, nil
}

func (t *Tracker) open(ctx context.Context, studentID, drillID string, run int) (Attempt, bool, error) {
	a := Attempt{
		ID:        uuid.NewString(),
		DrillID:   drillID,
		StudentID: studentID,
		RunNumber: run,
		StartedAt: t.now().Unix(),
	}
	if err := t.store.CreateAttempt(ctx, a); err != nil {
		return Attempt{}, false, err
	}
	return a, true, nil
}
