// Package grading orchestrates answer submissions: question resolution,
// attempt continuation, answer checking, outcome persistence and the
// downstream progression update.
package grading

import (
	"context"
	"fmt"
	"time"

	"github.com/word-forge/wordforge-lms/internal/drill"
	"github.com/word-forge/wordforge-lms/internal/progression"
)

// SubmitRequest is one answer submission. Answer is the decoded JSON payload
// whose shape depends on the question variant. ClaimedPoints is the optional
// client-computed score; it is honored only when the engine verifies the
// answer is correct, and never above the server-computed score.
type SubmitRequest struct {
	StudentID  string     `json:"student_id"`
	DrillID    string     `json:"drill_id"`
	QuestionID string     `json:"question_id"`
	Answer     any        `json:"submitted_answer"`
	TimeTaken  float64    `json:"time_taken,omitempty"`
	Meta       drill.Meta `json:"meta,omitempty"`

	ClaimedPoints *float64 `json:"points,omitempty"`
}

// Result is the fully settled view of one submission.
type Result struct {
	Outcome     drill.Outcome       `json:"outcome"`
	Attempt     drill.Attempt       `json:"attempt"`
	NewAttempt  bool                `json:"new_attempt"`
	Progression progression.Summary `json:"progression"`
}

type Engine struct {
	store   drill.Store
	tracker *drill.Tracker
	ledger  *progression.Ledger
	locks   *keyedMutex
	now     func() time.Time
}

func NewEngine(store drill.Store, ledger *progression.Ledger) *Engine {
	return &Engine{
		store:   store,
		tracker: drill.NewTracker(store),
		ledger:  ledger,
		locks:   newKeyedMutex(),
		now:     time.Now,
	}
}

// SubmitAnswer grades one submission end to end. The whole pipeline runs
// under a mutex keyed by (student, drill): concurrent submissions for the
// same pair serialize, everything else proceeds in parallel. Enrollment and
// question resolution are checked before any state is written.
func (e *Engine) SubmitAnswer(ctx context.Context, req SubmitRequest) (Result, error) {
	unlock := e.locks.lock(req.StudentID + "\x00" + req.DrillID)
	defer unlock()

	enrolled, err := e.store.IsEnrolled(ctx, req.StudentID, req.DrillID)
	if err != nil {
		return Result{}, err
	}
	if !enrolled {
		return Result{}, fmt.Errorf("student %s not enrolled in drill %s: %w",
			req.StudentID, req.DrillID, drill.ErrPermissionDenied)
	}

	q, err := e.store.GetQuestion(ctx, req.DrillID, req.QuestionID)
	if err != nil {
		return Result{}, err
	}

	att, created, err := e.tracker.Resolve(ctx, req.StudentID, req.DrillID)
	if err != nil {
		return Result{}, err
	}

	correct := q.CheckAnswer(req.Answer)
	outcome := drill.Outcome{
		AttemptID:     att.ID,
		QuestionID:    q.ID,
		Submitted:     req.Answer,
		IsCorrect:     correct,
		PointsAwarded: e.points(q, req, correct),
		TimeTaken:     req.TimeTaken,
		SubmittedAt:   e.now().Unix(),
	}
	if err := e.store.UpsertOutcome(ctx, outcome); err != nil {
		return Result{}, err
	}

	// Attempt points are never incremented, always re-summed, so regrading
	// the same outcome can't double-count.
	total, err := e.store.SumOutcomePoints(ctx, att.ID)
	if err != nil {
		return Result{}, err
	}
	completedAt, err := e.completionStamp(ctx, att)
	if err != nil {
		return Result{}, err
	}
	if err := e.store.SetAttemptPoints(ctx, att.ID, total, completedAt); err != nil {
		return Result{}, err
	}
	att.Points = total
	if completedAt != 0 {
		att.CompletedAt = completedAt
	}

	sum, err := e.ledger.Recompute(ctx, req.StudentID)
	if err != nil {
		return Result{}, err
	}

	return Result{Outcome: outcome, Attempt: att, NewAttempt: created, Progression: sum}, nil
}

// points applies the trust boundary: the client may pre-compute a score for
// responsiveness, but only a verified-correct answer earns it, and never
// more than the server's own formula allows.
func (e *Engine) points(q drill.Question, req SubmitRequest, correct bool) float64 {
	if !correct {
		return 0
	}
	ceiling := q.ComputeScore(req.Answer, req.Meta)
	if req.ClaimedPoints == nil {
		return ceiling
	}
	claimed := *req.ClaimedPoints
	if claimed < 0 {
		return 0
	}
	if claimed > ceiling {
		return ceiling
	}
	return claimed
}

func (e *Engine) completionStamp(ctx context.Context, att drill.Attempt) (int64, error) {
	if att.CompletedAt != 0 {
		return att.CompletedAt, nil
	}
	total, err := e.store.QuestionCount(ctx, att.DrillID)
	if err != nil {
		return 0, err
	}
	answered, err := e.store.OutcomeCount(ctx, att.ID)
	if err != nil {
		return 0, err
	}
	if total > 0 && answered >= total {
		return e.now().Unix(), nil
	}
	return 0, nil
}
