package drill

import "context"

type AttemptListOpts struct {
	DrillID   string // filter by drill
	StudentID string // filter by student
	Status    string // optional: in_progress|completed
	Limit     int
	Offset    int
}

// Store is the storage collaborator for drills, attempts and outcomes. Both
// the SQL store and the in-memory store implement it; the grading engine and
// the progression ledger only ever talk to this interface.
type Store interface {
	PutDrill(ctx context.Context, d Drill) error
	GetDrill(ctx context.Context, id string) (Drill, error) // full drill, answer keys included
	GetQuestion(ctx context.Context, drillID, questionID string) (Question, error)
	QuestionCount(ctx context.Context, drillID string) (int, error)

	Enroll(ctx context.Context, studentID, drillID string) error
	IsEnrolled(ctx context.Context, studentID, drillID string) (bool, error)

	// LatestAttempt returns the attempt with the highest run_number for
	// (student, drill), or ErrNotFound when the student has none.
	LatestAttempt(ctx context.Context, studentID, drillID string) (Attempt, error)
	// CreateAttempt fails with ErrConsistency when (student, drill,
	// run_number) already exists.
	CreateAttempt(ctx context.Context, a Attempt) error
	GetAttempt(ctx context.Context, id string) (Attempt, error)
	ListAttempts(ctx context.Context, opts AttemptListOpts) ([]Attempt, error)

	// UpsertOutcome overwrites any prior outcome for (attempt, question).
	UpsertOutcome(ctx context.Context, o Outcome) error
	OutcomeCount(ctx context.Context, attemptID string) (int, error)
	SumOutcomePoints(ctx context.Context, attemptID string) (float64, error)
	// SetAttemptPoints refreshes the attempt's points cache; completedAt is
	// 0 while the attempt is still in progress.
	SetAttemptPoints(ctx context.Context, attemptID string, points float64, completedAt int64) error

	// StudentStats derives badge inputs from the attempts' points cache.
	StudentStats(ctx context.Context, studentID string) (Stats, error)
	// ReplayStats derives the same numbers from raw outcome history,
	// bypassing every cache. StudentStats and ReplayStats must agree; the
	// difference exists so the ledger can prove it.
	ReplayStats(ctx context.Context, studentID string) (Stats, error)
}

// Sanitized returns a copy of the drill safe to serve to students: correct
// flags and answer words are stripped before the drill goes over the wire.
func (d Drill) Sanitized() Drill {
	out := d
	out.Questions = make([]Question, len(d.Questions))
	for i, q := range d.Questions {
		qq := q
		qq.Answer = ""
		if len(q.Choices) > 0 {
			qq.Choices = make([]Choice, len(q.Choices))
			copy(qq.Choices, q.Choices)
			for j := range qq.Choices {
				qq.Choices[j].IsCorrect = false
			}
		}
		out.Questions[i] = qq
	}
	return out
}
