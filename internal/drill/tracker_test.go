package drill_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/word-forge/wordforge-lms/internal/drill"
)

func twoQuestionDrill(t *testing.T, store drill.Store) drill.Drill {
	t.Helper()
	d := drill.Drill{
		ID:     "d1",
		Title:  "Animals",
		Status: drill.StatusPublished,
		Questions: []drill.Question{
			selectOne(),
			{ID: "q2", Type: drill.TypePictureWord, Answer: "dog"},
		},
	}
	if err := store.PutDrill(context.Background(), d); err != nil {
		t.Fatalf("put drill: %v", err)
	}
	return d
}

func answer(t *testing.T, store drill.Store, attemptID, questionID string, pts float64) {
	t.Helper()
	err := store.UpsertOutcome(context.Background(), drill.Outcome{
		AttemptID:     attemptID,
		QuestionID:    questionID,
		Submitted:     "x",
		IsCorrect:     pts > 0,
		PointsAwarded: pts,
		SubmittedAt:   time.Now().Unix(),
	})
	if err != nil {
		t.Fatalf("upsert outcome: %v", err)
	}
}

func TestTrackerFirstSubmissionOpensRunOne(t *testing.T) {
	ctx := context.Background()
	store := drill.NewInMemoryStore()
	twoQuestionDrill(t, store)
	tr := drill.NewTracker(store)

	a, created, err := tr.Resolve(ctx, "s1", "d1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !created || a.RunNumber != 1 {
		t.Fatalf("got created=%v run=%d, want new run 1", created, a.RunNumber)
	}
}

func TestTrackerContinuesInProgressRun(t *testing.T) {
	ctx := context.Background()
	store := drill.NewInMemoryStore()
	twoQuestionDrill(t, store)
	tr := drill.NewTracker(store)

	first, _, _ := tr.Resolve(ctx, "s1", "d1")
	answer(t, store, first.ID, "q1", 100)

	// one of two questions answered: same run continues, including for a
	// resubmission of q1
	again, created, err := tr.Resolve(ctx, "s1", "d1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if created || again.ID != first.ID {
		t.Fatalf("expected continuation of run 1, got created=%v id=%s", created, again.ID)
	}
}

func TestTrackerOpensNewRunAfterCompletion(t *testing.T) {
	ctx := context.Background()
	store := drill.NewInMemoryStore()
	twoQuestionDrill(t, store)
	tr := drill.NewTracker(store)

	first, _, _ := tr.Resolve(ctx, "s1", "d1")
	answer(t, store, first.ID, "q1", 100)
	answer(t, store, first.ID, "q2", 80)

	second, created, err := tr.Resolve(ctx, "s1", "d1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !created || second.RunNumber != 2 {
		t.Fatalf("expected new run 2, got created=%v run=%d", created, second.RunNumber)
	}

	answer(t, store, second.ID, "q1", 50)
	answer(t, store, second.ID, "q2", 50)

	third, _, err := tr.Resolve(ctx, "s1", "d1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if third.RunNumber != 3 {
		t.Fatalf("run numbers must strictly increase, got %d", third.RunNumber)
	}
}

func TestTrackerIsolatesStudentsAndDrills(t *testing.T) {
	ctx := context.Background()
	store := drill.NewInMemoryStore()
	twoQuestionDrill(t, store)
	tr := drill.NewTracker(store)

	a1, _, _ := tr.Resolve(ctx, "s1", "d1")
	a2, _, _ := tr.Resolve(ctx, "s2", "d1")
	if a1.ID == a2.ID {
		t.Fatal("different students must get different attempts")
	}
	if a1.RunNumber != 1 || a2.RunNumber != 1 {
		t.Fatalf("both should start at run 1, got %d and %d", a1.RunNumber, a2.RunNumber)
	}
}

func TestCreateAttemptRejectsDuplicateRun(t *testing.T) {
	ctx := context.Background()
	store := drill.NewInMemoryStore()
	twoQuestionDrill(t, store)

	a := drill.Attempt{ID: "a1", DrillID: "d1", StudentID: "s1", RunNumber: 1, StartedAt: 1}
	if err := store.CreateAttempt(ctx, a); err != nil {
		t.Fatalf("first create: %v", err)
	}
	dup := drill.Attempt{ID: "a2", DrillID: "d1", StudentID: "s1", RunNumber: 1, StartedAt: 2}
	err := store.CreateAttempt(ctx, dup)
	if !errors.Is(err, drill.ErrConsistency) {
		t.Fatalf("expected ErrConsistency, got %v", err)
	}
}
