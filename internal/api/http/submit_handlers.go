package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/word-forge/wordforge-lms/internal/auth/middleware"
	"github.com/word-forge/wordforge-lms/internal/drill"
	"github.com/word-forge/wordforge-lms/internal/grading"
	syncx "github.com/word-forge/wordforge-lms/internal/sync"
)

// POST /drills/{drillID}/questions/{questionID}/answer
//
// Body: { "submitted_answer": <variant-specific>, "time_taken": 3.2,
//         "meta": {"wrong_attempts": 1}, "points": 90 }
//
// The student is always the token subject; clients cannot submit on behalf
// of someone else.
func SubmitAnswerHandler(engine *grading.Engine, events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Answer        any        `json:"submitted_answer"`
			TimeTaken     float64    `json:"time_taken"`
			Meta          drill.Meta `json:"meta"`
			ClaimedPoints *float64   `json:"points"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		req := grading.SubmitRequest{
			StudentID:     authmw.SubjectFromContext(r.Context()),
			DrillID:       chi.URLParam(r, "drillID"),
			QuestionID:    chi.URLParam(r, "questionID"),
			Answer:        body.Answer,
			TimeTaken:     body.TimeTaken,
			Meta:          body.Meta,
			ClaimedPoints: body.ClaimedPoints,
		}
		res, err := engine.SubmitAnswer(r.Context(), req)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		appendEvents(r, events, res)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(res)
	}
}

// appendEvents records the graded outcome and any badge awards in the event
// log. Best-effort: the submission already settled.
func appendEvents(r *http.Request, events *syncx.EventRepo, res grading.Result) {
	if events == nil {
		return
	}
	ctx := r.Context()
	if data, err := json.Marshal(res.Outcome); err == nil {
		if err := events.Append(ctx, syncx.TypeAnswerGraded, res.Attempt.ID, string(data)); err != nil {
			log.Printf("event log append: %v", err)
		}
	}
	for _, b := range res.Progression.NewBadges {
		data, err := json.Marshal(map[string]string{"student_id": res.Attempt.StudentID, "badge_id": b.ID})
		if err != nil {
			continue
		}
		if err := events.Append(ctx, syncx.TypeBadgeEarned, res.Attempt.StudentID, string(data)); err != nil {
			log.Printf("event log append: %v", err)
		}
	}
}
