package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	authmw "github.com/word-forge/wordforge-lms/internal/auth/middleware"
	"github.com/word-forge/wordforge-lms/internal/drill"
	"github.com/word-forge/wordforge-lms/internal/rbac"
)

// POST /drills  (teacher)
func CreateDrillHandler(store drill.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var d drill.Drill
		if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if d.Title == "" || len(d.Questions) == 0 {
			http.Error(w, "title and questions required", http.StatusBadRequest)
			return
		}
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		for i := range d.Questions {
			if d.Questions[i].ID == "" {
				d.Questions[i].ID = uuid.NewString()
			}
			d.Questions[i].DrillID = d.ID
		}
		if d.Status == "" {
			d.Status = drill.StatusDraft
		}
		d.CreatedBy = authmw.SubjectFromContext(r.Context())
		d.CreatedAt = time.Now().Unix()
		if err := store.PutDrill(r.Context(), d); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(d)
	}
}

// GET /drills/{drillID}
// Students get the sanitized view; teachers and admins see answer keys.
func GetDrillHandler(store drill.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "drillID")
		d, err := store.GetDrill(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		role := rbac.RoleFromContext(r.Context())
		if role != "teacher" && role != "admin" {
			d = d.Sanitized()
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(d)
	}
}

// POST /drills/{drillID}/enrollments  { "student_id": "..." }  (teacher)
func EnrollHandler(store drill.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		drillID := chi.URLParam(r, "drillID")
		var req struct {
			StudentID string `json:"student_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.StudentID == "" {
			http.Error(w, "student_id required", http.StatusBadRequest)
			return
		}
		if _, err := store.GetDrill(r.Context(), drillID); err != nil {
			writeDomainError(w, err)
			return
		}
		if err := store.Enroll(r.Context(), req.StudentID, drillID); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, drill.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, drill.ErrPermissionDenied):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
