package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/word-forge/wordforge-lms/internal/auth/middleware"
	"github.com/word-forge/wordforge-lms/internal/progression"
	"github.com/word-forge/wordforge-lms/internal/rbac"
)

// GET /students/{studentID}/progression
// Students may only read their own; teacher/admin may read anyone's.
// Served from the cached state; no recompute happens on read.
func GetProgressionHandler(badges progression.BadgeStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := chi.URLParam(r, "studentID")
		role := rbac.RoleFromContext(r.Context())
		if role != "admin" && role != "teacher" && studentID != authmw.SubjectFromContext(r.Context()) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		st, err := badges.GetState(r.Context(), studentID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(st)
	}
}

// POST /students/{studentID}/progression/rebuild  (teacher/admin)
// Replays the outcome history, proving the cached total is reconstructible.
func RebuildProgressionHandler(ledger *progression.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := chi.URLParam(r, "studentID")
		sum, err := ledger.Rebuild(r.Context(), studentID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(sum)
	}
}

// GET /badges
func ListBadgesHandler(badges progression.BadgeStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := badges.ListBadges(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(all)
	}
}
