package http

import (
	"encoding/json"
	"net/http"
	"strings"

	authmw "github.com/word-forge/wordforge-lms/internal/auth/middleware"
	"github.com/word-forge/wordforge-lms/internal/drill"
	"github.com/word-forge/wordforge-lms/internal/rbac"
)

// GET /attempts?drill_id=...&student_id=...&status=...&limit=50&offset=0
// Roles with attempt:view-all may use any filters; students are forced onto
// their own attempts.
func ListAttemptsHandler(store drill.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := rbac.RoleFromContext(r.Context())
		sub := authmw.SubjectFromContext(r.Context())

		drillID := strings.TrimSpace(r.URL.Query().Get("drill_id"))
		studentID := strings.TrimSpace(r.URL.Query().Get("student_id"))
		status := strings.TrimSpace(r.URL.Query().Get("status"))
		limit := parseIntDefault(r.URL.Query().Get("limit"), 50)
		offset := parseIntDefault(r.URL.Query().Get("offset"), 0)

		if role == "" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		if role != "admin" && role != "teacher" {
			studentID = sub
		}

		list, err := store.ListAttempts(r.Context(), drill.AttemptListOpts{
			DrillID:   drillID,
			StudentID: studentID,
			Status:    status,
			Limit:     limit,
			Offset:    offset,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}
}
