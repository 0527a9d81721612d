package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/word-forge/wordforge-lms/internal/auth/middleware"
	"github.com/word-forge/wordforge-lms/internal/notify"
)

// GET /notifications?unread=1
func ListNotificationsHandler(feed *notify.FeedStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		unread := r.URL.Query().Get("unread") == "1"
		list, err := feed.List(r.Context(), sub, unread)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if list == nil {
			list = []notify.Notification{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}
}

// POST /notifications/{notificationID}/read
func MarkNotificationReadHandler(feed *notify.FeedStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		id := chi.URLParam(r, "notificationID")
		if err := feed.MarkRead(r.Context(), sub, id); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
