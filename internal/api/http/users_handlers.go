package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type userRow struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`               // usually "student"
	Password string `json:"password,omitempty"` // plaintext optional (LAN-only rosters)
}

// POST /users/bulk  — JSON array of users. Passwords are bcrypt-hashed
// before storage; rows without a password keep their existing hash.
func BulkUpsertUsersHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rows []userRow
		if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
			http.Error(w, "expected JSON array", http.StatusBadRequest)
			return
		}
		ins, upd, err := upsertUsers(r.Context(), db, rows)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"inserted": ins, "updated": upd})
	}
}

func upsertUsers(ctx context.Context, db *sql.DB, rows []userRow) (inserted, updated int, err error) {
	for _, u := range rows {
		if u.Username == "" {
			continue
		}
		if u.ID == "" {
			u.ID = uuid.NewString()
		}
		if u.Role == "" {
			u.Role = "student"
		}
		var hash []byte
		if u.Password != "" {
			hash, err = bcrypt.GenerateFromPassword([]byte(u.Password), 12)
			if err != nil {
				return inserted, updated, err
			}
		}
		var exists int
		qerr := db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE username=$1`, u.Username).Scan(&exists)
		switch {
		case qerr == sql.ErrNoRows:
			if hash == nil {
				continue // new user needs a password
			}
			if _, err = db.ExecContext(ctx,
				`INSERT INTO users (id,username,password_hash,role) VALUES ($1,$2,$3,$4)`,
				u.ID, u.Username, string(hash), u.Role); err != nil {
				return inserted, updated, err
			}
			inserted++
		case qerr != nil:
			return inserted, updated, qerr
		default:
			if hash != nil {
				_, err = db.ExecContext(ctx,
					`UPDATE users SET role=$1, password_hash=$2 WHERE username=$3`,
					u.Role, string(hash), u.Username)
			} else {
				_, err = db.ExecContext(ctx,
					`UPDATE users SET role=$1 WHERE username=$2`, u.Role, u.Username)
			}
			if err != nil {
				return inserted, updated, err
			}
			updated++
		}
	}
	return inserted, updated, nil
}

// GET /users?role=student
func ListUsersHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := r.URL.Query().Get("role")
		q := `SELECT id, username, role FROM users`
		args := []any{}
		if role != "" {
			q += ` WHERE role=$1`
			args = append(args, role)
		}
		q += ` ORDER BY username LIMIT 500`
		rows, err := db.QueryContext(r.Context(), q, args...)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer rows.Close()
		out := []userRow{}
		for rows.Next() {
			var u userRow
			if err := rows.Scan(&u.ID, &u.Username, &u.Role); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			out = append(out, u)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	}
}
