package progression

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) ListBadges(ctx context.Context) ([]Badge, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,name,description,image_ref,kind,threshold FROM badges ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Badge
	for rows.Next() {
		var b Badge
		var kind string
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.ImageRef, &kind, &b.Threshold); err != nil {
			return nil, err
		}
		b.Kind = RequirementKind(kind)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *SQLStore) SeedBadges(ctx context.Context, badges []Badge) error {
	for _, b := range badges {
		_, err := s.db.ExecContext(ctx, `INSERT INTO badges (id,name,description,image_ref,kind,threshold)
			VALUES ($1,$2,$3,$4,$5,$6) ON CONFLICT (id) DO NOTHING`,
			b.ID, b.Name, b.Description, b.ImageRef, string(b.Kind), b.Threshold)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLStore) EarnedBadgeIDs(ctx context.Context, studentID string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT badge_id FROM user_badges WHERE student_id=$1`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

func (s *SQLStore) AwardBadge(ctx context.Context, studentID, badgeID string, earnedAt int64) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO user_badges (student_id,badge_id,earned_at)
		VALUES ($1,$2,$3) ON CONFLICT (student_id,badge_id) DO NOTHING`,
		studentID, badgeID, earnedAt)
	return err
}

func (s *SQLStore) SaveState(ctx context.Context, st State) error {
	bj, err := json.Marshal(st.BadgeIDs)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO progression (student_id,total_points,badges_json,updated_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (student_id) DO UPDATE SET total_points=EXCLUDED.total_points,
		  badges_json=EXCLUDED.badges_json, updated_at=EXCLUDED.updated_at`,
		st.StudentID, st.TotalPoints, string(bj), st.UpdatedAt)
	return err
}

func (s *SQLStore) GetState(ctx context.Context, studentID string) (State, error) {
	row := s.db.QueryRowContext(ctx, `SELECT student_id,total_points,badges_json,updated_at FROM progression WHERE student_id=$1`, studentID)
	var st State
	var bj string
	if err := row.Scan(&st.StudentID, &st.TotalPoints, &bj, &st.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return State{StudentID: studentID}, nil
		}
		return State{}, err
	}
	if err := json.Unmarshal([]byte(bj), &st.BadgeIDs); err != nil {
		st.BadgeIDs = nil
	}
	return st, nil
}
