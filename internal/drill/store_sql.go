package drill

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) PutDrill(ctx context.Context, d Drill) error {
	qj, err := json.Marshal(d.Questions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO drills (id,title,description,status,created_by,questions_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, description=EXCLUDED.description,
		  status=EXCLUDED.status, questions_json=EXCLUDED.questions_json`,
		d.ID, d.Title, d.Description, string(d.Status), d.CreatedBy, string(qj), d.CreatedAt)
	return err
}

func (s *SQLStore) GetDrill(ctx context.Context, id string) (Drill, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,title,description,status,created_by,questions_json,created_at FROM drills WHERE id=$1`, id)
	var d Drill
	var status, qjson string
	if err := row.Scan(&d.ID, &d.Title, &d.Description, &status, &d.CreatedBy, &qjson, &d.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Drill{}, fmt.Errorf("drill %s: %w", id, ErrNotFound)
		}
		return Drill{}, err
	}
	d.Status = DrillStatus(status)
	if err := json.Unmarshal([]byte(qjson), &d.Questions); err != nil {
		return Drill{}, err
	}
	for i := range d.Questions {
		d.Questions[i].DrillID = d.ID
	}
	return d, nil
}

func (s *SQLStore) GetQuestion(ctx context.Context, drillID, questionID string) (Question, error) {
	d, err := s.GetDrill(ctx, drillID)
	if err != nil {
		return Question{}, err
	}
	for _, q := range d.Questions {
		if q.ID == questionID {
			return q, nil
		}
	}
	return Question{}, fmt.Errorf("question %s: %w", questionID, ErrNotFound)
}

func (s *SQLStore) QuestionCount(ctx context.Context, drillID string) (int, error) {
	d, err := s.GetDrill(ctx, drillID)
	if err != nil {
		return 0, err
	}
	return len(d.Questions), nil
}

func (s *SQLStore) Enroll(ctx context.Context, studentID, drillID string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO enrollments (student_id,drill_id)
		VALUES ($1,$2) ON CONFLICT (student_id,drill_id) DO NOTHING`, studentID, drillID)
	return err
}

func (s *SQLStore) IsEnrolled(ctx context.Context, studentID, drillID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM enrollments WHERE student_id=$1 AND drill_id=$2`, studentID, drillID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *SQLStore) LatestAttempt(ctx context.Context, studentID, drillID string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,drill_id,student_id,run_number,points,started_at,COALESCE(completed_at,0)
		FROM attempts WHERE student_id=$1 AND drill_id=$2 ORDER BY run_number DESC LIMIT 1`, studentID, drillID)
	return scanAttempt(row)
}

func (s *SQLStore) CreateAttempt(ctx context.Context, a Attempt) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO attempts (id,drill_id,student_id,run_number,points,started_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		a.ID, a.DrillID, a.StudentID, a.RunNumber, a.Points, a.StartedAt)
	if err != nil && isUniqueViolation(err) {
		return fmt.Errorf("duplicate run %d for student %s drill %s: %w",
			a.RunNumber, a.StudentID, a.DrillID, ErrConsistency)
	}
	return err
}

func (s *SQLStore) GetAttempt(ctx context.Context, id string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,drill_id,student_id,run_number,points,started_at,COALESCE(completed_at,0)
		FROM attempts WHERE id=$1`, id)
	return scanAttempt(row)
}

func (s *SQLStore) ListAttempts(ctx context.Context, opts AttemptListOpts) ([]Attempt, error) {
	where := []string{"1=1"}
	args := []any{}
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if opts.DrillID != "" {
		add("drill_id=$%d", opts.DrillID)
	}
	if opts.StudentID != "" {
		add("student_id=$%d", opts.StudentID)
	}
	switch opts.Status {
	case "in_progress":
		where = append(where, "completed_at IS NULL")
	case "completed":
		where = append(where, "completed_at IS NOT NULL")
	}
	limit := opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit, opts.Offset)
	q := fmt.Sprintf(`SELECT id,drill_id,student_id,run_number,points,started_at,COALESCE(completed_at,0)
		FROM attempts WHERE %s ORDER BY started_at DESC LIMIT $%d OFFSET $%d`,
		strings.Join(where, " AND "), len(args)-1, len(args))
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Attempt
	for rows.Next() {
		var a Attempt
		if err := rows.Scan(&a.ID, &a.DrillID, &a.StudentID, &a.RunNumber, &a.Points, &a.StartedAt, &a.CompletedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpsertOutcome(ctx context.Context, o Outcome) error {
	sj, err := json.Marshal(o.Submitted)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO outcomes (attempt_id,question_id,submitted_json,is_correct,points_awarded,time_taken,submitted_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (attempt_id,question_id) DO UPDATE SET submitted_json=EXCLUDED.submitted_json,
		  is_correct=EXCLUDED.is_correct, points_awarded=EXCLUDED.points_awarded,
		  time_taken=EXCLUDED.time_taken, submitted_at=EXCLUDED.submitted_at`,
		o.AttemptID, o.QuestionID, string(sj), o.IsCorrect, o.PointsAwarded, o.TimeTaken, o.SubmittedAt)
	return err
}

func (s *SQLStore) OutcomeCount(ctx context.Context, attemptID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM outcomes WHERE attempt_id=$1`, attemptID).Scan(&n)
	return n, err
}

func (s *SQLStore) SumOutcomePoints(ctx context.Context, attemptID string) (float64, error) {
	var sum float64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(points_awarded),0) FROM outcomes WHERE attempt_id=$1`, attemptID).Scan(&sum)
	return sum, err
}

func (s *SQLStore) SetAttemptPoints(ctx context.Context, attemptID string, points float64, completedAt int64) error {
	if completedAt != 0 {
		_, err := s.db.ExecContext(ctx, `UPDATE attempts SET points=$1, completed_at=$2 WHERE id=$3`,
			points, completedAt, attemptID)
		return err
	}
	_, err := s.db.ExecContext(ctx, `UPDATE attempts SET points=$1 WHERE id=$2`, points, attemptID)
	return err
}

func (s *SQLStore) StudentStats(ctx context.Context, studentID string) (Stats, error) {
	st := Stats{PointsByDrill: map[string]float64{}}
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.drill_id, a.points
		FROM attempts a
		JOIN (SELECT drill_id, MAX(run_number) AS latest FROM attempts WHERE student_id=$1 GROUP BY drill_id) l
		  ON a.drill_id=l.drill_id AND a.run_number=l.latest
		WHERE a.student_id=$1`, studentID)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var drillID string
		var pts float64
		if err := rows.Scan(&drillID, &pts); err != nil {
			return Stats{}, err
		}
		st.PointsByDrill[drillID] = pts
	}
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}
	if err := s.fillCounts(ctx, studentID, &st); err != nil {
		return Stats{}, err
	}
	return st, nil
}

func (s *SQLStore) ReplayStats(ctx context.Context, studentID string) (Stats, error) {
	st := Stats{PointsByDrill: map[string]float64{}}
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.drill_id, COALESCE(SUM(o.points_awarded),0)
		FROM attempts a
		JOIN (SELECT drill_id, MAX(run_number) AS latest FROM attempts WHERE student_id=$1 GROUP BY drill_id) l
		  ON a.drill_id=l.drill_id AND a.run_number=l.latest
		LEFT JOIN outcomes o ON o.attempt_id=a.id
		WHERE a.student_id=$1
		GROUP BY a.drill_id`, studentID)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var drillID string
		var pts float64
		if err := rows.Scan(&drillID, &pts); err != nil {
			return Stats{}, err
		}
		st.PointsByDrill[drillID] = pts
	}
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}
	if err := s.fillCounts(ctx, studentID, &st); err != nil {
		return Stats{}, err
	}
	return st, nil
}

func (s *SQLStore) fillCounts(ctx context.Context, studentID string, st *Stats) error {
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT drill_id) FROM attempts WHERE student_id=$1 AND completed_at IS NOT NULL`,
		studentID).Scan(&st.DrillsCompleted)
	if err != nil {
		return err
	}
	return s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM outcomes o JOIN attempts a ON o.attempt_id=a.id
		 WHERE a.student_id=$1 AND o.is_correct`,
		studentID).Scan(&st.CorrectAnswers)
}

func scanAttempt(row *sql.Row) (Attempt, error) {
	var a Attempt
	if err := row.Scan(&a.ID, &a.DrillID, &a.StudentID, &a.RunNumber, &a.Points, &a.StartedAt, &a.CompletedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, ErrNotFound
		}
		return Attempt{}, err
	}
	return a, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // sqlite
		strings.Contains(msg, "duplicate key") // postgres
}
