package drill

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// memoryStore keeps everything in maps. Used by tests and offline demos;
// production runs on the SQL store.
type memoryStore struct {
	mu          sync.RWMutex
	drills      map[string]Drill
	enrollments map[string]map[string]bool // studentID -> drillID set
	attempts    map[string]Attempt
	outcomes    map[string]map[string]Outcome // attemptID -> questionID -> outcome
}

func NewInMemoryStore() Store {
	return &memoryStore{
		drills:      map[string]Drill{},
		enrollments: map[string]map[string]bool{},
		attempts:    map[string]Attempt{},
		outcomes:    map[string]map[string]Outcome{},
	}
}

func (m *memoryStore) PutDrill(_ context.Context, d Drill) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drills[d.ID] = d
	return nil
}

func (m *memoryStore) GetDrill(_ context.Context, id string) (Drill, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.drills[id]
	if !ok {
		return Drill{}, fmt.Errorf("drill %s: %w", id, ErrNotFound)
	}
	return d, nil
}

func (m *memoryStore) GetQuestion(_ context.Context, drillID, questionID string) (Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.drills[drillID]
	if !ok {
		return Question{}, fmt.Errorf("drill %s: %w", drillID, ErrNotFound)
	}
	for _, q := range d.Questions {
		if q.ID == questionID {
			return q, nil
		}
	}
	return Question{}, fmt.Errorf("question %s: %w", questionID, ErrNotFound)
}

func (m *memoryStore) QuestionCount(_ context.Context, drillID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.drills[drillID]
	if !ok {
		return 0, fmt.Errorf("drill %s: %w", drillID, ErrNotFound)
	}
	return len(d.Questions), nil
}

func (m *memoryStore) Enroll(_ context.Context, studentID, drillID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.enrollments[studentID]
	if !ok {
		set = map[string]bool{}
		m.enrollments[studentID] = set
	}
	set[drillID] = true
	return nil
}

func (m *memoryStore) IsEnrolled(_ context.Context, studentID, drillID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enrollments[studentID][drillID], nil
}

func (m *memoryStore) LatestAttempt(_ context.Context, studentID, drillID string) (Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest Attempt
	found := false
	for _, a := range m.attempts {
		if a.StudentID != studentID || a.DrillID != drillID {
			continue
		}
		if !found || a.RunNumber > latest.RunNumber {
			latest = a
			found = true
		}
	}
	if !found {
		return Attempt{}, ErrNotFound
	}
	return latest, nil
}

func (m *memoryStore) CreateAttempt(_ context.Context, a Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.attempts {
		if existing.StudentID == a.StudentID && existing.DrillID == a.DrillID && existing.RunNumber == a.RunNumber {
			return fmt.Errorf("duplicate run %d for student %s drill %s: %w",
				a.RunNumber, a.StudentID, a.DrillID, ErrConsistency)
		}
	}
	m.attempts[a.ID] = a
	return nil
}

func (m *memoryStore) GetAttempt(_ context.Context, id string) (Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attempts[id]
	if !ok {
		return Attempt{}, fmt.Errorf("attempt %s: %w", id, ErrNotFound)
	}
	return a, nil
}

func (m *memoryStore) ListAttempts(_ context.Context, opts AttemptListOpts) ([]Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Attempt, 0)
	for _, a := range m.attempts {
		if opts.DrillID != "" && a.DrillID != opts.DrillID {
			continue
		}
		if opts.StudentID != "" && a.StudentID != opts.StudentID {
			continue
		}
		if opts.Status == "in_progress" && a.CompletedAt != 0 {
			continue
		}
		if opts.Status == "completed" && a.CompletedAt == 0 {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt > out[j].StartedAt })
	if opts.Offset > 0 {
		if opts.Offset >= len(out) {
			return []Attempt{}, nil
		}
		out = out[opts.Offset:]
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (m *memoryStore) UpsertOutcome(_ context.Context, o Outcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.attempts[o.AttemptID]; !ok {
		return fmt.Errorf("attempt %s: %w", o.AttemptID, ErrNotFound)
	}
	byQ, ok := m.outcomes[o.AttemptID]
	if !ok {
		byQ = map[string]Outcome{}
		m.outcomes[o.AttemptID] = byQ
	}
	byQ[o.QuestionID] = o
	return nil
}

func (m *memoryStore) OutcomeCount(_ context.Context, attemptID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.outcomes[attemptID]), nil
}

func (m *memoryStore) SumOutcomePoints(_ context.Context, attemptID string) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum float64
	for _, o := range m.outcomes[attemptID] {
		sum += o.PointsAwarded
	}
	return sum, nil
}

func (m *memoryStore) SetAttemptPoints(_ context.Context, attemptID string, points float64, completedAt int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[attemptID]
	if !ok {
		return fmt.Errorf("attempt %s: %w", attemptID, ErrNotFound)
	}
	a.Points = points
	if completedAt != 0 {
		a.CompletedAt = completedAt
	}
	m.attempts[attemptID] = a
	return nil
}

func (m *memoryStore) StudentStats(_ context.Context, studentID string) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st := Stats{PointsByDrill: map[string]float64{}}
	latestRun := map[string]int{}
	completed := map[string]bool{}
	for _, a := range m.attempts {
		if a.StudentID != studentID {
			continue
		}
		if a.RunNumber > latestRun[a.DrillID] {
			latestRun[a.DrillID] = a.RunNumber
			st.PointsByDrill[a.DrillID] = a.Points
		}
		if a.CompletedAt != 0 {
			completed[a.DrillID] = true
		}
		for _, o := range m.outcomes[a.ID] {
			if o.IsCorrect {
				st.CorrectAnswers++
			}
		}
	}
	st.DrillsCompleted = len(completed)
	return st, nil
}

func (m *memoryStore) ReplayStats(_ context.Context, studentID string) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st := Stats{PointsByDrill: map[string]float64{}}
	latestRun := map[string]int{}
	latestAttempt := map[string]string{}
	completed := map[string]bool{}
	for _, a := range m.attempts {
		if a.StudentID != studentID {
			continue
		}
		if a.RunNumber > latestRun[a.DrillID] {
			latestRun[a.DrillID] = a.RunNumber
			latestAttempt[a.DrillID] = a.ID
		}
		if d, ok := m.drills[a.DrillID]; ok && len(d.Questions) > 0 && len(m.outcomes[a.ID]) >= len(d.Questions) {
			completed[a.DrillID] = true
		}
		for _, o := range m.outcomes[a.ID] {
			if o.IsCorrect {
				st.CorrectAnswers++
			}
		}
	}
	for drillID, attemptID := range latestAttempt {
		var sum float64
		for _, o := range m.outcomes[attemptID] {
			sum += o.PointsAwarded
		}
		st.PointsByDrill[drillID] = sum
	}
	st.DrillsCompleted = len(completed)
	return st, nil
}
