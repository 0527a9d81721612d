package progression

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu     sync.RWMutex
	badges []Badge
	earned map[string]map[string]bool // studentID -> badgeID set
	states map[string]State
}

func NewInMemoryStore() BadgeStore {
	return &memoryStore{
		earned: map[string]map[string]bool{},
		states: map[string]State{},
	}
}

func (m *memoryStore) ListBadges(context.Context) ([]Badge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Badge, len(m.badges))
	copy(out, m.badges)
	return out, nil
}

func (m *memoryStore) SeedBadges(_ context.Context, badges []Badge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	have := map[string]bool{}
	for _, b := range m.badges {
		have[b.ID] = true
	}
	for _, b := range badges {
		if !have[b.ID] {
			m.badges = append(m.badges, b)
		}
	}
	return nil
}

func (m *memoryStore) EarnedBadgeIDs(_ context.Context, studentID string) (map[string]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := map[string]bool{}
	for id := range m.earned[studentID] {
		out[id] = true
	}
	return out, nil
}

func (m *memoryStore) AwardBadge(_ context.Context, studentID, badgeID string, _ int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.earned[studentID]
	if !ok {
		set = map[string]bool{}
		m.earned[studentID] = set
	}
	set[badgeID] = true
	return nil
}

func (m *memoryStore) SaveState(_ context.Context, st State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[st.StudentID] = st
	return nil
}

func (m *memoryStore) GetState(_ context.Context, studentID string) (State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.states[studentID]
	if !ok {
		return State{StudentID: studentID}, nil
	}
	return st, nil
}
