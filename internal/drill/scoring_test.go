package drill_test

import (
	"testing"

	"github.com/word-forge/wordforge-lms/internal/drill"
)

func TestDefaultScoring(t *testing.T) {
	q := selectOne()
	cases := []struct {
		wrong int
		want  float64
	}{
		{0, 100},
		{1, 90},
		{3, 70},
		{10, 0},
		{15, 0}, // floors at zero
	}
	for _, tc := range cases {
		got := q.ComputeScore("2", drill.Meta{WrongAttempts: tc.wrong})
		if got != tc.want {
			t.Errorf("wrong_attempts=%d: score=%v, want %v", tc.wrong, got, tc.want)
		}
	}
}

func TestMemoryMatchScoring(t *testing.T) {
	q := drill.Question{
		Type: drill.TypeMemoryMatch,
		Cards: []drill.Card{
			{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4},
		},
	}
	cases := []struct {
		attempts int
		want     float64
	}{
		{2, 100},  // perfect: expected pairs = 2
		{0, 100},  // no penalty below the minimum
		{6, 80},   // 4 extra pairings
		{30, 0},   // floors at zero
	}
	for _, tc := range cases {
		got := q.ComputeScore([]any{1, 2, 3, 4}, drill.Meta{Attempts: tc.attempts})
		if got != tc.want {
			t.Errorf("attempts=%d: score=%v, want %v", tc.attempts, got, tc.want)
		}
	}
}
