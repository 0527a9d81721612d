package drill_test

import (
	"testing"

	"github.com/word-forge/wordforge-lms/internal/drill"
)

func selectOne() drill.Question {
	return drill.Question{
		ID:   "q1",
		Type: drill.TypeSelectOne,
		Choices: []drill.Choice{
			{Text: "a"}, {Text: "b"}, {Text: "c", IsCorrect: true}, {Text: "d"},
		},
	}
}

func TestSelectOneCheckAnswer(t *testing.T) {
	q := selectOne()
	cases := []struct {
		name      string
		submitted any
		want      bool
	}{
		{"index as string", "2", true},
		{"index as number", float64(2), true},
		{"wrong index", "1", false},
		{"choice text", "c", true},
		{"choice text cased", " C ", true},
		{"out of range", "9", false},
		{"negative", "-1", false},
		{"malformed map", map[string]any{"x": 1}, false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := q.CheckAnswer(tc.submitted); got != tc.want {
				t.Fatalf("CheckAnswer(%v) = %v, want %v", tc.submitted, got, tc.want)
			}
		})
	}
}

func TestCheckAnswerIsPure(t *testing.T) {
	q := selectOne()
	for i := 0; i < 3; i++ {
		if !q.CheckAnswer("2") {
			t.Fatalf("call %d: expected true", i)
		}
	}
}

func TestFillBlankCheckAnswer(t *testing.T) {
	q := drill.Question{
		ID:     "q2",
		Type:   drill.TypeFillBlank,
		Answer: "cat",
		Choices: []drill.Choice{
			{Text: "bat"}, {Text: "cat", IsCorrect: true}, {Text: "hat"},
		},
	}
	cases := []struct {
		name      string
		submitted any
		want      bool
	}{
		{"choice index", "1", true},
		{"wrong choice index", "0", false},
		{"text exact", "cat", true},
		{"text cased and padded", "  CaT ", true},
		{"wrong text", "hat", false},
		{"list is malformed", []any{"cat"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := q.CheckAnswer(tc.submitted); got != tc.want {
				t.Fatalf("CheckAnswer(%v) = %v, want %v", tc.submitted, got, tc.want)
			}
		})
	}
}

func TestSentenceBuilderCheckAnswer(t *testing.T) {
	q := drill.Question{
		ID:      "q3",
		Type:    drill.TypeSentenceBuilder,
		Targets: []drill.Token{{Text: "cat"}, {Text: "sat"}},
	}
	cases := []struct {
		name      string
		submitted any
		want      bool
	}{
		{"position map identity", map[string]any{"0": 0, "1": 1}, true},
		{"position map swapped", map[string]any{"0": 1, "1": 0}, false},
		{"index list", []any{float64(0), float64(1)}, true},
		{"numeric string indices", []any{"0", "1"}, true},
		{"text list in order", []any{"cat", "sat"}, true},
		{"text list wrong order", []any{"sat", "cat"}, false},
		{"too short", []any{"cat"}, false},
		{"map missing position", map[string]any{"0": 0}, false},
		{"map index out of range", map[string]any{"0": 0, "1": 5}, false},
		{"not a collection", "cat sat", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := q.CheckAnswer(tc.submitted); got != tc.want {
				t.Fatalf("CheckAnswer(%v) = %v, want %v", tc.submitted, got, tc.want)
			}
		})
	}
}

// Numeric-looking tokens: the index reading does not fit the target length,
// so the submission falls back to literal text comparison.
func TestSentenceBuilderNumericTokenFallback(t *testing.T) {
	q := drill.Question{
		ID:      "q4",
		Type:    drill.TypeSentenceBuilder,
		Targets: []drill.Token{{Text: "5"}, {Text: "7"}},
	}
	if !q.CheckAnswer([]any{"5", "7"}) {
		t.Fatal("literal numeric tokens should match after index fallback")
	}
	if q.CheckAnswer([]any{"7", "5"}) {
		t.Fatal("wrong order must not match")
	}
	// "0","1" are valid indices into the two targets and resolve to "5","7".
	if !q.CheckAnswer([]any{"0", "1"}) {
		t.Fatal("in-range numeric strings are indices first")
	}
}

func TestPictureWordCheckAnswer(t *testing.T) {
	q := drill.Question{ID: "q5", Type: drill.TypePictureWord, Answer: "Dog"}
	if !q.CheckAnswer("  dog ") {
		t.Fatal("case-insensitive trimmed compare expected")
	}
	if q.CheckAnswer("cat") {
		t.Fatal("wrong word accepted")
	}
	if q.CheckAnswer([]any{"dog"}) {
		t.Fatal("malformed submission must fail closed")
	}
}

func TestMemoryMatchCheckAnswer(t *testing.T) {
	q := drill.Question{
		ID:   "q6",
		Type: drill.TypeMemoryMatch,
		Cards: []drill.Card{
			{ID: 1, PairID: 1}, {ID: 2, PairID: 1},
			{ID: 3, PairID: 2}, {ID: 4, PairID: 2},
		},
	}
	cases := []struct {
		name      string
		submitted any
		want      bool
	}{
		{"in order", []any{float64(1), float64(2), float64(3), float64(4)}, true},
		{"any order", []any{float64(4), float64(2), float64(1), float64(3)}, true},
		{"string ids", []any{"1", "2", "3", "4"}, true},
		{"incomplete", []any{float64(1), float64(2), float64(3)}, false},
		{"duplicate", []any{float64(1), float64(1), float64(2), float64(3)}, false},
		{"unknown id", []any{float64(1), float64(2), float64(3), float64(9)}, false},
		{"not a list", "1,2,3,4", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := q.CheckAnswer(tc.submitted); got != tc.want {
				t.Fatalf("CheckAnswer(%v) = %v, want %v", tc.submitted, got, tc.want)
			}
		})
	}
}
