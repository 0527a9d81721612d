package drill

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode"
)

// CheckAnswer reports whether submitted is a correct answer for the question.
// Submissions arrive as decoded JSON and each variant tolerates the encodings
// its clients are known to send. Malformed input is never an error: grading
// fails closed and the answer is simply wrong.
func (q Question) CheckAnswer(submitted any) bool {
	switch q.Type {
	case TypeSelectOne:
		return q.checkSelectOne(submitted)
	case TypeFillBlank:
		return q.checkFillBlank(submitted)
	case TypeSentenceBuilder:
		return q.checkSentenceBuilder(submitted)
	case TypePictureWord:
		return q.checkPictureWord(submitted)
	case TypeMemoryMatch:
		return q.checkMemoryMatch(submitted)
	default:
		return false
	}
}

// SelectOne accepts the index of the chosen option (number or numeric
// string) or the option's text.
func (q Question) checkSelectOne(submitted any) bool {
	if idx, ok := asIndex(submitted); ok {
		return idx >= 0 && idx < len(q.Choices) && q.Choices[idx].IsCorrect
	}
	if s, ok := asText(submitted); ok {
		want := q.correctChoiceText()
		return want != "" && normalize(s) == want
	}
	return false
}

// FillBlank accepts the index of the chosen letter/word or the literal text,
// case-insensitive and trimmed.
func (q Question) checkFillBlank(submitted any) bool {
	if idx, ok := asIndex(submitted); ok {
		return idx >= 0 && idx < len(q.Choices) && q.Choices[idx].IsCorrect
	}
	s, ok := asText(submitted)
	if !ok {
		return false
	}
	if q.Answer != "" && normalize(s) == normalize(q.Answer) {
		return true
	}
	want := q.correctChoiceText()
	return want != "" && normalize(s) == want
}

// SentenceBuilder accepts a positional index map {"0":0,"1":1}, an index
// list, or a text list. All encodings must resolve, in blank order, to the
// target token sequence. A list of numeric strings is read as indices first
// and falls back to literal text only when the index reading does not fit
// the target length.
func (q Question) checkSentenceBuilder(submitted any) bool {
	if len(q.Targets) == 0 {
		return false
	}
	resolved, ok := q.resolveTokens(submitted)
	if !ok || len(resolved) != len(q.Targets) {
		return false
	}
	for i, tok := range resolved {
		if normalize(tok) != normalize(q.Targets[i].Text) {
			return false
		}
	}
	return true
}

func (q Question) resolveTokens(submitted any) ([]string, bool) {
	switch v := submitted.(type) {
	case map[string]any:
		return q.resolvePositionMap(v)
	case []any:
		return q.resolveList(v)
	case []string:
		anys := make([]any, len(v))
		for i, s := range v {
			anys[i] = s
		}
		return q.resolveList(anys)
	case []int:
		anys := make([]any, len(v))
		for i, n := range v {
			anys[i] = n
		}
		return q.resolveList(anys)
	default:
		return nil, false
	}
}

// resolvePositionMap reads {"<blank>": <target index>} in blank order.
func (q Question) resolvePositionMap(m map[string]any) ([]string, bool) {
	if len(m) != len(q.Targets) {
		return nil, false
	}
	out := make([]string, len(q.Targets))
	for pos := range q.Targets {
		v, ok := m[strconv.Itoa(pos)]
		if !ok {
			return nil, false
		}
		idx, ok := asIndex(v)
		if !ok || idx < 0 || idx >= len(q.Targets) {
			return nil, false
		}
		out[pos] = q.Targets[idx].Text
	}
	return out, true
}

func (q Question) resolveList(list []any) ([]string, bool) {
	if len(list) != len(q.Targets) {
		return nil, false
	}
	// index reading first
	if idxs, ok := allIndexes(list); ok {
		out := make([]string, 0, len(idxs))
		fits := true
		for _, idx := range idxs {
			if idx < 0 || idx >= len(q.Targets) {
				fits = false
				break
			}
			out = append(out, q.Targets[idx].Text)
		}
		if fits {
			return out, true
		}
		// inconsistent with target length: fall through to literal text
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		s, ok := asText(v)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// PictureWord compares the submitted word, case-insensitive and trimmed.
func (q Question) checkPictureWord(submitted any) bool {
	s, ok := asText(submitted)
	if !ok || q.Answer == "" {
		return false
	}
	return normalize(s) == normalize(q.Answer)
}

// MemoryMatch requires the submitted matched-card IDs to equal the full card
// ID set exactly, duplicates rejected, order ignored.
func (q Question) checkMemoryMatch(submitted any) bool {
	if len(q.Cards) == 0 {
		return false
	}
	ids, ok := asIntSlice(submitted)
	if !ok || len(ids) != len(q.Cards) {
		return false
	}
	want := make(map[int]bool, len(q.Cards))
	for _, c := range q.Cards {
		want[c.ID] = false
	}
	for _, id := range ids {
		seen, ok := want[id]
		if !ok || seen {
			return false
		}
		want[id] = true
	}
	return true
}

func (q Question) correctChoiceText() string {
	for _, c := range q.Choices {
		if c.IsCorrect {
			return normalize(c.Text)
		}
	}
	return ""
}

// --- submission decoding helpers ---

// asIndex accepts JSON numbers, Go ints and numeric strings.
func asIndex(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		if t != float64(int(t)) {
			return 0, false
		}
		return int(t), true
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func allIndexes(list []any) ([]int, bool) {
	out := make([]int, 0, len(list))
	for _, v := range list {
		idx, ok := asIndex(v)
		if !ok {
			return nil, false
		}
		out = append(out, idx)
	}
	return out, true
}

func asText(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		if t == float64(int(t)) {
			return strconv.Itoa(int(t)), true
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return "", false
	}
}

func asIntSlice(v any) ([]int, bool) {
	switch t := v.(type) {
	case []int:
		return t, true
	case []any:
		return allIndexes(t)
	default:
		return nil, false
	}
}

// normalize casefolds, trims, and collapses inner whitespace.
func normalize(s string) string {
	out := make([]rune, 0, len(s))
	space := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			space = true
		default:
			if space && len(out) > 0 {
				out = append(out, ' ')
			}
			space = false
			out = append(out, unicode.ToLower(r))
		}
	}
	return string(out)
}
