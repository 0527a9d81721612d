package drill

// ComputeScore returns the server-side score for a correct answer. Incorrect
// answers are worth 0 regardless; callers gate on CheckAnswer first.
//
// Default policy: a flat 10-point penalty per wrong attempt, floored at zero.
// MemoryMatch instead penalizes pairing attempts beyond the minimum needed
// to clear the board, 5 points each.
func (q Question) ComputeScore(submitted any, meta Meta) float64 {
	switch q.Type {
	case TypeMemoryMatch:
		expectedPairs := len(q.Cards) / 2
		incorrect := meta.Attempts - expectedPairs
		if incorrect < 0 {
			incorrect = 0
		}
		return clampScore(100 - 5*float64(incorrect))
	default:
		wrong := meta.WrongAttempts
		if wrong < 0 {
			wrong = 0
		}
		return clampScore(100 - 10*float64(wrong))
	}
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	return s
}
