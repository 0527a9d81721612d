package progression

// DefaultBadges is the stock catalog seeded on first boot. Teachers can
// extend it through storage; these five ship with the platform.
func DefaultBadges() []Badge {
	return []Badge{
		{
			ID:          "pathfinder-prodigy",
			Name:        "Pathfinder Prodigy",
			Description: "Completed your first vocabulary drill.",
			ImageRef:    "badges/badge1.png",
			Kind:        RequireDrillsCompleted,
			Threshold:   1,
		},
		{
			ID:          "vocabulary-rookie",
			Name:        "Vocabulary Rookie",
			Description: "Awesome! You have completed 3 Drills!",
			ImageRef:    "badges/badge2.png",
			Kind:        RequireDrillsCompleted,
			Threshold:   3,
		},
		{
			ID:          "epic-achiever",
			Name:        "Epic Achiever",
			Description: "Amazing! You have 10 correct answers!",
			ImageRef:    "badges/badge3.png",
			Kind:        RequireCorrectAnswers,
			Threshold:   10,
		},
		{
			ID:          "the-noble-mind",
			Name:        "The Noble Mind",
			Description: "Astonishing! You have completed 5 Drills!",
			ImageRef:    "badges/badge4.png",
			Kind:        RequireDrillsCompleted,
			Threshold:   5,
		},
		{
			ID:          "knowledge-master",
			Name:        "Knowledge Master",
			Description: "Extraordinary! You have earned 1000 points!",
			ImageRef:    "badges/badge5.png",
			Kind:        RequirePoints,
			Threshold:   1000,
		},
	}
}
