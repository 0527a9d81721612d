package progression

import "context"

// RequirementKind names the single predicate a badge is unlocked by.
type RequirementKind string

const (
	RequirePoints          RequirementKind = "points"
	RequireDrillsCompleted RequirementKind = "drills_completed"
	RequireCorrectAnswers  RequirementKind = "correct_answers"
)

// Badge is a one-way achievement: earned the first time the student's state
// crosses Threshold for Kind, never revoked.
type Badge struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	ImageRef    string          `json:"image,omitempty"`
	Kind        RequirementKind `json:"kind"`
	Threshold   int             `json:"threshold"`
}

// State is the cached progression snapshot per student. TotalPoints is
// always recomputable from outcome history; the earned-badge set only grows.
type State struct {
	StudentID   string   `json:"student_id"`
	TotalPoints float64  `json:"total_points"`
	BadgeIDs    []string `json:"badges"`
	UpdatedAt   int64    `json:"updated_at"`
}

// Summary is what one recompute pass reports back to the caller.
type Summary struct {
	TotalPoints     float64 `json:"total_points"`
	DrillsCompleted int     `json:"drills_completed"`
	CorrectAnswers  int     `json:"correct_answers"`
	NewBadges       []Badge `json:"new_badges,omitempty"`
}

// BadgeStore persists badge definitions, awards and the cached state.
type BadgeStore interface {
	ListBadges(ctx context.Context) ([]Badge, error)
	SeedBadges(ctx context.Context, badges []Badge) error
	EarnedBadgeIDs(ctx context.Context, studentID string) (map[string]bool, error)
	// AwardBadge is idempotent: awarding an already-earned badge is a no-op.
	AwardBadge(ctx context.Context, studentID, badgeID string, earnedAt int64) error
	SaveState(ctx context.Context, st State) error
	GetState(ctx context.Context, studentID string) (State, error)
}
