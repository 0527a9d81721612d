// Package progression maintains each student's cumulative point total and
// evaluates badge unlocks as grading writes new outcomes.
package progression

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/word-forge/wordforge-lms/internal/drill"
	"github.com/word-forge/wordforge-lms/internal/notify"
)

// StatsSource supplies the per-student aggregates badges are judged
// against. The drill stores implement it.
type StatsSource interface {
	StudentStats(ctx context.Context, studentID string) (drill.Stats, error)
	ReplayStats(ctx context.Context, studentID string) (drill.Stats, error)
}

type Ledger struct {
	stats  StatsSource
	badges BadgeStore
	sink   notify.Sink
	now    func() time.Time
}

func NewLedger(stats StatsSource, badges BadgeStore, sink notify.Sink) *Ledger {
	if sink == nil {
		sink = notify.LogSink{}
	}
	return &Ledger{stats: stats, badges: badges, sink: sink, now: time.Now}
}

// Recompute re-derives the student's total points (latest run per drill) and
// evaluates every unearned badge. Safe to call repeatedly: with no new data
// it awards nothing and emits nothing. Badges only ever accumulate.
func (l *Ledger) Recompute(ctx context.Context, studentID string) (Summary, error) {
	st, err := l.stats.StudentStats(ctx, studentID)
	if err != nil {
		return Summary{}, err
	}
	return l.settle(ctx, studentID, st)
}

// Rebuild recomputes from raw outcome history, bypassing the attempts'
// points cache. Exists to prove the cache is not a source of truth.
func (l *Ledger) Rebuild(ctx context.Context, studentID string) (Summary, error) {
	st, err := l.stats.ReplayStats(ctx, studentID)
	if err != nil {
		return Summary{}, err
	}
	return l.settle(ctx, studentID, st)
}

func (l *Ledger) settle(ctx context.Context, studentID string, st drill.Stats) (Summary, error) {
	sum := Summary{
		TotalPoints:     st.TotalPoints(),
		DrillsCompleted: st.DrillsCompleted,
		CorrectAnswers:  st.CorrectAnswers,
	}

	earned, err := l.badges.EarnedBadgeIDs(ctx, studentID)
	if err != nil {
		return Summary{}, err
	}
	all, err := l.badges.ListBadges(ctx)
	if err != nil {
		return Summary{}, err
	}
	earnedAt := l.now().Unix()
	for _, b := range all {
		if earned[b.ID] || !satisfied(b, sum) {
			continue
		}
		if err := l.badges.AwardBadge(ctx, studentID, b.ID, earnedAt); err != nil {
			return Summary{}, err
		}
		earned[b.ID] = true
		sum.NewBadges = append(sum.NewBadges, b)
	}

	ids := make([]string, 0, len(earned))
	for id := range earned {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if err := l.badges.SaveState(ctx, State{
		StudentID:   studentID,
		TotalPoints: sum.TotalPoints,
		BadgeIDs:    ids,
		UpdatedAt:   earnedAt,
	}); err != nil {
		return Summary{}, err
	}

	// Notification failures never roll back an award.
	for _, b := range sum.NewBadges {
		ev := notify.BadgeEarned{
			Recipient:        studentID,
			BadgeID:          b.ID,
			BadgeName:        b.Name,
			BadgeDescription: b.Description,
			BadgeImageRef:    b.ImageRef,
		}
		if err := l.sink.NotifyBadgeEarned(ctx, ev); err != nil {
			log.Printf("notify badge %s for %s: %v", b.ID, studentID, err)
		}
	}
	return sum, nil
}

func satisfied(b Badge, sum Summary) bool {
	switch b.Kind {
	case RequirePoints:
		return sum.TotalPoints >= float64(b.Threshold)
	case RequireDrillsCompleted:
		return sum.DrillsCompleted >= b.Threshold
	case RequireCorrectAnswers:
		return sum.CorrectAnswers >= b.Threshold
	default:
		return false
	}
}
