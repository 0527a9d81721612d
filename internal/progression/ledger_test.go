package progression_test

import (
	"context"
	"errors"
	"testing"

	"github.com/word-forge/wordforge-lms/internal/drill"
	"github.com/word-forge/wordforge-lms/internal/notify"
	"github.com/word-forge/wordforge-lms/internal/progression"
)

// fakeStats serves canned aggregates; replay mirrors the cached view unless a
// test overrides it to simulate drift.
type fakeStats struct {
	cached drill.Stats
	replay *drill.Stats
	err    error
}

func (f *fakeStats) StudentStats(context.Context, string) (drill.Stats, error) {
	return f.cached, f.err
}

func (f *fakeStats) ReplayStats(context.Context, string) (drill.Stats, error) {
	if f.replay != nil {
		return *f.replay, f.err
	}
	return f.cached, f.err
}

type recordSink struct {
	events []notify.BadgeEarned
}

func (r *recordSink) NotifyBadgeEarned(_ context.Context, ev notify.BadgeEarned) error {
	r.events = append(r.events, ev)
	return nil
}

func seeded(t *testing.T, badges ...progression.Badge) progression.BadgeStore {
	t.Helper()
	bs := progression.NewInMemoryStore()
	if err := bs.SeedBadges(context.Background(), badges); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return bs
}

func TestRecomputeSumsLatestRunPerDrill(t *testing.T) {
	stats := &fakeStats{cached: drill.Stats{
		PointsByDrill:   map[string]float64{"d1": 70, "d2": 30},
		DrillsCompleted: 2,
		CorrectAnswers:  5,
	}}
	ledger := progression.NewLedger(stats, seeded(t), &recordSink{})

	sum, err := ledger.Recompute(context.Background(), "s1")
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if sum.TotalPoints != 100 || sum.DrillsCompleted != 2 || sum.CorrectAnswers != 5 {
		t.Fatalf("summary = %+v", sum)
	}
}

func TestBadgeKindsEvaluated(t *testing.T) {
	badges := []progression.Badge{
		{ID: "pts", Kind: progression.RequirePoints, Threshold: 100},
		{ID: "done", Kind: progression.RequireDrillsCompleted, Threshold: 3},
		{ID: "right", Kind: progression.RequireCorrectAnswers, Threshold: 10},
	}
	cases := []struct {
		name  string
		stats drill.Stats
		want  []string
	}{
		{
			"nothing yet",
			drill.Stats{},
			nil,
		},
		{
			"points only",
			drill.Stats{PointsByDrill: map[string]float64{"d1": 100}},
			[]string{"pts"},
		},
		{
			"all three at threshold",
			drill.Stats{
				PointsByDrill:   map[string]float64{"d1": 60, "d2": 40},
				DrillsCompleted: 3,
				CorrectAnswers:  10,
			},
			[]string{"pts", "done", "right"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sink := &recordSink{}
			ledger := progression.NewLedger(&fakeStats{cached: tc.stats}, seeded(t, badges...), sink)
			sum, err := ledger.Recompute(context.Background(), "s1")
			if err != nil {
				t.Fatalf("recompute: %v", err)
			}
			got := make([]string, 0, len(sum.NewBadges))
			for _, b := range sum.NewBadges {
				got = append(got, b.ID)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("new badges = %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("new badges = %v, want %v", got, tc.want)
				}
			}
			if len(sink.events) != len(tc.want) {
				t.Fatalf("events = %d, want %d", len(sink.events), len(tc.want))
			}
		})
	}
}

func TestBadgeAwardedExactlyOnce(t *testing.T) {
	stats := &fakeStats{cached: drill.Stats{PointsByDrill: map[string]float64{"d1": 150}}}
	sink := &recordSink{}
	bs := seeded(t, progression.Badge{
		ID: "pts", Name: "Points", Kind: progression.RequirePoints, Threshold: 100,
	})
	ledger := progression.NewLedger(stats, bs, sink)
	ctx := context.Background()

	first, err := ledger.Recompute(ctx, "s1")
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if len(first.NewBadges) != 1 {
		t.Fatalf("first pass awarded %d badges", len(first.NewBadges))
	}

	for i := 0; i < 3; i++ {
		sum, err := ledger.Recompute(ctx, "s1")
		if err != nil {
			t.Fatalf("recompute %d: %v", i, err)
		}
		if len(sum.NewBadges) != 0 {
			t.Fatalf("pass %d re-awarded %v", i, sum.NewBadges)
		}
	}
	if len(sink.events) != 1 {
		t.Fatalf("events = %d, want exactly 1", len(sink.events))
	}
	if sink.events[0].BadgeID != "pts" || sink.events[0].Recipient != "s1" {
		t.Fatalf("event = %+v", sink.events[0])
	}
}

func TestEarnedBadgesSurviveStatDrop(t *testing.T) {
	stats := &fakeStats{cached: drill.Stats{PointsByDrill: map[string]float64{"d1": 100}}}
	bs := seeded(t, progression.Badge{ID: "pts", Kind: progression.RequirePoints, Threshold: 100})
	ledger := progression.NewLedger(stats, bs, &recordSink{})
	ctx := context.Background()

	if _, err := ledger.Recompute(ctx, "s1"); err != nil {
		t.Fatalf("recompute: %v", err)
	}

	// a retake lowers the latest-run total below the threshold
	stats.cached = drill.Stats{PointsByDrill: map[string]float64{"d1": 40}}
	sum, err := ledger.Recompute(ctx, "s1")
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if sum.TotalPoints != 40 {
		t.Fatalf("total = %v, want 40", sum.TotalPoints)
	}

	st, err := bs.GetState(ctx, "s1")
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if len(st.BadgeIDs) != 1 || st.BadgeIDs[0] != "pts" {
		t.Fatalf("earned set = %v, want [pts] (badges are one-way)", st.BadgeIDs)
	}
	if st.TotalPoints != 40 {
		t.Fatalf("state total = %v, want 40", st.TotalPoints)
	}
}

func TestRebuildMatchesRecompute(t *testing.T) {
	stats := &fakeStats{cached: drill.Stats{
		PointsByDrill:   map[string]float64{"d1": 80},
		DrillsCompleted: 1,
		CorrectAnswers:  4,
	}}
	bs := seeded(t, progression.Badge{ID: "first", Kind: progression.RequireDrillsCompleted, Threshold: 1})
	ledger := progression.NewLedger(stats, bs, &recordSink{})
	ctx := context.Background()

	fromCache, err := ledger.Recompute(ctx, "s1")
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	replayed, err := ledger.Rebuild(ctx, "s1")
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if replayed.TotalPoints != fromCache.TotalPoints ||
		replayed.DrillsCompleted != fromCache.DrillsCompleted ||
		replayed.CorrectAnswers != fromCache.CorrectAnswers {
		t.Fatalf("rebuild %+v diverges from recompute %+v", replayed, fromCache)
	}
}

func TestRebuildCorrectsDriftedCache(t *testing.T) {
	// cache says 200, raw outcomes say 60: rebuild trusts the outcomes
	replay := drill.Stats{PointsByDrill: map[string]float64{"d1": 60}}
	stats := &fakeStats{
		cached: drill.Stats{PointsByDrill: map[string]float64{"d1": 200}},
		replay: &replay,
	}
	bs := seeded(t)
	ledger := progression.NewLedger(stats, bs, &recordSink{})
	ctx := context.Background()

	sum, err := ledger.Rebuild(ctx, "s1")
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if sum.TotalPoints != 60 {
		t.Fatalf("total = %v, want 60 from replay", sum.TotalPoints)
	}
	st, _ := bs.GetState(ctx, "s1")
	if st.TotalPoints != 60 {
		t.Fatalf("state total = %v, want 60", st.TotalPoints)
	}
}

func TestRecomputePropagatesStatsError(t *testing.T) {
	boom := errors.New("stats backend down")
	ledger := progression.NewLedger(&fakeStats{err: boom}, seeded(t), &recordSink{})
	if _, err := ledger.Recompute(context.Background(), "s1"); !errors.Is(err, boom) {
		t.Fatalf("expected stats error, got %v", err)
	}
}
