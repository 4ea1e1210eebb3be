package scheduler

import (
	"math/rand"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		MinCommitsPerDay: 4,
		MaxCommitsPerDay: 8,
		MinGapMinutes:    30,
		WeekendReduction: 0.5,
		Location:         time.UTC,
	}
}

func TestNextFireTimeIsAlwaysAfterNow(t *testing.T) {
	trigger := New(testConfig(), rand.New(rand.NewSource(1)))
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 50; i++ {
		next := trigger.NextFireTime(now)
		if !next.After(now) {
			t.Fatalf("NextFireTime(%v) = %v, want strictly after now", now, next)
		}
		now = next
	}
}

func TestNextFireTimeRespectsMinGap(t *testing.T) {
	trigger := New(testConfig(), rand.New(rand.NewSource(42)))
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	times := trigger.generateDailySchedule(day)
	for i := 1; i < len(times); i++ {
		gap := times[i].Sub(times[i-1])
		if gap < time.Duration(testConfig().MinGapMinutes)*time.Minute {
			t.Fatalf("gap between slot %d and %d is %v, below MinGapMinutes", i-1, i, gap)
		}
	}
}

func TestWeekendReductionLowersCommitCount(t *testing.T) {
	cfg := testConfig()
	cfg.MinCommitsPerDay = 10
	cfg.MaxCommitsPerDay = 10

	weekday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC) // Monday
	saturday := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	weekdayTrigger := New(cfg, rand.New(rand.NewSource(7)))
	weekendTrigger := New(cfg, rand.New(rand.NewSource(7)))

	weekdayTimes := weekdayTrigger.generateDailySchedule(weekday)
	weekendTimes := weekendTrigger.generateDailySchedule(saturday)

	if len(weekendTimes) >= len(weekdayTimes) {
		t.Fatalf("expected weekend schedule (%d) to have fewer slots than weekday (%d)", len(weekendTimes), len(weekdayTimes))
	}
	if len(weekendTimes) < 3 {
		t.Fatalf("expected weekend floor of 3 slots, got %d", len(weekendTimes))
	}
}

func TestAvoidHoursNeverChosen(t *testing.T) {
	cfg := testConfig()
	cfg.AvoidHours = []int{9, 10, 11, 14, 15, 16}
	trigger := New(cfg, rand.New(rand.NewSource(3)))

	for day := 0; day < 10; day++ {
		d := time.Date(2026, 3, 10+day, 0, 0, 0, 0, time.UTC)
		for _, ts := range trigger.generateDailySchedule(d) {
			for _, avoided := range cfg.AvoidHours {
				if ts.Hour() == avoided {
					t.Fatalf("fired at avoided hour %d: %v", avoided, ts)
				}
			}
		}
	}
}

func TestPreviewDoesNotMutateCache(t *testing.T) {
	trigger := New(testConfig(), rand.New(rand.NewSource(9)))
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	before := trigger.NextFireTime(now)
	_ = trigger.Preview(now, 5)
	after := trigger.NextFireTime(now)

	if !before.Equal(after) {
		t.Fatalf("Preview mutated trigger state: before=%v after=%v", before, after)
	}
}

func TestPreviewSpansRequestedDays(t *testing.T) {
	trigger := New(testConfig(), rand.New(rand.NewSource(11)))
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	times := trigger.Preview(now, 3)
	if len(times) == 0 {
		t.Fatal("expected at least one scheduled time across 3 days")
	}

	last := times[len(times)-1]
	if last.After(now.AddDate(0, 0, 3)) {
		t.Fatalf("preview produced a time beyond the requested window: %v", last)
	}
}

func TestWeightedChoiceRespectsZeroWeights(t *testing.T) {
	var weights [24]float64
	weights[5] = 1.0

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		if got := weightedChoice(rng, weights); got != 5 {
			t.Fatalf("weightedChoice with single nonzero weight at 5 returned %d", got)
		}
	}
}
