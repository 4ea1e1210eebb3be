// Package scheduler implements the human-like scheduling trigger from
// spec.md §4.5. Hour weights, rejection-sampling algorithm, and the
// weekend-reduction formula are ported from
// original_source/codeworm/scheduler/scheduler.py's HumanLikeTrigger,
// which is the authoritative numeric source for every constant spec.md
// only describes in prose.
package scheduler

import (
	"math"
	"math/rand"
	"sort"
	"time"
)

// hourWeights is the hard-coded per-hour base weight vector: low at
// night, peaks 09-11 and 14-16, second peak 20-22, zero 03-05.
var hourWeights = [24]float64{
	0: 0.02, 1: 0.01, 2: 0.005, 3: 0.0, 4: 0.0, 5: 0.0,
	6: 0.01, 7: 0.03, 8: 0.08, 9: 0.12, 10: 0.15, 11: 0.14,
	12: 0.08, 13: 0.10, 14: 0.14, 15: 0.15, 16: 0.14, 17: 0.10,
	18: 0.06, 19: 0.05, 20: 0.10, 21: 0.12, 22: 0.10, 23: 0.05,
}

// Config mirrors spec.md §6's schedule settings block.
type Config struct {
	MinCommitsPerDay int
	MaxCommitsPerDay int
	MinGapMinutes    int
	PreferHours      []int
	AvoidHours       []int
	WeekendReduction float64
	Location         *time.Location
}

// Trigger is the stateful next-fire-time generator. Not safe for
// concurrent use from multiple goroutines — the supervisor owns it
// exclusively per spec.md §9.
type Trigger struct {
	cfg Config
	rng *rand.Rand

	currentDay  time.Time // midnight, in cfg.Location
	dailyTimes  []time.Time
}

// New builds a Trigger. rng may be nil, in which case a fresh source
// seeded from the current time is used — matching the Python original's plain
// random.random() non-determinism by default (spec.md §9 Open Question:
// determinism requires an explicitly seeded RNG).
func New(cfg Config, rng *rand.Rand) *Trigger {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Trigger{cfg: cfg, rng: rng}
}

// NextFireTime returns the next scheduled timestamp strictly after now.
// Regenerates the daily cache when empty or when the local date has
// rolled over, per spec.md §4.5 steps 1-3.
func (t *Trigger) NextFireTime(now time.Time) time.Time {
	nowLocal := now.In(t.cfg.Location)
	today := truncateToDay(nowLocal)

	if t.currentDay.IsZero() || !t.currentDay.Equal(today) || len(t.dailyTimes) == 0 {
		t.dailyTimes = t.generateDailySchedule(today)
		t.currentDay = today
	}

	for _, scheduled := range t.dailyTimes {
		if scheduled.After(nowLocal) {
			return scheduled
		}
	}

	tomorrow := today.AddDate(0, 0, 1)
	t.dailyTimes = t.generateDailySchedule(tomorrow)
	t.currentDay = tomorrow

	if len(t.dailyTimes) > 0 {
		return t.dailyTimes[0]
	}
	return tomorrow // degenerate: no slots could be placed at all
}

// Preview regenerates schedules for [today, today+days) without mutating
// cache state, returning the flat sorted sequence (spec.md §4.5's
// read-only preview operation).
func (t *Trigger) Preview(now time.Time, days int) []time.Time {
	preview := New(t.cfg, t.rng)
	nowLocal := now.In(t.cfg.Location)
	today := truncateToDay(nowLocal)

	var out []time.Time
	for i := 0; i < days; i++ {
		day := today.AddDate(0, 0, i)
		out = append(out, preview.generateDailySchedule(day)...)
	}
	return out
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (t *Trigger) generateDailySchedule(day time.Time) []time.Time {
	n := t.cfg.MinCommitsPerDay + t.rng.Intn(t.cfg.MaxCommitsPerDay-t.cfg.MinCommitsPerDay+1)

	if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
		n = int(math.Round(float64(n) * t.cfg.WeekendReduction))
		if n < 3 {
			n = 3
		}
	}

	return t.generateTimes(day, n)
}

func (t *Trigger) generateTimes(day time.Time, count int) []time.Time {
	weights := t.buildHourWeights()

	var times []time.Time
	attempts := 0
	maxAttempts := count * 10

	for len(times) < count && attempts < maxAttempts {
		attempts++

		hour := weightedChoice(t.rng, weights)
		minute := t.rng.Intn(60)
		second := t.rng.Intn(60)

		candidate := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, second, 0, day.Location())

		if t.isValidTime(candidate, times) {
			times = append(times, candidate)
		}
	}

	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	return times
}

func (t *Trigger) buildHourWeights() [24]float64 {
	weights := hourWeights

	for _, h := range t.cfg.PreferHours {
		if h >= 0 && h < 24 {
			weights[h] *= 1.5
		}
	}
	for _, h := range t.cfg.AvoidHours {
		if h >= 0 && h < 24 {
			weights[h] = 0
		}
	}
	return weights
}

func (t *Trigger) isValidTime(candidate time.Time, existing []time.Time) bool {
	minGap := time.Duration(t.cfg.MinGapMinutes) * time.Minute
	for _, e := range existing {
		diff := candidate.Sub(e)
		if diff < 0 {
			diff = -diff
		}
		if diff < minGap {
			return false
		}
	}
	return true
}

// weightedChoice picks an hour index with probability proportional to
// its weight, the Go equivalent of Python's random.choices(weights=...).
func weightedChoice(rng *rand.Rand, weights [24]float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return rng.Intn(24)
	}

	r := rng.Float64() * total
	cumulative := 0.0
	for i, w := range weights {
		cumulative += w
		if r < cumulative {
			return i
		}
	}
	return 23
}
