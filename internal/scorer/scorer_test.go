package scorer

import (
	"testing"
	"time"

	"github.com/chronicled/codewormd/internal/gitstats"
	"github.com/chronicled/codewormd/internal/models"
)

func TestScoreCandidateBounds(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	complexity := models.Complexity{Cyclomatic: 1, NestingDepth: 0, ParameterCount: 1, NLOC: 5}
	stats := gitstats.Stats{}
	score := ScoreCandidate(complexity, stats, models.Markers{}, "", now)

	if score.Total < 0 || score.Total > 100 {
		t.Fatalf("score out of [0,100] bounds: %v", score.Total)
	}
}

func TestScoreCandidateHighComplexityScoresHigher(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := gitstats.Stats{CommitCount30d: 5, LastModified: now}

	low := ScoreCandidate(models.Complexity{Cyclomatic: 1, NLOC: 5}, recent, models.Markers{}, "", now)
	high := ScoreCandidate(models.Complexity{Cyclomatic: 25, NestingDepth: 6, ParameterCount: 8, NLOC: 150}, recent, models.Markers{}, "", now)

	if high.Total <= low.Total {
		t.Fatalf("expected higher-complexity candidate to score higher: low=%v high=%v", low.Total, high.Total)
	}
}

func TestScoreCandidateCapsAt100(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	stats := gitstats.Stats{CommitCount30d: 100, LastModified: now}
	markers := models.Markers{
		DecoratorCount: 10, IsAsync: true, IsContextMgr: true, IsGenerator: true,
		IsMethodMarker: true, IsProperty: true, IsAbstract: true, IsDataClass: true,
	}
	complexity := models.Complexity{Cyclomatic: 1000, NestingDepth: 100, ParameterCount: 100, NLOC: 10000}

	score := ScoreCandidate(complexity, stats, markers, "", now)
	if score.Total != 100 {
		t.Fatalf("expected total clamped to 100, got %v", score.Total)
	}
}

func TestRatingBands(t *testing.T) {
	cases := []struct {
		total float64
		want  string
	}{
		{90, "highly_interesting"},
		{70, "highly_interesting"},
		{69.9, "interesting"},
		{50, "interesting"},
		{49.9, "moderate"},
		{30, "moderate"},
		{29.9, "low"},
		{0, "low"},
	}
	for _, c := range cases {
		got := Score{Total: c.total}.Rating()
		if got != c.want {
			t.Errorf("Rating(%v) = %q, want %q", c.total, got, c.want)
		}
	}
}

func TestWorthDocumenting(t *testing.T) {
	if !WorthDocumenting(25, 10) {
		t.Error("expected score=25, lines=10 to be worth documenting (boundary)")
	}
	if WorthDocumenting(24.9, 10) {
		t.Error("expected score below 25 to be rejected")
	}
	if WorthDocumenting(90, 9) {
		t.Error("expected line count below 10 to be rejected regardless of score")
	}
}

func TestDaysSinceModifiedSentinel(t *testing.T) {
	s := gitstats.Stats{}
	if got := s.DaysSinceModified(time.Now()); got != 999 {
		t.Fatalf("expected 999 sentinel for zero LastModified, got %d", got)
	}
}
