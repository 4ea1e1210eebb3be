// Package scorer computes a bounded [0,100] interest score for a code
// snippet, combining structural complexity, git churn/recency, and
// textual pattern bonuses. Ported verbatim (weights, caps, bonus table)
// from original_source/codeworm/analysis/scoring.py's InterestScorer,
// which is the authoritative numeric source for spec.md §4.3.
package scorer

import (
	"time"

	"github.com/chronicled/codewormd/internal/gitstats"
	"github.com/chronicled/codewormd/internal/models"
)

const (
	complexityCap = 20.0
	lengthCap     = 100.0
	nestingCap    = 5.0
	paramCap      = 7.0
	churnCap      = 5.0
	noveltyDays   = 30.0
)

var weights = struct {
	complexity, length, nesting, parameters, churn, novelty float64
}{
	complexity: 0.35,
	length:     0.15,
	nesting:    0.15,
	parameters: 0.10,
	churn:      0.15,
	novelty:    0.10,
}

var patternBonus = struct {
	decorator, async, contextManager, generator, classMethod, property, abstract, dataClass float64
}{
	decorator:      5,
	async:          5,
	contextManager: 10,
	generator:      8,
	classMethod:    3,
	property:       3,
	abstract:       8,
	dataClass:      7,
}

// Score is the breakdown the core returns for one candidate.
type Score struct {
	Total          float64
	ComplexityPart float64
	LengthPart     float64
	NestingPart    float64
	ParameterPart  float64
	ChurnPart      float64
	NoveltyPart    float64
	PatternBonus   float64
}

// Rating mirrors the Python original's human-readable banding.
func (s Score) Rating() string {
	switch {
	case s.Total >= 70:
		return "highly_interesting"
	case s.Total >= 50:
		return "interesting"
	case s.Total >= 30:
		return "moderate"
	default:
		return "low"
	}
}

func clampRatio(value, cap float64) float64 {
	ratio := value / cap
	if ratio > 1 {
		ratio = 1
	}
	if ratio < 0 {
		ratio = 0
	}
	return ratio * 100
}

// ScoreCandidate computes the bounded interest score for one function candidate.
func ScoreCandidate(c models.Complexity, gs gitstats.Stats, markers models.Markers, source string, now time.Time) Score {
	complexityScore := clampRatio(float64(c.Cyclomatic), complexityCap)
	lengthScore := clampRatio(float64(c.NLOC), lengthCap)
	nestingScore := clampRatio(float64(c.NestingDepth), nestingCap)
	paramScore := clampRatio(float64(c.ParameterCount), paramCap)
	churnScore := clampRatio(float64(gs.CommitCount30d), churnCap)

	daysOld := float64(gs.DaysSinceModified(now))
	novelty := (noveltyDays - daysOld) / noveltyDays
	if novelty < 0 {
		novelty = 0
	}
	noveltyScore := novelty * 100

	bonus := calculatePatternBonus(markers)

	weighted := complexityScore*weights.complexity +
		lengthScore*weights.length +
		nestingScore*weights.nesting +
		paramScore*weights.parameters +
		churnScore*weights.churn +
		noveltyScore*weights.novelty +
		bonus

	total := weighted
	if total > 100 {
		total = 100
	}

	return Score{
		Total:          total,
		ComplexityPart: complexityScore * weights.complexity,
		LengthPart:     lengthScore * weights.length,
		NestingPart:    nestingScore * weights.nesting,
		ParameterPart:  paramScore * weights.parameters,
		ChurnPart:      churnScore * weights.churn,
		NoveltyPart:    noveltyScore * weights.novelty,
		PatternBonus:   bonus,
	}
}

func calculatePatternBonus(m models.Markers) float64 {
	bonus := 0.0

	if m.IsAsync {
		bonus += patternBonus.async
	}
	if m.DecoratorCount > 0 {
		bonus += float64(m.DecoratorCount) * patternBonus.decorator
	}
	if m.IsProperty {
		bonus += patternBonus.property
	}
	if m.IsMethodMarker {
		bonus += patternBonus.classMethod
	}
	if m.IsAbstract {
		bonus += patternBonus.abstract
	}
	if m.IsDataClass {
		bonus += patternBonus.dataClass
	}
	if m.IsGenerator {
		bonus += patternBonus.generator
	}
	if m.IsContextMgr {
		bonus += patternBonus.contextManager
	}

	return bonus
}

// WorthDocumenting applies spec.md §4.3's eligibility rule: total score
// of at least 25 and a line count of at least 10.
func WorthDocumenting(total float64, lineCount int) bool {
	return total >= 25 && lineCount >= 10
}
