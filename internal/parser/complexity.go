package parser

import (
	"regexp"
	"strings"

	"github.com/chronicled/codewormd/internal/models"
)

// HeuristicComplexityAnalyzer computes cyclomatic complexity, nesting
// depth, and parameter count by counting branch keywords and indentation
// levels in the function's source text, rather than walking a real
// control-flow graph — the concrete stand-in for spec.md §1's external
// complexity analyzer.
type HeuristicComplexityAnalyzer struct{}

func NewHeuristicComplexityAnalyzer() *HeuristicComplexityAnalyzer {
	return &HeuristicComplexityAnalyzer{}
}

var branchKeywords = []string{
	"if ", "elif ", "else if", "for ", "while ", "case ", "catch ", "except ",
	"&&", "||", "and ", "or ", "?",
}

var paramListRe = regexp.MustCompile(`\(([^)]*)\)`)

func (c *HeuristicComplexityAnalyzer) Analyze(fn ParsedFunction) models.Complexity {
	lines := splitLines(fn.Source)

	cyclomatic := 1
	lower := strings.ToLower(fn.Source)
	for _, kw := range branchKeywords {
		cyclomatic += strings.Count(lower, kw)
	}

	maxIndent := 0
	baseIndent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := leadingWhitespace(line)
		if baseIndent == -1 {
			baseIndent = indent
			continue
		}
		rel := indent - baseIndent
		if rel > maxIndent {
			maxIndent = rel
		}
	}
	nesting := maxIndent / 4

	params := 0
	if len(lines) > 0 {
		if m := paramListRe.FindStringSubmatch(lines[0]); m != nil {
			body := strings.TrimSpace(m[1])
			if body != "" && body != "self" {
				params = len(strings.Split(body, ","))
			}
		}
	}

	return models.Complexity{
		Cyclomatic:     cyclomatic,
		NestingDepth:   nesting,
		ParameterCount: params,
		NLOC:           nonBlankLines(lines),
	}
}

func nonBlankLines(lines []string) int {
	n := 0
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			n++
		}
	}
	return n
}

// DetectMarkers scans source text for the textual-presence indicators the
// scorer's pattern bonus reacts to (spec.md §4.3): yield/async/context
// manager/decorator/etc. markers.
func DetectMarkers(source string, decorators []string, isAsync bool) models.Markers {
	lower := strings.ToLower(source)
	return models.Markers{
		DecoratorCount: len(decorators),
		IsAsync:        isAsync,
		IsContextMgr:   strings.Contains(source, "__enter__") || strings.Contains(source, "__exit__") || strings.Contains(lower, "with "),
		IsGenerator:    strings.Contains(lower, "yield "),
		IsMethodMarker: containsAny(decorators, "classmethod", "staticmethod"),
		IsProperty:     containsAny(decorators, "property"),
		IsAbstract:     containsAny(decorators, "abstractmethod", "abstract"),
		IsDataClass:    containsAny(decorators, "dataclass"),
	}
}

func containsAny(items []string, targets ...string) bool {
	for _, item := range items {
		for _, t := range targets {
			if strings.EqualFold(item, t) {
				return true
			}
		}
	}
	return false
}
