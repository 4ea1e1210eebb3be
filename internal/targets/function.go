// Package targets implements the six specialized finders and the router
// from spec.md §4.4, ported from
// original_source/codeworm/analysis/targets.py and analyzer.py.
package targets

import (
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/chronicled/codewormd/internal/gitstats"
	"github.com/chronicled/codewormd/internal/models"
	"github.com/chronicled/codewormd/internal/parser"
	"github.com/chronicled/codewormd/internal/scanner"
	"github.com/chronicled/codewormd/internal/scorer"
)

// AnalyzerSettings mirrors spec.md §6's analyzer config block.
type AnalyzerSettings struct {
	MinLines        int
	MaxLines        int
	IncludePatterns []string
	ExcludePatterns []string
}

var functionSkipNames = map[string]bool{
	"__init__": true, "__str__": true, "__repr__": true,
	"main": true, "setUp": true, "tearDown": true,
}

// FunctionFinder is the analyzer engine: combines the scanner, parser,
// complexity analyzer, git stats, and scorer to produce function-level
// candidates. It backs both the function_doc flavor and, re-tagged, the
// security_review/performance_analysis/til perspective flavors.
type FunctionFinder struct {
	settings   AnalyzerSettings
	parser     parser.Parser
	complexity parser.ComplexityAnalyzer
	rng        *rand.Rand // nil means non-deterministic, matching the Python original
}

func NewFunctionFinder(settings AnalyzerSettings, p parser.Parser, c parser.ComplexityAnalyzer, rng *rand.Rand) *FunctionFinder {
	return &FunctionFinder{settings: settings, parser: p, complexity: c, rng: rng}
}

// Find scans repo, parses each eligible file, and returns ranked function
// candidates tagged as DocFunction.
func (f *FunctionFinder) Find(repo models.RepoEntry, limit int) []models.DocumentationTarget {
	sc := scanner.New(repo.Path, scanner.Config{
		IncludePatterns: f.settings.IncludePatterns,
		ExcludePatterns: f.settings.ExcludePatterns,
	})
	files, err := sc.Walk()
	if err != nil {
		return nil
	}

	gp := gitstats.NewProvider(repo.Path)

	var out []models.DocumentationTarget
	for _, sf := range files {
		source, err := os.ReadFile(sf.AbsPath)
		if err != nil {
			continue
		}

		parsed, err := f.parser.Parse(sf.AbsPath, sf.Language, string(source))
		if err != nil {
			continue
		}

		for _, fn := range parsed.Functions {
			if f.shouldSkip(fn) {
				continue
			}

			complexity := f.complexity.Analyze(fn)
			markers := parser.DetectMarkers(fn.Source, fn.Decorators, fn.IsAsync)
			gs := gp.Stats(sf.RelPath)

			score := scorer.ScoreCandidate(complexity, gs, markers, fn.Source, time.Now())

			snippet := models.CodeSnippet{
				Repo:          repo.Name,
				FilePath:      sf.AbsPath,
				FunctionName:  fn.Name,
				ClassName:     fn.ClassName,
				Language:      sf.Language,
				Source:        fn.Source,
				StartLine:     fn.StartLine,
				EndLine:       fn.EndLine,
				Complexity:    complexity,
				Markers:       markers,
				InterestScore: score.Total,
				DocType:       models.DocFunction,
			}

			if !scorer.WorthDocumenting(score.Total, snippet.LineCount()) {
				continue
			}

			out = append(out, models.DocumentationTarget{
				DocType:       models.DocFunction,
				Snippet:       snippet,
				SourceContext: snippet.Source,
				Metadata:      map[string]string{"relative_path": sf.RelPath},
			})

			if len(out) >= limit*3 {
				break
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Snippet.InterestScore > out[j].Snippet.InterestScore })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// shouldSkip implements spec.md §4.4's function eligibility rule,
// including the deliberately nondeterministic 30% survival rate for
// single-leading-underscore names called out as an Open Question
// (spec.md §9) — preserved as-is rather than "fixed", since guessing
// intent there would contradict the spec's own instruction not to.
func (f *FunctionFinder) shouldSkip(fn parser.ParsedFunction) bool {
	if len(fn.Name) > 1 && fn.Name[0] == '_' && fn.Name[1] != '_' {
		return f.random() > 0.3
	}

	if functionSkipNames[fn.Name] {
		return true
	}

	lineCount := fn.EndLine - fn.StartLine + 1
	if f.settings.MinLines > 0 && lineCount < f.settings.MinLines {
		return true
	}
	if f.settings.MaxLines > 0 && lineCount > f.settings.MaxLines {
		return true
	}

	return false
}

func (f *FunctionFinder) random() float64 {
	if f.rng != nil {
		return f.rng.Float64()
	}
	return rand.Float64()
}
