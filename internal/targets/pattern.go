package targets

import (
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/chronicled/codewormd/internal/models"
	"github.com/chronicled/codewormd/internal/scanner"
)

type patternSignature struct {
	name        string
	description string
	indicators  []string
}

// patternSignatures is the fixed catalogue of design-pattern textual
// fingerprints, ported verbatim from
// original_source/codeworm/analysis/targets.py's PATTERN_SIGNATURES.
var patternSignatures = []patternSignature{
	{"singleton", "Singleton pattern", []string{"_instance", "__new__", "getInstance"}},
	{"factory", "Factory pattern", []string{"create_", "make_", "build_", "factory"}},
	{"observer", "Observer pattern", []string{"subscribe", "notify", "on_event", "emit", "listener", "addEventListener"}},
	{"decorator_pattern", "Decorator pattern", []string{"wrapper", "wraps", "functools.wraps", "@wraps"}},
	{"strategy", "Strategy pattern", []string{"Strategy", "execute", "set_strategy", "algorithm"}},
	{"middleware", "Middleware pattern", []string{"middleware", "next()", "dispatch", "use("}},
	{"repository_pattern", "Repository pattern", []string{"Repository", "get_by_id", "find_all", "save(", "delete("}},
}

// PatternFinder flags files exhibiting a recognizable design-pattern
// signature via substring-indicator counting. Ported from
// original_source/codeworm/analysis/targets.py's PatternTargetFinder.
type PatternFinder struct {
	settings AnalyzerSettings
}

func NewPatternFinder(settings AnalyzerSettings) *PatternFinder {
	return &PatternFinder{settings: settings}
}

func (f *PatternFinder) Find(repo models.RepoEntry, limit int) []models.DocumentationTarget {
	sc := scanner.New(repo.Path, scanner.Config{
		IncludePatterns: f.settings.IncludePatterns,
		ExcludePatterns: f.settings.ExcludePatterns,
	})
	files, err := sc.Walk()
	if err != nil {
		return nil
	}

	var out []models.DocumentationTarget

outer:
	for _, sf := range files {
		raw, err := os.ReadFile(sf.AbsPath)
		if err != nil {
			continue
		}
		source := string(raw)

		for _, sig := range patternSignatures {
			matches := 0
			for _, indicator := range sig.indicators {
				matches += strings.Count(source, indicator)
			}
			if matches < 2 {
				continue
			}

			score := float64(matches)*15 + 30
			if score > 100 {
				score = 100
			}

			snippet := models.CodeSnippet{
				Repo:          repo.Name,
				FilePath:      sf.AbsPath,
				FunctionName:  sig.name,
				Language:      sf.Language,
				Source:        truncate(source, snippetSourceCap),
				StartLine:     1,
				EndLine:       1,
				InterestScore: score,
				DocType:       models.DocPattern,
			}

			out = append(out, models.DocumentationTarget{
				DocType:       models.DocPattern,
				Snippet:       snippet,
				SourceContext: truncate(source, fileContextCap),
				Metadata: map[string]string{
					"pattern":             sig.name,
					"pattern_description": sig.description,
					"indicator_matches":   strconv.Itoa(matches),
					"relative_path":       sf.RelPath,
				},
			})

			if len(out) >= limit*2 {
				break outer
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Snippet.InterestScore > out[j].Snippet.InterestScore })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
