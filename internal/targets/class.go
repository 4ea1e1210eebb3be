package targets

import (
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/chronicled/codewormd/internal/models"
	"github.com/chronicled/codewormd/internal/parser"
	"github.com/chronicled/codewormd/internal/scanner"
)

// ClassFinder surfaces whole classes, scored on method count, length,
// docstring presence, and decorator count. Ported from
// original_source/codeworm/analysis/targets.py's ClassTargetFinder.
type ClassFinder struct {
	settings AnalyzerSettings
	parser   parser.Parser
}

func NewClassFinder(settings AnalyzerSettings, p parser.Parser) *ClassFinder {
	return &ClassFinder{settings: settings, parser: p}
}

func (f *ClassFinder) Find(repo models.RepoEntry, limit int) []models.DocumentationTarget {
	sc := scanner.New(repo.Path, scanner.Config{
		IncludePatterns: f.settings.IncludePatterns,
		ExcludePatterns: f.settings.ExcludePatterns,
	})
	files, err := sc.Walk()
	if err != nil {
		return nil
	}

	var out []models.DocumentationTarget
	for _, sf := range files {
		raw, err := os.ReadFile(sf.AbsPath)
		if err != nil {
			continue
		}

		parsed, err := f.parser.Parse(sf.AbsPath, sf.Language, string(raw))
		if err != nil {
			continue
		}

		for _, cls := range parsed.Classes {
			lineCount := cls.EndLine - cls.StartLine + 1
			if lineCount < 15 {
				continue
			}

			score := classScore(len(cls.Methods), lineCount, cls.HasDocstring, len(cls.Decorators))

			methodNames := make([]string, 0, len(cls.Methods))
			for _, m := range cls.Methods {
				methodNames = append(methodNames, m.Name)
			}

			snippet := models.CodeSnippet{
				Repo:          repo.Name,
				FilePath:      sf.AbsPath,
				ClassName:     cls.Name,
				Language:      sf.Language,
				Source:        truncate(cls.Source, snippetSourceCap),
				StartLine:     cls.StartLine,
				EndLine:       cls.EndLine,
				InterestScore: score,
				DocType:       models.DocClass,
			}

			out = append(out, models.DocumentationTarget{
				DocType:       models.DocClass,
				Snippet:       snippet,
				SourceContext: truncate(cls.Source, fileContextCap),
				Metadata: map[string]string{
					"method_count":  strconv.Itoa(len(cls.Methods)),
					"method_names":  strings.Join(methodNames, ", "),
					"has_docstring": strconv.FormatBool(cls.HasDocstring),
					"relative_path": sf.RelPath,
				},
			})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Snippet.InterestScore > out[j].Snippet.InterestScore })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func classScore(methodCount, lineCount int, hasDocstring bool, decoratorCount int) float64 {
	total := ratioCapped(float64(methodCount), 6)*35 +
		ratioCapped(float64(lineCount), 100)*25 +
		15 // base, matching the Python original's flat +15

	if hasDocstring {
		total += 10
	}

	decoratorBonus := float64(decoratorCount) * 5
	if decoratorBonus > 15 {
		decoratorBonus = 15
	}
	total += decoratorBonus

	if total > 100 {
		total = 100
	}
	return total
}
