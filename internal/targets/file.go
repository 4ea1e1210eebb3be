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

const snippetSourceCap = 4000
const fileContextCap = 6000

// FileFinder surfaces whole files worth documenting, scored on size,
// function density, and import count. Ported from
// original_source/codeworm/analysis/targets.py's FileTargetFinder.
type FileFinder struct {
	settings AnalyzerSettings
	parser   parser.Parser
}

func NewFileFinder(settings AnalyzerSettings, p parser.Parser) *FileFinder {
	return &FileFinder{settings: settings, parser: p}
}

func (f *FileFinder) Find(repo models.RepoEntry, limit int) []models.DocumentationTarget {
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
		source := string(raw)
		lineCount := strings.Count(source, "\n") + 1
		if lineCount < 20 {
			continue
		}

		parsed, err := f.parser.Parse(sf.AbsPath, sf.Language, source)
		if err != nil {
			continue
		}
		funcCount := len(parsed.Functions)
		importCount := strings.Count(source, "import ")

		score := fileScore(lineCount, funcCount, len(raw), importCount)
		if score < 20 {
			continue
		}

		snippetSource := truncate(source, snippetSourceCap)
		snippet := models.CodeSnippet{
			Repo:          repo.Name,
			FilePath:      sf.AbsPath,
			Language:      sf.Language,
			Source:        snippetSource,
			StartLine:     1,
			EndLine:       lineCount,
			InterestScore: score,
			DocType:       models.DocFile,
		}

		out = append(out, models.DocumentationTarget{
			DocType:       models.DocFile,
			Snippet:       snippet,
			SourceContext: truncate(source, fileContextCap),
			Metadata: map[string]string{
				"line_count":     strconv.Itoa(lineCount),
				"function_count": strconv.Itoa(funcCount),
				"relative_path":  sf.RelPath,
			},
		})

		if len(out) >= limit*2 {
			break
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Snippet.InterestScore > out[j].Snippet.InterestScore })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func fileScore(lineCount, funcCount, byteSize, importCount int) float64 {
	total := ratioCapped(float64(lineCount), 200)*30 +
		ratioCapped(float64(funcCount), 8)*30 +
		ratioCapped(float64(byteSize), 5000)*20 +
		ratioCapped(float64(importCount), 10)*20
	if total > 100 {
		total = 100
	}
	return total
}

func ratioCapped(value, cap float64) float64 {
	r := value / cap
	if r > 1 {
		r = 1
	}
	return r
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
