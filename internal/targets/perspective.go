package targets

import (
	"strconv"

	"github.com/chronicled/codewormd/internal/models"
)

// PerspectiveFinder re-tags the same candidates the FunctionFinder
// produces under a different documentation flavor (security_review,
// performance_analysis, til), using the full untruncated snippet source
// as context, as the function finder does. Ported
// from original_source/codeworm/analysis/targets.py's
// FunctionPerspectiveFinder.
type PerspectiveFinder struct {
	analyzer *FunctionFinder
}

func NewPerspectiveFinder(analyzer *FunctionFinder) *PerspectiveFinder {
	return &PerspectiveFinder{analyzer: analyzer}
}

func (f *PerspectiveFinder) Find(repo models.RepoEntry, docType models.DocType, limit int) []models.DocumentationTarget {
	candidates := f.analyzer.Find(repo, limit)

	out := make([]models.DocumentationTarget, 0, len(candidates))
	for _, c := range candidates {
		snippet := c.Snippet
		snippet.DocType = docType

		out = append(out, models.DocumentationTarget{
			DocType:       docType,
			Snippet:       snippet,
			SourceContext: snippet.Source,
			Metadata: map[string]string{
				"complexity":      strconv.Itoa(snippet.Complexity.Cyclomatic),
				"nesting_depth":   strconv.Itoa(snippet.Complexity.NestingDepth),
				"parameter_count": strconv.Itoa(snippet.Complexity.ParameterCount),
				"relative_path":   c.Metadata["relative_path"],
			},
		})
	}
	return out
}
