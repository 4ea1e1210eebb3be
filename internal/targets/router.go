package targets

import (
	"math/rand"
	"time"

	"github.com/chronicled/codewormd/internal/models"
)

// Router dispatches a requested doc type to the finder that handles it.
// Ported from original_source/codeworm/analysis/targets.py's
// TargetRouter, including the function_doc shortcut that bypasses the
// perspective finder and calls the analyzer directly.
type Router struct {
	function    *FunctionFinder
	file        *FileFinder
	class       *ClassFinder
	module      *ModuleFinder
	evolution   *EvolutionFinder
	pattern     *PatternFinder
	perspective *PerspectiveFinder
}

func NewRouter(function *FunctionFinder, file *FileFinder, class *ClassFinder, module *ModuleFinder, evolution *EvolutionFinder, pattern *PatternFinder) *Router {
	return &Router{
		function:    function,
		file:        file,
		class:       class,
		module:      module,
		evolution:   evolution,
		pattern:     pattern,
		perspective: NewPerspectiveFinder(function),
	}
}

// FindTargets dispatches docType to its finder, returning an empty slice
// for any flavor the router doesn't recognize.
func (r *Router) FindTargets(docType models.DocType, repo models.RepoEntry, limit int) []models.DocumentationTarget {
	switch docType {
	case models.DocFunction:
		return r.function.Find(repo, limit)
	case models.DocFile:
		return r.file.Find(repo, limit)
	case models.DocClass:
		return r.class.Find(repo, limit)
	case models.DocModule:
		return r.module.Find(repo, limit)
	case models.DocEvolution:
		return r.evolution.Find(repo, limit)
	case models.DocPattern:
		return r.pattern.Find(repo, limit)
	case models.DocSecurityReview, models.DocPerformanceReview, models.DocTIL:
		return r.perspective.Find(repo, docType, limit)
	default:
		return nil
	}
}

// SelectDocType picks a flavor at random, weighted by the configured
// integer weights. Falls back to DocFunction when weights contains no
// recognized flavor. Ported from
// original_source/codeworm/analysis/targets.py's select_doc_type.
func SelectDocType(weights map[models.DocType]int, rng *rand.Rand) models.DocType {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	var types []models.DocType
	var weightList []int
	total := 0

	for dt, w := range weights {
		if models.UndispatchedFlavors[dt] {
			continue
		}
		if !isKnownDocType(dt) || w <= 0 {
			continue
		}
		types = append(types, dt)
		weightList = append(weightList, w)
		total += w
	}

	if len(types) == 0 || total <= 0 {
		return models.DocFunction
	}

	r := rng.Intn(total)
	cumulative := 0
	for i, w := range weightList {
		cumulative += w
		if r < cumulative {
			return types[i]
		}
	}
	return types[len(types)-1]
}

var knownDocTypes = map[models.DocType]bool{
	models.DocFunction:          true,
	models.DocSecurityReview:    true,
	models.DocPerformanceReview: true,
	models.DocTIL:               true,
	models.DocFile:              true,
	models.DocClass:             true,
	models.DocModule:            true,
	models.DocEvolution:         true,
	models.DocPattern:           true,
	models.DocWeeklySummary:     true,
	models.DocMonthlySummary:    true,
}

func isKnownDocType(dt models.DocType) bool { return knownDocTypes[dt] }
