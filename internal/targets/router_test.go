package targets

import (
	"math/rand"
	"testing"

	"github.com/chronicled/codewormd/internal/models"
)

func TestSelectDocTypeWeightedDistribution(t *testing.T) {
	weights := map[models.DocType]int{
		models.DocFunction: 90,
		models.DocFile:     10,
	}
	rng := rand.New(rand.NewSource(1))

	counts := map[models.DocType]int{}
	for i := 0; i < 1000; i++ {
		counts[SelectDocType(weights, rng)]++
	}

	if counts[models.DocFunction] <= counts[models.DocFile] {
		t.Fatalf("expected function (weight 90) to be picked far more than file (weight 10): %v", counts)
	}
	if counts[models.DocFunction]+counts[models.DocFile] != 1000 {
		t.Fatalf("unexpected doc types selected: %v", counts)
	}
}

func TestSelectDocTypeSkipsUndispatchedFlavors(t *testing.T) {
	weights := map[models.DocType]int{
		models.DocWeeklySummary: 100,
	}
	if got := SelectDocType(weights, rand.New(rand.NewSource(1))); got != models.DocFunction {
		t.Fatalf("expected fallback to DocFunction when only undispatched flavors are weighted, got %v", got)
	}
}

func TestSelectDocTypeFallsBackOnEmptyWeights(t *testing.T) {
	if got := SelectDocType(nil, rand.New(rand.NewSource(1))); got != models.DocFunction {
		t.Fatalf("expected DocFunction fallback for nil weights, got %v", got)
	}
}

func TestSelectDocTypeFallsBackOnZeroWeights(t *testing.T) {
	weights := map[models.DocType]int{
		models.DocFunction: 0,
		models.DocFile:     0,
	}
	if got := SelectDocType(weights, rand.New(rand.NewSource(1))); got != models.DocFunction {
		t.Fatalf("expected DocFunction fallback when every weight is zero, got %v", got)
	}
}

func TestFindTargetsUndispatchedDocTypeReturnsNil(t *testing.T) {
	router := NewRouter(nil, nil, nil, nil, nil, nil)
	if got := router.FindTargets(models.DocWeeklySummary, models.RepoEntry{}, 10); got != nil {
		t.Fatalf("expected nil for an undispatched doc type, got %v", got)
	}
}
