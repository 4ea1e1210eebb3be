package targets

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/chronicled/codewormd/internal/models"
	"github.com/chronicled/codewormd/internal/parser"
)

const fixtureFunctionSource = `def compute_total(items, discount, region, apply_tax):
    total = 0
    for item in items:
        if item.price > 0:
            total += item.price
        elif item.price < 0:
            continue
        else:
            total += 0
    if discount > 0 and region == "US":
        total -= discount
    if apply_tax or region == "EU":
        total *= 1.2
    return total
`

func writeFixtureRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "billing.py"), []byte(fixtureFunctionSource), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return dir
}

func newTestFinder() *FunctionFinder {
	return NewFunctionFinder(
		AnalyzerSettings{MinLines: 3, MaxLines: 200},
		parser.NewHeuristicParser(),
		parser.NewHeuristicComplexityAnalyzer(),
		nil,
	)
}

func TestFunctionFinderFindsEligibleFunction(t *testing.T) {
	dir := writeFixtureRepo(t)
	finder := newTestFinder()

	targets := finder.Find(models.RepoEntry{Name: "fixture", Path: dir}, 10)
	if len(targets) == 0 {
		t.Fatal("expected at least one candidate from the fixture function")
	}

	target := targets[0]
	if target.Snippet.FunctionName != "compute_total" {
		t.Fatalf("expected compute_total, got %q", target.Snippet.FunctionName)
	}
	if target.DocType != models.DocFunction {
		t.Fatalf("expected DocFunction, got %v", target.DocType)
	}
	if target.Metadata["relative_path"] != "billing.py" {
		t.Fatalf("expected relative_path metadata, got %q", target.Metadata["relative_path"])
	}
}

func TestFunctionFinderResultsSortedByScoreDescending(t *testing.T) {
	dir := t.TempDir()
	source := fixtureFunctionSource + "\n\ndef trivial(x):\n    return x\n"
	if err := os.WriteFile(filepath.Join(dir, "mixed.py"), []byte(source), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	finder := newTestFinder()
	targets := finder.Find(models.RepoEntry{Name: "fixture", Path: dir}, 10)

	for i := 1; i < len(targets); i++ {
		if targets[i].Snippet.InterestScore > targets[i-1].Snippet.InterestScore {
			t.Fatalf("results not sorted descending by score at index %d", i)
		}
	}
}

func TestShouldSkipHardSkipList(t *testing.T) {
	finder := newTestFinder()
	for _, name := range []string{"__init__", "__str__", "__repr__", "main", "setUp", "tearDown"} {
		fn := parser.ParsedFunction{Name: name, StartLine: 1, EndLine: 20}
		if !finder.shouldSkip(fn) {
			t.Errorf("expected %q to be skipped", name)
		}
	}
}

func TestShouldSkipRespectsLineBounds(t *testing.T) {
	finder := newTestFinder()
	tooShort := parser.ParsedFunction{Name: "helper", StartLine: 1, EndLine: 1}
	if !finder.shouldSkip(tooShort) {
		t.Error("expected a function under MinLines to be skipped")
	}

	tooLong := parser.ParsedFunction{Name: "helper", StartLine: 1, EndLine: 300}
	if !finder.shouldSkip(tooLong) {
		t.Error("expected a function over MaxLines to be skipped")
	}

	justRight := parser.ParsedFunction{Name: "helper", StartLine: 1, EndLine: 10}
	if finder.shouldSkip(justRight) {
		t.Error("expected a function within bounds to not be skipped")
	}
}

func TestShouldSkipDunderNameNeverHitsProbabilisticBranch(t *testing.T) {
	finder := NewFunctionFinder(AnalyzerSettings{}, parser.NewHeuristicParser(), parser.NewHeuristicComplexityAnalyzer(), nil)

	// Double-underscore names are dunder-style, not single-leading-underscore,
	// and must never hit the 30%-survival probabilistic branch.
	dunder := parser.ParsedFunction{Name: "__hidden", StartLine: 1, EndLine: 10}
	if finder.shouldSkip(dunder) {
		t.Error("dunder-prefixed names must not be skipped as single-underscore names")
	}
}

func TestShouldSkipSingleUnderscoreUsesProvidedRNG(t *testing.T) {
	fn := parser.ParsedFunction{Name: "_internal_helper", StartLine: 1, EndLine: 10}

	seeded := NewFunctionFinder(AnalyzerSettings{}, parser.NewHeuristicParser(), parser.NewHeuristicComplexityAnalyzer(), rand.New(rand.NewSource(1)))

	// An identically seeded RNG predicts the finder's coin flip.
	want := rand.New(rand.NewSource(1)).Float64() > 0.3
	if got := seeded.shouldSkip(fn); got != want {
		t.Errorf("shouldSkip(%q) = %v, want %v from the provided RNG", fn.Name, got, want)
	}
}
