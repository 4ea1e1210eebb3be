package prompts

import (
	"strings"
	"testing"

	"github.com/chronicled/codewormd/internal/models"
)

func sampleTarget() models.DocumentationTarget {
	return models.DocumentationTarget{
		DocType: models.DocFunction,
		Snippet: models.CodeSnippet{
			Repo:         "example/repo",
			FilePath:     "pkg/widget.py",
			FunctionName: "compute_total",
			Language:     models.LanguagePython,
			Source:       "def compute_total(items):\n    return sum(i.price for i in items)",
			StartLine:    10,
			EndLine:      11,
			Complexity:   models.Complexity{Cyclomatic: 3},
			Markers:      models.Markers{IsAsync: true, DecoratorCount: 1},
		},
	}
}

func TestBuildDocumentationPromptIncludesLanguageHint(t *testing.T) {
	system, user, err := BuildDocumentationPrompt(sampleTarget())
	if err != nil {
		t.Fatalf("BuildDocumentationPrompt returned error: %v", err)
	}
	if !strings.Contains(system, "Python") {
		t.Errorf("expected system prompt to include the Python language hint, got: %s", system)
	}
	if !strings.Contains(user, "compute_total") {
		t.Errorf("expected user prompt to name the function, got: %s", user)
	}
	if !strings.Contains(user, "decorators") {
		t.Errorf("expected decorator suffix for a decorated function, got: %s", user)
	}
	if !strings.Contains(user, "asynchronous") {
		t.Errorf("expected async suffix for an async function, got: %s", user)
	}
}

func TestBuildDocumentationPromptTruncatesSource(t *testing.T) {
	target := sampleTarget()
	target.Snippet.Source = strings.Repeat("Z", maxSourceChars+500)

	_, user, err := BuildDocumentationPrompt(target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Count(user, "Z") > maxSourceChars {
		t.Errorf("expected source truncated to %d chars, got %d", maxSourceChars, strings.Count(user, "Z"))
	}
}

func TestBuildDocumentationPromptUnknownLanguageHasNoHint(t *testing.T) {
	target := sampleTarget()
	target.Snippet.Language = models.Language("cobol")

	system, _, err := BuildDocumentationPrompt(target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if system != defaultSystemPrompt {
		t.Errorf("expected bare default system prompt for unknown language, got: %s", system)
	}
}

func TestBuildCommitMessagePromptFixedSystem(t *testing.T) {
	system, user, err := BuildCommitMessagePrompt(sampleTarget(), "This function sums item prices.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if system != "You generate natural, human sounding git commit messages. Be concise and specific." {
		t.Errorf("commit message system prompt changed unexpectedly: %s", system)
	}
	if !strings.Contains(user, "compute_total") {
		t.Errorf("expected commit prompt to name the target: %s", user)
	}
}

func TestBuildCommitMessagePromptTruncatesDocumentation(t *testing.T) {
	longDoc := strings.Repeat("Q", maxDocumentationChars+200)
	_, user, err := BuildCommitMessagePrompt(sampleTarget(), longDoc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Count(user, "Q") > maxDocumentationChars {
		t.Errorf("expected documentation truncated to %d chars, got %d", maxDocumentationChars, strings.Count(user, "Q"))
	}
}

func TestFromSnippetJoinsClassAndFunction(t *testing.T) {
	target := sampleTarget()
	target.Snippet.ClassName = "Order"

	ctx := FromSnippet(target)
	if ctx.Name != "Order.compute_total" {
		t.Errorf("expected joined class.function name, got %q", ctx.Name)
	}
}

func TestFromSnippetKindByDocType(t *testing.T) {
	cases := map[models.DocType]string{
		models.DocFunction:  "function",
		models.DocFile:      "file",
		models.DocClass:     "class",
		models.DocModule:    "module",
		models.DocEvolution: "recent change",
		models.DocPattern:   "pattern",
	}
	for docType, want := range cases {
		target := sampleTarget()
		target.DocType = docType
		if got := FromSnippet(target).Kind; got != want {
			t.Errorf("DocType %v: Kind = %q, want %q", docType, got, want)
		}
	}
}
