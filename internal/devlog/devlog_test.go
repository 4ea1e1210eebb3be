package devlog

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/chronicled/codewormd/internal/models"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	dir := t.TempDir()

	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v failed: %v\n%s", args, err, out)
		}
	}
	run("init", "-q")
	run("config", "user.email", "codewormd@example.com")
	run("config", "user.name", "codewormd")

	return Open(dir)
}

func TestScaffoldCreatesLayoutIdempotently(t *testing.T) {
	repo := newTestRepo(t)

	if err := repo.Scaffold(); err != nil {
		t.Fatalf("Scaffold: %v", err)
	}
	if err := repo.Scaffold(); err != nil {
		t.Fatalf("second Scaffold call should be idempotent, got: %v", err)
	}

	for _, lang := range []models.Language{models.LanguagePython, models.LanguageGo} {
		keep := filepath.Join(repo.root, "snippets", string(lang), ".gitkeep")
		if _, err := os.Stat(keep); err != nil {
			t.Errorf("expected %s to exist: %v", keep, err)
		}
	}
	for _, dir := range []string{"analysis/weekly", "analysis/monthly", "patterns", "stats"} {
		if _, err := os.Stat(filepath.Join(repo.root, dir, ".gitkeep")); err != nil {
			t.Errorf("expected %s/.gitkeep to exist: %v", dir, err)
		}
	}
}

func TestHasChangesAndCommit(t *testing.T) {
	repo := newTestRepo(t)
	if err := repo.Scaffold(); err != nil {
		t.Fatalf("Scaffold: %v", err)
	}

	changed, err := repo.HasChanges()
	if err != nil {
		t.Fatalf("HasChanges: %v", err)
	}
	if !changed {
		t.Fatal("expected freshly scaffolded repo to have changes to commit")
	}

	hash, err := repo.Commit("document widget.compute_total")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if hash == "" {
		t.Fatal("expected a non-empty short commit hash")
	}

	changed, err = repo.HasChanges()
	if err != nil {
		t.Fatalf("HasChanges after commit: %v", err)
	}
	if changed {
		t.Fatal("expected no changes immediately after a commit")
	}
}

func TestCommitWithNothingStagedReturnsSentinel(t *testing.T) {
	repo := newTestRepo(t)
	if err := repo.Scaffold(); err != nil {
		t.Fatalf("Scaffold: %v", err)
	}
	if _, err := repo.Commit("first commit"); err != nil {
		t.Fatalf("first Commit: %v", err)
	}

	_, err := repo.Commit("nothing changed")
	if err != ErrNothingToCommit {
		t.Fatalf("expected ErrNothingToCommit, got: %v", err)
	}
}

func TestPushWithNoRemoteIsTransient(t *testing.T) {
	repo := newTestRepo(t)
	if err := repo.Scaffold(); err != nil {
		t.Fatalf("Scaffold: %v", err)
	}
	if _, err := repo.Commit("initial"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	outcome, err := repo.Push()
	if err == nil {
		t.Fatal("expected Push with no configured remote to fail")
	}
	if outcome != PushTransient {
		t.Fatalf("expected PushTransient for a missing-remote failure, got %v", outcome)
	}
}

func TestSnippetPathJoinsLanguageDir(t *testing.T) {
	got := SnippetPath(models.LanguagePython, "function_doc_compute_total.md")
	want := filepath.Join("snippets", "python", "function_doc_compute_total.md")
	if got != want {
		t.Errorf("SnippetPath = %q, want %q", got, want)
	}
}
