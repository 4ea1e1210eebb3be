// Package devlog manages the on-disk devlog git repository spec.md §6
// describes: directory scaffolding, commit authoring, and push retry with
// secret-scan/conflict classification. Shelling to git via os/exec
// follows the same pattern as cmd/bd/sync_git.go's buildGitCommitArgs and
// gitHasChanges helpers — there is no Go git library anywhere in the
// retrieved pack.
package devlog

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/chronicled/codewormd/internal/models"
)

// snippetLanguageDirs and topLevelDirs are the fixed devlog tree spec.md §6 names.
var snippetLanguageDirs = []models.Language{
	models.LanguagePython, models.LanguageTypeScript, models.LanguageTSX,
	models.LanguageJavaScript, models.LanguageGo, models.LanguageRust,
}

var topLevelDirs = []string{
	"analysis/weekly",
	"analysis/monthly",
	"patterns",
	"stats",
}

// Repository wraps one devlog git working tree.
type Repository struct {
	root string
}

func Open(root string) *Repository { return &Repository{root: root} }

// Scaffold creates the devlog directory layout (snippets/<language>/,
// analysis/weekly, analysis/monthly, patterns, stats) with .gitkeep
// placeholders, idempotently.
func (r *Repository) Scaffold() error {
	for _, lang := range snippetLanguageDirs {
		if err := r.ensureDir(filepath.Join("snippets", string(lang))); err != nil {
			return err
		}
	}
	for _, dir := range topLevelDirs {
		if err := r.ensureDir(dir); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) ensureDir(rel string) error {
	abs := filepath.Join(r.root, rel)
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", rel, err)
	}
	keep := filepath.Join(abs, ".gitkeep")
	if _, err := os.Stat(keep); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(keep, nil, 0o644); err != nil {
			return fmt.Errorf("write .gitkeep in %s: %w", rel, err)
		}
	}
	return nil
}

// SnippetPath returns the path, relative to the devlog root, a snippet
// of the given language/doc type should be written to.
func SnippetPath(language models.Language, filename string) string {
	return filepath.Join("snippets", string(language), filename)
}

func (r *Repository) run(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		return stdout.String(), fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// HasChanges reports whether the working tree has anything to commit.
func (r *Repository) HasChanges() (bool, error) {
	out, err := r.run("status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// Commit stages everything and commits with the given message. Returns
// the new commit's short hash.
func (r *Repository) Commit(message string) (string, error) {
	if _, err := r.run("add", "-A"); err != nil {
		return "", err
	}

	changed, err := r.hasStagedChanges()
	if err != nil {
		return "", err
	}
	if !changed {
		return "", ErrNothingToCommit
	}

	if _, err := r.run("commit", "-m", message); err != nil {
		return "", err
	}

	out, err := r.run("rev-parse", "--short", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (r *Repository) hasStagedChanges() (bool, error) {
	cmd := exec.Command("git", "diff", "--cached", "--quiet")
	cmd.Dir = r.root
	err := cmd.Run()
	if err == nil {
		return false, nil // exit 0: no staged diff
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return true, nil
	}
	return false, err
}

// ErrNothingToCommit signals a no-op commit attempt, handled by the
// supervisor as a skip rather than a failure (spec.md §4.7).
var ErrNothingToCommit = errors.New("nothing to commit")

// PushOutcome classifies a push attempt's terminal state.
type PushOutcome int

const (
	PushSucceeded PushOutcome = iota
	PushConflict              // remote has diverged; caller should pull/rebase and retry
	PushSecretScan            // GH013 / secret scanning block: must not retry
	PushTransient             // network or transient server error: retry with backoff
)

// Push pushes the current branch, classifying failures per spec.md §7's
// error handling table: a secret-scan rejection (GH013 or the literal
// substring "secret") is terminal, a non-fast-forward rejection is a
// conflict, anything else is treated as transient.
func (r *Repository) Push() (PushOutcome, error) {
	_, err := r.run("push")
	if err == nil {
		return PushSucceeded, nil
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "gh013") || strings.Contains(msg, "secret"):
		return PushSecretScan, err
	case strings.Contains(msg, "non-fast-forward") || strings.Contains(msg, "fetch first") || strings.Contains(msg, "rejected"):
		return PushConflict, err
	default:
		return PushTransient, err
	}
}

// PushWithRetry retries a transient push failure up to maxAttempts times
// with linear backoff, per spec.md §4.7's push failure policy. A
// conflict triggers one pull --rebase before the next attempt. A
// secret-scan rejection returns immediately without retrying.
func (r *Repository) PushWithRetry(maxAttempts int, backoff time.Duration) (PushOutcome, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		outcome, err := r.Push()
		if outcome == PushSucceeded {
			return outcome, nil
		}
		lastErr = err

		if outcome == PushSecretScan {
			return outcome, err
		}

		if outcome == PushConflict {
			if _, pullErr := r.run("pull", "--rebase"); pullErr != nil {
				return PushConflict, pullErr
			}
			continue
		}

		time.Sleep(backoff * time.Duration(attempt+1))
	}
	return PushTransient, lastErr
}

// ForceWithLease force-pushes using --force-with-lease, used only after
// an operator-approved rebase resolves a conflict — never invoked
// automatically by the supervisor's retry loop.
func (r *Repository) ForceWithLease() error {
	_, err := r.run("push", "--force-with-lease")
	return err
}
