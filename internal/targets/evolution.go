package targets

import (
	"bytes"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chronicled/codewormd/internal/models"
)

const diffContextCap = 5000

// EvolutionFinder surfaces recently-changed files, scored on diff size
// and whether the file was newly added. Ported from
// original_source/codeworm/analysis/targets.py's EvolutionTargetFinder,
// which used GitPython; here the same commit-pair diffing is done by
// shelling to git, in the idiom internal/gitstats already establishes
// for this module.
type EvolutionFinder struct{}

func NewEvolutionFinder() *EvolutionFinder { return &EvolutionFinder{} }

type commitRef struct {
	hash    string
	message string
	author  string
}

func (f *EvolutionFinder) Find(repo models.RepoEntry, limit int) []models.DocumentationTarget {
	commits := f.recentCommits(repo.Path, 20)
	if len(commits) < 2 {
		return nil
	}

	var out []models.DocumentationTarget
	seen := make(map[string]bool)

	for i := 0; i < len(commits)-1 && len(out) < limit; i++ {
		cur, parent := commits[i], commits[i+1]

		changes := f.diffFiles(repo.Path, parent.hash, cur.hash)
		for _, change := range changes {
			if len(out) >= limit {
				break
			}
			if seen[change.path] {
				continue
			}
			ext := strings.ToLower(filepath.Ext(change.path))
			lang, ok := models.LanguageExtensions[ext]
			if !ok {
				continue
			}
			if len(change.diff) < 20 {
				continue
			}
			seen[change.path] = true

			score := evolutionScore(len(change.diff), change.isNew, strings.Count(change.diff, "\n+"))

			var ctx strings.Builder
			fmt.Fprintf(&ctx, "Commit: %s\n", cur.hash)
			fmt.Fprintf(&ctx, "Message: %s\n", cur.message)
			fmt.Fprintf(&ctx, "Author: %s\n", cur.author)
			fmt.Fprintf(&ctx, "File: %s\n", change.path)
			if change.isNew {
				ctx.WriteString("Change: new file\n")
			} else {
				ctx.WriteString("Change: modified\n")
			}
			ctx.WriteString("Diff:\n")
			ctx.WriteString(truncate(change.diff, diffContextCap))

			shortHash := cur.hash
			if len(shortHash) > 8 {
				shortHash = shortHash[:8]
			}
			shortMsg := truncate(cur.message, 100)

			snippet := models.CodeSnippet{
				Repo:          repo.Name,
				FilePath:      filepath.Join(repo.Path, change.path),
				Language:      lang,
				Source:        truncate(change.diff, snippetSourceCap),
				StartLine:     1,
				EndLine:       1,
				InterestScore: score,
				DocType:       models.DocEvolution,
			}

			out = append(out, models.DocumentationTarget{
				DocType:       models.DocEvolution,
				Snippet:       snippet,
				SourceContext: truncate(ctx.String(), fileContextCap),
				Metadata: map[string]string{
					"commit_hash":    shortHash,
					"commit_message": shortMsg,
					"is_new_file":    strconv.FormatBool(change.isNew),
					"relative_path":  change.path,
				},
			})
		}
	}

	return out
}

func evolutionScore(diffLen int, isNew bool, addedLines int) float64 {
	total := ratioCapped(float64(diffLen), 1000)*40 + 30
	if isNew {
		total += 10
	}
	total += ratioCapped(float64(addedLines), 20) * 20
	if total > 100 {
		total = 100
	}
	return total
}

func (f *EvolutionFinder) recentCommits(repoPath string, n int) []commitRef {
	cmd := exec.Command("git", "log", "--max-count="+strconv.Itoa(n), "--format=%H|%s|%ae")
	cmd.Dir = repoPath
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil
	}

	var commits []commitRef
	for _, line := range strings.Split(strings.TrimSpace(stdout.String()), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 3)
		if len(parts) != 3 {
			continue
		}
		commits = append(commits, commitRef{hash: parts[0], message: parts[1], author: parts[2]})
	}
	return commits
}

type fileChange struct {
	path  string
	diff  string
	isNew bool
}

func (f *EvolutionFinder) diffFiles(repoPath, parentHash, commitHash string) []fileChange {
	cmd := exec.Command("git", "diff", "--name-status", parentHash, commitHash)
	cmd.Dir = repoPath
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil
	}

	var changes []fileChange
	for _, line := range strings.Split(strings.TrimSpace(stdout.String()), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			continue
		}
		status, path := parts[0], parts[1]

		diffCmd := exec.Command("git", "diff", parentHash, commitHash, "--", path)
		diffCmd.Dir = repoPath
		var diffOut bytes.Buffer
		diffCmd.Stdout = &diffOut
		if err := diffCmd.Run(); err != nil {
			continue
		}

		changes = append(changes, fileChange{
			path:  path,
			diff:  diffOut.String(),
			isNew: status == "A",
		})
	}
	return changes
}
