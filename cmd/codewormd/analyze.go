package main

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/chronicled/codewormd/internal/models"
)

// analyzeCmd is a SPEC_FULL-supplemented dry-run report: it shows what
// the daemon would consider documenting in a repo without calling the
// LLM or touching the devlog or memory store.
var analyzeCmd = &cobra.Command{
	Use:   "analyze <repo-path>",
	Short: "Show candidates a cycle would consider, without generating or committing anything",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.store.Close()

		repo := models.RepoEntry{Name: "analyze-target", Path: args[0], Weight: 1, Enabled: true}

		limit, _ := cmd.Flags().GetInt("limit")
		docType, _ := cmd.Flags().GetString("type")

		var report string
		if docType != "" {
			targets := a.router.FindTargets(models.DocType(docType), repo, limit)
			report = renderCandidates(models.DocType(docType), targets)
		} else {
			for _, dt := range []models.DocType{
				models.DocFunction, models.DocFile, models.DocClass,
				models.DocModule, models.DocEvolution, models.DocPattern,
			} {
				targets := a.router.FindTargets(dt, repo, limit)
				report += renderCandidates(dt, targets)
			}
		}

		rendered, err := glamour.Render(report, "dark")
		if err != nil {
			fmt.Print(report)
			return nil
		}
		fmt.Print(rendered)
		return nil
	},
}

func renderCandidates(docType models.DocType, targets []models.DocumentationTarget) string {
	out := fmt.Sprintf("## %s (%d candidates)\n\n", docType, len(targets))
	for _, t := range targets {
		out += fmt.Sprintf("- **%s** — score %.1f — `%s`\n", t.Snippet.DisplayName(), t.Snippet.InterestScore, t.Metadata["relative_path"])
	}
	out += "\n"
	return out
}

func init() {
	analyzeCmd.Flags().Int("limit", 10, "maximum candidates per flavor")
	analyzeCmd.Flags().String("type", "", "restrict to one documentation flavor (default: all)")
	rootCmd.AddCommand(analyzeCmd)
}
