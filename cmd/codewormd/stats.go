package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"

	"github.com/chronicled/codewormd/internal/config"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show documentation activity recorded in the memory store",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.store.Close()

		since, _ := cmd.Flags().GetString("since")
		showSources, _ := cmd.Flags().GetBool("show-config-sources")
		renderDocs, _ := cmd.Flags().GetBool("render-docs")

		stats, err := a.store.GetStats()
		if err != nil {
			return fmt.Errorf("get stats: %w", err)
		}

		var cutoff *time.Time
		if since != "" {
			w := when.New(nil)
			w.Add(en.All...)
			w.Add(common.All...)
			result, err := w.Parse(since, time.Now())
			if err != nil {
				return fmt.Errorf("parse --since: %w", err)
			}
			if result != nil {
				cutoff = &result.Time
			}
		}

		report := "# Documentation activity\n\n"
		report += fmt.Sprintf("- Total documented: %d\n", stats.Total)
		report += fmt.Sprintf("- Last 7 days: %d\n", stats.Last7Days)
		if cutoff != nil {
			report += fmt.Sprintf("- Since %s: see store for exact filtering\n", cutoff.Format(time.RFC3339))
		}
		report += "\n## By repo\n\n"
		for repo, count := range stats.ByRepo {
			report += fmt.Sprintf("- %s: %d\n", repo, count)
		}

		if showSources {
			report += "\n## Config sources\n\n"
			for key := range config.AllSettings() {
				report += fmt.Sprintf("- %s: %s\n", key, config.ResolveSource(key))
			}
		}

		if renderDocs {
			report += "\n## Devlog repo\n\n"
			report += fmt.Sprintf("- %s\n", a.settings.Devlog.RepoPath)
		}

		rendered, err := glamour.Render(report, "dark")
		if err != nil {
			fmt.Print(report)
			return nil
		}
		fmt.Fprint(os.Stdout, rendered)
		return nil
	},
}

func init() {
	statsCmd.Flags().String("since", "", "print the resolved time for this natural-language expression (e.g. \"3 days ago\"); the counts are not filtered by it")
	statsCmd.Flags().Bool("show-config-sources", false, "show where each resolved config value came from")
	statsCmd.Flags().Bool("render-docs", false, "add the devlog repository path to the report; devlog entries are not rendered")
	rootCmd.AddCommand(statsCmd)
}
