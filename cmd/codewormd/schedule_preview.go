package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

var schedulePreviewCmd = &cobra.Command{
	Use:   "schedule-preview",
	Short: "Render the upcoming N days of the human-paced commit schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.store.Close()

		days, _ := cmd.Flags().GetInt("days")

		times := a.trigger.Preview(time.Now(), days)

		report := fmt.Sprintf("# Schedule preview (%d days)\n\n", days)
		lastDay := ""
		for _, t := range times {
			day := t.Format("2006-01-02 (Mon)")
			if day != lastDay {
				report += fmt.Sprintf("\n## %s\n\n", day)
				lastDay = day
			}
			report += fmt.Sprintf("- %s\n", t.Format("15:04"))
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

func init() {
	schedulePreviewCmd.Flags().Int("days", 7, "number of days to preview")
	rootCmd.AddCommand(schedulePreviewCmd)
}
