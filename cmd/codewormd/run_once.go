package main

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"
)

var runOnceCmd = &cobra.Command{
	Use:   "run-once",
	Short: "Run a single documentation cycle and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.store.Close()

		lockPath := filepath.Join(a.settings.DataDir, "codewormd.lock")
		sup := a.newSupervisor(lockPath)
		return sup.RunOnce(context.Background())
	},
}

func init() {
	rootCmd.AddCommand(runOnceCmd)
}
