package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chronicled/codewormd/internal/supervisor"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the daemon continuously on its human-paced schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.store.Close()

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		lockPath := filepath.Join(a.settings.DataDir, "codewormd.lock")
		sup := a.newSupervisor(lockPath)

		if err := sup.Run(ctx); err != nil {
			if err == supervisor.ErrAlreadyRunning {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			if ctx.Err() != nil {
				return errInterrupted
			}
			return err
		}
		if ctx.Err() != nil {
			return errInterrupted
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
