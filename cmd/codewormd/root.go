// Command codewormd runs the autonomous devlog-documentation daemon
// spec.md describes: a human-paced scheduler that periodically picks
// interesting code, asks a local Ollama model to document it, and
// commits the result to a devlog repository. Command structure follows
// cmd/bd's cobra-per-file convention: each subcommand file declares its
// own *cobra.Command and registers it onto rootCmd from its own init().
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chronicled/codewormd/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "codewormd",
	Short: "A human-paced daemon that documents interesting code in your repos",
	Long: `codewormd watches a set of configured repositories, periodically
selects an interesting function, class, file, module, or recent change,
asks a local Ollama model to write documentation for it, and commits the
result to a devlog git repository on a human-like schedule.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "init" {
			return nil
		}
		return config.Initialize()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps a top-level error to the process exit codes spec.md
// §6 names: 130 for operator interrupt, 1 for everything else.
func exitCodeFor(err error) int {
	if err == errInterrupted {
		return 130
	}
	return 1
}

var errInterrupted = fmt.Errorf("interrupted")
