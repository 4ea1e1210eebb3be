package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/chronicled/codewormd/internal/ui"
)

// wizardAnswers holds the handful of values init writes. The wizard asks
// for the first three; MaxCommitsPerDay is always written as preset here.
// Everything else keeps config.go's defaults.
type wizardAnswers struct {
	DevlogRepoPath   string
	OllamaModel      string
	EnableTelegram   bool
	MaxCommitsPerDay int
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactively configure codewormd for this machine",
	RunE: func(cmd *cobra.Command, args []string) error {
		quiet, _ := cmd.Flags().GetBool("quiet")

		answers := wizardAnswers{
			DevlogRepoPath:   filepath.Join(os.Getenv("HOME"), "devlog"),
			OllamaModel:      "llama3.1:8b",
			EnableTelegram:   false,
			MaxCommitsPerDay: 6,
		}

		if !quiet && ui.IsTerminal() {
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewNote().
						Title("codewormd Setup").
						Description("Let's configure the devlog daemon: where commits land, which model to use, and the pace of the schedule."),

					huh.NewInput().
						Title("Devlog repo path").
						Description("A git repository the daemon will scaffold and commit generated documentation into.").
						Value(&answers.DevlogRepoPath),

					huh.NewInput().
						Title("Ollama model").
						Description("The model name served by your local Ollama instance.").
						Value(&answers.OllamaModel),

					huh.NewSelect[bool]().
						Title("Enable Telegram alerts?").
						Description("Notifies a Telegram chat on repeated failures or a secret-scan push rejection.").
						Options(
							huh.NewOption("Yes, alert me", true),
							huh.NewOption("No, stay quiet", false),
						).
						Value(&answers.EnableTelegram),
				),
			)

			if err := form.Run(); err != nil {
				return fmt.Errorf("setup wizard cancelled: %w", err)
			}
		}

		configDir, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("resolve config dir: %w", err)
		}
		target := filepath.Join(configDir, "codewormd")
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}

		cfg := map[string]any{
			"devlog": map[string]any{"repo_path": answers.DevlogRepoPath},
			"ollama": map[string]any{"model": answers.OllamaModel},
			"schedule": map[string]any{
				"max_commits_per_day": answers.MaxCommitsPerDay,
			},
		}
		if answers.EnableTelegram {
			cfg["notifier"] = map[string]any{
				"telegram_bot_token": "",
				"telegram_chat_id":   0,
			}
		}

		out, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}

		configPath := filepath.Join(target, "config.yaml")
		if err := os.WriteFile(configPath, out, 0o644); err != nil {
			return fmt.Errorf("write config: %w", err)
		}

		if !quiet {
			fmt.Printf("Wrote %s\n", configPath)
		}
		return nil
	},
}

func init() {
	initCmd.Flags().Bool("quiet", false, "skip the interactive wizard and write defaults")
	rootCmd.AddCommand(initCmd)
}
