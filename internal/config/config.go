// Package config loads codewormd's layered configuration: explicit
// overrides made through Set take precedence over environment variables,
// which take precedence over the YAML file, which takes precedence over
// defaults. No command-line flags are bound into this configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

var v *viper.Viper

// Source identifies where a resolved config value actually came from,
// surfaced by `stats --show-config-sources`.
type Source string

const (
	SourceDefault Source = "default"
	SourceYAML    Source = "yaml"
	SourceEnv     Source = "env"
	SourceFlag    Source = "flag"
)

// Initialize sets up the package-level viper singleton. Call once at
// startup before any Get* accessor.
func Initialize() error {
	v = viper.New()
	v.SetConfigType("yaml")

	configFileSet := false

	if cwd, err := os.Getwd(); err == nil {
		for dir := cwd; dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
			candidate := filepath.Join(dir, ".codeworm", "config.yaml")
			if _, statErr := os.Stat(candidate); statErr == nil {
				v.SetConfigFile(candidate)
				configFileSet = true
				break
			}
		}
	}

	if !configFileSet {
		if configDir, err := os.UserConfigDir(); err == nil {
			candidate := filepath.Join(configDir, "codewormd", "config.yaml")
			if _, statErr := os.Stat(candidate); statErr == nil {
				v.SetConfigFile(candidate)
				configFileSet = true
			}
		}
	}

	v.SetEnvPrefix("CODEWORM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configFileSet {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("data_dir", filepath.Join(os.TempDir(), "codewormd"))

	v.SetDefault("devlog.repo_path", "")
	v.SetDefault("devlog.remote", "")
	v.SetDefault("devlog.branch", "main")

	v.SetDefault("ollama.host", "localhost")
	v.SetDefault("ollama.port", 11434)
	v.SetDefault("ollama.model", "qwen2.5-coder:7b")
	v.SetDefault("ollama.temperature", 0.7)
	v.SetDefault("ollama.num_ctx", 8192)
	v.SetDefault("ollama.num_predict", 512)
	v.SetDefault("ollama.keep_alive", "10m")

	v.SetDefault("schedule.enabled", true)
	v.SetDefault("schedule.min_commits_per_day", 3)
	v.SetDefault("schedule.max_commits_per_day", 8)
	v.SetDefault("schedule.timezone", "UTC")
	v.SetDefault("schedule.prefer_hours", []int{})
	v.SetDefault("schedule.avoid_hours", []int{})
	v.SetDefault("schedule.weekend_reduction", 0.5)
	v.SetDefault("schedule.min_gap_minutes", 20)

	v.SetDefault("analyzer.min_complexity", 0)
	v.SetDefault("analyzer.min_lines", 10)
	v.SetDefault("analyzer.max_lines", 200)
	v.SetDefault("analyzer.include_patterns", []string{})
	v.SetDefault("analyzer.exclude_patterns", []string{})

	v.SetDefault("repos", []map[string]any{})

	v.SetDefault("documentation.type_weights", map[string]int{
		"function_doc": 10,
	})
	v.SetDefault("documentation.redocument_after_days", 90)

	v.SetDefault("supervisor.alert_after_failures", 4)
	v.SetDefault("supervisor.cycle_timeout", "30m")
	v.SetDefault("supervisor.deadman_interval", "5m")
	v.SetDefault("supervisor.deadman_threshold", "45m")

	v.SetDefault("notifier.telegram_bot_token", "")
	v.SetDefault("notifier.telegram_chat_id", int64(0))

	v.SetDefault("logging.max_size_mb", 50)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 28)
}

func GetString(key string) string        { return v.GetString(key) }
func GetBool(key string) bool            { return v.GetBool(key) }
func GetInt(key string) int              { return v.GetInt(key) }
func GetInt64(key string) int64          { return v.GetInt64(key) }
func GetFloat64(key string) float64      { return v.GetFloat64(key) }
func GetStringSlice(key string) []string { return v.GetStringSlice(key) }
func GetIntSlice(key string) []int       { return v.GetIntSlice(key) }
func Set(key string, value any)          { v.Set(key, value) }
func AllSettings() map[string]any        { return v.AllSettings() }
func IsSet(key string) bool              { return v.IsSet(key) }

// Raw exposes the underlying viper instance for BindPFlag wiring from cobra
// command definitions.
func Raw() *viper.Viper { return v }

// ResolveSource reports where a resolved key's value actually came from,
// for `stats --show-config-sources`. Flag overrides aren't tracked here
// since this package doesn't bind cobra flags into viper directly.
func ResolveSource(key string) Source {
	envName := "CODEWORM_" + strings.NewReplacer(".", "_", "-", "_").Replace(strings.ToUpper(key))
	if os.Getenv(envName) != "" {
		return SourceEnv
	}
	if v.InConfig(key) {
		return SourceYAML
	}
	return SourceDefault
}
