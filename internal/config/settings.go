package config

import (
	"fmt"
	"time"

	"github.com/chronicled/codewormd/internal/models"
)

// Settings is the fully-resolved, typed configuration snapshot threaded
// through every constructor in the daemon. Per spec.md §9, no component
// reads from the package-level viper singleton directly once Settings has
// been built — it's injected, not pulled from a global.
type Settings struct {
	Debug   bool
	DataDir string

	Devlog    DevlogSettings
	Ollama    OllamaSettings
	Schedule  ScheduleSettings
	Analyzer  AnalyzerSettings
	Repos     []models.RepoEntry
	Doc       DocumentationSettings
	Supervisor SupervisorSettings
	Notifier  NotifierSettings
	Logging   LoggingSettings
}

type DevlogSettings struct {
	RepoPath string
	Remote   string
	Branch   string
}

type OllamaSettings struct {
	Host        string
	Port        int
	Model       string
	Temperature float64
	NumCtx      int
	NumPredict  int
	KeepAlive   string
}

func (o OllamaSettings) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", o.Host, o.Port)
}

type ScheduleSettings struct {
	Enabled          bool
	MinCommitsPerDay int
	MaxCommitsPerDay int
	Timezone         string
	PreferHours      []int
	AvoidHours       []int
	WeekendReduction float64
	MinGapMinutes    int
}

type AnalyzerSettings struct {
	MinComplexity    int
	MinLines         int
	MaxLines         int
	IncludePatterns  []string
	ExcludePatterns  []string
}

type DocumentationSettings struct {
	TypeWeights         map[models.DocType]int
	RedocumentAfterDays int
}

type SupervisorSettings struct {
	AlertAfterFailures int
	CycleTimeout       time.Duration
	DeadmanInterval    time.Duration
	DeadmanThreshold   time.Duration
}

type NotifierSettings struct {
	TelegramBotToken string
	TelegramChatID   int64
}

type LoggingSettings struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Load reads the initialized viper singleton into a typed Settings value.
// Initialize must have been called first.
func Load() (*Settings, error) {
	s := &Settings{
		Debug:   GetBool("debug"),
		DataDir: GetString("data_dir"),
		Devlog: DevlogSettings{
			RepoPath: GetString("devlog.repo_path"),
			Remote:   GetString("devlog.remote"),
			Branch:   GetString("devlog.branch"),
		},
		Ollama: OllamaSettings{
			Host:        GetString("ollama.host"),
			Port:        GetInt("ollama.port"),
			Model:       GetString("ollama.model"),
			Temperature: GetFloat64("ollama.temperature"),
			NumCtx:      GetInt("ollama.num_ctx"),
			NumPredict:  GetInt("ollama.num_predict"),
			KeepAlive:   GetString("ollama.keep_alive"),
		},
		Schedule: ScheduleSettings{
			Enabled:          GetBool("schedule.enabled"),
			MinCommitsPerDay: GetInt("schedule.min_commits_per_day"),
			MaxCommitsPerDay: GetInt("schedule.max_commits_per_day"),
			Timezone:         GetString("schedule.timezone"),
			PreferHours:      GetIntSlice("schedule.prefer_hours"),
			AvoidHours:       GetIntSlice("schedule.avoid_hours"),
			WeekendReduction: GetFloat64("schedule.weekend_reduction"),
			MinGapMinutes:    GetInt("schedule.min_gap_minutes"),
		},
		Analyzer: AnalyzerSettings{
			MinComplexity:   GetInt("analyzer.min_complexity"),
			MinLines:        GetInt("analyzer.min_lines"),
			MaxLines:        GetInt("analyzer.max_lines"),
			IncludePatterns: GetStringSlice("analyzer.include_patterns"),
			ExcludePatterns: GetStringSlice("analyzer.exclude_patterns"),
		},
		Doc: DocumentationSettings{
			TypeWeights:         parseTypeWeights(),
			RedocumentAfterDays: GetInt("documentation.redocument_after_days"),
		},
		Supervisor: SupervisorSettings{
			AlertAfterFailures: GetInt("supervisor.alert_after_failures"),
			CycleTimeout:       mustDuration(GetString("supervisor.cycle_timeout"), 30*time.Minute),
			DeadmanInterval:    mustDuration(GetString("supervisor.deadman_interval"), 5*time.Minute),
			DeadmanThreshold:   mustDuration(GetString("supervisor.deadman_threshold"), 45*time.Minute),
		},
		Notifier: NotifierSettings{
			TelegramBotToken: GetString("notifier.telegram_bot_token"),
			TelegramChatID:   GetInt64("notifier.telegram_chat_id"),
		},
		Logging: LoggingSettings{
			MaxSizeMB:  GetInt("logging.max_size_mb"),
			MaxBackups: GetInt("logging.max_backups"),
			MaxAgeDays: GetInt("logging.max_age_days"),
		},
	}

	raw, ok := Raw().Get("repos").([]any)
	if ok {
		for _, item := range raw {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			entry := models.RepoEntry{
				Name:    stringField(m, "name"),
				Path:    stringField(m, "path"),
				Weight:  5,
				Enabled: true,
			}
			if w, ok := m["weight"].(int); ok {
				entry.Weight = w
			}
			if e, ok := m["enabled"].(bool); ok {
				entry.Enabled = e
			}
			s.Repos = append(s.Repos, entry)
		}
	}

	return s, nil
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func mustDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseTypeWeights() map[models.DocType]int {
	raw := Raw().GetStringMap("documentation.type_weights")
	out := make(map[models.DocType]int, len(raw))
	for k, v := range raw {
		switch n := v.(type) {
		case int:
			out[models.DocType(k)] = n
		case int64:
			out[models.DocType(k)] = int(n)
		case float64:
			out[models.DocType(k)] = int(n)
		}
	}
	return out
}
