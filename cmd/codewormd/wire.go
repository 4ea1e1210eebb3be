package main

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/chronicled/codewormd/internal/config"
	"github.com/chronicled/codewormd/internal/devlog"
	"github.com/chronicled/codewormd/internal/events"
	"github.com/chronicled/codewormd/internal/llm"
	"github.com/chronicled/codewormd/internal/logging"
	"github.com/chronicled/codewormd/internal/memory"
	"github.com/chronicled/codewormd/internal/notifier"
	"github.com/chronicled/codewormd/internal/parser"
	"github.com/chronicled/codewormd/internal/scheduler"
	"github.com/chronicled/codewormd/internal/supervisor"
	"github.com/chronicled/codewormd/internal/targets"
)

// app bundles the daemon's wired dependencies, assembled once from
// config.Settings. Kept in one place so run/run-once/analyze/stats all
// construct the same graph rather than duplicating wiring.
type app struct {
	settings *config.Settings
	store    *memory.Store
	devlog   *devlog.Repository
	llm      *llm.Client
	router   *targets.Router
	trigger  *scheduler.Trigger
	bus      *events.Bus
	notify   *notifier.Notifier
}

func buildApp() (*app, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	store, err := memory.Open(filepath.Join(settings.DataDir, "memory.db"))
	if err != nil {
		return nil, fmt.Errorf("open memory store: %w", err)
	}

	devlogRepo := devlog.Open(settings.Devlog.RepoPath)

	llmClient, err := llm.New(llm.Settings{
		Host:        settings.Ollama.Host,
		Port:        settings.Ollama.Port,
		Model:       settings.Ollama.Model,
		Temperature: settings.Ollama.Temperature,
		NumCtx:      settings.Ollama.NumCtx,
		NumPredict:  settings.Ollama.NumPredict,
		KeepAlive:   settings.Ollama.KeepAlive,
	})
	if err != nil {
		return nil, fmt.Errorf("build llm client: %w", err)
	}

	analyzerSettings := targets.AnalyzerSettings{
		MinLines:        settings.Analyzer.MinLines,
		MaxLines:        settings.Analyzer.MaxLines,
		IncludePatterns: settings.Analyzer.IncludePatterns,
		ExcludePatterns: settings.Analyzer.ExcludePatterns,
	}

	heuristicParser := parser.NewHeuristicParser()
	complexityAnalyzer := parser.NewHeuristicComplexityAnalyzer()

	functionFinder := targets.NewFunctionFinder(analyzerSettings, heuristicParser, complexityAnalyzer, nil)
	router := targets.NewRouter(
		functionFinder,
		targets.NewFileFinder(analyzerSettings, heuristicParser),
		targets.NewClassFinder(analyzerSettings, heuristicParser),
		targets.NewModuleFinder(),
		targets.NewEvolutionFinder(),
		targets.NewPatternFinder(analyzerSettings),
	)

	trigger := scheduler.New(scheduler.Config{
		MinCommitsPerDay: settings.Schedule.MinCommitsPerDay,
		MaxCommitsPerDay: settings.Schedule.MaxCommitsPerDay,
		MinGapMinutes:    settings.Schedule.MinGapMinutes,
		PreferHours:      settings.Schedule.PreferHours,
		AvoidHours:       settings.Schedule.AvoidHours,
		WeekendReduction: settings.Schedule.WeekendReduction,
		Location:         scheduleLocation(settings.Schedule.Timezone),
	}, rand.New(rand.NewSource(time.Now().UnixNano())))

	notify, err := notifier.New(settings.Notifier.TelegramBotToken, settings.Notifier.TelegramChatID)
	if err != nil {
		return nil, fmt.Errorf("build notifier: %w", err)
	}

	return &app{
		settings: settings,
		store:    store,
		devlog:   devlogRepo,
		llm:      llmClient,
		router:   router,
		trigger:  trigger,
		bus:      events.NewBus(),
		notify:   notify,
	}, nil
}

func scheduleLocation(tz string) *time.Location {
	if tz == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}

func newLogger(settings *config.Settings) *logging.Config {
	return &logging.Config{
		Dir:        settings.DataDir,
		MaxSizeMB:  settings.Logging.MaxSizeMB,
		MaxBackups: settings.Logging.MaxBackups,
		MaxAgeDays: settings.Logging.MaxAgeDays,
		Debug:      settings.Debug,
	}
}

func (a *app) newSupervisor(lockPath string) *supervisor.Supervisor {
	return supervisor.New(supervisor.Config{
		Settings: a.settings,
		Logger:   logging.New(*newLogger(a.settings)),
		Store:    a.store,
		Trigger:  a.trigger,
		LLM:      a.llm,
		Devlog:   a.devlog,
		Router:   a.router,
		Bus:      a.bus,
		Notifier: a.notify,
		LockPath: lockPath,
	})
}
