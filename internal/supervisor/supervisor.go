// Package supervisor implements the daemon's main control loop: startup,
// single-instance locking, cycle execution, the Ollama-wait protocol,
// push failure policy, and the dead-man's switch, per spec.md §4.7.
// Signal handling and the select-loop shape are grounded on
// cmd/bd/daemon_event_loop.go's runEventDrivenLoop; the single-instance
// lock is grounded on cmd/bd/sync.go's flock.New/TryLock usage.
package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"github.com/chronicled/codewormd/internal/config"
	"github.com/chronicled/codewormd/internal/devlog"
	"github.com/chronicled/codewormd/internal/events"
	"github.com/chronicled/codewormd/internal/llm"
	"github.com/chronicled/codewormd/internal/llmerr"
	"github.com/chronicled/codewormd/internal/logging"
	"github.com/chronicled/codewormd/internal/memory"
	"github.com/chronicled/codewormd/internal/models"
	"github.com/chronicled/codewormd/internal/notifier"
	"github.com/chronicled/codewormd/internal/prompts"
	"github.com/chronicled/codewormd/internal/scheduler"
	"github.com/chronicled/codewormd/internal/targets"
)

// Supervisor owns the daemon's single logical task: wait for the next
// scheduled fire time, run one documentation cycle, repeat.
type Supervisor struct {
	settings *config.Settings
	log      *slog.Logger

	store    *memory.Store
	trigger  *scheduler.Trigger
	llmClient *llm.Client
	devlogRepo *devlog.Repository
	router   *targets.Router
	bus      *events.Bus
	notify   *notifier.Notifier

	stats *models.CycleStats
	lock  *flock.Flock
}

// Config bundles the dependencies New needs. Constructed by cmd/codewormd
// so the supervisor itself never reads a package-level global, per
// spec.md §9's dependency-injection design note.
type Config struct {
	Settings   *config.Settings
	Logger     *slog.Logger
	Store      *memory.Store
	Trigger    *scheduler.Trigger
	LLM        *llm.Client
	Devlog     *devlog.Repository
	Router     *targets.Router
	Bus        *events.Bus
	Notifier   *notifier.Notifier
	LockPath   string
}

func New(cfg Config) *Supervisor {
	return &Supervisor{
		settings:   cfg.Settings,
		log:        cfg.Logger,
		store:      cfg.Store,
		trigger:    cfg.Trigger,
		llmClient:  cfg.LLM,
		devlogRepo: cfg.Devlog,
		router:     cfg.Router,
		bus:        cfg.Bus,
		notify:     cfg.Notifier,
		stats:      models.NewCycleStats(),
		lock:       flock.New(cfg.LockPath),
	}
}

// ErrAlreadyRunning is returned by Run when another instance holds the
// single-instance lock.
var ErrAlreadyRunning = fmt.Errorf("another codewormd instance is already running")

// Run is the daemon's top-level entry point: acquires the single-instance
// lock, waits for Ollama to become reachable, then loops cycles until a
// termination signal arrives.
func (s *Supervisor) Run(ctx context.Context) error {
	locked, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire instance lock: %w", err)
	}
	if !locked {
		return ErrAlreadyRunning
	}
	defer func() { _ = s.lock.Unlock() }()

	if err := s.devlogRepo.Scaffold(); err != nil {
		return fmt.Errorf("scaffold devlog: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	if err := s.waitForOllama(ctx); err != nil {
		return err
	}

	s.bus.Publish(events.ChannelEvent, "supervisor.started")

	deadmanTicker := time.NewTicker(s.settings.Supervisor.DeadmanInterval)
	defer deadmanTicker.Stop()

	lastProgress := time.Now()

	for {
		nextFire := s.trigger.NextFireTime(time.Now())
		waitFor := time.Until(nextFire)
		if waitFor < 0 {
			waitFor = 0
		}
		timer := time.NewTimer(waitFor)

		select {
		case <-timer.C:
			s.runCycleWithBackoff(ctx)
			lastProgress = time.Now()

		case <-deadmanTicker.C:
			if time.Since(lastProgress) > s.settings.Supervisor.DeadmanThreshold {
				s.log.Error("dead-man's switch triggered: no cycle progress", "since", lastProgress)
				_ = s.notify.Send(fmt.Sprintf("codewormd: no progress in %s, exiting\n\n%s", time.Since(lastProgress), logging.TailText(20)))
				timer.Stop()
				return fmt.Errorf("dead-man's switch: no progress since %s", lastProgress)
			}

		case sig := <-sigCh:
			timer.Stop()
			if sig == syscall.SIGHUP {
				s.log.Info("received SIGHUP, ignoring (config reload not supported mid-cycle)")
				continue
			}
			s.log.Info("received shutdown signal", "signal", sig)
			s.bus.Publish(events.ChannelEvent, "supervisor.stopping")
			return nil

		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}

// RunOnce performs exactly one documentation cycle (acquiring the
// single-instance lock and waiting for Ollama first), for the `run-once`
// CLI command and for scripted/manual invocation.
func (s *Supervisor) RunOnce(ctx context.Context) error {
	locked, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire instance lock: %w", err)
	}
	if !locked {
		return ErrAlreadyRunning
	}
	defer func() { _ = s.lock.Unlock() }()

	if err := s.devlogRepo.Scaffold(); err != nil {
		return fmt.Errorf("scaffold devlog: %w", err)
	}
	if err := s.waitForOllama(ctx); err != nil {
		return err
	}
	return s.runCycle(ctx)
}

// waitForOllama blocks until the LLM backend answers a health check,
// backing off per spec.md §4.7's formula:
// wait_seconds = min(300, 10*2^(failures-1)).
func (s *Supervisor) waitForOllama(ctx context.Context) error {
	failures := 0
	for {
		if s.llmClient.HealthCheck(ctx) {
			if failures > 0 {
				s.log.Info("ollama became reachable", "attempts", failures+1)
			}
			return nil
		}

		failures++
		wait := math.Min(300, 10*math.Pow(2, float64(failures-1)))
		s.log.Warn("ollama unreachable, backing off", "attempt", failures, "wait_seconds", wait)

		select {
		case <-time.After(time.Duration(wait) * time.Second):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// runCycleWithBackoff runs one cycle and, on failure, sleeps per spec.md
// §4.7's cycle backoff: 0 if consecutive_failures<=1 else
// min(300, 30*2^(failures-1)).
func (s *Supervisor) runCycleWithBackoff(ctx context.Context) {
	skippedBefore := s.stats.SkippedCycles
	err := s.runCycle(ctx)
	if err == nil {
		if s.stats.SkippedCycles == skippedBefore {
			s.stats.RecordSuccess(time.Now())
		}
		s.bus.Publish(events.ChannelStats, s.stats)
		return
	}

	s.stats.RecordFailure(time.Now())
	s.log.Error("cycle failed", "error", err, "consecutive_failures", s.stats.ConsecutiveFailures)
	s.bus.Publish(events.ChannelEvent, fmt.Sprintf("cycle.failed: %v", err))

	if s.stats.ConsecutiveFailures >= s.settings.Supervisor.AlertAfterFailures {
		_ = s.notify.Send(fmt.Sprintf("codewormd: %d consecutive cycle failures, last error: %v", s.stats.ConsecutiveFailures, err))
	}

	if s.stats.ConsecutiveFailures > 1 {
		backoff := math.Min(300, 30*math.Pow(2, float64(s.stats.ConsecutiveFailures-1)))
		select {
		case <-time.After(time.Duration(backoff) * time.Second):
		case <-ctx.Done():
		}
	}
}

// runCycle performs the seven-step documentation cycle spec.md §4.7
// names: pick a repo, pick a flavor, find targets, pick one undocumented
// target, generate documentation, write the snippet, commit and push.
func (s *Supervisor) runCycle(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.settings.Supervisor.CycleTimeout)
	defer cancel()

	repo := s.pickRepo()
	if repo.Path == "" {
		return fmt.Errorf("no enabled repositories configured")
	}

	docType := targets.SelectDocType(s.settings.Doc.TypeWeights, nil)

	candidates := s.router.FindTargets(docType, repo, 20)
	if len(candidates) == 0 {
		s.stats.RecordSkip()
		s.log.Info("cycle skipped: no candidates", "repo", repo.Name, "doc_type", docType)
		return nil
	}

	target, ok := s.pickUndocumented(candidates, docType)
	if !ok {
		s.stats.RecordSkip()
		s.log.Info("cycle skipped: all candidates already documented", "repo", repo.Name, "doc_type", docType)
		return nil
	}

	system, userPrompt, err := prompts.BuildDocumentationPrompt(target)
	if err != nil {
		return fmt.Errorf("build documentation prompt: %w", err)
	}

	result, err := s.llmClient.GenerateWithRetry(ctx, userPrompt, system, 3, 2*time.Second)
	if err != nil {
		if llmerr.Is(err, llmerr.Connection) {
			s.stats.ConsecutiveOllamaFailures++
		}
		return fmt.Errorf("generate documentation: %w", err)
	}
	s.stats.ConsecutiveOllamaFailures = 0

	commitSystem, commitUser, err := prompts.BuildCommitMessagePrompt(target, result.Text)
	if err != nil {
		return fmt.Errorf("build commit message prompt: %w", err)
	}
	commitResult, err := s.llmClient.GenerateWithRetry(ctx, commitUser, commitSystem, 3, 2*time.Second)
	if err != nil {
		return fmt.Errorf("generate commit message: %w", err)
	}

	filename := snippetFilename(target)
	relPath := devlog.SnippetPath(target.Snippet.Language, filename)
	absPath := filepath.Join(s.settings.Devlog.RepoPath, relPath)

	if err := writeFile(absPath, result.Text); err != nil {
		return fmt.Errorf("write snippet: %w", err)
	}

	commitHash, err := s.devlogRepo.Commit(commitResult.Text)
	if err != nil {
		if err == devlog.ErrNothingToCommit {
			s.stats.RecordSkip()
			return nil
		}
		return fmt.Errorf("commit: %w", err)
	}

	outcome, pushErr := s.devlogRepo.PushWithRetry(3, 10*time.Second)
	if outcome != devlog.PushSucceeded {
		s.stats.ConsecutivePushFailures++
		if outcome == devlog.PushSecretScan {
			_ = s.notify.Send(fmt.Sprintf("codewormd: push blocked by secret scanning on commit %s, manual intervention required", commitHash))
		}
		return fmt.Errorf("push (%v): %w", outcome, pushErr)
	}
	s.stats.ConsecutivePushFailures = 0

	if _, err := s.store.RecordDocumentation(target.Snippet, relPath, commitHash, docType); err != nil {
		return fmt.Errorf("record documentation: %w", err)
	}

	s.bus.Publish(events.ChannelEvent, fmt.Sprintf("cycle.succeeded: %s %s", repo.Name, target.Snippet.DisplayName()))
	s.log.Info("cycle succeeded", "repo", repo.Name, "doc_type", docType, "target", target.Snippet.DisplayName(), "commit", commitHash)
	return nil
}

// pickRepo chooses an enabled repository weighted by its configured
// weight, the way original_source/codeworm/analysis/analyzer.py's
// select_for_documentation picks a repo before picking a candidate.
func (s *Supervisor) pickRepo() models.RepoEntry {
	var enabled []models.RepoEntry
	total := 0
	for _, r := range s.settings.Repos {
		if !r.Enabled {
			continue
		}
		enabled = append(enabled, r)
		total += r.Weight
	}
	if len(enabled) == 0 {
		return models.RepoEntry{}
	}

	r := rand.Intn(total)
	cumulative := 0
	for _, repo := range enabled {
		cumulative += repo.Weight
		if r < cumulative {
			return repo
		}
	}
	return enabled[len(enabled)-1]
}

// pickUndocumented scans candidates in score order and returns the first
// one memory.ShouldDocument approves, applying spec.md §4.1's dedup rule
// before any LLM call is made.
func (s *Supervisor) pickUndocumented(candidates []models.DocumentationTarget, docType models.DocType) (models.DocumentationTarget, bool) {
	for _, c := range candidates {
		ok, err := s.store.ShouldDocument(c.Snippet, docType, s.settings.Doc.RedocumentAfterDays)
		if err != nil {
			s.log.Warn("dedup check failed, skipping candidate", "error", err)
			continue
		}
		if ok {
			return c, true
		}
	}
	return models.DocumentationTarget{}, false
}

func snippetFilename(target models.DocumentationTarget) string {
	name := target.Snippet.DisplayName()
	ext := "md"
	return fmt.Sprintf("%s_%s.%s", string(target.DocType), sanitizeFilename(name), ext)
}

func sanitizeFilename(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			out = append(out, r)
		case r == '.':
			out = append(out, '_')
		default:
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "snippet"
	}
	return string(out)
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
