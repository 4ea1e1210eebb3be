// Package logging configures codewormd's structured logger. It gives
// gopkg.in/natefinch/lumberjack.v2 the home the teacher repo never built
// for it: a rotating sink backing a log/slog.Logger, whose tail feeds the
// dead-man's-switch alert (spec.md §4.7).
package logging

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls rotation behavior; zero values fall back to sane
// defaults (50MB/5 backups/28 days).
type Config struct {
	Dir        string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Debug      bool
}

const filename = "codewormd.log"

// currentPath is set by New so TailLines can find it without threading
// the rotator through the whole call chain.
var (
	pathMu      sync.RWMutex
	currentPath string
)

// New builds a slog.Logger that writes JSON lines to both stderr (for
// operators attached to the terminal) and a rotating file under cfg.Dir.
func New(cfg Config) *slog.Logger {
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 50
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = 5
	}
	if cfg.MaxAgeDays <= 0 {
		cfg.MaxAgeDays = 28
	}
	if cfg.Dir == "" {
		cfg.Dir = os.TempDir()
	}
	_ = os.MkdirAll(cfg.Dir, 0o755)

	path := filepath.Join(cfg.Dir, filename)
	pathMu.Lock()
	currentPath = path
	pathMu.Unlock()

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	var out io.Writer = io.MultiWriter(os.Stderr, rotator)
	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

// TailLines reads at most n trailing lines from the active log file,
// matching spec.md §4.7's "tail of the log, max 20 lines" requirement.
func TailLines(n int) []string {
	pathMu.RLock()
	path := currentPath
	pathMu.RUnlock()
	if path == "" {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if len(lines) > n {
			lines = lines[1:]
		}
	}
	return lines
}

// TailText is a convenience wrapper returning TailLines joined by newline.
func TailText(n int) string {
	return strings.Join(TailLines(n), "\n")
}
