// Package models holds the data types shared across codewormd's core
// subsystems: scanner, scorer, finders, memory, scheduler, and supervisor.
package models

import (
	"path/filepath"
	"time"
)

// Language is the finite set of source languages codewormd understands.
type Language string

const (
	LanguagePython     Language = "python"
	LanguageTypeScript Language = "typescript"
	LanguageTSX        Language = "tsx"
	LanguageJavaScript Language = "javascript"
	LanguageGo         Language = "go"
	LanguageRust       Language = "rust"
)

// LanguageExtensions maps a file extension to its resolved language.
var LanguageExtensions = map[string]Language{
	".py":  LanguagePython,
	".ts":  LanguageTypeScript,
	".tsx": LanguageTSX,
	".js":  LanguageJavaScript,
	".jsx": LanguageJavaScript,
	".go":  LanguageGo,
	".rs":  LanguageRust,
}

// DocType is the documentation flavor produced for a target.
type DocType string

const (
	DocFunction          DocType = "function_doc"
	DocSecurityReview    DocType = "security_review"
	DocPerformanceReview DocType = "performance_analysis"
	DocTIL               DocType = "til"
	DocFile              DocType = "file_doc"
	DocClass             DocType = "class_doc"
	DocModule            DocType = "module_doc"
	DocEvolution         DocType = "code_evolution"
	DocPattern           DocType = "pattern_analysis"

	// DocWeeklySummary and DocMonthlySummary are recognized by the model
	// but never dispatched by the supervisor's flavor selection.
	DocWeeklySummary  DocType = "weekly_summary"
	DocMonthlySummary DocType = "monthly_summary"
)

// UndispatchedFlavors lists flavors accepted in configuration but filtered
// out before the router ever sees them.
var UndispatchedFlavors = map[DocType]bool{
	DocWeeklySummary:  true,
	DocMonthlySummary: true,
}

// RepoEntry is one configured source repository.
type RepoEntry struct {
	Name    string
	Path    string
	Weight  int // 1..10
	Enabled bool
}

// Complexity holds the structural metrics a complexity analyzer produces
// for one function or method.
type Complexity struct {
	Cyclomatic     int
	NestingDepth   int
	ParameterCount int
	NLOC           int
}

// Markers records textual-presence indicators the scorer's pattern bonus
// reacts to. Detection is deliberately shallow (substring/regex), matching
// spec.md §4.3's "source-level detection by textual presence" rule.
type Markers struct {
	DecoratorCount  int
	IsAsync         bool
	IsContextMgr    bool
	IsGenerator     bool
	IsMethodMarker  bool // classmethod/staticmethod style marker
	IsProperty      bool
	IsAbstract      bool
	IsDataClass     bool
}

// CodeSnippet is a candidate unit of documentation.
type CodeSnippet struct {
	Repo           string
	FilePath       string // absolute
	FunctionName   string
	ClassName      string
	Language       Language
	Source         string
	StartLine      int
	EndLine        int
	Complexity     Complexity
	Markers        Markers
	InterestScore  float64
	DocType        DocType
}

// LineCount returns end-start+1, the invariant span spec.md §3 requires.
func (s CodeSnippet) LineCount() int {
	return s.EndLine - s.StartLine + 1
}

// DisplayName mirrors the Python original's property of the same name.
func (s CodeSnippet) DisplayName() string {
	if s.ClassName != "" && s.FunctionName != "" {
		return s.ClassName + "." + s.FunctionName
	}
	if s.FunctionName != "" {
		return s.FunctionName
	}
	if s.ClassName != "" {
		return s.ClassName
	}
	base := filepath.Base(s.FilePath)
	return base[:len(base)-len(filepath.Ext(base))]
}

// DocumentationTarget wraps a snippet with flavor-specific context.
type DocumentationTarget struct {
	Snippet       CodeSnippet
	DocType       DocType
	SourceContext string // may exceed Snippet.Source for file/module/diff flavors; capped at 6000 chars
	Metadata      map[string]string
}

const MaxSourceContextChars = 6000

// DocumentedRecord is a persisted row in the memory store.
type DocumentedRecord struct {
	ID           string
	SourceRepo   string
	SourceFile   string // absolute path
	FunctionName string
	ClassName    string
	CodeHash     string // sha256 hex of snippet source
	DocumentedAt time.Time
	SnippetPath  string // relative to devlog root
	GitCommit    string // short hash, may be empty
	DocType      DocType
}

// CycleStats are in-memory, process-lifetime counters (spec.md §3).
type CycleStats struct {
	TotalCycles      int
	SuccessfulCycles int
	FailedCycles     int
	SkippedCycles    int

	ConsecutiveFailures       int
	ConsecutiveOllamaFailures int
	ConsecutivePushFailures   int

	LastSuccess time.Time
	LastFailure time.Time

	ReposExhausted map[string]bool
}

// NewCycleStats returns a zeroed stats block with its set initialized.
func NewCycleStats() *CycleStats {
	return &CycleStats{ReposExhausted: make(map[string]bool)}
}

// RecordSuccess applies the invariant: a success resets consecutive
// failures and the exhausted-repo set.
func (c *CycleStats) RecordSuccess(now time.Time) {
	c.TotalCycles++
	c.SuccessfulCycles++
	c.ConsecutiveFailures = 0
	c.LastSuccess = now
	c.ReposExhausted = make(map[string]bool)
}

// RecordFailure increments failure counters without touching ReposExhausted.
func (c *CycleStats) RecordFailure(now time.Time) {
	c.TotalCycles++
	c.FailedCycles++
	c.ConsecutiveFailures++
	c.LastFailure = now
}

// RecordSkip increments the skip counter. Callers clear ReposExhausted
// themselves once all flavors/repos have been tried for the cycle.
func (c *CycleStats) RecordSkip() {
	c.TotalCycles++
	c.SkippedCycles++
}
