// Package scanner walks a repository and emits source files eligible for
// analysis, applying include/exclude globs, .gitignore rules, and a
// binary-file heuristic. Ported from
// original_source/codeworm/analysis/scanner.py's RepoScanner.
package scanner

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/chronicled/codewormd/internal/models"
)

// ScannedFile is one file that survived every scanner rule.
type ScannedFile struct {
	AbsPath      string
	RelPath      string
	Language     models.Language
	Size         int64
}

const maxFileSize = 1 << 20 // 1 MiB

var defaultExcludeDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	".git":         true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
	".mypy_cache":  true,
	".pytest_cache": true,
	"target":       true, // rust/cargo
}

var defaultTestNamePatterns = []string{
	"_test.", "test_", ".test.", ".spec.",
}

// Config controls scanner behavior; zero value uses sane defaults.
type Config struct {
	IncludePatterns []string // glob patterns; empty means "every known language extension"
	ExcludePatterns []string // additional glob patterns, beyond the built-in defaults
}

// Scanner walks one repository root.
type Scanner struct {
	root   string
	cfg    Config
	ignore *gitignore.GitIgnore
}

// New builds a Scanner for root, loading root/.gitignore if present.
func New(root string, cfg Config) *Scanner {
	s := &Scanner{root: root, cfg: cfg}
	if ign, err := gitignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
		s.ignore = ign
	}
	return s
}

// Walk returns every file in the repository eligible for analysis,
// silently skipping files that fail any rule or can't be read.
func (s *Scanner) Walk() ([]ScannedFile, error) {
	var out []ScannedFile

	err := filepath.Walk(s.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // unreadable paths are skipped, not raised
		}
		if info.IsDir() {
			if defaultExcludeDirs[info.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			return nil
		}

		if !s.includeMatch(rel) {
			return nil
		}
		if s.excludeMatch(rel) {
			return nil
		}
		if s.ignore != nil && s.ignore.MatchesPath(rel) {
			return nil
		}

		lang, ok := models.LanguageExtensions[strings.ToLower(filepath.Ext(path))]
		if !ok {
			return nil
		}

		if info.Size() <= 0 || info.Size() > maxFileSize {
			return nil
		}

		isBinary, readErr := looksBinary(path)
		if readErr != nil || isBinary {
			return nil
		}

		out = append(out, ScannedFile{
			AbsPath:  path,
			RelPath:  rel,
			Language: lang,
			Size:     info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Scanner) includeMatch(rel string) bool {
	if len(s.cfg.IncludePatterns) == 0 {
		_, ok := models.LanguageExtensions[strings.ToLower(filepath.Ext(rel))]
		return ok
	}
	for _, pat := range s.cfg.IncludePatterns {
		if ok, _ := filepath.Match(pat, rel); ok {
			return true
		}
		if ok, _ := filepath.Match(pat, filepath.Base(rel)); ok {
			return true
		}
	}
	return false
}

func (s *Scanner) excludeMatch(rel string) bool {
	base := filepath.Base(rel)
	lower := strings.ToLower(base)
	for _, pat := range defaultTestNamePatterns {
		if strings.Contains(lower, pat) {
			return true
		}
	}
	for _, pat := range s.cfg.ExcludePatterns {
		if ok, _ := filepath.Match(pat, rel); ok {
			return true
		}
	}
	return false
}

// looksBinary applies spec.md §4.2 rule 6: the first 8KiB must contain no
// NUL byte and must be at least 70% printable ASCII + whitespace.
func looksBinary(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, 8192)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		if err.Error() == "EOF" {
			return false, nil
		}
		return false, err
	}
	chunk := buf[:n]

	if bytes.IndexByte(chunk, 0) != -1 {
		return true, nil
	}

	if len(chunk) == 0 {
		return false, nil
	}

	printable := 0
	for _, b := range chunk {
		if (b >= 0x20 && b < 0x7f) || b == '\n' || b == '\r' || b == '\t' {
			printable++
		}
	}
	ratio := float64(printable) / float64(len(chunk))
	return ratio < 0.70, nil
}
