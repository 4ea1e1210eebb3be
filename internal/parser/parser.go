// Package parser defines the two external collaborators spec.md §1 calls
// out of scope for the core: the code parser (iterator of parsed
// functions/classes given source + language) and the complexity analyzer
// (per-function structural metrics). No AST/tree-sitter library exists
// anywhere in the retrieved example pack, so the concrete implementation
// here is a lightweight line-oriented heuristic scanner in the style of
// internal/extractor/regex.go's textual-marker approach, rather than a
// true parser — the core never depends on this package's internals
// directly, only on the ParsedFunction/ParsedClass/Parser/ComplexityAnalyzer
// interfaces it declares.
package parser

import "github.com/chronicled/codewormd/internal/models"

// ParsedFunction is one function or method found in a source file.
type ParsedFunction struct {
	Name         string
	ClassName    string // empty for a top-level function
	StartLine    int
	EndLine      int
	Source       string
	Decorators   []string
	IsAsync      bool
}

// ParsedClass is one class (or equivalent: Go struct-with-methods, Rust
// impl block) found in a source file.
type ParsedClass struct {
	Name       string
	StartLine  int
	EndLine    int
	Source     string
	Methods    []ParsedFunction
	Decorators []string
	HasDocstring bool
}

// ParsedFile is the full parse result for one source file.
type ParsedFile struct {
	Path      string
	Language  models.Language
	Functions []ParsedFunction
	Classes   []ParsedClass
	Imports   []string
}

// Parser produces parsed functions/classes/declarations for one source
// file. An external collaborator per spec.md §1.
type Parser interface {
	Parse(path string, language models.Language, source string) (*ParsedFile, error)
}

// ComplexityAnalyzer produces per-function structural metrics. An
// external collaborator per spec.md §1.
type ComplexityAnalyzer interface {
	Analyze(fn ParsedFunction) models.Complexity
}
