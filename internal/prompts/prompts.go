// Package prompts builds the system/user prompt pairs the LLM client
// sends, ported from original_source/codeworm/llm/prompts.py. Templates
// are rendered with text/template, the idiom internal/compact/haiku.go
// uses for its tier1 prompt.
package prompts

import (
	"strings"
	"text/template"

	"github.com/chronicled/codewormd/internal/models"
)

const maxSourceChars = 5000
const maxDocumentationChars = 500

const defaultSystemPrompt = `You are a senior engineer writing documentation as you explore an unfamiliar codebase. Write naturally, the way a thoughtful developer would explain code to a teammate: clear, specific, and grounded in what the code actually does. Avoid generic filler and avoid restating the obvious.`

var languageHints = map[models.Language]string{
	models.LanguagePython:     "This is Python code. Note any use of decorators, generators, context managers, or dataclasses.",
	models.LanguageTypeScript: "This is TypeScript code. Note generics, interfaces, and type narrowing where relevant.",
	models.LanguageTSX:        "This is a TSX (React + TypeScript) file. Note component props, hooks, and render logic.",
	models.LanguageJavaScript: "This is JavaScript code. Note async patterns and closures where relevant.",
	models.LanguageGo:         "This is Go code. Note goroutines, channels, and error handling patterns.",
	models.LanguageRust:       "This is Rust code. Note ownership, lifetimes, and trait usage where relevant.",
}

var documentationTemplate = template.Must(template.New("documentation").Parse(
	`Document the following {{.Language}} {{.Kind}} from {{.Repo}} ({{.FilePath}}).

Name: {{.Name}}
Complexity: {{.Complexity}}
Lines: {{.LineCount}}

` + "```{{.Language}}\n{{.Source}}\n```" + `

Write documentation explaining what this does, why it might be structured this way, and anything a new contributor should know before touching it.{{if .DecoratorSuffix}} {{.DecoratorSuffix}}{{end}}{{if .AsyncSuffix}} {{.AsyncSuffix}}{{end}}`,
))

var commitMessageTemplate = template.Must(template.New("commit").Parse(
	`Write a short, natural-sounding git commit message for documenting {{.Name}} ({{.Language}}) in {{.Repo}}.

Documentation written:
{{.Documentation}}

The commit message should read like a human wrote it: concise, specific, no ticket numbers, no "AI-generated" language.`,
))

// Context is the rendering context for both templates, built from an
// analysis candidate.
type Context struct {
	Language        string
	Source          string
	Name            string
	FilePath        string
	Repo            string
	Complexity      int
	LineCount       int
	Kind            string // "function", "class", "file", "module", "change", "pattern"
	DecoratorSuffix string
	AsyncSuffix     string
}

// FromSnippet builds a prompt Context from a documentation target.
func FromSnippet(target models.DocumentationTarget) Context {
	s := target.Snippet
	kind := "function"
	switch target.DocType {
	case models.DocFile:
		kind = "file"
	case models.DocClass:
		kind = "class"
	case models.DocModule:
		kind = "module"
	case models.DocEvolution:
		kind = "recent change"
	case models.DocPattern:
		kind = "pattern"
	}

	name := s.DisplayName()
	if s.ClassName != "" && s.FunctionName != "" {
		name = s.ClassName + "." + s.FunctionName
	}

	var decoratorSuffix, asyncSuffix string
	if s.Markers.DecoratorCount > 0 {
		decoratorSuffix = "Mention the decorators applied to it."
	}
	if s.Markers.IsAsync {
		asyncSuffix = "It is asynchronous."
	}

	source := target.SourceContext
	if source == "" {
		source = s.Source
	}
	if len(source) > maxSourceChars {
		source = source[:maxSourceChars]
	}

	return Context{
		Language:        string(s.Language),
		Source:          source,
		Name:            name,
		FilePath:        s.FilePath,
		Repo:            s.Repo,
		Complexity:      s.Complexity.Cyclomatic,
		LineCount:       s.LineCount(),
		Kind:            kind,
		DecoratorSuffix: decoratorSuffix,
		AsyncSuffix:     asyncSuffix,
	}
}

// BuildDocumentationPrompt returns (system, user) for the given target.
func BuildDocumentationPrompt(target models.DocumentationTarget) (system, user string, err error) {
	ctx := FromSnippet(target)

	system = defaultSystemPrompt
	if hint, ok := languageHints[target.Snippet.Language]; ok {
		system = system + "\n\n" + hint
	}

	var buf strings.Builder
	if err := documentationTemplate.Execute(&buf, ctx); err != nil {
		return "", "", err
	}
	return system, buf.String(), nil
}

// BuildCommitMessagePrompt returns (system, user) for generating the
// commit message that accompanies one documentation file.
func BuildCommitMessagePrompt(target models.DocumentationTarget, documentation string) (system, user string, err error) {
	ctx := FromSnippet(target)
	if len(documentation) > maxDocumentationChars {
		documentation = documentation[:maxDocumentationChars]
	}

	data := struct {
		Context
		Documentation string
	}{Context: ctx, Documentation: documentation}

	var buf strings.Builder
	if err := commitMessageTemplate.Execute(&buf, data); err != nil {
		return "", "", err
	}
	return "You generate natural, human sounding git commit messages. Be concise and specific.", buf.String(), nil
}
