package parser

import (
	"bufio"
	"strings"

	"github.com/chronicled/codewormd/internal/models"
)

// HeuristicParser is a regex/line-oriented stand-in for a real
// language-aware parser, in the spirit of internal/extractor/regex.go's
// textual-marker extraction: it finds function/method boundaries by
// indentation and keyword prefix rather than building an AST. It is
// deliberately approximate — spec.md §1 treats the parser as an external
// collaborator with a named interface, not a component whose internal
// accuracy the core depends on.
type HeuristicParser struct{}

func NewHeuristicParser() *HeuristicParser { return &HeuristicParser{} }

var defKeywordsByLanguage = map[models.Language][]string{
	models.LanguagePython:     {"def "},
	models.LanguageGo:         {"func "},
	models.LanguageRust:       {"fn "},
	models.LanguageTypeScript: {"function ", "async function "},
	models.LanguageTSX:       {"function ", "async function "},
	models.LanguageJavaScript: {"function ", "async function "},
}

var classKeywordsByLanguage = map[models.Language][]string{
	models.LanguagePython:     {"class "},
	models.LanguageGo:         {"type "}, // struct declarations stand in for classes
	models.LanguageTypeScript: {"class "},
	models.LanguageTSX:       {"class "},
	models.LanguageJavaScript: {"class "},
}

// Parse scans source line-by-line, opening a new function/class block
// whenever a line (after trim) starts with one of the language's
// definition keywords at or below the current block's indentation.
func (p *HeuristicParser) Parse(path string, language models.Language, source string) (*ParsedFile, error) {
	lines := splitLines(source)
	pf := &ParsedFile{Path: path, Language: language}

	defKeywords := defKeywordsByLanguage[language]
	classKeywords := classKeywordsByLanguage[language]

	var pendingDecorators []string
	var currentClass string

	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		indent := leadingWhitespace(lines[i])

		if language == models.LanguagePython && strings.HasPrefix(trimmed, "@") {
			pendingDecorators = append(pendingDecorators, strings.TrimPrefix(trimmed, "@"))
			continue
		}

		if matchesAny(trimmed, classKeywords) {
			name := extractName(trimmed, classKeywords)
			end := blockEnd(lines, i, indent)
			cls := ParsedClass{
				Name:         name,
				StartLine:    i + 1,
				EndLine:      end + 1,
				Source:       joinLines(lines, i, end),
				Decorators:   pendingDecorators,
				HasDocstring: hasDocstringAfter(lines, i),
			}
			pf.Classes = append(pf.Classes, cls)
			currentClass = name
			pendingDecorators = nil
			continue
		}

		if matchesAny(trimmed, defKeywords) {
			name := extractName(trimmed, defKeywords)
			end := blockEnd(lines, i, indent)
			fn := ParsedFunction{
				Name:       name,
				ClassName:  classNameForIndent(currentClass, indent),
				StartLine:  i + 1,
				EndLine:    end + 1,
				Source:     joinLines(lines, i, end),
				Decorators: pendingDecorators,
				IsAsync:    strings.Contains(trimmed, "async "),
			}
			pf.Functions = append(pf.Functions, fn)
			if fn.ClassName != "" && len(pf.Classes) > 0 && pf.Classes[len(pf.Classes)-1].Name == fn.ClassName {
				last := &pf.Classes[len(pf.Classes)-1]
				last.Methods = append(last.Methods, fn)
			}
			pendingDecorators = nil
			continue
		}

		if strings.HasPrefix(trimmed, "import ") || strings.HasPrefix(trimmed, "from ") {
			pf.Imports = append(pf.Imports, trimmed)
		}

		if trimmed != "" && indent == 0 {
			currentClass = ""
		}
	}

	return pf, nil
}

// classNameForIndent treats a function as a method of the most recently
// opened class only when it's indented (nested) relative to column 0.
func classNameForIndent(class string, indent int) string {
	if indent == 0 {
		return ""
	}
	return class
}

func splitLines(source string) []string {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(source))
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines
}

func leadingWhitespace(line string) int {
	n := 0
	for _, r := range line {
		if r == ' ' {
			n++
		} else if r == '\t' {
			n += 4
		} else {
			break
		}
	}
	return n
}

func matchesAny(trimmed string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.HasPrefix(trimmed, kw) {
			return true
		}
	}
	return false
}

func extractName(trimmed string, keywords []string) string {
	for _, kw := range keywords {
		if strings.HasPrefix(trimmed, kw) {
			rest := strings.TrimPrefix(trimmed, kw)
			rest = strings.TrimSpace(rest)
			for idx, r := range rest {
				if r == '(' || r == ' ' || r == '{' || r == ':' || r == '<' {
					return rest[:idx]
				}
			}
			return rest
		}
	}
	return ""
}

// blockEnd finds the last line belonging to the block opened at
// startIdx, by scanning forward until a non-blank line at or below
// startIndent is found (Python-style) or a closing brace at column 0 is
// found (brace-language style). Falls back to end-of-file.
func blockEnd(lines []string, startIdx, startIndent int) int {
	sawBody := false
	for i := startIdx + 1; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		indent := leadingWhitespace(lines[i])
		if indent <= startIndent {
			if !sawBody {
				sawBody = true
				continue
			}
			return i - 1
		}
		sawBody = true
	}
	return len(lines) - 1
}

func joinLines(lines []string, start, end int) string {
	if end >= len(lines) {
		end = len(lines) - 1
	}
	if start > end {
		return ""
	}
	return strings.Join(lines[start:end+1], "\n")
}

func hasDocstringAfter(lines []string, idx int) bool {
	for i := idx + 1; i < len(lines) && i < idx+3; i++ {
		trimmed := strings.TrimSpace(lines[i])
		if strings.HasPrefix(trimmed, `"""`) || strings.HasPrefix(trimmed, "'''") || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "/*") {
			return true
		}
	}
	return false
}
