package targets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chronicled/codewormd/internal/models"
)

var moduleSkipDirsPython = map[string]bool{
	"node_modules": true, ".git": true, "venv": true, ".venv": true,
	"__pycache__": true, "dist": true, "build": true, "vendor": true,
	"target": true, ".tox": true, ".mypy_cache": true,
}

var moduleSkipDirsTS = map[string]bool{
	"node_modules": true, ".git": true, "dist": true, "build": true,
}

const initContentCap = 2000

// ModuleFinder surfaces Python packages (dirs with __init__.py) and
// TypeScript packages (dirs with index.ts), scored on sibling file count
// and init/index file richness. Ported from
// original_source/codeworm/analysis/targets.py's ModuleTargetFinder.
type ModuleFinder struct{}

func NewModuleFinder() *ModuleFinder { return &ModuleFinder{} }

func (f *ModuleFinder) Find(repo models.RepoEntry, limit int) []models.DocumentationTarget {
	var out []models.DocumentationTarget

	out = append(out, f.scan(repo, "__init__.py", moduleSkipDirsPython, models.LanguagePython, limit)...)
	out = append(out, f.scan(repo, "index.ts", moduleSkipDirsTS, models.LanguageTypeScript, limit)...)

	sort.Slice(out, func(i, j int) bool { return out[i].Snippet.InterestScore > out[j].Snippet.InterestScore })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (f *ModuleFinder) scan(repo models.RepoEntry, marker string, skipDirs map[string]bool, lang models.Language, limit int) []models.DocumentationTarget {
	var out []models.DocumentationTarget

	_ = filepath.Walk(repo.Path, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if skipDirs[info.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Base(path) != marker {
			return nil
		}
		if len(out) >= limit {
			return nil
		}

		dir := filepath.Dir(path)
		siblings, err := os.ReadDir(dir)
		if err != nil {
			return nil
		}

		var fileNames []string
		for _, entry := range siblings {
			if !entry.IsDir() {
				fileNames = append(fileNames, entry.Name())
			}
		}
		if len(fileNames) < 2 {
			return nil
		}

		initContent := ""
		if raw, err := os.ReadFile(path); err == nil {
			initContent = truncate(string(raw), initContentCap)
		}

		relDir, _ := filepath.Rel(repo.Path, dir)

		var ctx strings.Builder
		fmt.Fprintf(&ctx, "Package: %s\n", relDir)
		fmt.Fprintf(&ctx, "Files (%d):\n", len(fileNames))
		for _, name := range fileNames {
			fmt.Fprintf(&ctx, "  - %s\n", name)
		}
		if initContent != "" {
			ctx.WriteString("\n")
			ctx.WriteString(initContent)
		}

		score := moduleScore(len(fileNames), len(initContent))

		snippet := models.CodeSnippet{
			Repo:          repo.Name,
			FilePath:      path,
			Language:      lang,
			Source:        truncate(ctx.String(), snippetSourceCap),
			StartLine:     1,
			EndLine:       1,
			InterestScore: score,
			DocType:       models.DocModule,
		}

		out = append(out, models.DocumentationTarget{
			DocType:       models.DocModule,
			Snippet:       snippet,
			SourceContext: truncate(ctx.String(), fileContextCap),
			Metadata:      map[string]string{"relative_path": relDir},
		})
		return nil
	})

	return out
}

func moduleScore(fileCount, initContentLen int) float64 {
	total := ratioCapped(float64(fileCount), 8)*40 +
		ratioCapped(float64(initContentLen), 500)*30 +
		30
	if total > 100 {
		total = 100
	}
	return total
}
