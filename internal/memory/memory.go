// Package memory is the single-writer deduplication/cooldown store
// described in spec.md §4.1, backed by github.com/ncruces/go-sqlite3 (a
// pure-Go/WASM SQLite driver, no cgo) the way the teacher's storage layer
// depends on it.
package memory

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/chronicled/codewormd/internal/models"
)

// Store is the single-writer persistent dedup/cooldown store.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) the SQLite database at path, applies
// migrations, and sets a 10s busy timeout so concurrent readers (the
// read-only dashboard) don't evict the daemon — spec.md §4.1.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open memory store: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=10000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// HashSource computes the deterministic code_hash for a snippet's source
// text: identical source always hashes identically (spec.md §3 invariant).
func HashSource(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// ShouldDocument implements spec.md §4.1's AND-NOT semantics: an exact
// code_hash+doc_type match blocks absolutely; otherwise the newest row
// for the entity identity must be older than redocumentAfterDays.
func (s *Store) ShouldDocument(snippet models.CodeSnippet, docType models.DocType, redocumentAfterDays int) (bool, error) {
	codeHash := HashSource(snippet.Source)

	var exactCount int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM documented_records WHERE code_hash = ? AND doc_type = ?`,
		codeHash, string(docType),
	).Scan(&exactCount)
	if err != nil {
		return false, fmt.Errorf("check exact match: %w", err)
	}
	if exactCount > 0 {
		return false, nil
	}

	var newest sql.NullTime
	err = s.db.QueryRow(
		`SELECT MAX(documented_at) FROM documented_records
		 WHERE source_file = ? AND function_name IS ? AND class_name IS ? AND doc_type = ?`,
		snippet.FilePath, nullableString(snippet.FunctionName), nullableString(snippet.ClassName), string(docType),
	).Scan(&newest)
	if err != nil {
		return false, fmt.Errorf("check entity cooldown: %w", err)
	}
	if !newest.Valid {
		return true, nil
	}

	age := time.Since(newest.Time)
	if age < time.Duration(redocumentAfterDays)*24*time.Hour {
		return false, nil
	}
	return true, nil
}

// nullableString turns "" into a true SQL NULL so the "IS ?" comparisons
// above treat two unset optional fields as equal, matching the Python
// original's None-vs-None identity semantics.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// RecordDocumentation inserts a new row. Idempotence is not provided —
// callers must call this exactly once per successful commit (spec.md §4.1).
func (s *Store) RecordDocumentation(snippet models.CodeSnippet, snippetPath, gitCommit string, docType models.DocType) (models.DocumentedRecord, error) {
	rec := models.DocumentedRecord{
		ID:           uuid.NewString(),
		SourceRepo:   snippet.Repo,
		SourceFile:   snippet.FilePath,
		FunctionName: snippet.FunctionName,
		ClassName:    snippet.ClassName,
		CodeHash:     HashSource(snippet.Source),
		DocumentedAt: time.Now().UTC(),
		SnippetPath:  snippetPath,
		GitCommit:    gitCommit,
		DocType:      docType,
	}

	_, err := s.db.Exec(
		`INSERT INTO documented_records
		 (id, source_repo, source_file, function_name, class_name, code_hash, documented_at, snippet_path, git_commit, doc_type)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SourceRepo, rec.SourceFile, nullableString(rec.FunctionName), nullableString(rec.ClassName),
		rec.CodeHash, rec.DocumentedAt, rec.SnippetPath, nullableString(rec.GitCommit), string(rec.DocType),
	)
	if err != nil {
		return models.DocumentedRecord{}, fmt.Errorf("insert documented record: %w", err)
	}
	return rec, nil
}

// Stats is the aggregate view spec.md §4.1's get_stats operation returns.
type Stats struct {
	Total      int
	ByRepo     map[string]int
	Last7Days  int
}

func (s *Store) GetStats() (Stats, error) {
	stats := Stats{ByRepo: make(map[string]int)}

	if err := s.db.QueryRow(`SELECT COUNT(*) FROM documented_records`).Scan(&stats.Total); err != nil {
		return stats, fmt.Errorf("count total: %w", err)
	}

	rows, err := s.db.Query(`SELECT source_repo, COUNT(*) FROM documented_records GROUP BY source_repo`)
	if err != nil {
		return stats, fmt.Errorf("count by repo: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var repo string
		var count int
		if err := rows.Scan(&repo, &count); err != nil {
			return stats, err
		}
		stats.ByRepo[repo] = count
	}

	cutoff := time.Now().UTC().Add(-7 * 24 * time.Hour)
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM documented_records WHERE documented_at >= ?`, cutoff).Scan(&stats.Last7Days); err != nil {
		return stats, fmt.Errorf("count last 7 days: %w", err)
	}

	return stats, nil
}
