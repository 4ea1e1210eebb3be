package memory

import (
	"database/sql"
	"fmt"
)

// migration is the same {Name, Func} shape as the teacher's
// internal/storage/sqlite Migration struct.
type migration struct {
	Name string
	Func func(*sql.DB) error
}

var migrationsList = []migration{
	{"create_documented_records", createDocumentedRecordsTable},
	{"doc_type_column", addDocTypeColumn},
}

func (s *Store) migrate() error {
	for _, m := range migrationsList {
		if err := m.Func(s.db); err != nil {
			return fmt.Errorf("migration %s: %w", m.Name, err)
		}
	}
	return nil
}

func createDocumentedRecordsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS documented_records (
			id            TEXT PRIMARY KEY,
			source_repo   TEXT NOT NULL,
			source_file   TEXT NOT NULL,
			function_name TEXT,
			class_name    TEXT,
			code_hash     TEXT NOT NULL,
			documented_at TIMESTAMP NOT NULL,
			snippet_path  TEXT NOT NULL,
			git_commit    TEXT,
			doc_type      TEXT NOT NULL DEFAULT 'function_doc'
		)
	`)
	if err != nil {
		return err
	}

	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_code_hash ON documented_records(code_hash)`); err != nil {
		return err
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_repo_file ON documented_records(source_repo, source_file)`); err != nil {
		return err
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_entity_identity ON documented_records(source_file, function_name, class_name, doc_type)`); err != nil {
		return err
	}
	return nil
}

// addDocTypeColumn is a one-shot forward migration matching spec.md
// §4.1's schema-migration rule: if doc_type is missing, add it with a
// default. Grounded on the teacher's
// internal/storage/sqlite/migrations/010_content_hash_column.go idiom of
// checking pragma_table_info before ALTER TABLE. It's a no-op against the
// fresh schema above (which already declares the column); it exists to
// bring forward a database created before doc_type existed.
func addDocTypeColumn(db *sql.DB) error {
	var name string
	err := db.QueryRow(`SELECT name FROM pragma_table_info('documented_records') WHERE name = 'doc_type'`).Scan(&name)
	switch err {
	case nil:
		return nil // already present
	case sql.ErrNoRows:
		// fall through to add it
	default:
		return err
	}

	if _, err := db.Exec(`ALTER TABLE documented_records ADD COLUMN doc_type TEXT NOT NULL DEFAULT 'function_doc'`); err != nil {
		return err
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_entity_identity ON documented_records(source_file, function_name, class_name, doc_type)`)
	return err
}
