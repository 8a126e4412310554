package store

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

//nolint:gochecknoglobals // DDL, applied in order
var tables = []struct {
	name string
	ddl  string
}{
	{"files", `
		CREATE TABLE IF NOT EXISTS files (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL UNIQUE,
			language TEXT NOT NULL,
			hash TEXT NOT NULL
		)`},
	{"definitions", `
		CREATE TABLE IF NOT EXISTS definitions (
			file_id INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
			node_id INTEGER NOT NULL,
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			qualified_name TEXT NOT NULL,
			line INTEGER NOT NULL,
			col INTEGER NOT NULL,
			PRIMARY KEY (file_id, node_id)
		)`},
	{"calls", `
		CREATE TABLE IF NOT EXISTS calls (
			file_id INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
			node_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			callee TEXT NOT NULL,
			caller_node_id INTEGER,
			line INTEGER NOT NULL,
			col INTEGER NOT NULL,
			PRIMARY KEY (file_id, node_id)
		)`},
	{"definitions_name", `CREATE INDEX IF NOT EXISTS idx_definitions_name ON definitions(name)`},
	{"calls_name", `CREATE INDEX IF NOT EXISTS idx_calls_name ON calls(name)`},
}

// CreateSchema creates the database schema if it doesn't exist.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	if err := createSchemaVersionTable(ctx, db); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	for _, t := range tables {
		if _, err := db.ExecContext(ctx, t.ddl); err != nil {
			return fmt.Errorf("creating %s: %w", t.name, err)
		}
	}
	return nil
}

func createSchemaVersionTable(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_version").Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		_, err = db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", SchemaVersion)
		return err
	}

	var version int
	if err := db.QueryRowContext(ctx, "SELECT version FROM schema_version").Scan(&version); err != nil {
		return err
	}
	if version != SchemaVersion {
		return &VersionError{Found: version, Want: SchemaVersion}
	}
	return nil
}
