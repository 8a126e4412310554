// Package store persists definition and call indexes in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/yaklabco/treewrite/pkg/recipes"
)

// ErrSchemaVersion is returned when an existing database was written by
// an incompatible version.
var ErrSchemaVersion = errors.New("unsupported schema version")

// VersionError reports a schema version mismatch.
type VersionError struct {
	Found int
	Want  int
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("schema version %d, want %d", e.Found, e.Want)
}

func (e *VersionError) Unwrap() error {
	return ErrSchemaVersion
}

// File is an indexed file.
type File struct {
	ID       int64
	Path     string
	Language string
	Hash     string
}

// Definition is a stored function definition.
type Definition struct {
	Path string
	recipes.Definition
}

// Caller is a call site of a function.
type Caller struct {
	Path string
	recipes.Call

	// Function is the qualified name of the enclosing function, or "".
	Function string
}

// Store is a SQLite-backed index.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path. Use ":memory:" for a
// private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if err := CreateSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// AddFile records a file and returns its id. Re-adding a path replaces the
// file's previous definitions and calls.
func (s *Store) AddFile(ctx context.Context, path, language, hash string) (int64, error) {
	for _, q := range []string{
		"DELETE FROM definitions WHERE file_id IN (SELECT id FROM files WHERE path = ?)",
		"DELETE FROM calls WHERE file_id IN (SELECT id FROM files WHERE path = ?)",
		"DELETE FROM files WHERE path = ?",
	} {
		if _, err := s.db.ExecContext(ctx, q, path); err != nil {
			return 0, fmt.Errorf("removing previous %s: %w", path, err)
		}
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO files (path, language, hash) VALUES (?, ?, ?)",
		path, language, hash)
	if err != nil {
		return 0, fmt.Errorf("inserting file: %w", err)
	}
	return res.LastInsertId()
}

// AddDefinitions stores the definitions of a file.
func (s *Store) AddDefinitions(ctx context.Context, fileID int64, defs []recipes.Definition) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO definitions (file_id, node_id, kind, name, qualified_name, line, col)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, d := range defs {
			_, err := stmt.ExecContext(ctx, fileID, d.ID, d.Kind, d.Name, d.Qualified, d.Line, d.Column)
			if err != nil {
				return fmt.Errorf("inserting definition %s: %w", d.Qualified, err)
			}
		}
		return nil
	})
}

// AddCalls stores the call sites of a file.
func (s *Store) AddCalls(ctx context.Context, fileID int64, calls []recipes.Call) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO calls (file_id, node_id, name, callee, caller_node_id, line, col)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, c := range calls {
			var caller sql.NullInt64
			if c.Caller != 0 {
				caller = sql.NullInt64{Int64: int64(c.Caller), Valid: true}
			}
			_, err := stmt.ExecContext(ctx, fileID, c.ID, c.Name, c.Callee, caller, c.Line, c.Column)
			if err != nil {
				return fmt.Errorf("inserting call %s: %w", c.Callee, err)
			}
		}
		return nil
	})
}

// AddIndex stores a file and everything BuildIndex found in it.
func (s *Store) AddIndex(ctx context.Context, idx *recipes.Index, hash string) error {
	id, err := s.AddFile(ctx, idx.Path, idx.Language, hash)
	if err != nil {
		return err
	}
	if err := s.AddDefinitions(ctx, id, idx.Definitions); err != nil {
		return err
	}
	return s.AddCalls(ctx, id, idx.Calls)
}

// Files returns the indexed files ordered by path.
func (s *Store) Files(ctx context.Context) ([]File, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, path, language, hash FROM files ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("querying files: %w", err)
	}
	defer rows.Close()

	var files []File
	for rows.Next() {
		var f File
		if err := rows.Scan(&f.ID, &f.Path, &f.Language, &f.Hash); err != nil {
			return nil, fmt.Errorf("scanning file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// Definitions returns every definition ordered by path and position.
func (s *Store) Definitions(ctx context.Context) ([]Definition, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.path, d.node_id, d.kind, d.name, d.qualified_name, d.line, d.col
		FROM definitions d JOIN files f ON f.id = d.file_id
		ORDER BY f.path, d.line, d.col
	`)
	if err != nil {
		return nil, fmt.Errorf("querying definitions: %w", err)
	}
	defer rows.Close()

	var defs []Definition
	for rows.Next() {
		var d Definition
		err := rows.Scan(&d.Path, &d.ID, &d.Kind, &d.Name, &d.Qualified, &d.Line, &d.Column)
		if err != nil {
			return nil, fmt.Errorf("scanning definition: %w", err)
		}
		defs = append(defs, d)
	}
	return defs, rows.Err()
}

// CallersOf returns the call sites whose callee name is name, with the
// qualified name of the enclosing function.
func (s *Store) CallersOf(ctx context.Context, name string) ([]Caller, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.path, c.node_id, c.name, c.callee, COALESCE(c.caller_node_id, 0),
			c.line, c.col, COALESCE(d.qualified_name, '')
		FROM calls c
		JOIN files f ON f.id = c.file_id
		LEFT JOIN definitions d ON d.file_id = c.file_id AND d.node_id = c.caller_node_id
		WHERE c.name = ?
		ORDER BY f.path, c.line, c.col
	`, name)
	if err != nil {
		return nil, fmt.Errorf("querying callers of %s: %w", name, err)
	}
	defer rows.Close()

	var callers []Caller
	for rows.Next() {
		var c Caller
		err := rows.Scan(&c.Path, &c.ID, &c.Name, &c.Callee, &c.Caller, &c.Line, &c.Column, &c.Function)
		if err != nil {
			return nil, fmt.Errorf("scanning call: %w", err)
		}
		callers = append(callers, c)
	}
	return callers, rows.Err()
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
