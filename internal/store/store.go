// Package store exports built documents into a SQLite database so symbols,
// references and notifications can be queried across files.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/morozRed/jsnav/internal/annotate"
	"github.com/morozRed/jsnav/internal/document"
	"github.com/morozRed/jsnav/internal/symbols"
)

// Store is a SQLite-backed export of documents.
type Store struct {
	db *sql.DB
}

// Location is a function definition found by name.
type Location struct {
	Path   string   `json:"path"`
	Name   string   `json:"name"`
	Start  int      `json:"start"`
	Line   int      `json:"line"`
	Column int      `json:"column"`
	Params []string `json:"params,omitempty"`
}

// FileRecord summarizes one exported file.
type FileRecord struct {
	Path      string `json:"path"`
	Language  string `json:"language,omitempty"`
	Hash      string `json:"hash"`
	LineCount int    `json:"line_count"`
	Symbols   int    `json:"symbols"`
	Notes     int    `json:"notifications"`
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if _, err := db.Exec(
		`INSERT INTO metadata(key, value) VALUES('schema_version', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		strconv.Itoa(SchemaVersion),
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to record schema version: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces everything stored for path with the contents of snap.
func (s *Store) Save(ctx context.Context, path string, snap *document.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM files WHERE path = ?", path); err != nil {
		return fmt.Errorf("failed to clear %s: %w", path, err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO files(path, language, hash, length, line_count, indexed_at)
		 VALUES(?, ?, ?, ?, ?, ?)`,
		path, snap.Language, snap.Hash, snap.Stats().Length, snap.LineCount(), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert file %s: %w", path, err)
	}
	fileID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	syms := append(snap.Functions(), snap.Strings()...)
	for _, sym := range syms {
		pos, _ := snap.AddressToPosition(strconv.Itoa(sym.Start))
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO symbols(file_id, stable_id, kind, name, start, length, line, col, params)
			 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			fileID, symbols.StableID(path, sym), sym.Kind.String(), sym.Name,
			sym.Start, sym.Length, pos.Line, pos.Column, strings.Join(sym.Params, ","),
		); err != nil {
			return fmt.Errorf("failed to insert symbol: %w", err)
		}
	}

	for lineNo, line := range snap.Lines() {
		for _, item := range line.Items {
			if item.Role != annotate.RoleReference {
				continue
			}
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO refs(file_id, target_start, line, col) VALUES(?, ?, ?, ?)",
				fileID, item.CrossRefID, lineNo, item.Offset,
			); err != nil {
				return fmt.Errorf("failed to insert reference: %w", err)
			}
		}
	}

	for _, note := range snap.Notifications() {
		pos, ok := snap.AddressToPosition(note.Address)
		var line, col sql.NullInt64
		if ok {
			line = sql.NullInt64{Int64: int64(pos.Line), Valid: true}
			col = sql.NullInt64{Int64: int64(pos.Column), Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO notifications(file_id, kind, message, address, line, col) VALUES(?, ?, ?, ?, ?, ?)",
			fileID, note.Kind.String(), note.Message, note.Address, line, col,
		); err != nil {
			return fmt.Errorf("failed to insert notification: %w", err)
		}
	}

	return tx.Commit()
}

// Remove deletes path and its rows.
func (s *Store) Remove(ctx context.Context, path string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM files WHERE path = ?", path)
	return err
}

// FindFunctions returns function definitions named name across all files,
// ordered by path and offset.
func (s *Store) FindFunctions(ctx context.Context, name string) ([]Location, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT f.path, s.name, s.start, s.line, s.col, s.params
		 FROM symbols s JOIN files f ON f.id = s.file_id
		 WHERE s.kind = ? AND s.name = ?
		 ORDER BY f.path, s.start`,
		symbols.KindFunction.String(), name,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Location
	for rows.Next() {
		var loc Location
		var params string
		if err := rows.Scan(&loc.Path, &loc.Name, &loc.Start, &loc.Line, &loc.Column, &params); err != nil {
			return nil, err
		}
		if params != "" {
			loc.Params = strings.Split(params, ",")
		}
		out = append(out, loc)
	}
	return out, rows.Err()
}

// CountReferences returns how many resolved calls target the function
// starting at start in path.
func (s *Store) CountReferences(ctx context.Context, path string, start int) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM refs r JOIN files f ON f.id = r.file_id
		 WHERE f.path = ? AND r.target_start = ?`,
		path, start,
	).Scan(&n)
	return n, err
}

// Files lists exported files with symbol and notification counts.
func (s *Store) Files(ctx context.Context) ([]FileRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT f.path, COALESCE(f.language, ''), f.hash, f.line_count,
		        (SELECT COUNT(*) FROM symbols s WHERE s.file_id = f.id),
		        (SELECT COUNT(*) FROM notifications n WHERE n.file_id = f.id)
		 FROM files f ORDER BY f.path`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FileRecord
	for rows.Next() {
		var rec FileRecord
		if err := rows.Scan(&rec.Path, &rec.Language, &rec.Hash, &rec.LineCount, &rec.Symbols, &rec.Notes); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
