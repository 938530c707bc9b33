// Package sqlite persists document chunks and their embeddings in a
// relational store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"docindex/internal/domain"
)

// Store is a SQLite-backed chunk store. Embeddings are stored as JSON
// arrays alongside the chunk text.
type Store struct {
	db *sql.DB
}

var _ domain.ChunkStore = (*Store)(nil)

// Open opens (or creates) the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("pragma failed: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS document_chunks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			chunk_text TEXT NOT NULL,
			embedding TEXT NOT NULL,
			filename TEXT NOT NULL,
			split_strategy TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_document_chunks_filename
			ON document_chunks(filename);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("schema creation failed: %w", err)
	}
	return nil
}

// SaveBatch inserts all records in a single transaction and returns the
// number of rows written. The batch is all-or-nothing.
func (s *Store) SaveBatch(ctx context.Context, filename, strategy string, records []domain.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("save batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO document_chunks (chunk_text, embedding, filename, split_strategy) VALUES (?, ?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("save batch: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		vector, err := json.Marshal(rec.Vector)
		if err != nil {
			return 0, fmt.Errorf("save batch: encode embedding: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, rec.Text, string(vector), filename, strategy); err != nil {
			return 0, fmt.Errorf("save batch: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("save batch: %w", err)
	}
	return len(records), nil
}

// CountByFile returns the number of stored chunks for a filename.
func (s *Store) CountByFile(ctx context.Context, filename string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM document_chunks WHERE filename = ?", filename).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return count, nil
}

// DeleteByFile removes all chunks for a filename, for re-indexing.
func (s *Store) DeleteByFile(ctx context.Context, filename string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM document_chunks WHERE filename = ?", filename)
	if err != nil {
		return 0, fmt.Errorf("delete chunks: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete chunks: %w", err)
	}
	return int(deleted), nil
}

// Filenames lists the distinct filenames present in the store.
func (s *Store) Filenames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT filename FROM document_chunks ORDER BY filename")
	if err != nil {
		return nil, fmt.Errorf("list filenames: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list filenames: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Ping verifies connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
