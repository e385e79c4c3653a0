package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"

	"github.com/crypton-club/clubdata/internal/club"
)

const documentsSchema = `
CREATE TABLE IF NOT EXISTS documents (
	resource TEXT    NOT NULL,
	position INTEGER NOT NULL,
	doc_id   TEXT    NOT NULL,
	body     TEXT    NOT NULL,
	PRIMARY KEY (resource, position)
);
CREATE INDEX IF NOT EXISTS idx_documents_id ON documents(resource, doc_id);`

// SQLiteRepository stores documents as rows, one table for all resources.
type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLiteRepository creates or opens the database at path.
func OpenSQLiteRepository(path string) (*SQLiteRepository, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, stmt := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		documentsSchema,
	} {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("prepare database: %w", err)
		}
	}
	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Read(ctx context.Context, resource club.Resource) ([]json.RawMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT body FROM documents WHERE resource = ? ORDER BY position`, string(resource))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", resource, err)
	}
	defer func() { _ = rows.Close() }()

	docs := []json.RawMessage{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan %s: %w", resource, err)
		}
		docs = append(docs, json.RawMessage(body))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", resource, err)
	}
	return docs, nil
}

// Write replaces every row of resource in one transaction.
func (r *SQLiteRepository) Write(ctx context.Context, resource club.Resource, docs []json.RawMessage) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin write %s: %w", resource, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE resource = ?`, string(resource)); err != nil {
		return fmt.Errorf("clear %s: %w", resource, err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO documents (resource, position, doc_id, body) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, doc := range docs {
		var head struct {
			ID club.ID `json:"id"`
		}
		if err := json.Unmarshal(doc, &head); err != nil {
			return fmt.Errorf("document %d of %s: %w", i, resource, err)
		}
		if _, err := stmt.ExecContext(ctx, string(resource), i, head.ID.String(), string(doc)); err != nil {
			return fmt.Errorf("insert %s/%s: %w", resource, head.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", resource, err)
	}
	return nil
}

func (r *SQLiteRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}
