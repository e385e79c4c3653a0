package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/crypton-club/clubdata/internal/club"
)

// Repository stores each resource as an ordered array of JSON documents.
// Writes replace the whole array.
type Repository interface {
	Read(ctx context.Context, resource club.Resource) ([]json.RawMessage, error)
	Write(ctx context.Context, resource club.Resource, docs []json.RawMessage) error
	Close() error
}

// Backend names a Repository implementation.
type Backend string

const (
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
)

// OpenRepository opens the backend rooted at dir.
func OpenRepository(backend Backend, dir string) (Repository, error) {
	switch backend {
	case BackendFile, "":
		return NewFileRepository(dir)
	case BackendSQLite:
		return OpenSQLiteRepository(filepath.Join(dir, "clubdata.db"))
	}
	return nil, fmt.Errorf("unknown backend %q", backend)
}

// FileRepository keeps one pretty-printed JSON file per resource.
type FileRepository struct {
	dir string
}

// NewFileRepository creates dir if needed.
func NewFileRepository(dir string) (*FileRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileRepository{dir: dir}, nil
}

func (r *FileRepository) path(resource club.Resource) string {
	return filepath.Join(r.dir, string(resource)+".json")
}

// Read returns the stored documents. A resource that was never written is
// empty.
func (r *FileRepository) Read(_ context.Context, resource club.Resource) ([]json.RawMessage, error) {
	data, err := os.ReadFile(r.path(resource))
	if errors.Is(err, os.ErrNotExist) {
		return []json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", resource, err)
	}
	var docs []json.RawMessage
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", resource, err)
	}
	if docs == nil {
		docs = []json.RawMessage{}
	}
	return docs, nil
}

// Write replaces the file through a temp file and rename.
func (r *FileRepository) Write(_ context.Context, resource club.Resource, docs []json.RawMessage) error {
	if docs == nil {
		docs = []json.RawMessage{}
	}
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", resource, err)
	}

	tmp, err := os.CreateTemp(r.dir, string(resource)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", resource, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", resource, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", resource, err)
	}
	if err := os.Rename(tmp.Name(), r.path(resource)); err != nil {
		return fmt.Errorf("write %s: %w", resource, err)
	}
	return nil
}

func (r *FileRepository) Close() error { return nil }

// Seed writes the bundled dataset into every resource that is still empty.
func Seed(ctx context.Context, repo Repository) error {
	for _, resource := range club.Resources {
		docs, err := repo.Read(ctx, resource)
		if err != nil {
			return err
		}
		if len(docs) > 0 {
			continue
		}
		defaults, err := defaultDocs(resource)
		if err != nil {
			return err
		}
		if err := repo.Write(ctx, resource, defaults); err != nil {
			return err
		}
	}
	return nil
}

// Copy moves every resource from src to dst, replacing what dst holds.
func Copy(ctx context.Context, dst, src Repository) (map[club.Resource]int, error) {
	counts := make(map[club.Resource]int, len(club.Resources))
	for _, resource := range club.Resources {
		docs, err := src.Read(ctx, resource)
		if err != nil {
			return counts, err
		}
		if err := dst.Write(ctx, resource, docs); err != nil {
			return counts, err
		}
		counts[resource] = len(docs)
	}
	return counts, nil
}

func defaultDocs(resource club.Resource) ([]json.RawMessage, error) {
	switch resource {
	case club.Events:
		return encodeDefaults[club.Event](resource)
	case club.Members:
		return encodeDefaults[club.Member](resource)
	case club.Achievements:
		return encodeDefaults[club.Achievement](resource)
	case club.Blog:
		return encodeDefaults[club.BlogPost](resource)
	}
	return nil, fmt.Errorf("unknown resource %q", resource)
}

func encodeDefaults[T club.Record[T]](resource club.Resource) ([]json.RawMessage, error) {
	items, err := club.Defaults[T](resource)
	if err != nil {
		return nil, err
	}
	return encodeDocs(items)
}

func decodeDocs[T club.Record[T]](docs []json.RawMessage) ([]T, error) {
	items := make([]T, 0, len(docs))
	for i, doc := range docs {
		var rec T
		if err := json.Unmarshal(doc, &rec); err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		items = append(items, rec)
	}
	return items, nil
}

func encodeDocs[T any](items []T) ([]json.RawMessage, error) {
	docs := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		doc, err := json.Marshal(item)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
