package adapter

import (
	"context"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/crypton-club/clubdata/internal/club"
	"github.com/crypton-club/clubdata/internal/localcache"
)

// CacheKey is the local cache key holding a collection.
func CacheKey(resource club.Resource) string { return "clubdata." + string(resource) }

// LocalAdapter keeps a collection as one JSON array in the local cache.
type LocalAdapter[T club.Record[T]] struct {
	cache    *localcache.Cache
	resource club.Resource
	key      string
	log      *zap.SugaredLogger
}

func (a *LocalAdapter[T]) Strategy() string { return string(Local) }

// WritesSnapshot marks the adapter as saving the whole collection at once.
func (a *LocalAdapter[T]) WritesSnapshot() bool { return true }

// Load reads the saved snapshot. A missing, unreadable or invalid snapshot
// is replaced by the bundled dataset, so Load only fails when that dataset
// itself is broken.
func (a *LocalAdapter[T]) Load(ctx context.Context) ([]T, error) {
	data, err := a.cache.Get(ctx, a.key)
	switch {
	case errors.Is(err, localcache.ErrMissing):
		a.log.Debugw("no saved snapshot, using defaults")
		return club.Defaults[T](a.resource)
	case err != nil:
		a.log.Warnw("read saved snapshot failed, using defaults", "error", err)
		return club.Defaults[T](a.resource)
	}

	items, err := club.DecodeList[T](data)
	if err != nil {
		a.log.Warnw("saved snapshot unusable, using defaults", "error", err)
		return club.Defaults[T](a.resource)
	}
	return items, nil
}

func (a *LocalAdapter[T]) Create(ctx context.Context, rec T, snapshot []T) (T, error) {
	return a.write(ctx, rec, snapshot)
}

func (a *LocalAdapter[T]) Update(ctx context.Context, rec T, snapshot []T) (T, error) {
	return a.write(ctx, rec, snapshot)
}

func (a *LocalAdapter[T]) Delete(ctx context.Context, _ club.ID, snapshot []T) error {
	return a.save(ctx, snapshot)
}

func (a *LocalAdapter[T]) write(ctx context.Context, rec T, snapshot []T) (T, error) {
	var zero T
	if err := checkOutgoing(rec); err != nil {
		return zero, err
	}
	if err := a.save(ctx, snapshot); err != nil {
		return zero, err
	}
	return rec, nil
}

// save writes snapshot under the collection's key. Load throws away a
// snapshot holding any invalid record, so one is never written.
func (a *LocalAdapter[T]) save(ctx context.Context, snapshot []T) error {
	if snapshot == nil {
		snapshot = []T{}
	}
	for _, rec := range snapshot {
		if err := checkOutgoing(rec); err != nil {
			return fmt.Errorf("save %s: %w", a.resource, err)
		}
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode %s: %w", a.resource, err)
	}
	return a.cache.Put(ctx, a.key, data)
}
