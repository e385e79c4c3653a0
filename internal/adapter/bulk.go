package adapter

import (
	"context"

	"github.com/crypton-club/clubdata/internal/api"
	"github.com/crypton-club/clubdata/internal/club"
)

// BulkAdapter replaces the server's whole array on every mutation.
type BulkAdapter[T club.Record[T]] struct {
	client   *api.Client
	resource club.Resource
}

func (a *BulkAdapter[T]) Strategy() string { return string(Bulk) }

// WritesSnapshot marks the adapter as replacing the whole server array.
func (a *BulkAdapter[T]) WritesSnapshot() bool { return true }

func (a *BulkAdapter[T]) Load(ctx context.Context) ([]T, error) {
	return api.List[T](ctx, a.client, a.resource)
}

func (a *BulkAdapter[T]) Create(ctx context.Context, rec T, snapshot []T) (T, error) {
	return a.replace(ctx, rec, snapshot)
}

func (a *BulkAdapter[T]) Update(ctx context.Context, rec T, snapshot []T) (T, error) {
	return a.replace(ctx, rec, snapshot)
}

func (a *BulkAdapter[T]) Delete(ctx context.Context, _ club.ID, snapshot []T) error {
	return api.ReplaceAll(ctx, a.client, a.resource, snapshot)
}

func (a *BulkAdapter[T]) replace(ctx context.Context, rec T, snapshot []T) (T, error) {
	var zero T
	if err := checkOutgoing(rec); err != nil {
		return zero, err
	}
	if err := api.ReplaceAll(ctx, a.client, a.resource, snapshot); err != nil {
		return zero, err
	}
	return rec, nil
}
