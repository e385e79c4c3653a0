package adapter

import (
	"context"
	"fmt"

	"github.com/crypton-club/clubdata/internal/api"
	"github.com/crypton-club/clubdata/internal/club"
)

// RemoteAdapter maps each mutation to a targeted REST call.
type RemoteAdapter[T club.Record[T]] struct {
	client   *api.Client
	resource club.Resource
}

func (a *RemoteAdapter[T]) Strategy() string { return string(Remote) }

func (a *RemoteAdapter[T]) Load(ctx context.Context) ([]T, error) {
	return api.List[T](ctx, a.client, a.resource)
}

// Create posts rec and returns the record the server stored. A response
// whose id differs from the one sent is refused.
func (a *RemoteAdapter[T]) Create(ctx context.Context, rec T, _ []T) (T, error) {
	var zero T
	if err := checkOutgoing(rec); err != nil {
		return zero, err
	}
	saved, err := api.Create(ctx, a.client, rec)
	if err != nil {
		return zero, err
	}
	if !saved.Key().Matches(rec.Key()) {
		return zero, fmt.Errorf("create %s: server returned id %q for %q", a.resource, saved.Key(), rec.Key())
	}
	return saved, nil
}

func (a *RemoteAdapter[T]) Update(ctx context.Context, rec T, _ []T) (T, error) {
	var zero T
	if err := checkOutgoing(rec); err != nil {
		return zero, err
	}
	return api.Replace(ctx, a.client, rec)
}

func (a *RemoteAdapter[T]) Delete(ctx context.Context, id club.ID, _ []T) error {
	return a.client.Delete(ctx, a.resource, id)
}
