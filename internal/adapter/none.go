package adapter

import (
	"context"

	"go.uber.org/zap"

	"github.com/crypton-club/clubdata/internal/club"
)

// NoneAdapter serves the bundled dataset and persists nothing. Changes last
// until the process exits.
type NoneAdapter[T club.Record[T]] struct {
	resource club.Resource
	log      *zap.SugaredLogger
}

func (a *NoneAdapter[T]) Strategy() string { return string(None) }

func (a *NoneAdapter[T]) Load(context.Context) ([]T, error) {
	return club.Defaults[T](a.resource)
}

func (a *NoneAdapter[T]) Create(_ context.Context, rec T, _ []T) (T, error) {
	return a.accept(rec)
}

func (a *NoneAdapter[T]) Update(_ context.Context, rec T, _ []T) (T, error) {
	return a.accept(rec)
}

func (a *NoneAdapter[T]) Delete(context.Context, club.ID, []T) error { return nil }

func (a *NoneAdapter[T]) accept(rec T) (T, error) {
	if err := checkOutgoing(rec); err != nil {
		var zero T
		return zero, err
	}
	a.log.Debugw("change kept in memory only", "id", rec.Key())
	return rec, nil
}
