package state

import (
	"context"
	"errors"
	"sync"

	"github.com/crypton-club/clubdata/internal/club"
)

var errBackend = errors.New("backend down")

type call struct {
	op       Op
	id       club.ID
	snapshot int
	ids      []club.ID
}

// fakeAdapter records calls and fails or blocks on demand.
type fakeAdapter[T club.Record[T]] struct {
	mu      sync.Mutex
	initial []T
	loadErr error
	failOps map[Op]error
	gate    chan struct{}
	calls   []call
	assign  func(T) T

	// failNext fails that many upcoming persist calls regardless of op.
	failNext int
	panics   bool
}

func newFake[T club.Record[T]](initial ...T) *fakeAdapter[T] {
	return &fakeAdapter[T]{initial: initial, failOps: map[Op]error{}}
}

func (f *fakeAdapter[T]) Strategy() string { return "fake" }

func (f *fakeAdapter[T]) Load(context.Context) ([]T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return append([]T(nil), f.initial...), nil
}

func (f *fakeAdapter[T]) record(ctx context.Context, op Op, id club.ID, snapshot []T) error {
	f.mu.Lock()
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]club.ID, 0, len(snapshot))
	for _, rec := range snapshot {
		ids = append(ids, rec.Key())
	}
	f.calls = append(f.calls, call{op: op, id: id, snapshot: len(snapshot), ids: ids})
	if f.panics {
		panic("adapter exploded")
	}
	if f.failNext > 0 {
		f.failNext--
		return errBackend
	}
	return f.failOps[op]
}

func (f *fakeAdapter[T]) Create(ctx context.Context, rec T, snapshot []T) (T, error) {
	if err := f.record(ctx, OpAdd, rec.Key(), snapshot); err != nil {
		var zero T
		return zero, err
	}
	if f.assign != nil {
		return f.assign(rec), nil
	}
	return rec, nil
}

func (f *fakeAdapter[T]) Update(ctx context.Context, rec T, snapshot []T) (T, error) {
	if err := f.record(ctx, OpUpdate, rec.Key(), snapshot); err != nil {
		var zero T
		return zero, err
	}
	return rec, nil
}

func (f *fakeAdapter[T]) Delete(ctx context.Context, id club.ID, snapshot []T) error {
	return f.record(ctx, OpDelete, id, snapshot)
}

// snapshotWriter is a fakeAdapter that persists whole collections.
type snapshotWriter[T club.Record[T]] struct {
	*fakeAdapter[T]
}

func (snapshotWriter[T]) WritesSnapshot() bool { return true }

func (f *fakeAdapter[T]) fail(op Op, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failOps[op] = err
}

func (f *fakeAdapter[T]) hold() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gate = make(chan struct{})
}

func (f *fakeAdapter[T]) release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	close(f.gate)
	f.gate = nil
}

func (f *fakeAdapter[T]) recorded() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}
