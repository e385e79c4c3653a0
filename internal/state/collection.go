package state

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/crypton-club/clubdata/internal/club"
)

const defaultPersistTimeout = 10 * time.Second

// Adapter loads and persists one collection. Every persist call receives the
// full collection the backend should hold once the call succeeds: the last
// acknowledged state with this one change applied. Changes that failed and
// changes still queued behind this one are never part of it.
type Adapter[T any] interface {
	Strategy() string
	Load(ctx context.Context) ([]T, error)
	Create(ctx context.Context, rec T, snapshot []T) (T, error)
	Update(ctx context.Context, rec T, snapshot []T) (T, error)
	Delete(ctx context.Context, id club.ID, snapshot []T) error
}

// SnapshotWriter is implemented by adapters that overwrite the backend with
// the whole collection on every change. Their collections refuse changes
// until a load has succeeded, so an empty stand-in is never written back.
type SnapshotWriter interface {
	WritesSnapshot() bool
}

// ErrNotLoaded reports a change refused because the collection has not
// loaded yet and its adapter writes the whole collection.
var ErrNotLoaded = errors.New("collection not loaded")

// LoadStatus reports the outcome of the most recent load attempt.
type LoadStatus struct {
	Loaded      bool
	Attempts    int
	LastAttempt time.Time
	LastError   error
}

// Options tune a Collection.
type Options struct {
	IDs            club.IDGenerator
	Logger         *zap.SugaredLogger
	PersistTimeout time.Duration
	OnChange       func()
}

// Collection is the in-memory copy of one record collection. Reads return
// clones; writes go through Add, Update, Edit and Delete, which apply the
// change immediately and hand it to the adapter in the background.
type Collection[T club.Record[T]] struct {
	resource club.Resource
	adapter  Adapter[T]
	ids      club.IDGenerator
	log      *zap.SugaredLogger
	timeout  time.Duration
	onChange func()
	whole    bool

	mu      sync.RWMutex
	items   []T
	settled []T // last state the adapter acknowledged
	revs    map[club.ID]uint64
	rev     uint64
	load    LoadStatus
	tail    chan struct{}
}

// NewCollection builds an empty collection backed by adapter.
func NewCollection[T club.Record[T]](resource club.Resource, adapter Adapter[T], opts Options) *Collection[T] {
	ids := opts.IDs
	if ids == nil {
		ids = &club.TimestampIDs{}
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	timeout := opts.PersistTimeout
	if timeout <= 0 {
		timeout = defaultPersistTimeout
	}
	onChange := opts.OnChange
	if onChange == nil {
		onChange = func() {}
	}
	whole := false
	if w, ok := adapter.(SnapshotWriter); ok {
		whole = w.WritesSnapshot()
	}
	return &Collection[T]{
		resource: resource,
		adapter:  adapter,
		ids:      ids,
		log:      log.With("collection", string(resource), "strategy", adapter.Strategy()),
		timeout:  timeout,
		onChange: onChange,
		whole:    whole,
		items:    []T{},
		settled:  []T{},
		revs:     make(map[club.ID]uint64),
	}
}

// Resource returns the collection's name.
func (c *Collection[T]) Resource() club.Resource { return c.resource }

// List returns a copy of every record in collection order.
func (c *Collection[T]) List() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneItems(c.items)
}

// Len returns the number of records.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Get looks a record up by id.
func (c *Collection[T]) Get(id club.ID) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if idx := c.indexLocked(id); idx >= 0 {
		return c.items[idx].Clone(), true
	}
	var zero T
	return zero, false
}

// Status returns the load status.
func (c *Collection[T]) Status() LoadStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.load
}

// Load asks the adapter for the initial snapshot. On failure the collection
// keeps its previous contents (empty before the first success) and the error
// is recorded so the load can be retried.
func (c *Collection[T]) Load(ctx context.Context) error {
	items, err := c.safeLoad(ctx)

	c.mu.Lock()
	c.load.Attempts++
	c.load.LastAttempt = time.Now()
	if err != nil {
		c.load.LastError = err
		c.mu.Unlock()
		loadsTotal.WithLabelValues(string(c.resource), "failed").Inc()
		c.log.Warnw("load failed", "attempt", c.load.Attempts, "error", err)
		c.onChange()
		return fmt.Errorf("load %s: %w", c.resource, err)
	}
	c.items = cloneItems(items)
	c.settled = cloneItems(items)
	c.revs = make(map[club.ID]uint64)
	c.load.Loaded = true
	c.load.LastError = nil
	count := len(c.items)
	c.mu.Unlock()

	loadsTotal.WithLabelValues(string(c.resource), "loaded").Inc()
	c.log.Debugw("loaded", "records", count)
	c.onChange()
	return nil
}

func (c *Collection[T]) safeLoad(ctx context.Context) (items []T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("adapter panic: %v", r)
		}
	}()
	return c.adapter.Load(ctx)
}

// Add inserts rec, assigning an id first when it has none. Blog posts go to
// the front, every other record to the back. Schema checks belong to the
// adapter; the store only refuses an id that is already taken, or any add
// before a whole-collection adapter has loaded.
func (c *Collection[T]) Add(ctx context.Context, rec T) *Mutation {
	if rec.Key().IsZero() {
		rec = rec.WithKey(c.ids.NewID())
	}
	id := rec.Key()

	c.mu.Lock()
	if err := c.refuseLocked(); err != nil {
		c.mu.Unlock()
		return c.reject(OpAdd, id, err)
	}
	if c.indexLocked(id) >= 0 {
		c.mu.Unlock()
		return c.reject(OpAdd, id, fmt.Errorf("%w: %s", club.ErrDuplicateID, id))
	}
	stored := rec.Clone()
	c.items = c.insert(c.items, stored)
	rev := c.bumpLocked(id)
	m := newMutation(c.resource, OpAdd, id)
	prev, done := c.enqueueLocked()
	c.mu.Unlock()
	c.onChange()

	go c.persist(ctx, prev, done, m, func(ctx context.Context) error {
		next := c.pending(func(items []T) []T {
			if indexIn(items, id) >= 0 {
				return items
			}
			return c.insert(items, stored.Clone())
		})
		saved, err := c.adapter.Create(ctx, stored.Clone(), next)
		if err != nil {
			return err
		}
		c.confirm(id, rev, saved, next)
		return nil
	}, func() {
		if idx := c.indexLocked(id); idx >= 0 {
			c.items = slices.Delete(c.items, idx, idx+1)
			delete(c.revs, id)
		}
	})
	return m
}

// Update replaces the record with rec's id wholesale, keeping its position.
// Fields absent from rec are lost; use Edit to change selected fields. When
// no record has that id the call does nothing.
func (c *Collection[T]) Update(ctx context.Context, rec T) *Mutation {
	id := rec.Key()

	c.mu.Lock()
	if err := c.refuseLocked(); err != nil {
		c.mu.Unlock()
		return c.reject(OpUpdate, id, err)
	}
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return finished(c.resource, OpUpdate, id, Unchanged, nil)
	}
	prior := c.items[idx]
	id = prior.Key()
	stored := rec.WithKey(id).Clone()
	c.items[idx] = stored
	rev := c.bumpLocked(id)
	m := newMutation(c.resource, OpUpdate, id)
	prev, done := c.enqueueLocked()
	c.mu.Unlock()
	c.onChange()

	go c.persist(ctx, prev, done, m, func(ctx context.Context) error {
		next := c.pending(func(items []T) []T {
			if i := indexIn(items, id); i >= 0 {
				items[i] = stored.Clone()
			}
			return items
		})
		saved, err := c.adapter.Update(ctx, stored.Clone(), next)
		if err != nil {
			return err
		}
		c.confirm(id, rev, saved, next)
		return nil
	}, func() {
		if c.revs[id] != rev {
			return
		}
		if i := c.indexLocked(id); i >= 0 {
			c.items[i] = prior
		}
	})
	return m
}

// Edit applies fn to a copy of the current record and submits the result
// through Update. It is the merge point for callers that only hold some of
// a record's fields.
func (c *Collection[T]) Edit(ctx context.Context, id club.ID, fn func(*T)) *Mutation {
	current, ok := c.Get(id)
	if !ok {
		return finished(c.resource, OpUpdate, id, Unchanged, nil)
	}
	fn(&current)
	return c.Update(ctx, current.WithKey(id))
}

// Delete removes the first record whose id matches. Deleting an absent id
// does nothing, so repeated deletes are harmless.
func (c *Collection[T]) Delete(ctx context.Context, id club.ID) *Mutation {
	c.mu.Lock()
	if err := c.refuseLocked(); err != nil {
		c.mu.Unlock()
		return c.reject(OpDelete, id, err)
	}
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return finished(c.resource, OpDelete, id, Unchanged, nil)
	}
	prior := c.items[idx]
	id = prior.Key()
	c.items = slices.Delete(c.items, idx, idx+1)
	c.bumpLocked(id)
	m := newMutation(c.resource, OpDelete, id)
	prev, done := c.enqueueLocked()
	c.mu.Unlock()
	c.onChange()

	go c.persist(ctx, prev, done, m, func(ctx context.Context) error {
		next := c.pending(func(items []T) []T {
			if i := indexIn(items, id); i >= 0 {
				return slices.Delete(items, i, i+1)
			}
			return items
		})
		err := c.adapter.Delete(ctx, id, next)
		if err != nil && !errors.Is(err, club.ErrNotFound) {
			return err
		}
		c.commit(next)
		return nil
	}, func() {
		if c.indexLocked(id) >= 0 {
			return
		}
		at := min(idx, len(c.items))
		c.items = slices.Insert(c.items, at, prior)
	})
	return m
}

// persist waits for the previous mutation of this collection, runs call and
// settles m. revert runs under the write lock when call fails.
func (c *Collection[T]) persist(ctx context.Context, prev <-chan struct{}, done chan struct{}, m *Mutation, call func(context.Context) error, revert func()) {
	defer close(done)

	if prev != nil {
		select {
		case <-prev:
		case <-ctx.Done():
			c.settle(m, ctx.Err(), revert)
			return
		}
	}

	pctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	c.settle(m, safeCall(pctx, call), revert)
}

func (c *Collection[T]) settle(m *Mutation, err error, revert func()) {
	res := m.result
	if err == nil {
		mutationsTotal.WithLabelValues(string(c.resource), string(res.Op), Confirmed.String()).Inc()
		c.log.Debugw("mutation confirmed", "op", res.Op, "id", res.ID)
		m.finish(Confirmed, nil)
		return
	}

	c.mu.Lock()
	revert()
	c.mu.Unlock()
	c.onChange()

	mutationsTotal.WithLabelValues(string(c.resource), string(res.Op), Reverted.String()).Inc()
	c.log.Errorw("mutation reverted", "op", res.Op, "id", res.ID, "error", err)
	m.finish(Reverted, err)
}

func safeCall(ctx context.Context, call func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("adapter panic: %v", r)
		}
	}()
	return call(ctx)
}

func (c *Collection[T]) reject(op Op, id club.ID, err error) *Mutation {
	mutationsTotal.WithLabelValues(string(c.resource), string(op), Rejected.String()).Inc()
	c.log.Warnw("mutation rejected", "op", op, "id", id, "error", err)
	return finished(c.resource, op, id, Rejected, err)
}

// refuseLocked blocks changes a whole-collection adapter would write over
// backend data it never read.
func (c *Collection[T]) refuseLocked() error {
	if c.whole && !c.load.Loaded {
		return fmt.Errorf("%w: %s", ErrNotLoaded, c.resource)
	}
	return nil
}

func (c *Collection[T]) insert(items []T, rec T) []T {
	if c.resource.Prepends() {
		return append([]T{rec}, items...)
	}
	return append(items, rec)
}

// pending returns the acknowledged state with one change applied. It runs
// inside the persist chain, after every earlier change has settled.
func (c *Collection[T]) pending(apply func([]T) []T) []T {
	c.mu.RLock()
	items := cloneItems(c.settled)
	c.mu.RUnlock()
	return apply(items)
}

func (c *Collection[T]) commit(next []T) {
	c.mu.Lock()
	c.settled = next
	c.mu.Unlock()
}

// confirm records next as acknowledged and swaps in the record the backend
// stored, unless a later mutation has touched the same id in the meantime.
func (c *Collection[T]) confirm(id club.ID, rev uint64, saved T, next []T) {
	ok := !saved.Key().IsZero() && saved.Key().Matches(id)
	if i := indexIn(next, id); ok && i >= 0 {
		next[i] = saved.WithKey(id).Clone()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.settled = next
	if !ok || c.revs[id] != rev {
		return
	}
	if idx := c.indexLocked(id); idx >= 0 {
		c.items[idx] = saved.WithKey(id).Clone()
	}
}

// enqueueLocked links a new mutation into the persist chain. The mutation
// waits on prev and closes done when it has settled.
func (c *Collection[T]) enqueueLocked() (prev <-chan struct{}, done chan struct{}) {
	prev = c.tail
	done = make(chan struct{})
	c.tail = done
	return prev, done
}

func (c *Collection[T]) bumpLocked(id club.ID) uint64 {
	c.rev++
	c.revs[id] = c.rev
	return c.rev
}

func (c *Collection[T]) indexLocked(id club.ID) int {
	return indexIn(c.items, id)
}

func indexIn[T club.Record[T]](items []T, id club.ID) int {
	for i, item := range items {
		if item.Key().Matches(id) {
			return i
		}
	}
	return -1
}

func cloneItems[T club.Record[T]](items []T) []T {
	dup := make([]T, len(items))
	for i, item := range items {
		dup[i] = item.Clone()
	}
	return dup
}
