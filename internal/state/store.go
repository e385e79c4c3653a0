package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/crypton-club/clubdata/internal/club"
)

// Snapshot is an immutable view of every collection at one point in time.
type Snapshot struct {
	Events       []club.Event
	Members      []club.Member
	Achievements []club.Achievement
	BlogPosts    []club.BlogPost
	Status       map[club.Resource]LoadStatus
	Version      uint64
	LastUpdated  time.Time
}

// Failing lists collections whose most recent load attempt failed.
func (s Snapshot) Failing() []club.Resource {
	var out []club.Resource
	for _, r := range club.Resources {
		if st, ok := s.Status[r]; ok && st.LastError != nil {
			out = append(out, r)
		}
	}
	return out
}

// Count returns the number of records in a collection.
func (s Snapshot) Count(r club.Resource) int {
	switch r {
	case club.Events:
		return len(s.Events)
	case club.Members:
		return len(s.Members)
	case club.Achievements:
		return len(s.Achievements)
	case club.Blog:
		return len(s.BlogPosts)
	}
	return 0
}

// Records returns the slice held for r, for callers that encode it
// without caring about the element type.
func (s Snapshot) Records(r club.Resource) any {
	switch r {
	case club.Events:
		return s.Events
	case club.Members:
		return s.Members
	case club.Achievements:
		return s.Achievements
	case club.Blog:
		return s.BlogPosts
	}
	return nil
}

// Adapters bundles one adapter per collection.
type Adapters struct {
	Events       Adapter[club.Event]
	Members      Adapter[club.Member]
	Achievements Adapter[club.Achievement]
	Blog         Adapter[club.BlogPost]
}

// Store owns the four collections for the lifetime of the process. It is
// constructed once at startup and handed to every consumer.
type Store struct {
	Events       *Collection[club.Event]
	Members      *Collection[club.Member]
	Achievements *Collection[club.Achievement]
	BlogPosts    *Collection[club.BlogPost]

	log *zap.SugaredLogger

	mu      sync.Mutex
	version uint64
	updated time.Time
	changed chan struct{}
}

// NewStore wires the collections to their adapters. opts.OnChange is
// ignored; the store installs its own change notification.
func NewStore(adapters Adapters, opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	s := &Store{log: opts.Logger}
	opts.OnChange = s.notify

	s.Events = NewCollection(club.Events, adapters.Events, opts)
	s.Members = NewCollection(club.Members, adapters.Members, opts)
	s.Achievements = NewCollection(club.Achievements, adapters.Achievements, opts)
	s.BlogPosts = NewCollection(club.Blog, adapters.Blog, opts)
	return s
}

// LoadAll loads every collection in parallel. A failing collection is left
// empty and does not hold up the others; the joined error lists every
// failure.
func (s *Store) LoadAll(ctx context.Context) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	for _, r := range club.Resources {
		g.Go(func() error {
			if err := s.Load(ctx, r); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// Load loads a single collection.
func (s *Store) Load(ctx context.Context, r club.Resource) error {
	switch r {
	case club.Events:
		return s.Events.Load(ctx)
	case club.Members:
		return s.Members.Load(ctx)
	case club.Achievements:
		return s.Achievements.Load(ctx)
	case club.Blog:
		return s.BlogPosts.Load(ctx)
	}
	return errors.New("unknown resource " + string(r))
}

// Status returns the load status of one collection.
func (s *Store) Status(r club.Resource) LoadStatus {
	switch r {
	case club.Events:
		return s.Events.Status()
	case club.Members:
		return s.Members.Status()
	case club.Achievements:
		return s.Achievements.Status()
	case club.Blog:
		return s.BlogPosts.Status()
	}
	return LoadStatus{}
}

// Delete removes a record from the named collection. It exists for callers
// that select the collection at runtime, such as the CLI and the TUI.
func (s *Store) Delete(ctx context.Context, r club.Resource, id club.ID) (*Mutation, error) {
	switch r {
	case club.Events:
		return s.Events.Delete(ctx, id), nil
	case club.Members:
		return s.Members.Delete(ctx, id), nil
	case club.Achievements:
		return s.Achievements.Delete(ctx, id), nil
	case club.Blog:
		return s.BlogPosts.Delete(ctx, id), nil
	}
	return nil, errors.New("unknown resource " + string(r))
}

// AddJSON decodes a single record of the named collection and adds it.
func (s *Store) AddJSON(ctx context.Context, r club.Resource, data []byte) (*Mutation, error) {
	switch r {
	case club.Events:
		return addJSON(ctx, s.Events, data)
	case club.Members:
		return addJSON(ctx, s.Members, data)
	case club.Achievements:
		return addJSON(ctx, s.Achievements, data)
	case club.Blog:
		return addJSON(ctx, s.BlogPosts, data)
	}
	return nil, errors.New("unknown resource " + string(r))
}

func addJSON[T club.Record[T]](ctx context.Context, c *Collection[T], data []byte) (*Mutation, error) {
	var rec T
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode %s record: %w", c.Resource(), err)
	}
	return c.Add(ctx, rec), nil
}

// PatchJSON merges the fields present in data into the record with id and
// submits the result as an update, the way an edit form spreads its values
// over the stored record. Fields absent from data keep their values.
func (s *Store) PatchJSON(ctx context.Context, r club.Resource, id club.ID, data []byte) (*Mutation, error) {
	switch r {
	case club.Events:
		return patchJSON(ctx, s.Events, id, data)
	case club.Members:
		return patchJSON(ctx, s.Members, id, data)
	case club.Achievements:
		return patchJSON(ctx, s.Achievements, id, data)
	case club.Blog:
		return patchJSON(ctx, s.BlogPosts, id, data)
	}
	return nil, errors.New("unknown resource " + string(r))
}

func patchJSON[T club.Record[T]](ctx context.Context, c *Collection[T], id club.ID, data []byte) (*Mutation, error) {
	var probe T
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode %s patch: %w", c.Resource(), err)
	}
	return c.Edit(ctx, id, func(rec *T) {
		_ = json.Unmarshal(data, rec)
	}), nil
}

// Snapshot returns copies of all four collections.
func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{
		Events:       s.Events.List(),
		Members:      s.Members.List(),
		Achievements: s.Achievements.List(),
		BlogPosts:    s.BlogPosts.List(),
		Status:       make(map[club.Resource]LoadStatus, len(club.Resources)),
	}
	for _, r := range club.Resources {
		snap.Status[r] = s.Status(r)
	}

	s.mu.Lock()
	snap.Version = s.version
	snap.LastUpdated = s.updated
	s.mu.Unlock()
	return snap
}

// Changed returns a channel that is closed on the next change to any
// collection. Call it again after it fires to wait for the following one.
func (s *Store) Changed() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.changed == nil {
		s.changed = make(chan struct{})
	}
	return s.changed
}

// Version increases on every change.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *Store) notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version++
	s.updated = time.Now()
	if s.changed != nil {
		close(s.changed)
		s.changed = nil
	}
}
