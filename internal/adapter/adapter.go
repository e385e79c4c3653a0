package adapter

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/crypton-club/clubdata/internal/api"
	"github.com/crypton-club/clubdata/internal/club"
	"github.com/crypton-club/clubdata/internal/localcache"
	"github.com/crypton-club/clubdata/internal/state"
)

// Strategy names a persistence strategy.
type Strategy string

const (
	Remote Strategy = "remote"
	Bulk   Strategy = "bulk"
	Local  Strategy = "local"
	None   Strategy = "none"
)

// Strategies lists every supported strategy.
var Strategies = []Strategy{Remote, Bulk, Local, None}

// ParseStrategy resolves a configured strategy name.
func ParseStrategy(name string) (Strategy, error) {
	s := Strategy(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Strategies {
		if s == known {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown strategy %q", name)
}

// NeedsClient reports whether the strategy talks to the REST API.
func (s Strategy) NeedsClient() bool { return s == Remote || s == Bulk }

// NeedsCache reports whether the strategy uses the local cache.
func (s Strategy) NeedsCache() bool { return s == Local }

// Deps carries what the strategies need. Client is required for remote and
// bulk, Cache for local.
type Deps struct {
	Client *api.Client
	Cache  *localcache.Cache
	Logger *zap.SugaredLogger
}

// New builds one adapter per collection for strategy.
func New(strategy Strategy, deps Deps) (state.Adapters, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop().Sugar()
	}
	if strategy.NeedsClient() && deps.Client == nil {
		return state.Adapters{}, fmt.Errorf("%s strategy requires an api client", strategy)
	}
	if strategy.NeedsCache() && deps.Cache == nil {
		return state.Adapters{}, fmt.Errorf("%s strategy requires a local cache", strategy)
	}

	events, err := For[club.Event](strategy, club.Events, deps)
	if err != nil {
		return state.Adapters{}, err
	}
	members, err := For[club.Member](strategy, club.Members, deps)
	if err != nil {
		return state.Adapters{}, err
	}
	achievements, err := For[club.Achievement](strategy, club.Achievements, deps)
	if err != nil {
		return state.Adapters{}, err
	}
	blog, err := For[club.BlogPost](strategy, club.Blog, deps)
	if err != nil {
		return state.Adapters{}, err
	}
	return state.Adapters{
		Events:       events,
		Members:      members,
		Achievements: achievements,
		Blog:         blog,
	}, nil
}

// For builds the adapter of one collection.
func For[T club.Record[T]](strategy Strategy, resource club.Resource, deps Deps) (state.Adapter[T], error) {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	log = log.Named("adapter").With("collection", string(resource))

	switch strategy {
	case Remote:
		return &RemoteAdapter[T]{client: deps.Client, resource: resource}, nil
	case Bulk:
		return &BulkAdapter[T]{client: deps.Client, resource: resource}, nil
	case Local:
		return &LocalAdapter[T]{cache: deps.Cache, resource: resource, key: CacheKey(resource), log: log}, nil
	case None:
		return &NoneAdapter[T]{resource: resource, log: log}, nil
	}
	return nil, fmt.Errorf("unknown strategy %q", strategy)
}

// checkOutgoing validates a record before it leaves the process.
func checkOutgoing[T club.Record[T]](rec T) error {
	if rec.Key().IsZero() {
		return fmt.Errorf("%w: %s record has no id", club.ErrInvalid, rec.Resource())
	}
	return rec.Validate()
}
