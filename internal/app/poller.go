package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/crypton-club/clubdata/internal/club"
	"github.com/crypton-club/clubdata/internal/state"
)

const (
	defaultRetryInterval = 2 * time.Second
	maxBackoff           = 30 * time.Second
)

// StartReloader launches a goroutine that retries failed collection loads
// with exponential backoff. Each collection reloads on its own so a slow
// endpoint never delays the others. It returns immediately.
func StartReloader(ctx context.Context, store *state.Store, log *zap.SugaredLogger, interval time.Duration) {
	if interval <= 0 {
		interval = defaultRetryInterval
	}
	r := newReloader(store, log, interval)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				r.tick(ctx, now)
			}
		}
	}()
}

type reloader struct {
	store *state.Store
	log   *zap.SugaredLogger
	base  time.Duration

	mu       sync.Mutex
	inflight map[club.Resource]bool
}

func newReloader(store *state.Store, log *zap.SugaredLogger, base time.Duration) *reloader {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &reloader{store: store, log: log, base: base, inflight: make(map[club.Resource]bool)}
}

func (r *reloader) tick(ctx context.Context, now time.Time) {
	for _, res := range club.Resources {
		st := r.store.Status(res)
		if !retryDue(st, r.base, now) || !r.claim(res) {
			continue
		}
		go func() {
			defer r.release(res)
			if err := r.store.Load(ctx, res); err != nil {
				r.log.Debugw("reload failed", "collection", res, "attempts", st.Attempts+1, "error", err)
				return
			}
			r.log.Infow("reload succeeded", "collection", res, "attempts", st.Attempts+1)
		}()
	}
}

func (r *reloader) claim(res club.Resource) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inflight[res] {
		return false
	}
	r.inflight[res] = true
	return true
}

func (r *reloader) release(res club.Resource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inflight, res)
}

// retryDue reports whether a collection that has never loaded is due for
// another attempt.
func retryDue(st state.LoadStatus, base time.Duration, now time.Time) bool {
	if st.Loaded || st.LastError == nil {
		return false
	}
	return now.Sub(st.LastAttempt) >= calculateBackoff(st.Attempts-1, base)
}

// calculateBackoff doubles base for every consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}

func secondsToDuration(s int) time.Duration { return time.Duration(s) * time.Second }
