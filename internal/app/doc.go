// Package app is the composition root for clubdata.
//
// # Overview
//
// It turns a config.Config into running pieces: the sync adapters for the
// chosen strategy, the shared state.Store, the background reloader, and
// either the terminal browser or the reference API server.
//
// # Components
//
//   - app.go: Open, Browse, Serve and Migrate entry points
//   - poller.go: background reloader that retries failed collection loads
//
// # Data Flow
//
//	┌──────────────┐
//	│   Browse()   │
//	└──────┬───────┘
//	       │
//	       ├─────> logger.New()        File logger (stderr belongs to the TUI)
//	       ├─────> Open()              Adapters + Store + initial LoadAll
//	       ├─────> StartReloader()     Retry failed loads with backoff
//	       └─────> ui.Run()            Start TUI (blocks)
//
// # Reload Behavior
//
// A collection whose load failed keeps its previous contents (empty on
// first start) and is retried on its own schedule: the base interval
// doubled per consecutive failure, capped at 30 seconds. Collections that
// loaded are never reloaded by the poller. Mutations are not retried here;
// the store reports their outcome and leaves the decision to the caller.
//
// # Error Handling
//
// Open only fails on wiring problems: an unknown strategy, an unusable API
// base, or a cache file that cannot be opened. A failed initial load is
// logged and left to the reloader so the browser still starts offline.
package app
