// Package state holds the canonical in-memory copy of the club's four record
// collections and keeps it consistent with a persistence adapter.
//
// # Overview
//
// The Store owns one Collection per record type. Views read copies through
// List, Get or Snapshot and change state only through the mutators Add,
// Update, Edit and Delete. The Store is created once by the composition root
// and passed to every consumer; there is no package-level instance.
//
// # Mutation Protocol
//
// Every mutation moves through the same states:
//
//	Requested ──> Applied ──┬──> Confirmed
//	                        └──> Reverted
//
// A mutator applies the change to memory before it returns, so readers see
// it immediately. The adapter call then runs in its own goroutine and the
// returned *Mutation settles when the adapter answers:
//
//	m := store.Members.Add(ctx, member)   // visible in List() now
//	res, _ := m.Wait(ctx)                 // Confirmed or Reverted
//
// Calls that cannot apply anything settle at once: Rejected for an id that
// is already taken, Unchanged for an update or delete whose id is absent.
//
// # Revert Rules
//
// A failed add removes the record it inserted. A failed update restores the
// previous record unless a later mutation touched the same id. A failed
// delete puts the record back at its old index if the id is still absent.
// A delete the backend answers with club.ErrNotFound counts as confirmed.
//
// # Ordering
//
// Mutations of one collection are applied to memory in call order, and
// their adapter calls run one after another in that same order. Collections
// are independent of each other.
//
// # Update Semantics
//
// Update replaces the stored record wholesale at its existing position.
// Edit is the merge helper: it copies the current record, lets the caller
// change fields on the copy and submits the result through Update.
//
// # Loading
//
// LoadAll loads the four collections in parallel. A failed load leaves its
// collection empty, records the error in LoadStatus and does not affect the
// others; Load retries a single collection. Collections whose adapter is a
// SnapshotWriter reject every change with ErrNotLoaded until a load has
// succeeded.
//
// # Change Notification
//
// Changed returns a channel that closes on the next change to any
// collection. Views wait on it and then read a fresh Snapshot.
package state
