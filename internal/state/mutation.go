package state

import (
	"context"

	"github.com/crypton-club/clubdata/internal/club"
)

// Op names a mutator.
type Op string

const (
	OpAdd    Op = "add"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Outcome is the terminal state of a mutation.
type Outcome int

const (
	// Pending means the change is applied in memory and the adapter has not
	// answered yet.
	Pending Outcome = iota
	// Confirmed means the adapter accepted the change.
	Confirmed
	// Reverted means the adapter rejected the change and memory was rolled back.
	Reverted
	// Rejected means the change was refused before it touched memory: the
	// id was already taken, or the collection has not loaded under a
	// whole-collection strategy.
	Rejected
	// Unchanged means the target did not exist so nothing was applied or sent.
	Unchanged
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Confirmed:
		return "confirmed"
	case Reverted:
		return "reverted"
	case Rejected:
		return "rejected"
	case Unchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}

// Result describes how a mutation ended.
type Result struct {
	Resource club.Resource
	Op       Op
	ID       club.ID
	Outcome  Outcome
	Err      error
}

// OK reports whether the mutation left the backend consistent with the
// caller's intent.
func (r Result) OK() bool {
	return r.Outcome == Confirmed || r.Outcome == Unchanged
}

// Mutation tracks one optimistic change. The in-memory effect is visible as
// soon as the mutator returns; Done closes once the adapter has answered.
type Mutation struct {
	done   chan struct{}
	result Result
}

func newMutation(resource club.Resource, op Op, id club.ID) *Mutation {
	return &Mutation{
		done:   make(chan struct{}),
		result: Result{Resource: resource, Op: op, ID: id, Outcome: Pending},
	}
}

func finished(resource club.Resource, op Op, id club.ID, outcome Outcome, err error) *Mutation {
	m := newMutation(resource, op, id)
	m.finish(outcome, err)
	return m
}

func (m *Mutation) finish(outcome Outcome, err error) {
	m.result.Outcome = outcome
	m.result.Err = err
	close(m.done)
}

// ID returns the id of the record the mutation targets. For adds it is the id
// assigned before insertion.
func (m *Mutation) ID() club.ID { return m.result.ID }

// Done is closed when the mutation reaches a terminal outcome.
func (m *Mutation) Done() <-chan struct{} { return m.done }

// Result returns the current result without blocking. Outcome is Pending
// until Done is closed.
func (m *Mutation) Result() Result {
	select {
	case <-m.done:
		return m.result
	default:
		return Result{Resource: m.result.Resource, Op: m.result.Op, ID: m.result.ID, Outcome: Pending}
	}
}

// Wait blocks until the mutation finishes or ctx ends.
func (m *Mutation) Wait(ctx context.Context) (Result, error) {
	select {
	case <-m.done:
		return m.result, nil
	case <-ctx.Done():
		return m.Result(), ctx.Err()
	}
}
