package state

import (
	"context"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crypton-club/clubdata/internal/club"
)

func member(id, name, role string) club.Member {
	return club.Member{ID: club.ID(id), Name: name, Role: role}
}

func post(id, title string) club.BlogPost {
	return club.BlogPost{ID: club.ID(id), Title: title, Date: "2024-01-01", Tags: []string{"x"}}
}

func wait(t *testing.T, m *Mutation) Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	res, err := m.Wait(ctx)
	require.NoError(t, err, "mutation did not settle")
	return res
}

func loaded[T club.Record[T]](t *testing.T, resource club.Resource, initial ...T) (*Collection[T], *fakeAdapter[T]) {
	t.Helper()
	fake := newFake(initial...)
	c := NewCollection[T](resource, fake, Options{})
	require.NoError(t, c.Load(context.Background()))
	return c, fake
}

func TestAdd_ListContainsExactlyOne(t *testing.T) {
	c, _ := loaded[club.Member](t, club.Members, member("m1", "A", "Lead"))
	r := member("m2", "B", "Member")

	res := wait(t, c.Add(context.Background(), r))
	assert.Equal(t, Confirmed, res.Outcome)

	var matches int
	for _, m := range c.List() {
		if m.ID == "m2" {
			matches++
			assert.Equal(t, r, m)
		}
	}
	assert.Equal(t, 1, matches)
	assert.Equal(t, []club.ID{"m1", "m2"}, ids(c.List()))
}

func TestAdd_AssignsIDWhenMissing(t *testing.T) {
	c, fake := loaded[club.Member](t, club.Members)

	m := c.Add(context.Background(), member("", "Anon", "Member"))
	require.False(t, m.ID().IsZero())
	res := wait(t, m)
	assert.Equal(t, Confirmed, res.Outcome)

	got, ok := c.Get(m.ID())
	require.True(t, ok)
	assert.Equal(t, "Anon", got.Name)
	assert.Equal(t, m.ID(), fake.recorded()[0].id)
}

func TestAdd_DuplicateIDRejected(t *testing.T) {
	c, fake := loaded[club.Member](t, club.Members, member("m1", "A", "Lead"))

	res := wait(t, c.Add(context.Background(), member("m1", "Other", "Member")))
	assert.Equal(t, Rejected, res.Outcome)
	assert.ErrorIs(t, res.Err, club.ErrDuplicateID)
	assert.Len(t, c.List(), 1)
	assert.Empty(t, fake.recorded())
}

func TestAdd_BlogPostsAreNewestFirst(t *testing.T) {
	c, _ := loaded[club.BlogPost](t, club.Blog, post("old", "Old"))

	wait(t, c.Add(context.Background(), post("p1", "P1")))
	wait(t, c.Add(context.Background(), post("p2", "P2")))

	assert.Equal(t, []club.ID{"p2", "p1", "old"}, ids(c.List()))
}

func TestUpdate_ReplacesInPlace(t *testing.T) {
	c, _ := loaded[club.Member](t, club.Members,
		member("m1", "A", "Lead"), member("m2", "B", "Member"), member("m3", "C", "Member"))

	res := wait(t, c.Update(context.Background(), member("m2", "B2", "Treasurer")))
	assert.Equal(t, Confirmed, res.Outcome)

	list := c.List()
	assert.Equal(t, []club.ID{"m1", "m2", "m3"}, ids(list))
	assert.Equal(t, member("m1", "A", "Lead"), list[0])
	assert.Equal(t, member("m2", "B2", "Treasurer"), list[1])
	assert.Equal(t, member("m3", "C", "Member"), list[2])
}

func TestUpdate_WholesaleReplaceDropsMissingFields(t *testing.T) {
	c, _ := loaded[club.Member](t, club.Members, member("m1", "X", "Member"))

	res := wait(t, c.Update(context.Background(), club.Member{ID: "m1", Role: "Lead"}))
	assert.Equal(t, Confirmed, res.Outcome)

	got, ok := c.Get("m1")
	require.True(t, ok)
	assert.Equal(t, club.Member{ID: "m1", Role: "Lead"}, got)
}

func TestEdit_MergesWithExistingFields(t *testing.T) {
	c, _ := loaded[club.Member](t, club.Members, member("m1", "X", "Member"))

	res := wait(t, c.Edit(context.Background(), "m1", func(m *club.Member) {
		m.Role = "Lead"
	}))
	assert.Equal(t, Confirmed, res.Outcome)

	got, _ := c.Get("m1")
	assert.Equal(t, member("m1", "X", "Lead"), got)

	res = wait(t, c.Edit(context.Background(), "missing", func(*club.Member) {}))
	assert.Equal(t, Unchanged, res.Outcome)
}

func TestUpdate_MissingIDIsNoop(t *testing.T) {
	c, fake := loaded[club.Member](t, club.Members, member("m1", "A", "Lead"))

	res := wait(t, c.Update(context.Background(), member("nope", "Z", "Z")))
	assert.Equal(t, Unchanged, res.Outcome)
	assert.Equal(t, []club.ID{"m1"}, ids(c.List()))
	assert.Empty(t, fake.recorded())
}

func TestDelete_IsIdempotent(t *testing.T) {
	c, fake := loaded[club.Member](t, club.Members,
		member("m1", "A", "Lead"), member("m2", "B", "Member"))

	first := wait(t, c.Delete(context.Background(), "m1"))
	assert.Equal(t, Confirmed, first.Outcome)
	afterOnce := c.List()

	second := wait(t, c.Delete(context.Background(), "m1"))
	assert.Equal(t, Unchanged, second.Outcome)
	assert.Equal(t, afterOnce, c.List())
	assert.Len(t, fake.recorded(), 1)
}

func TestDelete_MatchesNumericAndStringIDs(t *testing.T) {
	var fromDocumentDB []club.Member
	require.NoError(t, json.Unmarshal([]byte(`[{"id":42,"name":"N"},{"id":"7","name":"S"}]`), &fromDocumentDB))

	c, fake := loaded[club.Member](t, club.Members, fromDocumentDB...)

	wait(t, c.Delete(context.Background(), club.IDFrom(42)))
	assert.Equal(t, []club.ID{"7"}, ids(c.List()))

	wait(t, c.Delete(context.Background(), "7"))
	assert.Empty(t, c.List())

	calls := fake.recorded()
	require.Len(t, calls, 2)
	assert.Equal(t, club.ID("42"), calls[0].id)
}

func TestMutation_AppliedBeforeAdapterAnswers(t *testing.T) {
	c, fake := loaded[club.Member](t, club.Members)
	fake.hold()

	m := c.Add(context.Background(), member("m1", "A", "Lead"))
	assert.Equal(t, Pending, m.Result().Outcome)
	assert.Equal(t, []club.ID{"m1"}, ids(c.List()))

	fake.release()
	assert.Equal(t, Confirmed, wait(t, m).Outcome)
}

func TestAdd_FailureRemovesRecord(t *testing.T) {
	c, fake := loaded[club.Member](t, club.Members, member("m1", "A", "Lead"))
	fake.fail(OpAdd, errBackend)

	res := wait(t, c.Add(context.Background(), member("m2", "B", "Member")))
	assert.Equal(t, Reverted, res.Outcome)
	assert.ErrorIs(t, res.Err, errBackend)
	assert.Equal(t, []club.ID{"m1"}, ids(c.List()))
}

func TestUpdate_FailureRestoresPrior(t *testing.T) {
	c, fake := loaded[club.Member](t, club.Members,
		member("m1", "A", "Lead"), member("m2", "B", "Member"))
	fake.fail(OpUpdate, club.ErrNotFound)

	res := wait(t, c.Update(context.Background(), member("m2", "B2", "Lead")))
	assert.Equal(t, Reverted, res.Outcome)
	assert.ErrorIs(t, res.Err, club.ErrNotFound)
	assert.Equal(t, []club.Member{member("m1", "A", "Lead"), member("m2", "B", "Member")}, c.List())
}

func TestUpdate_FailureDoesNotClobberLaterUpdate(t *testing.T) {
	c, fake := loaded[club.Member](t, club.Members, member("m1", "A", "Member"))
	fake.hold()
	fake.failNext = 1

	first := c.Update(context.Background(), member("m1", "A", "Lead"))
	second := c.Update(context.Background(), member("m1", "A", "President"))
	fake.release()

	assert.Equal(t, Reverted, wait(t, first).Outcome)
	assert.Equal(t, Confirmed, wait(t, second).Outcome)

	got, _ := c.Get("m1")
	assert.Equal(t, "President", got.Role)
}

func TestDelete_FailureReinsertsAtOriginalIndex(t *testing.T) {
	c, fake := loaded[club.Member](t, club.Members,
		member("m1", "A", "Lead"), member("m2", "B", "Member"), member("m3", "C", "Member"))
	fake.fail(OpDelete, errBackend)

	res := wait(t, c.Delete(context.Background(), "m2"))
	assert.Equal(t, Reverted, res.Outcome)
	assert.Equal(t, []club.ID{"m1", "m2", "m3"}, ids(c.List()))
}

func TestDelete_BackendNotFoundCountsAsConfirmed(t *testing.T) {
	c, fake := loaded[club.Member](t, club.Members, member("m1", "A", "Lead"))
	fake.fail(OpDelete, club.ErrNotFound)

	res := wait(t, c.Delete(context.Background(), "m1"))
	assert.Equal(t, Confirmed, res.Outcome)
	assert.Empty(t, c.List())
}

func TestAdapterPanicIsReverted(t *testing.T) {
	c, fake := loaded[club.Member](t, club.Members)
	fake.panics = true

	res := wait(t, c.Add(context.Background(), member("m1", "A", "Lead")))
	assert.Equal(t, Reverted, res.Outcome)
	assert.ErrorContains(t, res.Err, "adapter panic")
	assert.Empty(t, c.List())
}

func TestPersistCallsRunInCallOrder(t *testing.T) {
	c, fake := loaded[club.Member](t, club.Members)
	fake.hold()

	var muts []*Mutation
	for _, id := range []string{"a", "b", "c", "d"} {
		muts = append(muts, c.Add(context.Background(), member(id, id, "Member")))
	}
	muts = append(muts, c.Delete(context.Background(), "b"))
	fake.release()
	for _, m := range muts {
		wait(t, m)
	}

	calls := fake.recorded()
	require.Len(t, calls, 5)
	for i, want := range []club.ID{"a", "b", "c", "d", "b"} {
		assert.Equal(t, want, calls[i].id)
	}
	assert.Equal(t, OpDelete, calls[4].op)
	assert.Equal(t, 3, calls[4].snapshot)
}

func TestPersistSnapshot_LeavesOutRevertedChange(t *testing.T) {
	c, fake := loaded[club.Member](t, club.Members)
	fake.hold()
	fake.failNext = 1

	first := c.Add(context.Background(), member("a", "A", "Member"))
	second := c.Add(context.Background(), member("b", "B", "Member"))
	fake.release()

	assert.Equal(t, Reverted, wait(t, first).Outcome)
	assert.Equal(t, Confirmed, wait(t, second).Outcome)

	calls := fake.recorded()
	require.Len(t, calls, 2)
	assert.Equal(t, []club.ID{"a"}, calls[0].ids)
	assert.Equal(t, []club.ID{"b"}, calls[1].ids)
	assert.Equal(t, []club.ID{"b"}, ids(c.List()))
}

func TestPersistSnapshot_LeavesOutQueuedChanges(t *testing.T) {
	c, fake := loaded[club.Member](t, club.Members, member("m1", "A", "Lead"))
	fake.hold()

	add := c.Add(context.Background(), member("m2", "B", "Member"))
	del := c.Delete(context.Background(), "m1")
	update := c.Update(context.Background(), member("m2", "B", "Lead"))
	fake.release()
	for _, m := range []*Mutation{add, del, update} {
		assert.Equal(t, Confirmed, wait(t, m).Outcome)
	}

	calls := fake.recorded()
	require.Len(t, calls, 3)
	assert.Equal(t, []club.ID{"m1", "m2"}, calls[0].ids)
	assert.Equal(t, []club.ID{"m2"}, calls[1].ids)
	assert.Equal(t, []club.ID{"m2"}, calls[2].ids)
}

func TestPersistSnapshot_RevertedDeleteStaysInLaterSnapshots(t *testing.T) {
	c, fake := loaded[club.Member](t, club.Members, member("m1", "A", "Lead"), member("m2", "B", "Member"))
	fake.hold()
	fake.failNext = 1

	del := c.Delete(context.Background(), "m1")
	add := c.Add(context.Background(), member("m3", "C", "Member"))
	fake.release()

	assert.Equal(t, Reverted, wait(t, del).Outcome)
	assert.Equal(t, Confirmed, wait(t, add).Outcome)

	calls := fake.recorded()
	require.Len(t, calls, 2)
	assert.Equal(t, []club.ID{"m1", "m2", "m3"}, calls[1].ids)
	assert.Equal(t, []club.ID{"m1", "m2", "m3"}, ids(c.List()))
}

func TestSnapshotWriter_RefusesChangesUntilLoaded(t *testing.T) {
	fake := newFake(member("m1", "A", "Lead"))
	fake.loadErr = errBackend
	c := NewCollection[club.Member](club.Members, snapshotWriter[club.Member]{fake}, Options{})
	require.Error(t, c.Load(context.Background()))

	for _, m := range []*Mutation{
		c.Add(context.Background(), member("m2", "B", "Member")),
		c.Update(context.Background(), member("m1", "A", "President")),
		c.Delete(context.Background(), "m1"),
	} {
		res := wait(t, m)
		assert.Equal(t, Rejected, res.Outcome)
		assert.ErrorIs(t, res.Err, ErrNotLoaded)
	}
	assert.Empty(t, c.List())
	assert.Empty(t, fake.recorded(), "nothing may reach the backend")

	fake.mu.Lock()
	fake.loadErr = nil
	fake.mu.Unlock()
	require.NoError(t, c.Load(context.Background()))

	res := wait(t, c.Add(context.Background(), member("m2", "B", "Member")))
	assert.Equal(t, Confirmed, res.Outcome)
	calls := fake.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, []club.ID{"m1", "m2"}, calls[0].ids)
}

func TestPerRecordAdapter_AcceptsChangesBeforeLoad(t *testing.T) {
	fake := newFake[club.Member]()
	fake.loadErr = errBackend
	c := NewCollection[club.Member](club.Members, fake, Options{})
	require.Error(t, c.Load(context.Background()))

	res := wait(t, c.Add(context.Background(), member("m1", "A", "Lead")))
	assert.Equal(t, Confirmed, res.Outcome)
}

func TestLoad_FailureKeepsCollectionEmptyAndRetries(t *testing.T) {
	fake := newFake(member("m1", "A", "Lead"))
	fake.loadErr = errBackend
	c := NewCollection[club.Member](club.Members, fake, Options{})

	err := c.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errBackend)
	assert.Empty(t, c.List())
	st := c.Status()
	assert.False(t, st.Loaded)
	assert.Equal(t, 1, st.Attempts)

	fake.mu.Lock()
	fake.loadErr = nil
	fake.mu.Unlock()

	require.NoError(t, c.Load(context.Background()))
	assert.Len(t, c.List(), 1)
	st = c.Status()
	assert.True(t, st.Loaded)
	assert.NoError(t, st.LastError)
	assert.Equal(t, 2, st.Attempts)
}

func TestList_ReturnsIndependentCopies(t *testing.T) {
	c, _ := loaded[club.BlogPost](t, club.Blog, post("p1", "P1"))

	list := c.List()
	list[0].Title = "mutated"
	list[0].Tags[0] = "mutated"

	got, _ := c.Get("p1")
	assert.Equal(t, "P1", got.Title)
	assert.Equal(t, "x", got.Tags[0])
}

func ids[T club.Record[T]](items []T) []club.ID {
	out := make([]club.ID, len(items))
	for i, item := range items {
		out[i] = item.Key()
	}
	return out
}
