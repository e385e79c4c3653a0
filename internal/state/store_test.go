package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crypton-club/clubdata/internal/club"
)

func newTestStore() (*Store, *fakeAdapter[club.Event], *fakeAdapter[club.Member]) {
	events := newFake(club.Event{ID: "e1", Title: "CTF", Date: "2024-01-01", Type: club.EventCTF, Status: club.EventUpcoming})
	members := newFake(member("m1", "A", "Lead"))
	s := NewStore(Adapters{
		Events:       events,
		Members:      members,
		Achievements: newFake[club.Achievement](),
		Blog:         newFake(post("p1", "P1")),
	}, Options{})
	return s, events, members
}

func TestStore_LoadAllIsolatesFailures(t *testing.T) {
	s, _, members := newTestStore()
	members.loadErr = errBackend

	err := s.LoadAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errBackend)
	assert.Contains(t, err.Error(), "members")

	snap := s.Snapshot()
	assert.Len(t, snap.Events, 1)
	assert.Empty(t, snap.Members)
	assert.Len(t, snap.BlogPosts, 1)
	assert.Equal(t, []club.Resource{club.Members}, snap.Failing())
	assert.True(t, snap.Status[club.Events].Loaded)
	assert.False(t, snap.Status[club.Members].Loaded)
}

func TestStore_ChangedFiresOnMutation(t *testing.T) {
	s, _, _ := newTestStore()
	require.NoError(t, s.LoadAll(context.Background()))

	changed := s.Changed()
	before := s.Version()

	m := s.Members.Add(context.Background(), member("m2", "B", "Member"))
	select {
	case <-changed:
	case <-time.After(time.Second):
		t.Fatal("Changed did not fire after Add")
	}
	assert.Greater(t, s.Version(), before)
	wait(t, m)

	assert.Equal(t, 2, s.Snapshot().Count(club.Members))
}

func TestStore_DeleteByResource(t *testing.T) {
	s, _, _ := newTestStore()
	require.NoError(t, s.LoadAll(context.Background()))

	m, err := s.Delete(context.Background(), club.Blog, "p1")
	require.NoError(t, err)
	assert.Equal(t, Confirmed, wait(t, m).Outcome)
	assert.Empty(t, s.BlogPosts.List())

	_, err = s.Delete(context.Background(), club.Resource("sponsors"), "x")
	assert.Error(t, err)
}

func TestSnapshot_IsIndependentOfStore(t *testing.T) {
	s, _, _ := newTestStore()
	require.NoError(t, s.LoadAll(context.Background()))

	snap := s.Snapshot()
	snap.Members[0].Name = "changed"

	assert.Equal(t, "A", s.Snapshot().Members[0].Name)
}

func TestStore_AddJSON(t *testing.T) {
	s, _, _ := newTestStore()
	require.NoError(t, s.LoadAll(context.Background()))

	m, err := s.AddJSON(context.Background(), club.Members, []byte(`{"id":7,"name":"Grace","role":"Member"}`))
	require.NoError(t, err)
	assert.Equal(t, Confirmed, wait(t, m).Outcome)

	got, ok := s.Members.Get("7")
	require.True(t, ok)
	assert.Equal(t, "Grace", got.Name)
	assert.Len(t, s.Snapshot().Records(club.Members), 2)

	_, err = s.AddJSON(context.Background(), club.Members, []byte(`{`))
	assert.Error(t, err)
}

func TestStore_PatchJSONKeepsAbsentFields(t *testing.T) {
	s, _, _ := newTestStore()
	require.NoError(t, s.LoadAll(context.Background()))

	m, err := s.PatchJSON(context.Background(), club.Members, "m1", []byte(`{"role":"Advisor","id":"other"}`))
	require.NoError(t, err)
	assert.Equal(t, Confirmed, wait(t, m).Outcome)

	got, ok := s.Members.Get("m1")
	require.True(t, ok)
	assert.Equal(t, "A", got.Name)
	assert.Equal(t, "Advisor", got.Role)
	_, ok = s.Members.Get("other")
	assert.False(t, ok, "patch must not change the id")

	m, err = s.PatchJSON(context.Background(), club.Members, "nobody", []byte(`{"role":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, Unchanged, wait(t, m).Outcome)

	_, err = s.PatchJSON(context.Background(), club.Members, "m1", []byte(`{"name":42}`))
	assert.Error(t, err)
}
