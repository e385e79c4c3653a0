package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crypton-club/clubdata/internal/club"
)

func TestNewClient_NormalisesBase(t *testing.T) {
	c, err := NewClient("127.0.0.1:3001/api/", 0)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:3001/api", c.BaseURL())

	c, err = NewClient("", 0)
	require.NoError(t, err)
	assert.Equal(t, defaultBaseURL, c.BaseURL())

	_, err = NewClient("http://", 0)
	assert.Error(t, err)
}

func TestClient_RequestShape(t *testing.T) {
	var gotPath, gotMethod, gotAgent string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod, gotAgent = r.URL.Path, r.Method, r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer ts.Close()

	c, err := NewClient(ts.URL+"/api", time.Second)
	require.NoError(t, err)
	require.NoError(t, c.Delete(context.Background(), club.Blog, "42"))

	assert.Equal(t, "/api/blog/42", gotPath)
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, defaultUserAgent, gotAgent)
}

func TestClient_NotFoundMapsToSentinel(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Member not found"}`))
	}))
	defer ts.Close()

	c, err := NewClient(ts.URL, time.Second)
	require.NoError(t, err)
	_, err = Replace(context.Background(), c, club.Member{ID: "m1", Name: "A"})
	assert.ErrorIs(t, err, club.ErrNotFound)
}

func TestClient_FailureFlagIsAnError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":false}`))
	}))
	defer ts.Close()

	c, err := NewClient(ts.URL, time.Second)
	require.NoError(t, err)
	assert.Error(t, c.Delete(context.Background(), club.Events, "e1"))
	assert.Error(t, ReplaceAll(context.Background(), c, club.Events, []club.Event{}))
}

func TestList_RejectsMalformedResponses(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"title":"T","date":"2024-01-01","type":"ctf","status":"maybe"}]`))
	}))
	defer ts.Close()

	c, err := NewClient(ts.URL, time.Second)
	require.NoError(t, err)
	_, err = List[club.Event](context.Background(), c, club.Events)
	assert.ErrorIs(t, err, club.ErrInvalid)
}

func TestCreate_ReturnsServerRecord(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":7,"name":"Ada","role":"Lead","bio":"","imageUrl":"","socials":{"github":"ada"}}`))
	}))
	defer ts.Close()

	c, err := NewClient(ts.URL, time.Second)
	require.NoError(t, err)
	saved, err := Create(context.Background(), c, club.Member{ID: "7", Name: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, club.ID("7"), saved.ID)
	assert.Equal(t, "ada", saved.Socials.GitHub)
}
