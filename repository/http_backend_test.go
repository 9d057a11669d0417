package repository

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/actorgraph/errors"
	"github.com/teranos/actorgraph/models"
	"github.com/teranos/actorgraph/version"
)

func newProxy(t *testing.T, handler http.HandlerFunc) *HTTPBackend {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPBackend(srv.URL+"/", srv.Client())
}

func TestHTTPBackend_ActorByID(t *testing.T) {
	b := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/actor/id/a1", r.URL.Path)
		assert.Equal(t, version.UserAgent(), r.Header.Get("User-Agent"))
		json.NewEncoder(w).Encode(models.Actor{ID: "a1", Name: "Zac Efron", Movies: []string{"m1"}})
	})

	a, err := b.ActorByID(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "Zac Efron", a.Name)
	assert.Equal(t, []string{"m1"}, a.Movies)
}

func TestHTTPBackend_NullBodyIsNotFound(t *testing.T) {
	b := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "null")
	})

	_, err := b.ActorByName(context.Background(), "Nobody")
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestHTTPBackend_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		check  func(error) bool
	}{
		{http.StatusNotFound, errors.IsNotFoundError},
		{http.StatusBadRequest, errors.IsInvalidRequestError},
		{http.StatusBadGateway, errors.IsServiceUnavailableError},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			b := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, `{"error":"nope"}`)
			})
			_, err := b.MoviesOfActor(context.Background(), "a1")
			require.Error(t, err)
			assert.True(t, tt.check(err), "got %v", err)
			assert.Contains(t, err.Error(), "nope")
		})
	}
}

func TestHTTPBackend_LegacyErrorBody(t *testing.T) {
	b := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"name":"CastError","message":"Cast to ObjectId failed"}`)
	})

	_, err := b.ActorByID(context.Background(), "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CastError: Cast to ObjectId failed")
}

func TestHTTPBackend_MovieCountsPostsIDs(t *testing.T) {
	b := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/actor/moviecount/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var ids []string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&ids))
		assert.Equal(t, []string{"a1", "a2"}, ids)
		io.WriteString(w, `[{"_id":"a1","count":4},{"_id":"a2","count":1}]`)
	})

	counts, err := b.MovieCounts(context.Background(), []string{"a1", "a2"})
	require.NoError(t, err)
	assert.Equal(t, []models.MovieCount{{ID: "a1", Count: 4}, {ID: "a2", Count: 1}}, counts)
}

func TestHTTPBackend_Paths(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	b := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		paths = append(paths, r.URL.EscapedPath())
		io.WriteString(w, "[]")
	})
	ctx := context.Background()

	_, err := b.SearchActorsByName(ctx, "Zac E", 5)
	require.NoError(t, err)
	_, err = b.RandomMovieInRange(ctx, models.YearRange{MinYear: 2000, MaxYear: 2020})
	require.NoError(t, err)
	_, err = b.Collaborators(ctx, "a1")
	require.NoError(t, err)
	_, err = b.AllMovies(ctx)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"/api/search/actorname/Zac%20E",
		"/api/search/random/movie/2000-2020",
		"/api/actor/id/a1/collaborators",
		"/api/movie/allMovies",
	}, paths)
}

func TestHTTPBackend_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPBackend(url, nil).AllMovies(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsServiceUnavailableError(err))
}

func TestNewHTTPBackend_DefaultURL(t *testing.T) {
	b := NewHTTPBackend("", nil)
	assert.Equal(t, DefaultProxyURL, b.baseURL)
}
