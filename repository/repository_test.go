package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/actorgraph/errors"
	qtesting "github.com/teranos/actorgraph/internal/testing"
	"github.com/teranos/actorgraph/models"
	"github.com/teranos/actorgraph/store/sqlite"
	"github.com/teranos/actorgraph/store/storetest"
)

// countingBackend wraps a real store and counts ActorByID calls
type countingBackend struct {
	Backend
	calls atomic.Int32
	delay time.Duration
	fail  map[string]bool
}

func (b *countingBackend) ActorByID(ctx context.Context, id string) (*models.Actor, error) {
	b.calls.Add(1)
	if b.delay > 0 {
		select {
		case <-time.After(b.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if b.fail[id] {
		return nil, errors.New("backend down")
	}
	return b.Backend.ActorByID(ctx, id)
}

func newBackend(t *testing.T) *countingBackend {
	t.Helper()
	s := sqlite.New(qtesting.CreateTestDB(t), nil)
	require.NoError(t, s.Import(context.Background(), storetest.Dataset()))
	return &countingBackend{Backend: s}
}

func TestActorByID_Caches(t *testing.T) {
	backend := newBackend(t)
	repo := New(backend, WithLogger(zaptest.NewLogger(t).Sugar()))
	hitsBefore := testutil.ToFloat64(actorCacheTotal.WithLabelValues("hit"))

	a, err := repo.ActorByID(context.Background(), storetest.Zac)
	require.NoError(t, err)
	assert.Equal(t, "Zac Efron", a.Name)

	again, err := repo.ActorByID(context.Background(), storetest.Zac)
	require.NoError(t, err)
	assert.Equal(t, a, again)

	assert.Equal(t, int32(1), backend.calls.Load())
	assert.Equal(t, 1, repo.CacheSize())
	assert.Equal(t, hitsBefore+1, testutil.ToFloat64(actorCacheTotal.WithLabelValues("hit")))
}

func TestActorByID_NotFoundIsNotCached(t *testing.T) {
	backend := newBackend(t)
	repo := New(backend)

	_, err := repo.ActorByID(context.Background(), storetest.UnknownHex)
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))

	_, err = repo.ActorByID(context.Background(), storetest.UnknownHex)
	require.Error(t, err)
	assert.Equal(t, int32(2), backend.calls.Load())
	assert.Zero(t, repo.CacheSize())
}

func TestActorByID_ConcurrentMissesShareOneCall(t *testing.T) {
	backend := newBackend(t)
	backend.delay = 50 * time.Millisecond
	repo := New(backend)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.ActorByID(context.Background(), storetest.Hugh)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), backend.calls.Load())
}

func TestActorByID_CancelledCallerLeavesSharedCallRunning(t *testing.T) {
	backend := newBackend(t)
	backend.delay = 100 * time.Millisecond
	repo := New(backend)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := repo.ActorByID(ctx, storetest.Zac)
		first <- err
	}()
	require.Eventually(t, func() bool { return backend.calls.Load() == 1 }, time.Second, time.Millisecond)

	var got *models.Actor
	second := make(chan error, 1)
	go func() {
		a, err := repo.ActorByID(context.Background(), storetest.Zac)
		got = a
		second <- err
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()

	err := <-first
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	require.NoError(t, <-second)
	assert.Equal(t, "Zac Efron", got.Name)
	assert.Equal(t, int32(1), backend.calls.Load())
	assert.Equal(t, 1, repo.CacheSize())
}

func TestActorsByID_KeepsOrderAndSkipsFailures(t *testing.T) {
	backend := newBackend(t)
	backend.fail = map[string]bool{storetest.Hugh: true}
	repo := New(backend, WithFetchConcurrency(2))

	actors := repo.ActorsByID(context.Background(),
		[]string{storetest.Emma, storetest.Hugh, storetest.UnknownHex, storetest.Zac})

	require.Len(t, actors, 2)
	assert.Equal(t, storetest.Emma, actors[0].ID)
	assert.Equal(t, storetest.Zac, actors[1].ID)
}

func TestActorByName_PopulatesCache(t *testing.T) {
	backend := newBackend(t)
	repo := New(backend)

	a, err := repo.ActorByName(context.Background(), "Zendaya")
	require.NoError(t, err)

	_, err = repo.ActorByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Zero(t, backend.calls.Load())
}

func TestPassThroughReads(t *testing.T) {
	repo := New(newBackend(t))
	ctx := context.Background()

	movies, err := repo.MoviesOfActor(ctx, storetest.Zac)
	require.NoError(t, err)
	assert.Len(t, movies, 3)

	counts, err := repo.MovieCounts(ctx, []string{storetest.Zac})
	require.NoError(t, err)
	assert.Equal(t, 3, counts[0].Count)

	found, err := repo.SearchActorsByName(ctx, "stone", 0)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	all, err := repo.AllMovies(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 7)

	random, err := repo.RandomMovieInRange(ctx, models.YearRange{MinYear: 2006, MaxYear: 2006})
	require.NoError(t, err)
	require.Len(t, random, 1)
	assert.Equal(t, storetest.Prestige, random[0].ID)

	collabs, err := repo.Collaborators(ctx, storetest.Emma)
	require.NoError(t, err)
	require.Len(t, collabs, 1)
	assert.Equal(t, storetest.Hugh, collabs[0].ID)
}

func TestMoviesBetween(t *testing.T) {
	repo := New(newBackend(t))
	movies, err := repo.AllMovies(context.Background())
	require.NoError(t, err)

	shared := repo.MoviesBetween(storetest.Zac, storetest.Zendaya, movies)
	require.Len(t, shared, 1)
	assert.Equal(t, storetest.Greatest, shared[0].ID)
}
