// Package repository is the data access layer of exploration sessions: a
// Backend plus an actor-by-id cache shared by every session.
package repository

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/teranos/actorgraph/errors"
	"github.com/teranos/actorgraph/logger"
	"github.com/teranos/actorgraph/models"
)

// DefaultFetchConcurrency bounds ActorsByID fan-out
const DefaultFetchConcurrency = 5

var actorCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "actorgraph_actor_cache_total",
	Help: "Actor-by-id lookups by cache result",
}, []string{"result"})

// Repository caches actors by id. Entries are never invalidated: actors are
// read-only for the lifetime of the process.
type Repository struct {
	backend     Backend
	concurrency int
	logger      *zap.SugaredLogger

	mu     sync.RWMutex
	actors map[string]models.Actor
	group  singleflight.Group
}

// Option configures a Repository
type Option func(*Repository)

// WithFetchConcurrency sets how many actors ActorsByID fetches at once
func WithFetchConcurrency(n int) Option {
	return func(r *Repository) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithLogger overrides the component logger
func WithLogger(l *zap.SugaredLogger) Option {
	return func(r *Repository) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a repository over backend
func New(backend Backend, opts ...Option) *Repository {
	r := &Repository{
		backend:     backend,
		concurrency: DefaultFetchConcurrency,
		logger:      logger.ComponentLogger("repository"),
		actors:      make(map[string]models.Actor),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ActorByID returns a cached actor or fetches it. Concurrent misses for the
// same id share one backend call. The shared call is not cancelled with any
// single caller; each caller stops waiting when its own ctx ends.
func (r *Repository) ActorByID(ctx context.Context, id string) (*models.Actor, error) {
	if a, ok := r.cached(id); ok {
		actorCacheTotal.WithLabelValues("hit").Inc()
		r.logger.Debugw("returning cached actor", logger.FieldActorID, id)
		return a, nil
	}
	actorCacheTotal.WithLabelValues("miss").Inc()

	flightCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(id, func() (interface{}, error) {
		if a, ok := r.cached(id); ok {
			return a, nil
		}
		a, err := r.backend.ActorByID(flightCtx, id)
		if err != nil {
			return nil, err
		}
		r.remember(*a)
		return a, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, errors.Wrapf(ctx.Err(), "actor %s", id)
	}
	if res.Err != nil {
		return nil, errors.Wrapf(res.Err, "actor %s", id)
	}

	a, ok := res.Val.(*models.Actor)
	if !ok {
		return nil, errors.Newf("unexpected type from singleflight: %T", res.Val)
	}
	cp := *a
	return &cp, nil
}

// ActorsByID fetches ids in parallel and returns the ones that loaded, in
// input order. A failed fetch is logged and skipped.
func (r *Repository) ActorsByID(ctx context.Context, ids []string) []models.Actor {
	results := make([]*models.Actor, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			a, err := r.ActorByID(gctx, id)
			if err != nil {
				r.logger.Warnw("Failed to fetch actor", logger.FieldActorID, id, logger.FieldError, err)
				return nil
			}
			results[i] = a
			return nil
		})
	}
	g.Wait()

	actors := make([]models.Actor, 0, len(ids))
	for _, a := range results {
		if a != nil {
			actors = append(actors, *a)
		}
	}
	return actors
}

// ActorByName looks the actor up and caches it by id
func (r *Repository) ActorByName(ctx context.Context, name string) (*models.Actor, error) {
	a, err := r.backend.ActorByName(ctx, name)
	if err != nil {
		return nil, errors.Wrapf(err, "actor named %q", name)
	}
	r.remember(*a)
	return a, nil
}

func (r *Repository) AllMovies(ctx context.Context) ([]models.Movie, error) {
	movies, err := r.backend.AllMovies(ctx)
	return movies, errors.Wrap(err, "all movies")
}

func (r *Repository) MoviesOfActor(ctx context.Context, actorID string) ([]models.Movie, error) {
	movies, err := r.backend.MoviesOfActor(ctx, actorID)
	return movies, errors.Wrapf(err, "movies of %s", actorID)
}

func (r *Repository) MovieCounts(ctx context.Context, ids []string) ([]models.MovieCount, error) {
	counts, err := r.backend.MovieCounts(ctx, ids)
	return counts, errors.Wrap(err, "movie counts")
}

func (r *Repository) SearchActorsByName(ctx context.Context, name string, limit int) ([]models.Actor, error) {
	actors, err := r.backend.SearchActorsByName(ctx, name, limit)
	return actors, errors.Wrapf(err, "search %q", name)
}

func (r *Repository) RandomMovieInRange(ctx context.Context, yr models.YearRange) ([]models.Movie, error) {
	movies, err := r.backend.RandomMovieInRange(ctx, yr)
	return movies, errors.Wrapf(err, "random movie in %s", yr)
}

func (r *Repository) Collaborators(ctx context.Context, actorID string) ([]models.Actor, error) {
	actors, err := r.backend.Collaborators(ctx, actorID)
	return actors, errors.Wrapf(err, "collaborators of %s", actorID)
}

// MoviesBetween filters movies down to those featuring both actors. No query.
func (r *Repository) MoviesBetween(actorA, actorB string, movies []models.Movie) []models.Movie {
	return models.MoviesBetween(actorA, actorB, movies)
}

// CacheSize reports how many actors are cached
func (r *Repository) CacheSize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.actors)
}

func (r *Repository) cached(id string) (*models.Actor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.actors[id]
	if !ok {
		return nil, false
	}
	return &a, true
}

func (r *Repository) remember(a models.Actor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actors[a.ID] = a
}
