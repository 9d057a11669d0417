// Package store defines the actor/movie document store behind the REST API.
//
// Two implementations exist: store/sqlite (default, embedded) and
// store/mongo (the ActorExplorer database the dataset was published in).
// Not-found conditions wrap errors.ErrNotFound; malformed ids wrap
// errors.ErrInvalidRequest.
package store

import (
	"context"

	"github.com/teranos/actorgraph/models"
)

// DefaultSearchLimit caps /api/search/actorname results
const DefaultSearchLimit = 20

// Reader is the read surface the proxy and exploration sessions use
type Reader interface {
	ActorByID(ctx context.Context, id string) (*models.Actor, error)
	// ActorByName returns the first actor whose name contains name (case-sensitive)
	ActorByName(ctx context.Context, name string) (*models.Actor, error)
	MovieByID(ctx context.Context, id string) (*models.Movie, error)
	AllMovies(ctx context.Context) ([]models.Movie, error)
	// MoviesOfActor returns the movies whose cast includes actorID, by release date
	MoviesOfActor(ctx context.Context, actorID string) ([]models.Movie, error)
	// MovieCounts returns one entry per known id, in input order
	MovieCounts(ctx context.Context, ids []string) ([]models.MovieCount, error)
	// SearchActorsByName matches case-insensitively, sorted by name
	SearchActorsByName(ctx context.Context, name string, limit int) ([]models.Actor, error)
	RandomActors(ctx context.Context, n int) ([]models.Actor, error)
	// RandomMovieInRange returns zero or one movie released inside r
	RandomMovieInRange(ctx context.Context, r models.YearRange) ([]models.Movie, error)
	// Collaborators returns every other actor sharing a movie with actorID
	Collaborators(ctx context.Context, actorID string) ([]models.Actor, error)
}

// Store is a Reader that can also be loaded, dumped and closed
type Store interface {
	Reader
	Import(ctx context.Context, ds models.Dataset) error
	Export(ctx context.Context) (*models.Dataset, error)
	Stats(ctx context.Context) (models.Stats, error)
	Close() error
}
