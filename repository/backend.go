package repository

import (
	"context"

	"github.com/teranos/actorgraph/models"
)

// Backend is the data source a Repository reads from. Every store.Reader is
// a Backend, so in-process sessions pass the store directly; remote sessions
// use HTTPBackend against a running proxy.
type Backend interface {
	ActorByID(ctx context.Context, id string) (*models.Actor, error)
	ActorByName(ctx context.Context, name string) (*models.Actor, error)
	AllMovies(ctx context.Context) ([]models.Movie, error)
	MoviesOfActor(ctx context.Context, actorID string) ([]models.Movie, error)
	MovieCounts(ctx context.Context, ids []string) ([]models.MovieCount, error)
	SearchActorsByName(ctx context.Context, name string, limit int) ([]models.Actor, error)
	RandomMovieInRange(ctx context.Context, r models.YearRange) ([]models.Movie, error)
	Collaborators(ctx context.Context, actorID string) ([]models.Actor, error)
}
