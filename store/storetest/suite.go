package storetest

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/actorgraph/errors"
	"github.com/teranos/actorgraph/models"
	"github.com/teranos/actorgraph/store"
)

// Factory returns an empty, migrated store. The suite closes it.
type Factory func(t *testing.T) store.Store

// Run exercises the store.Store contract against stores built by open
func Run(t *testing.T, open Factory) {
	loaded := func(t *testing.T) store.Store {
		t.Helper()
		s := open(t)
		t.Cleanup(func() { s.Close() })
		require.NoError(t, s.Import(context.Background(), Dataset()))
		return s
	}
	ctx := context.Background()

	t.Run("ActorByID", func(t *testing.T) {
		s := loaded(t)

		a, err := s.ActorByID(ctx, Zac)
		require.NoError(t, err)
		assert.Equal(t, "Zac Efron", a.Name)
		assert.Equal(t, 1987, a.Birth)
		assert.Equal(t, []string{Hairspray, Greatest, Baywatch}, a.Movies)

		_, err = s.ActorByID(ctx, UnknownHex)
		assert.True(t, errors.IsNotFoundError(err), "got %v", err)

		_, err = s.ActorByID(ctx, "not-an-id")
		assert.True(t, errors.IsNotFoundError(err) || errors.IsInvalidRequestError(err), "got %v", err)
	})

	t.Run("ActorByName", func(t *testing.T) {
		s := loaded(t)

		a, err := s.ActorByName(ctx, "Efron")
		require.NoError(t, err)
		assert.Equal(t, Zac, a.ID)

		_, err = s.ActorByName(ctx, "efron")
		assert.True(t, errors.IsNotFoundError(err), "name match is case-sensitive")

		_, err = s.ActorByName(ctx, "Nobody")
		assert.True(t, errors.IsNotFoundError(err))
	})

	t.Run("MovieByID", func(t *testing.T) {
		s := loaded(t)

		m, err := s.MovieByID(ctx, Greatest)
		require.NoError(t, err)
		assert.Equal(t, "The Greatest Showman", m.Title)
		assert.Equal(t, []string{Hugh, Zac, Zendaya}, m.Actors, "cast order kept")
		assert.Equal(t, 12, m.Month)

		_, err = s.MovieByID(ctx, UnknownHex)
		assert.True(t, errors.IsNotFoundError(err))
	})

	t.Run("AllMovies", func(t *testing.T) {
		s := loaded(t)
		movies, err := s.AllMovies(ctx)
		require.NoError(t, err)
		assert.Len(t, movies, len(Dataset().Movies))
	})

	t.Run("MoviesOfActor", func(t *testing.T) {
		s := loaded(t)

		movies, err := s.MoviesOfActor(ctx, Zac)
		require.NoError(t, err)
		require.Len(t, movies, 3)
		assert.Equal(t, Hairspray, movies[0].ID)
		assert.Equal(t, Baywatch, movies[1].ID)
		assert.Equal(t, Greatest, movies[2].ID)

		movies, err = s.MoviesOfActor(ctx, UnknownHex)
		require.NoError(t, err)
		assert.Empty(t, movies)
	})

	t.Run("MovieCounts", func(t *testing.T) {
		s := loaded(t)

		counts, err := s.MovieCounts(ctx, []string{Zac, UnknownHex, Emma})
		require.NoError(t, err)
		assert.Equal(t, []models.MovieCount{{ID: Zac, Count: 3}, {ID: Emma, Count: 2}}, counts)

		counts, err = s.MovieCounts(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, counts)
	})

	t.Run("SearchActorsByName", func(t *testing.T) {
		s := loaded(t)

		found, err := s.SearchActorsByName(ctx, "ZAC", 10)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, Zac, found[0].ID)

		found, err = s.SearchActorsByName(ctx, "e", 2)
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, "Emma Stone", found[0].Name)
		assert.Equal(t, "Lone_Actor 100%", found[1].Name)

		// wildcard characters are literal
		found, err = s.SearchActorsByName(ctx, "e_", 10)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, Loner, found[0].ID)

		found, err = s.SearchActorsByName(ctx, "0%", 10)
		require.NoError(t, err)
		assert.Len(t, found, 1)
	})

	t.Run("RandomActors", func(t *testing.T) {
		s := loaded(t)

		actors, err := s.RandomActors(ctx, 2)
		require.NoError(t, err)
		require.Len(t, actors, 2)
		assert.NotEqual(t, actors[0].ID, actors[1].ID)

		actors, err = s.RandomActors(ctx, 100)
		require.NoError(t, err)
		assert.Len(t, actors, len(Dataset().Actors))
	})

	t.Run("RandomMovieInRange", func(t *testing.T) {
		s := loaded(t)

		movies, err := s.RandomMovieInRange(ctx, models.YearRange{MinYear: 2016, MaxYear: 2016})
		require.NoError(t, err)
		require.Len(t, movies, 1)
		assert.Equal(t, LaLa, movies[0].ID)

		movies, err = s.RandomMovieInRange(ctx, models.YearRange{MinYear: 1900, MaxYear: 1901})
		require.NoError(t, err)
		assert.Empty(t, movies)
	})

	t.Run("Collaborators", func(t *testing.T) {
		s := loaded(t)

		actors, err := s.Collaborators(ctx, Zac)
		require.NoError(t, err)
		assert.Equal(t, []string{Hugh, Zendaya}, ids(actors))

		actors, err = s.Collaborators(ctx, Loner)
		require.NoError(t, err)
		assert.Empty(t, actors)

		_, err = s.Collaborators(ctx, UnknownHex)
		assert.True(t, errors.IsNotFoundError(err))
	})

	t.Run("ImportIsIdempotentAndUpdates", func(t *testing.T) {
		s := loaded(t)
		before, err := s.Stats(ctx)
		require.NoError(t, err)

		ds := Dataset()
		ds.Actors[0].Name = "Zachary Efron"
		ds.Actors[0].Movies = []string{Greatest}
		require.NoError(t, s.Import(ctx, ds))

		after, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, before, after)

		a, err := s.ActorByID(ctx, Zac)
		require.NoError(t, err)
		assert.Equal(t, "Zachary Efron", a.Name)
		assert.Equal(t, []string{Greatest}, a.Movies)
	})

	t.Run("Export", func(t *testing.T) {
		s := loaded(t)

		ds, err := s.Export(ctx)
		require.NoError(t, err)

		want := Dataset()
		sortDataset(&want)
		sortDataset(ds)
		assert.Equal(t, want, *ds)
	})

	t.Run("Stats", func(t *testing.T) {
		s := loaded(t)

		stats, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.Stats{Actors: 5, Movies: 7, Credits: 10, MinYear: 1995, MaxYear: 2017}, stats)
	})

	t.Run("EmptyStats", func(t *testing.T) {
		s := open(t)
		defer s.Close()

		stats, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.Stats{}, stats)
	})
}

func ids(actors []models.Actor) []string {
	out := make([]string, len(actors))
	for i, a := range actors {
		out[i] = a.ID
	}
	return out
}

func sortDataset(ds *models.Dataset) {
	sort.Slice(ds.Actors, func(i, j int) bool { return ds.Actors[i].ID < ds.Actors[j].ID })
	sort.Slice(ds.Movies, func(i, j int) bool { return ds.Movies[i].ID < ds.Movies[j].ID })
}
