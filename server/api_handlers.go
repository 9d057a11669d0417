package server

// REST handlers of the proxy API and the chart summaries. Paths and
// response documents follow the original Express proxy so the Angular
// client works unchanged.

import (
	"net/http"

	"github.com/teranos/actorgraph/charts"
	"github.com/teranos/actorgraph/errors"
	"github.com/teranos/actorgraph/models"
	"github.com/teranos/actorgraph/store"
)

// randomActorSample is the size of GET /api/search/random/
const randomActorSample = 1

// HandleMovieByID serves GET /api/movie/id/{id}
func (s *Server) HandleMovieByID(w http.ResponseWriter, r *http.Request) {
	movie, err := s.store.MovieByID(r.Context(), r.PathValue("id"))
	s.respond(w, r, movie, err)
}

// HandleAllMovies serves GET /api/movie/allMovies
func (s *Server) HandleAllMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := s.store.AllMovies(r.Context())
	s.respond(w, r, orEmpty(movies), err)
}

// HandleActorByID serves GET /api/actor/id/{id}
func (s *Server) HandleActorByID(w http.ResponseWriter, r *http.Request) {
	actor, err := s.store.ActorByID(r.Context(), r.PathValue("id"))
	s.respond(w, r, actor, err)
}

// HandleActorByName serves GET /api/actor/name/{name}
func (s *Server) HandleActorByName(w http.ResponseWriter, r *http.Request) {
	actor, err := s.store.ActorByName(r.Context(), r.PathValue("name"))
	s.respond(w, r, actor, err)
}

// HandleMoviesOfActor serves GET /api/actor/id/{id}/movies
func (s *Server) HandleMoviesOfActor(w http.ResponseWriter, r *http.Request) {
	movies, err := s.store.MoviesOfActor(r.Context(), r.PathValue("id"))
	s.respond(w, r, orEmpty(movies), err)
}

// HandleCollaborators serves GET /api/actor/id/{id}/collaborators
func (s *Server) HandleCollaborators(w http.ResponseWriter, r *http.Request) {
	actors, err := s.store.Collaborators(r.Context(), r.PathValue("id"))
	s.respond(w, r, orEmpty(actors), err)
}

// HandleMovieCounts serves POST /api/actor/moviecount/ with a JSON array of
// actor ids
func (s *Server) HandleMovieCounts(w http.ResponseWriter, r *http.Request) {
	var ids []string
	if err := readJSON(r, &ids); err != nil {
		s.writeError(w, r, err)
		return
	}
	counts, err := s.store.MovieCounts(r.Context(), ids)
	s.respond(w, r, orEmpty(counts), err)
}

// HandleSearchActorName serves GET /api/search/actorname/{name}
func (s *Server) HandleSearchActorName(w http.ResponseWriter, r *http.Request) {
	actors, err := s.store.SearchActorsByName(r.Context(), r.PathValue("name"), store.DefaultSearchLimit)
	s.respond(w, r, orEmpty(actors), err)
}

// HandleRandomActor serves GET /api/search/random/
func (s *Server) HandleRandomActor(w http.ResponseWriter, r *http.Request) {
	actors, err := s.store.RandomActors(r.Context(), randomActorSample)
	s.respond(w, r, orEmpty(actors), err)
}

// HandleRandomMovie serves GET /api/search/random/movie/{range}, range being
// YYYY-YYYY. The answer is an array of zero or one movie.
func (s *Server) HandleRandomMovie(w http.ResponseWriter, r *http.Request) {
	yr, err := models.ParseYearRange(r.PathValue("range"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	movies, err := s.store.RandomMovieInRange(r.Context(), yr)
	s.respond(w, r, orEmpty(movies), err)
}

// HandleTimeline serves GET /api/charts/timeline, the year histogram of
// every movie
func (s *Server) HandleTimeline(w http.ResponseWriter, r *http.Request) {
	movies, err := s.store.AllMovies(r.Context())
	if err != nil {
		s.writeError(w, r, errors.Wrap(err, "load movies"))
		return
	}
	s.respond(w, r, charts.YearHistogram(movies), nil)
}

// HandleActorChart serves GET /api/charts/actor/{id}: the rating-over-time
// series, radar values and year span of one actor
func (s *Server) HandleActorChart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := s.store.ActorByID(ctx, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	movies, err := s.store.MoviesOfActor(ctx, actor.ID)
	if err != nil {
		s.writeError(w, r, errors.Wrapf(err, "load movies of %s", actor.ID))
		return
	}
	s.respond(w, r, charts.ForActor(*actor, movies), nil)
}
