// Package sqlite implements store.Store on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/actorgraph/db"
	"github.com/teranos/actorgraph/errors"
	"github.com/teranos/actorgraph/logger"
	"github.com/teranos/actorgraph/models"
	"github.com/teranos/actorgraph/store"
)

var _ store.Store = (*Store)(nil)

// Store reads and writes actors and movies in the schema from db/sqlite/migrations
type Store struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// New wraps an already migrated database
func New(database *sql.DB, log *zap.SugaredLogger) *Store {
	if log == nil {
		log = logger.ComponentLogger("store.sqlite")
	}
	return &Store{db: database, logger: log}
}

// Open opens path, applies migrations and returns a ready store
func Open(path string, log *zap.SugaredLogger) (*Store, error) {
	database, err := db.OpenWithMigrations(path, log)
	if err != nil {
		return nil, err
	}
	return New(database, log), nil
}

// DB exposes the underlying handle for `db migrate` and tests
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// queryErr wraps a failed query. A closed database makes the store
// unavailable rather than failing the request.
func queryErr(err error, msg string) error {
	if db.IsDatabaseClosed(err) {
		return errors.WrapServiceUnavailable(err, msg)
	}
	return errors.Wrap(err, msg)
}

const actorColumns = "a.id, a.name, COALESCE(a.birth, 0), COALESCE(a.death, 0), a.total_revenue, a.total_rating"

const movieColumns = "m.id, m.title, m.year, m.month, m.day, m.revenue, m.vote_average"

// ActorByID loads one actor with its filmography
func (s *Store) ActorByID(ctx context.Context, id string) (*models.Actor, error) {
	actors, err := s.queryActors(ctx, "SELECT "+actorColumns+" FROM actors a WHERE a.id = ?", id)
	if err != nil {
		return nil, errors.Wrapf(err, "actor %s", id)
	}
	if len(actors) == 0 {
		return nil, errors.NewNotFoundError("actor %s", id)
	}
	return &actors[0], nil
}

// ActorByName returns the first actor (in insertion order) whose name contains name
func (s *Store) ActorByName(ctx context.Context, name string) (*models.Actor, error) {
	actors, err := s.queryActors(ctx,
		"SELECT "+actorColumns+" FROM actors a WHERE instr(a.name, ?) > 0 ORDER BY a.rowid LIMIT 1", name)
	if err != nil {
		return nil, errors.Wrapf(err, "actor named %q", name)
	}
	if len(actors) == 0 {
		return nil, errors.NewNotFoundError("actor named %q", name)
	}
	return &actors[0], nil
}

// MovieByID loads one movie with its cast
func (s *Store) MovieByID(ctx context.Context, id string) (*models.Movie, error) {
	movies, err := s.queryMovies(ctx, "SELECT "+movieColumns+" FROM movies m WHERE m.id = ?", id)
	if err != nil {
		return nil, errors.Wrapf(err, "movie %s", id)
	}
	if len(movies) == 0 {
		return nil, errors.NewNotFoundError("movie %s", id)
	}
	return &movies[0], nil
}

// AllMovies returns every movie in insertion order
func (s *Store) AllMovies(ctx context.Context) ([]models.Movie, error) {
	movies, err := s.queryMovies(ctx, "SELECT "+movieColumns+" FROM movies m ORDER BY m.rowid")
	return movies, errors.Wrap(err, "all movies")
}

// MoviesOfActor returns the movies whose cast includes actorID
func (s *Store) MoviesOfActor(ctx context.Context, actorID string) ([]models.Movie, error) {
	movies, err := s.queryMovies(ctx,
		"SELECT "+movieColumns+" FROM movies m JOIN movie_cast c ON c.movie_id = m.id"+
			" WHERE c.actor_id = ? ORDER BY m.year, m.month, m.day, m.id", actorID)
	return movies, errors.Wrapf(err, "movies of actor %s", actorID)
}

// MovieCounts returns the filmography length of each known actor in ids
func (s *Store) MovieCounts(ctx context.Context, ids []string) ([]models.MovieCount, error) {
	counts := make([]models.MovieCount, 0, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	query := "SELECT a.id, COUNT(am.movie_id) FROM actors a" +
		" LEFT JOIN actor_movies am ON am.actor_id = a.id" +
		" WHERE a.id IN (" + placeholders(len(ids)) + ") GROUP BY a.id"
	rows, err := s.db.QueryContext(ctx, query, stringArgs(ids)...)
	if err != nil {
		return nil, queryErr(err, "query movie counts")
	}
	defer rows.Close()

	byID := make(map[string]int, len(ids))
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, errors.Wrap(err, "scan movie count")
		}
		byID[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate movie counts")
	}

	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		n, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		counts = append(counts, models.MovieCount{ID: id, Count: n})
	}
	return counts, nil
}

// SearchActorsByName matches name as a case-insensitive substring
func (s *Store) SearchActorsByName(ctx context.Context, name string, limit int) ([]models.Actor, error) {
	if limit <= 0 {
		limit = store.DefaultSearchLimit
	}
	actors, err := s.queryActors(ctx,
		"SELECT "+actorColumns+" FROM actors a WHERE a.name LIKE ? ESCAPE '\\' ORDER BY a.name LIMIT ?",
		"%"+escapeLike(name)+"%", limit)
	return actors, errors.Wrapf(err, "search actors %q", name)
}

// RandomActors samples up to n actors
func (s *Store) RandomActors(ctx context.Context, n int) ([]models.Actor, error) {
	actors, err := s.queryActors(ctx, "SELECT "+actorColumns+" FROM actors a ORDER BY RANDOM() LIMIT ?", n)
	return actors, errors.Wrap(err, "random actors")
}

// RandomMovieInRange samples one movie with r.MinYear <= year <= r.MaxYear
func (s *Store) RandomMovieInRange(ctx context.Context, r models.YearRange) ([]models.Movie, error) {
	movies, err := s.queryMovies(ctx,
		"SELECT "+movieColumns+" FROM movies m WHERE m.year BETWEEN ? AND ? ORDER BY RANDOM() LIMIT 1",
		r.MinYear, r.MaxYear)
	return movies, errors.Wrapf(err, "random movie in %s", r)
}

// Collaborators returns the distinct co-stars of actorID sorted by name
func (s *Store) Collaborators(ctx context.Context, actorID string) ([]models.Actor, error) {
	if _, err := s.ActorByID(ctx, actorID); err != nil {
		return nil, err
	}

	actors, err := s.queryActors(ctx,
		"SELECT DISTINCT "+actorColumns+" FROM movie_cast c1"+
			" JOIN movie_cast c2 ON c2.movie_id = c1.movie_id AND c2.actor_id <> c1.actor_id"+
			" JOIN actors a ON a.id = c2.actor_id"+
			" WHERE c1.actor_id = ? ORDER BY a.name, a.id", actorID)
	return actors, errors.Wrapf(err, "collaborators of %s", actorID)
}

// Stats counts rows and the release year bounds
func (s *Store) Stats(ctx context.Context) (models.Stats, error) {
	var st models.Stats
	err := s.db.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM actors),
		(SELECT COUNT(*) FROM movies),
		(SELECT COUNT(*) FROM movie_cast),
		(SELECT COALESCE(MIN(year), 0) FROM movies),
		(SELECT COALESCE(MAX(year), 0) FROM movies)`).
		Scan(&st.Actors, &st.Movies, &st.Credits, &st.MinYear, &st.MaxYear)
	return st, errors.Wrap(err, "store stats")
}

func (s *Store) queryActors(ctx context.Context, query string, args ...interface{}) ([]models.Actor, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, queryErr(err, "query actors")
	}
	defer rows.Close()

	actors := []models.Actor{}
	for rows.Next() {
		var a models.Actor
		if err := rows.Scan(&a.ID, &a.Name, &a.Birth, &a.Death, &a.TotalRevenue, &a.TotalRating); err != nil {
			return nil, errors.Wrap(err, "scan actor")
		}
		actors = append(actors, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate actors")
	}
	rows.Close()

	if len(actors) == 0 {
		return actors, nil
	}

	ids := make([]string, len(actors))
	for i, a := range actors {
		ids[i] = a.ID
	}
	filmographies, err := s.relation(ctx,
		"SELECT actor_id, movie_id FROM actor_movies WHERE actor_id IN (%s) ORDER BY actor_id, position", ids)
	if err != nil {
		return nil, errors.Wrap(err, "load filmographies")
	}
	for i := range actors {
		actors[i].Movies = nonNil(filmographies[actors[i].ID])
	}

	s.logger.Debugw("store query", logger.FieldOperation, "actors", logger.FieldCount, len(actors))
	return actors, nil
}

func (s *Store) queryMovies(ctx context.Context, query string, args ...interface{}) ([]models.Movie, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, queryErr(err, "query movies")
	}
	defer rows.Close()

	movies := []models.Movie{}
	for rows.Next() {
		var m models.Movie
		if err := rows.Scan(&m.ID, &m.Title, &m.Year, &m.Month, &m.Day, &m.Revenue, &m.VoteAverage); err != nil {
			return nil, errors.Wrap(err, "scan movie")
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate movies")
	}
	rows.Close()

	if len(movies) == 0 {
		return movies, nil
	}

	ids := make([]string, len(movies))
	for i, m := range movies {
		ids[i] = m.ID
	}
	casts, err := s.relation(ctx,
		"SELECT movie_id, actor_id FROM movie_cast WHERE movie_id IN (%s) ORDER BY movie_id, position", ids)
	if err != nil {
		return nil, errors.Wrap(err, "load casts")
	}
	for i := range movies {
		movies[i].Actors = nonNil(casts[movies[i].ID])
	}
	return movies, nil
}

// relationBatch keeps IN lists well under SQLite's bound-variable limit
const relationBatch = 500

// relation groups (owner, member) rows by owner, keeping row order. query
// must contain a single "%s" where the IN placeholders go.
func (s *Store) relation(ctx context.Context, query string, ids []string) (map[string][]string, error) {
	out := make(map[string][]string, len(ids))
	for start := 0; start < len(ids); start += relationBatch {
		end := min(start+relationBatch, len(ids))
		batch := ids[start:end]

		rows, err := s.db.QueryContext(ctx, fmt.Sprintf(query, placeholders(len(batch))), stringArgs(batch)...)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var owner, member string
			if err := rows.Scan(&owner, &member); err != nil {
				rows.Close()
				return nil, err
			}
			out[owner] = append(out[owner], member)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

func stringArgs(values []string) []interface{} {
	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

// escapeLike makes % _ and \ literal under ESCAPE '\'
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
