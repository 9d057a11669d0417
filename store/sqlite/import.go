package sqlite

import (
	"context"
	"database/sql"

	"github.com/teranos/actorgraph/errors"
	"github.com/teranos/actorgraph/models"
)

const (
	upsertActor = `INSERT INTO actors (id, name, birth, death, total_revenue, total_rating)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, birth = excluded.birth, death = excluded.death,
			total_revenue = excluded.total_revenue, total_rating = excluded.total_rating`

	upsertMovie = `INSERT INTO movies (id, title, year, month, day, revenue, vote_average)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title, year = excluded.year, month = excluded.month, day = excluded.day,
			revenue = excluded.revenue, vote_average = excluded.vote_average`
)

// Import upserts every actor and movie of ds in one transaction, replacing
// the filmography and cast lists of the documents it touches.
func (s *Store) Import(ctx context.Context, ds models.Dataset) error {
	if err := ds.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin import")
	}
	defer tx.Rollback()

	for _, a := range ds.Actors {
		if _, err := tx.ExecContext(ctx, upsertActor,
			a.ID, a.Name, nullInt(a.Birth), nullInt(a.Death), a.TotalRevenue, a.TotalRating); err != nil {
			return errors.Wrapf(err, "upsert actor %s", a.ID)
		}
		if err := replaceRelation(ctx, tx,
			"DELETE FROM actor_movies WHERE actor_id = ?",
			"INSERT OR IGNORE INTO actor_movies (actor_id, movie_id, position) VALUES (?, ?, ?)",
			a.ID, a.Movies); err != nil {
			return errors.Wrapf(err, "filmography of %s", a.ID)
		}
	}

	for _, m := range ds.Movies {
		if _, err := tx.ExecContext(ctx, upsertMovie,
			m.ID, m.Title, m.Year, m.Month, m.Day, m.Revenue, m.VoteAverage); err != nil {
			return errors.Wrapf(err, "upsert movie %s", m.ID)
		}
		if err := replaceRelation(ctx, tx,
			"DELETE FROM movie_cast WHERE movie_id = ?",
			"INSERT OR IGNORE INTO movie_cast (movie_id, actor_id, position) VALUES (?, ?, ?)",
			m.ID, m.Actors); err != nil {
			return errors.Wrapf(err, "cast of %s", m.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit import")
	}

	s.logger.Infow("Imported dataset", "actors", len(ds.Actors), "movies", len(ds.Movies))
	return nil
}

func replaceRelation(ctx context.Context, tx *sql.Tx, deleteStmt, insertStmt, owner string, members []string) error {
	if _, err := tx.ExecContext(ctx, deleteStmt, owner); err != nil {
		return err
	}
	for i, member := range members {
		if _, err := tx.ExecContext(ctx, insertStmt, owner, member, i); err != nil {
			return err
		}
	}
	return nil
}

// Export dumps every actor and movie
func (s *Store) Export(ctx context.Context) (*models.Dataset, error) {
	actors, err := s.queryActors(ctx, "SELECT "+actorColumns+" FROM actors a ORDER BY a.rowid")
	if err != nil {
		return nil, errors.Wrap(err, "export actors")
	}
	movies, err := s.AllMovies(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "export movies")
	}
	s.logger.Debugw("Exported dataset", "actors", len(actors), "movies", len(movies))
	return &models.Dataset{Actors: actors, Movies: movies}, nil
}

func nullInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v != 0}
}

// Drop deletes every actor and movie. Cast and filmography rows go with them.
func (s *Store) Drop(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin drop")
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		"DELETE FROM actor_movies",
		"DELETE FROM movie_cast",
		"DELETE FROM actors",
		"DELETE FROM movies",
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "drop: %s", stmt)
		}
	}
	return errors.Wrap(tx.Commit(), "commit drop")
}
