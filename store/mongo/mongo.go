// Package mongo implements store.Store on the MongoDB ActorExplorer database,
// the layout the original proxy served: collections "actor" and "movie".
package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/teranos/actorgraph/errors"
	"github.com/teranos/actorgraph/logger"
	"github.com/teranos/actorgraph/models"
	"github.com/teranos/actorgraph/store"
)

const (
	actorCollection = "actor"
	movieCollection = "movie"

	connectTimeout = 10 * time.Second
)

var _ store.Store = (*Store)(nil)

// Store is a store.Store backed by a MongoDB database
type Store struct {
	client *mongo.Client
	actors *mongo.Collection
	movies *mongo.Collection
	logger *zap.SugaredLogger
}

// Open connects to uri, pings the server and uses the named database
func Open(ctx context.Context, uri, database string, log *zap.SugaredLogger) (*Store, error) {
	if log == nil {
		log = logger.ComponentLogger("store.mongo")
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.WrapServiceUnavailable(err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, errors.WithHint(errors.WrapServiceUnavailable(err, "ping mongo"),
			"is mongod running? set database.mongo_uri or ACTORGRAPH_DATABASE_MONGO_URI")
	}

	log.Infow("Connected to MongoDB", "database", database)

	db := client.Database(database)
	return &Store{
		client: client,
		actors: db.Collection(actorCollection),
		movies: db.Collection(movieCollection),
		logger: log,
	}, nil
}

// Close disconnects the client
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return errors.Wrap(s.client.Disconnect(ctx), "disconnect mongo")
}

// Drop removes both collections. Used by tests and `db import --replace`.
func (s *Store) Drop(ctx context.Context) error {
	if err := s.actors.Drop(ctx); err != nil {
		return errors.Wrap(err, "drop actors")
	}
	return errors.Wrap(s.movies.Drop(ctx), "drop movies")
}

// ActorByID finds one actor by ObjectID hex
func (s *Store) ActorByID(ctx context.Context, id string) (*models.Actor, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return s.findActor(ctx, bson.M{"_id": oid}, "actor "+id)
}

// ActorByName returns the first actor whose name contains name
func (s *Store) ActorByName(ctx context.Context, name string) (*models.Actor, error) {
	return s.findActor(ctx, nameContains(name, false), "actor named "+name)
}

func (s *Store) findActor(ctx context.Context, filter bson.M, what string) (*models.Actor, error) {
	var doc actorDoc
	err := s.actors.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.NewNotFoundError("%s", what)
	}
	if err != nil {
		return nil, errors.Wrap(err, what)
	}
	a := doc.model()
	return &a, nil
}

// MovieByID finds one movie by ObjectID hex
func (s *Store) MovieByID(ctx context.Context, id string) (*models.Movie, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var doc movieDoc
	err = s.movies.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.NewNotFoundError("movie %s", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "movie %s", id)
	}
	m := doc.model()
	return &m, nil
}

// AllMovies returns every movie in natural order
func (s *Store) AllMovies(ctx context.Context) ([]models.Movie, error) {
	cur, err := s.movies.Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(err, "find all movies")
	}
	return decodeMovies(ctx, cur)
}

// MoviesOfActor returns the movies whose cast contains actorID, by release date
func (s *Store) MoviesOfActor(ctx context.Context, actorID string) ([]models.Movie, error) {
	oid, err := objectID(actorID)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "year", Value: 1}, {Key: "month", Value: 1}, {Key: "day", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.movies.Find(ctx, bson.M{"actors": oid}, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "movies of actor %s", actorID)
	}
	return decodeMovies(ctx, cur)
}

// MovieCounts returns the size of each known actor's movies array, in input order
func (s *Store) MovieCounts(ctx context.Context, ids []string) ([]models.MovieCount, error) {
	counts := make([]models.MovieCount, 0, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}
	oids, err := objectIDs(ids)
	if err != nil {
		return nil, err
	}

	cur, err := s.actors.Aggregate(ctx, movieCountsPipeline(oids))
	if err != nil {
		return nil, errors.Wrap(err, "aggregate movie counts")
	}
	var rows []struct {
		ID    primitive.ObjectID `bson:"_id"`
		Count int                `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, errors.Wrap(err, "decode movie counts")
	}

	byID := make(map[string]int, len(rows))
	for _, r := range rows {
		byID[r.ID.Hex()] = r.Count
	}
	seen := make(map[string]bool, len(ids))
	for _, oid := range oids {
		id := oid.Hex()
		n, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		counts = append(counts, models.MovieCount{ID: id, Count: n})
	}
	return counts, nil
}

// SearchActorsByName matches name case-insensitively as a literal substring
func (s *Store) SearchActorsByName(ctx context.Context, name string, limit int) ([]models.Actor, error) {
	if limit <= 0 {
		limit = store.DefaultSearchLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(int64(limit))
	cur, err := s.actors.Find(ctx, nameContains(name, true), opts)
	if err != nil {
		return nil, errors.Wrapf(err, "search actors %q", name)
	}
	return decodeActors(ctx, cur)
}

// RandomActors samples n actors with $sample
func (s *Store) RandomActors(ctx context.Context, n int) ([]models.Actor, error) {
	cur, err := s.actors.Aggregate(ctx, sampleActorsPipeline(n))
	if err != nil {
		return nil, errors.Wrap(err, "sample actors")
	}
	return decodeActors(ctx, cur)
}

// RandomMovieInRange samples one movie released inside r
func (s *Store) RandomMovieInRange(ctx context.Context, r models.YearRange) ([]models.Movie, error) {
	cur, err := s.movies.Aggregate(ctx, randomMoviePipeline(r.MinYear, r.MaxYear))
	if err != nil {
		return nil, errors.Wrapf(err, "sample movie in %s", r)
	}
	return decodeMovies(ctx, cur)
}

// Collaborators joins the casts of the actor's movies back onto the actor collection
func (s *Store) Collaborators(ctx context.Context, actorID string) ([]models.Actor, error) {
	if _, err := s.ActorByID(ctx, actorID); err != nil {
		return nil, err
	}
	oid, _ := objectID(actorID)

	cur, err := s.movies.Aggregate(ctx, collaboratorsPipeline(oid))
	if err != nil {
		return nil, errors.Wrapf(err, "collaborators of %s", actorID)
	}
	return decodeActors(ctx, cur)
}

// Import upserts every document of ds with ordered bulk replaces
func (s *Store) Import(ctx context.Context, ds models.Dataset) error {
	if err := ds.Validate(); err != nil {
		return err
	}

	actorWrites := make([]mongo.WriteModel, 0, len(ds.Actors))
	for _, a := range ds.Actors {
		doc, err := actorDocFrom(a)
		if err != nil {
			return errors.Wrapf(err, "actor %s", a.ID)
		}
		actorWrites = append(actorWrites, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": doc.ID}).SetReplacement(doc).SetUpsert(true))
	}

	movieWrites := make([]mongo.WriteModel, 0, len(ds.Movies))
	for _, m := range ds.Movies {
		doc, err := movieDocFrom(m)
		if err != nil {
			return errors.Wrapf(err, "movie %s", m.ID)
		}
		movieWrites = append(movieWrites, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": doc.ID}).SetReplacement(doc).SetUpsert(true))
	}

	if len(actorWrites) > 0 {
		if _, err := s.actors.BulkWrite(ctx, actorWrites); err != nil {
			return errors.Wrap(err, "bulk write actors")
		}
	}
	if len(movieWrites) > 0 {
		if _, err := s.movies.BulkWrite(ctx, movieWrites); err != nil {
			return errors.Wrap(err, "bulk write movies")
		}
	}

	s.logger.Infow("Imported dataset", "actors", len(actorWrites), "movies", len(movieWrites))
	return nil
}

// Export dumps both collections
func (s *Store) Export(ctx context.Context) (*models.Dataset, error) {
	cur, err := s.actors.Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(err, "find all actors")
	}
	actors, err := decodeActors(ctx, cur)
	if err != nil {
		return nil, err
	}
	movies, err := s.AllMovies(ctx)
	if err != nil {
		return nil, err
	}
	return &models.Dataset{Actors: actors, Movies: movies}, nil
}

// Stats counts documents and cast entries
func (s *Store) Stats(ctx context.Context) (models.Stats, error) {
	var st models.Stats

	actors, err := s.actors.CountDocuments(ctx, bson.M{})
	if err != nil {
		return st, errors.Wrap(err, "count actors")
	}
	movies, err := s.movies.CountDocuments(ctx, bson.M{})
	if err != nil {
		return st, errors.Wrap(err, "count movies")
	}
	st.Actors, st.Movies = int(actors), int(movies)

	cur, err := s.movies.Aggregate(ctx, statsPipeline())
	if err != nil {
		return st, errors.Wrap(err, "aggregate movie stats")
	}
	var rows []struct {
		Credits int `bson:"credits"`
		MinYear int `bson:"minYear"`
		MaxYear int `bson:"maxYear"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return st, errors.Wrap(err, "decode movie stats")
	}
	if len(rows) > 0 {
		st.Credits, st.MinYear, st.MaxYear = rows[0].Credits, rows[0].MinYear, rows[0].MaxYear
	}
	return st, nil
}

func decodeActors(ctx context.Context, cur *mongo.Cursor) ([]models.Actor, error) {
	var docs []actorDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decode actors")
	}
	actors := make([]models.Actor, len(docs))
	for i, d := range docs {
		actors[i] = d.model()
	}
	return actors, nil
}

func decodeMovies(ctx context.Context, cur *mongo.Cursor) ([]models.Movie, error) {
	var docs []movieDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decode movies")
	}
	movies := make([]models.Movie, len(docs))
	for i, d := range docs {
		movies[i] = d.model()
	}
	return movies, nil
}
