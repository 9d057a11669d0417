package mongo

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/teranos/actorgraph/errors"
	"github.com/teranos/actorgraph/models"
)

// actorDoc is the shape of the ActorExplorer "actor" collection
type actorDoc struct {
	ID           primitive.ObjectID   `bson:"_id"`
	Name         string               `bson:"name"`
	Birth        int                  `bson:"birth,omitempty"`
	Death        int                  `bson:"death,omitempty"`
	Movies       []primitive.ObjectID `bson:"movies"`
	TotalRevenue float64              `bson:"total_revenue"`
	TotalRating  float64              `bson:"total_rating"`
}

// movieDoc is the shape of the "movie" collection
type movieDoc struct {
	ID          primitive.ObjectID   `bson:"_id"`
	Title       string               `bson:"title"`
	Year        int                  `bson:"year"`
	Month       int                  `bson:"month,omitempty"`
	Day         int                  `bson:"day,omitempty"`
	Revenue     float64              `bson:"revenue"`
	VoteAverage float64              `bson:"vote_average"`
	Actors      []primitive.ObjectID `bson:"actors"`
}

func (d actorDoc) model() models.Actor {
	return models.Actor{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Birth:        d.Birth,
		Death:        d.Death,
		Movies:       hexes(d.Movies),
		TotalRevenue: d.TotalRevenue,
		TotalRating:  d.TotalRating,
	}
}

func (d movieDoc) model() models.Movie {
	return models.Movie{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Year:        d.Year,
		Month:       d.Month,
		Day:         d.Day,
		Revenue:     d.Revenue,
		VoteAverage: d.VoteAverage,
		Actors:      hexes(d.Actors),
	}
}

func actorDocFrom(a models.Actor) (actorDoc, error) {
	id, err := objectID(a.ID)
	if err != nil {
		return actorDoc{}, err
	}
	movies, err := objectIDs(a.Movies)
	if err != nil {
		return actorDoc{}, errors.Wrapf(err, "movies of actor %s", a.ID)
	}
	return actorDoc{
		ID:           id,
		Name:         a.Name,
		Birth:        a.Birth,
		Death:        a.Death,
		Movies:       movies,
		TotalRevenue: a.TotalRevenue,
		TotalRating:  a.TotalRating,
	}, nil
}

func movieDocFrom(m models.Movie) (movieDoc, error) {
	id, err := objectID(m.ID)
	if err != nil {
		return movieDoc{}, err
	}
	actors, err := objectIDs(m.Actors)
	if err != nil {
		return movieDoc{}, errors.Wrapf(err, "cast of movie %s", m.ID)
	}
	return movieDoc{
		ID:          id,
		Title:       m.Title,
		Year:        m.Year,
		Month:       m.Month,
		Day:         m.Day,
		Revenue:     m.Revenue,
		VoteAverage: m.VoteAverage,
		Actors:      actors,
	}, nil
}

// objectID parses a 24-hex id; anything else is an invalid request
func objectID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, errors.NewInvalidRequestError("invalid id %q", hex)
	}
	return id, nil
}

func objectIDs(hexIDs []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(hexIDs))
	for _, h := range hexIDs {
		id, err := objectID(h)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func hexes(ids []primitive.ObjectID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return out
}
