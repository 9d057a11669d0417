// Package models holds the actor and movie documents exchanged between the
// store, the REST API and exploration sessions.
package models

// Actor is an actor document. Movies lists the ids of the actor's films.
type Actor struct {
	ID           string   `json:"_id" yaml:"id" toml:"id"`
	Name         string   `json:"name" yaml:"name" toml:"name"`
	Birth        int      `json:"birth,omitempty" yaml:"birth,omitempty" toml:"birth,omitempty"`
	Death        int      `json:"death,omitempty" yaml:"death,omitempty" toml:"death,omitempty"`
	Movies       []string `json:"movies" yaml:"movies" toml:"movies"`
	TotalRevenue float64  `json:"total_revenue" yaml:"total_revenue" toml:"total_revenue"`
	TotalRating  float64  `json:"total_rating" yaml:"total_rating" toml:"total_rating"`
}

// MovieCount is the length of the actor's movies array
func (a Actor) MovieCount() int {
	return len(a.Movies)
}

// Movie is a movie document. Actors lists the ids of its cast.
type Movie struct {
	ID          string   `json:"_id" yaml:"id" toml:"id"`
	Title       string   `json:"title" yaml:"title" toml:"title"`
	Year        int      `json:"year" yaml:"year" toml:"year"`
	Month       int      `json:"month,omitempty" yaml:"month,omitempty" toml:"month,omitempty"`
	Day         int      `json:"day,omitempty" yaml:"day,omitempty" toml:"day,omitempty"`
	Revenue     float64  `json:"revenue" yaml:"revenue" toml:"revenue"`
	VoteAverage float64  `json:"vote_average" yaml:"vote_average" toml:"vote_average"`
	Actors      []string `json:"actors" yaml:"actors" toml:"actors"`
}

// HasActor reports whether actorID is in the cast
func (m Movie) HasActor(actorID string) bool {
	for _, id := range m.Actors {
		if id == actorID {
			return true
		}
	}
	return false
}

// MovieCount is one row of the movie count endpoint
type MovieCount struct {
	ID    string `json:"_id"`
	Count int    `json:"count"`
}

// Stats summarizes a store's contents
type Stats struct {
	Actors  int `json:"actors"`
	Movies  int `json:"movies"`
	Credits int `json:"credits"` // movie_cast rows
	MinYear int `json:"min_year"`
	MaxYear int `json:"max_year"`
}
