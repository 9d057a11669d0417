package charts

import (
	"github.com/teranos/actorgraph/internal/util"
	"github.com/teranos/actorgraph/models"
)

// Radar axis scales. Revenue and vote axes share the color domains.
const (
	RadarMaxMovies     = 100
	RadarMaxCareerSpan = 60
)

// Radar axis names in drawing order
const (
	AxisMovies         = "movies"
	AxisRevenueTotal   = "revenue_total"
	AxisRevenueAverage = "revenue_average"
	AxisVoteAverage    = "vote_average"
	AxisCareerSpan     = "career_span"
)

// RadarAxis is one arm of the radar chart. Value is normalized to [0,1].
type RadarAxis struct {
	Axis  string  `json:"axis"`
	Raw   float64 `json:"raw"`
	Value float64 `json:"value"`
}

// Radar normalizes five measures of an actor for the radar chart. movies
// are the actor's films and only feed the career span.
func Radar(actor models.Actor, movies []models.Movie) []RadarAxis {
	count := float64(actor.MovieCount())
	avgRevenue := util.SafeDiv(actor.TotalRevenue, count)
	avgVote := util.SafeDiv(actor.TotalRating, count)

	span := 0.0
	if from, to, ok := ActorSpan(movies); ok {
		span = float64(to - from + 1)
	}

	return []RadarAxis{
		{Axis: AxisMovies, Raw: count, Value: util.Normalize(count, 0, RadarMaxMovies)},
		{Axis: AxisRevenueTotal, Raw: actor.TotalRevenue, Value: util.Normalize(actor.TotalRevenue, TotalRevenueMin, TotalRevenueMax)},
		{Axis: AxisRevenueAverage, Raw: avgRevenue, Value: util.Normalize(avgRevenue, AverageRevenueMin, AverageRevenueMax)},
		{Axis: AxisVoteAverage, Raw: avgVote, Value: util.Normalize(avgVote, VoteMin, VoteMax)},
		{Axis: AxisCareerSpan, Raw: span, Value: util.Normalize(span, 0, RadarMaxCareerSpan)},
	}
}

// ActorChart bundles the per-actor charts served by /api/charts/actor/{id}
type ActorChart struct {
	Actor  models.Actor `json:"actor"`
	Rating RatingSeries `json:"rating"`
	Radar  []RadarAxis  `json:"radar"`
	Span   *Span        `json:"span,omitempty"`
}

// ForActor builds an ActorChart from an actor and its movies
func ForActor(actor models.Actor, movies []models.Movie) ActorChart {
	c := ActorChart{
		Actor:  actor,
		Rating: RatingOverTime(movies),
		Radar:  Radar(actor, movies),
	}
	if from, to, ok := ActorSpan(movies); ok {
		c.Span = &Span{ActorID: actor.ID, Name: actor.Name, From: from, To: to}
	}
	return c
}
