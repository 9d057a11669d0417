package charts

import (
	"sort"

	"github.com/teranos/actorgraph/models"
)

// HistogramHeadroom scales the y domain above the tallest bin
const HistogramHeadroom = 1.2

// YearBin counts the movies released in one year
type YearBin struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// Histogram is the movie count per year behind the time slider
type Histogram struct {
	Bins     []YearBin `json:"bins"`
	MinYear  int       `json:"min_year"`
	MaxYear  int       `json:"max_year"`
	MaxCount int       `json:"max_count"`
	YMax     float64   `json:"y_max"`
}

// YearHistogram bins movies by year with one bin per year from the earliest
// to the latest, empty years included. Movies without a year are skipped.
func YearHistogram(movies []models.Movie) Histogram {
	counts := make(map[int]int)
	h := Histogram{Bins: []YearBin{}}
	for _, m := range movies {
		if m.Year == 0 {
			continue
		}
		if len(counts) == 0 || m.Year < h.MinYear {
			h.MinYear = m.Year
		}
		if len(counts) == 0 || m.Year > h.MaxYear {
			h.MaxYear = m.Year
		}
		counts[m.Year]++
	}
	if len(counts) == 0 {
		return h
	}

	for y := h.MinYear; y <= h.MaxYear; y++ {
		c := counts[y]
		h.Bins = append(h.Bins, YearBin{Year: y, Count: c})
		if c > h.MaxCount {
			h.MaxCount = c
		}
	}
	h.YMax = float64(h.MaxCount) * HistogramHeadroom
	return h
}

// Span is the first and last release year of an actor's movies
type Span struct {
	ActorID string `json:"actor_id"`
	Name    string `json:"name,omitempty"`
	Color   string `json:"color,omitempty"`
	From    int    `json:"from"`
	To      int    `json:"to"`
}

// Years returns the length of the span in years, inclusive
func (s Span) Years() int {
	if s.To < s.From {
		return 0
	}
	return s.To - s.From + 1
}

// ActorSpan returns the year span of movies. ok is false when no movie has
// a year.
func ActorSpan(movies []models.Movie) (from, to int, ok bool) {
	for _, m := range movies {
		if m.Year == 0 {
			continue
		}
		if !ok || m.Year < from {
			from = m.Year
		}
		if !ok || m.Year > to {
			to = m.Year
		}
		ok = true
	}
	return from, to, ok
}

// RatingPoint is one bar of the rating-over-time chart
type RatingPoint struct {
	MovieID     string  `json:"movie_id"`
	Title       string  `json:"title"`
	Year        int     `json:"year"`
	VoteAverage float64 `json:"vote_average"`
}

// RatingSeries is an actor's ratings ordered by release
type RatingSeries struct {
	Points  []RatingPoint `json:"points"`
	MinYear int           `json:"min_year"`
	MaxYear int           `json:"max_year"`
	YMax    float64       `json:"y_max"`
}

// RatingOverTime orders movies by year, then month, day and title, and
// reports the x and y domains.
func RatingOverTime(movies []models.Movie) RatingSeries {
	sorted := make([]models.Movie, len(movies))
	copy(sorted, movies)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		return a.Title < b.Title
	})

	series := RatingSeries{Points: make([]RatingPoint, 0, len(sorted))}
	for _, m := range sorted {
		series.Points = append(series.Points, RatingPoint{
			MovieID:     m.ID,
			Title:       m.Title,
			Year:        m.Year,
			VoteAverage: m.VoteAverage,
		})
		if m.VoteAverage > series.YMax {
			series.YMax = m.VoteAverage
		}
	}
	series.MinYear, series.MaxYear, _ = ActorSpan(sorted)
	return series
}
