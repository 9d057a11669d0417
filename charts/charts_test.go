package charts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/actorgraph/errors"
	"github.com/teranos/actorgraph/models"
)

func TestColorScaleEndpointsAndClamp(t *testing.T) {
	s := DefaultColorScale()

	assert.Equal(t, "#440154", s.Color(0))
	assert.Equal(t, "#21918c", s.Color(3.5e9))
	assert.Equal(t, "#fde725", s.Color(7e9))
	assert.Equal(t, "#fde725", s.Color(9e9), "above the domain clamps")
	assert.Equal(t, "#440154", s.Color(-5), "below the domain clamps")
}

func TestColorScaleInterpolates(t *testing.T) {
	s := ColorScale{Data: VoteAverage, Scheme: Magma}
	c := s.Color(5.3)
	assert.Regexp(t, `^#[0-9a-f]{6}$`, c)
	assert.NotEqual(t, s.Color(5), c)
	assert.NotEqual(t, s.Color(10), c)
}

func TestNodeColorPicksMeasure(t *testing.T) {
	heat := ColorScale{Data: RevenueAverage, Scheme: Heatmap}
	assert.Equal(t, "#800026", heat.NodeColor(0, 2e8, 0))

	vote := ColorScale{Data: VoteAverage, Scheme: Plasma}
	assert.Equal(t, "#0d0887", vote.NodeColor(7e9, 2e8, 5))

	none := ColorScale{Data: NoColor, Scheme: Viridis}
	assert.Equal(t, FlatColor, none.NodeColor(1, 2, 3))
}

func TestRevenueLegend(t *testing.T) {
	legend := DefaultColorScale().Legend()
	require.Len(t, legend, 100)

	assert.Equal(t, "0M", legend[0].Label)
	assert.Equal(t, "3500M", legend[50].Label)
	assert.Equal(t, "6930M", legend[99].Label)
	assert.Empty(t, legend[1].Label)
	assert.Empty(t, legend[98].Label)
	assert.Equal(t, "#440154", legend[0].Color)
}

func TestVoteLegend(t *testing.T) {
	legend := ColorScale{Data: VoteAverage, Scheme: Viridis}.Legend()
	require.Len(t, legend, 50)

	assert.Equal(t, "5", legend[0].Label)
	assert.Equal(t, "6", legend[10].Label)
	assert.Equal(t, "9", legend[40].Label)
	assert.Equal(t, "10", legend[49].Label)
	assert.Empty(t, legend[5].Label)
}

func TestFlatLegend(t *testing.T) {
	legend := ColorScale{Data: NoColor, Scheme: Magma}.Legend()
	require.Len(t, legend, 100)
	for _, step := range legend {
		assert.Equal(t, FlatColor, step.Color)
		assert.Empty(t, step.Label)
	}
}

func TestParseColorSettings(t *testing.T) {
	d, err := ParseColorData("voteAverage")
	require.NoError(t, err)
	assert.Equal(t, VoteAverage, d)

	_, err = ParseColorData("popularity")
	assert.True(t, errors.IsInvalidRequestError(err))

	sc, err := ParseColorScheme("heatmap")
	require.NoError(t, err)
	assert.Equal(t, Heatmap, sc)

	_, err = ParseColorScheme("rainbow")
	assert.True(t, errors.IsInvalidRequestError(err))
}

func TestYearHistogram(t *testing.T) {
	movies := []models.Movie{
		{ID: "1", Year: 2001},
		{ID: "2", Year: 2003},
		{ID: "3", Year: 2003},
		{ID: "4", Year: 0},
	}
	h := YearHistogram(movies)

	assert.Equal(t, 2001, h.MinYear)
	assert.Equal(t, 2003, h.MaxYear)
	assert.Equal(t, []YearBin{{Year: 2001, Count: 1}, {Year: 2002, Count: 0}, {Year: 2003, Count: 2}}, h.Bins)
	assert.Equal(t, 2, h.MaxCount)
	assert.InDelta(t, 2.4, h.YMax, 1e-9)
}

func TestYearHistogramEmpty(t *testing.T) {
	h := YearHistogram(nil)
	assert.Empty(t, h.Bins)
	assert.Zero(t, h.MaxCount)
}

func TestActorSpan(t *testing.T) {
	from, to, ok := ActorSpan([]models.Movie{{Year: 2017}, {Year: 2007}, {Year: 0}, {Year: 2012}})
	require.True(t, ok)
	assert.Equal(t, 2007, from)
	assert.Equal(t, 2017, to)
	assert.Equal(t, 11, Span{From: from, To: to}.Years())

	_, _, ok = ActorSpan(nil)
	assert.False(t, ok)
}

func TestRatingOverTime(t *testing.T) {
	series := RatingOverTime([]models.Movie{
		{ID: "b", Title: "Baywatch", Year: 2017, Month: 5, VoteAverage: 5.6},
		{ID: "h", Title: "Hairspray", Year: 2007, Month: 7, VoteAverage: 6.4},
		{ID: "g", Title: "The Greatest Showman", Year: 2017, Month: 12, VoteAverage: 7.6},
	})

	require.Len(t, series.Points, 3)
	assert.Equal(t, "h", series.Points[0].MovieID)
	assert.Equal(t, "b", series.Points[1].MovieID)
	assert.Equal(t, "g", series.Points[2].MovieID)
	assert.Equal(t, 2007, series.MinYear)
	assert.Equal(t, 2017, series.MaxYear)
	assert.Equal(t, 7.6, series.YMax)
}

func TestRadar(t *testing.T) {
	actor := models.Actor{ID: "z", Name: "Zac Efron", Movies: []string{"1", "2"}, TotalRevenue: 2e8, TotalRating: 15}
	movies := []models.Movie{{ID: "1", Year: 2007}, {ID: "2", Year: 2017}}

	axes := Radar(actor, movies)
	require.Len(t, axes, 5)

	byName := map[string]RadarAxis{}
	for _, a := range axes {
		byName[a.Axis] = a
		assert.GreaterOrEqual(t, a.Value, 0.0)
		assert.LessOrEqual(t, a.Value, 1.0)
	}
	assert.Equal(t, 2.0, byName[AxisMovies].Raw)
	assert.Equal(t, 1e8, byName[AxisRevenueAverage].Raw)
	assert.InDelta(t, 0.5, byName[AxisRevenueAverage].Value, 1e-9)
	assert.InDelta(t, 0.5, byName[AxisVoteAverage].Value, 1e-9)
	assert.Equal(t, 11.0, byName[AxisCareerSpan].Raw)
}

func TestRadarWithoutMovies(t *testing.T) {
	axes := Radar(models.Actor{ID: "x"}, nil)
	for _, a := range axes {
		assert.Zero(t, a.Value, a.Axis)
	}
}

func TestForActor(t *testing.T) {
	actor := models.Actor{ID: "z", Name: "Zac Efron", Movies: []string{"1"}}
	c := ForActor(actor, []models.Movie{{ID: "1", Year: 2007, VoteAverage: 6.4}})

	require.NotNil(t, c.Span)
	assert.Equal(t, 2007, c.Span.From)
	assert.Len(t, c.Rating.Points, 1)
	assert.Len(t, c.Radar, 5)

	empty := ForActor(models.Actor{ID: "y"}, nil)
	assert.Nil(t, empty.Span)
}
