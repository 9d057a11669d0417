package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/actorgraph/errors"
)

func TestActorWireFormat(t *testing.T) {
	raw := `{"_id":"5e7a","name":"Zac Efron","birth":1987,"movies":["m1","m2"],"total_revenue":1.5e9,"total_rating":13.2}`

	var a Actor
	require.NoError(t, json.Unmarshal([]byte(raw), &a))
	assert.Equal(t, "5e7a", a.ID)
	assert.Equal(t, 1987, a.Birth)
	assert.Equal(t, 2, a.MovieCount())

	out, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"_id":"5e7a"`)
	assert.NotContains(t, string(out), "death")
}

func TestMovieHasActor(t *testing.T) {
	m := Movie{ID: "m1", Actors: []string{"a", "b"}}
	assert.True(t, m.HasActor("a"))
	assert.False(t, m.HasActor("c"))
}

func TestMoviesBetween(t *testing.T) {
	movies := []Movie{
		{ID: "m1", Actors: []string{"a", "b", "c"}},
		{ID: "m2", Actors: []string{"a", "c"}},
		{ID: "m3", Actors: []string{"b", "a"}},
	}

	shared := MoviesBetween("a", "b", movies)
	require.Len(t, shared, 2)
	assert.Equal(t, "m1", shared[0].ID)
	assert.Equal(t, "m3", shared[1].ID)

	assert.Empty(t, MoviesBetween("a", "z", movies))
}

func TestDatasetValidate(t *testing.T) {
	tests := []struct {
		name    string
		ds      Dataset
		wantErr bool
	}{
		{name: "empty", ds: Dataset{}},
		{name: "valid", ds: Dataset{
			Actors: []Actor{{ID: "a", Name: "A"}},
			Movies: []Movie{{ID: "m", Title: "M"}},
		}},
		{name: "actor without id", ds: Dataset{Actors: []Actor{{Name: "A"}}}, wantErr: true},
		{name: "actor without name", ds: Dataset{Actors: []Actor{{ID: "a"}}}, wantErr: true},
		{name: "duplicate actor", ds: Dataset{Actors: []Actor{{ID: "a", Name: "A"}, {ID: "a", Name: "B"}}}, wantErr: true},
		{name: "duplicate movie", ds: Dataset{Movies: []Movie{{ID: "m"}, {ID: "m"}}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ds.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsInvalidRequestError(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseYearRange(t *testing.T) {
	tests := []struct {
		in      string
		want    YearRange
		wantErr bool
	}{
		{in: "2000-2020", want: YearRange{2000, 2020}},
		{in: "2020-2000", want: YearRange{2000, 2020}},
		{in: "1999-1999", want: YearRange{1999, 1999}},
		{in: "2000", wantErr: true},
		{in: "abcd-2000", wantErr: true},
		{in: "2000-", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseYearRange(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsInvalidRequestError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Contains(tt.want.MinYear))
		})
	}
}

func TestDefaultYearRange(t *testing.T) {
	r := DefaultYearRange()
	assert.Equal(t, "2000-2020", r.String())
	assert.False(t, r.Contains(1999))
	assert.True(t, r.Contains(2020))
}
