package models

import (
	"strconv"
	"strings"

	"github.com/teranos/actorgraph/errors"
)

// Default bounds of the time slider
const (
	DefaultMinYear = 2000
	DefaultMaxYear = 2020
)

// YearRange is an inclusive range of release years
type YearRange struct {
	MinYear int `json:"min_year"`
	MaxYear int `json:"max_year"`
}

// DefaultYearRange is 2000-2020
func DefaultYearRange() YearRange {
	return YearRange{MinYear: DefaultMinYear, MaxYear: DefaultMaxYear}
}

// Contains reports whether year lies inside the range
func (r YearRange) Contains(year int) bool {
	return year >= r.MinYear && year <= r.MaxYear
}

func (r YearRange) String() string {
	return strconv.Itoa(r.MinYear) + "-" + strconv.Itoa(r.MaxYear)
}

// ParseYearRange parses "YYYY-YYYY" as used by /api/search/random/movie/{range}.
// Reversed bounds are swapped.
func ParseYearRange(s string) (YearRange, error) {
	from, to, ok := strings.Cut(s, "-")
	if !ok {
		return YearRange{}, errors.NewInvalidRequestError("year range %q is not YYYY-YYYY", s)
	}
	minYear, err := strconv.Atoi(strings.TrimSpace(from))
	if err != nil {
		return YearRange{}, errors.NewInvalidRequestError("year range %q has a bad start year", s)
	}
	maxYear, err := strconv.Atoi(strings.TrimSpace(to))
	if err != nil {
		return YearRange{}, errors.NewInvalidRequestError("year range %q has a bad end year", s)
	}
	if minYear > maxYear {
		minYear, maxYear = maxYear, minYear
	}
	return YearRange{MinYear: minYear, MaxYear: maxYear}, nil
}
