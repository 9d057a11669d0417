package models

import (
	"github.com/teranos/actorgraph/errors"
)

// Dataset is the import/export bundle for `actorgraph db import|export`
type Dataset struct {
	Actors []Actor `json:"actors" yaml:"actors" toml:"actors"`
	Movies []Movie `json:"movies" yaml:"movies" toml:"movies"`
}

// Validate rejects documents a store could not index: missing ids or names,
// and duplicate ids within a collection.
func (d Dataset) Validate() error {
	seen := make(map[string]bool, len(d.Actors))
	for i, a := range d.Actors {
		if a.ID == "" {
			return errors.NewInvalidRequestError("actor #%d has no id", i)
		}
		if a.Name == "" {
			return errors.NewInvalidRequestError("actor %s has no name", a.ID)
		}
		if seen[a.ID] {
			return errors.NewInvalidRequestError("duplicate actor id %s", a.ID)
		}
		seen[a.ID] = true
	}

	seen = make(map[string]bool, len(d.Movies))
	for i, m := range d.Movies {
		if m.ID == "" {
			return errors.NewInvalidRequestError("movie #%d has no id", i)
		}
		if seen[m.ID] {
			return errors.NewInvalidRequestError("duplicate movie id %s", m.ID)
		}
		seen[m.ID] = true
	}
	return nil
}

// MoviesBetween returns the movies whose cast contains both actors
func MoviesBetween(actorA, actorB string, movies []Movie) []Movie {
	var shared []Movie
	for _, m := range movies {
		if m.HasActor(actorA) && m.HasActor(actorB) {
			shared = append(shared, m)
		}
	}
	return shared
}
