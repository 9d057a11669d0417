// Package selection tracks the actors picked for comparison in an
// exploration session, their movies and their highlight colors.
package selection

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/teranos/actorgraph/errors"
	"github.com/teranos/actorgraph/events"
	"github.com/teranos/actorgraph/logger"
	"github.com/teranos/actorgraph/models"
)

// MaxActors is the default number of actors selected at once
const MaxActors = 3

// Palette is d3's schemeSet2
var Palette = []string{
	"#66c2a5", "#fc8d62", "#8da0cb", "#e78ac3",
	"#a6d854", "#ffd92f", "#e5c494", "#b3b3b3",
}

// MovieSource loads an actor's filmography
type MovieSource interface {
	MoviesOfActor(ctx context.Context, actorID string) ([]models.Movie, error)
}

type entry struct {
	actor  models.Actor
	movies []models.Movie
	color  string
}

// Selection is an insertion-ordered set of at most max actors. The color
// counter keeps counting across evictions and clears, so a re-selected
// actor usually gets a new color.
type Selection struct {
	source MovieSource
	hub    *events.Hub
	max    int
	logger *zap.SugaredLogger

	mu        sync.RWMutex
	order     []string
	entries   map[string]entry
	colorNext int
	timeRange models.YearRange
}

// Option configures a Selection
type Option func(*Selection)

// WithMaxActors overrides MaxActors
func WithMaxActors(n int) Option {
	return func(s *Selection) {
		if n > 0 {
			s.max = n
		}
	}
}

// WithLogger overrides the component logger
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Selection) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates an empty selection publishing on hub
func New(source MovieSource, hub *events.Hub, opts ...Option) *Selection {
	s := &Selection{
		source:    source,
		hub:       hub,
		max:       MaxActors,
		logger:    logger.ComponentLogger("selection"),
		entries:   make(map[string]entry),
		timeRange: models.DefaultYearRange(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Attach subscribes the selection to node clicks, resets and time slider
// moves on its hub. Failed selections go to onError when it is set and are
// logged either way. The returned func detaches the selection again.
func (s *Selection) Attach(ctx context.Context, onError func(models.Actor, error)) (detach func()) {
	unsubs := []func(){
		s.hub.ActorSelected.Subscribe(func(a models.Actor) {
			if err := s.Select(ctx, a); err != nil {
				s.logger.Warnw("selecting actor failed",
					logger.FieldActorID, a.ID,
					logger.FieldError, err,
				)
				if onError != nil {
					onError(a, err)
				}
			}
		}),
		s.hub.Reset.Subscribe(func(struct{}) { s.Clear() }),
		s.hub.TimeRange.Subscribe(func(r models.YearRange) { s.SetTimeRange(r.MinYear, r.MaxYear) }),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// Select adds actor to the selection and publishes SelectionChanged. When
// the actor is already selected the stored movies and color are published
// again. Adding beyond capacity evicts the oldest actor without a separate
// event. The color is taken before the movies are fetched, so a failed
// selection still uses one up.
func (s *Selection) Select(ctx context.Context, actor models.Actor) error {
	if e, ok := s.entry(actor.ID); ok {
		s.publish(e)
		return nil
	}

	s.mu.Lock()
	color := Palette[s.colorNext%len(Palette)]
	s.colorNext++
	s.mu.Unlock()

	movies, err := s.source.MoviesOfActor(ctx, actor.ID)
	if err != nil {
		return errors.Wrapf(err, "load movies of %s", actor.ID)
	}
	if movies == nil {
		movies = []models.Movie{}
	}

	s.mu.Lock()
	if e, ok := s.entries[actor.ID]; ok {
		// selected concurrently while we were fetching
		s.mu.Unlock()
		s.publish(e)
		return nil
	}
	e := entry{actor: actor, movies: movies, color: color}
	s.entries[actor.ID] = e
	s.order = append(s.order, actor.ID)
	for len(s.order) > s.max {
		evicted := s.order[0]
		s.order = s.order[1:]
		delete(s.entries, evicted)
		s.logger.Debugw("evicted oldest selection", logger.FieldActorID, evicted)
	}
	s.mu.Unlock()

	s.publish(e)
	return nil
}

// Remove drops actor from the selection and publishes it with nil movies.
// Unknown actors are ignored.
func (s *Selection) Remove(actor models.Actor) {
	s.mu.Lock()
	if _, ok := s.entries[actor.ID]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.entries, actor.ID)
	for i, id := range s.order {
		if id == actor.ID {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	a := actor
	s.hub.SelectionChanged.Publish(events.SelectionChange{Actor: &a})
}

// Clear empties the selection and publishes an all-nil change
func (s *Selection) Clear() {
	s.mu.Lock()
	s.order = nil
	s.entries = make(map[string]entry)
	s.mu.Unlock()

	s.hub.SelectionChanged.Publish(events.SelectionChange{})
}

// Actors returns the selected actors, oldest first
func (s *Selection) Actors() []models.Actor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Actor, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.entries[id].actor)
	}
	return out
}

// Movies returns the stored filmography of a selected actor
func (s *Selection) Movies(actorID string) []models.Movie {
	e, _ := s.entry(actorID)
	return e.movies
}

// Color returns the highlight color of a selected actor, "" otherwise
func (s *Selection) Color(actorID string) string {
	e, _ := s.entry(actorID)
	return e.color
}

// Has reports whether actorID is selected
func (s *Selection) Has(actorID string) bool {
	_, ok := s.entry(actorID)
	return ok
}

// Len returns the number of selected actors
func (s *Selection) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// TimeRange returns the bounds last set by the time slider
func (s *Selection) TimeRange() models.YearRange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timeRange
}

// SetTimeRange stores the time slider bounds
func (s *Selection) SetTimeRange(minYear, maxYear int) {
	s.mu.Lock()
	s.timeRange = models.YearRange{MinYear: minYear, MaxYear: maxYear}
	s.mu.Unlock()
}

func (s *Selection) entry(actorID string) (entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[actorID]
	return e, ok
}

func (s *Selection) publish(e entry) {
	a := e.actor
	s.hub.SelectionChanged.Publish(events.SelectionChange{
		Actor:  &a,
		Movies: e.movies,
		Color:  e.color,
	})
}
