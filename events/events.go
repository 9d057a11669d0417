// Package events is the typed publish/subscribe hub that connects the parts
// of an exploration session: search, selection, graph and time slider.
package events

import (
	"sync"

	"go.uber.org/zap"

	"github.com/teranos/actorgraph/logger"
	"github.com/teranos/actorgraph/models"
)

// SelectionChange is published whenever the selected actor set changes.
// A nil Actor means the selection was cleared; a non-nil Actor with nil
// Movies means that actor was removed.
type SelectionChange struct {
	Actor  *models.Actor
	Movies []models.Movie
	Color  string
}

// Cleared reports whether the change empties the whole selection
func (c SelectionChange) Cleared() bool {
	return c.Actor == nil
}

// Removed reports whether the change removes a single actor
func (c SelectionChange) Removed() bool {
	return c.Actor != nil && c.Movies == nil
}

// Topic delivers values of one type to its subscribers
type Topic[T any] struct {
	name   string
	logger *zap.SugaredLogger

	mu       sync.Mutex
	nextID   uint64
	handlers []subscription[T]
}

type subscription[T any] struct {
	id uint64
	fn func(T)
}

// NewTopic creates a named topic. The name only appears in logs.
func NewTopic[T any](name string) *Topic[T] {
	return &Topic[T]{name: name, logger: logger.ComponentLogger("events")}
}

// Subscribe registers fn and returns a func that removes it again.
// A nil fn is ignored.
func (t *Topic[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	t.mu.Lock()
	t.nextID++
	id := t.nextID
	t.handlers = append(t.handlers, subscription[T]{id: id, fn: fn})
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			for i, s := range t.handlers {
				if s.id == id {
					t.handlers = append(t.handlers[:i:i], t.handlers[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish calls every subscriber synchronously in subscription order.
// Handlers may subscribe or publish again; they see the list as it was when
// Publish started.
func (t *Topic[T]) Publish(v T) {
	t.mu.Lock()
	handlers := make([]subscription[T], len(t.handlers))
	copy(handlers, t.handlers)
	t.mu.Unlock()

	for _, s := range handlers {
		t.call(s.fn, v)
	}
}

func (t *Topic[T]) call(fn func(T), v T) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Errorw("event handler panicked",
				"topic", t.name,
				logger.FieldError, r,
			)
		}
	}()
	fn(v)
}

// Len returns the number of subscribers
func (t *Topic[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.handlers)
}

// Hub groups the topics of one exploration session
type Hub struct {
	ActorSelected    *Topic[models.Actor]
	SelectionChanged *Topic[SelectionChange]
	SearchForActor   *Topic[models.Actor]
	TimeRange        *Topic[models.YearRange]
	Reset            *Topic[struct{}]
	SkeletonToggled  *Topic[bool]
}

// NewHub creates a hub with empty topics
func NewHub() *Hub {
	return &Hub{
		ActorSelected:    NewTopic[models.Actor]("actor_selected"),
		SelectionChanged: NewTopic[SelectionChange]("selection_changed"),
		SearchForActor:   NewTopic[models.Actor]("search_for_actor"),
		TimeRange:        NewTopic[models.YearRange]("time_range"),
		Reset:            NewTopic[struct{}]("reset"),
		SkeletonToggled:  NewTopic[bool]("skeleton_toggled"),
	}
}
