// Package session runs one exploration session: the event hub, the actor
// selection and the graph builder of a single client, driven by client
// messages and answered through a Sink.
package session

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/actorgraph/charts"
	"github.com/teranos/actorgraph/errors"
	"github.com/teranos/actorgraph/events"
	"github.com/teranos/actorgraph/graph"
	grapherr "github.com/teranos/actorgraph/graph/error"
	"github.com/teranos/actorgraph/logger"
	"github.com/teranos/actorgraph/models"
	"github.com/teranos/actorgraph/selection"
	"github.com/teranos/actorgraph/store"
)

// MinSearchLength is the shortest name that produces suggestions
const MinSearchLength = 4

// DefaultStartingActor is loaded when a session starts
const DefaultStartingActor = "Zac Efron"

// Repository is the data access a session needs. *repository.Repository
// implements it.
type Repository interface {
	ActorByID(ctx context.Context, id string) (*models.Actor, error)
	ActorByName(ctx context.Context, name string) (*models.Actor, error)
	ActorsByID(ctx context.Context, ids []string) []models.Actor
	AllMovies(ctx context.Context) ([]models.Movie, error)
	MoviesOfActor(ctx context.Context, actorID string) ([]models.Movie, error)
	MovieCounts(ctx context.Context, ids []string) ([]models.MovieCount, error)
	SearchActorsByName(ctx context.Context, name string, limit int) ([]models.Actor, error)
	RandomMovieInRange(ctx context.Context, r models.YearRange) ([]models.Movie, error)
	MoviesBetween(actorA, actorB string, movies []models.Movie) []models.Movie
}

// Sink receives every message the session sends to its client
type Sink func(ServerMessage)

// Session is the server-side state of one explorer client. Handle must not
// be called concurrently; the websocket read pump serializes messages.
type Session struct {
	ID string

	repo      Repository
	hub       *events.Hub
	selection *selection.Selection
	graph     *graph.Builder
	send      Sink
	logger    *zap.SugaredLogger

	ctx    context.Context
	cancel context.CancelFunc
	detach []func()

	searchLimit int
	rndMu       sync.Mutex
	rnd         *rand.Rand

	// set while an event handler runs; reported back by Handle
	pendingErr error
}

type options struct {
	expandLimit int
	maxSelected int
	searchLimit int
	scale       charts.ColorScale
	rnd         *rand.Rand
	logger      *zap.SugaredLogger
}

// Option configures a Session
type Option func(*options)

// WithExpandLimit sets how many collaborators a selection adds
func WithExpandLimit(n int) Option { return func(o *options) { o.expandLimit = n } }

// WithMaxSelected sets how many actors can be selected at once
func WithMaxSelected(n int) Option { return func(o *options) { o.maxSelected = n } }

// WithSearchLimit caps the number of suggestions
func WithSearchLimit(n int) Option { return func(o *options) { o.searchLimit = n } }

// WithColorScale sets the initial node color scale
func WithColorScale(s charts.ColorScale) Option { return func(o *options) { o.scale = s } }

// WithRand makes random choices reproducible
func WithRand(r *rand.Rand) Option { return func(o *options) { o.rnd = r } }

// WithLogger overrides the component logger
func WithLogger(l *zap.SugaredLogger) Option { return func(o *options) { o.logger = l } }

// New creates a session whose lifetime is bound to ctx
func New(ctx context.Context, repo Repository, send Sink, opts ...Option) *Session {
	o := options{
		expandLimit: graph.DefaultExpandLimit,
		maxSelected: selection.MaxActors,
		searchLimit: store.DefaultSearchLimit,
		scale:       charts.DefaultColorScale(),
		logger:      logger.ComponentLogger("session"),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rnd == nil {
		o.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if send == nil {
		send = func(ServerMessage) {}
	}

	id := uuid.New().String()
	sctx, cancel := context.WithCancel(logger.WithSessionID(ctx, id))
	hub := events.NewHub()

	s := &Session{
		ID:          id,
		repo:        repo,
		hub:         hub,
		selection:   selection.New(repo, hub, selection.WithMaxActors(o.maxSelected)),
		graph:       graph.NewBuilder(graph.WithExpandLimit(o.expandLimit), graph.WithColorScale(o.scale), graph.WithRand(o.rnd)),
		send:        send,
		logger:      o.logger.With(logger.FieldSessionID, id),
		ctx:         sctx,
		cancel:      cancel,
		searchLimit: o.searchLimit,
		rnd:         o.rnd,
	}
	s.subscribe()
	return s
}

// subscribe wires the components together. The graph resets before the
// selection clears so the cleared-selection update shows an empty graph.
func (s *Session) subscribe() {
	s.detach = append(s.detach,
		s.hub.SearchForActor.Subscribe(s.onSearchForActor),
		s.hub.Reset.Subscribe(func(struct{}) { s.graph.Reset() }),
		s.hub.SkeletonToggled.Subscribe(s.onSkeletonToggled),
		s.hub.SelectionChanged.Subscribe(s.onSelectionChanged),
	)
	s.detach = append(s.detach, s.selection.Attach(s.ctx, func(_ models.Actor, err error) {
		s.fail(err)
	}))
}

// Hub exposes the session's events, mainly for observers and tests
func (s *Session) Hub() *events.Hub { return s.hub }

// Graph exposes the session's graph builder
func (s *Session) Graph() *graph.Builder { return s.graph }

// Selection exposes the session's actor selection
func (s *Session) Selection() *selection.Selection { return s.selection }

// Context is cancelled when the session closes
func (s *Session) Context() context.Context { return s.ctx }

// Close cancels in-flight lookups and detaches all handlers
func (s *Session) Close() {
	s.cancel()
	for _, d := range s.detach {
		d()
	}
	s.detach = nil
}

// Start loads the starting actor at the canvas center and sends the first
// graph and the timeline
func (s *Session) Start(startingActor string) error {
	if startingActor == "" {
		startingActor = DefaultStartingActor
	}

	if movies, err := s.repo.AllMovies(s.ctx); err != nil {
		s.logger.Warnw("timeline unavailable", logger.FieldError, err)
	} else {
		h := charts.YearHistogram(movies)
		s.sendTimeline(&h)
	}

	actor, err := s.repo.ActorByName(s.ctx, startingActor)
	if err != nil {
		s.emitGraph()
		return errors.Wrapf(err, "load starting actor %q", startingActor)
	}
	s.graph.AddActor(*actor, graph.CanvasWidth/2, graph.CanvasHeight/2, "")
	s.graph.AddMissingEdges()
	s.logger.Infow("session started", logger.FieldActorID, actor.ID, "starting_actor", actor.Name)
	s.emitGraph()
	return nil
}

// Handle routes one client message. The returned error has already been
// reported to the client.
func (s *Session) Handle(msg ClientMessage) error {
	if err := s.route(msg); err != nil {
		s.fail(err)
	}
	return s.takePending()
}

func (s *Session) route(msg ClientMessage) error {
	switch msg.Type {
	case MsgSelect:
		return s.Select(msg.ActorID)
	case MsgSearch:
		return s.Suggest(msg.Name)
	case MsgPick:
		return s.Pick(msg.Name)
	case MsgRandom:
		return s.RandomActor()
	case MsgReset:
		s.Reset()
	case MsgSkeleton:
		s.hub.SkeletonToggled.Publish(msg.Shown)
	case MsgTimeRange:
		s.SetTimeRange(msg.MinYear, msg.MaxYear)
	case MsgDeselect:
		return s.RemoveFromSelection(msg.ActorID)
	case MsgColor:
		return s.SetColor(msg.ColorData, msg.ColorScheme)
	case MsgPing:
		s.send(ServerMessage{Type: MsgPong})
	default:
		return grapherr.Newf(grapherr.CategoryProtocol, "", "unknown message type %q", msg.Type).
			WithSubcategory(grapherr.SubcategoryProtocolUnknownType)
	}
	return nil
}

// Select handles a node click: the node joins the skeleton and the actor is
// selected, which expands it. Only actors already in the graph can be
// selected.
func (s *Session) Select(actorID string) error {
	if actorID == "" {
		return errors.NewInvalidRequestError("actor_id is required")
	}
	actor, ok := s.graph.Actor(actorID)
	if !ok {
		return errors.NewNotFoundError("actor %s is not in the graph", actorID)
	}
	s.graph.SelectNode(actor.ID)
	s.hub.ActorSelected.Publish(actor)
	return nil
}

// Suggest sends the sorted names of actors matching name. Names shorter
// than MinSearchLength produce no suggestions.
func (s *Session) Suggest(name string) error {
	name = strings.TrimSpace(name)
	names := []string{}
	if len(name) >= MinSearchLength {
		actors, err := s.repo.SearchActorsByName(s.ctx, name, s.searchLimit)
		if err != nil {
			return err
		}
		for _, a := range actors {
			names = append(names, a.Name)
		}
		sort.Strings(names)
	}
	s.send(ServerMessage{Type: MsgSuggestions, Names: names})
	return nil
}

// Pick handles a chosen suggestion: the actor is searched for and selected
func (s *Session) Pick(name string) error {
	actor, err := s.repo.ActorByName(s.ctx, name)
	if err != nil {
		return err
	}
	s.searchAndSelect(*actor)
	return nil
}

// RandomActor picks a random movie inside the time range and searches for
// and selects a random member of its cast
func (s *Session) RandomActor() error {
	yr := s.selection.TimeRange()
	movies, err := s.repo.RandomMovieInRange(s.ctx, yr)
	if err != nil {
		return err
	}
	if len(movies) == 0 || len(movies[0].Actors) == 0 {
		return errors.NewNotFoundError("no movie with a cast between %s", yr)
	}

	cast := movies[0].Actors
	s.rndMu.Lock()
	id := cast[s.rnd.Intn(len(cast))]
	s.rndMu.Unlock()

	actor, err := s.repo.ActorByID(s.ctx, id)
	if err != nil {
		return err
	}
	s.logger.Debugw("random actor", logger.FieldActorID, id, logger.FieldMovieID, movies[0].ID)
	s.searchAndSelect(*actor)
	return nil
}

func (s *Session) searchAndSelect(actor models.Actor) {
	s.hub.SearchForActor.Publish(actor)
	s.hub.ActorSelected.Publish(actor)
}

// Reset clears the graph and the selection
func (s *Session) Reset() {
	s.hub.Reset.Publish(struct{}{})
}

// SetTimeRange stores new time slider bounds. Reversed bounds are swapped.
func (s *Session) SetTimeRange(minYear, maxYear int) {
	if minYear > maxYear {
		minYear, maxYear = maxYear, minYear
	}
	s.hub.TimeRange.Publish(models.YearRange{MinYear: minYear, MaxYear: maxYear})
}

// RemoveFromSelection drops an actor from the selection
func (s *Session) RemoveFromSelection(actorID string) error {
	if !s.selection.Has(actorID) {
		return nil
	}
	actor, err := s.lookup(actorID)
	if err != nil {
		return err
	}
	s.selection.Remove(actor)
	return nil
}

// SetColor switches the node color scale. Empty values keep the current
// setting.
func (s *Session) SetColor(data, scheme string) error {
	scale := s.graph.ColorScale()
	if data != "" {
		d, err := charts.ParseColorData(data)
		if err != nil {
			return err
		}
		scale.Data = d
	}
	if scheme != "" {
		sc, err := charts.ParseColorScheme(scheme)
		if err != nil {
			return err
		}
		scale.Scheme = sc
	}
	s.graph.SetColorScale(scale)
	s.emitGraph()
	return nil
}

// SetExpandLimit applies a new expansion limit to future selections
func (s *Session) SetExpandLimit(n int) {
	s.graph.SetExpandLimit(n)
}

// Snapshot renders the current graph with selection highlights
func (s *Session) Snapshot() *graph.Graph {
	selected := make(map[string]string)
	for _, a := range s.selection.Actors() {
		selected[a.ID] = s.selection.Color(a.ID)
	}
	return s.graph.Snapshot(selected)
}

func (s *Session) onSearchForActor(actor models.Actor) {
	s.graph.AddOrSelect(actor)
	s.emitGraph()
}

func (s *Session) onSkeletonToggled(shown bool) {
	s.graph.SetSkeletonShown(shown)
	s.emitGraph()
}

func (s *Session) onSelectionChanged(c events.SelectionChange) {
	if c.Actor != nil && c.Movies != nil {
		if _, err := s.graph.Expand(s.ctx, *c.Actor, c.Movies, s.repo); err != nil {
			s.fail(grapherr.New(grapherr.CategoryGraph, err, "").
				WithSubcategory(grapherr.SubcategoryGraphExpand).
				WithContext(logger.FieldActorID, c.Actor.ID))
		}
	}
	s.emitGraph()
	s.sendTimeline(nil)
}

func (s *Session) emitGraph() {
	s.send(ServerMessage{Type: MsgGraph, SessionID: s.ID, Graph: s.Snapshot()})
}

func (s *Session) sendTimeline(h *charts.Histogram) {
	yr := s.selection.TimeRange()
	t := &Timeline{
		Histogram: h,
		Spans:     []charts.Span{},
		Shared:    []SharedMovies{},
		Range:     RangePayload{MinYear: yr.MinYear, MaxYear: yr.MaxYear},
	}
	actors := s.selection.Actors()
	for i, a := range actors {
		movies := s.selection.Movies(a.ID)
		if from, to, ok := charts.ActorSpan(movies); ok {
			t.Spans = append(t.Spans, charts.Span{ActorID: a.ID, Name: a.Name, Color: s.selection.Color(a.ID), From: from, To: to})
		}
		for _, b := range actors[i+1:] {
			if shared := s.repo.MoviesBetween(a.ID, b.ID, movies); len(shared) > 0 {
				t.Shared = append(t.Shared, newSharedMovies(a.ID, b.ID, shared))
			}
		}
	}
	s.send(ServerMessage{Type: MsgTimeline, Timeline: t})
}

// lookup prefers the node already in the graph over a repository call
func (s *Session) lookup(actorID string) (models.Actor, error) {
	if actorID == "" {
		return models.Actor{}, errors.NewInvalidRequestError("actor_id is required")
	}
	if a, ok := s.graph.Actor(actorID); ok {
		return a, nil
	}
	a, err := s.repo.ActorByID(s.ctx, actorID)
	if err != nil {
		return models.Actor{}, err
	}
	return *a, nil
}

// fail reports err to the client and remembers it for Handle
func (s *Session) fail(err error) {
	ge := grapherr.Classify(err, "")
	if ge.UserMessage == "" && (ge.IsCategory(grapherr.CategoryProtocol) || ge.IsSubcategory(grapherr.SubcategoryLookupNotFound)) {
		ge.UserMessage = ge.Error()
	}
	if s.pendingErr == nil {
		s.pendingErr = ge
	}
	s.logger.Warnw("session error", ge.ToLogFields()...)
	s.send(ErrorMessage(ge))
}

func (s *Session) takePending() error {
	err := s.pendingErr
	s.pendingErr = nil
	return err
}
