// Package graph grows the co-starring network of an exploration session.
// Nodes are actors, links are shared movies; selected actors form a
// skeleton path through the network.
package graph

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/actorgraph/charts"
	"github.com/teranos/actorgraph/internal/util"
	"github.com/teranos/actorgraph/logger"
	"github.com/teranos/actorgraph/models"
)

// Fetcher is what Expand needs from the repository
type Fetcher interface {
	MovieCounts(ctx context.Context, ids []string) ([]models.MovieCount, error)
	ActorsByID(ctx context.Context, ids []string) []models.Actor
}

type node struct {
	actor          models.Actor
	x, y           *float64
	fx, fy         *float64
	skeleton       bool
	parentID       string
	revenueAverage float64
	voteAverage    float64
}

type link struct {
	source, target string
	movieIDs       []string
	movieTitles    []string
	width          int
	skeleton       bool
}

// pairKey identifies a co-starring link regardless of direction
type pairKey struct{ a, b string }

func unordered(a, b string) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{a, b}
}

// Builder holds the graph of one session. It is safe for concurrent use;
// Expand releases the lock while it waits on the repository.
type Builder struct {
	logger *zap.SugaredLogger

	mu            sync.Mutex
	nodes         map[string]*node
	nodeOrder     []string
	links         map[pairKey]*link
	linkOrder     []pairKey
	skeleton      []string
	skeletonLinks map[[2]string]*link
	skeletonOrder [][2]string
	movies        map[string]models.Movie
	movieOrder    []string

	scale         charts.ColorScale
	skeletonShown bool
	expandLimit   int
	rnd           *rand.Rand
}

// Option configures a Builder
type Option func(*Builder)

// WithExpandLimit sets how many collaborators Expand adds at most
func WithExpandLimit(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.expandLimit = n
		}
	}
}

// WithColorScale sets the node color scale
func WithColorScale(s charts.ColorScale) Option {
	return func(b *Builder) { b.scale = s }
}

// WithRand sets the source of placement jitter
func WithRand(r *rand.Rand) Option {
	return func(b *Builder) {
		if r != nil {
			b.rnd = r
		}
	}
}

// WithLogger overrides the component logger
func WithLogger(l *zap.SugaredLogger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBuilder creates an empty graph
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		logger:      logger.ComponentLogger("graph.builder"),
		scale:       charts.DefaultColorScale(),
		expandLimit: DefaultExpandLimit,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	b.resetLocked()
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AddActor adds actor as a node unless it is already present. With a
// non-zero anchor the node is placed within a few units of it; (0,0)
// leaves it for the client simulation to place. It reports whether a node
// was added.
func (b *Builder) AddActor(actor models.Actor, x, y float64, parentID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addActorLocked(actor, x, y, parentID)
}

func (b *Builder) addActorLocked(actor models.Actor, x, y float64, parentID string) bool {
	if _, ok := b.nodes[actor.ID]; ok {
		return false
	}

	count := float64(actor.MovieCount())
	n := &node{
		actor:          actor,
		parentID:       parentID,
		revenueAverage: util.SafeDiv(actor.TotalRevenue, count),
		voteAverage:    util.SafeDiv(actor.TotalRating, count),
	}
	if x != 0 || y != 0 {
		n.x = util.Ptr(x + b.jitter())
		n.y = util.Ptr(y + b.jitter())
	}
	b.nodes[actor.ID] = n
	b.nodeOrder = append(b.nodeOrder, actor.ID)
	return true
}

func (b *Builder) jitter() float64 {
	return b.rnd.Float64()*2*placementJitter - placementJitter
}

// AddMovies records movies not seen before
func (b *Builder) AddMovies(movies []models.Movie) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addMoviesLocked(movies)
}

func (b *Builder) addMoviesLocked(movies []models.Movie) {
	for _, m := range movies {
		if _, ok := b.movies[m.ID]; ok {
			continue
		}
		b.movies[m.ID] = m
		b.movieOrder = append(b.movieOrder, m.ID)
	}
}

// AddMissingEdges links every pair of graph actors that share a known
// movie, then chains consecutive skeleton nodes.
func (b *Builder) AddMissingEdges() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addMissingEdgesLocked()
}

func (b *Builder) addMissingEdgesLocked() {
	for _, movieID := range b.movieOrder {
		m := b.movies[movieID]
		for i := 0; i < len(m.Actors); i++ {
			for j := i + 1; j < len(m.Actors); j++ {
				a1, a2 := m.Actors[i], m.Actors[j]
				if a1 == a2 {
					continue
				}
				key := unordered(a1, a2)
				if l, ok := b.links[key]; ok {
					if !containsString(l.movieIDs, m.ID) {
						l.movieIDs = append(l.movieIDs, m.ID)
						l.movieTitles = append(l.movieTitles, m.Title)
						l.width++
					}
					continue
				}
				if b.nodes[a1] == nil || b.nodes[a2] == nil {
					continue
				}
				b.links[key] = &link{
					source:      a1,
					target:      a2,
					movieIDs:    []string{m.ID},
					movieTitles: []string{m.Title},
					width:       1,
				}
				b.linkOrder = append(b.linkOrder, key)
			}
		}
	}

	for i := 0; i+1 < len(b.skeleton); i++ {
		key := [2]string{b.skeleton[i], b.skeleton[i+1]}
		if _, ok := b.skeletonLinks[key]; ok {
			continue
		}
		b.skeletonLinks[key] = &link{
			source:      key[0],
			target:      key[1],
			movieIDs:    []string{},
			movieTitles: []string{},
			width:       SkeletonLinkWidth,
			skeleton:    true,
		}
		b.skeletonOrder = append(b.skeletonOrder, key)
	}
}

// SelectNode marks the node as a skeleton node and pins it where it is.
// Every other node is unpinned. Unknown ids only unpin.
func (b *Builder) SelectNode(actorID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selectNodeLocked(actorID)
}

func (b *Builder) selectNodeLocked(actorID string) {
	for id, n := range b.nodes {
		if id != actorID {
			n.fx, n.fy = nil, nil
			continue
		}
		n.skeleton = true
		n.fx, n.fy = copyPtr(n.x), copyPtr(n.y)
		if !containsString(b.skeleton, id) {
			b.skeleton = append(b.skeleton, id)
		}
	}
}

// AddOrSelect adds actor at the canvas center if missing and selects it
func (b *Builder) AddOrSelect(actor models.Actor) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addActorLocked(actor, CanvasWidth/2, CanvasHeight/2, "")
	b.selectNodeLocked(actor.ID)
	b.addMissingEdgesLocked()
}

// MissingCollaborators counts how often each cast member of movies appears,
// leaving out actors already in the graph. It returns nil when nobody is
// missing.
func (b *Builder) MissingCollaborators(movies []models.Movie) map[string]int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.missingCollaboratorsLocked(movies)
}

func (b *Builder) missingCollaboratorsLocked(movies []models.Movie) map[string]int {
	var counts map[string]int
	for _, m := range movies {
		for _, id := range m.Actors {
			if _, ok := b.nodes[id]; ok {
				continue
			}
			if counts == nil {
				counts = make(map[string]int)
			}
			counts[id]++
		}
	}
	return counts
}

// Collaborator is a candidate for expansion
type Collaborator struct {
	ActorID    string
	Count      int // shared movies with the expanded actor
	MovieCount int // size of the candidate's filmography
}

// RankCollaborators orders candidates by shared movies, then filmography
// size, then id, and keeps the first limit. Ids missing from movieCounts
// rank with a filmography of 0.
func RankCollaborators(counts map[string]int, movieCounts []models.MovieCount, limit int) []Collaborator {
	sizes := make(map[string]int, len(movieCounts))
	for _, mc := range movieCounts {
		sizes[mc.ID] = mc.Count
	}

	ranked := make([]Collaborator, 0, len(counts))
	for id, c := range counts {
		ranked = append(ranked, Collaborator{ActorID: id, Count: c, MovieCount: sizes[id]})
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.MovieCount != b.MovieCount {
			return a.MovieCount > b.MovieCount
		}
		return a.ActorID < b.ActorID
	})
	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Expand records movies of actor and adds its strongest missing
// collaborators next to it, at most the expand limit. It returns the
// number of actors added.
func (b *Builder) Expand(ctx context.Context, actor models.Actor, movies []models.Movie, fetch Fetcher) (int, error) {
	b.mu.Lock()
	b.addMoviesLocked(movies)
	missing := b.missingCollaboratorsLocked(movies)
	delete(missing, actor.ID)
	if len(missing) == 0 {
		missing = nil
	}
	limit := b.expandLimit
	var anchorX, anchorY float64
	if n, ok := b.nodes[actor.ID]; ok && n.x != nil {
		anchorX, anchorY = *n.x, *n.y
	}
	if missing == nil {
		b.addMissingEdgesLocked()
		b.mu.Unlock()
		b.logger.Debugw("no more actors to add", logger.FieldActorID, actor.ID)
		return 0, nil
	}
	b.mu.Unlock()

	ids := make([]string, 0, len(missing))
	for id := range missing {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	start := time.Now()
	movieCounts, err := fetch.MovieCounts(ctx, ids)
	if err != nil {
		b.AddMissingEdges()
		return 0, err
	}

	top := RankCollaborators(missing, movieCounts, limit)
	topIDs := make([]string, len(top))
	for i, c := range top {
		topIDs[i] = c.ActorID
	}
	actors := fetch.ActorsByID(ctx, topIDs)

	b.mu.Lock()
	added := 0
	for _, a := range actors {
		if b.addActorLocked(a, anchorX, anchorY, actor.ID) {
			added++
		}
	}
	b.addMissingEdgesLocked()
	b.mu.Unlock()

	b.logger.Debugw("expanded node",
		logger.FieldActorID, actor.ID,
		"candidates", len(missing),
		logger.FieldCount, added,
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return added, nil
}

// IsSideEdge reports whether neither endpoint was added as the other's
// collaborator
func (b *Builder) IsSideEdge(sourceID, targetID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.isSideEdgeLocked(sourceID, targetID)
}

func (b *Builder) isSideEdgeLocked(sourceID, targetID string) bool {
	s, t := b.nodes[sourceID], b.nodes[targetID]
	if s == nil || t == nil {
		return true
	}
	return s.parentID != targetID && t.parentID != sourceID
}

// Reset empties the graph. Color scale, skeleton visibility and expand
// limit are kept.
func (b *Builder) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetLocked()
}

func (b *Builder) resetLocked() {
	b.nodes = make(map[string]*node)
	b.nodeOrder = nil
	b.links = make(map[pairKey]*link)
	b.linkOrder = nil
	b.skeleton = nil
	b.skeletonLinks = make(map[[2]string]*link)
	b.skeletonOrder = nil
	b.movies = make(map[string]models.Movie)
	b.movieOrder = nil
}

// Has reports whether actorID is a node
func (b *Builder) Has(actorID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.nodes[actorID]
	return ok
}

// Len returns the number of nodes
func (b *Builder) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.nodes)
}

// Actor returns the actor behind a node
func (b *Builder) Actor(actorID string) (models.Actor, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, ok := b.nodes[actorID]
	if !ok {
		return models.Actor{}, false
	}
	return n.actor, true
}

// Movies returns the known movies in the order they were added
func (b *Builder) Movies() []models.Movie {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Movie, 0, len(b.movieOrder))
	for _, id := range b.movieOrder {
		out = append(out, b.movies[id])
	}
	return out
}

// SkeletonPath returns the selected actor ids in selection order
func (b *Builder) SkeletonPath() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.skeleton...)
}

// SetColorScale changes how nodes are colored
func (b *Builder) SetColorScale(s charts.ColorScale) {
	b.mu.Lock()
	b.scale = s
	b.mu.Unlock()
}

// ColorScale returns the active color scale
func (b *Builder) ColorScale() charts.ColorScale {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.scale
}

// SetSkeletonShown toggles skeleton link visibility
func (b *Builder) SetSkeletonShown(shown bool) {
	b.mu.Lock()
	b.skeletonShown = shown
	b.mu.Unlock()
}

// SkeletonShown reports whether skeleton links are visible
func (b *Builder) SkeletonShown() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.skeletonShown
}

// SetExpandLimit changes the expansion limit; non-positive values are
// ignored
func (b *Builder) SetExpandLimit(n int) {
	if n <= 0 {
		return
	}
	b.mu.Lock()
	b.expandLimit = n
	b.mu.Unlock()
}

// ExpandLimit returns the expansion limit
func (b *Builder) ExpandLimit() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.expandLimit
}

// Snapshot renders the graph for clients. selected maps selected actor ids
// to their highlight color and may be nil.
func (b *Builder) Snapshot(selected map[string]string) *Graph {
	b.mu.Lock()
	defer b.mu.Unlock()

	g := &Graph{
		Nodes: make([]Node, 0, len(b.nodeOrder)),
		Links: make([]Link, 0, len(b.linkOrder)+len(b.skeletonOrder)),
		Meta: Meta{
			GeneratedAt: time.Now(),
			Config: map[string]string{
				"color_data":     string(b.scale.Data),
				"color_scheme":   string(b.scale.Scheme),
				"skeleton_shown": strconv.FormatBool(b.skeletonShown),
				"expand_limit":   strconv.Itoa(b.expandLimit),
			},
			Selection: []SelectedActor{},
			Legend:    b.scale.Legend(),
		},
	}

	for _, id := range b.nodeOrder {
		n := b.nodes[id]
		radius := nodeRadius(n.actor.MovieCount())
		collide := float64(CollisionRadius)
		if n.skeleton {
			collide *= 3
		}
		color, isSelected := selected[id]
		g.Nodes = append(g.Nodes, Node{
			ID:             id,
			Type:           NodeActor,
			Label:          n.actor.Name,
			MovieIDs:       nonNil(n.actor.Movies),
			MovieCount:     n.actor.MovieCount(),
			Skeleton:       n.skeleton,
			ParentID:       n.parentID,
			RevenueTotal:   n.actor.TotalRevenue,
			RevenueAverage: n.revenueAverage,
			VoteAverage:    n.voteAverage,
			X:              copyPtr(n.x),
			Y:              copyPtr(n.y),
			Fx:             copyPtr(n.fx),
			Fy:             copyPtr(n.fy),
			Radius:         radius,
			Collide:        radius + collide,
			Color:          b.scale.NodeColor(n.actor.TotalRevenue, n.revenueAverage, n.voteAverage),
			Selected:       isSelected,
			SelectionColor: color,
		})
		if isSelected {
			g.Meta.Selection = append(g.Meta.Selection, SelectedActor{ID: id, Name: n.actor.Name, Color: color})
		}
	}

	costar, side := 0, 0
	for _, key := range b.linkOrder {
		l := b.links[key]
		isSide := b.isSideEdgeLocked(l.source, l.target)
		strength, opacity := EdgeStrength, 1.0
		if isSide {
			strength, opacity = SideEdgeStrength, SideEdgeOpacity
			side++
		}
		g.Links = append(g.Links, Link{
			Source:      l.source,
			Target:      l.target,
			Type:        LinkCostar,
			Weight:      l.width,
			MovieIDs:    append([]string(nil), l.movieIDs...),
			MovieTitles: append([]string(nil), l.movieTitles...),
			Side:        isSide,
			Strength:    strength,
			Opacity:     opacity,
		})
		costar++
	}
	for _, key := range b.skeletonOrder {
		l := b.skeletonLinks[key]
		g.Links = append(g.Links, Link{
			Source:      l.source,
			Target:      l.target,
			Type:        LinkSkeleton,
			Weight:      l.width,
			MovieIDs:    []string{},
			MovieTitles: []string{},
			Strength:    0,
			Opacity:     1,
			Hidden:      !b.skeletonShown,
		})
	}

	g.Meta.Stats = Stats{
		TotalNodes:    len(g.Nodes),
		TotalEdges:    costar,
		SkeletonNodes: len(b.skeleton),
		Movies:        len(b.movieOrder),
	}
	g.Meta.RelationshipTypes = []RelationshipTypeInfo{
		{Type: LinkCostar, Label: "Co-starred", Color: costarColor, LinkStrength: util.Ptr(EdgeStrength), Opacity: util.Ptr(1.0), Count: costar - side},
		{Type: LinkCostar + "_side", Label: "Co-starred (side)", Color: costarColor, LinkStrength: util.Ptr(SideEdgeStrength), Opacity: util.Ptr(SideEdgeOpacity), Count: side},
		{Type: LinkSkeleton, Label: "Selection path", Color: skeletonColor, LinkStrength: util.Ptr(0.0), Count: len(b.skeletonOrder)},
	}
	return g
}

// nodeRadius grows with the square root of the filmography
func nodeRadius(movieCount int) float64 {
	return math.Max(MinNodeRadius, 5*math.Sqrt(float64(movieCount)))
}

func copyPtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	return util.Ptr(*p)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return append([]string(nil), s...)
}
