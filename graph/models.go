package graph

import (
	"sort"
	"time"

	"github.com/teranos/actorgraph/charts"
)

// Graph is the force-graph payload sent to clients
type Graph struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
	Meta  Meta   `json:"meta"`
}

// Node is one actor in the graph. X and Y are nil until the actor was
// placed next to an anchor; Fx and Fy are set while the node is pinned.
type Node struct {
	ID             string   `json:"id"`
	Type           string   `json:"type"`
	Label          string   `json:"label"`
	MovieIDs       []string `json:"movie_ids"`
	MovieCount     int      `json:"movie_count"`
	Skeleton       bool     `json:"skeleton"`
	ParentID       string   `json:"parent_id,omitempty"`
	RevenueTotal   float64  `json:"revenue_total"`
	RevenueAverage float64  `json:"revenue_average"`
	VoteAverage    float64  `json:"vote_average"`
	X              *float64 `json:"x,omitempty"`
	Y              *float64 `json:"y,omitempty"`
	Fx             *float64 `json:"fx,omitempty"`
	Fy             *float64 `json:"fy,omitempty"`
	Radius         float64  `json:"radius"`
	Collide        float64  `json:"collide"`
	Color          string   `json:"color"`
	Selected       bool     `json:"selected,omitempty"`
	SelectionColor string   `json:"selection_color,omitempty"`
}

// Link connects two actors. Co-starring links carry the shared movies and
// Weight counts them; skeleton links trace the order actors were selected.
type Link struct {
	Source      string   `json:"source"`
	Target      string   `json:"target"`
	Type        string   `json:"type"`
	Weight      int      `json:"value"` // D3 uses "value"
	MovieIDs    []string `json:"movie_ids"`
	MovieTitles []string `json:"movie_titles"`
	Side        bool     `json:"side,omitempty"`
	Strength    float64  `json:"strength"`
	Opacity     float64  `json:"opacity"`
	Hidden      bool     `json:"hidden,omitempty"`
}

// Meta contains metadata about the graph
type Meta struct {
	GeneratedAt       time.Time              `json:"generated_at"`
	Stats             Stats                  `json:"stats"`
	Config            map[string]string      `json:"config"`
	Selection         []SelectedActor        `json:"selection"`
	Legend            []charts.LegendStep    `json:"legend,omitempty"`
	RelationshipTypes []RelationshipTypeInfo `json:"relationship_types"`
}

// SelectedActor is one entry of the comparison selection
type SelectedActor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// RelationshipTypeInfo describes a link type with its physics
type RelationshipTypeInfo struct {
	Type         string   `json:"type"`
	Label        string   `json:"label"`
	Color        string   `json:"color,omitempty"`
	LinkStrength *float64 `json:"link_strength,omitempty"`
	Opacity      *float64 `json:"opacity,omitempty"`
	Count        int      `json:"count,omitempty"`
}

// Stats provides graph statistics
type Stats struct {
	TotalNodes    int `json:"total_nodes"`
	TotalEdges    int `json:"total_edges"`
	SkeletonNodes int `json:"skeleton_nodes"`
	Movies        int `json:"movies"`
}

// Heaviest returns up to n co-starring links ordered by weight, heaviest
// first. Ties keep graph order.
func (g *Graph) Heaviest(n int) []Link {
	var costar []Link
	for _, l := range g.Links {
		if l.Type == LinkCostar {
			costar = append(costar, l)
		}
	}
	sort.SliceStable(costar, func(i, j int) bool { return costar[i].Weight > costar[j].Weight })
	if n >= 0 && len(costar) > n {
		costar = costar[:n]
	}
	return costar
}

// Node returns the node with the given id
func (g *Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}
