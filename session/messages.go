package session

import (
	"sort"

	"github.com/teranos/actorgraph/charts"
	"github.com/teranos/actorgraph/graph"
	grapherr "github.com/teranos/actorgraph/graph/error"
	"github.com/teranos/actorgraph/models"
)

// Client message types
const (
	MsgSelect    = "select"
	MsgSearch    = "search"
	MsgPick      = "pick"
	MsgRandom    = "random"
	MsgReset     = "reset"
	MsgSkeleton  = "skeleton"
	MsgTimeRange = "time_range"
	MsgDeselect  = "deselect"
	MsgColor     = "color"
	MsgPing      = "ping"
)

// Server message types
const (
	MsgGraph       = "graph"
	MsgSuggestions = "suggestions"
	MsgTimeline    = "timeline"
	MsgError       = "error"
	MsgPong        = "pong"
)

// ClientMessage is one JSON message from a websocket client
type ClientMessage struct {
	Type        string `json:"type"`         // one of the Msg* client types
	ActorID     string `json:"actor_id"`     // select, deselect
	Name        string `json:"name"`         // search, pick
	Shown       bool   `json:"shown"`        // skeleton
	MinYear     int    `json:"min_year"`     // time_range
	MaxYear     int    `json:"max_year"`     // time_range
	ColorData   string `json:"color_data"`   // color
	ColorScheme string `json:"color_scheme"` // color
}

// ServerMessage is one JSON message to a websocket client. Only the field
// matching Type is set.
type ServerMessage struct {
	Type      string        `json:"type"`
	SessionID string        `json:"session_id,omitempty"`
	Graph     *graph.Graph  `json:"graph,omitempty"`
	Names     []string      `json:"names,omitempty"`
	Timeline  *Timeline     `json:"timeline,omitempty"`
	Error     *ErrorPayload `json:"error,omitempty"`
}

// Timeline feeds the time slider: the movie histogram (sent once), the
// year spans of the selected actors and the movies each selected pair made
// together.
type Timeline struct {
	Histogram *charts.Histogram `json:"histogram,omitempty"`
	Spans     []charts.Span     `json:"spans"`
	Shared    []SharedMovies    `json:"shared"`
	Range     RangePayload      `json:"range"`
}

// SharedMovies lists the movies two selected actors appear in together,
// oldest first
type SharedMovies struct {
	ActorA string   `json:"actor_a"`
	ActorB string   `json:"actor_b"`
	Titles []string `json:"titles"`
	Years  []int    `json:"years"`
}

func newSharedMovies(actorA, actorB string, movies []models.Movie) SharedMovies {
	sorted := append([]models.Movie(nil), movies...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Year < sorted[j].Year })
	sm := SharedMovies{ActorA: actorA, ActorB: actorB}
	for _, m := range sorted {
		sm.Titles = append(sm.Titles, m.Title)
		sm.Years = append(sm.Years, m.Year)
	}
	return sm
}

// RangePayload is the current time slider selection
type RangePayload struct {
	MinYear int `json:"min_year"`
	MaxYear int `json:"max_year"`
}

// ErrorPayload is the client-facing part of a GraphError
type ErrorPayload struct {
	Message     string `json:"message"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory,omitempty"`
}

// ErrorMessage converts err into an error message for the client
func ErrorMessage(err *grapherr.GraphError) ServerMessage {
	return ServerMessage{
		Type: MsgError,
		Error: &ErrorPayload{
			Message:     err.ToUIMessage(),
			Category:    err.Category.String(),
			Subcategory: err.Subcategory,
		},
	}
}
