package server

import "time"

const (
	// MaxClients is the maximum number of concurrent WebSocket clients
	MaxClients = 100
	// MaxClientMessageQueueSize is the size of per-client message queues
	MaxClientMessageQueueSize = 256
	// ShutdownTimeout is how long Stop waits for the HTTP server and client
	// goroutines before giving up
	ShutdownTimeout = 10 * time.Second
)

// Fallbacks for zero values in a hand-built config
const (
	defaultMessagesPerSecond = 20
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
)

// ServerState represents the server lifecycle state
type ServerState int32

const (
	ServerStateRunning  ServerState = iota // Normal operation
	ServerStateDraining                    // Graceful shutdown in progress
	ServerStateStopped                     // Shutdown complete
)

func (s ServerState) String() string {
	switch s {
	case ServerStateRunning:
		return "running"
	case ServerStateDraining:
		return "draining"
	case ServerStateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	State   string `json:"state"`
	Clients int    `json:"clients"`

	CachedActors int `json:"cached_actors"`
}

// actorCache is implemented by repositories that cache actors by id
type actorCache interface {
	CacheSize() int
}
