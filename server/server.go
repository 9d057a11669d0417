// Package server is the actorgraph proxy: the REST API over the actor/movie
// store, the /ws endpoint hosting one exploration session per client, and
// the /health and /metrics endpoints.
package server

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/actorgraph/am"
	"github.com/teranos/actorgraph/charts"
	"github.com/teranos/actorgraph/errors"
	"github.com/teranos/actorgraph/logger"
	"github.com/teranos/actorgraph/repository"
	"github.com/teranos/actorgraph/session"
	"github.com/teranos/actorgraph/store"
)

// Server serves the REST API and the exploration session websocket
type Server struct {
	store  store.Reader
	repo   session.Repository
	cfg    *am.Config
	scale  charts.ColorScale
	logger *zap.SugaredLogger

	configWatcher *am.ConfigWatcher

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex

	// live-reloadable settings
	expandLimit  atomic.Int32
	legacyErrors atomic.Bool

	maxClients int
	verbosity  int

	mux        *http.ServeMux
	handler    http.Handler
	httpServer *http.Server

	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	lifecycleMu sync.Mutex // orders client admission against shutdown
	clientDrops atomic.Int64
	state       atomic.Int32
	stopOnce    sync.Once
}

// Option configures a Server
type Option func(*Server)

// WithRepository sets the data access of exploration sessions. By default
// sessions read the server's own store through a caching repository.
func WithRepository(repo session.Repository) Option {
	return func(s *Server) {
		if repo != nil {
			s.repo = repo
		}
	}
}

// WithLogger overrides the component logger
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxClients caps concurrent websocket clients. The default is MaxClients.
func WithMaxClients(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxClients = n
		}
	}
}

// WithVerbosity sets the CLI verbosity that gates optional log output such
// as inbound websocket messages
func WithVerbosity(v int) Option {
	return func(s *Server) { s.verbosity = v }
}

// WithConfigWatcher applies explore.expand_limit and server.legacy_errors
// whenever the watcher reloads the config
func WithConfigWatcher(cw *am.ConfigWatcher) Option {
	return func(s *Server) { s.configWatcher = cw }
}

// New creates a server over st. cfg may be nil, in which case defaults apply.
func New(st store.Reader, cfg *am.Config, opts ...Option) (*Server, error) {
	if st == nil {
		return nil, errors.New("store cannot be nil")
	}
	if cfg == nil {
		cfg = &am.Config{}
	}

	scale := charts.DefaultColorScale()
	if cfg.Explore.ColorData != "" {
		data, err := charts.ParseColorData(cfg.Explore.ColorData)
		if err != nil {
			return nil, errors.Wrap(err, "explore.color_data")
		}
		scale.Data = data
	}
	if cfg.Explore.ColorScheme != "" {
		scheme, err := charts.ParseColorScheme(cfg.Explore.ColorScheme)
		if err != nil {
			return nil, errors.Wrap(err, "explore.color_scheme")
		}
		scale.Scheme = scheme
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		store:      st,
		cfg:        cfg,
		scale:      scale,
		logger:     logger.ComponentLogger("server"),
		clients:    make(map[*Client]bool),
		maxClients: MaxClients,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.repo == nil {
		s.repo = repository.New(st,
			repository.WithFetchConcurrency(cfg.GetFetchConcurrency()),
			repository.WithLogger(s.logger.Named("repository")))
	}

	s.expandLimit.Store(int32(cfg.GetExpandLimit()))
	s.legacyErrors.Store(cfg.Server.LegacyErrors)
	s.state.Store(int32(ServerStateRunning))

	if s.configWatcher != nil {
		s.configWatcher.OnReload(s.applyConfig)
	}

	s.setupHTTPRoutes()
	s.httpServer = &http.Server{
		Handler:      s.handler,
		ReadTimeout:  secondsOr(cfg.Server.ReadTimeoutSeconds, defaultReadTimeout),
		WriteTimeout: secondsOr(cfg.Server.WriteTimeoutSeconds, defaultWriteTimeout),
		IdleTimeout:  2 * time.Minute,
	}
	return s, nil
}

// Handler returns the server's routes, for embedding or httptest
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ClientCount returns the number of connected websocket clients
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// applyConfig is the config watcher callback
func (s *Server) applyConfig(cfg *am.Config) error {
	limit := cfg.GetExpandLimit()
	if old := int(s.expandLimit.Swap(int32(limit))); old != limit {
		s.logger.Infow("Expand limit changed", "old", old, "new", limit)
		s.mu.RLock()
		for client := range s.clients {
			client.session.SetExpandLimit(limit)
		}
		s.mu.RUnlock()
	}
	if old := s.legacyErrors.Swap(cfg.Server.LegacyErrors); old != cfg.Server.LegacyErrors {
		s.logger.Infow("Legacy error responses toggled", "enabled", cfg.Server.LegacyErrors)
	}
	return nil
}

// sessionOptions builds the options of a new client session from the
// current settings
func (s *Server) sessionOptions() []session.Option {
	return []session.Option{
		session.WithExpandLimit(int(s.expandLimit.Load())),
		session.WithMaxSelected(s.cfg.GetMaxSelected()),
		session.WithColorScale(s.scale),
		session.WithLogger(s.logger.Named("session")),
	}
}

// admit reserves the two pump goroutines of a new client. It refuses once
// shutdown has begun, so stop never waits on a group that is still growing.
func (s *Server) admit() bool {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()
	if s.getState() != ServerStateRunning {
		return false
	}
	s.wg.Add(2)
	return true
}

// handleClientRegister handles a new client connection
func (s *Server) handleClientRegister(client *Client) {
	s.mu.Lock()
	if len(s.clients) >= s.maxClients {
		s.mu.Unlock()
		s.logger.Warnw("Max clients reached, rejecting connection",
			logger.FieldClientID, client.id,
			"max_clients", s.maxClients,
		)
		// readPump exits and releases the client
		client.conn.Close()
		return
	}
	s.clients[client] = true
	total := len(s.clients)
	s.mu.Unlock()

	s.logger.Infow("Client connected",
		logger.FieldClientID, client.id,
		logger.FieldSessionID, client.session.ID,
		"total_clients", total,
	)
}

// handleClientUnregister handles a client disconnection
func (s *Server) handleClientUnregister(client *Client) {
	s.mu.Lock()
	if _, ok := s.clients[client]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.clients, client)
	total := len(s.clients)
	s.mu.Unlock()

	s.logger.Infow("Client disconnected",
		logger.FieldClientID, client.id,
		"total_clients", total,
	)
}

// removeSlowClient drops a client whose send queue is full. Closing the
// connection ends its read pump, which unregisters it.
func (s *Server) removeSlowClient(client *Client) {
	drops := s.clientDrops.Add(1)
	client.conn.Close()
	s.logger.Warnw("Client send channel full, removing client",
		logger.FieldClientID, client.id,
		"total_drops", drops,
	)
}

// Run starts the client registry loop. It returns when the server stops.
func (s *Server) Run() {
	for {
		select {
		case <-s.ctx.Done():
			s.logger.Debugw("Server hub stopping due to context cancellation")
			return
		case client := <-s.register:
			s.handleClientRegister(client)
		case client := <-s.unregister:
			s.handleClientUnregister(client)
		}
	}
}

func secondsOr(n int, fallback time.Duration) time.Duration {
	if n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Second
}
