package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	grapherr "github.com/teranos/actorgraph/graph/error"
	"github.com/teranos/actorgraph/session"
	"github.com/teranos/actorgraph/version"
)

// HandleWebSocket upgrades the connection and runs one exploration session
// on it
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.getState() != ServerStateRunning {
		http.Error(w, "server is shutting down", http.StatusServiceUnavailable)
		return
	}

	upgrader := s.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		graphErr := grapherr.New(
			grapherr.CategoryWebSocket,
			err,
			"Failed to upgrade WebSocket connection",
		).WithSubcategory(grapherr.SubcategoryWSUpgrade)

		s.logger.Errorw("WebSocket upgrade failed",
			graphErr.ToLogFields()...,
		)
		return
	}

	perSecond := s.cfg.Server.WSMessagesPerSecond
	if perSecond <= 0 {
		perSecond = defaultMessagesPerSecond
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}

	client := &Client{
		server:  s,
		conn:    conn,
		send:    make(chan session.ServerMessage, MaxClientMessageQueueSize),
		id:      fmt.Sprintf("%s_%d", r.RemoteAddr, time.Now().UnixNano()),
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
	if !s.admit() {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server is shutting down"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}
	client.session = session.New(s.ctx, s.repo, client.enqueue, s.sessionOptions()...)

	select {
	case s.register <- client:
	case <-s.ctx.Done():
		client.session.Close()
		conn.Close()
		s.wg.Add(-2)
		return
	}

	go func() {
		defer s.wg.Done()
		client.writePump()
	}()
	go func() {
		defer s.wg.Done()
		client.readPump(s.cfg.GetStartingActor())
	}()
}

// HandleHealth serves GET /health
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	info := version.Get()
	status := "ok"
	code := http.StatusOK
	state := s.getState()
	if state != ServerStateRunning {
		status = "unavailable"
		code = http.StatusServiceUnavailable
	}
	resp := HealthResponse{
		Status:  status,
		Version: info.Version,
		Commit:  info.Short(),
		State:   state.String(),
		Clients: s.ClientCount(),
	}
	if c, ok := s.repo.(actorCache); ok {
		resp.CachedActors = c.CacheSize()
	}
	writeJSON(w, code, resp)
}
