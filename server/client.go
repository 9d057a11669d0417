package server

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	grapherr "github.com/teranos/actorgraph/graph/error"
	"github.com/teranos/actorgraph/logger"
	"github.com/teranos/actorgraph/session"
)

// WebSocket timeout constants following Gorilla best practices
// See: https://github.com/gorilla/websocket/blob/master/examples/chat/client.go
const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Client messages are small commands
	maxMessageSize = 64 * 1024
)

// Client is one websocket connection and the exploration session it drives.
// Only the read pump sends on the send channel, and only it closes it.
type Client struct {
	server    *Server
	conn      *websocket.Conn
	send      chan session.ServerMessage
	id        string
	session   *session.Session
	limiter   *rate.Limiter
	closeOnce sync.Once
	dropped   atomic.Bool
}

// enqueue is the session's Sink. A full queue drops the client.
func (c *Client) enqueue(msg session.ServerMessage) {
	if c.dropped.Load() {
		return
	}
	select {
	case c.send <- msg:
	default:
		if c.dropped.CompareAndSwap(false, true) {
			graphErr := grapherr.New(grapherr.CategoryWebSocket, nil, "Client cannot keep up").
				WithSubcategory(grapherr.SubcategoryWSSlowClient)
			c.server.logger.Debugw("Dropping message for slow client",
				append(graphErr.ToLogFields(), logger.FieldClientID, c.id, "message_type", msg.Type)...)
			c.server.removeSlowClient(c)
		}
	}
}

// close closes the send channel so the write pump sends a close frame
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// readPump starts the session and feeds it client messages until the
// connection ends
func (c *Client) readPump(startingActor string) {
	defer func() {
		c.session.Close()
		select {
		case c.server.unregister <- c:
		case <-c.server.ctx.Done():
		}
		c.close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	c.server.logger.Debugw("Read pump started", logger.FieldClientID, c.id)

	if err := c.session.Start(startingActor); err != nil {
		c.server.logger.Warnw("Session start failed",
			logger.FieldClientID, c.id,
			logger.FieldError, err,
		)
		c.enqueue(session.ErrorMessage(grapherr.Classify(err, "Could not load the starting actor")))
	}

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.handleReadError(err)
			return
		}

		if !c.limiter.Allow() {
			graphErr := grapherr.New(grapherr.CategoryRateLimit, nil, "Too many messages, slow down")
			c.server.logger.Debugw("Client rate limited", logger.FieldClientID, c.id)
			c.enqueue(session.ErrorMessage(graphErr))
			continue
		}

		var msg session.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			graphErr := grapherr.New(grapherr.CategoryProtocol, err, "Message is not valid JSON").
				WithSubcategory(grapherr.SubcategoryProtocolInvalidJSON)
			c.server.logger.Warnw("JSON unmarshal error",
				append(graphErr.ToLogFields(), logger.FieldClientID, c.id)...)
			c.enqueue(session.ErrorMessage(graphErr))
			continue
		}

		if logger.ShouldOutput(c.server.verbosity, logger.OutputWSMessages) {
			c.server.logger.Debugw("Client message",
				logger.FieldClientID, c.id,
				"category", logger.CategoryName(logger.OutputWSMessages),
				"message_type", msg.Type,
				logger.FieldActorID, msg.ActorID,
			)
		}

		if err := c.session.Handle(msg); err != nil {
			c.server.logger.Debugw("Client message failed",
				logger.FieldClientID, c.id,
				"message_type", msg.Type,
				logger.FieldError, err,
			)
		}
	}
}

// handleReadError logs unexpected WebSocket read errors.
// Expected closure codes (going away, abnormal, no status) are silently ignored.
func (c *Client) handleReadError(err error) {
	if websocket.IsUnexpectedCloseError(err,
		websocket.CloseGoingAway,
		websocket.CloseNormalClosure,
		websocket.CloseAbnormalClosure,
		websocket.CloseNoStatusReceived,
	) {
		graphErr := grapherr.New(
			grapherr.CategoryWebSocket,
			err,
			"WebSocket connection closed unexpectedly",
		).WithSubcategory(grapherr.SubcategoryWSRead)

		c.server.logger.Warnw("WebSocket read error",
			append(graphErr.ToLogFields(), logger.FieldClientID, c.id)...,
		)
	}
}

// writePump writes session messages to the connection and keeps it alive
// with pings
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	c.server.logger.Debugw("Write pump started", logger.FieldClientID, c.id)

	for {
		select {
		case <-c.server.ctx.Done():
			c.server.logger.Debugw("Write pump stopping due to server shutdown", logger.FieldClientID, c.id)
			return
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(msg); err != nil {
				graphErr := grapherr.New(
					grapherr.CategoryWebSocket,
					err,
					"Failed to send message to client",
				).WithSubcategory(grapherr.SubcategoryWSWrite)

				c.server.logger.Warnw("Message write error",
					append(graphErr.ToLogFields(), logger.FieldClientID, c.id)...,
				)
				return
			}

			if msg.Graph != nil {
				c.server.logger.Debugw("Sent graph to client",
					logger.FieldClientID, c.id,
					logger.FieldNodes, len(msg.Graph.Nodes),
					logger.FieldLinks, len(msg.Graph.Links),
				)
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
