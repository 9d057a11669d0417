package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/teranos/actorgraph/errors"
	"github.com/teranos/actorgraph/logger"
)

// getState returns the current server state
func (s *Server) getState() ServerState {
	return ServerState(s.state.Load())
}

// State reports the lifecycle state
func (s *Server) State() ServerState {
	return s.getState()
}

// setState atomically updates the server state
func (s *Server) setState(newState ServerState) {
	s.state.Store(int32(newState))
	s.logger.Infow("Server state changed", "new_state", newState.String())
}

// Start listens on server.port and serves until ctx is cancelled or Stop is
// called. It returns nil after a clean shutdown.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.GetServerPort())
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", addr)
	}
	return s.Serve(ctx, listener)
}

// Serve is Start on an existing listener
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Run()
	}()

	if s.configWatcher != nil {
		s.configWatcher.Start()
		s.logger.Infow("Config watcher started")
	}

	// Stop when the caller's context ends
	go func() {
		select {
		case <-ctx.Done():
			if err := s.Stop(); err != nil {
				s.logger.Warnw("Shutdown failed", logger.FieldError, err)
			}
		case <-s.ctx.Done():
		}
	}()

	s.logger.Infow("HTTP server listening", logger.FieldAddress, listener.Addr().String())
	if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "http server failed")
	}
	return nil
}

// Stop gracefully shuts down the server: websocket clients are closed,
// sessions cancelled, and the HTTP server drained within ShutdownTimeout.
// Calling Stop more than once is a no-op.
func (s *Server) Stop() error {
	var shutdownErr error
	s.stopOnce.Do(func() {
		shutdownErr = s.stop()
	})
	return shutdownErr
}

func (s *Server) stop() error {
	s.logger.Infow("Initiating server shutdown")
	s.lifecycleMu.Lock()
	s.setState(ServerStateDraining)
	s.lifecycleMu.Unlock()

	// Close all client connections BEFORE cancelling context so the read
	// pumps exit through their normal path
	s.mu.Lock()
	clientsToClose := make([]*Client, 0, len(s.clients))
	for client := range s.clients {
		clientsToClose = append(clientsToClose, client)
		delete(s.clients, client)
	}
	s.mu.Unlock()

	if len(clientsToClose) > 0 {
		s.logger.Infow("Closing client connections", logger.FieldCount, len(clientsToClose))
		for _, client := range clientsToClose {
			client.conn.Close()
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	err := s.httpServer.Shutdown(shutdownCtx)
	if err != nil {
		err = errors.Wrap(err, "http server shutdown")
	}

	// Cancel context to signal sessions and pumps to stop
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Infow("All goroutines stopped cleanly")
	case <-time.After(ShutdownTimeout):
		s.logger.Warnw("Goroutine shutdown timed out, forcing exit",
			"timeout", ShutdownTimeout,
		)
	}

	if s.configWatcher != nil {
		if werr := s.configWatcher.Stop(); werr != nil {
			s.logger.Warnw("Failed to stop config watcher", logger.FieldError, werr)
		} else {
			s.logger.Infow("Config watcher stopped")
		}
	}

	s.setState(ServerStateStopped)
	s.logger.Infow("Server shutdown complete",
		"client_drops", s.clientDrops.Load(),
	)
	return err
}
