// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDir Contributors

package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/samber/oops"

	"github.com/authdir/authdir/internal/auth"
)

// TransportTCP labels connections accepted by Server.
const TransportTCP = "tcp"

// ConnectionObserver is notified as connections come and go.
// observability.Metrics implements it.
type ConnectionObserver interface {
	ConnectionOpened(transport string)
	ConnectionClosed()
}

type nopObserver struct{}

func (nopObserver) ConnectionOpened(string) {}
func (nopObserver) ConnectionClosed()       {}

// Server accepts TCP connections and runs one Console, and so one session,
// per connection.
type Server struct {
	addr     string
	dir      *auth.Directory
	logger   *slog.Logger
	observer ConnectionObserver

	mu        sync.RWMutex
	listener  net.Listener
	listening chan struct{}
	conns     sync.WaitGroup
}

// NewServer creates a line server. logger and observer may be nil.
func NewServer(addr string, dir *auth.Directory, logger *slog.Logger, observer ConnectionObserver) (*Server, error) {
	if dir == nil {
		return nil, oops.Errorf("directory is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &Server{
		addr:      addr,
		dir:       dir,
		logger:    logger,
		observer:  observer,
		listening: make(chan struct{}),
	}, nil
}

// Listening is closed once Run has bound its listener.
func (s *Server) Listening() <-chan struct{} {
	return s.listening
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run listens and serves until ctx is cancelled. Open connections are
// closed on cancellation and Run returns once their consoles have finished.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	close(s.listening)

	s.logger.Info("line server started", "addr", listener.Addr().String())

	stop := context.AfterFunc(ctx, func() {
		if err := listener.Close(); err != nil {
			s.logger.Debug("error closing listener", "error", err)
		}
	})
	defer stop()
	defer s.conns.Wait()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.serve(ctx, conn)
		}()
	}
}

func (s *Server) serve(ctx context.Context, conn net.Conn) {
	remote := conn.RemoteAddr().String()
	logger := s.logger.With("remote_addr", remote)

	s.observer.ConnectionOpened(TransportTCP)
	defer s.observer.ConnectionClosed()

	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer func() {
		stop()
		if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			logger.Debug("error closing connection", "error", err)
		}
	}()

	c, err := NewWithLogger(s.dir, conn, conn, logger)
	if err != nil {
		logger.Error("failed to create console", "error", err)
		return
	}

	logger.Debug("connection opened")
	if err := c.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Debug("connection ended with error", "error", err)
	}
	logger.Debug("connection closed")
}
