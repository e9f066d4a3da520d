package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Server is the admin listener.
type Server struct {
	httpServer *http.Server
	errCh      chan error
}

// New creates a server for addr. Nothing is bound until Start.
func New(addr string, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       2 * time.Minute,
		},
		errCh: make(chan error, 1),
	}
}

// Start binds the address and serves in the background. A bind failure is
// returned here so the caller can fail the boot; later failures arrive on
// Err.
func (s *Server) Start() (net.Addr, error) {
	l, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	go func() {
		if err := s.Serve(l); err != nil {
			s.errCh <- err
		}
		close(s.errCh)
	}()
	return l.Addr(), nil
}

// Serve accepts connections on l until Shutdown. A clean shutdown returns
// nil.
func (s *Server) Serve(l net.Listener) error {
	if err := s.httpServer.Serve(l); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Err delivers the error that stopped a started server, then closes.
func (s *Server) Err() <-chan error {
	return s.errCh
}

// Shutdown stops accepting and waits for in-flight requests until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
