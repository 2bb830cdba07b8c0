package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler is an [http.Handler] that knows the path patterns it serves.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// ShutdownTimeout bounds how long [Server.Shutdown] waits for in-flight requests in [Run].
var ShutdownTimeout = 10 * time.Second

// Server runs an [http.Server] on a listener in the background.
type Server struct {
	srv    *http.Server
	addr   net.Addr
	errs   chan error
	logger *log.Logger
}

// Start serves handler on l until [Server.Shutdown] is called.
func Start(l net.Listener, handler http.Handler, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	s := &Server{
		srv:    &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second},
		addr:   l.Addr(),
		errs:   make(chan error, 1),
		logger: logger,
	}

	go func() {
		defer close(s.errs)
		if err := s.srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server stopped", "addr", s.addr.String(), "error", err)
			s.errs <- err
		}
	}()
	return s
}

// Addr returns the address the server listens on.
func (s *Server) Addr() net.Addr {
	return s.addr
}

// Err yields the error that stopped the server, then closes.
func (s *Server) Err() <-chan error {
	return s.errs
}

// Shutdown stops accepting connections and waits for active requests until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Debug("shutting down", "addr", s.addr.String())
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// Run listens on addr and serves handler until ctx is cancelled or the server fails.
func Run(ctx context.Context, addr string, handler http.Handler, logger *log.Logger) error {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s := Start(l, handler, logger)
	logger.Info("server listening", "addr", s.Addr().String())

	select {
	case err := <-s.Err():
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}
