// Package app assembles the gateway: storage, token minting, and the HTTP
// server lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/blizx/zenith/internal/platform/timeouts"
	"github.com/blizx/zenith/internal/services/gateway/api"
	"github.com/blizx/zenith/internal/services/gateway/storage/sqlite"
	"github.com/blizx/zenith/internal/services/gateway/token"
)

// Config carries everything the gateway needs to start.
type Config struct {
	Port        int
	StoragePath string
	TokenSecret string
	TokenTTL    time.Duration
}

// Server hosts the gateway HTTP API.
type Server struct {
	listener   net.Listener
	httpServer *http.Server
	store      *sqlite.Store
}

// New opens storage and builds a configured server listening on the
// configured port.
func New(cfg Config) (*Server, error) {
	store, err := sqlite.Open(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	minter, err := token.New([]byte(cfg.TokenSecret), cfg.TokenTTL, nil)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("configure tokens: %w", err)
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("listen on port %d: %w", cfg.Port, err)
	}

	handler := api.New(store, minter)
	httpServer := &http.Server{
		Handler:           handler.Router(),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}

	return &Server{
		listener:   listener,
		httpServer: httpServer,
		store:      store,
	}, nil
}

// Run creates and serves a gateway until the context ends.
func Run(ctx context.Context, cfg Config) error {
	server, err := New(cfg)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the HTTP server and blocks until it stops or the context
// ends.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	defer func() {
		if err := s.store.Close(); err != nil {
			log.Printf("close storage: %v", err)
		}
	}()

	log.Printf("gateway listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	handleErr := func(err error) error {
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http: %w", err)
		}
		return handleErr(<-serveErr)
	case err := <-serveErr:
		return handleErr(err)
	}
}

// Addr returns the bound listen address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}
