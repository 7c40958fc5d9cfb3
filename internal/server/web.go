// Package server serves the job API as JSON-RPC 2.0 over HTTP POST
// (/jsonrpc) and WebSocket (/jsonrpc/ws).
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/warpdl/warpcrawl/pkg/logger"
)

type WebServer struct {
	l         logger.Logger
	port      int
	listenAll bool
	rpc       *RPCServer

	mu  sync.Mutex
	srv *http.Server
}

func NewWebServer(l logger.Logger, rpc *RPCServer, port int, listenAll bool) *WebServer {
	return &WebServer{l: logger.OrNop(l), rpc: rpc, port: port, listenAll: listenAll}
}

// Handler routes both RPC endpoints behind the bearer token check.
func (s *WebServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/jsonrpc", requireToken(s.rpc.secret, s.rpc.bridge))
	mux.Handle("/jsonrpc/ws", requireToken(s.rpc.secret, http.HandlerFunc(s.rpc.serveWS)))
	return mux
}

func (s *WebServer) addr() string {
	host := "127.0.0.1"
	if s.listenAll {
		host = "0.0.0.0"
	}
	return fmt.Sprintf("%s:%d", host, s.port)
}

// Start serves until Shutdown is called.
func (s *WebServer) Start() error {
	s.mu.Lock()
	s.srv = &http.Server{
		Addr:              s.addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.srv
	s.mu.Unlock()
	s.l.Info("rpc: listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *WebServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	err := srv.Shutdown(ctx)
	s.rpc.Close()
	return err
}
