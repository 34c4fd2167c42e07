// Package api provides the liveness HTTP endpoint used for external uptime
// probing. It is not part of the conversational core.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Server configuration constants.
const (
	// DefaultAddr is the default listen address for the liveness endpoint.
	DefaultAddr = ":3000"
	// livenessBody is the static alive confirmation.
	livenessBody = "Stink Bot is alive! 💨"
	// shutdownTimeout bounds graceful shutdown of in-flight requests.
	shutdownTimeout = 5 * time.Second
)

// Server hosts the unauthenticated liveness endpoint.
type Server struct {
	httpServer *http.Server
}

// NewServer creates the liveness server on the given address (DefaultAddr
// when empty).
func NewServer(addr string) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", handleLiveness)
	return &Server{
		httpServer: &http.Server{Addr: addr, Handler: mux},
	}
}

// Start runs the server in a background goroutine.
func (s *Server) Start() {
	go func() {
		slog.Info("api.Server: liveness endpoint listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("api.Server: listen failed", "error", err)
		}
	}()
}

// Stop gracefully shuts the server down.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

func handleLiveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, livenessBody)
}
