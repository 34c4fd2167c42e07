package whatsapp

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// ConnState is the supervisor's view of the transport connection.
type ConnState string

const (
	StateConnected    ConnState = "connected"
	StateReconnecting ConnState = "reconnecting"
)

// Supervision constants.
const (
	// DefaultProbeInterval is how often the connection is checked while healthy.
	DefaultProbeInterval = 30 * time.Second
	// DefaultInitialBackoff is the first reconnect delay.
	DefaultInitialBackoff = 5 * time.Second
	// DefaultMaxBackoff caps the exponential reconnect delay.
	DefaultMaxBackoff = 5 * time.Minute
)

// supervisedClient is the slice of Client the supervisor drives.
type supervisedClient interface {
	IsConnected() bool
	Connect() error
}

// Supervisor watches the transport session and re-establishes it with
// exponential backoff when it drops. State transitions are explicit:
// connected while the probe succeeds, reconnecting while attempts back off.
type Supervisor struct {
	client         supervisedClient
	probeInterval  time.Duration
	initialBackoff time.Duration
	maxBackoff     time.Duration

	mu    sync.Mutex
	state ConnState
}

// NewSupervisor creates a supervisor for the given client.
func NewSupervisor(client supervisedClient) *Supervisor {
	return &Supervisor{
		client:         client,
		probeInterval:  DefaultProbeInterval,
		initialBackoff: DefaultInitialBackoff,
		maxBackoff:     DefaultMaxBackoff,
		state:          StateConnected,
	}
}

// State returns the current connection state.
func (s *Supervisor) State() ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Supervisor) setState(state ConnState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != state {
		slog.Info("whatsapp.Supervisor: connection state changed", "from", s.state, "to", state)
		s.state = state
	}
}

// Run probes the connection until ctx is cancelled. It blocks and is meant
// to be started in its own goroutine.
func (s *Supervisor) Run(ctx context.Context) {
	slog.Debug("whatsapp.Supervisor: starting", "probe_interval", s.probeInterval)
	ticker := time.NewTicker(s.probeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Debug("whatsapp.Supervisor: stopping", "reason", ctx.Err())
			return
		case <-ticker.C:
			if s.client.IsConnected() {
				s.setState(StateConnected)
				continue
			}
			s.setState(StateReconnecting)
			s.reconnect(ctx)
		}
	}
}

// reconnect retries Connect with exponential backoff until it succeeds or
// ctx is cancelled.
func (s *Supervisor) reconnect(ctx context.Context) {
	backoff := s.initialBackoff
	for attempt := 1; ; attempt++ {
		slog.Warn("whatsapp.Supervisor: session expired, reconnecting", "attempt", attempt, "backoff", backoff)
		err := s.client.Connect()
		if err == nil {
			s.setState(StateConnected)
			slog.Info("whatsapp.Supervisor: reconnected", "attempts", attempt)
			return
		}
		slog.Error("whatsapp.Supervisor: reconnect attempt failed", "error", err, "attempt", attempt)

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > s.maxBackoff {
			backoff = s.maxBackoff
		}
	}
}
