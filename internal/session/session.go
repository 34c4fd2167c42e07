// Package session provides the in-process conversational session state,
// keyed by address.
//
// The state is volatile by contract: it is lost on restart and every address
// starts over as unknown. The durable source of truth for conversations is
// the store, not this package.
package session

import (
	"log/slog"
	"sync"
	"time"
)

// State is the coarse conversational state tag for an address.
type State string

const (
	// StateUnknown is the implicit state of any address never seen by this
	// process.
	StateUnknown State = ""
	// StateActive marks an address with at least one handled conversation.
	StateActive State = "active"
)

// DefaultMaxEntries bounds the number of tracked addresses before the oldest
// entry is evicted.
const DefaultMaxEntries = 10000

type entry struct {
	state   State
	cache   map[string]string // ephemeral per-turn data
	touched time.Time
}

// Manager tracks per-address session state and an ephemeral per-address
// cache. All methods are safe for concurrent use.
type Manager struct {
	mu         sync.Mutex
	entries    map[string]*entry
	maxEntries int
}

// NewManager creates a session manager bounded to DefaultMaxEntries.
func NewManager() *Manager {
	return NewManagerWithCapacity(DefaultMaxEntries)
}

// NewManagerWithCapacity creates a session manager with an explicit bound.
func NewManagerWithCapacity(maxEntries int) *Manager {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Manager{
		entries:    make(map[string]*entry),
		maxEntries: maxEntries,
	}
}

// Get returns the session state for an address, StateUnknown if untracked.
func (m *Manager) Get(address string) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[address]; ok {
		return e.state
	}
	return StateUnknown
}

// Set records the session state for an address.
func (m *Manager) Set(address string, state State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch(address).state = state
}

// GetCache returns an ephemeral cache value for the address.
func (m *Manager) GetCache(address, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[address]
	if !ok {
		return "", false
	}
	v, ok := e.cache[key]
	return v, ok
}

// SetCache stores an ephemeral cache value for the address.
func (m *Manager) SetCache(address, key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch(address).cache[key] = value
}

// Len reports the number of tracked addresses.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// touch returns the entry for address, creating it and evicting the oldest
// entry if the bound is reached. Caller must hold the lock.
func (m *Manager) touch(address string) *entry {
	e, ok := m.entries[address]
	if !ok {
		if len(m.entries) >= m.maxEntries {
			m.evictOldest()
		}
		e = &entry{cache: make(map[string]string)}
		m.entries[address] = e
	}
	e.touched = time.Now()
	return e
}

func (m *Manager) evictOldest() {
	var oldestAddr string
	var oldest time.Time
	for addr, e := range m.entries {
		if oldestAddr == "" || e.touched.Before(oldest) {
			oldestAddr = addr
			oldest = e.touched
		}
	}
	if oldestAddr != "" {
		delete(m.entries, oldestAddr)
		slog.Debug("session.Manager: evicted oldest session entry", "address", oldestAddr)
	}
}
