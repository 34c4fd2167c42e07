package store

import (
	"context"
	"sync"
	"time"

	"github.com/Mwvndva/stink/internal/models"
)

// InMemoryStore is a non-durable Store used in tests and local development.
type InMemoryStore struct {
	mu          sync.Mutex
	profiles    map[string]*models.UserProfile
	turns       map[string][]models.ChatTurn
	suggestions []models.Suggestion
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		profiles: make(map[string]*models.UserProfile),
		turns:    make(map[string][]models.ChatTurn),
	}
}

// AppendTurn appends one chat turn in insertion order.
func (s *InMemoryStore) AppendTurn(ctx context.Context, address, message string, isBot bool, mood models.Mood) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns[address] = append(s.turns[address], models.ChatTurn{
		Address:   address,
		Message:   message,
		IsBot:     isBot,
		Mood:      mood,
		CreatedAt: time.Now(),
	})
	return nil
}

// UpsertProfile inserts or merges a profile, refreshing last_interaction.
func (s *InMemoryStore) UpsertProfile(ctx context.Context, address string, patch models.ProfilePatch) error {
	if address == "" {
		return models.ErrEmptyAddress
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[address]
	if !ok {
		p = &models.UserProfile{Address: address, Activated: true, CreatedAt: time.Now()}
		s.profiles[address] = p
	}
	if patch.Name != "" {
		p.Name = patch.Name
	}
	if patch.Gender != "" {
		p.Gender = patch.Gender
	}
	if patch.AgeBracket != "" {
		p.AgeBracket = patch.AgeBracket
	}
	p.LastInteraction = time.Now()
	return nil
}

// SaveSuggestion appends one suggestion entry.
func (s *InMemoryStore) SaveSuggestion(ctx context.Context, address string, mood models.Mood, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggestions = append(s.suggestions, models.Suggestion{
		Address:   address,
		Mood:      mood,
		Text:      text,
		CreatedAt: time.Now(),
	})
	return nil
}

// GetHistory returns at most limit most-recent turns in chronological order.
func (s *InMemoryStore) GetHistory(ctx context.Context, address string, limit int) ([]models.ChatTurn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.turns[address]
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	out := make([]models.ChatTurn, len(all))
	copy(out, all)
	return out, nil
}

// GetProfile returns the stored profile for the address.
func (s *InMemoryStore) GetProfile(ctx context.Context, address string) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[address]
	if !ok {
		return nil, models.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

// ListActiveUsers returns activated users with recent interactions.
func (s *InMemoryStore) ListActiveUsers(ctx context.Context, within time.Duration) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-within)
	var addresses []string
	for addr, p := range s.profiles {
		if p.Activated && p.LastInteraction.After(cutoff) {
			addresses = append(addresses, addr)
		}
	}
	return addresses, nil
}

// Suggestions returns a copy of the suggestion log, for tests.
func (s *InMemoryStore) Suggestions() []models.Suggestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Suggestion, len(s.suggestions))
	copy(out, s.suggestions)
	return out
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
