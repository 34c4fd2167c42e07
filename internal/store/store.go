// Package store provides the conversation persistence backends for the Stink
// bot: append-only chat history, upsert-style user profiles and the
// write-only suggestion log.
//
// PostgreSQL and SQLite implementations share the same embedded-migration
// setup; an in-memory implementation exists for tests.
package store

import (
	"context"
	"strings"
	"time"

	"github.com/Mwvndva/stink/internal/models"
)

// Store is the persistence-facing interface of the conversational core.
//
// All methods return errors; whether a failure aborts the caller is a
// call-site policy. The message pipeline logs and ignores AppendTurn and
// SaveSuggestion failures, degrades GetHistory failures to an empty history,
// and propagates UpsertProfile failures.
type Store interface {
	// AppendTurn durably inserts one chat turn. An empty mood is stored as NULL.
	AppendTurn(ctx context.Context, address, message string, isBot bool, mood models.Mood) error

	// UpsertProfile inserts or merges a profile by address. Only non-empty
	// patch fields overwrite stored values; last_interaction is always
	// refreshed.
	UpsertProfile(ctx context.Context, address string, patch models.ProfilePatch) error

	// SaveSuggestion appends one entry to the write-only suggestion log.
	SaveSuggestion(ctx context.Context, address string, mood models.Mood, text string) error

	// GetHistory returns at most limit most-recent turns for the address,
	// restored to chronological order.
	GetHistory(ctx context.Context, address string, limit int) ([]models.ChatTurn, error)

	// GetProfile returns the stored profile, or models.ErrProfileNotFound.
	GetProfile(ctx context.Context, address string) (*models.UserProfile, error)

	// ListActiveUsers returns the addresses of activated users whose last
	// interaction is within the given window.
	ListActiveUsers(ctx context.Context, within time.Duration) ([]string, error)

	// Close releases the underlying connection pool.
	Close() error
}

// Opts holds configuration options for store construction.
type Opts struct {
	DSN string
}

// Option defines a configuration option for store construction.
type Option func(*Opts)

// WithDSN sets the database connection string.
func WithDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}

// DetectDSNType inspects a connection string and reports "postgres" or
// "sqlite". Anything that is not recognizably a Postgres URL or key/value
// DSN is treated as an SQLite file path.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// New constructs a store for the given DSN, auto-detecting the driver.
func New(opts ...Option) (Store, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if DetectDSNType(cfg.DSN) == "postgres" {
		return NewPostgresStore(WithDSN(cfg.DSN))
	}
	return NewSQLiteStore(WithDSN(cfg.DSN))
}
