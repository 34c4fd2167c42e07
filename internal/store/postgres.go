// This file implements the PostgreSQL-backed conversation store.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/Mwvndva/stink/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore persists profiles, turns and suggestions in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "DSN_set", cfg.DSN != "")
	if cfg.DSN == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run Postgres migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")
	return &PostgresStore{db: db}, nil
}

// AppendTurn durably inserts one chat turn.
func (s *PostgresStore) AppendTurn(ctx context.Context, address, message string, isBot bool, mood models.Mood) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_history (phone_number, message, is_bot, mood) VALUES ($1, $2, $3, $4)`,
		address, message, isBot, nilIfEmpty(string(mood)))
	if err != nil {
		slog.Error("PostgresStore.AppendTurn failed", "error", err, "address", address, "is_bot", isBot)
		return fmt.Errorf("failed to insert chat turn for %s: %w", address, err)
	}
	slog.Debug("PostgresStore.AppendTurn succeeded", "address", address, "is_bot", isBot, "mood", mood)
	return nil
}

// UpsertProfile inserts or merges a user profile, refreshing last_interaction.
func (s *PostgresStore) UpsertProfile(ctx context.Context, address string, patch models.ProfilePatch) error {
	if address == "" {
		return models.ErrEmptyAddress
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (phone_number, name, gender, age_bracket, activated)
		 VALUES ($1, $2, $3, $4, TRUE)
		 ON CONFLICT (phone_number) DO UPDATE SET
		   name = COALESCE($2, users.name),
		   gender = COALESCE($3, users.gender),
		   age_bracket = COALESCE($4, users.age_bracket),
		   last_interaction = NOW()`,
		address, nilIfEmpty(patch.Name), nilIfEmpty(string(patch.Gender)), nilIfEmpty(string(patch.AgeBracket)))
	if err != nil {
		slog.Error("PostgresStore.UpsertProfile failed", "error", err, "address", address)
		return fmt.Errorf("failed to upsert profile for %s: %w", address, err)
	}
	slog.Debug("PostgresStore.UpsertProfile succeeded", "address", address)
	return nil
}

// SaveSuggestion appends one entry to the suggestion log.
func (s *PostgresStore) SaveSuggestion(ctx context.Context, address string, mood models.Mood, text string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO suggestions (phone_number, mood, suggestion) VALUES ($1, $2, $3)`,
		address, string(mood), text)
	if err != nil {
		slog.Error("PostgresStore.SaveSuggestion failed", "error", err, "address", address, "mood", mood)
		return fmt.Errorf("failed to insert suggestion for %s: %w", address, err)
	}
	slog.Debug("PostgresStore.SaveSuggestion succeeded", "address", address, "mood", mood)
	return nil
}

// GetHistory returns at most limit most-recent turns in chronological order.
func (s *PostgresStore) GetHistory(ctx context.Context, address string, limit int) ([]models.ChatTurn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT message, is_bot, mood, created_at
		 FROM chat_history
		 WHERE phone_number = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		address, limit)
	if err != nil {
		slog.Error("PostgresStore.GetHistory query failed", "error", err, "address", address)
		return nil, fmt.Errorf("failed to query chat history for %s: %w", address, err)
	}
	defer rows.Close()

	turns, err := scanTurns(rows, address)
	if err != nil {
		slog.Error("PostgresStore.GetHistory scan failed", "error", err, "address", address)
		return nil, err
	}
	slog.Debug("PostgresStore.GetHistory succeeded", "address", address, "count", len(turns))
	return turns, nil
}

// GetProfile returns the stored profile for the address.
func (s *PostgresStore) GetProfile(ctx context.Context, address string) (*models.UserProfile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT phone_number, name, gender, age_bracket, activated, created_at, last_interaction
		 FROM users WHERE phone_number = $1`,
		address)
	profile, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrProfileNotFound
	}
	if err != nil {
		slog.Error("PostgresStore.GetProfile failed", "error", err, "address", address)
		return nil, fmt.Errorf("failed to query profile for %s: %w", address, err)
	}
	return profile, nil
}

// ListActiveUsers returns activated users with recent interactions.
func (s *PostgresStore) ListActiveUsers(ctx context.Context, within time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-within)
	rows, err := s.db.QueryContext(ctx,
		`SELECT phone_number FROM users WHERE activated = TRUE AND last_interaction > $1`,
		cutoff)
	if err != nil {
		slog.Error("PostgresStore.ListActiveUsers query failed", "error", err)
		return nil, fmt.Errorf("failed to query active users: %w", err)
	}
	defer rows.Close()

	var addresses []string
	for rows.Next() {
		var addr string
		if err := rows.Scan(&addr); err != nil {
			return nil, fmt.Errorf("failed to scan active user row: %w", err)
		}
		addresses = append(addresses, addr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate active user rows: %w", err)
	}
	slog.Debug("PostgresStore.ListActiveUsers succeeded", "count", len(addresses))
	return addresses, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
