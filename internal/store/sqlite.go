// This file implements the SQLite-backed conversation store.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	"github.com/Mwvndva/stink/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

// sqliteTimeLayout matches the format CURRENT_TIMESTAMP stores, so bound
// cutoff values compare correctly against stored timestamps.
const sqliteTimeLayout = "2006-01-02 15:04:05"

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists profiles, turns and suggestions in an SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path; missing directories are created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("SQLiteStore.NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")
	if cfg.DSN == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(cfg.DSN)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}

	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run SQLite migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")
	return &SQLiteStore{db: db}, nil
}

// AppendTurn durably inserts one chat turn.
func (s *SQLiteStore) AppendTurn(ctx context.Context, address, message string, isBot bool, mood models.Mood) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_history (phone_number, message, is_bot, mood) VALUES (?, ?, ?, ?)`,
		address, message, isBot, nilIfEmpty(string(mood)))
	if err != nil {
		slog.Error("SQLiteStore.AppendTurn failed", "error", err, "address", address, "is_bot", isBot)
		return fmt.Errorf("failed to insert chat turn for %s: %w", address, err)
	}
	slog.Debug("SQLiteStore.AppendTurn succeeded", "address", address, "is_bot", isBot, "mood", mood)
	return nil
}

// UpsertProfile inserts or merges a user profile, refreshing last_interaction.
func (s *SQLiteStore) UpsertProfile(ctx context.Context, address string, patch models.ProfilePatch) error {
	if address == "" {
		return models.ErrEmptyAddress
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (phone_number, name, gender, age_bracket, activated)
		 VALUES (?, ?, ?, ?, 1)
		 ON CONFLICT (phone_number) DO UPDATE SET
		   name = COALESCE(excluded.name, users.name),
		   gender = COALESCE(excluded.gender, users.gender),
		   age_bracket = COALESCE(excluded.age_bracket, users.age_bracket),
		   last_interaction = CURRENT_TIMESTAMP`,
		address, nilIfEmpty(patch.Name), nilIfEmpty(string(patch.Gender)), nilIfEmpty(string(patch.AgeBracket)))
	if err != nil {
		slog.Error("SQLiteStore.UpsertProfile failed", "error", err, "address", address)
		return fmt.Errorf("failed to upsert profile for %s: %w", address, err)
	}
	slog.Debug("SQLiteStore.UpsertProfile succeeded", "address", address)
	return nil
}

// SaveSuggestion appends one entry to the suggestion log.
func (s *SQLiteStore) SaveSuggestion(ctx context.Context, address string, mood models.Mood, text string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO suggestions (phone_number, mood, suggestion) VALUES (?, ?, ?)`,
		address, string(mood), text)
	if err != nil {
		slog.Error("SQLiteStore.SaveSuggestion failed", "error", err, "address", address, "mood", mood)
		return fmt.Errorf("failed to insert suggestion for %s: %w", address, err)
	}
	slog.Debug("SQLiteStore.SaveSuggestion succeeded", "address", address, "mood", mood)
	return nil
}

// GetHistory returns at most limit most-recent turns in chronological order.
func (s *SQLiteStore) GetHistory(ctx context.Context, address string, limit int) ([]models.ChatTurn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT message, is_bot, mood, created_at
		 FROM chat_history
		 WHERE phone_number = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		address, limit)
	if err != nil {
		slog.Error("SQLiteStore.GetHistory query failed", "error", err, "address", address)
		return nil, fmt.Errorf("failed to query chat history for %s: %w", address, err)
	}
	defer rows.Close()

	turns, err := scanTurns(rows, address)
	if err != nil {
		slog.Error("SQLiteStore.GetHistory scan failed", "error", err, "address", address)
		return nil, err
	}
	slog.Debug("SQLiteStore.GetHistory succeeded", "address", address, "count", len(turns))
	return turns, nil
}

// GetProfile returns the stored profile for the address.
func (s *SQLiteStore) GetProfile(ctx context.Context, address string) (*models.UserProfile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT phone_number, name, gender, age_bracket, activated, created_at, last_interaction
		 FROM users WHERE phone_number = ?`,
		address)
	profile, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrProfileNotFound
	}
	if err != nil {
		slog.Error("SQLiteStore.GetProfile failed", "error", err, "address", address)
		return nil, fmt.Errorf("failed to query profile for %s: %w", address, err)
	}
	return profile, nil
}

// ListActiveUsers returns activated users with recent interactions.
func (s *SQLiteStore) ListActiveUsers(ctx context.Context, within time.Duration) ([]string, error) {
	cutoff := time.Now().UTC().Add(-within).Format(sqliteTimeLayout)
	rows, err := s.db.QueryContext(ctx,
		`SELECT phone_number FROM users WHERE activated = 1 AND last_interaction > ?`,
		cutoff)
	if err != nil {
		slog.Error("SQLiteStore.ListActiveUsers query failed", "error", err)
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
	slog.Debug("SQLiteStore.ListActiveUsers succeeded", "count", len(addresses))
	return addresses, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
