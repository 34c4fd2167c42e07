package store

import (
	"database/sql"
	"fmt"

	"github.com/Mwvndva/stink/internal/models"
)

// nilIfEmpty returns nil if s is empty, otherwise returns s.
// Used for nullable database columns and COALESCE-based merges.
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// scanTurns reads chat turns from rows fetched in reverse-chronological order
// and restores them to chronological order.
func scanTurns(rows *sql.Rows, address string) ([]models.ChatTurn, error) {
	var turns []models.ChatTurn
	for rows.Next() {
		var t models.ChatTurn
		var mood sql.NullString
		if err := rows.Scan(&t.Message, &t.IsBot, &mood, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat turn row: %w", err)
		}
		t.Address = address
		t.Mood = models.Mood(mood.String)
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat turn rows: %w", err)
	}
	reverseTurns(turns)
	return turns, nil
}

func reverseTurns(turns []models.ChatTurn) {
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
}

// scanProfile reads a user profile from a single row.
func scanProfile(row *sql.Row) (*models.UserProfile, error) {
	var p models.UserProfile
	var name, gender, ageBracket sql.NullString
	err := row.Scan(&p.Address, &name, &gender, &ageBracket, &p.Activated, &p.CreatedAt, &p.LastInteraction)
	if err != nil {
		return nil, err
	}
	p.Name = name.String
	p.Gender = models.Gender(gender.String)
	p.AgeBracket = models.AgeBracket(ageBracket.String)
	return &p, nil
}
