// Package models defines the core data structures for the Stink bot.
//
// It includes user profiles, chat turns, suggestions and the coarse mood,
// gender and age-bracket labels shared across modules.
package models

import (
	"errors"
	"time"
)

// Mood is a coarse sentiment label attached to turns and suggestions.
type Mood string

const (
	MoodHappy   Mood = "happy"
	MoodSad     Mood = "sad"
	MoodNeutral Mood = "neutral"
)

// Gender is the inferred gender of a user, derived from their name.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

// AgeBracket is the inferred age range of a user.
type AgeBracket string

const (
	AgeBracketTeen       AgeBracket = "teen"
	AgeBracketYoungAdult AgeBracket = "youngAdult"
	AgeBracketAdult      AgeBracket = "adult"
	AgeBracketMiddleAged AgeBracket = "middleAged"
	AgeBracketSenior     AgeBracket = "senior"
	AgeBracketUnknown    AgeBracket = "unknown"
)

// Error variables shared across modules for better error handling and testability.
var (
	ErrEmptyAddress      = errors.New("address cannot be empty")
	ErrProfileNotFound   = errors.New("profile not found")
	ErrStoreNotConnected = errors.New("store not connected")
)

// UserProfile is the durable per-address record in the users table.
// Exactly one profile exists per address; fields are merged non-destructively
// on upsert (incoming empty values never overwrite stored ones).
type UserProfile struct {
	Address         string     `json:"-"`
	Name            string     `json:"name,omitempty"`
	Gender          Gender     `json:"gender,omitempty"`
	AgeBracket      AgeBracket `json:"age_bracket,omitempty"`
	Activated       bool       `json:"-"`
	CreatedAt       time.Time  `json:"-"`
	LastInteraction time.Time  `json:"-"`
}

// ProfilePatch carries the fields of an upsert. Empty fields are ignored by
// the store so callers can submit only what they inferred this turn.
type ProfilePatch struct {
	Name       string
	Gender     Gender
	AgeBracket AgeBracket
}

// ChatTurn is one message in a conversation, tagged as bot- or user-authored.
// Turns are append-only and ordered by creation time.
type ChatTurn struct {
	Address   string
	Message   string
	IsBot     bool
	Mood      Mood // empty when no mood was recorded for the turn
	CreatedAt time.Time
}

// Suggestion is a write-only log entry pairing a mood with a generated text.
// The conversational core never reads suggestions back.
type Suggestion struct {
	Address   string
	Mood      Mood
	Text      string
	CreatedAt time.Time
}

// IncomingMessage is the normalized inbound event from the messaging transport.
type IncomingMessage struct {
	From     string // sender address (phone-number-like string)
	Body     string
	IsStatus bool // status broadcast, never answered
	IsGroup  bool // group-originated, never answered
	Time     time.Time
}
