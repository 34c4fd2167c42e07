package flow

import (
	"encoding/json"
	"log/slog"

	"github.com/Mwvndva/stink/internal/genai"
	"github.com/Mwvndva/stink/internal/models"
)

// DefaultHistoryLimit is the fixed bound on historical turns handed to the
// AI responder.
const DefaultHistoryLimit = 5

// defaultState is the session-state tag reported when none is tracked.
const defaultState = "active"

// SituationalContext is the JSON payload embedded in the persona directive.
type SituationalContext struct {
	IsNewUser bool               `json:"isNewUser"`
	UserData  models.UserProfile `json:"userData"`
	State     string             `json:"state"`
	IsCheckIn bool               `json:"isCheckIn,omitempty"`
}

// AssembleInput carries everything the assembler needs for one request. No
// derivation happens here; mood and trait inference are the caller's job.
type AssembleInput struct {
	Profile   *models.UserProfile // nil when no profile is stored
	History   []models.ChatTurn   // chronological, may exceed the limit
	State     string              // session-state tag, defaulting to "active"
	IsCheckIn bool
}

// Assembler builds the bounded context handed to the AI responder: the
// persona system directive with the situational payload, plus the history
// mapped to the two-role schema.
type Assembler struct {
	persona      string
	historyLimit int
}

// NewAssembler creates an assembler with an injected persona directive.
func NewAssembler(persona string) *Assembler {
	return &Assembler{persona: persona, historyLimit: DefaultHistoryLimit}
}

// Assemble returns the system directive and the role-mapped history. The
// history is capped to the most recent historyLimit turns before mapping;
// the new-user flag is true iff no stored profile exists.
func (a *Assembler) Assemble(input AssembleInput) (systemPrompt string, history []genai.Message) {
	sc := SituationalContext{
		IsNewUser: input.Profile == nil,
		State:     input.State,
		IsCheckIn: input.IsCheckIn,
	}
	if input.Profile != nil {
		sc.UserData = *input.Profile
	}
	if sc.State == "" {
		sc.State = defaultState
	}

	payload, err := json.Marshal(sc)
	if err != nil {
		// A flat struct of strings and bools cannot fail to marshal; guard
		// anyway so a future field change degrades to an empty payload.
		slog.Error("flow.Assembler.Assemble: situational payload marshal failed", "error", err)
		payload = []byte("{}")
	}
	systemPrompt = a.persona + "\n\nContext: " + string(payload)

	turns := input.History
	if len(turns) > a.historyLimit {
		turns = turns[len(turns)-a.historyLimit:]
	}
	history = make([]genai.Message, 0, len(turns))
	for _, t := range turns {
		role := genai.RoleUser
		if t.IsBot {
			role = genai.RoleAssistant
		}
		history = append(history, genai.Message{Role: role, Content: t.Message})
	}

	slog.Debug("flow.Assembler.Assemble: context assembled",
		"is_new_user", sc.IsNewUser, "history_turns", len(history), "is_check_in", sc.IsCheckIn)
	return systemPrompt, history
}
