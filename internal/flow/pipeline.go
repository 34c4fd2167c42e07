package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Mwvndva/stink/internal/genai"
	"github.com/Mwvndva/stink/internal/models"
	"github.com/Mwvndva/stink/internal/mood"
	"github.com/Mwvndva/stink/internal/session"
	"github.com/Mwvndva/stink/internal/store"
)

// ApologyReply is the best-effort answer sent when the pipeline itself
// fails. A failed apology send is logged and not handled further.
const ApologyReply = "Oops, my circuits glitched! 🫠 Try again?"

// logBodyLimit caps how much inbound text appears in diagnostics.
const logBodyLimit = 30

// Sender delivers outbound text to the messaging transport. The delivery
// pacer satisfies this, transparently chunking oversized replies.
type Sender interface {
	SendMessage(ctx context.Context, to string, body string) error
}

// Pipeline is the per-inbound-message state machine: filter, load context,
// generate, shape, persist, deliver.
type Pipeline struct {
	store        store.Store
	assembler    *Assembler
	responder    genai.Responder
	shaper       *Shaper
	sender       Sender
	sessions     *session.Manager
	historyLimit int
}

// NewPipeline creates a message pipeline with its collaborators.
func NewPipeline(st store.Store, assembler *Assembler, responder genai.Responder, shaper *Shaper, sender Sender, sessions *session.Manager) *Pipeline {
	return &Pipeline{
		store:        st,
		assembler:    assembler,
		responder:    responder,
		shaper:       shaper,
		sender:       sender,
		sessions:     sessions,
		historyLimit: DefaultHistoryLimit,
	}
}

// HandleIncoming runs one inbound message through the pipeline. Status
// broadcasts, group messages and blank bodies are dropped silently. Any
// processing error is caught here, logged with context, and answered with a
// single best-effort apology to the original sender.
func (p *Pipeline) HandleIncoming(ctx context.Context, msg models.IncomingMessage) {
	if msg.IsStatus || msg.IsGroup {
		slog.Debug("Pipeline.HandleIncoming: message filtered",
			"from", msg.From, "is_status", msg.IsStatus, "is_group", msg.IsGroup)
		return
	}
	if strings.TrimSpace(msg.Body) == "" {
		slog.Debug("Pipeline.HandleIncoming: blank message filtered", "from", msg.From)
		return
	}

	if err := p.process(ctx, msg); err != nil {
		slog.Error("Pipeline.HandleIncoming: message processing failed",
			"error", err, "from", msg.From, "body", truncate(msg.Body, logBodyLimit))
		if sendErr := p.sender.SendMessage(ctx, msg.From, ApologyReply); sendErr != nil {
			slog.Error("Pipeline.HandleIncoming: apology send failed", "error", sendErr, "from", msg.From)
		}
		return
	}
	slog.Debug("Pipeline.HandleIncoming: message delivered", "from", msg.From)
}

func (p *Pipeline) process(ctx context.Context, msg models.IncomingMessage) error {
	address := msg.From
	body := strings.TrimSpace(msg.Body)
	slog.Debug("Pipeline.process: handling message", "from", address, "body", truncate(body, logBodyLimit))

	// Read path degrades: a missing or unreadable profile means new user.
	profile, err := p.store.GetProfile(ctx, address)
	if err != nil && !errors.Is(err, models.ErrProfileNotFound) {
		slog.Warn("Pipeline.process: profile read failed, treating as new user", "error", err, "from", address)
	}

	history, err := p.store.GetHistory(ctx, address, p.historyLimit)
	if err != nil {
		slog.Warn("Pipeline.process: history read failed, continuing with empty history", "error", err, "from", address)
		history = nil
	}

	detected := mood.Detect(body)

	// Profile integrity matters more than availability: a failed upsert
	// aborts the pipeline before the AI call.
	if err := p.store.UpsertProfile(ctx, address, p.inferPatch(profile, body)); err != nil {
		return fmt.Errorf("profile upsert failed: %w", err)
	}

	systemPrompt, mapped := p.assembler.Assemble(AssembleInput{
		Profile: profile,
		History: history,
		State:   string(p.sessions.Get(address)),
	})

	reply := p.responder.Respond(ctx, systemPrompt, mapped, body)
	final := p.shaper.Shape(reply, detected)

	// History loss is acceptable; both turn writes are logged and ignored so
	// the reply still goes out.
	if err := p.store.AppendTurn(ctx, address, body, false, detected); err != nil {
		slog.Warn("Pipeline.process: inbound turn not persisted", "error", err, "from", address)
	}
	if err := p.store.AppendTurn(ctx, address, final, true, detected); err != nil {
		slog.Warn("Pipeline.process: outbound turn not persisted", "error", err, "from", address)
	}

	if err := p.sender.SendMessage(ctx, address, final); err != nil {
		return fmt.Errorf("reply send failed: %w", err)
	}

	if p.sessions.Get(address) == session.StateUnknown {
		p.sessions.Set(address, session.StateActive)
	}
	return nil
}

// inferPatch derives the non-destructive profile update for this turn: an
// age bracket guessed from the message, and a gender guessed from the stored
// name once one is known.
func (p *Pipeline) inferPatch(profile *models.UserProfile, body string) models.ProfilePatch {
	var patch models.ProfilePatch
	if bracket := mood.EstimateAgeBracket(body); bracket != models.AgeBracketUnknown {
		patch.AgeBracket = bracket
	}
	if profile != nil && profile.Name != "" && (profile.Gender == "" || profile.Gender == models.GenderUnknown) {
		if gender := mood.DetectGender(profile.Name); gender != models.GenderUnknown {
			patch.Gender = gender
		}
	}
	return patch
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
