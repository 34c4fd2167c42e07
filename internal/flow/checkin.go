package flow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Mwvndva/stink/internal/genai"
	"github.com/Mwvndva/stink/internal/models"
	"github.com/Mwvndva/stink/internal/store"
)

// Check-in job constants.
const (
	// DefaultCheckInCron fires the daily check-in at noon.
	DefaultCheckInCron = "0 12 * * *"
	// DefaultActiveWindow selects users whose last interaction is recent
	// enough to warrant a check-in.
	DefaultActiveWindow = 7 * 24 * time.Hour
	// CheckInFallback is used when the check-in prompt cannot be generated.
	CheckInFallback = "Hey! Just checking in on you today 💛"
	// genericAddressee is used when the user's display name is unknown.
	genericAddressee = "friend"
)

// CheckInJob proactively reaches out to recently active users on a fixed
// schedule. Each user's check-in is isolated: one failure never aborts the
// remaining users.
type CheckInJob struct {
	store        store.Store
	assembler    *Assembler
	responder    genai.Responder
	sender       Sender
	activeWindow time.Duration
	historyLimit int
}

// NewCheckInJob creates the daily check-in job.
func NewCheckInJob(st store.Store, assembler *Assembler, responder genai.Responder, sender Sender) *CheckInJob {
	return &CheckInJob{
		store:        st,
		assembler:    assembler,
		responder:    responder,
		sender:       sender,
		activeWindow: DefaultActiveWindow,
		historyLimit: DefaultHistoryLimit,
	}
}

// Run executes one check-in cycle. A failed user-list query is logged and
// the cycle simply produces no check-ins.
func (j *CheckInJob) Run(ctx context.Context) {
	slog.Info("CheckInJob.Run: running daily check-ins")
	addresses, err := j.store.ListActiveUsers(ctx, j.activeWindow)
	if err != nil {
		slog.Error("CheckInJob.Run: active user query failed", "error", err)
		return
	}
	slog.Debug("CheckInJob.Run: active users selected", "count", len(addresses))

	sent := 0
	for _, address := range addresses {
		if err := j.checkInUser(ctx, address); err != nil {
			slog.Error("CheckInJob.Run: check-in failed", "error", err, "address", address)
			continue
		}
		sent++
	}
	slog.Info("CheckInJob.Run: cycle complete", "sent", sent, "selected", len(addresses))
}

// checkInUser generates, delivers and records one user's check-in.
func (j *CheckInJob) checkInUser(ctx context.Context, address string) error {
	lastMood := j.lastMood(ctx, address)
	message := j.generateMessage(ctx, address, lastMood)

	if err := j.sender.SendMessage(ctx, address, message); err != nil {
		return fmt.Errorf("check-in send failed: %w", err)
	}

	// Same caller-ignores-failure policy as the message pipeline: the
	// check-in was delivered, bookkeeping failures only get logged.
	if err := j.store.AppendTurn(ctx, address, message, true, lastMood); err != nil {
		slog.Warn("CheckInJob.checkInUser: check-in turn not persisted", "error", err, "address", address)
	}
	if err := j.store.UpsertProfile(ctx, address, models.ProfilePatch{}); err != nil {
		slog.Warn("CheckInJob.checkInUser: last interaction not refreshed", "error", err, "address", address)
	}
	if err := j.store.SaveSuggestion(ctx, address, lastMood, message); err != nil {
		slog.Warn("CheckInJob.checkInUser: suggestion not recorded", "error", err, "address", address)
	}

	slog.Debug("CheckInJob.checkInUser: check-in sent", "address", address, "mood", lastMood)
	return nil
}

// lastMood returns the most recent turn's mood, or neutral when there is no
// history or the turn carries no mood label.
func (j *CheckInJob) lastMood(ctx context.Context, address string) models.Mood {
	history, err := j.store.GetHistory(ctx, address, j.historyLimit)
	if err != nil {
		slog.Warn("CheckInJob.lastMood: history read failed, assuming neutral", "error", err, "address", address)
		return models.MoodNeutral
	}
	if len(history) == 0 {
		return models.MoodNeutral
	}
	if m := history[len(history)-1].Mood; m != "" {
		return m
	}
	return models.MoodNeutral
}

// generateMessage synthesizes a mood-appropriate check-in prompt and runs it
// through the AI responder with empty history and the check-in context flag.
// Lookup failures degrade to the fixed check-in fallback text.
func (j *CheckInJob) generateMessage(ctx context.Context, address string, lastMood models.Mood) string {
	profile, err := j.store.GetProfile(ctx, address)
	if err != nil {
		slog.Warn("CheckInJob.generateMessage: profile lookup failed, using fallback", "error", err, "address", address)
		return CheckInFallback
	}

	name := profile.Name
	if name == "" {
		name = genericAddressee
	}
	prompt := fmt.Sprintf("Generate a %s-appropriate check-in for %s", lastMood, name)
	slog.Debug("CheckInJob.generateMessage: generating check-in", "address", address, "prompt", prompt)

	systemPrompt, _ := j.assembler.Assemble(AssembleInput{
		Profile:   profile,
		IsCheckIn: true,
	})
	return j.responder.Respond(ctx, systemPrompt, nil, prompt)
}
