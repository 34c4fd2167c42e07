package flow

import (
	"log/slog"
	"strings"

	"github.com/Mwvndva/stink/internal/models"
	"github.com/Mwvndva/stink/internal/mood"
)

// MaxResponseWords caps the word count of outbound replies.
const MaxResponseWords = 200

// ellipsisMarker is appended when a reply is truncated.
const ellipsisMarker = "..."

// Shaper post-processes AI replies: word-boundary length capping and
// optional mood-tagged emoji augmentation.
type Shaper struct {
	emojiEnabled bool
}

// NewShaper creates a shaper. Emoji augmentation is config-gated.
func NewShaper(emojiEnabled bool) *Shaper {
	return &Shaper{emojiEnabled: emojiEnabled}
}

// Shape applies the length cap and, when enabled, appends a mood emoji.
func (s *Shaper) Shape(text string, m models.Mood) string {
	out := LimitLength(text)
	if s.emojiEnabled {
		out = mood.EnhanceWithEmoji(out, m)
	}
	return out
}

// LimitLength truncates text to MaxResponseWords words, appending an
// ellipsis marker. Texts within the cap pass through unchanged; truncation
// happens only on word boundaries.
func LimitLength(text string) string {
	words := strings.Fields(text)
	if len(words) <= MaxResponseWords {
		return text
	}
	slog.Debug("flow.LimitLength: trimming response", "from_words", len(words), "to_words", MaxResponseWords)
	return strings.Join(words[:MaxResponseWords], " ") + ellipsisMarker
}
