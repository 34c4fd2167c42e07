package flow

import (
	"strings"
	"testing"

	"github.com/Mwvndva/stink/internal/models"
)

func TestLimitLengthPassThrough(t *testing.T) {
	cases := []string{
		"",
		"short reply",
		strings.Repeat("word ", MaxResponseWords-1) + "word", // exactly 200
	}
	for _, text := range cases {
		if got := LimitLength(text); got != text {
			t.Errorf("LimitLength(%d words) modified text within cap", len(strings.Fields(text)))
		}
	}
}

func TestLimitLengthTruncates(t *testing.T) {
	text := strings.Repeat("word ", 250)
	got := LimitLength(text)
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("truncated text must end with ellipsis marker: %q", got[len(got)-10:])
	}
	body := strings.TrimSuffix(got, "...")
	words := strings.Fields(body)
	if len(words) != MaxResponseWords {
		t.Errorf("truncated word count = %d, want %d", len(words), MaxResponseWords)
	}
	// Words joined with single spaces, no mid-word cuts.
	if body != strings.Join(words, " ") {
		t.Errorf("truncated text not joined by single spaces")
	}
	for _, w := range words {
		if w != "word" {
			t.Errorf("word mangled during truncation: %q", w)
		}
	}
}

func TestShaperEmojiGating(t *testing.T) {
	plain := NewShaper(false)
	if got := plain.Shape("hello", models.MoodHappy); got != "hello" {
		t.Errorf("emoji disabled: Shape = %q, want unchanged", got)
	}

	withEmoji := NewShaper(true)
	got := withEmoji.Shape("hello", models.MoodSad)
	if !strings.HasPrefix(got, "hello ") || got == "hello" {
		t.Errorf("emoji enabled: Shape = %q, want emoji appended", got)
	}
}
