package mood

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Mwvndva/stink/internal/models"
)

func TestDetectThresholds(t *testing.T) {
	cases := []struct {
		text string
		want models.Mood
	}{
		{"this is amazing, I love it", models.MoodHappy},
		{"great day", models.MoodHappy},
		{"I feel so depressed and lonely", models.MoodSad},
		{"everything hurts", models.MoodSad},
		{"what time is it", models.MoodNeutral},
		{"", models.MoodNeutral},
		// score exactly 1 and -1 must stay neutral (strict inequalities)
		{"ok", models.MoodNeutral},
		{"tired", models.MoodNeutral},
	}
	for _, c := range cases {
		if got := Detect(c.text); got != c.want {
			t.Errorf("Detect(%q) = %q, want %q (score %d)", c.text, got, c.want, Score(c.text))
		}
	}
}

func TestDetectIgnoresPunctuationAndCase(t *testing.T) {
	if got := Detect("GREAT!! Awesome."); got != models.MoodHappy {
		t.Errorf("expected happy for shouted praise, got %q", got)
	}
}

func TestDetectGender(t *testing.T) {
	for _, name := range []string{"john", "Michael", "DAVID", "james", "Robert"} {
		if got := DetectGender(name); got != models.GenderMale {
			t.Errorf("DetectGender(%q) = %q, want male", name, got)
		}
	}
	for _, name := range []string{"mary", "Jennifer", "LINDA", "patricia", "Elizabeth"} {
		if got := DetectGender(name); got != models.GenderFemale {
			t.Errorf("DetectGender(%q) = %q, want female", name, got)
		}
	}
	for _, name := range []string{"", "alex", "Kwame", "x"} {
		if got := DetectGender(name); got != models.GenderUnknown {
			t.Errorf("DetectGender(%q) = %q, want unknown", name, got)
		}
	}
}

func TestEstimateAgeBracketRanges(t *testing.T) {
	brackets := map[models.AgeBracket][2]int{
		models.AgeBracketTeen:       {13, 19},
		models.AgeBracketYoungAdult: {20, 29},
		models.AgeBracketAdult:      {30, 45},
		models.AgeBracketMiddleAged: {46, 65},
		models.AgeBracketSenior:     {66, 99},
	}
	for want, r := range brackets {
		for age := r[0]; age <= r[1]; age++ {
			msg := fmt.Sprintf("I am %d years old", age)
			if got := EstimateAgeBracket(msg); got != want {
				t.Errorf("EstimateAgeBracket(%q) = %q, want %q", msg, got, want)
			}
		}
	}
}

func TestEstimateAgeBracketUnknown(t *testing.T) {
	cases := []string{
		"no numbers here",
		"I am 10",         // below every bracket
		"I am 12",         // below every bracket
		"I am 7",          // single digit, no standalone two-digit token
		"",
	}
	for _, msg := range cases {
		if got := EstimateAgeBracket(msg); got != models.AgeBracketUnknown {
			t.Errorf("EstimateAgeBracket(%q) = %q, want unknown", msg, got)
		}
	}
}

func TestEstimateAgeBracketFirstMatchWins(t *testing.T) {
	// 25 appears first, 70 second; the first standalone two-digit number wins.
	if got := EstimateAgeBracket("I'm 25 but my dad is 70"); got != models.AgeBracketYoungAdult {
		t.Errorf("expected youngAdult for first number, got %q", got)
	}
}

func TestEnhanceWithEmoji(t *testing.T) {
	for _, m := range []models.Mood{models.MoodHappy, models.MoodSad, models.MoodNeutral, models.Mood("bogus")} {
		out := EnhanceWithEmoji("hello", m)
		if !strings.HasPrefix(out, "hello ") {
			t.Errorf("expected text preserved with emoji suffix, got %q", out)
		}
		suffix := strings.TrimPrefix(out, "hello ")
		set, ok := emojiResponses[m]
		if !ok {
			set = emojiResponses[models.MoodNeutral]
		}
		found := false
		for _, e := range set {
			if suffix == e {
				found = true
			}
		}
		if !found {
			t.Errorf("emoji %q not in set for mood %q", suffix, m)
		}
	}
}
