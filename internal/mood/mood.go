// Package mood provides the coarse conversational heuristics used to shape
// context for the AI responder: lexicon-based mood detection, name-based
// gender guessing, age-bracket estimation and mood-tagged emoji augmentation.
//
// Everything here is deterministic apart from the random emoji pick, and has
// no side effects beyond diagnostic logging.
package mood

import (
	"log/slog"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"

	"github.com/Mwvndva/stink/internal/models"
)

// Thresholds for mapping a sentiment score to a mood label.
const (
	happyThreshold = 1
	sadThreshold   = -1
)

// emojiResponses holds the per-mood emoji sets used by EnhanceWithEmoji.
var emojiResponses = map[models.Mood][]string{
	models.MoodHappy:   {"😊", "😄", "🌟", "🎉", "🤗"},
	models.MoodSad:     {"🤗", "💙", "🫂", "☕", "🍫"},
	models.MoodNeutral: {"👀", "🤔", "💭", "🗣️", "👂"},
}

// commonNames holds the fixed name lists for gender detection.
// The male list is checked before the female list.
var commonNames = struct {
	male   []string
	female []string
}{
	male:   []string{"john", "michael", "david", "james", "robert"},
	female: []string{"mary", "jennifer", "linda", "patricia", "elizabeth"},
}

// ageBracket is one inclusive numeric range. Ranges are evaluated in
// declaration order and the first match wins.
type ageBracket struct {
	label    models.AgeBracket
	min, max int
}

var ageBrackets = []ageBracket{
	{models.AgeBracketTeen, 13, 19},
	{models.AgeBracketYoungAdult, 20, 29},
	{models.AgeBracketAdult, 30, 45},
	{models.AgeBracketMiddleAged, 46, 65},
	{models.AgeBracketSenior, 66, 100},
}

// standalone two-digit number, e.g. "I'm 28 now"
var agePattern = regexp.MustCompile(`\b(\d{2})\b`)

// Detect derives a mood label from free text using the sentiment lexicon.
// Scores above 1 map to happy, below -1 to sad, everything else to neutral.
func Detect(text string) models.Mood {
	score := Score(text)
	slog.Debug("mood.Detect: analyzed text", "text", truncate(text, 20), "score", score)
	switch {
	case score > happyThreshold:
		return models.MoodHappy
	case score < sadThreshold:
		return models.MoodSad
	default:
		return models.MoodNeutral
	}
}

// Score sums the lexicon weights of every token in the text.
func Score(text string) int {
	score := 0
	for _, token := range tokenize(text) {
		score += lexicon[token]
	}
	return score
}

// DetectGender guesses a gender from a display name using the fixed name
// lists. The check is case-insensitive and the male list is checked first.
func DetectGender(name string) models.Gender {
	lower := strings.ToLower(strings.TrimSpace(name))
	gender := models.GenderUnknown
	switch {
	case contains(commonNames.male, lower):
		gender = models.GenderMale
	case contains(commonNames.female, lower):
		gender = models.GenderFemale
	}
	slog.Debug("mood.DetectGender: name checked", "name", name, "gender", gender)
	return gender
}

// EstimateAgeBracket extracts the first standalone two-digit number from the
// text and maps it into one of the fixed brackets. Messages without such a
// number, or with one outside every bracket, yield unknown.
func EstimateAgeBracket(text string) models.AgeBracket {
	bracket := models.AgeBracketUnknown
	if m := agePattern.FindStringSubmatch(text); m != nil {
		age, err := strconv.Atoi(m[1])
		if err == nil {
			for _, b := range ageBrackets {
				if age >= b.min && age <= b.max {
					bracket = b.label
					break
				}
			}
		}
	}
	slog.Debug("mood.EstimateAgeBracket: text checked", "bracket", bracket)
	return bracket
}

// EnhanceWithEmoji appends one emoji drawn uniformly at random from the
// mood's emoji set. Unrecognized moods fall back to the neutral set.
func EnhanceWithEmoji(text string, mood models.Mood) string {
	emojis, ok := emojiResponses[mood]
	if !ok {
		emojis = emojiResponses[models.MoodNeutral]
	}
	return text + " " + emojis[rand.IntN(len(emojis))]
}

// tokenize lowercases the text and splits it into alphabetic words,
// stripping punctuation so "great!" scores like "great".
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '\''
	})
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
