package services

import "strings"

// IntentClassifier decides whether a user message confirms a pending plan
// activation. Kept behind an interface so the keyword heuristic can be
// swapped for a real classifier without touching the orchestrator.
type IntentClassifier interface {
	IsConfirmation(text string) bool
}

// DefaultConfirmationKeywords is the multilingual keyword set the app ships
// with (English + Spanish).
var DefaultConfirmationKeywords = []string{
	"yes", "sure", "please", "do it", "send", "si", "sí", "claro",
	"envia", "envía", "dale", "ok", "confirm", "bueno",
}

var negationTokens = map[string]bool{
	"no": true, "not": true, "don't": true, "dont": true,
	"never": true, "nunca": true, "tampoco": true,
}

// KeywordIntentClassifier matches confirmation keywords on word boundaries
// and refuses when the message carries a negation token, so "not sure" is not
// read as consent. Still a heuristic: phrasing like "ok, maybe later" will
// misclassify.
type KeywordIntentClassifier struct {
	keywords []string
}

func NewKeywordIntentClassifier(keywords []string) *KeywordIntentClassifier {
	if len(keywords) == 0 {
		keywords = DefaultConfirmationKeywords
	}
	return &KeywordIntentClassifier{keywords: keywords}
}

func (c *KeywordIntentClassifier) IsConfirmation(text string) bool {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return false
	}

	for _, tok := range tokens {
		if negationTokens[tok] {
			return false
		}
	}

	joined := " " + strings.Join(tokens, " ") + " "
	for _, kw := range c.keywords {
		if strings.Contains(joined, " "+kw+" ") {
			return true
		}
	}
	return false
}

// tokenize lowercases and splits on everything that is not a letter, keeping
// apostrophes so "don't" survives as one token.
func tokenize(text string) []string {
	lower := strings.ToLower(text)
	return strings.FieldsFunc(lower, func(r rune) bool {
		if r == '\'' {
			return false
		}
		return !isLetter(r)
	})
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 127
}
