package services

import "testing"

func TestKeywordIntentClassifier(t *testing.T) {
	c := NewKeywordIntentClassifier(nil)

	confirmations := []string{
		"yes",
		"Yes, do it",
		"Sí, dale!",
		"claro que si",
		"ok send it",
		"Bueno, envía el plan",
		"please",
	}
	for _, text := range confirmations {
		if !c.IsConfirmation(text) {
			t.Errorf("IsConfirmation(%q) = false, want true", text)
		}
	}

	rejections := []string{
		"",
		"not sure",
		"no thanks",
		"don't send it",
		"nunca, dale otra vuelta",
		"what would the plan look like?",
		"surely this needs more detail", // "surely" is not "sure"
		"yessir",
	}
	for _, text := range rejections {
		if c.IsConfirmation(text) {
			t.Errorf("IsConfirmation(%q) = true, want false", text)
		}
	}
}

func TestKeywordIntentClassifierCustomKeywords(t *testing.T) {
	c := NewKeywordIntentClassifier([]string{"ship it"})
	if !c.IsConfirmation("Ship it already") {
		t.Error("custom phrase keyword should match")
	}
	if c.IsConfirmation("yes") {
		t.Error("default keywords should not apply when a custom set is given")
	}
}
