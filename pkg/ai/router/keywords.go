package router

import (
	"regexp"
	"strings"
)

var (
	cancelKeywords      = map[string]bool{"cancel": true, "exit": true, "stop": true}
	affirmativeKeywords = map[string]bool{"yes": true, "confirm": true}

	// Literal commands that start an application without the apply+job pair.
	startCommands = map[string]bool{
		"apply":             true,
		"/apply":            true,
		"start application": true,
		"new application":   true,
	}

	wordPattern = regexp.MustCompile(`[a-z0-9']+`)
)

// Normalize lower-cases text, trims it and drops trailing sentence punctuation.
func Normalize(text string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(text)), ".!? ")
}

func Words(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

func containsWord(words []string, w string) bool {
	for _, x := range words {
		if x == w {
			return true
		}
	}
	return false
}

func IsCancel(normalized string) bool {
	return cancelKeywords[normalized]
}

func IsAffirmative(normalized string) bool {
	return affirmativeKeywords[normalized]
}

// IsStartTrigger matches text mentioning both applying and a job, or a literal start command.
func IsStartTrigger(normalized string) bool {
	if startCommands[normalized] {
		return true
	}
	return strings.Contains(normalized, "apply") && strings.Contains(normalized, "job")
}

// IsMetaQuestion flags input that looks like a question about the form rather
// than a value for the pending field.
func IsMetaQuestion(text string) bool {
	words := Words(text)
	if len(words) > 6 {
		return true
	}
	lower := strings.ToLower(text)
	return strings.Contains(lower, "tell me") || containsWord(words, "what")
}
