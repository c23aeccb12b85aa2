package journal

import (
	"regexp"
	"strings"
)

// shortEntryThreshold is the trimmed length below which an entry screens as quiet.
const shortEntryThreshold = 15

var (
	safetyRedFlags = []string{
		"end it all", "kill myself", "suicide", "suicidal", "worthless", "can't go on",
		"hopeless", "despair", "give up", "hurt myself",
	}
	techKeywords = []string{
		"react", "javascript", "python", "html", "api", "component", "code",
		"bug", "error", "debug", "function", "variable",
	}
	instructionPhrases = []string{
		"write me", "how do i", "generate", "make this", "summarise", "explain",
		"create a", "give me", "tell me about",
	}
	// Tech words and instruction phrases match whole words only, so "decoded"
	// does not hit "code". Safety flags stay substring matches so that
	// "hopelessly" still hits "hopeless".
	instructionPattern = wordPattern(append(append([]string{}, techKeywords...), instructionPhrases...))

	quietResponses = map[string]struct{}{
		"ok": {}, "fine": {}, ".": {}, "...": {}, "idk": {}, "nah": {}, "nope": {}, "nothing": {}, "": {},
	}
)

// Screen runs a cheap keyword pre-check on entry. Checks run in priority order:
// safety, then instruction, then quiet. CategoryUnclear means no signal.
//
// The result is only ever a hint; the provider's category is authoritative.
func Screen(entry string) Category {
	trimmed := strings.TrimSpace(entry)
	lower := strings.ToLower(trimmed)

	if containsAny(lower, safetyRedFlags) {
		return CategorySafety
	}
	if instructionPattern.MatchString(lower) {
		return CategoryInstruction
	}
	if _, ok := quietResponses[lower]; ok || len(trimmed) < shortEntryThreshold {
		return CategoryQuiet
	}
	return CategoryUnclear
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func wordPattern(words []string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}
