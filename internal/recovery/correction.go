// internal/recovery/correction.go
package recovery

import (
	"fmt"
	"strings"
)

// ExplicitSpellings asks the backend to render flagged words correctly.
func ExplicitSpellings(words []string) string {
	if len(words) == 0 {
		return ""
	}
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		quoted = append(quoted, fmt.Sprintf("%q", w))
	}
	return "Spell these words exactly as written: " + strings.Join(quoted, ", ") + "."
}

// LetterByLetterSpelling spells each word out character by character, the
// strongest correction instruction generative text renderers respond to.
func LetterByLetterSpelling(words []string) string {
	if len(words) == 0 {
		return ""
	}
	parts := make([]string, 0, len(words))
	for _, w := range words {
		letters := make([]string, 0, len(w))
		for _, r := range strings.ToUpper(w) {
			letters = append(letters, string(r))
		}
		parts = append(parts, fmt.Sprintf("%q is spelled %s", w, strings.Join(letters, "-")))
	}
	return "CRITICAL SPELLING: " + strings.Join(parts, "; ") + "."
}

// RepeatCriticalWords repeats each word to raise its sampling weight.
func RepeatCriticalWords(words []string, times int) string {
	if len(words) == 0 || times < 1 {
		return ""
	}
	parts := make([]string, 0, len(words))
	for _, w := range words {
		repeated := make([]string, times)
		for i := range repeated {
			repeated[i] = w
		}
		parts = append(parts, strings.Join(repeated, " "))
	}
	return "The exact words to render: " + strings.Join(parts, ", ") + "."
}

// ApplyToPrompt folds a strategy's prompt modifications into the prompt and
// returns the adjusted text plus the merged negative prompt.
func ApplyToPrompt(prompt string, st *Strategy) (string, string) {
	out := strings.TrimSpace(prompt)
	for _, addition := range st.PromptAdditions {
		if addition == "" {
			continue
		}
		out = out + "\n" + addition
	}

	negative := st.Parameters.NegativePrompt
	if len(st.NegativePrompts) > 0 {
		merged := strings.Join(st.NegativePrompts, ", ")
		if negative != "" {
			negative = negative + ", " + merged
		} else {
			negative = merged
		}
	}
	return out, negative
}
