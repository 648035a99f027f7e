// Package safety scrubs profanity and PII from message text before it enters
// the decision pipeline. Filtering is a pure function: no side effects, and
// running it on its own output changes nothing.
package safety

import (
	"regexp"
	"sort"
	"strings"
)

// Result is the outcome of filtering one piece of text.
type Result struct {
	// Sanitized is the text with profanity masked and PII replaced.
	Sanitized string `json:"sanitized"`

	// Blocked is true iff at least one profanity match was found. PII
	// redaction alone does not block.
	Blocked bool `json:"blocked"`

	// Reasons lists what was scrubbed: "profanity:<word>" per distinct
	// matched word, plus "pii:email" / "pii:phone" when patterns matched.
	Reasons []string `json:"reasons,omitempty"`
}

// profanityWords is the fixed wordlist scanned for whole-word matches.
var profanityWords = []string{
	"damn",
	"hell",
	"crap",
	"bastard",
	"bullshit",
	"shit",
	"ass",
	"asshole",
	"bitch",
	"fuck",
}

var (
	profanityRe = regexp.MustCompile(`(?i)\b(` + strings.Join(profanityWords, "|") + `)\b`)
	emailRe     = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneRe     = regexp.MustCompile(`(\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
)

// Apply scrubs text and reports what was found. Profanity matches are
// replaced with equal-length masks; email and phone matches are replaced
// with placeholders.
func Apply(text string) Result {
	res := Result{Sanitized: text}

	matched := map[string]bool{}
	res.Sanitized = profanityRe.ReplaceAllStringFunc(res.Sanitized, func(m string) string {
		matched[strings.ToLower(m)] = true
		return strings.Repeat("*", len(m))
	})
	if len(matched) > 0 {
		res.Blocked = true
		words := make([]string, 0, len(matched))
		for w := range matched {
			words = append(words, w)
		}
		sort.Strings(words)
		for _, w := range words {
			res.Reasons = append(res.Reasons, "profanity:"+w)
		}
	}

	if emailRe.MatchString(res.Sanitized) {
		res.Sanitized = emailRe.ReplaceAllString(res.Sanitized, "[email]")
		res.Reasons = append(res.Reasons, "pii:email")
	}
	if phoneRe.MatchString(res.Sanitized) {
		res.Sanitized = phoneRe.ReplaceAllString(res.Sanitized, "[phone]")
		res.Reasons = append(res.Reasons, "pii:phone")
	}

	return res
}
