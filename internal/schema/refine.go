package schema

import (
	"strings"
)

// Refinement helpers shared across step and item schemas. Each one
// returns a message naming its category ("rationale", "implementation",
// "vague", "measurable"); the step validator keyword-sniffs these
// messages to pick a coaching tip, so the category word must survive
// rewording.

// vagueWords are subjective terms that make a statement unverifiable.
// This list is the pluggable quality heuristic, not a fixed contract;
// tune it without touching the validation flow.
var vagueWords = []string{
	"user-friendly", "easy", "fast", "simple", "intuitive",
	"nice", "good", "better", "efficient", "seamless", "robust",
}

// RejectVague flags subjective language that cannot be verified.
func RejectVague(v string) string {
	lower := strings.ToLower(v)
	for _, w := range vagueWords {
		if containsWord(lower, w) {
			return "avoid vague wording like " + quote(w) + "; state the observable behavior instead"
		}
	}
	return ""
}

// rationaleMarkers are phrases that signal the answer explains WHY.
var rationaleMarkers = []string{
	"because", "so that", "in order to", "enables", "prevents",
	"reduces", "avoids", "allows", "due to",
}

// RequireRationale flags answers that state a position without reasoning.
func RequireRationale(v string) string {
	lower := strings.ToLower(v)
	for _, m := range rationaleMarkers {
		if strings.Contains(lower, m) {
			return ""
		}
	}
	return "missing a rationale: explain why, not just what"
}

// implementationWords are technology terms that leak implementation
// detail into what should stay a problem/solution statement.
var implementationWords = []string{
	"database", "sql", "class", "function", "microservice",
	"framework", "library", "docker", "kubernetes",
}

// RejectImplementationDetail flags solution statements that prescribe
// technology instead of behavior.
func RejectImplementationDetail(v string) string {
	lower := strings.ToLower(v)
	for _, w := range implementationWords {
		if containsWord(lower, w) {
			return "contains implementation detail (" + quote(w) + "); describe the behavior, defer technology choices"
		}
	}
	return ""
}

// RequireMeasurable flags success/acceptance statements with no
// quantifiable element (digit, percentage, or duration unit).
func RequireMeasurable(v string) string {
	lower := strings.ToLower(v)
	for _, r := range lower {
		if r >= '0' && r <= '9' {
			return ""
		}
	}
	for _, unit := range []string{"%", "percent", "ms", "second", "minute", "hour", "day", "all ", "every ", "never ", "always "} {
		if strings.Contains(lower, unit) {
			return ""
		}
	}
	return "not measurable: include a number, percentage, or concrete condition"
}

// containsWord reports whether lower contains w as a whole word.
func containsWord(lower, w string) bool {
	idx := strings.Index(lower, w)
	for idx >= 0 {
		before := idx == 0 || !isAlnum(lower[idx-1])
		afterIdx := idx + len(w)
		after := afterIdx >= len(lower) || !isAlnum(lower[afterIdx])
		if before && after {
			return true
		}
		next := strings.Index(lower[idx+1:], w)
		if next < 0 {
			return false
		}
		idx = idx + 1 + next
	}
	return false
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

// quote quotes a word for inclusion in a message.
func quote(w string) string {
	return "\"" + w + "\""
}
