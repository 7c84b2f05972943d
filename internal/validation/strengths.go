package validation

import (
	"fmt"
	"strings"

	"github.com/HendryAvila/sdd-quill/internal/entity"
)

// strengthCheck inspects an accepted payload and returns zero or more
// positive reinforcement messages. Purely advisory, never affects
// Passed.
type strengthCheck func(data map[string]any) []string

// strengthChecks is the fixed (entity type, step) lookup of advisory
// checks. Sparse on purpose: only steps where positive feedback has a
// concrete trigger get an entry.
var strengthChecks = map[entity.Type]map[string]strengthCheck{
	entity.Requirement: {
		"problem_identification": func(data map[string]any) []string {
			if s, ok := data["problem"].(string); ok && len(s) >= 80 {
				return []string{"Well-developed problem statement, with enough context for a reviewer who wasn't in the room."}
			}
			return nil
		},
		"priority_assignment": func(data map[string]any) []string {
			if p, ok := data["priority"].(string); ok {
				return []string{fmt.Sprintf("Priority set to %q; downstream planning can now order this requirement.", p)}
			}
			return nil
		},
		"acceptance_criteria_list": countStrength("descriptions", "acceptance criteria"),
	},
	entity.Component: {
		"capabilities_list": countStrength("descriptions", "capabilities"),
		"interfaces_list":   countStrength("descriptions", "interfaces"),
	},
	entity.Plan: {
		"success_metrics": func(data map[string]any) []string {
			if s, ok := data["metrics"].(string); ok && strings.ContainsAny(s, "0123456789%") {
				return []string{"Metrics are quantified, so success can be checked, not argued."}
			}
			return nil
		},
		"phases_list": countStrength("descriptions", "phases"),
	},
	entity.Constitution: {
		"articles_list": countStrength("descriptions", "articles"),
	},
	entity.Decision: {
		"rationale_statement": func(data map[string]any) []string {
			if s, ok := data["rationale"].(string); ok {
				lower := strings.ToLower(s)
				for _, marker := range []string{"because", "so that", "prevents", "enables"} {
					if strings.Contains(lower, marker) {
						return []string{"Rationale explains the why; this decision can be revisited with its original reasoning intact."}
					}
				}
			}
			return nil
		},
	},
}

// countStrength reports how many items were listed for a collection
// answer.
func countStrength(field, noun string) strengthCheck {
	return func(data map[string]any) []string {
		n := 0
		switch v := data[field].(type) {
		case []any:
			n = len(v)
		case []string:
			n = len(v)
		}
		if n == 0 {
			return nil
		}
		return []string{fmt.Sprintf("%d %s listed; each will get its own guided sub-flow.", n, noun)}
	}
}

// strengthsFor runs the advisory checks registered for (t, stepID).
func strengthsFor(t entity.Type, stepID string, data map[string]any) []string {
	checks, ok := strengthChecks[t]
	if !ok {
		return nil
	}
	check, ok := checks[stepID]
	if !ok {
		return nil
	}
	return check(data)
}
