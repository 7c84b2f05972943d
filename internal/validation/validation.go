// Package validation implements the step validator: the structured
// verdict layer between an answer payload and the step schemas.
//
// Validate is pure and safe for concurrent use: it reads only the
// static registries. Failures come back as values (Result.Passed=false
// with issues and coaching suggestions), never as errors: the calling
// agent is expected to react programmatically, not crash.
package validation

import (
	"fmt"
	"strings"

	"github.com/HendryAvila/sdd-quill/internal/entity"
	"github.com/HendryAvila/sdd-quill/internal/schema"
)

// Result is the verdict for one step's answer payload.
type Result struct {
	Step        string   `json:"step"`
	Passed      bool     `json:"passed"`
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
	Strengths   []string `json:"strengths"`
}

// Validate checks data against the schema registered for (entityType,
// stepID). On success it runs the advisory strength checks for that
// step; on failure each schema issue becomes one issue message plus a
// best-effort coaching suggestion. Any panic from a misbehaving
// refinement surfaces as a single generic issue rather than crashing
// the server.
func Validate(t entity.Type, stepID string, data map[string]any) (res Result) {
	res = Result{Step: stepID}

	defer func() {
		if r := recover(); r != nil {
			res = Result{
				Step:   stepID,
				Passed: false,
				Issues: []string{fmt.Sprintf("internal validation error: %v", r)},
			}
		}
	}()

	s, err := schema.StepSchema(t, stepID)
	if err != nil {
		res.Issues = append(res.Issues, err.Error())
		return res
	}

	accepted, issues := s.Parse(data)
	if len(issues) == 0 {
		res.Passed = true
		res.Strengths = strengthsFor(t, stepID, accepted)
		return res
	}

	for _, iss := range issues {
		res.Issues = append(res.Issues, iss.Message)
		if tip := suggestionFor(iss); tip != "" {
			res.Suggestions = append(res.Suggestions, tip)
		}
	}
	return res
}

// suggestionFor maps an issue to a coaching tip by its code. Refinement
// issues are keyword-sniffed for their category since the message is
// the only thing the schema layer exposes.
func suggestionFor(iss schema.Issue) string {
	switch iss.Code {
	case schema.CodeTooShort:
		return fmt.Sprintf("Elaborate on %q; short answers usually hide unstated assumptions. Add the who, when, and observable effect.", iss.Field)
	case schema.CodeTooFewItems:
		return fmt.Sprintf("Add more items to %q. List each one as its own short description; you will detail them one at a time.", iss.Field)
	case schema.CodePattern, schema.CodeInvalidEnum:
		return fmt.Sprintf("Fix the format of %q to match the expected values, then resubmit.", iss.Field)
	case schema.CodeRefinement:
		lower := strings.ToLower(iss.Message)
		switch {
		case strings.Contains(lower, "rationale"):
			return fmt.Sprintf("Explain the why behind %q; a statement without reasoning cannot be revisited later.", iss.Field)
		case strings.Contains(lower, "implementation"):
			return fmt.Sprintf("Keep %q at the behavior level; technology choices belong in a design decision, not here.", iss.Field)
		case strings.Contains(lower, "vague"):
			return fmt.Sprintf("Replace subjective wording in %q with something a reviewer could verify.", iss.Field)
		case strings.Contains(lower, "measurable"):
			return fmt.Sprintf("Make %q measurable: add a number, percentage, or a condition that can be checked.", iss.Field)
		}
		return fmt.Sprintf("Revisit %q, it did not pass the quality check: %s", iss.Field, iss.Message)
	case schema.CodeRequired:
		return fmt.Sprintf("Provide a value for %q; it cannot be skipped at this step.", iss.Field)
	}
	return ""
}
