// Package tools implements the MCP tool handlers for the drafting flow.
//
// Each tool is a struct that receives its dependencies (DIP) and
// exposes a Definition for registration plus a Handle compatible with
// mcp-go's CallToolRequest signature.
//
// Design principles:
//   - SRP: each file = one tool
//   - DIP: tools depend on drafts.Sessions, specstore.Store, and the
//     audit trail, not on concrete wiring
//   - State-machine violations come back as tool errors with a clear
//     cause so the agent can correct course; they are never swallowed
package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/sdd-quill/internal/drafts"
	"github.com/HendryAvila/sdd-quill/internal/steps"
	"github.com/HendryAvila/sdd-quill/internal/validation"
)

// toolError maps the draft engine's error taxonomy onto tool results.
// Expected failures (unknown draft, illegal state, invalid payload) are
// tool errors the agent can react to; anything else propagates as a
// protocol error.
func toolError(err error) (*mcp.CallToolResult, error) {
	var payloadErr *drafts.InvalidPayloadError
	switch {
	case errors.As(err, &payloadErr):
		var sb strings.Builder
		fmt.Fprintf(&sb, "Validation failed for %s:\n", payloadErr.Subject)
		for _, iss := range payloadErr.Issues {
			fmt.Fprintf(&sb, "- [%s] %s\n", iss.Code, iss.Message)
		}
		return mcp.NewToolResultError(sb.String()), nil
	case errors.Is(err, drafts.ErrNotFound), errors.Is(err, drafts.ErrIllegalState):
		return mcp.NewToolResultError(err.Error()), nil
	}
	return nil, err
}

// parseObject parses a JSON object supplied as a string tool parameter.
func parseObject(raw, param string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("'%s' must be a JSON object: %w", param, err)
	}
	return out, nil
}

// parseStringList parses a JSON array of strings supplied as a string
// tool parameter. A bare comma-separated list is accepted as a
// fallback; agents produce both.
func parseStringList(raw, param string) ([]string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("'%s' is required", param)
	}

	if strings.HasPrefix(trimmed, "[") {
		var out []string
		if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
			return nil, fmt.Errorf("'%s' must be a JSON array of strings: %w", param, err)
		}
		return out, nil
	}

	var out []string
	for _, part := range strings.Split(trimmed, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("'%s' must contain at least one entry", param)
	}
	return out, nil
}

// renderQuestion formats a question for the agent, with the draft's
// step position.
func renderQuestion(d *drafts.Draft, q *drafts.Question) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Question `%s` (step %d of %d)\n\n", q.ID, d.CurrentStep, d.TotalSteps)
	fmt.Fprintf(&sb, "%s\n", q.Prompt)
	if q.Guidance != "" {
		fmt.Fprintf(&sb, "\n_Guidance: %s_\n", q.Guidance)
	}
	if q.Optional {
		sb.WriteString("\n(Optional — skip with `quill_draft_skip` if it doesn't apply.)\n")
	}
	return sb.String()
}

// renderVerdict formats a step validation result.
func renderVerdict(res validation.Result) string {
	var sb strings.Builder
	if res.Passed {
		fmt.Fprintf(&sb, "✅ Step `%s` passed validation.\n", res.Step)
		for _, s := range res.Strengths {
			fmt.Fprintf(&sb, "- 💪 %s\n", s)
		}
		return sb.String()
	}

	fmt.Fprintf(&sb, "❌ Step `%s` failed validation.\n\n**Issues:**\n", res.Step)
	for _, iss := range res.Issues {
		fmt.Fprintf(&sb, "- %s\n", iss)
	}
	if len(res.Suggestions) > 0 {
		sb.WriteString("\n**Suggestions:**\n")
		for _, tip := range res.Suggestions {
			fmt.Fprintf(&sb, "- %s\n", tip)
		}
	}
	return sb.String()
}

// mainStepFor looks up the main step definition whose question id
// matches. Main question ids are their step ids.
func mainStepFor(ed *drafts.EntityDrafter, questionID string) (steps.Definition, bool) {
	for _, def := range steps.MainSteps(ed.Type()) {
		if def.ID == questionID {
			return def, true
		}
	}
	return steps.Definition{}, false
}

// nextAction tells the agent what the drafting flow needs next: the
// pending question, a set-items call, an item finalization, or the
// final finalize.
func nextAction(d *drafts.Draft, ed *drafts.EntityDrafter) string {
	if q := ed.CurrentQuestion(); q != nil {
		return renderQuestion(d, q)
	}

	for _, a := range ed.ArrayDrafters() {
		if !a.Described() {
			return fmt.Sprintf(
				"## Next: set item descriptions\n\nThe collection question for `%s` is answered. "+
					"Call `quill_draft_set_items` with the field name and a JSON array of short item descriptions.",
				a.FieldName(),
			)
		}
		for _, it := range a.Items {
			if !it.Finalized() {
				return fmt.Sprintf(
					"## Next: finalize item %d of `%s`\n\nIts questions are answered. "+
						"Call `quill_draft_finalize_item` with the structured data for %q.",
					it.Index, a.FieldName(), it.Description,
				)
			}
		}
	}

	if ed.IsComplete() && !ed.Finalized() {
		return "## Ready to finalize\n\nAll questions are answered and all items are finalized. " +
			"Call `quill_draft_finalize` to produce the entity."
	}
	return ""
}
