package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/sdd-quill/internal/drafts"
	"github.com/HendryAvila/sdd-quill/internal/validation"
)

// AnswerTool handles the quill_draft_answer MCP tool, the workhorse of
// the drafting flow. It validates the answer against the current step's
// schema before recording it: a failing answer leaves the question
// pending so the agent can improve and resubmit, since a question is
// answered exactly once.
type AnswerTool struct {
	sessions *drafts.Sessions
}

// NewAnswerTool creates an AnswerTool with its dependencies.
func NewAnswerTool(sessions *drafts.Sessions) *AnswerTool {
	return &AnswerTool{sessions: sessions}
}

// Definition returns the MCP tool definition for registration.
func (t *AnswerTool) Definition() mcp.Tool {
	return mcp.NewTool("quill_draft_answer",
		mcp.WithDescription(
			"Submit the answer to the draft's current pending question. "+
				"The answer is validated against the step's schema first; on failure the question "+
				"stays pending and you get issues plus coaching suggestions; improve the answer and resubmit. "+
				"On success the flow advances to the next question. "+
				"Collection questions for list fields are answered via quill_draft_set_items instead.",
		),
		mcp.WithString("draft_id",
			mcp.Required(),
			mcp.Description("The draft to answer, from quill_draft_start."),
		),
		mcp.WithString("answer",
			mcp.Required(),
			mcp.Description("The substantive answer to the current question. Real content, not placeholders."),
		),
	)
}

// Handle processes the quill_draft_answer tool call.
func (t *AnswerTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	draftID := req.GetString("draft_id", "")
	answer := req.GetString("answer", "")

	if strings.TrimSpace(answer) == "" {
		return mcp.NewToolResultError("'answer' is required: provide the actual answer content"), nil
	}

	ed, err := t.sessions.Drafter(draftID)
	if err != nil {
		return toolError(err)
	}

	q := ed.CurrentQuestion()
	if q == nil {
		d := t.sessions.Manager().Get(draftID)
		if d == nil {
			return mcp.NewToolResultError(fmt.Sprintf("draft %q not found", draftID)), nil
		}
		if hint := nextAction(d, ed); hint != "" {
			return mcp.NewToolResultError("No question is pending.\n\n" + hint), nil
		}
		return mcp.NewToolResultError("No question is pending. The draft may already be finalized."), nil
	}

	stepDef, field, isCollection := stepForQuestion(ed, q)
	if isCollection {
		return mcp.NewToolResultError(fmt.Sprintf(
			"The current question %q is the collection question for list field %q. "+
				"Call `quill_draft_set_items` with the item descriptions instead of answering free-text here.",
			q.ID, field,
		)), nil
	}

	// Gate on step validation before recording; a recorded answer is
	// permanent. Item-scoped free-text questions have no step schema of
	// their own; their real gate is the structured item finalization.
	var verdict string
	if stepDef != "" {
		res := validation.Validate(ed.Type(), stepDef, map[string]any{field: answer})
		t.sessions.Manager().AppendValidation(draftID, res)
		if !res.Passed {
			return mcp.NewToolResultText(renderVerdict(res) + "\nThe question is still pending. Improve the answer and call `quill_draft_answer` again."), nil
		}
		verdict = renderVerdict(res)
	} else {
		verdict = fmt.Sprintf("✅ Answer recorded for `%s`.\n", q.ID)
	}

	if _, err := ed.SubmitAnswer(answer); err != nil {
		return toolError(err)
	}

	d := t.sessions.Sync(draftID, ed)
	if d == nil {
		return mcp.NewToolResultError(fmt.Sprintf("draft %q disappeared while answering (expired?)", draftID)), nil
	}

	var sb strings.Builder
	sb.WriteString(verdict)
	sb.WriteString("\n")
	if next := nextAction(d, ed); next != "" {
		sb.WriteString(next)
	} else {
		sb.WriteString("All questions are resolved.")
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// stepForQuestion maps the current question back to its step id and
// answer field. Main questions use the question id as the step id; item
// questions validate against the field's item step; collection
// questions are flagged so the caller redirects to set_items.
func stepForQuestion(ed *drafts.EntityDrafter, q *drafts.Question) (stepID, field string, isCollection bool) {
	for _, a := range ed.ArrayDrafters() {
		if a.Collection.ID == q.ID {
			return a.FieldName() + "_list", a.FieldName(), true
		}
	}
	if def, ok := mainStepFor(ed, q.ID); ok {
		return def.ID, def.Field, false
	}
	// Item-scoped free-text question: validated loosely as its answer
	// feeds the later structured finalization, which is the real gate.
	return "", "", false
}
