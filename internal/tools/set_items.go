package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/sdd-quill/internal/drafts"
	"github.com/HendryAvila/sdd-quill/internal/validation"
)

// SetItemsTool handles the quill_draft_set_items MCP tool.
// It answers a list field's collection question and materializes one
// per-item sub-flow per description. The item count is fixed once set.
type SetItemsTool struct {
	sessions *drafts.Sessions
}

// NewSetItemsTool creates a SetItemsTool with its dependencies.
func NewSetItemsTool(sessions *drafts.Sessions) *SetItemsTool {
	return &SetItemsTool{sessions: sessions}
}

// Definition returns the MCP tool definition for registration.
func (t *SetItemsTool) Definition() mcp.Tool {
	return mcp.NewTool("quill_draft_set_items",
		mcp.WithDescription(
			"Set the item descriptions for a list-valued field, materializing one guided sub-flow per item. "+
				"Callable once per field; the item count cannot change afterwards. "+
				"Each item then gets its own questions plus a structured finalization via quill_draft_finalize_item.",
		),
		mcp.WithString("draft_id",
			mcp.Required(),
			mcp.Description("The draft whose list field to populate."),
		),
		mcp.WithString("field",
			mcp.Required(),
			mcp.Description("The declared list field name, e.g. 'articles' or 'acceptance_criteria'."),
		),
		mcp.WithString("descriptions",
			mcp.Required(),
			mcp.Description("JSON array of short item descriptions, one per item. "+
				"Example: '[\"No secrets in source\", \"All writes audited\"]'."),
		),
	)
}

// Handle processes the quill_draft_set_items tool call.
func (t *SetItemsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	draftID := req.GetString("draft_id", "")
	field := req.GetString("field", "")

	descs, err := parseStringList(req.GetString("descriptions", ""), "descriptions")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ed, err := t.sessions.Drafter(draftID)
	if err != nil {
		return toolError(err)
	}

	a, err := ed.ArrayDrafterFor(field)
	if err != nil {
		return toolError(err)
	}

	// Validate the collection answer against the field's list step.
	res := validation.Validate(ed.Type(), field+"_list", map[string]any{"descriptions": descs})
	t.sessions.Manager().AppendValidation(draftID, res)
	if !res.Passed {
		return mcp.NewToolResultText(renderVerdict(res) + "\nNothing was materialized. Fix the descriptions and call `quill_draft_set_items` again."), nil
	}

	// The descriptions double as the collection question's answer.
	if !a.Collection.Answered() {
		if q := ed.CurrentQuestion(); q == nil || q.ID != a.Collection.ID {
			return mcp.NewToolResultError(fmt.Sprintf(
				"The collection question for %q is not the current question. Answer the pending ones first.", field,
			)), nil
		}
		if _, err := ed.SubmitAnswer(strings.Join(descs, "; ")); err != nil {
			return toolError(err)
		}
	}

	if err := a.SetDescriptions(descs); err != nil {
		return toolError(err)
	}

	d := t.sessions.Sync(draftID, ed)
	if d == nil {
		return mcp.NewToolResultError(fmt.Sprintf("draft %q disappeared while setting items (expired?)", draftID)), nil
	}

	var sb strings.Builder
	sb.WriteString(renderVerdict(res))
	fmt.Fprintf(&sb, "\n%d item(s) materialized for `%s`:\n", len(descs), field)
	for i, desc := range descs {
		fmt.Fprintf(&sb, "  %d. %s\n", i, desc)
	}
	sb.WriteString("\n")
	if next := nextAction(d, ed); next != "" {
		sb.WriteString(next)
	}
	return mcp.NewToolResultText(sb.String()), nil
}
