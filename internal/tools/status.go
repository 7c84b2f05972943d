package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/sdd-quill/internal/audit"
	"github.com/HendryAvila/sdd-quill/internal/drafts"
)

// StatusTool handles the quill_draft_status MCP tool.
type StatusTool struct {
	sessions *drafts.Sessions
	trail    *audit.Trail
}

// NewStatusTool creates a StatusTool with its dependencies.
func NewStatusTool(sessions *drafts.Sessions, trail *audit.Trail) *StatusTool {
	return &StatusTool{sessions: sessions, trail: trail}
}

// Definition returns the MCP tool definition for registration.
func (t *StatusTool) Definition() mcp.Tool {
	return mcp.NewTool("quill_draft_status",
		mcp.WithDescription(
			"Report a draft's progress: step position, question resolution, list field states, "+
				"accumulated data, recent validation verdicts, and audit events.",
		),
		mcp.WithString("draft_id",
			mcp.Required(),
			mcp.Description("The draft to report on."),
		),
	)
}

// Handle processes the quill_draft_status tool call.
func (t *StatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	draftID := req.GetString("draft_id", "")

	ed, err := t.sessions.Drafter(draftID)
	if err != nil {
		return toolError(err)
	}
	d := t.sessions.Manager().Get(draftID)
	if d == nil {
		return mcp.NewToolResultError(fmt.Sprintf("draft %q not found (it may have expired)", draftID)), nil
	}

	resolved, total := ed.AnsweredCount()

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Draft `%s`\n\n", d.ID)
	fmt.Fprintf(&sb, "**Type:** %s\n", d.Type)
	fmt.Fprintf(&sb, "**Step:** %d of %d\n", d.CurrentStep, d.TotalSteps)
	fmt.Fprintf(&sb, "**Questions resolved:** %d of %d materialized\n", resolved, total)
	fmt.Fprintf(&sb, "**Complete:** %v\n", ed.IsComplete())
	fmt.Fprintf(&sb, "**Expires:** %s\n\n", d.ExpiresAt.UTC().Format("2006-01-02 15:04 MST"))

	sb.WriteString("## List Fields\n\n")
	for _, a := range ed.ArrayDrafters() {
		switch {
		case !a.Collection.Resolved():
			fmt.Fprintf(&sb, "- `%s`: awaiting collection answer\n", a.FieldName())
		case !a.Described():
			fmt.Fprintf(&sb, "- `%s`: awaiting item descriptions\n", a.FieldName())
		default:
			done := 0
			for _, it := range a.Items {
				if it.Finalized() {
					done++
				}
			}
			fmt.Fprintf(&sb, "- `%s`: %d of %d items finalized\n", a.FieldName(), done, len(a.Items))
		}
	}

	if data, err := json.MarshalIndent(d.Data, "", "  "); err == nil {
		fmt.Fprintf(&sb, "\n## Data\n\n```json\n%s\n```\n", data)
	}

	if n := len(d.ValidationResults); n > 0 {
		last := d.ValidationResults[n-1]
		fmt.Fprintf(&sb, "\n## Validation\n\n%d verdict(s) recorded. Last:\n\n%s", n, renderVerdict(last))
	}

	if events, err := t.trail.ByDraft(draftID, 10); err == nil && len(events) > 0 {
		sb.WriteString("\n## Audit Events\n\n")
		for _, e := range events {
			fmt.Fprintf(&sb, "- %s %s", e.CreatedAt, e.Kind)
			if e.Field != "" {
				fmt.Fprintf(&sb, " (%s)", e.Field)
			}
			sb.WriteString("\n")
		}
	}

	return mcp.NewToolResultText(sb.String()), nil
}
