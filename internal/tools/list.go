package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/sdd-quill/internal/drafts"
	"github.com/HendryAvila/sdd-quill/internal/entity"
)

// ListTool handles the quill_draft_list MCP tool.
type ListTool struct {
	sessions *drafts.Sessions
}

// NewListTool creates a ListTool with its dependencies.
func NewListTool(sessions *drafts.Sessions) *ListTool {
	return &ListTool{sessions: sessions}
}

// Definition returns the MCP tool definition for registration.
func (t *ListTool) Definition() mcp.Tool {
	return mcp.NewTool("quill_draft_list",
		mcp.WithDescription(
			"List active (non-expired) drafts, oldest first, optionally filtered by entity type.",
		),
		mcp.WithString("type",
			mcp.Description("Optional entity type filter. Omit to list every draft."),
			mcp.Enum("requirement", "component", "plan", "constitution", "decision"),
		),
	)
}

// Handle processes the quill_draft_list tool call.
func (t *ListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := entity.Type(req.GetString("type", ""))
	if filter != "" {
		if err := entity.ValidateType(filter); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	list := t.sessions.Manager().List(filter)
	if len(list) == 0 {
		if filter != "" {
			return mcp.NewToolResultText(fmt.Sprintf("No active %s drafts.", filter)), nil
		}
		return mcp.NewToolResultText("No active drafts."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Active Drafts (%d)\n\n", len(list))
	for _, d := range list {
		fmt.Fprintf(&sb, "- `%s` — %s, step %d/%d, expires %s\n",
			d.ID, d.Type, d.CurrentStep, d.TotalSteps,
			d.ExpiresAt.UTC().Format("2006-01-02 15:04 MST"))
	}
	sb.WriteString("\nUse quill_draft_status for detail on any draft.")
	return mcp.NewToolResultText(sb.String()), nil
}
