package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/sdd-quill/internal/audit"
	"github.com/HendryAvila/sdd-quill/internal/drafts"
)

// DeleteTool handles the quill_draft_delete MCP tool.
type DeleteTool struct {
	sessions *drafts.Sessions
	trail    *audit.Trail
}

// NewDeleteTool creates a DeleteTool with its dependencies.
func NewDeleteTool(sessions *drafts.Sessions, trail *audit.Trail) *DeleteTool {
	return &DeleteTool{sessions: sessions, trail: trail}
}

// Definition returns the MCP tool definition for registration.
func (t *DeleteTool) Definition() mcp.Tool {
	return mcp.NewTool("quill_draft_delete",
		mcp.WithDescription(
			"Discard a draft and its in-flight answers. This cannot be undone. "+
				"Finalized entities are not affected.",
		),
		mcp.WithString("draft_id",
			mcp.Required(),
			mcp.Description("The draft to discard."),
		),
	)
}

// Handle processes the quill_draft_delete tool call.
func (t *DeleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	draftID := req.GetString("draft_id", "")

	if !t.sessions.Manager().Delete(draftID) {
		return mcp.NewToolResultError(fmt.Sprintf("draft %q not found (it may have expired)", draftID)), nil
	}
	t.sessions.Release(draftID)

	t.trail.Record(audit.Event{
		DraftID: draftID,
		Kind:    audit.KindDraftDeleted,
	})

	return mcp.NewToolResultText(fmt.Sprintf("Draft `%s` discarded.", draftID)), nil
}
