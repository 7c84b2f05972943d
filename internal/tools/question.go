package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/sdd-quill/internal/drafts"
)

// QuestionTool handles the quill_draft_question MCP tool.
type QuestionTool struct {
	sessions *drafts.Sessions
}

// NewQuestionTool creates a QuestionTool with its dependencies.
func NewQuestionTool(sessions *drafts.Sessions) *QuestionTool {
	return &QuestionTool{sessions: sessions}
}

// Definition returns the MCP tool definition for registration.
func (t *QuestionTool) Definition() mcp.Tool {
	return mcp.NewTool("quill_draft_question",
		mcp.WithDescription(
			"Show the draft's current pending question, or the next required action "+
				"when no question is pending (set items, finalize an item, or finalize the draft). "+
				"Useful after reconnecting or when resuming a draft across sessions.",
		),
		mcp.WithString("draft_id",
			mcp.Required(),
			mcp.Description("The draft to inspect."),
		),
	)
}

// Handle processes the quill_draft_question tool call.
func (t *QuestionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	draftID := req.GetString("draft_id", "")

	ed, err := t.sessions.Drafter(draftID)
	if err != nil {
		return toolError(err)
	}

	d := t.sessions.Manager().Get(draftID)
	if d == nil {
		return mcp.NewToolResultError(fmt.Sprintf("draft %q not found (it may have expired)", draftID)), nil
	}

	if next := nextAction(d, ed); next != "" {
		return mcp.NewToolResultText(next), nil
	}
	return mcp.NewToolResultText("Nothing is pending; the draft is finalized."), nil
}
