package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/sdd-quill/internal/drafts"
)

// SkipTool handles the quill_draft_skip MCP tool.
type SkipTool struct {
	sessions *drafts.Sessions
}

// NewSkipTool creates a SkipTool with its dependencies.
func NewSkipTool(sessions *drafts.Sessions) *SkipTool {
	return &SkipTool{sessions: sessions}
}

// Definition returns the MCP tool definition for registration.
func (t *SkipTool) Definition() mcp.Tool {
	return mcp.NewTool("quill_draft_skip",
		mcp.WithDescription(
			"Skip an optional question in a draft. "+
				"Only questions marked optional can be skipped; skipping a required question "+
				"is rejected, not silently ignored.",
		),
		mcp.WithString("draft_id",
			mcp.Required(),
			mcp.Description("The draft containing the question."),
		),
		mcp.WithString("question_id",
			mcp.Required(),
			mcp.Description("The id of the question to skip, as shown in the question header."),
		),
	)
}

// Handle processes the quill_draft_skip tool call.
func (t *SkipTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	draftID := req.GetString("draft_id", "")
	questionID := req.GetString("question_id", "")

	ed, err := t.sessions.Drafter(draftID)
	if err != nil {
		return toolError(err)
	}

	if err := ed.SkipAnswer(questionID); err != nil {
		return toolError(err)
	}

	d := t.sessions.Sync(draftID, ed)
	if d == nil {
		return mcp.NewToolResultError(fmt.Sprintf("draft %q disappeared while skipping (expired?)", draftID)), nil
	}

	response := fmt.Sprintf("Question `%s` skipped.\n\n", questionID)
	if next := nextAction(d, ed); next != "" {
		response += next
	} else {
		response += "All questions are resolved."
	}
	return mcp.NewToolResultText(response), nil
}
