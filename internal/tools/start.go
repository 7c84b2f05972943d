package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/sdd-quill/internal/audit"
	"github.com/HendryAvila/sdd-quill/internal/drafts"
	"github.com/HendryAvila/sdd-quill/internal/entity"
)

// StartTool handles the quill_draft_start MCP tool.
// It creates a draft record plus its live drafter and returns the
// first question of the type's flow.
type StartTool struct {
	sessions *drafts.Sessions
	trail    *audit.Trail
}

// NewStartTool creates a StartTool with its dependencies.
func NewStartTool(sessions *drafts.Sessions, trail *audit.Trail) *StartTool {
	return &StartTool{sessions: sessions, trail: trail}
}

// Definition returns the MCP tool definition for registration.
func (t *StartTool) Definition() mcp.Tool {
	return mcp.NewTool("quill_draft_start",
		mcp.WithDescription(
			"Start drafting a planning entity through a guided question flow. "+
				"Creates a draft that expires 24 hours after creation and returns the first question. "+
				"Answer questions one at a time with quill_draft_answer; list-valued fields get their own "+
				"per-item sub-flows. The draft survives server restarts.",
		),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("The entity kind to draft."),
			mcp.Enum("requirement", "component", "plan", "constitution", "decision"),
		),
		mcp.WithString("slug",
			mcp.Description("Optional URL-safe short name embedded in the draft id. "+
				"Example: 'user-auth' → draft id 'req-user-auth-<timestamp>'."),
		),
		mcp.WithString("name",
			mcp.Description("Optional human-readable name, seeded into the draft's data."),
		),
	)
}

// Handle processes the quill_draft_start tool call.
func (t *StartTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entityType := entity.Type(req.GetString("type", ""))
	slug := req.GetString("slug", "")
	name := req.GetString("name", "")

	if err := entity.ValidateType(entityType); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	d, err := t.sessions.Manager().Create(entityType, slug, name)
	if err != nil {
		return nil, fmt.Errorf("creating draft: %w", err)
	}

	ed, err := drafts.NewEntityDrafter(entityType)
	if err != nil {
		return nil, fmt.Errorf("creating drafter: %w", err)
	}
	t.sessions.Track(d.ID, ed)

	t.trail.Record(audit.Event{
		DraftID: d.ID,
		Kind:    audit.KindDraftCreated,
		Detail:  fmt.Sprintf("type=%s slug=%q", entityType, slug),
	})

	response := fmt.Sprintf(
		"# Draft Created\n\n"+
			"**ID:** `%s`\n"+
			"**Type:** %s\n"+
			"**Steps:** %d\n"+
			"**Expires:** %s\n\n%s",
		d.ID, d.Type, d.TotalSteps, d.ExpiresAt.UTC().Format("2006-01-02 15:04 MST"),
		nextAction(d, ed),
	)
	return mcp.NewToolResultText(response), nil
}
