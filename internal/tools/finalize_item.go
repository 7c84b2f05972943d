package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/sdd-quill/internal/audit"
	"github.com/HendryAvila/sdd-quill/internal/drafts"
)

// FinalizeItemTool handles the quill_draft_finalize_item MCP tool.
// Structured item payloads submitted here are the ONLY way array-item
// data enters a finalized entity; the free-text item answers shape the
// payload but are not themselves authoritative.
type FinalizeItemTool struct {
	sessions *drafts.Sessions
	trail    *audit.Trail
}

// NewFinalizeItemTool creates a FinalizeItemTool with its dependencies.
func NewFinalizeItemTool(sessions *drafts.Sessions, trail *audit.Trail) *FinalizeItemTool {
	return &FinalizeItemTool{sessions: sessions, trail: trail}
}

// Definition returns the MCP tool definition for registration.
func (t *FinalizeItemTool) Definition() mcp.Tool {
	return mcp.NewTool("quill_draft_finalize_item",
		mcp.WithDescription(
			"Finalize one list item with its structured data, validated against the field's item schema. "+
				"Requires the item's questions to be answered first. Each item is finalized exactly once; "+
				"the stored data is immutable and is the sole source of that item in the finalized entity.",
		),
		mcp.WithString("draft_id",
			mcp.Required(),
			mcp.Description("The draft containing the item."),
		),
		mcp.WithString("field",
			mcp.Required(),
			mcp.Description("The declared list field name."),
		),
		mcp.WithString("index",
			mcp.Required(),
			mcp.Description("Zero-based item index, matching the order of the descriptions."),
		),
		mcp.WithString("data",
			mcp.Required(),
			mcp.Description("JSON object with the item's structured fields. "+
				"Example for a constitution article: '{\"id\":\"art-001\",\"title\":\"No secrets in source\","+
				"\"principle\":\"...\",\"rationale\":\"...\"}'."),
		),
	)
}

// Handle processes the quill_draft_finalize_item tool call.
func (t *FinalizeItemTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	draftID := req.GetString("draft_id", "")
	field := req.GetString("field", "")

	index, err := strconv.Atoi(strings.TrimSpace(req.GetString("index", "")))
	if err != nil {
		return mcp.NewToolResultError("'index' must be a zero-based integer"), nil
	}

	payload, err := parseObject(req.GetString("data", ""), "data")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(payload) == 0 {
		return mcp.NewToolResultError("'data' is required: provide the item's structured fields as a JSON object"), nil
	}

	ed, err := t.sessions.Drafter(draftID)
	if err != nil {
		return toolError(err)
	}

	a, err := ed.ArrayDrafterFor(field)
	if err != nil {
		return toolError(err)
	}

	if err := a.FinalizeItemWithData(index, payload); err != nil {
		return toolError(err)
	}

	t.trail.Record(audit.Event{
		DraftID: draftID,
		Kind:    audit.KindItemFinalized,
		Field:   field,
		Detail:  fmt.Sprintf("item %d", index),
	})

	d := t.sessions.Sync(draftID, ed)
	if d == nil {
		return mcp.NewToolResultError(fmt.Sprintf("draft %q disappeared while finalizing (expired?)", draftID)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ Item %d of `%s` finalized.\n\n", index, field)
	if next := nextAction(d, ed); next != "" {
		sb.WriteString(next)
	}
	return mcp.NewToolResultText(sb.String()), nil
}
