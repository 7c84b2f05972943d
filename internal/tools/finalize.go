package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/HendryAvila/sdd-quill/internal/audit"
	"github.com/HendryAvila/sdd-quill/internal/drafts"
	"github.com/HendryAvila/sdd-quill/internal/specstore"
)

// FinalizeTool handles the quill_draft_finalize MCP tool.
//
// This is the security boundary of the drafting flow: the caller is
// untrusted for array contents, so every declared array field in the
// payload is overwritten with the audited per-item data. Attempted
// overrides are discarded silently (the entity is still produced) but
// recorded in the audit trail and logged.
type FinalizeTool struct {
	sessions *drafts.Sessions
	specs    specstore.Store
	trail    *audit.Trail
	log      *zap.Logger
}

// NewFinalizeTool creates a FinalizeTool with its dependencies.
func NewFinalizeTool(sessions *drafts.Sessions, specs specstore.Store, trail *audit.Trail, log *zap.Logger) *FinalizeTool {
	if log == nil {
		log = zap.NewNop()
	}
	return &FinalizeTool{sessions: sessions, specs: specs, trail: trail, log: log}
}

// Definition returns the MCP tool definition for registration.
func (t *FinalizeTool) Definition() mcp.Tool {
	return mcp.NewTool("quill_draft_finalize",
		mcp.WithDescription(
			"Finalize a complete draft into its validated entity and persist it. "+
				"Fails unless every required question is resolved and every list item is finalized. "+
				"List-valued fields in the payload are ALWAYS recomputed from the finalized per-item data; "+
				"supplying them here has no effect. Scalar fields come from the payload; "+
				"use quill_draft_status to read the accumulated data first.",
		),
		mcp.WithString("draft_id",
			mcp.Required(),
			mcp.Description("The draft to finalize."),
		),
		mcp.WithString("payload",
			mcp.Description("JSON object with the entity's scalar fields, typically the draft's accumulated data. "+
				"Defaults to the draft's data view when omitted."),
		),
	)
}

// Handle processes the quill_draft_finalize tool call.
func (t *FinalizeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	draftID := req.GetString("draft_id", "")

	ed, err := t.sessions.Drafter(draftID)
	if err != nil {
		return toolError(err)
	}

	payload, err := parseObject(req.GetString("payload", ""), "payload")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(payload) == 0 {
		payload = ed.Data()
	}

	outcome, tampers, err := ed.Finalize(payload)
	if err != nil {
		return toolError(err)
	}

	for _, tamper := range tampers {
		t.log.Warn("finalize payload tried to override an array field; discarded",
			zap.String("draft_id", draftID),
			zap.String("field", tamper.Field),
		)
		t.trail.RecordTamper(draftID, tamper.Field, tamper.Attempted)
	}

	if err := t.specs.Save(ed.Type(), draftID, outcome); err != nil {
		// The live drafter is already finalized but nothing was
		// persisted. Drop it so a retry rebuilds a finalizable drafter
		// from the record instead of hitting the finalized guard.
		t.sessions.Release(draftID)
		return nil, fmt.Errorf("saving finalized entity: %w", err)
	}

	t.trail.Record(audit.Event{
		DraftID: draftID,
		Kind:    audit.KindDraftFinalized,
		Detail:  fmt.Sprintf("type=%s", ed.Type()),
	})

	// The draft record stays until expiry; the live session is done.
	t.sessions.Sync(draftID, ed)
	t.sessions.Release(draftID)

	pretty, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling entity: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Entity Finalized\n\n**ID:** `%s`\n**Type:** %s\n\n", draftID, ed.Type())
	if len(tampers) > 0 {
		fields := make([]string, len(tampers))
		for i, tm := range tampers {
			fields[i] = tm.Field
		}
		fmt.Fprintf(&sb, "⚠️ Discarded payload overrides for list field(s): %s; "+
			"only data finalized through the per-item flow counts.\n\n", strings.Join(fields, ", "))
	}
	fmt.Fprintf(&sb, "```json\n%s\n```\n", pretty)
	return mcp.NewToolResultText(sb.String()), nil
}
