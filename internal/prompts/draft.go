// Package prompts implements MCP prompt handlers for the drafting flow.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// DraftPrompt handles the quill-draft MCP prompt.
// It guides the AI through drafting a planning entity end to end.
type DraftPrompt struct{}

// NewDraftPrompt creates a DraftPrompt.
func NewDraftPrompt() *DraftPrompt {
	return &DraftPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *DraftPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("quill-draft",
		mcp.WithPromptDescription(
			"Draft a planning entity (requirement, component, plan, constitution, or decision) "+
				"through Quill's guided question flow, one validated answer at a time.",
		),
		mcp.WithArgument("type",
			mcp.ArgumentDescription(
				"Entity kind to draft: requirement, component, plan, constitution, or decision. Default: requirement",
			),
		),
		mcp.WithArgument("topic",
			mcp.ArgumentDescription("Short description of what the entity is about"),
		),
	)
}

// Handle processes the quill-draft prompt request.
func (p *DraftPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	entityType := "requirement"
	if args := req.Params.Arguments; args != nil {
		if t, ok := args["type"]; ok && t != "" {
			entityType = t
		}
	}

	topic := "something we discussed"
	if args := req.Params.Arguments; args != nil {
		if t, ok := args["topic"]; ok && t != "" {
			topic = t
		}
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Draft a %s: %s", entityType, topic),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I want to draft a %s about '%s' using Quill.\n\n"+
						"Please:\n"+
						"1. Run `quill_draft_start` with type='%s' and a short slug derived from the topic\n"+
						"2. Ask me each question the flow returns, one at a time, don't batch them\n"+
						"3. Submit my answers with `quill_draft_answer`; if validation fails, help me rework\n"+
						"   the answer instead of moving on\n"+
						"4. For list-valued fields, collect item descriptions from me, call\n"+
						"   `quill_draft_set_items`, then work through each item's questions and\n"+
						"   `quill_draft_finalize_item`\n"+
						"5. When everything is answered, run `quill_draft_finalize` and show me the result",
					entityType, topic, entityType,
				)),
			},
		},
	}, nil
}
