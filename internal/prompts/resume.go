package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// ResumePrompt handles the quill-resume MCP prompt.
// It instructs the AI to find in-flight drafts and pick up where they left off.
type ResumePrompt struct{}

// NewResumePrompt creates a ResumePrompt.
func NewResumePrompt() *ResumePrompt {
	return &ResumePrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *ResumePrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("quill-resume",
		mcp.WithPromptDescription(
			"Resume an in-flight draft. Lists active drafts, shows where each "+
				"one stands, and continues the question flow.",
		),
	)
}

// Handle processes the quill-resume prompt request.
func (p *ResumePrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Resume Drafting",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please run `quill_draft_list` to find my active drafts.\n\n" +
						"Then:\n" +
						"1. Show me each draft's type, step position, and expiry\n" +
						"2. If there is exactly one, run `quill_draft_status` on it and continue\n" +
						"   the flow with `quill_draft_question`\n" +
						"3. If there are several, ask me which one to resume\n" +
						"4. Remind me that drafts expire 24 hours after they were created",
				),
			},
		},
	}, nil
}
