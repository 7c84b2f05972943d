package prompts

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func promptText(t *testing.T, result *mcp.GetPromptResult) string {
	t.Helper()
	if len(result.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(result.Messages))
	}
	tc, ok := result.Messages[0].Content.(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", result.Messages[0].Content)
	}
	return tc.Text
}

func TestDraftPrompt_Defaults(t *testing.T) {
	req := mcp.GetPromptRequest{}
	result, err := NewDraftPrompt().Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	text := promptText(t, result)
	if !strings.Contains(text, "type='requirement'") {
		t.Errorf("default type should be requirement: %s", text)
	}
	if !strings.Contains(text, "quill_draft_start") || !strings.Contains(text, "quill_draft_finalize") {
		t.Errorf("prompt should walk the full flow: %s", text)
	}
}

func TestDraftPrompt_Arguments(t *testing.T) {
	req := mcp.GetPromptRequest{}
	req.Params.Arguments = map[string]string{
		"type":  "constitution",
		"topic": "engineering principles",
	}
	result, err := NewDraftPrompt().Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if !strings.Contains(result.Description, "constitution") {
		t.Errorf("description = %q", result.Description)
	}
	text := promptText(t, result)
	if !strings.Contains(text, "engineering principles") {
		t.Errorf("prompt should carry the topic: %s", text)
	}
}

func TestResumePrompt(t *testing.T) {
	result, err := NewResumePrompt().Handle(context.Background(), mcp.GetPromptRequest{})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	text := promptText(t, result)
	if !strings.Contains(text, "quill_draft_list") || !strings.Contains(text, "quill_draft_status") {
		t.Errorf("prompt should direct the AI to the resume tools: %s", text)
	}
}

func TestPromptDefinitions(t *testing.T) {
	if name := NewDraftPrompt().Definition().Name; name != "quill-draft" {
		t.Errorf("draft prompt name = %q", name)
	}
	if name := NewResumePrompt().Definition().Name; name != "quill-resume" {
		t.Errorf("resume prompt name = %q", name)
	}
}
