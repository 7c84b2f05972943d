package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/sdd-quill/internal/entity"
	"github.com/HendryAvila/sdd-quill/internal/schema"
	"github.com/HendryAvila/sdd-quill/internal/validation"
)

// ValidateStepTool handles the quill_validate_step MCP tool.
// It runs step validation standalone, without touching any draft, so
// content can be checked before it is submitted through the flow.
type ValidateStepTool struct{}

// NewValidateStepTool creates a ValidateStepTool.
func NewValidateStepTool() *ValidateStepTool {
	return &ValidateStepTool{}
}

// Definition returns the MCP tool definition for registration.
func (t *ValidateStepTool) Definition() mcp.Tool {
	return mcp.NewTool("quill_validate_step",
		mcp.WithDescription(
			"Validate candidate content for one drafting step without modifying any draft. "+
				"Returns the pass/fail verdict with issues, suggestions, and strengths.",
		),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("The entity kind the step belongs to."),
			mcp.Enum("requirement", "component", "plan", "constitution", "decision"),
		),
		mcp.WithString("step",
			mcp.Required(),
			mcp.Description("The step id, e.g. 'problem_identification' or 'acceptance_criteria_list'."),
		),
		mcp.WithString("data",
			mcp.Required(),
			mcp.Description("JSON object mapping the step's field names to candidate values."),
		),
	)
}

// Handle processes the quill_validate_step tool call.
func (t *ValidateStepTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entityType := entity.Type(req.GetString("type", ""))
	stepID := req.GetString("step", "")

	if err := entity.ValidateType(entityType); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := schema.StepSchema(entityType, stepID); err != nil {
		known := strings.Join(schema.StepIDs(entityType), ", ")
		return mcp.NewToolResultError(fmt.Sprintf("%v (known steps for %s: %s)", err, entityType, known)), nil
	}

	data, err := parseObject(req.GetString("data", ""), "data")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res := validation.Validate(entityType, stepID, data)
	return mcp.NewToolResultText(renderVerdict(res)), nil
}
