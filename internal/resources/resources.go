// Package resources implements MCP resource handlers for the drafting flow.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (quill://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/sdd-quill/internal/drafts"
)

// Handler manages Quill resource endpoints.
type Handler struct {
	manager *drafts.Manager
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(manager *drafts.Manager) *Handler {
	return &Handler{manager: manager}
}

// DraftsResource returns the MCP resource definition for active drafts.
func (h *Handler) DraftsResource() mcp.Resource {
	return mcp.NewResource(
		"quill://drafts/active",
		"Active Drafts",
		mcp.WithResourceDescription("All non-expired drafts with their step positions and expiry times"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleDrafts returns every active draft as JSON.
func (h *Handler) HandleDrafts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	list := h.manager.List("")

	type summary struct {
		ID          string `json:"id"`
		Type        string `json:"type"`
		CurrentStep int    `json:"current_step"`
		TotalSteps  int    `json:"total_steps"`
		CreatedAt   string `json:"created_at"`
		ExpiresAt   string `json:"expires_at"`
	}
	out := make([]summary, 0, len(list))
	for _, d := range list {
		out = append(out, summary{
			ID:          d.ID,
			Type:        string(d.Type),
			CurrentStep: d.CurrentStep,
			TotalSteps:  d.TotalSteps,
			CreatedAt:   d.CreatedAt.UTC().Format(time.RFC3339),
			ExpiresAt:   d.ExpiresAt.UTC().Format(time.RFC3339),
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling drafts: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
