// Package server wires all MCP components and creates the server instance.
//
// This is the composition root (DIP): it creates concrete implementations
// and injects them into the tools/prompts/resources that depend on
// abstractions. No business logic lives here, only wiring.
package server

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/HendryAvila/sdd-quill/internal/audit"
	"github.com/HendryAvila/sdd-quill/internal/drafts"
	"github.com/HendryAvila/sdd-quill/internal/prompts"
	"github.com/HendryAvila/sdd-quill/internal/resources"
	"github.com/HendryAvila/sdd-quill/internal/specstore"
	"github.com/HendryAvila/sdd-quill/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools, prompts,
// and resources registered. This is the single place where all
// dependencies are resolved.
//
// The returned cleanup function stops the expiry sweep and closes the
// audit database, and must be called on shutdown (typically via defer).
// It is always non-nil and safe to call even if audit init failed.
func New() (*server.MCPServer, func(), error) {
	// --- Create shared dependencies ---

	log := newLogger()

	draftCfg := draftConfigFromEnv()
	manager, err := drafts.NewManager(draftCfg, log)
	if err != nil {
		return nil, noop, fmt.Errorf("creating draft manager: %w", err)
	}
	sessions := drafts.NewSessions(manager)

	specs := specstore.NewFileStore(dataRoot())

	// --- Open the audit trail ---
	//
	// The audit trail is an independent subsystem: if SQLite fails to
	// open, drafting continues without it. Trail methods are nil-safe,
	// so a nil trail is passed through to the tools as-is.
	trail, auditErr := audit.Open(audit.Config{DataDir: dataRoot()}, log)
	if auditErr != nil {
		log.Warn("audit trail disabled", zap.Error(auditErr))
		trail = nil
	}

	cleanup := func() {
		manager.Destroy()
		if err := trail.Close(); err != nil {
			log.Warn("audit trail close", zap.Error(err))
		}
		_ = log.Sync()
	}

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"quill",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register drafting tools ---

	startTool := tools.NewStartTool(sessions, trail)
	s.AddTool(startTool.Definition(), startTool.Handle)

	questionTool := tools.NewQuestionTool(sessions)
	s.AddTool(questionTool.Definition(), questionTool.Handle)

	answerTool := tools.NewAnswerTool(sessions)
	s.AddTool(answerTool.Definition(), answerTool.Handle)

	skipTool := tools.NewSkipTool(sessions)
	s.AddTool(skipTool.Definition(), skipTool.Handle)

	setItemsTool := tools.NewSetItemsTool(sessions)
	s.AddTool(setItemsTool.Definition(), setItemsTool.Handle)

	finalizeItemTool := tools.NewFinalizeItemTool(sessions, trail)
	s.AddTool(finalizeItemTool.Definition(), finalizeItemTool.Handle)

	finalizeTool := tools.NewFinalizeTool(sessions, specs, trail, log)
	s.AddTool(finalizeTool.Definition(), finalizeTool.Handle)

	// --- Register inspection tools ---

	statusTool := tools.NewStatusTool(sessions, trail)
	s.AddTool(statusTool.Definition(), statusTool.Handle)

	listTool := tools.NewListTool(sessions)
	s.AddTool(listTool.Definition(), listTool.Handle)

	deleteTool := tools.NewDeleteTool(sessions, trail)
	s.AddTool(deleteTool.Definition(), deleteTool.Handle)

	validateStepTool := tools.NewValidateStepTool()
	s.AddTool(validateStepTool.Definition(), validateStepTool.Handle)

	// --- Register prompts ---

	draftPrompt := prompts.NewDraftPrompt()
	s.AddPrompt(draftPrompt.Definition(), draftPrompt.Handle)

	resumePrompt := prompts.NewResumePrompt()
	s.AddPrompt(resumePrompt.Definition(), resumePrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(manager)
	s.AddResource(resourceHandler.DraftsResource(), resourceHandler.HandleDrafts)

	return s, cleanup, nil
}

// noop is the default cleanup when construction fails early.
func noop() {}

// newLogger builds the server logger. Logs go to stderr; stdout is the
// MCP stdio transport and must stay clean. QUILL_LOG_LEVEL selects the
// minimum level (default info).
func newLogger() *zap.Logger {
	level := zapcore.InfoLevel
	if raw := os.Getenv("QUILL_LOG_LEVEL"); raw != "" {
		if parsed, err := zapcore.ParseLevel(raw); err == nil {
			level = parsed
		}
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// dataRoot returns the base data directory: QUILL_DATA_DIR or ~/.quill.
func dataRoot() string {
	if dir := os.Getenv("QUILL_DATA_DIR"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".quill")
}

// draftConfigFromEnv builds the draft manager config from the default,
// with env overrides: QUILL_DATA_DIR relocates storage, QUILL_DRAFT_TTL
// and QUILL_SWEEP_INTERVAL take Go duration strings ("24h", "30m").
func draftConfigFromEnv() drafts.Config {
	cfg := drafts.DefaultConfig()
	cfg.DataDir = filepath.Join(dataRoot(), "drafts")
	if raw := os.Getenv("QUILL_DRAFT_TTL"); raw != "" {
		if ttl, err := time.ParseDuration(raw); err == nil && ttl > 0 {
			cfg.TTL = ttl
		}
	}
	if raw := os.Getenv("QUILL_SWEEP_INTERVAL"); raw != "" {
		if iv, err := time.ParseDuration(raw); err == nil && iv > 0 {
			cfg.SweepInterval = iv
		}
	}
	return cfg
}

// serverInstructions returns the system instructions that tell the AI
// how to use Quill effectively.
func serverInstructions() string {
	return `You have access to Quill, a guided drafting MCP server for planning entities.

## WHAT QUILL DOES

Quill builds five kinds of planning entities through a stateful question flow:
- requirement: a problem, its solution, priority, and acceptance criteria
- component: a system part's purpose, responsibilities, capabilities, and interfaces
- plan: an objective, its scope, success metrics, and phased execution
- constitution: project principles as a preamble plus numbered articles
- decision: a framed question, context, outcome, rationale, and rejected alternatives

Each draft walks through numbered steps. Scalar fields are one question each;
list-valued fields (acceptance criteria, capabilities, interfaces, phases,
articles, alternatives) are built item by item with their own sub-questions.

## CRITICAL: HOW THE FLOW WORKS

Quill is a STATE MACHINE, not a form. The rules:

1. Start with quill_draft_start; it returns the draft id and the first question
2. Answer the CURRENT question only, via quill_draft_answer. Questions are
   answered exactly once; there is no going back to rewrite an answer
3. Answers to main questions are VALIDATED before being recorded. If validation
   fails, the question stays pending. Rework the answer with the user using
   the issues and suggestions in the verdict, then submit again
4. Optional questions can be skipped with quill_draft_skip, but never skip a
   required one (the tool will refuse)
5. For a list field: answer its collection question first, then call
   quill_draft_set_items with short item descriptions, then answer each item's
   questions in order, then quill_draft_finalize_item with the item's
   structured data. Items finalize strictly in index order
6. When every question is resolved and every item finalized, call
   quill_draft_finalize. The finalized entity's list fields are ALWAYS
   assembled from the per-item finalized data; any list values you pass in
   the finalize payload are discarded, so don't bother constructing them

## WORKING WITH THE USER

- Ask ONE question at a time, in your own words, using the guidance text
- Never invent answers; the content must come from the conversation
- When validation fails, explain the specific issue and help the user
  strengthen the answer; vague or unmeasurable content is rejected on purpose
- Use quill_draft_status when unsure where a draft stands
- Use quill_validate_step to pre-check candidate content without submitting it

## DRAFT LIFECYCLE

- Drafts persist to disk and survive server restarts. Resume with
  quill_draft_list and quill_draft_question
- A draft expires 24 hours after it was created; expired drafts are gone
- quill_draft_delete discards a draft permanently
- Finalized entities are written to the spec store and outlive their drafts`
}
