// Quill: Guided Drafting MCP Server
//
// A universal MCP server that integrates with any AI coding tool
// (Claude Code, OpenCode, Gemini CLI, Codex, Cursor, VS Code Copilot)
// to build planning entities (requirements, components, plans,
// constitutions, decisions) through validated, step-by-step drafting.
//
// Usage:
//
//	quill serve    # Start MCP server (stdio transport)
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	quillserver "github.com/HendryAvila/sdd-quill/internal/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("quill v%s\n", quillserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run() error {
	// A .env next to the binary (or in the cwd) overrides nothing that
	// is already set; hosts that export QUILL_* directly win.
	_ = godotenv.Load()

	s, cleanup, err := quillserver.New()
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// Run cleanup on interrupt too; ServeStdio returns on stdin close,
	// but hosts sometimes kill with a signal instead.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cleanup()
		os.Exit(0)
	}()

	return server.ServeStdio(s)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Quill v%s — Guided Drafting MCP Server

Usage:
  quill serve    Start the MCP server (stdio transport)

Environment:
  QUILL_DATA_DIR        Base data directory (default ~/.quill)
  QUILL_DRAFT_TTL       Draft time-to-live, Go duration (default 24h)
  QUILL_SWEEP_INTERVAL  Expiry sweep interval, Go duration (default 1h)
  QUILL_LOG_LEVEL       Log level: debug, info, warn, error (default info)

  A .env file in the working directory is loaded if present.

Configuration:
  Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "quill": {
        "command": "quill",
        "args": ["serve"]
      }
    }
  }
`, quillserver.Version)
}
