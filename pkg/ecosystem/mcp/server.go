// Package mcp exposes the scenario engine to AI agents over the Model
// Context Protocol, so a harness can drive a play-through tool by tool.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/praxislabs/gauntlet/pkg/engine"
	"github.com/praxislabs/gauntlet/pkg/session"
)

// NewServer creates an MCP server with the gauntlet tools registered.
// The server owns one session store for its whole lifetime.
func NewServer(version string) (*server.MCPServer, error) {
	store := session.NewStore(nil)
	eng, err := engine.New(store)
	if err != nil {
		return nil, err
	}
	h := &handlers{eng: eng, store: store, histories: map[string][]engine.Message{}}

	s := server.NewMCPServer(
		"gauntlet",
		version,
		server.WithToolCapabilities(true),
	)

	s.AddTool(
		mcp.NewTool("gauntlet/send",
			mcp.WithDescription("Send one trainee utterance (a tool call or a completion claim) to the scenario engine"),
			mcp.WithString("input", mcp.Required(), mcp.Description("The utterance text")),
			mcp.WithString("session", mcp.Description("Session name; utterances with the same name share world state (default \"default\")")),
		),
		h.handleSend,
	)

	s.AddTool(
		mcp.NewTool("gauntlet/reset",
			mcp.WithDescription("Discard a session's world state and history"),
			mcp.WithString("session", mcp.Description("Session name (default \"default\")")),
		),
		h.handleReset,
	)

	s.AddTool(
		mcp.NewTool("gauntlet/briefing",
			mcp.WithDescription("Return the scenario title and briefing shown to the trainee"),
		),
		h.handleBriefing,
	)

	s.AddTool(
		mcp.NewTool("gauntlet/schema",
			mcp.WithDescription("Export gauntlet JSON Schema ('result' or 'transcript')"),
			mcp.WithString("type", mcp.Required(), mcp.Description("Schema type: 'result' or 'transcript'")),
		),
		h.handleSchema,
	)

	return s, nil
}
