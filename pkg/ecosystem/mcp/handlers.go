package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/praxislabs/gauntlet/pkg/engine"
	"github.com/praxislabs/gauntlet/pkg/replay"
	"github.com/praxislabs/gauntlet/pkg/session"
	"github.com/praxislabs/gauntlet/pkg/world"
)

// handlers carries the shared engine and per-session histories. Each
// named MCP session gets a synthetic first message so distinct names
// map to distinct engine sessions.
type handlers struct {
	eng   *engine.Engine
	store *session.Store

	mu        sync.Mutex
	histories map[string][]engine.Message
}

func sessionName(req mcp.CallToolRequest) string {
	args := req.GetArguments()
	name, _ := args["session"].(string)
	if name == "" {
		name = "default"
	}
	return name
}

// handleSend implements the gauntlet/send MCP tool.
func (h *handlers) handleSend(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	input, _ := args["input"].(string)
	if input == "" {
		return errorResult("input argument is required"), nil
	}
	name := sessionName(req)

	h.mu.Lock()
	history, ok := h.histories[name]
	if !ok {
		history = []engine.Message{{Role: "system", Content: "session:" + name}}
	}
	result := h.eng.Validate(input, history)
	history = append(history,
		engine.Message{Role: "user", Content: input},
		engine.Message{Role: "assistant", Content: result.Message},
	)
	h.histories[name] = history
	h.mu.Unlock()

	data, err := jsonIndent(result)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(string(data))},
		IsError: result.Status == engine.StatusFail,
	}, nil
}

// handleReset implements the gauntlet/reset MCP tool.
func (h *handlers) handleReset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := sessionName(req)

	h.mu.Lock()
	history, ok := h.histories[name]
	if ok {
		h.store.Reset(h.eng.SessionKey("", history))
		delete(h.histories, name)
	}
	h.mu.Unlock()

	if !ok {
		return textResult(fmt.Sprintf("session %q had no state", name)), nil
	}
	return textResult(fmt.Sprintf("session %q reset", name)), nil
}

// handleBriefing implements the gauntlet/briefing MCP tool.
func (h *handlers) handleBriefing(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	meta := world.MustSeed().Scenario
	return textResult(fmt.Sprintf("# %s\n\n%s", meta.Title, meta.Briefing)), nil
}

// handleSchema implements the gauntlet/schema MCP tool.
func (h *handlers) handleSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	schemaType, _ := args["type"].(string)

	var data []byte
	var err error

	switch schemaType {
	case "result":
		data, err = engine.GenerateResultJSONSchema()
	case "transcript":
		data, err = replay.GenerateTranscriptJSONSchema()
	default:
		return errorResult(fmt.Sprintf("unknown schema type %q — use 'result' or 'transcript'", schemaType)), nil
	}

	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(string(data)), nil
}

func jsonIndent(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(msg),
		},
		IsError: true,
	}
}
