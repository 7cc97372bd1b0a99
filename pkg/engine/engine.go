// Package engine is the scenario engine's front door. One Validate
// call takes the trainee's latest utterance plus the conversation
// history, resolves the session, and either executes a tool call or
// judges a completion claim.
package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/praxislabs/gauntlet/pkg/callparse"
	"github.com/praxislabs/gauntlet/pkg/catalog"
	"github.com/praxislabs/gauntlet/pkg/discovery"
	"github.com/praxislabs/gauntlet/pkg/dispatch"
	"github.com/praxislabs/gauntlet/pkg/session"
	"github.com/praxislabs/gauntlet/pkg/verdict"
)

// Result statuses.
const (
	StatusSuccess      = "SUCCESS"
	StatusFail         = "FAIL"
	StatusIntermediate = "INTERMEDIATE"
)

// Fail types, so the game layer can distinguish a retryable slip from
// the scenario judgment.
const (
	FailParse       = "parse"
	FailDiscovery   = "discovery"
	FailDomain      = "domain"
	FailWrongAnswer = verdict.FailTypeWrongAnswer
)

// minClaimLength is the shortest trimmed input treated as a completion
// claim rather than noise.
const minClaimLength = 10

// Message is one prior conversation entry.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Result is the engine's discriminated output. ToolOutput, when
// present, is a JSON-encoded object shaped like a real API response.
type Result struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	ToolOutput string `json:"toolOutput,omitempty"`
	FailType   string `json:"failType,omitempty"`
}

// Engine wires the parser, catalog, executor, and session store
// together. The store is injected: its owner decides session lifetime.
type Engine struct {
	store  *session.Store
	cat    *catalog.Catalog
	exec   *dispatch.Executor
	parser *callparse.Parser
}

// New builds an engine over the given session store. Catalog or
// registry inconsistencies surface here, at startup.
func New(store *session.Store) (*Engine, error) {
	cat, err := catalog.New()
	if err != nil {
		return nil, err
	}
	exec, err := dispatch.NewExecutor(cat)
	if err != nil {
		return nil, err
	}
	return &Engine{
		store:  store,
		cat:    cat,
		exec:   exec,
		parser: callparse.New(cat.Shapes()),
	}, nil
}

// Catalog exposes the declared operation surface (for schema export and
// UI listings).
func (e *Engine) Catalog() *catalog.Catalog { return e.cat }

// SessionKey derives the session key for a conversation.
func (e *Engine) SessionKey(input string, history []Message) string {
	first := input
	if len(history) > 0 {
		first = history[0].Content
	}
	return session.KeyFor(first)
}

// Session resolves (creating if needed) the session state for a
// conversation.
func (e *Engine) Session(input string, history []Message) *session.State {
	return e.store.Get(e.SessionKey(input, history))
}

// Validate processes one utterance. Tool calls come back as
// INTERMEDIATE with serialized tool output; a completion claim comes
// back as the scenario verdict.
func (e *Engine) Validate(input string, history []Message) Result {
	st := e.Session(input, history)

	if !callparse.LooksLikeCall(input) {
		if len([]rune(strings.TrimSpace(input))) < minClaimLength {
			return Result{
				Status:   StatusFail,
				FailType: FailParse,
				Message:  "That was neither a tool call nor a completion statement. Call a tool like list_tools(), or describe what you completed.",
			}
		}
		v := verdict.Evaluate(st.World)
		return Result{Status: v.Status, Message: v.Message, FailType: v.FailType}
	}

	call, err := e.parser.Parse(input)
	if err != nil {
		return Result{Status: StatusFail, FailType: FailParse, Message: err.Error()}
	}

	name, args, unwrapErr := e.unwrap(call)
	if unwrapErr != nil {
		return Result{Status: StatusFail, FailType: FailParse, Message: unwrapErr.Error()}
	}

	// Discovery gate: list_tools and search_tools are always permitted;
	// everything else must have been announced, even through call_tool.
	// Names the catalog does not declare skip the gate so the executor
	// reports them as unknown instead of perpetually undiscovered.
	_, declared := e.cat.Get(name)
	if declared && name != catalog.ToolListTools && name != catalog.ToolSearchTools && name != catalog.ToolCallTool {
		if err := st.Tracker.Check(name); err != nil {
			var derr *discovery.Error
			if errors.As(err, &derr) {
				return Result{Status: StatusFail, FailType: FailDiscovery, Message: derr.Error()}
			}
			return Result{Status: StatusFail, FailType: FailDiscovery, Message: err.Error()}
		}
	}

	out := e.exec.Execute(&dispatch.Context{
		World:   st.World,
		Tracker: st.Tracker,
		Catalog: e.cat,
	}, name, args)

	if !out.Success {
		return Result{
			Status:     StatusIntermediate,
			FailType:   FailDomain,
			Message:    fmt.Sprintf("%s failed: %s", name, out.Err),
			ToolOutput: out.Output,
		}
	}
	return Result{
		Status:     StatusIntermediate,
		Message:    fmt.Sprintf("%s executed", name),
		ToolOutput: out.Output,
	}
}

// unwrap resolves the call_tool wrapper to its target invocation. A
// call_tool without a usable target name passes through so the
// executor can report it.
func (e *Engine) unwrap(call *callparse.Call) (string, map[string]any, error) {
	if call.Name != catalog.ToolCallTool {
		return call.Name, call.Args, nil
	}
	target, _ := call.Args["name"].(string)
	if target == "" {
		return call.Name, call.Args, nil
	}
	inner := map[string]any{}
	switch raw := call.Args["arguments"].(type) {
	case nil:
	case map[string]any:
		inner = raw
	case string:
		if strings.TrimSpace(raw) != "" {
			if err := json.Unmarshal([]byte(raw), &inner); err != nil {
				return "", nil, fmt.Errorf("call_tool arguments for %s must be an object: %v", target, err)
			}
		}
	default:
		return "", nil, fmt.Errorf("call_tool arguments for %s must be an object, got %T", target, raw)
	}
	return target, inner, nil
}
