// Package callparse turns loosely formatted tool-call text into a
// normalized invocation. It accepts three syntaxes: bare calls like
// name("arg") or name({key: "value"}), JSON-RPC style objects
// {"name": ..., "arguments": {...}}, and the generic wrapper form that
// routes through call_tool. All three normalize to the same Call shape.
package callparse

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Call is a normalized tool invocation.
type Call struct {
	Name string
	Args map[string]any
}

// ParseError describes malformed call syntax. The message is written for
// the player: it names the unmatched delimiter or the missing parameter.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string { return e.Msg }

func parseErrorf(format string, args ...any) *ParseError {
	return &ParseError{Msg: fmt.Sprintf(format, args...)}
}

// ToolShape describes how one tool accepts positional arguments: the
// ordered parameter names for each slot, plus which are required.
type ToolShape struct {
	Slots    []string
	Required []string
}

// Parser normalizes raw call text. Shapes maps tool names to their
// positional parameter tables; calls to unknown tools still parse (the
// executor reports them), but positional arguments cannot be mapped.
type Parser struct {
	Shapes map[string]ToolShape
}

// New creates a parser with the given positional tables.
func New(shapes map[string]ToolShape) *Parser {
	return &Parser{Shapes: shapes}
}

// callHeadRe matches the leading identifier of a bare call;
// callAnywhereRe finds a name( pattern anywhere in free text.
var (
	callHeadRe     = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_.]*)\s*\(`)
	callAnywhereRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_.]*\(`)
)

// LooksLikeCall reports whether the input resembles a tool-call attempt:
// either a JSON object or a name( prefix anywhere in the text. The
// engine uses this to decide between dispatch and final-claim checking.
func LooksLikeCall(input string) bool {
	s := strings.TrimSpace(input)
	if strings.HasPrefix(s, "{") {
		return true
	}
	if callHeadRe.MatchString(s) {
		return true
	}
	return callAnywhereRe.MatchString(s)
}

// Parse normalizes one input string into a Call. Errors are always
// *ParseError with a player-facing message.
func (p *Parser) Parse(input string) (*Call, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return nil, parseErrorf("empty input")
	}
	if strings.HasPrefix(s, "{") {
		return p.parseJSONRPC(s)
	}
	return p.parseBare(s)
}

// parseJSONRPC handles {"name": "...", "arguments": {...}} input,
// accepting loose object syntax (unquoted keys, single quotes,
// trailing commas).
func (p *Parser) parseJSONRPC(s string) (*Call, error) {
	if err := checkBalance(s); err != nil {
		return nil, err
	}
	normalized, err := normalizeLooseJSON(s)
	if err != nil {
		return nil, err
	}
	var envelope struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal([]byte(normalized), &envelope); err != nil {
		return nil, parseErrorf("invalid JSON call: %v", err)
	}
	if envelope.Name == "" {
		return nil, parseErrorf(`JSON call is missing the "name" field`)
	}
	args := map[string]any{}
	if len(envelope.Arguments) > 0 {
		if err := json.Unmarshal(envelope.Arguments, &args); err != nil {
			// arguments may itself arrive as a JSON-encoded string
			var inner string
			if err2 := json.Unmarshal(envelope.Arguments, &inner); err2 == nil {
				if err3 := json.Unmarshal([]byte(inner), &args); err3 != nil {
					return nil, parseErrorf("invalid arguments for %s: %v", envelope.Name, err3)
				}
			} else {
				return nil, parseErrorf("invalid arguments for %s: %v", envelope.Name, err)
			}
		}
	}
	return &Call{Name: envelope.Name, Args: args}, nil
}

// parseBare handles name(args) syntax. The argument text is located by
// scanning for the matching close paren, not by greedy regex, so nested
// parens, braces, and escaped quotes inside string arguments survive.
func (p *Parser) parseBare(s string) (*Call, error) {
	m := callHeadRe.FindStringSubmatch(s)
	if m == nil {
		return nil, parseErrorf("not a recognizable tool call: expected name(...) or a JSON object")
	}
	name := m[1]

	open := strings.Index(s, "(")
	body, rest, err := spanParens(s[open:])
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(rest) != "" {
		return nil, parseErrorf("unexpected trailing text after %s(...): %q", name, strings.TrimSpace(rest))
	}
	if err := checkBalance(body); err != nil {
		return nil, err
	}

	args, err := p.parseArgs(name, strings.TrimSpace(body))
	if err != nil {
		return nil, err
	}
	return &Call{Name: name, Args: args}, nil
}

// parseArgs classifies the argument text: empty, an object literal, or a
// positional list.
func (p *Parser) parseArgs(tool, body string) (map[string]any, error) {
	if body == "" {
		if missing := p.missingRequired(tool, nil); missing != "" {
			return map[string]any{}, parseErrorf("%s %s", tool, missing)
		}
		return map[string]any{}, nil
	}

	if strings.HasPrefix(body, "{") {
		normalized, err := normalizeLooseJSON(body)
		if err != nil {
			return nil, err
		}
		var args map[string]any
		if err := json.Unmarshal([]byte(normalized), &args); err != nil {
			return nil, parseErrorf("invalid object argument for %s: %v", tool, err)
		}
		if missing := p.missingRequired(tool, args); missing != "" {
			return nil, parseErrorf("%s %s", tool, missing)
		}
		return args, nil
	}

	values, err := splitPositional(body)
	if err != nil {
		return nil, err
	}
	args, err := p.mapPositional(tool, values)
	if err != nil {
		return nil, err
	}
	if missing := p.missingRequired(tool, args); missing != "" {
		return nil, parseErrorf("%s %s", tool, missing)
	}
	return args, nil
}

// mapPositional assigns positional values to parameter names using the
// tool's shape table.
func (p *Parser) mapPositional(tool string, values []any) (map[string]any, error) {
	shape, ok := p.Shapes[tool]
	if !ok {
		// Unknown tool: keep the values under synthetic names so the
		// executor can still report "unknown tool" with full context.
		args := make(map[string]any, len(values))
		for i, v := range values {
			args[fmt.Sprintf("arg%d", i)] = v
		}
		return args, nil
	}
	if len(values) > len(shape.Slots) {
		return nil, parseErrorf("%s accepts at most %d argument(s), got %d", tool, len(shape.Slots), len(values))
	}
	args := make(map[string]any, len(values))
	for i, v := range values {
		args[shape.Slots[i]] = v
	}
	return args, nil
}

// missingRequired returns a message naming the required parameters that
// are absent, or "" when the call is complete. Unknown tools are not
// checked here.
func (p *Parser) missingRequired(tool string, args map[string]any) string {
	shape, ok := p.Shapes[tool]
	if !ok {
		return ""
	}
	var missing []string
	for _, name := range shape.Required {
		if _, present := args[name]; !present {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return ""
	}
	plural := "argument"
	if len(shape.Required) > 1 {
		plural = "arguments"
	}
	return fmt.Sprintf("requires %d %s: %s (missing: %s)",
		len(shape.Required), plural, strings.Join(shape.Required, " and "), strings.Join(missing, ", "))
}
