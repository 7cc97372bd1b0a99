// Package dispatch maps parsed tool calls onto world operations and
// serializes the results into wire-shaped JSON, so the surrounding game
// can render them as plausible service responses. The handler registry
// is checked against the declared catalog at construction: a catalog
// operation without a handler, or a handler for an undeclared name, is
// a startup error.
package dispatch

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/praxislabs/gauntlet/pkg/catalog"
	"github.com/praxislabs/gauntlet/pkg/discovery"
	"github.com/praxislabs/gauntlet/pkg/world"
)

// Context carries the per-session state a handler may touch.
type Context struct {
	World   *world.World
	Tracker *discovery.Tracker
	Catalog *catalog.Catalog
}

// Args wraps raw call arguments with forgiving accessors: the simulated
// services coerce scalars the way real loose backends do.
type Args map[string]any

// String returns the argument as a string, "" when absent.
func (a Args) String(key string) string {
	v, ok := a[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return fmt.Sprint(v)
}

// Int returns the argument as an int, coercing numeric strings.
func (a Args) Int(key string) (int, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("missing numeric argument %q", key)
	}
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case int:
		return n, nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("argument %q must be a number, got %q", key, n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("argument %q must be a number, got %T", key, v)
	}
}

// Object returns the argument as a map, parsing a JSON-encoded string
// if that is what arrived.
func (a Args) Object(key string) (map[string]any, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return nil, fmt.Errorf("missing object argument %q", key)
	}
	switch m := v.(type) {
	case map[string]any:
		return m, nil
	case string:
		var parsed map[string]any
		if err := json.Unmarshal([]byte(m), &parsed); err != nil {
			return nil, fmt.Errorf("argument %q must be an object: %v", key, err)
		}
		return parsed, nil
	default:
		return nil, fmt.Errorf("argument %q must be an object, got %T", key, v)
	}
}

// handlerFunc executes one operation. Handlers may panic on internal
// invariant violations; Execute recovers exactly once at its boundary.
type handlerFunc func(ctx *Context, args Args) (any, error)

// Outcome is the uniform execution result. Output is always JSON: the
// wire-shaped response on success, {"error": ...} on failure.
type Outcome struct {
	Success bool
	Output  string
	Err     string
}

// Executor dispatches by operation name.
type Executor struct {
	catalog  *catalog.Catalog
	handlers map[string]handlerFunc
}

// NewExecutor builds the registry and verifies it covers the catalog
// exactly.
func NewExecutor(cat *catalog.Catalog) (*Executor, error) {
	e := &Executor{catalog: cat, handlers: registry()}

	var missing, extra []string
	for _, t := range cat.Tools() {
		if _, ok := e.handlers[t.Name]; !ok {
			missing = append(missing, t.Name)
		}
	}
	for name := range e.handlers {
		if _, ok := cat.Get(name); !ok {
			extra = append(extra, name)
		}
	}
	sort.Strings(missing)
	sort.Strings(extra)
	if len(missing) > 0 {
		return nil, fmt.Errorf("dispatch: catalog operations without handlers: %s", strings.Join(missing, ", "))
	}
	if len(extra) > 0 {
		return nil, fmt.Errorf("dispatch: handlers for undeclared operations: %s", strings.Join(extra, ", "))
	}
	return e, nil
}

// Execute runs one operation. Domain errors and handler panics both
// land in a failed Outcome; nothing propagates.
func (e *Executor) Execute(ctx *Context, name string, rawArgs map[string]any) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = failOutcome(fmt.Sprintf("internal error in %s: %v", name, r))
		}
	}()

	handler, ok := e.handlers[name]
	if !ok {
		return failOutcome(fmt.Sprintf("unknown tool %q — call list_tools() to see what is available", name))
	}
	if err := e.catalog.ValidateArgs(name, rawArgs); err != nil {
		return failOutcome(err.Error())
	}

	result, err := handler(ctx, Args(rawArgs))
	if err != nil {
		return failOutcome(err.Error())
	}
	data, err := json.Marshal(result)
	if err != nil {
		return failOutcome(fmt.Sprintf("serialize %s response: %v", name, err))
	}
	return Outcome{Success: true, Output: string(data)}
}

func failOutcome(msg string) Outcome {
	data, _ := json.Marshal(map[string]string{"error": msg})
	return Outcome{Success: false, Output: string(data), Err: msg}
}
