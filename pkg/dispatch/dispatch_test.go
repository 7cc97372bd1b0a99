package dispatch

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/praxislabs/gauntlet/pkg/catalog"
	"github.com/praxislabs/gauntlet/pkg/discovery"
	"github.com/praxislabs/gauntlet/pkg/world"
)

func testContext(t *testing.T) (*Executor, *Context) {
	t.Helper()
	cat, err := catalog.New()
	if err != nil {
		t.Fatal(err)
	}
	exec, err := NewExecutor(cat)
	if err != nil {
		t.Fatal(err)
	}
	return exec, &Context{
		World:   world.MustSeed(),
		Tracker: discovery.NewTracker(),
		Catalog: cat,
	}
}

func decode(t *testing.T, out Outcome) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(out.Output), &m); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.Output)
	}
	return m
}

func TestNewExecutor_CoversCatalog(t *testing.T) {
	// Construction in testContext already proves registry and catalog
	// are in lockstep; a mismatch is a startup error.
	exec, _ := testContext(t)
	if exec == nil {
		t.Fatal("executor is nil")
	}
}

func TestExecute_UnknownTool(t *testing.T) {
	exec, ctx := testContext(t)
	out := exec.Execute(ctx, "frobnicate", nil)
	if out.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(out.Err, `unknown tool "frobnicate"`) {
		t.Errorf("Err = %q, want unknown tool message", out.Err)
	}
	m := decode(t, out)
	if m["error"] != out.Err {
		t.Errorf(`output = %v, want {"error": ...} mirror of Err`, m)
	}
}

func TestExecute_ListToolsMarksAll(t *testing.T) {
	exec, ctx := testContext(t)
	out := exec.Execute(ctx, catalog.ToolListTools, map[string]any{})
	if !out.Success {
		t.Fatalf("list_tools failed: %s", out.Err)
	}
	if !ctx.Tracker.Full() {
		t.Error("list_tools must mark full discovery")
	}
	m := decode(t, out)
	if m["count"] != float64(34) {
		t.Errorf("count = %v, want 34", m["count"])
	}
}

func TestExecute_SearchToolsMarksMatchesOnly(t *testing.T) {
	exec, ctx := testContext(t)
	out := exec.Execute(ctx, catalog.ToolSearchTools, map[string]any{"query": "worklog"})
	if !out.Success {
		t.Fatalf("search_tools failed: %s", out.Err)
	}
	if !ctx.Tracker.Discovered("add_worklog") || !ctx.Tracker.Discovered("get_worklogs") {
		t.Error("matching tools should be discovered")
	}
	if ctx.Tracker.Discovered("get_page") {
		t.Error("non-matching tools must stay gated")
	}
	if ctx.Tracker.Full() {
		t.Error("search_tools must not set the full flag")
	}
}

func TestExecute_DomainErrorIsFailedOutcome(t *testing.T) {
	exec, ctx := testContext(t)
	out := exec.Execute(ctx, "get_issue", map[string]any{"issue_key": "OPS-999"})
	if out.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(out.Err, `issue "OPS-999" not found`) {
		t.Errorf("Err = %q, want not-found message", out.Err)
	}
}

func TestExecute_ArgValidationFailure(t *testing.T) {
	exec, ctx := testContext(t)
	out := exec.Execute(ctx, "transition_issue", map[string]any{"issue_key": "OPS-101"})
	if out.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(out.Err, "missing: transition_id") {
		t.Errorf("Err = %q, want missing-argument message", out.Err)
	}
}

func TestExecute_IssueWireShape(t *testing.T) {
	exec, ctx := testContext(t)
	out := exec.Execute(ctx, "get_issue", map[string]any{"issue_key": "OPS-104"})
	if !out.Success {
		t.Fatalf("get_issue failed: %s", out.Err)
	}
	m := decode(t, out)
	fields, ok := m["fields"].(map[string]any)
	if !ok {
		t.Fatalf("no fields object in %v", m)
	}
	status, ok := fields["status"].(map[string]any)
	if !ok || status["name"] != "blocked" {
		t.Errorf("fields.status = %v, want name blocked", fields["status"])
	}
	if m["key"] != "OPS-104" {
		t.Errorf("key = %v, want OPS-104", m["key"])
	}
	if self, _ := m["self"].(string); !strings.Contains(self, "atlas-corp.example") {
		t.Errorf("self = %v, want API link", m["self"])
	}
}

func TestExecute_PageWireShape(t *testing.T) {
	exec, ctx := testContext(t)
	out := exec.Execute(ctx, "get_page", map[string]any{"page_id": "page-2002"})
	if !out.Success {
		t.Fatalf("get_page failed: %s", out.Err)
	}
	m := decode(t, out)
	version, ok := m["version"].(map[string]any)
	if !ok || version["number"] != float64(3) {
		t.Errorf("version = %v, want number 3", m["version"])
	}
	body, ok := m["body"].(map[string]any)
	if !ok {
		t.Fatalf("no body in %v", m)
	}
	storage, _ := body["storage"].(map[string]any)
	if storage == nil || !strings.Contains(storage["value"].(string), "OPS-104") {
		t.Error("body.storage.value should carry the page text")
	}
}

func TestExecute_SearchPagesOmitsBody(t *testing.T) {
	exec, ctx := testContext(t)
	out := exec.Execute(ctx, "search_pages", map[string]any{"query": "rollout"})
	if !out.Success {
		t.Fatalf("search_pages failed: %s", out.Err)
	}
	if strings.Contains(out.Output, "Decisions from the July review") {
		t.Error("search results must not leak page bodies")
	}
	if !strings.Contains(out.Output, "page-2002") {
		t.Error("search results should include the live page id")
	}
}

func TestExecute_InlineCommentAnchor(t *testing.T) {
	exec, ctx := testContext(t)
	out := exec.Execute(ctx, "get_inline_comments", map[string]any{"page_id": "page-2002"})
	if !out.Success {
		t.Fatalf("get_inline_comments failed: %s", out.Err)
	}
	if !strings.Contains(out.Output, `"anchor":"OPS-104"`) {
		t.Errorf("output = %s, want inlineProperties anchor", out.Output)
	}
	if !ctx.World.ReadInlineCommentsOf("page-2002") {
		t.Error("reading inline comments must land in the read log")
	}
}

func TestExecute_NumericCoercion(t *testing.T) {
	exec, ctx := testContext(t)
	// version arrives as float64 from JSON, transition id as number.
	out := exec.Execute(ctx, "update_page", map[string]any{
		"page_id": "page-2001",
		"version": float64(1),
		"body":    "updated",
	})
	if !out.Success {
		t.Fatalf("update_page failed: %s", out.Err)
	}
	out = exec.Execute(ctx, "transition_issue", map[string]any{
		"issue_key":     "OPS-101",
		"transition_id": float64(21),
	})
	if !out.Success {
		t.Fatalf("transition_issue failed: %s", out.Err)
	}
	m := decode(t, out)
	fields := m["fields"].(map[string]any)
	if fields["status"].(map[string]any)["name"] != "done" {
		t.Error("numeric transition_id should coerce to the string id")
	}
}

func TestExecute_CallToolWithoutTarget(t *testing.T) {
	exec, ctx := testContext(t)
	out := exec.Execute(ctx, catalog.ToolCallTool, map[string]any{"name": "get_issue"})
	if out.Success {
		t.Fatal("expected failure: the engine unwraps valid call_tool invocations before dispatch")
	}
	if !strings.Contains(out.Err, "target tool name") {
		t.Errorf("Err = %q, want target-name message", out.Err)
	}
}

func TestExecute_RecoversPanic(t *testing.T) {
	exec, ctx := testContext(t)
	ctx.World = nil // forces a nil-pointer panic inside the handler
	out := exec.Execute(ctx, "get_projects", map[string]any{})
	if out.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(out.Err, "internal error in get_projects") {
		t.Errorf("Err = %q, want recovered panic message", out.Err)
	}
}

func TestArgs_Accessors(t *testing.T) {
	a := Args{
		"s":   "text",
		"n":   float64(21),
		"ns":  "42",
		"obj": `{"k": "v"}`,
	}
	if a.String("n") != "21" {
		t.Errorf(`String("n") = %q, want "21"`, a.String("n"))
	}
	if a.String("missing") != "" {
		t.Errorf(`String(missing) = %q, want ""`, a.String("missing"))
	}
	if n, err := a.Int("ns"); err != nil || n != 42 {
		t.Errorf("Int(ns) = %d, %v; want 42", n, err)
	}
	if _, err := a.Int("s"); err == nil {
		t.Error("Int on non-numeric string should error")
	}
	obj, err := a.Object("obj")
	if err != nil || obj["k"] != "v" {
		t.Errorf("Object(obj) = %v, %v; want parsed map", obj, err)
	}
}
