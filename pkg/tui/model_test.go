package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/praxislabs/gauntlet/pkg/engine"
	"github.com/praxislabs/gauntlet/pkg/session"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	eng, err := engine.New(session.NewStore(nil))
	if err != nil {
		t.Fatal(err)
	}
	m := NewModel(eng)
	sized, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return sized.(Model)
}

func TestModel_StartsWithBriefing(t *testing.T) {
	m := newTestModel(t)
	if m.meta.Title == "" {
		t.Fatal("expected scenario title")
	}
	if !strings.Contains(m.View(), m.meta.Title) {
		t.Error("view should show the scenario title")
	}
	if m.done {
		t.Error("fresh model should not be done")
	}
}

func TestModel_ViewBeforeFirstExchangeCreatesNoSession(t *testing.T) {
	store := session.NewStore(nil)
	eng, err := engine.New(store)
	if err != nil {
		t.Fatal(err)
	}
	m := NewModel(eng)
	sized, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = sized.(Model)

	_ = m.View()
	if store.Len() != 0 {
		t.Errorf("store has %d session(s) before the first exchange, want 0", store.Len())
	}

	m.input.SetValue("list_tools()")
	next, _ := m.submit()
	m = next.(Model)
	if store.Len() != 1 {
		t.Errorf("store has %d session(s) after the first exchange, want 1", store.Len())
	}
	if !strings.Contains(m.statusBar(), "discovered all") {
		t.Errorf("status bar %q should reflect the live session", m.statusBar())
	}
}

func TestModel_SubmitToolCall(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("list_tools()")

	next, _ := m.submit()
	m = next.(Model)

	if len(m.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(m.entries))
	}
	if m.entries[0].result.Status != engine.StatusIntermediate {
		t.Errorf("status = %q, want %q", m.entries[0].result.Status, engine.StatusIntermediate)
	}
	if len(m.history) != 2 {
		t.Errorf("history length = %d, want 2", len(m.history))
	}
	if m.done {
		t.Error("tool call should not end the game")
	}
}

func TestModel_VerdictEndsGame(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("I finished the rollout work on all the tickets.")

	next, _ := m.submit()
	m = next.(Model)

	if len(m.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(m.entries))
	}
	r := m.entries[0].result
	if r.Status != engine.StatusFail || r.FailType != engine.FailWrongAnswer {
		t.Errorf("result = %+v, want FAIL/wrong_answer for an idle claim", r)
	}
	if !m.done {
		t.Error("verdict should end the game")
	}
}

func TestRenderResult_FailGlyph(t *testing.T) {
	out := renderResult(engine.Result{
		Status:   engine.StatusFail,
		FailType: engine.FailDiscovery,
		Message:  "tool not discovered",
	})
	if !strings.Contains(out, GlyphFailed) {
		t.Errorf("rendered result %q should carry the failure glyph", out)
	}
}

func TestRenderResult_DomainFailureGlyph(t *testing.T) {
	out := renderResult(engine.Result{
		Status:   engine.StatusIntermediate,
		FailType: engine.FailDomain,
		Message:  "get_issue failed: no issue OPS-999",
	})
	if !strings.Contains(out, GlyphIntermediate) {
		t.Errorf("rendered result %q should carry the intermediate glyph", out)
	}
	if strings.Contains(out, GlyphFailed) {
		t.Errorf("rendered result %q should not use the hard failure glyph for a recoverable error", out)
	}
}

func TestIndentJSON_PassthroughOnInvalid(t *testing.T) {
	if got := indentJSON("not json"); got != "not json" {
		t.Errorf("indentJSON = %q, want passthrough", got)
	}
	if got := indentJSON(`{"a":1}`); !strings.Contains(got, "\n") {
		t.Errorf("indentJSON = %q, want indented object", got)
	}
}
