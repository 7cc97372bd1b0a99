package world

import (
	"strings"
	"testing"
	"time"
)

func seeded(t *testing.T) *World {
	t.Helper()
	w, err := NewSeeded()
	if err != nil {
		t.Fatal(err)
	}
	w.SetClock(func() time.Time { return seedEpoch.Add(time.Hour) })
	return w
}

func TestSeed_Shape(t *testing.T) {
	w := seeded(t)

	if w.Scenario.ConstrainedIssue != "OPS-104" {
		t.Errorf("ConstrainedIssue = %q, want OPS-104", w.Scenario.ConstrainedIssue)
	}
	if w.Scenario.RequiredTransitions != 3 {
		t.Errorf("RequiredTransitions = %d, want 3", w.Scenario.RequiredTransitions)
	}

	iss, err := w.Issue("ops-104")
	if err != nil {
		t.Fatalf("Issue(ops-104): %v", err)
	}
	if iss.Status != "blocked" {
		t.Errorf("OPS-104 status = %q, want blocked", iss.Status)
	}

	live, err := w.Page(w.Scenario.LivePage)
	if err != nil {
		t.Fatalf("Page(live): %v", err)
	}
	if live.Version != 3 {
		t.Errorf("live page version = %d, want 3", live.Version)
	}
	if len(live.InlineComments) != 1 || live.InlineComments[0].Anchor != "OPS-104" {
		t.Errorf("live page inline comments = %+v, want one anchored to OPS-104", live.InlineComments)
	}
}

func TestIssue_NotFoundNamesKnownKeys(t *testing.T) {
	w := seeded(t)
	_, err := w.Issue("OPS-999")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "OPS-101") {
		t.Errorf("error = %q, want known issue keys listed", err.Error())
	}
}

func TestTransitionIssue(t *testing.T) {
	w := seeded(t)

	iss, err := w.TransitionIssue("OPS-101", "21")
	if err != nil {
		t.Fatalf("TransitionIssue: %v", err)
	}
	if iss.Status != "done" {
		t.Errorf("status = %q, want done", iss.Status)
	}
	if len(w.Actions) != 1 {
		t.Fatalf("len(Actions) = %d, want 1", len(w.Actions))
	}
	a := w.Actions[0]
	if a.Action != "transition_issue" || a.Target != "OPS-101" {
		t.Errorf("action = %+v, want transition_issue on OPS-101", a)
	}
	if a.Details != "open → done" {
		t.Errorf("details = %q, want %q", a.Details, "open → done")
	}
}

func TestTransitionIssue_UnknownTransition(t *testing.T) {
	w := seeded(t)
	_, err := w.TransitionIssue("OPS-101", "99")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "11 → in-progress") {
		t.Errorf("error = %q, want the available table listed", err.Error())
	}
	if len(w.Actions) != 0 {
		t.Errorf("failed transition must not log an action (got %d)", len(w.Actions))
	}
}

func TestUpdatePage_VersionConflictLeavesPageUntouched(t *testing.T) {
	w := seeded(t)
	before, _ := w.page("page-2002")
	origBody, origVersion := before.Body, before.Version

	_, err := w.UpdatePage("page-2002", origVersion-1, "", "rewritten")
	if err == nil {
		t.Fatal("expected version conflict")
	}
	if !strings.Contains(err.Error(), "version conflict on page page-2002") {
		t.Errorf("error = %q, want version conflict naming the page", err.Error())
	}
	after, _ := w.page("page-2002")
	if after.Body != origBody || after.Version != origVersion {
		t.Error("conflicting update must not mutate the page")
	}
	if len(w.Actions) != 0 {
		t.Errorf("conflicting update must not log an action (got %d)", len(w.Actions))
	}
}

func TestUpdatePage_BumpsVersion(t *testing.T) {
	w := seeded(t)
	p, err := w.UpdatePage("page-2001", 1, "", "fresh notes")
	if err != nil {
		t.Fatalf("UpdatePage: %v", err)
	}
	if p.Version != 2 {
		t.Errorf("version = %d, want 2", p.Version)
	}
	if p.Body != "fresh notes" {
		t.Errorf("body = %q, want replaced", p.Body)
	}
}

func TestCreateIssue_SequentialKey(t *testing.T) {
	w := seeded(t)
	iss, err := w.CreateIssue("OPS", "task", "New work", "")
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}
	if iss.Key != "OPS-105" {
		t.Errorf("key = %q, want OPS-105", iss.Key)
	}
	if iss.Status != "open" {
		t.Errorf("status = %q, want open", iss.Status)
	}
	if iss.IssueType != "Task" {
		t.Errorf("issue type = %q, want canonical Task", iss.IssueType)
	}
	if _, err := w.TransitionIssue(iss.Key, "21"); err != nil {
		t.Errorf("new issue should carry the default transition table: %v", err)
	}
}

func TestEditIssue_CustomFieldsCatchAll(t *testing.T) {
	w := seeded(t)
	iss, err := w.EditIssue("OPS-101", map[string]any{
		"summary":  "Revised summary",
		"priority": "High",
	})
	if err != nil {
		t.Fatalf("EditIssue: %v", err)
	}
	if iss.Summary != "Revised summary" {
		t.Errorf("summary = %q, want direct edit", iss.Summary)
	}
	if iss.CustomFields["priority"] != "High" {
		t.Errorf("CustomFields = %+v, want priority High", iss.CustomFields)
	}
	if w.Actions[0].Details != "fields: priority, summary" {
		t.Errorf("details = %q, want sorted field list", w.Actions[0].Details)
	}
}

func TestLogs_AppendOnlyOrdering(t *testing.T) {
	w := seeded(t)
	w.TransitionIssue("OPS-101", "11")
	w.AddComment("OPS-101", "started")
	w.TransitionIssue("OPS-101", "21")

	if len(w.Actions) != 3 {
		t.Fatalf("len(Actions) = %d, want 3", len(w.Actions))
	}
	wantOrder := []string{"transition_issue", "add_comment", "transition_issue"}
	for i, want := range wantOrder {
		if w.Actions[i].Action != want {
			t.Errorf("Actions[%d] = %q, want %q", i, w.Actions[i].Action, want)
		}
	}
}

func TestReads_OnlyContentRevealingQueriesLogged(t *testing.T) {
	w := seeded(t)

	w.SearchPages("rollout")
	if len(w.Reads) != 0 {
		t.Errorf("search must not log a read (got %d)", len(w.Reads))
	}

	if _, err := w.Page("page-2002"); err != nil {
		t.Fatal(err)
	}
	if _, err := w.InlineComments("page-2002"); err != nil {
		t.Fatal(err)
	}
	if len(w.Reads) != 2 {
		t.Fatalf("len(Reads) = %d, want 2", len(w.Reads))
	}
	if w.Reads[1].Resource != ReadInlineComments || w.Reads[1].Details != "page-2002" {
		t.Errorf("read = %+v, want inline_comments of page-2002", w.Reads[1])
	}
	if !w.ReadInlineCommentsOf("page-2002") {
		t.Error("ReadInlineCommentsOf should see the logged read")
	}
}

func TestTransitionCountExcept_DistinctTargets(t *testing.T) {
	w := seeded(t)
	w.TransitionIssue("OPS-101", "11")
	w.TransitionIssue("OPS-101", "21")
	w.TransitionIssue("OPS-102", "21")
	w.TransitionIssue("OPS-104", "21")

	if got := w.TransitionCountExcept("OPS-104"); got != 2 {
		t.Errorf("TransitionCountExcept = %d, want 2 distinct issues", got)
	}
	if !w.TransitionedEver("OPS-104") {
		t.Error("TransitionedEver(OPS-104) should be true")
	}
}

func TestAddWorklog(t *testing.T) {
	w := seeded(t)
	wl, err := w.AddWorklog("OPS-101", "1d 4h", "migration work")
	if err != nil {
		t.Fatalf("AddWorklog: %v", err)
	}
	if wl.Seconds != 12*3600 {
		t.Errorf("Seconds = %d, want 12h in seconds (8h workday)", wl.Seconds)
	}
	if wl.Author != AgentUser {
		t.Errorf("Author = %q, want %q", wl.Author, AgentUser)
	}
}

func TestParseTimeSpent(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"2h 30m", 2*3600 + 30*60, true},
		{"1d 4h", 12 * 3600, true},
		{"45s", 45, true},
		{"90M", 90 * 60, true},
		{"", 0, false},
		{"2x", 0, false},
		{"h", 0, false},
		{"-1h", 0, false},
	}
	for _, c := range cases {
		got, err := ParseTimeSpent(c.in)
		if c.ok && err != nil {
			t.Errorf("ParseTimeSpent(%q) error: %v", c.in, err)
		}
		if !c.ok && err == nil {
			t.Errorf("ParseTimeSpent(%q) = %d, want error", c.in, got)
		}
		if c.ok && got != c.want {
			t.Errorf("ParseTimeSpent(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestComponents_Lifecycle(t *testing.T) {
	w := seeded(t)
	a, err := w.CreateComponent("billing-export", "service", "nightly export job")
	if err != nil {
		t.Fatal(err)
	}
	if a.Type != "SERVICE" {
		t.Errorf("Type = %q, want uppercased SERVICE", a.Type)
	}
	b, _ := w.CreateComponent("atlas-warehouse", "SERVICE", "")

	rel, err := w.CreateRelationship(a.ID, b.ID, "depends_on")
	if err != nil {
		t.Fatalf("CreateRelationship: %v", err)
	}
	if rel.Type != "DEPENDS_ON" {
		t.Errorf("rel type = %q, want DEPENDS_ON", rel.Type)
	}

	if _, err := w.CreateRelationship(a.ID, "comp-nope", "DEPENDS_ON"); err == nil {
		t.Error("expected error for unknown target component")
	}

	if got := w.SearchComponents("billing"); len(got) != 1 {
		t.Errorf("SearchComponents(billing) = %d results, want 1", len(got))
	}
}

func TestCreateCustomField_DuplicateName(t *testing.T) {
	w := seeded(t)
	if _, err := w.CreateCustomField("Priority", "text", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := w.CreateCustomField("priority", "text", ""); err == nil {
		t.Error("expected error for case-insensitive duplicate")
	}
}
