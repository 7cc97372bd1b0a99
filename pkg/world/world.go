package world

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// AgentUser is the identity all trainee-authored comments and worklogs
// carry.
const AgentUser = "agent.bot"

// World is one session's scenario state. It is not safe for concurrent
// use; the caller serializes invocations per session.
type World struct {
	now func() time.Time

	Scenario ScenarioMeta

	projects    []Project
	issues      map[string]*Issue
	issueOrder  []string
	nextIssue   map[string]int
	transitions map[string][]Transition

	spaces    []Space
	pages     map[string]*Page
	pageOrder []string

	components     map[string]*Component
	componentOrder []string
	relationships  []Relationship
	fieldDefs      []CustomFieldDef

	Actions []ActionEntry
	Reads   []ReadEntry

	nextID int
}

// SetClock overrides the wall clock, for deterministic tests.
func (w *World) SetClock(now func() time.Time) { w.now = now }

func (w *World) stamp() time.Time { return w.now() }

func (w *World) newID(prefix string) string {
	w.nextID++
	return fmt.Sprintf("%s-%d", prefix, w.nextID+10000)
}

// logAction appends exactly one entry per successful mutation.
func (w *World) logAction(action, target, details string) {
	w.Actions = append(w.Actions, ActionEntry{
		At: w.stamp(), Action: action, Target: target, Details: details,
	})
}

// logRead appends one entry for an information-revealing query.
func (w *World) logRead(resource, details string) {
	w.Reads = append(w.Reads, ReadEntry{
		At: w.stamp(), Resource: resource, Details: details,
	})
}

// ─── Tracker queries ────────────────────────────────────────────────

// Projects lists the tracker projects.
func (w *World) Projects() []Project { return w.projects }

// Issue returns the issue with the given key.
func (w *World) Issue(key string) (*Issue, error) {
	iss, ok := w.issues[strings.ToUpper(strings.TrimSpace(key))]
	if !ok {
		return nil, fmt.Errorf("issue %q not found (known issues: %s)", key, strings.Join(w.issueOrder, ", "))
	}
	return iss, nil
}

// Issues lists the issues of a project in creation order.
func (w *World) Issues(projectKey string) ([]*Issue, error) {
	pk := strings.ToUpper(strings.TrimSpace(projectKey))
	if _, err := w.project(pk); err != nil {
		return nil, err
	}
	var out []*Issue
	for _, key := range w.issueOrder {
		if w.issues[key].ProjectKey == pk {
			out = append(out, w.issues[key])
		}
	}
	return out, nil
}

// SearchIssues matches the query against key, summary, and description.
func (w *World) SearchIssues(query string) []*Issue {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []*Issue
	if q == "" {
		return out
	}
	for _, key := range w.issueOrder {
		iss := w.issues[key]
		if strings.Contains(strings.ToLower(iss.Key), q) ||
			strings.Contains(strings.ToLower(iss.Summary), q) ||
			strings.Contains(strings.ToLower(iss.Description), q) {
			out = append(out, iss)
		}
	}
	return out
}

// Transitions returns the static transition table for an issue.
func (w *World) Transitions(key string) ([]Transition, error) {
	iss, err := w.Issue(key)
	if err != nil {
		return nil, err
	}
	return w.transitions[iss.Key], nil
}

func (w *World) project(key string) (*Project, error) {
	for i := range w.projects {
		if w.projects[i].Key == key {
			return &w.projects[i], nil
		}
	}
	var known []string
	for _, p := range w.projects {
		known = append(known, p.Key)
	}
	return nil, fmt.Errorf("project %q not found (known projects: %s)", key, strings.Join(known, ", "))
}

// ─── Tracker mutations ──────────────────────────────────────────────

// editableFields are the issue fields edit_issue may touch directly;
// any other name lands in CustomFields.
var editableFields = map[string]bool{
	"summary":     true,
	"description": true,
}

// EditIssue updates issue fields and bumps the Updated timestamp.
func (w *World) EditIssue(key string, fields map[string]any) (*Issue, error) {
	iss, err := w.Issue(key)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("edit_issue on %s: no fields given", iss.Key)
	}
	var changed []string
	for name, value := range fields {
		switch {
		case name == "summary":
			iss.Summary = fmt.Sprint(value)
		case name == "description":
			iss.Description = fmt.Sprint(value)
		default:
			if iss.CustomFields == nil {
				iss.CustomFields = map[string]any{}
			}
			iss.CustomFields[name] = value
		}
		changed = append(changed, name)
	}
	sort.Strings(changed)
	iss.Updated = w.stamp()
	w.logAction("edit_issue", iss.Key, "fields: "+strings.Join(changed, ", "))
	return iss, nil
}

// TransitionIssue moves an issue through a transition from its table.
// The from→to pair is recorded in the action log; the verdict depends
// on it.
func (w *World) TransitionIssue(key, transitionID string) (*Issue, error) {
	iss, err := w.Issue(key)
	if err != nil {
		return nil, err
	}
	table := w.transitions[iss.Key]
	var chosen *Transition
	for i := range table {
		if table[i].ID == strings.TrimSpace(transitionID) {
			chosen = &table[i]
			break
		}
	}
	if chosen == nil {
		var avail []string
		for _, t := range table {
			avail = append(avail, fmt.Sprintf("%s → %s", t.ID, t.ToStatus))
		}
		return nil, fmt.Errorf("transition %q is not available for %s (available: %s)",
			transitionID, iss.Key, strings.Join(avail, "; "))
	}
	from := iss.Status
	iss.Status = chosen.ToStatus
	iss.Updated = w.stamp()
	w.logAction("transition_issue", iss.Key, fmt.Sprintf("%s → %s", from, chosen.ToStatus))
	return iss, nil
}

// AddComment appends a comment to an issue.
func (w *World) AddComment(key, body string) (*Comment, error) {
	iss, err := w.Issue(key)
	if err != nil {
		return nil, err
	}
	c := Comment{ID: w.newID("cmt"), Author: AgentUser, Body: body, Created: w.stamp()}
	iss.Comments = append(iss.Comments, c)
	iss.Updated = c.Created
	w.logAction("add_comment", iss.Key, fmt.Sprintf("comment %s", c.ID))
	return &c, nil
}

// AddWorklog parses the time string (8-hour workday) and appends a
// worklog.
func (w *World) AddWorklog(key, timeSpent, comment string) (*Worklog, error) {
	iss, err := w.Issue(key)
	if err != nil {
		return nil, err
	}
	seconds, err := ParseTimeSpent(timeSpent)
	if err != nil {
		return nil, err
	}
	wl := Worklog{
		ID: w.newID("wl"), Author: AgentUser,
		TimeSpent: timeSpent, Seconds: seconds,
		Comment: comment, Created: w.stamp(),
	}
	iss.Worklogs = append(iss.Worklogs, wl)
	iss.Updated = wl.Created
	w.logAction("add_worklog", iss.Key, fmt.Sprintf("%s (%ds)", timeSpent, seconds))
	return &wl, nil
}

// AddRemoteLink attaches an external link to an issue.
func (w *World) AddRemoteLink(key, url, title string) (*RemoteLink, error) {
	iss, err := w.Issue(key)
	if err != nil {
		return nil, err
	}
	rl := RemoteLink{ID: w.newID("rlink"), URL: url, Title: title}
	iss.RemoteLinks = append(iss.RemoteLinks, rl)
	iss.Updated = w.stamp()
	w.logAction("add_remote_link", iss.Key, url)
	return &rl, nil
}

// CreateIssue creates an issue with the next sequential key for the
// project.
func (w *World) CreateIssue(projectKey, issueType, summary, description string) (*Issue, error) {
	pk := strings.ToUpper(strings.TrimSpace(projectKey))
	proj, err := w.project(pk)
	if err != nil {
		return nil, err
	}
	typeOK := false
	for _, t := range proj.IssueTypes {
		if strings.EqualFold(t, issueType) {
			issueType = t
			typeOK = true
			break
		}
	}
	if !typeOK {
		return nil, fmt.Errorf("issue type %q not known in project %s (types: %s)",
			issueType, pk, strings.Join(proj.IssueTypes, ", "))
	}
	num := w.nextIssue[pk]
	w.nextIssue[pk] = num + 1
	key := fmt.Sprintf("%s-%d", pk, num)
	iss := &Issue{
		ID: w.newID("iss"), Key: key, ProjectKey: pk,
		Summary: summary, Description: description,
		Status: "open", IssueType: issueType,
		Created: w.stamp(), Updated: w.stamp(),
	}
	w.issues[key] = iss
	w.issueOrder = append(w.issueOrder, key)
	w.transitions[key] = defaultTransitionTable()
	w.logAction("create_issue", key, summary)
	return iss, nil
}

// ─── Pages ──────────────────────────────────────────────────────────

// Spaces lists the wiki spaces.
func (w *World) Spaces() []Space { return w.spaces }

// Page returns a page and records that its content was read.
func (w *World) Page(id string) (*Page, error) {
	p, err := w.page(id)
	if err != nil {
		return nil, err
	}
	w.logRead(ReadPage, p.ID)
	return p, nil
}

// page looks up a page without logging a read.
func (w *World) page(id string) (*Page, error) {
	p, ok := w.pages[strings.TrimSpace(id)]
	if !ok {
		return nil, fmt.Errorf("page %q not found (known pages: %s)", id, strings.Join(w.pageOrder, ", "))
	}
	return p, nil
}

// SearchPages matches the query against page titles and bodies. Search
// results reveal only titles, so no read is logged.
func (w *World) SearchPages(query string) []*Page {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []*Page
	if q == "" {
		return out
	}
	for _, id := range w.pageOrder {
		p := w.pages[id]
		if strings.Contains(strings.ToLower(p.Title), q) ||
			strings.Contains(strings.ToLower(p.Body), q) {
			out = append(out, p)
		}
	}
	return out
}

// PageChildren lists the direct children of a page.
func (w *World) PageChildren(id string) ([]*Page, error) {
	parent, err := w.page(id)
	if err != nil {
		return nil, err
	}
	var out []*Page
	for _, pid := range w.pageOrder {
		if w.pages[pid].ParentID == parent.ID {
			out = append(out, w.pages[pid])
		}
	}
	return out, nil
}

// InlineComments returns a page's inline comments and records the read.
// This read log entry is what later proves the trainee saw the hidden
// constraint.
func (w *World) InlineComments(id string) ([]PageComment, error) {
	p, err := w.page(id)
	if err != nil {
		return nil, err
	}
	w.logRead(ReadInlineComments, p.ID)
	return p.InlineComments, nil
}

// FooterComments returns a page's footer comments.
func (w *World) FooterComments(id string) ([]PageComment, error) {
	p, err := w.page(id)
	if err != nil {
		return nil, err
	}
	return p.FooterComments, nil
}

// CreatePage creates a page at version 1.
func (w *World) CreatePage(spaceID, title, body string) (*Page, error) {
	spaceOK := false
	for _, s := range w.spaces {
		if s.ID == spaceID || s.Key == spaceID {
			spaceID = s.ID
			spaceOK = true
			break
		}
	}
	if !spaceOK {
		var known []string
		for _, s := range w.spaces {
			known = append(known, s.ID)
		}
		return nil, fmt.Errorf("space %q not found (known spaces: %s)", spaceID, strings.Join(known, ", "))
	}
	p := &Page{ID: w.newID("page"), SpaceID: spaceID, Title: title, Body: body, Version: 1}
	w.pages[p.ID] = p
	w.pageOrder = append(w.pageOrder, p.ID)
	w.logAction("create_page", p.ID, title)
	return p, nil
}

// UpdatePage applies an optimistically locked update: the caller's
// version must equal the page's current version or the page is left
// unmutated.
func (w *World) UpdatePage(id string, version int, title, body string) (*Page, error) {
	p, err := w.page(id)
	if err != nil {
		return nil, err
	}
	if version != p.Version {
		return nil, fmt.Errorf("version conflict on page %s: update is based on version %d but the page is at version %d — fetch the page again and retry",
			p.ID, version, p.Version)
	}
	if title != "" {
		p.Title = title
	}
	if body != "" {
		p.Body = body
	}
	p.Version++
	w.logAction("update_page", p.ID, fmt.Sprintf("version %d → %d", version, p.Version))
	return p, nil
}

// AddInlineComment attaches an inline comment authored by the agent.
func (w *World) AddInlineComment(id, anchor, body string) (*PageComment, error) {
	p, err := w.page(id)
	if err != nil {
		return nil, err
	}
	c := PageComment{ID: w.newID("inline"), Anchor: anchor, Author: AgentUser, Body: body, Created: w.stamp()}
	p.InlineComments = append(p.InlineComments, c)
	w.logAction("add_inline_comment", p.ID, "anchor: "+anchor)
	return &c, nil
}

// AddFooterComment adds a footer comment authored by the agent.
func (w *World) AddFooterComment(id, body string) (*PageComment, error) {
	p, err := w.page(id)
	if err != nil {
		return nil, err
	}
	c := PageComment{ID: w.newID("footer"), Author: AgentUser, Body: body, Created: w.stamp()}
	p.FooterComments = append(p.FooterComments, c)
	w.logAction("add_footer_comment", p.ID, c.ID)
	return &c, nil
}

// ─── Components ─────────────────────────────────────────────────────

// Components lists catalog components in creation order.
func (w *World) Components() []*Component {
	out := make([]*Component, 0, len(w.componentOrder))
	for _, id := range w.componentOrder {
		out = append(out, w.components[id])
	}
	return out
}

// Component returns a catalog component by id.
func (w *World) Component(id string) (*Component, error) {
	c, ok := w.components[strings.TrimSpace(id)]
	if !ok {
		return nil, fmt.Errorf("component %q not found (known components: %s)", id, strings.Join(w.componentOrder, ", "))
	}
	return c, nil
}

// SearchComponents matches the query against component names.
func (w *World) SearchComponents(query string) []*Component {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []*Component
	if q == "" {
		return out
	}
	for _, id := range w.componentOrder {
		if strings.Contains(strings.ToLower(w.components[id].Name), q) {
			out = append(out, w.components[id])
		}
	}
	return out
}

// CreateComponent adds a catalog component.
func (w *World) CreateComponent(name, componentType, description string) (*Component, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("component name must not be empty")
	}
	c := &Component{
		ID: w.newID("comp"), Name: name,
		Type: strings.ToUpper(componentType), Description: description,
		Created: w.stamp(),
	}
	w.components[c.ID] = c
	w.componentOrder = append(w.componentOrder, c.ID)
	w.logAction("create_component", c.ID, name)
	return c, nil
}

// CreateRelationship relates two existing components.
func (w *World) CreateRelationship(sourceID, targetID, relType string) (*Relationship, error) {
	if _, err := w.Component(sourceID); err != nil {
		return nil, err
	}
	if _, err := w.Component(targetID); err != nil {
		return nil, err
	}
	r := Relationship{
		ID: w.newID("rel"), SourceID: sourceID, TargetID: targetID,
		Type: strings.ToUpper(relType),
	}
	w.relationships = append(w.relationships, r)
	w.logAction("create_relationship", r.ID, fmt.Sprintf("%s %s %s", sourceID, r.Type, targetID))
	return &r, nil
}

// Relationships lists component relationships.
func (w *World) Relationships() []Relationship { return w.relationships }

// CreateCustomField declares a custom field definition.
func (w *World) CreateCustomField(name, fieldType, description string) (*CustomFieldDef, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("custom field name must not be empty")
	}
	for _, d := range w.fieldDefs {
		if strings.EqualFold(d.Name, name) {
			return nil, fmt.Errorf("custom field %q already exists", name)
		}
	}
	d := CustomFieldDef{ID: w.newID("field"), Name: name, Type: fieldType, Description: description}
	w.fieldDefs = append(w.fieldDefs, d)
	w.logAction("create_custom_field", d.ID, name)
	return &d, nil
}

// CustomFields lists declared custom field definitions.
func (w *World) CustomFields() []CustomFieldDef { return w.fieldDefs }

// ─── Verdict helpers ────────────────────────────────────────────────

// TransitionedEver reports whether the issue appears as the target of
// any transition_issue action.
func (w *World) TransitionedEver(key string) bool {
	for _, a := range w.Actions {
		if a.Action == "transition_issue" && a.Target == key {
			return true
		}
	}
	return false
}

// TransitionCountExcept counts transition_issue actions whose target is
// not the excluded key.
func (w *World) TransitionCountExcept(excluded string) int {
	seen := map[string]bool{}
	for _, a := range w.Actions {
		if a.Action == "transition_issue" && a.Target != excluded {
			seen[a.Target] = true
		}
	}
	return len(seen)
}

// ReadInlineCommentsOf reports whether the read log shows the inline
// comments of the given page were ever fetched.
func (w *World) ReadInlineCommentsOf(pageID string) bool {
	for _, r := range w.Reads {
		if r.Resource == ReadInlineComments && r.Details == pageID {
			return true
		}
	}
	return false
}
