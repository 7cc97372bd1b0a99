// Package world holds the mutable scenario state: one simulated
// workplace with an issue tracker, a wiki page store, and a component
// catalog, plus the two append-only logs (actions and reads) that the
// verdict later inspects. All mutation goes through World methods; the
// logs are never edited or removed.
package world

import "time"

// Project is a tracker project. Issue keys are <Key>-<n> with n
// sequential per project.
type Project struct {
	Key        string   `yaml:"key" json:"key"`
	Name       string   `yaml:"name" json:"name"`
	IssueTypes []string `yaml:"issue_types" json:"issueTypes"`
}

// Issue is one tracker issue. Key is immutable once created.
type Issue struct {
	ID           string
	Key          string
	ProjectKey   string
	Summary      string
	Description  string
	Status       string
	IssueType    string
	CustomFields map[string]any
	Comments     []Comment
	Worklogs     []Worklog
	RemoteLinks  []RemoteLink
	Created      time.Time
	Updated      time.Time
}

// Transition is one legal status change for an issue. The id is what
// transition_issue takes; the per-issue table is static per scenario.
type Transition struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	ToStatus string `yaml:"to_status"`
}

// Comment is a tracker issue comment.
type Comment struct {
	ID      string
	Author  string
	Body    string
	Created time.Time
}

// Worklog records time spent on an issue, in seconds.
type Worklog struct {
	ID        string
	Author    string
	TimeSpent string
	Seconds   int
	Comment   string
	Created   time.Time
}

// RemoteLink is an external link attached to an issue.
type RemoteLink struct {
	ID    string
	URL   string
	Title string
}

// Space is a wiki space.
type Space struct {
	ID   string `yaml:"id" json:"id"`
	Key  string `yaml:"key" json:"key"`
	Name string `yaml:"name" json:"name"`
}

// Page is a wiki page. Version starts at 1 and increments by exactly
// one on every successful update; updates carrying any other version
// are rejected without mutating.
type Page struct {
	ID             string
	SpaceID        string
	ParentID       string
	Title          string
	Body           string
	Version        int
	InlineComments []PageComment
	FooterComments []PageComment
}

// PageComment is an inline (anchored) or footer comment on a page. For
// inline comments the anchor ties the comment to a location in the
// body, typically an issue key.
type PageComment struct {
	ID      string
	Anchor  string
	Author  string
	Body    string
	Created time.Time
}

// Component is a service-catalog component.
type Component struct {
	ID           string
	Name         string
	Type         string
	Description  string
	CustomFields map[string]any
	Created      time.Time
}

// Relationship relates two catalog components.
type Relationship struct {
	ID       string
	SourceID string
	TargetID string
	Type     string
}

// CustomFieldDef declares a custom field usable on components and
// issues.
type CustomFieldDef struct {
	ID          string
	Name        string
	Type        string
	Description string
}

// ActionEntry is one append-only record of a successful mutation.
type ActionEntry struct {
	At      time.Time
	Action  string
	Target  string
	Details string
}

// ReadEntry records a query that exposed hidden or critical
// information. Proving the trainee read the inline comments happens
// through this log, not through the page content.
type ReadEntry struct {
	At       time.Time
	Resource string
	Details  string
}

// Read log resources.
const (
	ReadPage           = "page"
	ReadInlineComments = "inline_comments"
)

// ScenarioMeta is the scenario's fixed judging parameters, loaded from
// the seed.
type ScenarioMeta struct {
	Title               string `yaml:"title"`
	Briefing            string `yaml:"briefing"`
	ConstrainedIssue    string `yaml:"constrained_issue"`
	ConstrainedStatus   string `yaml:"constrained_status"`
	LivePage            string `yaml:"live_page"`
	RequiredTransitions int    `yaml:"required_transitions"`
}
