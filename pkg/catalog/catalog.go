// Package catalog declares the simulated workplace API surface: every
// operation the trainee can invoke, its parameters in positional order,
// and a compiled JSON Schema for its arguments. The dispatch executor
// checks itself against this catalog at construction, so an
// unregistered or misspelled operation is a startup failure rather than
// a runtime surprise.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/praxislabs/gauntlet/pkg/callparse"
)

// Operation groups.
const (
	GroupShared     = "shared"
	GroupPages      = "pages"
	GroupTracker    = "tracker"
	GroupComponents = "components"
)

// Meta operations with special gating rules.
const (
	ToolListTools   = "list_tools"
	ToolSearchTools = "search_tools"
	ToolCallTool    = "call_tool"
)

// Param is one declared parameter. Params appear in positional order,
// so search_tools("roadmap") and search_tools({query: "roadmap"}) are
// the same call.
type Param struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // string, number, boolean, object
	Required    bool   `json:"required"`
	Description string `json:"description"`
}

// Tool is one declared operation.
type Tool struct {
	Name        string  `json:"name"`
	Group       string  `json:"group"`
	Description string  `json:"description"`
	Params      []Param `json:"params,omitempty"`
}

// Catalog is the full declared operation set with compiled argument
// validators.
type Catalog struct {
	tools      []Tool
	byName     map[string]Tool
	validators map[string]*argValidator
}

// New builds the catalog and compiles every argument schema. A schema
// that fails to compile is a programming error surfaced at startup.
func New() (*Catalog, error) {
	tools := declaredTools()
	c := &Catalog{
		tools:      tools,
		byName:     make(map[string]Tool, len(tools)),
		validators: make(map[string]*argValidator, len(tools)),
	}
	for _, t := range tools {
		if _, dup := c.byName[t.Name]; dup {
			return nil, fmt.Errorf("catalog: duplicate tool %q", t.Name)
		}
		c.byName[t.Name] = t
		v, err := compileArgValidator(t)
		if err != nil {
			return nil, fmt.Errorf("catalog: compile schema for %q: %w", t.Name, err)
		}
		c.validators[t.Name] = v
	}
	return c, nil
}

// Get returns the declared tool, if any.
func (c *Catalog) Get(name string) (Tool, bool) {
	t, ok := c.byName[name]
	return t, ok
}

// Tools returns all declared operations in declaration order.
func (c *Catalog) Tools() []Tool {
	return c.tools
}

// Names returns every operation name, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.tools))
	for _, t := range c.tools {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names
}

// Match returns the tools whose name or description contains the
// keyword, case-insensitively. Used by search_tools discovery.
func (c *Catalog) Match(keyword string) []Tool {
	q := strings.ToLower(strings.TrimSpace(keyword))
	if q == "" {
		return nil
	}
	var matched []Tool
	for _, t := range c.tools {
		if strings.Contains(strings.ToLower(t.Name), q) ||
			strings.Contains(strings.ToLower(t.Description), q) {
			matched = append(matched, t)
		}
	}
	return matched
}

// Shapes exports the positional tables the call parser consumes.
func (c *Catalog) Shapes() map[string]callparse.ToolShape {
	shapes := make(map[string]callparse.ToolShape, len(c.tools))
	for _, t := range c.tools {
		shape := callparse.ToolShape{}
		for _, p := range t.Params {
			shape.Slots = append(shape.Slots, p.Name)
			if p.Required {
				shape.Required = append(shape.Required, p.Name)
			}
		}
		shapes[t.Name] = shape
	}
	return shapes
}

// ValidateArgs checks the arguments of a parsed call against the tool's
// compiled schema. The error message names the offending parameters.
func (c *Catalog) ValidateArgs(name string, args map[string]any) error {
	v, ok := c.validators[name]
	if !ok {
		return fmt.Errorf("unknown tool %q", name)
	}
	return v.validate(name, args)
}

// declaredTools is the single source of truth for the operation surface.
func declaredTools() []Tool {
	s := func(name, desc string, required bool) Param {
		return Param{Name: name, Type: "string", Description: desc, Required: required}
	}
	return []Tool{
		// ── shared / meta ──
		{
			Name: ToolListTools, Group: GroupShared,
			Description: "List every available tool with its parameters. Marks all tools as discovered.",
		},
		{
			Name: ToolSearchTools, Group: GroupShared,
			Description: "Search available tools by keyword. Marks matching tools as discovered.",
			Params:      []Param{s("query", "keyword matched against tool names and descriptions", true)},
		},
		{
			Name: ToolCallTool, Group: GroupShared,
			Description: "Invoke a previously discovered tool by name with an arguments object.",
			Params: []Param{
				s("name", "target tool name", true),
				{Name: "arguments", Type: "object", Description: "arguments object for the target tool"},
			},
		},
		{
			Name: "get_current_user", Group: GroupShared,
			Description: "Return the authenticated service-account profile.",
		},
		{
			Name: "get_server_info", Group: GroupShared,
			Description: "Return workspace deployment information.",
		},

		// ── pages (wiki) ──
		{
			Name: "get_spaces", Group: GroupPages,
			Description: "List wiki spaces.",
		},
		{
			Name: "get_page", Group: GroupPages,
			Description: "Fetch a wiki page including its body and current version.",
			Params:      []Param{s("page_id", "page identifier", true)},
		},
		{
			Name: "search_pages", Group: GroupPages,
			Description: "Full-text search across page titles and bodies.",
			Params:      []Param{s("query", "search text", true)},
		},
		{
			Name: "get_page_children", Group: GroupPages,
			Description: "List the child pages of a page.",
			Params:      []Param{s("page_id", "parent page identifier", true)},
		},
		{
			Name: "create_page", Group: GroupPages,
			Description: "Create a new wiki page in a space.",
			Params: []Param{
				s("space_id", "space identifier", true),
				s("title", "page title", true),
				s("body", "page body text", true),
			},
		},
		{
			Name: "update_page", Group: GroupPages,
			Description: "Update a page body and/or title. Requires the current version number; a stale version is rejected.",
			Params: []Param{
				s("page_id", "page identifier", true),
				{Name: "version", Type: "number", Description: "the page version this edit is based on", Required: true},
				s("title", "new title (optional)", false),
				s("body", "new body (optional)", false),
			},
		},
		{
			Name: "get_inline_comments", Group: GroupPages,
			Description: "Fetch the inline (anchored) comments on a page.",
			Params:      []Param{s("page_id", "page identifier", true)},
		},
		{
			Name: "get_footer_comments", Group: GroupPages,
			Description: "Fetch the footer comments on a page.",
			Params:      []Param{s("page_id", "page identifier", true)},
		},
		{
			Name: "add_inline_comment", Group: GroupPages,
			Description: "Attach an inline comment to an anchor inside a page.",
			Params: []Param{
				s("page_id", "page identifier", true),
				s("anchor", "text anchor the comment attaches to", true),
				s("body", "comment text", true),
			},
		},
		{
			Name: "add_footer_comment", Group: GroupPages,
			Description: "Add a footer comment to a page.",
			Params: []Param{
				s("page_id", "page identifier", true),
				s("body", "comment text", true),
			},
		},

		// ── tracker (issues) ──
		{
			Name: "get_projects", Group: GroupTracker,
			Description: "List tracker projects.",
		},
		{
			Name: "get_issue", Group: GroupTracker,
			Description: "Fetch an issue by key.",
			Params:      []Param{s("issue_key", "issue key, e.g. OPS-101", true)},
		},
		{
			Name: "search_issues", Group: GroupTracker,
			Description: "Search issues by text across key, summary, and description.",
			Params:      []Param{s("query", "search text", true)},
		},
		{
			Name: "list_issues", Group: GroupTracker,
			Description: "List all issues in a project.",
			Params:      []Param{s("project_key", "project key, e.g. OPS", true)},
		},
		{
			Name: "create_issue", Group: GroupTracker,
			Description: "Create a new issue in a project.",
			Params: []Param{
				s("project_key", "project key", true),
				s("issue_type", "issue type name", true),
				s("summary", "one-line summary", true),
				s("description", "longer description (optional)", false),
			},
		},
		{
			Name: "edit_issue", Group: GroupTracker,
			Description: "Edit issue fields: summary, description, priority, labels, or custom fields.",
			Params: []Param{
				s("issue_key", "issue key", true),
				{Name: "fields", Type: "object", Description: "field name to new value", Required: true},
			},
		},
		{
			Name: "get_transitions", Group: GroupTracker,
			Description: "List the status transitions currently available for an issue.",
			Params:      []Param{s("issue_key", "issue key", true)},
		},
		{
			Name: "transition_issue", Group: GroupTracker,
			Description: "Move an issue through a workflow transition by transition id.",
			Params: []Param{
				s("issue_key", "issue key", true),
				s("transition_id", "transition id from get_transitions", true),
			},
		},
		{
			Name: "add_comment", Group: GroupTracker,
			Description: "Add a comment to an issue.",
			Params: []Param{
				s("issue_key", "issue key", true),
				s("body", "comment text", true),
			},
		},
		{
			Name: "get_comments", Group: GroupTracker,
			Description: "List the comments on an issue.",
			Params:      []Param{s("issue_key", "issue key", true)},
		},
		{
			Name: "add_worklog", Group: GroupTracker,
			Description: `Log work on an issue. Time is written like "2h 30m" or "1d 4h" (8h workday).`,
			Params: []Param{
				s("issue_key", "issue key", true),
				s("time_spent", `time spent, e.g. "2h 30m"`, true),
				s("comment", "worklog note (optional)", false),
			},
		},
		{
			Name: "get_worklogs", Group: GroupTracker,
			Description: "List the worklogs on an issue.",
			Params:      []Param{s("issue_key", "issue key", true)},
		},
		{
			Name: "add_remote_link", Group: GroupTracker,
			Description: "Attach an external link to an issue.",
			Params: []Param{
				s("issue_key", "issue key", true),
				s("url", "link target", true),
				s("title", "link title", true),
			},
		},

		// ── components (service catalog) ──
		{
			Name: "list_components", Group: GroupComponents,
			Description: "List catalog components.",
		},
		{
			Name: "get_component", Group: GroupComponents,
			Description: "Fetch a catalog component by id.",
			Params:      []Param{s("component_id", "component identifier", true)},
		},
		{
			Name: "search_components", Group: GroupComponents,
			Description: "Search components by name.",
			Params:      []Param{s("query", "search text", true)},
		},
		{
			Name: "create_component", Group: GroupComponents,
			Description: "Create a catalog component.",
			Params: []Param{
				s("name", "component name", true),
				s("component_type", "component type, e.g. SERVICE or LIBRARY", true),
				s("description", "component description (optional)", false),
			},
		},
		{
			Name: "create_relationship", Group: GroupComponents,
			Description: "Relate two components, e.g. DEPENDS_ON.",
			Params: []Param{
				s("source_id", "source component id", true),
				s("target_id", "target component id", true),
				s("relationship_type", "relationship type", true),
			},
		},
		{
			Name: "create_custom_field", Group: GroupComponents,
			Description: "Define a custom field usable on components and issues.",
			Params: []Param{
				s("name", "field name", true),
				s("field_type", "field value type, e.g. text or number", true),
				s("description", "field description (optional)", false),
			},
		},
	}
}
