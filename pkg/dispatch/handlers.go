package dispatch

import (
	"fmt"

	"github.com/praxislabs/gauntlet/pkg/catalog"
	"github.com/praxislabs/gauntlet/pkg/world"
)

// registry declares one handler per catalog operation. NewExecutor
// verifies the two stay in lockstep.
func registry() map[string]handlerFunc {
	return map[string]handlerFunc{
		// shared / meta
		catalog.ToolListTools:   handleListTools,
		catalog.ToolSearchTools: handleSearchTools,
		catalog.ToolCallTool:    handleCallTool,
		"get_current_user":      handleCurrentUser,
		"get_server_info":       handleServerInfo,

		// pages
		"get_spaces":          handleGetSpaces,
		"get_page":            handleGetPage,
		"search_pages":        handleSearchPages,
		"get_page_children":   handleGetPageChildren,
		"create_page":         handleCreatePage,
		"update_page":         handleUpdatePage,
		"get_inline_comments": handleGetInlineComments,
		"get_footer_comments": handleGetFooterComments,
		"add_inline_comment":  handleAddInlineComment,
		"add_footer_comment":  handleAddFooterComment,

		// tracker
		"get_projects":     handleGetProjects,
		"get_issue":        handleGetIssue,
		"search_issues":    handleSearchIssues,
		"list_issues":      handleListIssues,
		"create_issue":     handleCreateIssue,
		"edit_issue":       handleEditIssue,
		"get_transitions":  handleGetTransitions,
		"transition_issue": handleTransitionIssue,
		"add_comment":      handleAddComment,
		"get_comments":     handleGetComments,
		"add_worklog":      handleAddWorklog,
		"get_worklogs":     handleGetWorklogs,
		"add_remote_link":  handleAddRemoteLink,

		// components
		"list_components":     handleListComponents,
		"get_component":       handleGetComponent,
		"search_components":   handleSearchComponents,
		"create_component":    handleCreateComponent,
		"create_relationship": handleCreateRelationship,
		"create_custom_field": handleCreateCustomField,
	}
}

// ─── shared / meta ──────────────────────────────────────────────────

func handleListTools(ctx *Context, _ Args) (any, error) {
	tools := ctx.Catalog.Tools()
	ctx.Tracker.MarkAll(ctx.Catalog.Names())
	wired := make([]map[string]any, 0, len(tools))
	for _, t := range tools {
		wired = append(wired, toolWire(t))
	}
	return map[string]any{"count": len(wired), "tools": wired}, nil
}

func handleSearchTools(ctx *Context, args Args) (any, error) {
	query := args.String("query")
	matched := ctx.Catalog.Match(query)
	wired := make([]map[string]any, 0, len(matched))
	for _, t := range matched {
		ctx.Tracker.Mark(t.Name)
		wired = append(wired, toolWire(t))
	}
	return map[string]any{"query": query, "count": len(wired), "tools": wired}, nil
}

func toolWire(t catalog.Tool) map[string]any {
	params := make([]map[string]any, 0, len(t.Params))
	for _, p := range t.Params {
		params = append(params, map[string]any{
			"name":        p.Name,
			"type":        p.Type,
			"required":    p.Required,
			"description": p.Description,
		})
	}
	return map[string]any{
		"name":        t.Name,
		"group":       t.Group,
		"description": t.Description,
		"parameters":  params,
	}
}

// handleCallTool only fires when the engine could not unwrap the call,
// which means the target name was missing.
func handleCallTool(_ *Context, _ Args) (any, error) {
	return nil, fmt.Errorf("call_tool requires a target tool name in its \"name\" argument")
}

func handleCurrentUser(_ *Context, _ Args) (any, error) {
	return map[string]any{
		"accountId":   world.AgentUser,
		"displayName": "Atlas Ops Agent",
		"email":       world.AgentUser + "@atlas-corp.example",
		"timezone":    "UTC",
	}, nil
}

func handleServerInfo(_ *Context, _ Args) (any, error) {
	return map[string]any{
		"baseUrl":        trackerBase,
		"deploymentType": "Cloud",
		"version":        "1001.0.0-SNAPSHOT",
		"services":       []string{"tracker", "wiki", "catalog"},
	}, nil
}

// ─── pages ──────────────────────────────────────────────────────────

func handleGetSpaces(ctx *Context, _ Args) (any, error) {
	spaces := ctx.World.Spaces()
	wired := make([]map[string]any, 0, len(spaces))
	for _, s := range spaces {
		wired = append(wired, map[string]any{"id": s.ID, "key": s.Key, "name": s.Name})
	}
	return map[string]any{"results": wired}, nil
}

func handleGetPage(ctx *Context, args Args) (any, error) {
	p, err := ctx.World.Page(args.String("page_id"))
	if err != nil {
		return nil, err
	}
	return pageWire(p, true), nil
}

func handleSearchPages(ctx *Context, args Args) (any, error) {
	pages := ctx.World.SearchPages(args.String("query"))
	wired := make([]map[string]any, 0, len(pages))
	for _, p := range pages {
		wired = append(wired, pageWire(p, false))
	}
	return map[string]any{"results": wired, "size": len(wired)}, nil
}

func handleGetPageChildren(ctx *Context, args Args) (any, error) {
	children, err := ctx.World.PageChildren(args.String("page_id"))
	if err != nil {
		return nil, err
	}
	wired := make([]map[string]any, 0, len(children))
	for _, p := range children {
		wired = append(wired, pageWire(p, false))
	}
	return map[string]any{"results": wired, "size": len(wired)}, nil
}

func handleCreatePage(ctx *Context, args Args) (any, error) {
	p, err := ctx.World.CreatePage(args.String("space_id"), args.String("title"), args.String("body"))
	if err != nil {
		return nil, err
	}
	return pageWire(p, true), nil
}

func handleUpdatePage(ctx *Context, args Args) (any, error) {
	version, err := args.Int("version")
	if err != nil {
		return nil, err
	}
	p, err := ctx.World.UpdatePage(args.String("page_id"), version, args.String("title"), args.String("body"))
	if err != nil {
		return nil, err
	}
	return pageWire(p, true), nil
}

func handleGetInlineComments(ctx *Context, args Args) (any, error) {
	comments, err := ctx.World.InlineComments(args.String("page_id"))
	if err != nil {
		return nil, err
	}
	wired := make([]map[string]any, 0, len(comments))
	for _, c := range comments {
		wired = append(wired, pageCommentWire(c, true))
	}
	return map[string]any{"results": wired, "size": len(wired)}, nil
}

func handleGetFooterComments(ctx *Context, args Args) (any, error) {
	comments, err := ctx.World.FooterComments(args.String("page_id"))
	if err != nil {
		return nil, err
	}
	wired := make([]map[string]any, 0, len(comments))
	for _, c := range comments {
		wired = append(wired, pageCommentWire(c, false))
	}
	return map[string]any{"results": wired, "size": len(wired)}, nil
}

func handleAddInlineComment(ctx *Context, args Args) (any, error) {
	c, err := ctx.World.AddInlineComment(args.String("page_id"), args.String("anchor"), args.String("body"))
	if err != nil {
		return nil, err
	}
	return pageCommentWire(*c, true), nil
}

func handleAddFooterComment(ctx *Context, args Args) (any, error) {
	c, err := ctx.World.AddFooterComment(args.String("page_id"), args.String("body"))
	if err != nil {
		return nil, err
	}
	return pageCommentWire(*c, false), nil
}

// ─── tracker ────────────────────────────────────────────────────────

func handleGetProjects(ctx *Context, _ Args) (any, error) {
	projects := ctx.World.Projects()
	wired := make([]map[string]any, 0, len(projects))
	for _, p := range projects {
		wired = append(wired, map[string]any{
			"key":        p.Key,
			"name":       p.Name,
			"issueTypes": p.IssueTypes,
		})
	}
	return map[string]any{"projects": wired}, nil
}

func handleGetIssue(ctx *Context, args Args) (any, error) {
	iss, err := ctx.World.Issue(args.String("issue_key"))
	if err != nil {
		return nil, err
	}
	return issueWire(iss), nil
}

func handleSearchIssues(ctx *Context, args Args) (any, error) {
	return issueListWire(ctx.World.SearchIssues(args.String("query"))), nil
}

func handleListIssues(ctx *Context, args Args) (any, error) {
	issues, err := ctx.World.Issues(args.String("project_key"))
	if err != nil {
		return nil, err
	}
	return issueListWire(issues), nil
}

func handleCreateIssue(ctx *Context, args Args) (any, error) {
	iss, err := ctx.World.CreateIssue(
		args.String("project_key"), args.String("issue_type"),
		args.String("summary"), args.String("description"))
	if err != nil {
		return nil, err
	}
	return issueWire(iss), nil
}

func handleEditIssue(ctx *Context, args Args) (any, error) {
	fields, err := args.Object("fields")
	if err != nil {
		return nil, err
	}
	iss, err := ctx.World.EditIssue(args.String("issue_key"), fields)
	if err != nil {
		return nil, err
	}
	return issueWire(iss), nil
}

func handleGetTransitions(ctx *Context, args Args) (any, error) {
	table, err := ctx.World.Transitions(args.String("issue_key"))
	if err != nil {
		return nil, err
	}
	wired := make([]map[string]any, 0, len(table))
	for _, t := range table {
		wired = append(wired, transitionWire(t))
	}
	return map[string]any{"transitions": wired}, nil
}

func handleTransitionIssue(ctx *Context, args Args) (any, error) {
	iss, err := ctx.World.TransitionIssue(args.String("issue_key"), args.String("transition_id"))
	if err != nil {
		return nil, err
	}
	return issueWire(iss), nil
}

func handleAddComment(ctx *Context, args Args) (any, error) {
	c, err := ctx.World.AddComment(args.String("issue_key"), args.String("body"))
	if err != nil {
		return nil, err
	}
	return commentWire(*c), nil
}

func handleGetComments(ctx *Context, args Args) (any, error) {
	iss, err := ctx.World.Issue(args.String("issue_key"))
	if err != nil {
		return nil, err
	}
	wired := make([]map[string]any, 0, len(iss.Comments))
	for _, c := range iss.Comments {
		wired = append(wired, commentWire(c))
	}
	return map[string]any{"total": len(wired), "comments": wired}, nil
}

func handleAddWorklog(ctx *Context, args Args) (any, error) {
	wl, err := ctx.World.AddWorklog(
		args.String("issue_key"), args.String("time_spent"), args.String("comment"))
	if err != nil {
		return nil, err
	}
	return worklogWire(*wl), nil
}

func handleGetWorklogs(ctx *Context, args Args) (any, error) {
	iss, err := ctx.World.Issue(args.String("issue_key"))
	if err != nil {
		return nil, err
	}
	wired := make([]map[string]any, 0, len(iss.Worklogs))
	for _, wl := range iss.Worklogs {
		wired = append(wired, worklogWire(wl))
	}
	return map[string]any{"total": len(wired), "worklogs": wired}, nil
}

func handleAddRemoteLink(ctx *Context, args Args) (any, error) {
	rl, err := ctx.World.AddRemoteLink(
		args.String("issue_key"), args.String("url"), args.String("title"))
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"id":     rl.ID,
		"object": map[string]any{"url": rl.URL, "title": rl.Title},
	}, nil
}

// ─── components ─────────────────────────────────────────────────────

func handleListComponents(ctx *Context, _ Args) (any, error) {
	comps := ctx.World.Components()
	wired := make([]map[string]any, 0, len(comps))
	for _, c := range comps {
		wired = append(wired, componentWire(c))
	}
	return map[string]any{"total": len(wired), "components": wired}, nil
}

func handleGetComponent(ctx *Context, args Args) (any, error) {
	c, err := ctx.World.Component(args.String("component_id"))
	if err != nil {
		return nil, err
	}
	return componentWire(c), nil
}

func handleSearchComponents(ctx *Context, args Args) (any, error) {
	comps := ctx.World.SearchComponents(args.String("query"))
	wired := make([]map[string]any, 0, len(comps))
	for _, c := range comps {
		wired = append(wired, componentWire(c))
	}
	return map[string]any{"total": len(wired), "components": wired}, nil
}

func handleCreateComponent(ctx *Context, args Args) (any, error) {
	c, err := ctx.World.CreateComponent(
		args.String("name"), args.String("component_type"), args.String("description"))
	if err != nil {
		return nil, err
	}
	return componentWire(c), nil
}

func handleCreateRelationship(ctx *Context, args Args) (any, error) {
	r, err := ctx.World.CreateRelationship(
		args.String("source_id"), args.String("target_id"), args.String("relationship_type"))
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"id":       r.ID,
		"sourceId": r.SourceID,
		"targetId": r.TargetID,
		"type":     r.Type,
	}, nil
}

func handleCreateCustomField(ctx *Context, args Args) (any, error) {
	d, err := ctx.World.CreateCustomField(
		args.String("name"), args.String("field_type"), args.String("description"))
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"id":          d.ID,
		"name":        d.Name,
		"type":        d.Type,
		"description": d.Description,
	}, nil
}
