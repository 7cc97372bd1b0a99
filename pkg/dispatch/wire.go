package dispatch

import (
	"fmt"
	"time"

	"github.com/praxislabs/gauntlet/pkg/world"
)

// Base URLs baked into response links so tool output reads like a real
// deployment. Nothing ever connects to them.
const (
	trackerBase = "https://tracker.atlas-corp.example"
	wikiBase    = "https://wiki.atlas-corp.example"
	catalogBase = "https://catalog.atlas-corp.example"
)

func wireTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }

// issueWire shapes an issue the way the tracker's REST API would.
func issueWire(iss *world.Issue) map[string]any {
	fields := map[string]any{
		"summary":     iss.Summary,
		"description": iss.Description,
		"status":      map[string]any{"name": iss.Status},
		"issuetype":   map[string]any{"name": iss.IssueType},
		"project":     map[string]any{"key": iss.ProjectKey},
		"created":     wireTime(iss.Created),
		"updated":     wireTime(iss.Updated),
	}
	for name, v := range iss.CustomFields {
		fields[name] = v
	}
	return map[string]any{
		"id":     iss.ID,
		"key":    iss.Key,
		"self":   fmt.Sprintf("%s/rest/api/2/issue/%s", trackerBase, iss.Key),
		"fields": fields,
	}
}

func issueListWire(issues []*world.Issue) map[string]any {
	wired := make([]map[string]any, 0, len(issues))
	for _, iss := range issues {
		wired = append(wired, issueWire(iss))
	}
	return map[string]any{"total": len(wired), "issues": wired}
}

func commentWire(c world.Comment) map[string]any {
	return map[string]any{
		"id":      c.ID,
		"author":  map[string]any{"name": c.Author},
		"body":    c.Body,
		"created": wireTime(c.Created),
	}
}

func worklogWire(wl world.Worklog) map[string]any {
	return map[string]any{
		"id":               wl.ID,
		"author":           map[string]any{"name": wl.Author},
		"timeSpent":        wl.TimeSpent,
		"timeSpentSeconds": wl.Seconds,
		"comment":          wl.Comment,
		"created":          wireTime(wl.Created),
	}
}

func transitionWire(t world.Transition) map[string]any {
	return map[string]any{
		"id":   t.ID,
		"name": t.Name,
		"to":   map[string]any{"name": t.ToStatus},
	}
}

// pageWire shapes a page the way the wiki's v2 API would. The body is
// included only when withBody is set (list endpoints omit it).
func pageWire(p *world.Page, withBody bool) map[string]any {
	out := map[string]any{
		"id":      p.ID,
		"spaceId": p.SpaceID,
		"title":   p.Title,
		"version": map[string]any{"number": p.Version},
		"_links":  map[string]any{"webui": fmt.Sprintf("%s/wiki/pages/%s", wikiBase, p.ID)},
	}
	if p.ParentID != "" {
		out["parentId"] = p.ParentID
	}
	if withBody {
		out["body"] = map[string]any{"storage": map[string]any{"value": p.Body}}
	}
	return out
}

func pageCommentWire(c world.PageComment, inline bool) map[string]any {
	out := map[string]any{
		"id":      c.ID,
		"author":  map[string]any{"displayName": c.Author},
		"body":    map[string]any{"storage": map[string]any{"value": c.Body}},
		"created": wireTime(c.Created),
	}
	if inline {
		out["inlineProperties"] = map[string]any{"anchor": c.Anchor}
	}
	return out
}

func componentWire(c *world.Component) map[string]any {
	out := map[string]any{
		"id":          c.ID,
		"name":        c.Name,
		"type":        c.Type,
		"description": c.Description,
		"self":        fmt.Sprintf("%s/api/v1/components/%s", catalogBase, c.ID),
	}
	if len(c.CustomFields) > 0 {
		out["customFields"] = c.CustomFields
	}
	return out
}
