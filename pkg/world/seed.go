package world

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

// seedDoc is the on-disk shape of a scenario seed.
type seedDoc struct {
	Scenario    ScenarioMeta `yaml:"scenario"`
	Projects    []Project    `yaml:"projects"`
	Issues      []seedIssue  `yaml:"issues"`
	Transitions []Transition `yaml:"transitions"`
	Spaces      []Space      `yaml:"spaces"`
	Pages       []seedPage   `yaml:"pages"`
}

type seedIssue struct {
	Key         string `yaml:"key"`
	Summary     string `yaml:"summary"`
	Description string `yaml:"description"`
	Status      string `yaml:"status"`
	IssueType   string `yaml:"issue_type"`
}

type seedPage struct {
	ID             string        `yaml:"id"`
	SpaceID        string        `yaml:"space_id"`
	ParentID       string        `yaml:"parent_id"`
	Title          string        `yaml:"title"`
	Version        int           `yaml:"version"`
	Body           string        `yaml:"body"`
	InlineComments []seedComment `yaml:"inline_comments"`
	FooterComments []seedComment `yaml:"footer_comments"`
}

type seedComment struct {
	Anchor string `yaml:"anchor"`
	Author string `yaml:"author"`
	Body   string `yaml:"body"`
}

// seedEpoch is the fixed creation time of seeded entities, so fresh
// sessions are byte-for-byte reproducible.
var seedEpoch = time.Date(2026, time.July, 14, 9, 0, 0, 0, time.UTC)

// NewSeeded constructs a fresh world from the embedded scenario seed.
func NewSeeded() (*World, error) {
	return newFromSeed(seedYAML)
}

// MustSeed is NewSeeded for callers where a broken embedded seed is an
// unrecoverable programming error (session factories, tests).
func MustSeed() *World {
	w, err := NewSeeded()
	if err != nil {
		panic(fmt.Sprintf("world: embedded seed is invalid: %v", err))
	}
	return w
}

func newFromSeed(data []byte) (*World, error) {
	var doc seedDoc
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	if doc.Scenario.ConstrainedIssue == "" || doc.Scenario.LivePage == "" {
		return nil, fmt.Errorf("seed: scenario must name constrained_issue and live_page")
	}

	w := &World{
		now:         time.Now,
		Scenario:    doc.Scenario,
		projects:    doc.Projects,
		issues:      map[string]*Issue{},
		nextIssue:   map[string]int{},
		transitions: map[string][]Transition{},
		spaces:      doc.Spaces,
		pages:       map[string]*Page{},
		components:  map[string]*Component{},
	}

	for i, si := range doc.Issues {
		key := strings.ToUpper(si.Key)
		proj, num, err := splitIssueKey(key)
		if err != nil {
			return nil, fmt.Errorf("seed issue %q: %w", si.Key, err)
		}
		if _, dup := w.issues[key]; dup {
			return nil, fmt.Errorf("seed: duplicate issue key %q", key)
		}
		created := seedEpoch.Add(time.Duration(i) * time.Minute)
		iss := &Issue{
			ID: fmt.Sprintf("iss-%d", 9000+i), Key: key, ProjectKey: proj,
			Summary: si.Summary, Description: si.Description,
			Status: si.Status, IssueType: si.IssueType,
			Created: created, Updated: created,
		}
		w.issues[key] = iss
		w.issueOrder = append(w.issueOrder, key)
		w.transitions[key] = append([]Transition(nil), doc.Transitions...)
		if next := num + 1; next > w.nextIssue[proj] {
			w.nextIssue[proj] = next
		}
	}

	inlineSeen := 0
	for i, sp := range doc.Pages {
		if _, dup := w.pages[sp.ID]; dup {
			return nil, fmt.Errorf("seed: duplicate page id %q", sp.ID)
		}
		version := sp.Version
		if version == 0 {
			version = 1
		}
		p := &Page{
			ID: sp.ID, SpaceID: sp.SpaceID, ParentID: sp.ParentID,
			Title: sp.Title, Body: sp.Body, Version: version,
		}
		for j, c := range sp.InlineComments {
			p.InlineComments = append(p.InlineComments, PageComment{
				ID:     fmt.Sprintf("inline-%d%d", i, j),
				Anchor: c.Anchor, Author: c.Author, Body: c.Body,
				Created: seedEpoch,
			})
			inlineSeen++
		}
		for j, c := range sp.FooterComments {
			p.FooterComments = append(p.FooterComments, PageComment{
				ID:     fmt.Sprintf("footer-%d%d", i, j),
				Author: c.Author, Body: c.Body, Created: seedEpoch,
			})
		}
		w.pages[p.ID] = p
		w.pageOrder = append(w.pageOrder, p.ID)
	}

	// The trap is defined by exactly one seeded inline comment anchored
	// to the constrained issue.
	if inlineSeen != 1 {
		return nil, fmt.Errorf("seed: expected exactly one inline comment, found %d", inlineSeen)
	}
	live, ok := w.pages[doc.Scenario.LivePage]
	if !ok {
		return nil, fmt.Errorf("seed: live_page %q does not exist", doc.Scenario.LivePage)
	}
	if len(live.InlineComments) != 1 || live.InlineComments[0].Anchor != doc.Scenario.ConstrainedIssue {
		return nil, fmt.Errorf("seed: the inline comment must be on %q and anchor %q",
			doc.Scenario.LivePage, doc.Scenario.ConstrainedIssue)
	}
	if _, ok := w.issues[doc.Scenario.ConstrainedIssue]; !ok {
		return nil, fmt.Errorf("seed: constrained_issue %q does not exist", doc.Scenario.ConstrainedIssue)
	}

	return w, nil
}

// defaultTransitionTable is the table attached to issues created during
// play; it mirrors the seeded workflow.
func defaultTransitionTable() []Transition {
	return []Transition{
		{ID: "11", Name: "Start progress", ToStatus: "in-progress"},
		{ID: "21", Name: "Resolve", ToStatus: "done"},
		{ID: "31", Name: "Block", ToStatus: "blocked"},
	}
}

// splitIssueKey splits "OPS-104" into project key and number.
func splitIssueKey(key string) (string, int, error) {
	idx := strings.LastIndex(key, "-")
	if idx <= 0 || idx == len(key)-1 {
		return "", 0, fmt.Errorf("malformed issue key %q", key)
	}
	num, err := strconv.Atoi(key[idx+1:])
	if err != nil {
		return "", 0, fmt.Errorf("malformed issue key %q", key)
	}
	return key[:idx], num, nil
}
