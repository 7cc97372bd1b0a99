// Package discovery enforces the announce-before-use protocol: a tool
// may only be invoked after the trainee has discovered it via
// list_tools or search_tools. The gate is pure with respect to the
// world; it inspects and updates only its own set.
package discovery

import "fmt"

// Error is returned when a tool is invoked before being discovered.
type Error struct {
	Tool string
}

func (e *Error) Error() string {
	return fmt.Sprintf("tool %q has not been discovered yet — call list_tools() or search_tools(%q) first", e.Tool, e.Tool)
}

// Tracker records which tool names the trainee has announced.
type Tracker struct {
	discovered map[string]bool
	full       bool
}

// NewTracker creates an empty tracker: nothing is discovered.
func NewTracker() *Tracker {
	return &Tracker{discovered: map[string]bool{}}
}

// MarkAll marks every given name discovered and sets the full-discovery
// flag. Used by list_tools.
func (t *Tracker) MarkAll(names []string) {
	for _, n := range names {
		t.discovered[n] = true
	}
	t.full = true
}

// Mark marks a single name discovered, leaving the full flag untouched.
// Used by search_tools for each match.
func (t *Tracker) Mark(name string) {
	t.discovered[name] = true
}

// Discovered reports whether the name has been announced.
func (t *Tracker) Discovered(name string) bool {
	return t.discovered[name]
}

// Full reports whether a full list_tools discovery has happened.
func (t *Tracker) Full() bool {
	return t.full
}

// Count returns how many distinct tools have been discovered.
func (t *Tracker) Count() int {
	return len(t.discovered)
}

// Check returns a *Error unless the name has been discovered.
func (t *Tracker) Check(name string) error {
	if t.discovered[name] {
		return nil
	}
	return &Error{Tool: name}
}
