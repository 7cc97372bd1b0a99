// Package tui implements a terminal user interface for playing a
// scenario interactively. It renders the running transcript in a
// Bubble Tea app, with a prompt line for the next utterance and a
// status bar tracking discovery and log counts.
package tui

import "github.com/charmbracelet/lipgloss"

// Entry glyphs — convey meaning without relying on color alone.
const (
	GlyphPlayer       = "▸"
	GlyphExecuted     = "✓"
	GlyphFailed       = "✗"
	GlyphIntermediate = "·"
	GlyphVerdict      = "◆"
)

// Palette adapts to terminal capabilities via lipgloss.
var (
	colorGreen  = lipgloss.Color("42")
	colorRed    = lipgloss.Color("196")
	colorYellow = lipgloss.Color("214")
	colorCyan   = lipgloss.Color("51")
	colorDim    = lipgloss.Color("240")
	colorWhite  = lipgloss.Color("255")
)

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorCyan).
	Padding(0, 1)

var (
	playerStyle       = lipgloss.NewStyle().Foreground(colorWhite).Bold(true)
	executedStyle     = lipgloss.NewStyle().Foreground(colorGreen)
	failedStyle       = lipgloss.NewStyle().Foreground(colorRed)
	intermediateStyle = lipgloss.NewStyle().Foreground(colorWhite)
	verdictWinStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	verdictLossStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	outputStyle       = lipgloss.NewStyle().Foreground(colorDim)
	statusBarStyle    = lipgloss.NewStyle().Foreground(colorDim)
	statusCountStyle  = lipgloss.NewStyle().Foreground(colorYellow)
	helpStyle         = lipgloss.NewStyle().Foreground(colorDim)
)
