package tui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/praxislabs/gauntlet/pkg/engine"
	"github.com/praxislabs/gauntlet/pkg/world"
)

// entry is one rendered transcript line pair: what the player said and
// what came back.
type entry struct {
	input  string
	result engine.Result
}

// Model is the Bubble Tea model for interactive play.
type Model struct {
	eng     *engine.Engine
	meta    world.ScenarioMeta
	history []engine.Message
	entries []entry

	input textinput.Model
	vp    viewport.Model
	keys  keyMap

	width  int
	height int
	ready  bool
	done   bool
}

// NewModel creates a play model over an engine. The scenario briefing
// seeds the transcript.
func NewModel(eng *engine.Engine) Model {
	ti := textinput.New()
	ti.Placeholder = "list_tools()"
	ti.CharLimit = 2048
	ti.Prompt = "> "
	ti.PromptStyle = playerStyle
	ti.Focus()

	return Model{
		eng:   eng,
		meta:  world.MustSeed().Scenario,
		input: ti,
		keys:  defaultKeyMap(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.vp.ScrollUp(1)
			return m, nil
		case key.Matches(msg, m.keys.Down):
			m.vp.ScrollDown(1)
			return m, nil
		case key.Matches(msg, m.keys.Submit):
			if m.done {
				return m, tea.Quit
			}
			return m.submit()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Header, status bar, prompt, and help each take one line.
		m.vp = viewport.New(msg.Width, max(msg.Height-4, 3))
		m.ready = true
		m.vp.SetContent(m.renderEntries())
		m.vp.GotoBottom()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit sends the prompt line through the engine and appends the
// exchange to the transcript.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	m.input.Reset()

	result := m.eng.Validate(text, m.history)
	m.history = append(m.history,
		engine.Message{Role: "user", Content: text},
		engine.Message{Role: "assistant", Content: result.Message},
	)
	m.entries = append(m.entries, entry{input: text, result: result})

	if result.Status == engine.StatusSuccess || result.FailType == engine.FailWrongAnswer {
		m.done = true
		m.input.Blur()
	}

	if m.ready {
		m.vp.SetContent(m.renderEntries())
		m.vp.GotoBottom()
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(m.meta.Title))
	b.WriteString("\n")
	b.WriteString(m.vp.View())
	b.WriteString("\n")
	b.WriteString(m.statusBar())
	b.WriteString("\n")
	if m.done {
		b.WriteString(helpStyle.Render("  game over — enter or esc to quit"))
	} else {
		b.WriteString(m.input.View())
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("  esc: quit  ↑/↓: scroll  enter: send"))
	return b.String()
}

// renderEntries formats the transcript for the viewport.
func (m Model) renderEntries() string {
	var b strings.Builder
	b.WriteString(outputStyle.Render(m.meta.Briefing))
	b.WriteString("\n")
	for _, e := range m.entries {
		b.WriteString("\n")
		b.WriteString(playerStyle.Render(GlyphPlayer + " " + truncate(e.input, max(m.width-4, 20))))
		b.WriteString("\n")
		b.WriteString(renderResult(e.result))
		b.WriteString("\n")
	}
	return b.String()
}

func renderResult(r engine.Result) string {
	var b strings.Builder
	switch {
	case r.Status == engine.StatusSuccess:
		b.WriteString(verdictWinStyle.Render(GlyphVerdict + " " + r.Message))
	case r.Status == engine.StatusFail && r.FailType == engine.FailWrongAnswer:
		b.WriteString(verdictLossStyle.Render(GlyphVerdict + " " + r.Message))
	case r.Status == engine.StatusFail:
		b.WriteString(failedStyle.Render(GlyphFailed + " " + r.Message))
	case r.FailType == engine.FailDomain:
		b.WriteString(intermediateStyle.Render(GlyphIntermediate + " " + r.Message))
	default:
		b.WriteString(executedStyle.Render(GlyphExecuted + " " + r.Message))
	}
	if r.ToolOutput != "" {
		b.WriteString("\n")
		b.WriteString(outputStyle.Render(indentJSON(r.ToolOutput)))
	}
	return b.String()
}

// indentJSON pretty-prints tool output when it is valid JSON, and
// passes it through untouched otherwise.
func indentJSON(s string) string {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return s
	}
	return string(data)
}

// statusBar shows session progress: discovery coverage and the size of
// the action and read logs. The session is only resolved once the first
// exchange exists, so rendering never creates a session of its own.
func (m Model) statusBar() string {
	discovered := "discovered 0"
	actions, reads := 0, 0
	if len(m.history) > 0 {
		st := m.eng.Session("", m.history)
		discovered = fmt.Sprintf("discovered %d", st.Tracker.Count())
		if st.Tracker.Full() {
			discovered = "discovered all"
		}
		actions, reads = len(st.World.Actions), len(st.World.Reads)
	}
	left := "  " + statusCountStyle.Render(discovered) +
		statusBarStyle.Render(fmt.Sprintf("  actions %d  reads %d", actions, reads))

	right := statusBarStyle.Render(fmt.Sprintf("turn %d  ", len(m.entries)))
	pad := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if pad < 1 {
		pad = 1
	}
	return left + strings.Repeat(" ", pad) + right
}

// truncate shortens a line to the given display width, accounting for
// wide runes.
func truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
