package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/praxislabs/gauntlet/pkg/engine"
	"github.com/praxislabs/gauntlet/pkg/replay"
	"github.com/praxislabs/gauntlet/pkg/session"
	"github.com/praxislabs/gauntlet/pkg/tui"
	"github.com/praxislabs/gauntlet/pkg/world"
)

// Version is set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gauntlet",
	Short: "Workplace-API training game",
	Long:  "gauntlet — a scenario engine that simulates a workplace tool surface (issue tracker, wiki, component catalog) and judges a trainee's play-through.",
}

// --- play ---

var playTUI bool

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the scenario interactively",
	Args:  cobra.NoArgs,
	RunE:  runPlay,
}

func runPlay(cmd *cobra.Command, args []string) error {
	eng, err := engine.New(session.NewStore(nil))
	if err != nil {
		return err
	}

	if playTUI {
		p := tea.NewProgram(tui.NewModel(eng), tea.WithAltScreen())
		_, err := p.Run()
		return err
	}
	return playREPL(eng)
}

// playREPL runs the line-oriented game loop: briefing first, then one
// engine exchange per line until a verdict lands.
func playREPL(eng *engine.Engine) error {
	meta := world.MustSeed().Scenario
	fmt.Println(renderMarkdown(fmt.Sprintf("# %s\n\n%s", meta.Title, meta.Briefing)))

	completer := readline.NewPrefixCompleter()
	for _, name := range eng.Catalog().Names() {
		completer.Children = append(completer.Children,
			readline.PcItem(name+"("))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	var history []engine.Message
	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		result := eng.Validate(line, history)
		history = append(history,
			engine.Message{Role: "user", Content: line},
			engine.Message{Role: "assistant", Content: result.Message},
		)

		printResult(result)
		if result.Status == engine.StatusSuccess ||
			result.FailType == engine.FailWrongAnswer {
			return nil
		}
	}
}

func printResult(r engine.Result) {
	switch {
	case r.Status == engine.StatusSuccess:
		fmt.Println(renderMarkdown("## You won\n\n" + r.Message))
	case r.FailType == engine.FailWrongAnswer:
		fmt.Println(renderMarkdown("## Game over\n\n" + r.Message))
	case r.Status == engine.StatusFail:
		fmt.Printf("✗ %s\n", r.Message)
	case r.FailType == engine.FailDomain:
		fmt.Printf("✗ %s\n", r.Message)
	default:
		fmt.Printf("✓ %s\n", r.Message)
	}
	if r.ToolOutput != "" {
		fmt.Println(indentJSON(r.ToolOutput))
	}
}

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

// renderMarkdown converts markdown to styled terminal output, falling
// back to the raw text if rendering fails.
func renderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

// --- replay ---

var replayJSON bool

var replayCmd = &cobra.Command{
	Use:   "replay [transcript.yaml]",
	Short: "Replay a recorded transcript and check its expectations",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplay,
}

func runReplay(cmd *cobra.Command, args []string) error {
	tr, err := replay.Load(args[0])
	if err != nil {
		return err
	}
	report, err := replay.Run(tr)
	if err != nil {
		return err
	}

	if replayJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	} else {
		for _, sr := range report.Steps {
			if sr.Passed() {
				fmt.Printf("  ✓ step %d: %s\n", sr.Index, sr.Say)
				continue
			}
			fmt.Printf("  ✗ step %d: %s\n", sr.Index, sr.Say)
			for _, p := range sr.Problems {
				fmt.Printf("      %s\n", p)
			}
		}
	}

	if !report.Passed() {
		return fmt.Errorf("replay failed: %d of %d steps had problems", len(report.Failures()), len(report.Steps))
	}
	if !replayJSON {
		fmt.Printf("✓ %s: %d steps passed\n", tr.Name, len(report.Steps))
	}
	return nil
}

// --- schema ---

var schemaCmd = &cobra.Command{
	Use:   "schema [result|transcript]",
	Short: "Export a JSON Schema",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchema,
}

func runSchema(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error
	switch args[0] {
	case "result":
		data, err = engine.GenerateResultJSONSchema()
	case "transcript":
		data, err = replay.GenerateTranscriptJSONSchema()
	default:
		return fmt.Errorf("unknown schema type %q — use 'result' or 'transcript'", args[0])
	}
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// --- tools ---

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the declared tool surface",
	Args:  cobra.NoArgs,
	RunE:  runTools,
}

func runTools(cmd *cobra.Command, args []string) error {
	eng, err := engine.New(session.NewStore(nil))
	if err != nil {
		return err
	}
	group := ""
	for _, tool := range eng.Catalog().Tools() {
		if tool.Group != group {
			group = tool.Group
			fmt.Printf("%s:\n", group)
		}
		fmt.Printf("  %-22s %s\n", tool.Name, tool.Description)
	}
	return nil
}

// --- version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gauntlet %s (%s)\n", version, commit)
	},
}

func init() {
	playCmd.Flags().BoolVar(&playTUI, "tui", false, "Play in the full-screen terminal UI")
	replayCmd.Flags().BoolVar(&replayJSON, "json", false, "Output the replay report as structured JSON")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(versionCmd)
}
