package replay

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/praxislabs/gauntlet/pkg/engine"
	"github.com/praxislabs/gauntlet/pkg/session"
)

// StepReport is the outcome of one transcript step.
type StepReport struct {
	Index    int
	Say      string
	Result   engine.Result
	Problems []string
}

// Passed reports whether every expectation on the step held.
func (s *StepReport) Passed() bool { return len(s.Problems) == 0 }

// Report is the outcome of a full transcript run.
type Report struct {
	Name  string
	Steps []StepReport
}

// Passed reports whether every step passed.
func (r *Report) Passed() bool {
	for i := range r.Steps {
		if !r.Steps[i].Passed() {
			return false
		}
	}
	return true
}

// Failures returns the failing steps.
func (r *Report) Failures() []StepReport {
	var out []StepReport
	for _, s := range r.Steps {
		if !s.Passed() {
			out = append(out, s)
		}
	}
	return out
}

// Run replays a transcript against a fresh session and evaluates each
// step's expectations. Engine construction errors are returned;
// expectation failures land in the report.
func Run(t *Transcript) (*Report, error) {
	store := session.NewStore(nil)
	eng, err := engine.New(store)
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}

	report := &Report{Name: t.Name}
	var history []engine.Message
	for i, step := range t.Steps {
		result := eng.Validate(step.Say, history)
		st := eng.Session(step.Say, history)
		history = append(history,
			engine.Message{Role: "user", Content: step.Say},
			engine.Message{Role: "assistant", Content: result.Message},
		)

		sr := StepReport{Index: i + 1, Say: step.Say, Result: result}
		checkExpectation(&sr, step.Expect, envFor(result, st))
		report.Steps = append(report.Steps, sr)
	}
	return report, nil
}

// envFor builds the expr evaluation environment: the result fields plus
// a snapshot of the session world.
func envFor(result engine.Result, st *session.State) map[string]any {
	var output any
	if result.ToolOutput != "" {
		if err := json.Unmarshal([]byte(result.ToolOutput), &output); err != nil {
			output = result.ToolOutput
		}
	}
	statuses := map[string]string{}
	for _, p := range st.World.Projects() {
		if issues, err := st.World.Issues(p.Key); err == nil {
			for _, iss := range issues {
				statuses[iss.Key] = iss.Status
			}
		}
	}
	return map[string]any{
		"status":     result.Status,
		"message":    result.Message,
		"failType":   result.FailType,
		"output":     output,
		"actions":    len(st.World.Actions),
		"reads":      len(st.World.Reads),
		"discovered": st.Tracker.Count(),
		"statuses":   statuses,
	}
}

func checkExpectation(sr *StepReport, want Expectation, env map[string]any) {
	if want.Status != "" && sr.Result.Status != want.Status {
		sr.Problems = append(sr.Problems,
			fmt.Sprintf("status = %q, want %q", sr.Result.Status, want.Status))
	}
	if want.FailType != "" && sr.Result.FailType != want.FailType {
		sr.Problems = append(sr.Problems,
			fmt.Sprintf("failType = %q, want %q", sr.Result.FailType, want.FailType))
	}
	for _, sub := range want.MessageContains {
		if !strings.Contains(sr.Result.Message, sub) {
			sr.Problems = append(sr.Problems,
				fmt.Sprintf("message does not contain %q", sub))
		}
	}
	for _, sub := range want.OutputContains {
		if !strings.Contains(sr.Result.ToolOutput, sub) {
			sr.Problems = append(sr.Problems,
				fmt.Sprintf("toolOutput does not contain %q", sub))
		}
	}
	for _, cond := range want.When {
		ok, err := evalCondition(cond, env)
		if err != nil {
			sr.Problems = append(sr.Problems, fmt.Sprintf("when %q: %v", cond, err))
		} else if !ok {
			sr.Problems = append(sr.Problems, fmt.Sprintf("when %q is false", cond))
		}
	}
}

// evalCondition evaluates one expr condition against the environment.
func evalCondition(cond string, env map[string]any) (bool, error) {
	program, err := expr.Compile(cond, expr.Env(env), expr.AsBool())
	if err != nil {
		return false, fmt.Errorf("compile: %w", err)
	}
	output, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("eval: %w", err)
	}
	result, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("did not return bool (got %T)", output)
	}
	return result, nil
}
