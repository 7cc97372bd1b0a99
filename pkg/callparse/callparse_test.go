package callparse

import (
	"reflect"
	"strings"
	"testing"
)

func testParser() *Parser {
	return New(map[string]ToolShape{
		"list_tools":   {},
		"search_tools": {Slots: []string{"query"}, Required: []string{"query"}},
		"call_tool":    {Slots: []string{"name", "arguments"}, Required: []string{"name"}},
		"get_issue":    {Slots: []string{"issue_key"}, Required: []string{"issue_key"}},
		"transition_issue": {
			Slots:    []string{"issue_key", "transition_id"},
			Required: []string{"issue_key", "transition_id"},
		},
		"create_page": {
			Slots:    []string{"path", "content"},
			Required: []string{"path", "content"},
		},
	})
}

func TestParse_ThreeSyntaxesEquivalent(t *testing.T) {
	p := testParser()
	want := &Call{
		Name: "transition_issue",
		Args: map[string]any{"issue_key": "OPS-101", "transition_id": "21"},
	}

	inputs := []string{
		`transition_issue("OPS-101", "21")`,
		`transition_issue({issue_key: "OPS-101", transition_id: "21"})`,
		`{"name": "transition_issue", "arguments": {"issue_key": "OPS-101", "transition_id": "21"}}`,
		`{name: 'transition_issue', arguments: {issue_key: 'OPS-101', transition_id: '21',},}`,
	}
	for _, in := range inputs {
		got, err := p.Parse(in)
		if err != nil {
			t.Errorf("Parse(%q) error: %v", in, err)
			continue
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Parse(%q) = %+v, want %+v", in, got, want)
		}
	}
}

func TestParse_NoArgs(t *testing.T) {
	p := testParser()
	got, err := p.Parse("list_tools()")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got.Name != "list_tools" || len(got.Args) != 0 {
		t.Errorf("Parse = %+v, want list_tools with no args", got)
	}
}

func TestParse_BareWordPositional(t *testing.T) {
	p := testParser()
	got, err := p.Parse("search_tools(roadmap)")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got.Args["query"] != "roadmap" {
		t.Errorf(`Args["query"] = %v, want "roadmap"`, got.Args["query"])
	}
}

func TestParse_NumericPositional(t *testing.T) {
	p := testParser()
	got, err := p.Parse(`transition_issue("OPS-101", 21)`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got.Args["transition_id"] != float64(21) {
		t.Errorf(`Args["transition_id"] = %#v, want float64(21)`, got.Args["transition_id"])
	}
}

func TestParse_ObjectPositional(t *testing.T) {
	p := testParser()
	got, err := p.Parse(`call_tool("get_issue", {issue_key: "OPS-101"})`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	inner, ok := got.Args["arguments"].(map[string]any)
	if !ok {
		t.Fatalf(`Args["arguments"] = %#v, want object`, got.Args["arguments"])
	}
	if inner["issue_key"] != "OPS-101" {
		t.Errorf(`inner["issue_key"] = %v, want "OPS-101"`, inner["issue_key"])
	}
}

func TestParse_ArgumentsAsJSONString(t *testing.T) {
	p := testParser()
	got, err := p.Parse(`{"name": "get_issue", "arguments": "{\"issue_key\": \"OPS-101\"}"}`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got.Name != "get_issue" || got.Args["issue_key"] != "OPS-101" {
		t.Errorf("Parse = %+v, want unwrapped string arguments", got)
	}
}

func TestParse_Escapes(t *testing.T) {
	p := testParser()
	got, err := p.Parse(`create_page("notes", "line1\nsaid \"hi\" c:\\temp")`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	want := "line1\nsaid \"hi\" c:\\temp"
	if got.Args["content"] != want {
		t.Errorf(`Args["content"] = %q, want %q`, got.Args["content"], want)
	}
}

func TestParse_BackslashNormalizesIdenticallyAcrossSyntaxes(t *testing.T) {
	p := testParser()
	want := `C:\temp`
	inputs := []string{
		`create_page("notes", "C:\\temp")`,
		`create_page({path: "notes", content: "C:\\temp"})`,
		`{"name": "create_page", "arguments": {"path": "notes", "content": "C:\\temp"}}`,
	}
	for _, in := range inputs {
		got, err := p.Parse(in)
		if err != nil {
			t.Errorf("Parse(%q) error: %v", in, err)
			continue
		}
		if got.Args["content"] != want {
			t.Errorf("Parse(%q) content = %q, want %q", in, got.Args["content"], want)
		}
	}
}

func TestParse_NestedParensInStrings(t *testing.T) {
	p := testParser()
	got, err := p.Parse(`create_page("a (draft)", "see figure (1)")`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got.Args["path"] != "a (draft)" {
		t.Errorf(`Args["path"] = %q, want "a (draft)"`, got.Args["path"])
	}
}

func TestParse_MissingRequired(t *testing.T) {
	p := testParser()
	_, err := p.Parse(`create_page("notes")`)
	if err == nil {
		t.Fatal("expected error for missing required argument")
	}
	want := "create_page requires 2 arguments: path and content (missing: content)"
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

func TestParse_MissingAllRequired(t *testing.T) {
	p := testParser()
	_, err := p.Parse("get_issue()")
	if err == nil {
		t.Fatal("expected error for empty required call")
	}
	if !strings.Contains(err.Error(), "requires 1 argument: issue_key") {
		t.Errorf("error = %q, want required-argument message", err.Error())
	}
}

func TestParse_TooManyPositional(t *testing.T) {
	p := testParser()
	_, err := p.Parse(`get_issue("OPS-1", "extra")`)
	if err == nil {
		t.Fatal("expected error for extra positional argument")
	}
	if !strings.Contains(err.Error(), "accepts at most 1 argument(s), got 2") {
		t.Errorf("error = %q, want arity message", err.Error())
	}
}

func TestParse_BalanceErrorsNameTheDelimiter(t *testing.T) {
	p := testParser()
	cases := []struct {
		in   string
		want string
	}{
		{`get_issue("OPS-1"`, `missing ')'`},
		{`get_issue([1, 2)`, `missing "]"`},
		{`get_issue({"a": [1})`, `expected "]" but found "}"`},
		{`get_issue("OPS-1)`, "unterminated string"},
		{`{"name": "x"`, `missing "}"`},
	}
	for _, c := range cases {
		_, err := p.Parse(c.in)
		if err == nil {
			t.Errorf("Parse(%q): expected error", c.in)
			continue
		}
		if !strings.Contains(err.Error(), c.want) {
			t.Errorf("Parse(%q) error = %q, want substring %q", c.in, err.Error(), c.want)
		}
	}
}

func TestParse_TrailingText(t *testing.T) {
	p := testParser()
	_, err := p.Parse(`get_issue("OPS-1") please`)
	if err == nil {
		t.Fatal("expected error for trailing text")
	}
	if !strings.Contains(err.Error(), "unexpected trailing text") {
		t.Errorf("error = %q, want trailing-text message", err.Error())
	}
}

func TestParse_StrayComma(t *testing.T) {
	p := testParser()
	_, err := p.Parse(`transition_issue("OPS-1", , "21")`)
	if err == nil {
		t.Fatal("expected error for stray comma")
	}
	if !strings.Contains(err.Error(), "stray comma") {
		t.Errorf("error = %q, want stray-comma message", err.Error())
	}
}

func TestParse_UnknownToolStillParses(t *testing.T) {
	p := testParser()
	got, err := p.Parse(`frobnicate("x", 2)`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got.Name != "frobnicate" {
		t.Errorf("Name = %q, want frobnicate", got.Name)
	}
	if got.Args["arg0"] != "x" || got.Args["arg1"] != float64(2) {
		t.Errorf("Args = %+v, want synthetic positional names", got.Args)
	}
}

func TestParse_JSONMissingName(t *testing.T) {
	p := testParser()
	_, err := p.Parse(`{"arguments": {"issue_key": "OPS-1"}}`)
	if err == nil {
		t.Fatal("expected error for missing name field")
	}
	if !strings.Contains(err.Error(), `missing the "name" field`) {
		t.Errorf("error = %q, want missing-name message", err.Error())
	}
}

func TestLooksLikeCall(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{`get_issue("OPS-1")`, true},
		{`  {"name": "x"}`, true},
		{`please run get_issue("OPS-1") now`, true},
		{"I finished the rollout work.", false},
		{"done", false},
		{"", false},
	}
	for _, c := range cases {
		if got := LooksLikeCall(c.in); got != c.want {
			t.Errorf("LooksLikeCall(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestNormalizeLooseJSON_Exponent(t *testing.T) {
	out, err := normalizeLooseJSON(`{n: 1.5e3}`)
	if err != nil {
		t.Fatalf("normalizeLooseJSON error: %v", err)
	}
	if out != `{"n": 1.5e3}` {
		t.Errorf("normalizeLooseJSON = %q, want exponent kept whole", out)
	}
}

func TestNormalizeLooseJSON_BareWordValue(t *testing.T) {
	_, err := normalizeLooseJSON(`{key: oops}`)
	if err == nil {
		t.Fatal("expected error for bare word value")
	}
	if !strings.Contains(err.Error(), `bare word "oops"`) {
		t.Errorf("error = %q, want bare-word message", err.Error())
	}
}

func TestExpandEscapes_LiteralBackslash(t *testing.T) {
	got := expandEscapes(`a\\nb`)
	if got != `a\nb` {
		t.Errorf(`expandEscapes(a\\nb) = %q, want literal backslash-n`, got)
	}
}
