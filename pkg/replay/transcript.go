// Package replay runs recorded play-through transcripts against a
// fresh engine and checks each step's expectations. Transcripts double
// as integration fixtures and as authoring aids for new scenarios.
package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/invopop/jsonschema"
	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// Transcript is an ordered list of trainee utterances with per-step
// expectations.
type Transcript struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Steps       []Step `yaml:"steps" json:"steps"`
}

// Step is one utterance and what the engine should say back.
type Step struct {
	Say    string      `yaml:"say" json:"say"`
	Expect Expectation `yaml:"expect,omitempty" json:"expect,omitempty"`
}

// Expectation constrains one step's result. All fields are optional;
// omitted fields are not asserted. When entries are expr conditions
// evaluated over the result and a world snapshot.
type Expectation struct {
	Status          string   `yaml:"status,omitempty" json:"status,omitempty"`
	FailType        string   `yaml:"fail_type,omitempty" json:"fail_type,omitempty"`
	MessageContains []string `yaml:"message_contains,omitempty" json:"message_contains,omitempty"`
	OutputContains  []string `yaml:"output_contains,omitempty" json:"output_contains,omitempty"`
	When            []string `yaml:"when,omitempty" json:"when,omitempty"`
}

// Load reads and validates a transcript YAML file.
func Load(path string) (*Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	return Parse(data)
}

// Parse validates transcript YAML in three phases, the way scenario
// files are validated everywhere in this repo: strict decode, JSON
// Schema, then domain rules.
func Parse(data []byte) (*Transcript, error) {
	var t Transcript
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("parse transcript: %w", err)
	}

	if err := validateSemantic(&t); err != nil {
		return nil, err
	}

	if len(t.Steps) == 0 {
		return nil, fmt.Errorf("transcript %q has no steps", t.Name)
	}
	for i, s := range t.Steps {
		if strings.TrimSpace(s.Say) == "" {
			return nil, fmt.Errorf("transcript %q: step %d has an empty say", t.Name, i+1)
		}
		switch s.Expect.Status {
		case "", "SUCCESS", "FAIL", "INTERMEDIATE":
		default:
			return nil, fmt.Errorf("transcript %q: step %d has unknown status %q", t.Name, i+1, s.Expect.Status)
		}
	}
	return &t, nil
}

// validateSemantic checks the transcript against the schema reflected
// from the Go types.
func validateSemantic(t *Transcript) error {
	schemaJSON, err := GenerateTranscriptJSONSchema()
	if err != nil {
		return err
	}
	var schemaDoc any
	if err := json.Unmarshal(schemaJSON, &schemaDoc); err != nil {
		return fmt.Errorf("unmarshal transcript schema: %w", err)
	}
	c := sjsonschema.NewCompiler()
	if err := c.AddResource("transcript-v0.json", schemaDoc); err != nil {
		return fmt.Errorf("add transcript schema: %w", err)
	}
	sch, err := c.Compile("transcript-v0.json")
	if err != nil {
		return fmt.Errorf("compile transcript schema: %w", err)
	}

	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("unmarshal transcript: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("transcript schema: %v", err)
	}
	return nil
}

// GenerateTranscriptJSONSchema produces the JSON Schema for transcript
// files, for editors and for the semantic validation phase.
func GenerateTranscriptJSONSchema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = false

	s := r.Reflect(&Transcript{})
	s.ID = "https://github.com/praxislabs/gauntlet/schemas/transcript-v0.json"
	s.Title = "Gauntlet Replay Transcript v0"
	s.Description = "Ordered trainee utterances with per-step expectations"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal transcript schema: %w", err)
	}
	return data, nil
}
