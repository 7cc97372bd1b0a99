package engine

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// GenerateResultJSONSchema produces a JSON Schema Draft 2020-12
// document for the engine's Result shape, so game frontends can
// validate what they receive.
func GenerateResultJSONSchema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = false

	s := r.Reflect(&Result{})
	s.ID = "https://github.com/praxislabs/gauntlet/schemas/result-v0.json"
	s.Title = "Gauntlet Engine Result v0"
	s.Description = "Discriminated result returned by the scenario engine for each utterance"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result schema: %w", err)
	}
	return data, nil
}
