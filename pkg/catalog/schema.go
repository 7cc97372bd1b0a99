package catalog

import (
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// argValidator pairs the fast required-parameter check (which produces
// the player-facing "requires ..." message) with the compiled JSON
// Schema type check.
type argValidator struct {
	required []string
	schema   *jsonschema.Schema
}

// compileArgValidator builds and compiles the argument schema for one
// tool. The simulated services are deliberately forgiving about scalar
// types (a numeric id may arrive quoted), so scalar params accept
// string, number, or boolean; only object params are enforced strictly.
func compileArgValidator(t Tool) (*argValidator, error) {
	properties := map[string]any{}
	var required []string
	for _, p := range t.Params {
		properties[p.Name] = map[string]any{
			"type":        schemaType(p.Type),
			"description": p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	doc := map[string]any{
		"$schema":    "https://json-schema.org/draft/2020-12/schema",
		"type":       "object",
		"properties": properties,
	}

	c := jsonschema.NewCompiler()
	resource := t.Name + ".args.json"
	if err := c.AddResource(resource, doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	sch, err := c.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	return &argValidator{required: required, schema: sch}, nil
}

func schemaType(paramType string) any {
	switch paramType {
	case "object":
		return "object"
	case "number":
		return []any{"number", "string"}
	default:
		return []any{"string", "number", "boolean"}
	}
}

func (v *argValidator) validate(tool string, args map[string]any) error {
	var missing []string
	for _, name := range v.required {
		val, present := args[name]
		if !present || val == nil || val == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		plural := "argument"
		if len(v.required) > 1 {
			plural = "arguments"
		}
		return fmt.Errorf("%s requires %d %s: %s (missing: %s)",
			tool, len(v.required), plural,
			strings.Join(v.required, " and "), strings.Join(missing, ", "))
	}

	instance := make(map[string]any, len(args))
	for k, val := range args {
		instance[k] = val
	}
	if err := v.schema.Validate(instance); err != nil {
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			return fmt.Errorf("%s: invalid arguments: %s", tool, flattenCause(ve))
		}
		return fmt.Errorf("%s: invalid arguments: %v", tool, err)
	}
	return nil
}

// flattenCause digs to the innermost validation cause so the player sees
// "version: got string, want number" instead of the root error tree.
func flattenCause(ve *jsonschema.ValidationError) string {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := strings.Join(ve.InstanceLocation, "/")
	if loc == "" {
		return fmt.Sprintf("%v", ve.ErrorKind)
	}
	return fmt.Sprintf("%s: %v", loc, ve.ErrorKind)
}
