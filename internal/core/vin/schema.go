package vin

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// decodeResponseSchema is the part of the vPIC DecodeVin response we rely on.
var decodeResponseSchema = map[string]any{
	"type":     "object",
	"required": []string{"Results"},
	"properties": map[string]any{
		"Count":   map[string]any{"type": "integer"},
		"Message": map[string]any{"type": "string"},
		"Results": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []string{"Variable"},
				"properties": map[string]any{
					"Variable": map[string]any{"type": "string"},
					"Value":    map[string]any{"type": []string{"string", "null"}},
				},
			},
		},
	},
}

func compileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("decodevin.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("decodevin.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// validateResponse checks raw JSON against the compiled schema.
func validateResponse(schema *jsonschema.Schema, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("response does not match schema: %w", err)
	}
	return nil
}
