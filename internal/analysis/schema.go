package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"curebird/internal/providers"
)

var nullableString = map[string]any{"type": []any{"string", "null"}}

var extractionSchemaMap = map[string]any{
	"type":     "object",
	"required": []any{"is_medical"},
	"properties": map[string]any{
		"is_medical":   map[string]any{"type": "boolean"},
		"patient_name": nullableString,
		"digital_copy": nullableString,
		"diseases": map[string]any{
			"type":  []any{"array", "null"},
			"items": map[string]any{"type": "string"},
		},
		"medications": map[string]any{
			"type": []any{"array", "null"},
			"items": map[string]any{
				"type":     "object",
				"required": []any{"name"},
				"properties": map[string]any{
					"name":      map[string]any{"type": "string"},
					"dosage":    nullableString,
					"frequency": nullableString,
				},
			},
		},
	},
}

var verifiedSchemaMap = map[string]any{
	"type":     "object",
	"required": []any{"diseases", "medicines"},
	"properties": map[string]any{
		"diseases": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"input", "corrected"},
				"properties": map[string]any{
					"input":      map[string]any{"type": "string"},
					"corrected":  map[string]any{"type": "string"},
					"confidence": map[string]any{"type": "number"},
				},
			},
		},
		"medicines": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"input", "corrected"},
				"properties": map[string]any{
					"input":               map[string]any{"type": "string"},
					"corrected":           map[string]any{"type": "string"},
					"dosage":              nullableString,
					"frequency":           nullableString,
					"salt_or_composition": nullableString,
					"valid_for_disease":   map[string]any{"type": "boolean"},
					"alternatives": map[string]any{
						"type":  []any{"array", "null"},
						"items": map[string]any{"type": "string"},
					},
					"confidence":   map[string]any{"type": "number"},
					"is_corrected": map[string]any{"type": "boolean"},
				},
			},
		},
		"warnings": map[string]any{
			"type":  []any{"array", "null"},
			"items": map[string]any{"type": "string"},
		},
	},
}

var (
	extractionSchema = mustCompile("extraction.json", extractionSchemaMap)
	verifiedSchema   = mustCompile("verified.json", verifiedSchemaMap)
)

func mustCompile(name string, schemaMap map[string]any) *jsonschema.Schema {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		panic(fmt.Sprintf("marshal schema %s: %v", name, err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
		panic(fmt.Sprintf("add schema %s: %v", name, err))
	}
	return compiler.MustCompile(name)
}

// decodeStrict validates a model reply against schema and decodes it into
// out. Any failure wraps providers.ErrMalformedResponse.
func decodeStrict(raw string, schema *jsonschema.Schema, out any) error {
	body := jsonBody(raw)
	if body == "" {
		return fmt.Errorf("no json object in reply: %w", providers.ErrMalformedResponse)
	}
	var v any
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		return fmt.Errorf("unmarshal reply: %v: %w", err, providers.ErrMalformedResponse)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("reply does not match schema: %v: %w", err, providers.ErrMalformedResponse)
	}
	if err := json.Unmarshal([]byte(body), out); err != nil {
		return fmt.Errorf("decode reply: %v: %w", err, providers.ErrMalformedResponse)
	}
	return nil
}

// jsonBody strips markdown fences and any prose around the outermost object.
func jsonBody(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```JSON")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
