package cleanup

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// QuestionArraySchema is the canonical schema for the model's output: an
// array of question records, one per cleaned-up candidate.
var QuestionArraySchema = map[string]any{
	"type": "array",
	"items": map[string]any{
		"type": "object",
		"properties": map[string]any{
			"page": map[string]any{
				"type":        "integer",
				"description": "Page number the question appears on",
			},
			"qnum": map[string]any{
				"type":        []string{"string", "null"},
				"description": "Question number if known, else null",
			},
			"english": map[string]any{
				"type":        "string",
				"description": "Cleaned English question text, empty if none",
			},
			"hindi": map[string]any{
				"type":        "string",
				"description": "Cleaned Hindi question text, empty if none",
			},
			"notes": map[string]any{
				"type":        "string",
				"description": "Free-form annotation, empty if none",
			},
		},
		"required": []string{"page", "qnum", "english", "hindi", "notes"},
	},
}

// SchemaJSON returns the schema as indented JSON, suitable for embedding in
// the corrective prompt.
func SchemaJSON() (string, error) {
	b, err := json.MarshalIndent(QuestionArraySchema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize question schema: %w", err)
	}
	return string(b), nil
}

// CompileSchema compiles the canonical schema. Called once at pipeline start
// so a malformed schema fails fast, then used for the advisory output check.
func CompileSchema() (*jsonschema.Schema, error) {
	raw, err := json.Marshal(QuestionArraySchema)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize question schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("questions.json", bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("failed to load question schema: %w", err)
	}
	schema, err := compiler.Compile("questions.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile question schema: %w", err)
	}
	return schema, nil
}
