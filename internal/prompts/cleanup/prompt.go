// Package cleanup holds the prompts and the output schema for the question
// cleanup stage: batches of OCR candidates go in, a JSON array of bilingual
// question records comes out.
package cleanup

import (
	_ "embed"
)

//go:embed batch.tmpl
var batchPrompt string

//go:embed corrective.tmpl
var correctivePrompt string

// Placeholder tokens used by the embedded templates. External template files
// must contain CandidatesToken.
const (
	CandidatesToken = "{{CANDIDATES_JSON}}"
	SchemaToken     = "{{SCHEMA_JSON}}"
)

// BatchPrompt returns the default per-page cleanup prompt template.
func BatchPrompt() string {
	return batchPrompt
}

// CorrectivePrompt returns the retry prompt template sent when the model
// answered with an array of primitives instead of objects. It carries both
// the schema and the original batch.
func CorrectivePrompt() string {
	return correctivePrompt
}
