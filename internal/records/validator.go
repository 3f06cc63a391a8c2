// Package records validates question records parsed from model output and
// writes the final result file.
package records

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/scanstack/qclean/internal/extract"
)

// textFields is the pair of fields at least one of which must be non-blank.
type textFields struct {
	English json.RawMessage `json:"english"`
	Hindi   json.RawMessage `json:"hindi"`
}

// Validator gates parsed elements. It never rewrites them: accepted records
// keep their raw JSON, unknown fields and all.
type Validator struct {
	logger *slog.Logger
}

// NewValidator creates a validator.
func NewValidator(logger *slog.Logger) *Validator {
	return &Validator{logger: logger}
}

// Filter returns the elements that are well-formed question records: JSON
// objects with at least one non-blank text field. Everything else is dropped
// with a warning. The blank check uses the trimmed value; the stored record
// keeps the original.
func (v *Validator) Filter(page int, elems []json.RawMessage) []json.RawMessage {
	var accepted []json.RawMessage
	for i, elem := range elems {
		if !extract.IsObject(elem) {
			v.logger.Warn("dropping non-object element",
				"page", page, "index", i, "value", truncateRaw(elem))
			continue
		}

		var fields textFields
		if err := json.Unmarshal(elem, &fields); err != nil {
			v.logger.Warn("dropping unparseable record",
				"page", page, "index", i, "error", err)
			continue
		}

		english := stringOrEmpty(fields.English)
		hindi := stringOrEmpty(fields.Hindi)
		if strings.TrimSpace(english) == "" && strings.TrimSpace(hindi) == "" {
			v.logger.Warn("dropping record with no question text",
				"page", page, "index", i)
			continue
		}

		accepted = append(accepted, elem)
	}
	return accepted
}

// stringOrEmpty reads a raw value as a string; absent or non-string values
// count as empty.
func stringOrEmpty(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func truncateRaw(raw json.RawMessage) string {
	const max = 80
	s := string(raw)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
