package extract

import (
	"encoding/json"
	"strings"
)

// Shape classifies a parsed model response array.
type Shape int

const (
	// ShapeParseFailed: the text is not a JSON array at all. The page is
	// abandoned, no retry.
	ShapeParseFailed Shape = iota

	// ShapePrimitiveArray: a non-empty array whose elements are all
	// primitives (strings, numbers, booleans, nulls). Triggers the one
	// corrective retry.
	ShapePrimitiveArray

	// ShapeObjectArray: an array containing at least one object element.
	// Mixed arrays count; the validator drops the primitive stragglers.
	// An empty array also lands here: a batch that legitimately produced
	// nothing gains nothing from a retry.
	ShapeObjectArray
)

func (s Shape) String() string {
	switch s {
	case ShapePrimitiveArray:
		return "primitive_array"
	case ShapeObjectArray:
		return "object_array"
	default:
		return "parse_failed"
	}
}

// Classify parses text as a JSON array and reports its shape. On anything
// but ShapeParseFailed the parsed elements are returned as well.
func Classify(text string) (Shape, []json.RawMessage) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "[") {
		return ShapeParseFailed, nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &elems); err != nil {
		return ShapeParseFailed, nil
	}

	if len(elems) == 0 {
		return ShapeObjectArray, elems
	}
	for _, elem := range elems {
		if IsObject(elem) {
			return ShapeObjectArray, elems
		}
	}
	return ShapePrimitiveArray, elems
}

// IsObject reports whether a raw JSON value is an object.
func IsObject(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b == '{'
	}
	return false
}
