package form

import (
	"encoding/json"
)

// DetailsChecker is the default emptiness predicate over the opaque response
// detail payloads. A payload is empty when it carries nothing beyond its
// question type tag, or when its answer fields hold no content.
type DetailsChecker struct{}

func NewDetailsChecker() *DetailsChecker {
	return &DetailsChecker{}
}

func (c *DetailsChecker) IsResponseDetailsEmpty(questionType string, details json.RawMessage) bool {
	if len(details) == 0 {
		return true
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(details, &fields); err != nil {
		return true
	}
	delete(fields, "questionType")
	if len(fields) == 0 {
		return true
	}

	for _, raw := range fields {
		if hasContent(raw) {
			return false
		}
	}
	return true
}

func hasContent(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case []any:
		return len(val) != 0
	case map[string]any:
		return len(val) != 0
	default:
		// numbers and booleans count as content
		return true
	}
}
