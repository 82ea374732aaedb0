package observability

import (
	"encoding/json"
	"regexp"
)

var sensitiveKeyPattern = regexp.MustCompile(`(?i)(api[_-]?key|authorization|password|secret|token|bearer)`)

const redactedPlaceholder = "[redacted]"

// RedactJSON masks values of sensitive-looking keys in a JSON document before
// it is logged. Malformed input is returned unchanged rather than dropped.
func RedactJSON(raw []byte) []byte {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return raw
	}
	redacted := redactValue(v)
	out, err := json.Marshal(redacted)
	if err != nil {
		return raw
	}
	return out
}

func redactValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if sensitiveKeyPattern.MatchString(k) {
				out[k] = redactedPlaceholder
				continue
			}
			out[k] = redactValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = redactValue(val)
		}
		return out
	default:
		return v
	}
}
