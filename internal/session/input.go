package session

import (
	"fmt"
	"strings"
)

// NormalizeInput coerces a raw submission to a trimmed string. Callers have
// historically passed non-string payloads (event objects, byte slices) into
// the send path, so the coercion policy lives here as one pure function
// rather than scattered through dispatch. Returns false when the input
// normalizes to nothing usable.
func NormalizeInput(raw any) (string, bool) {
	var text string
	switch v := raw.(type) {
	case nil:
		return "", false
	case string:
		text = v
	case []byte:
		text = string(v)
	case fmt.Stringer:
		text = v.String()
	case error:
		text = v.Error()
	default:
		text = fmt.Sprint(v)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	return text, true
}
