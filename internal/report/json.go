package report

import (
	"encoding/json"
	"fmt"
)

// BuildJSON renders v as indented JSON with a trailing newline. Records,
// evaluate and demo output all go through it.
func BuildJSON(v any) ([]byte, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return append(raw, '\n'), nil
}
