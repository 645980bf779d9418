package store

import (
	"encoding/json"
	"fmt"
)

// marshalChanged stores changed positions as a JSON array.
func marshalChanged(changed []int) (string, error) {
	if len(changed) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(changed)
	if err != nil {
		return "", fmt.Errorf("marshal changed: %w", err)
	}
	return string(data), nil
}

// unmarshalChanged parses the JSON array written by marshalChanged.
func unmarshalChanged(data string) ([]int, error) {
	changed := []int{}
	if data == "" || data == "[]" {
		return changed, nil
	}
	if err := json.Unmarshal([]byte(data), &changed); err != nil {
		return nil, fmt.Errorf("unmarshal changed: %w", err)
	}
	return changed, nil
}
