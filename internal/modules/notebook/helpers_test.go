package notebook

import (
	"encoding/json"
	"testing"
)

func jsonUnmarshal(s string, v any) error {
	return json.Unmarshal([]byte(s), v)
}

func decodeOutput(t *testing.T, s string) Output {
	t.Helper()
	var out Output
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	return out
}
