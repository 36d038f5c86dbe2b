package notebook

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Notebook is the subset of the nbformat 4 document the converter reads.
type Notebook struct {
	Cells []Cell `json:"cells"`
}

type Cell struct {
	CellType string    `json:"cell_type"`
	Source   Multiline `json:"source"`
	Outputs  []Output  `json:"outputs"`
}

// Output is one code-cell output. Data maps MIME type to its payload; values
// are kept raw because some types (application/json) are not text.
type Output struct {
	OutputType string                     `json:"output_type"`
	Name       string                     `json:"name"`
	Text       *Multiline                 `json:"text"`
	Data       map[string]json.RawMessage `json:"data"`
}

// Multiline is notebook text stored either as one string or as a list of
// lines that concatenate without separators.
type Multiline string

func (m *Multiline) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*m = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*m = Multiline(s)
		return nil
	}
	var lines []string
	if err := json.Unmarshal(b, &lines); err != nil {
		return fmt.Errorf("expected string or list of strings, got %s", truncate(b, 40))
	}
	*m = Multiline(strings.Join(lines, ""))
	return nil
}

func (m Multiline) String() string {
	return string(m)
}

// text decodes the payload stored under mime as Multiline.
func (o Output) text(mime string) (string, bool, error) {
	raw, ok := o.Data[mime]
	if !ok {
		return "", false, nil
	}
	var m Multiline
	if err := json.Unmarshal(raw, &m); err != nil {
		return "", false, fmt.Errorf("output %s: %w", mime, err)
	}
	return m.String(), true, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
