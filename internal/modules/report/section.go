package report

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
)

// Mode selects how a run turns its input into report content.
type Mode string

const (
	ModeStatic      Mode = "static"
	ModeInteractive Mode = "interactive"
	ModeNotebook    Mode = "notebook"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeStatic, nil
	case ModeStatic, ModeInteractive, ModeNotebook:
		return m, nil
	default:
		return "", fmt.Errorf("invalid mode %q (allowed: static, interactive, notebook)", s)
	}
}

type SectionKind string

const (
	KindImage     SectionKind = "image"
	KindChartSpec SectionKind = "chart_spec"
	KindText      SectionKind = "text"
)

// Section is one renderable unit of a dataset report. Exactly one of Image,
// Chart or Text is set, matching Kind.
type Section struct {
	Kind    SectionKind
	Heading string
	Image   []byte
	Chart   *ChartSpec
	Text    string
}

func (s Section) IsImage() bool { return s.Kind == KindImage }
func (s Section) IsChart() bool { return s.Kind == KindChartSpec }
func (s Section) IsText() bool { return s.Kind == KindText }

// ChartSpec is the client-side description of one (sensor, instance) chart:
// the raw traces, a layout, and the ECharts option built from both.
type ChartSpec struct {
	ID       string
	Sensor   string
	Instance string
	Traces   []Trace
	Layout   ChartLayout
	Option   json.RawMessage
}

// Trace is one axis of a series. X and Y have equal length.
type Trace struct {
	Name string    `json:"name"`
	X    []float64 `json:"x"`
	Y    []float64 `json:"y"`
}

type ChartLayout struct {
	Title  string `json:"title"`
	XLabel string `json:"xLabel"`
	YLabel string `json:"yLabel"`
}

// SectionGroup is one keyed entry of the report's ordered section mapping.
type SectionGroup struct {
	Key      string
	Title    string
	Sections []Section
}

// Sections keeps the order groups were added in.
type Sections []SectionGroup

// NewSections drops groups without sections, the "only non-null entries
// retained" rule.
func NewSections(groups ...SectionGroup) Sections {
	out := make(Sections, 0, len(groups))
	for _, g := range groups {
		if len(g.Sections) == 0 {
			continue
		}
		out = append(out, g)
	}
	return out
}

// HasCharts reports whether any section needs the client-side chart script.
func (s Sections) HasCharts() bool {
	for _, g := range s {
		for _, sec := range g.Sections {
			if sec.IsChart() {
				return true
			}
		}
	}
	return false
}

// Count is the total number of sections across groups.
func (s Sections) Count() int {
	n := 0
	for _, g := range s {
		n += len(g.Sections)
	}
	return n
}

type ComponentKind string

const (
	ComponentMarkdown ComponentKind = "markdown"
	ComponentHTML     ComponentKind = "html"
	ComponentImage    ComponentKind = "image"
	ComponentText     ComponentKind = "text"
)

// Component is one unit of a notebook report. Data holds HTML for markdown
// and html kinds, base64 PNG for images and raw text otherwise.
type Component struct {
	Kind ComponentKind
	Data string
}

func (c Component) IsImage() bool { return c.Kind == ComponentImage }
func (c Component) IsText() bool { return c.Kind == ComponentText }

// HTML returns Data as trusted markup; notebook outputs come from the
// notebook's own author.
func (c Component) HTML() template.HTML {
	return template.HTML(c.Data)
}

func (c Component) URL() template.URL {
	return template.URL("data:image/png;base64," + strings.Join(strings.Fields(c.Data), ""))
}

func (c Component) Text() string {
	return c.Data
}
