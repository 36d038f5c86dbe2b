package report

import (
	"bytes"
	"fmt"

	chart "github.com/wcharczuk/go-chart/v2"

	"sideseeing-report/internal/errs"
)

const (
	overviewBarWidth   = 40
	overviewBarSpacing = 24
	overviewMinWidth   = 640
	overviewHeight     = 360
)

// RenderOverview draws recording duration per instance as a bar chart. It
// returns nil when no instance has a positive duration, so the overview
// group is left out of the report.
func RenderOverview(ds Dataset) (*Section, error) {
	var bars []chart.Value
	peak := 0.0
	for _, md := range ds.Metadata() {
		d := float64(md.MediaTotalTime)
		if !isFinite(d) || d < 0 {
			d = 0
		}
		peak = max(peak, d)
		bars = append(bars, chart.Value{Label: md.Instance, Value: d})
	}
	if peak <= 0 {
		return nil, nil
	}

	width := max(overviewMinWidth, 160+len(bars)*(overviewBarWidth+overviewBarSpacing))
	graph := chart.BarChart{
		Title:      "Recording duration per instance (s)",
		Width:      width,
		Height:     overviewHeight,
		BarWidth:   overviewBarWidth,
		BarSpacing: overviewBarSpacing,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: peak * 1.1},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("%w: overview chart: %v", errs.ErrRender, err)
	}
	return &Section{Kind: KindImage, Heading: "Duration per instance", Image: buf.Bytes()}, nil
}
