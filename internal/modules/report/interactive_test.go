package report

import (
	"encoding/json"
	"strings"
	"testing"

	"sideseeing-report/internal/modules/dataset/types"
)

func TestChartID(t *testing.T) {
	a := ChartID("linear acceleration", "walk 01")
	if a != ChartID("linear acceleration", "walk 01") {
		t.Error("ChartID is not stable")
	}
	if !strings.HasPrefix(a, "chart_walk_01_linear_acceleration_") {
		t.Errorf("ChartID = %q", a)
	}
	if strings.ContainsAny(a, " /") {
		t.Errorf("ChartID %q contains unsafe characters", a)
	}
	if a == ChartID("linear acceleration", "walk_01") {
		t.Error("different instances share a chart id")
	}
}

func TestBuildChartSpec(t *testing.T) {
	s := types.SensorSeries{
		Instance: "walk-01",
		Sensor:   "accelerometer",
		Group:    types.ThreeAxis,
		Time:     []float64{0, 0.1},
		Axes:     [][]float64{{1, 2}, {3, 4}, {5, 6}},
	}
	spec, err := buildChartSpec(s, types.ThreeAxis.Labels())
	if err != nil {
		t.Fatalf("buildChartSpec: %v", err)
	}

	if spec.Layout != (ChartLayout{Title: "accelerometer / walk-01", XLabel: "Time (s)", YLabel: "Value"}) {
		t.Errorf("Layout = %+v", spec.Layout)
	}
	if len(spec.Traces) != 3 || spec.Traces[2].Name != "z" || spec.Traces[2].Y[1] != 6 {
		t.Errorf("Traces = %+v", spec.Traces)
	}

	var option struct {
		Title  any `json:"title"`
		Series []struct {
			Name string `json:"name"`
			Type string `json:"type"`
			Data []any  `json:"data"`
		} `json:"series"`
	}
	if err := json.Unmarshal(spec.Option, &option); err != nil {
		t.Fatalf("option is not JSON: %v", err)
	}
	if len(option.Series) != 3 {
		t.Fatalf("option series = %d; want 3", len(option.Series))
	}
	if option.Series[0].Name != "x" || option.Series[0].Type != "line" {
		t.Errorf("first series = %+v", option.Series[0])
	}
	if len(option.Series[0].Data) != 2 {
		t.Errorf("first series data = %v; want 2 points", option.Series[0].Data)
	}
	if !strings.Contains(string(spec.Option), "accelerometer / walk-01") {
		t.Error("option does not carry the chart title")
	}
}
