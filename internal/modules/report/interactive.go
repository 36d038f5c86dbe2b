package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/google/uuid"

	"sideseeing-report/internal/errs"
	"sideseeing-report/internal/modules/dataset/types"
)

// chartNamespace derives stable DOM ids, so re-running on the same dataset
// produces the same document.
var chartNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("sideseeing-report/chart"))

// buildChartSpec describes one (sensor, instance) chart, one trace per axis.
func buildChartSpec(s types.SensorSeries, labels []string) (*ChartSpec, error) {
	spec := &ChartSpec{
		ID:       ChartID(s.Sensor, s.Instance),
		Sensor:   s.Sensor,
		Instance: s.Instance,
		Layout: ChartLayout{
			Title:  s.Sensor + " / " + s.Instance,
			XLabel: "Time (s)",
			YLabel: "Value",
		},
	}
	for i, label := range labels {
		if i >= len(s.Axes) {
			break
		}
		spec.Traces = append(spec.Traces, Trace{Name: label, X: s.Time, Y: s.Axes[i]})
	}

	option, err := echartsOption(spec)
	if err != nil {
		return nil, fmt.Errorf("%w: chart %s: %v", errs.ErrRender, spec.Layout.Title, err)
	}
	spec.Option = option
	return spec, nil
}

// ChartID is "chart_<instance>_<sensor>" with spaces replaced, suffixed by a
// name-based UUID so odd characters in names cannot collide.
func ChartID(sensor, instance string) string {
	base := "chart_" + instance + "_" + strings.ReplaceAll(sensor, " ", "_")
	id := uuid.NewSHA1(chartNamespace, []byte(instance+"\x00"+sensor))
	return sanitizeID(base) + "_" + id.String()[:8]
}

func sanitizeID(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, s)
}

func echartsOption(spec *ChartSpec) (json.RawMessage, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			ChartID: spec.ID,
			Width:   "100%",
			Height:  "420px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title: spec.Layout.Title,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
			Top:  "30",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: spec.Layout.XLabel,
			Type: "value",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: spec.Layout.YLabel,
			Type: "value",
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:  "slider",
			Start: 0,
			End:   100,
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type: "inside",
		}),
	)

	for _, tr := range spec.Traces {
		data := make([]opts.LineData, 0, len(tr.X))
		for i := range tr.X {
			if i >= len(tr.Y) || !isFinite(tr.X[i]) || !isFinite(tr.Y[i]) {
				continue
			}
			data = append(data, opts.LineData{Value: []float64{tr.X[i], tr.Y[i]}})
		}
		line.AddSeries(tr.Name, data,
			charts.WithLineChartOpts(opts.LineChart{
				ShowSymbol: opts.Bool(false),
			}),
		)
	}

	line.Validate()
	return json.Marshal(line.JSON())
}
