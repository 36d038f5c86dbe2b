package report

import (
	"fmt"
	"log/slog"

	"sideseeing-report/internal/errs"
	"sideseeing-report/internal/modules/dataset/types"
)

// NoDataMessage is the single section emitted when no sensor renders.
const NoDataMessage = "No processable sensor data was found in the dataset."

// Renderer turns each (axis group, sensor) of a dataset into sections.
type Renderer struct {
	mode   Mode
	logger *slog.Logger
	static StaticOptions
}

func NewRenderer(mode Mode, logger *slog.Logger) (*Renderer, error) {
	if mode != ModeStatic && mode != ModeInteractive {
		return nil, fmt.Errorf("renderer: unsupported mode %q", mode)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{mode: mode, logger: logger.With("component", "renderer"), static: DefaultStaticOptions()}, nil
}

// Render visits axis groups in declared order, sensors and instances in
// ascending name order, so identical input gives identical output. Absent or
// empty series are skipped; if nothing renders the result is the single
// NoDataMessage section.
func (r *Renderer) Render(ds Dataset) ([]Section, error) {
	inv := ds.Sensors()
	var out []Section

	for _, group := range types.AxisGroups {
		sensors := sortedSensors(inv, group)
		if len(sensors) == 0 {
			continue
		}
		labels := group.Labels()

		for _, sensor := range sensors {
			series, err := collectSeries(ds, group, sensor, sortedInstances(inv[group][sensor]))
			if err != nil {
				return nil, err
			}
			if len(series) == 0 {
				r.logger.Debug("sensor skipped, no samples", "group", group.Key(), "sensor", sensor)
				continue
			}

			switch r.mode {
			case ModeStatic:
				sec, err := renderStaticSensor(sensor, labels, series, r.static)
				if err != nil {
					return nil, err
				}
				out = append(out, sec)
			case ModeInteractive:
				for _, s := range series {
					spec, err := buildChartSpec(s, labels)
					if err != nil {
						return nil, err
					}
					out = append(out, Section{Kind: KindChartSpec, Heading: spec.Layout.Title, Chart: spec})
				}
			}
			samples := 0
			for _, s := range series {
				samples += s.Len()
			}
			r.logger.Debug("sensor rendered", "group", group.Key(), "sensor", sensor, "instances", len(series), "samples", samples)
		}
	}

	if len(out) == 0 {
		return []Section{{Kind: KindText, Text: NoDataMessage}}, nil
	}
	return out, nil
}

func collectSeries(ds Dataset, group types.AxisGroup, sensor string, instances []string) ([]types.SensorSeries, error) {
	var out []types.SensorSeries
	for _, inst := range instances {
		s, err := ds.Series(group, sensor, inst)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s/%s: %v", errs.ErrDatasetLoad, inst, sensor, err)
		}
		if s.Empty() {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}
