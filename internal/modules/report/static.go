package report

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"sync"

	"golang.org/x/image/colornames"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"sideseeing-report/internal/errs"
	"sideseeing-report/internal/modules/dataset/types"
)

// StaticOptions sizes the per-sensor image; each instance adds one panel.
type StaticOptions struct {
	Width       vg.Length
	PanelHeight vg.Length
	LineWidth   vg.Length
}

func DefaultStaticOptions() StaticOptions {
	return StaticOptions{
		Width:       10 * vg.Inch,
		PanelHeight: 2.5 * vg.Inch,
		LineWidth:   vg.Points(0.8),
	}
}

// axisColors is indexed by axis position: x, y, z, dx, dy, dz.
var axisColors = []color.Color{
	colornames.Royalblue,
	colornames.Darkorange,
	colornames.Forestgreen,
	colornames.Crimson,
	colornames.Mediumpurple,
	colornames.Saddlebrown,
}

var pngBuffers = sync.Pool{New: func() any { return new(bytes.Buffer) }}

// renderStaticSensor draws one panel per instance, stacked over a shared
// time axis, and encodes the figure as PNG.
func renderStaticSensor(sensor string, labels []string, series []types.SensorSeries, o StaticOptions) (Section, error) {
	lo, hi := timeRange(series)

	plots := make([][]*plot.Plot, len(series))
	for i, s := range series {
		p, err := instancePanel(s, labels, o.LineWidth)
		if err != nil {
			return Section{}, fmt.Errorf("%w: %s/%s: %v", errs.ErrRender, s.Instance, sensor, err)
		}
		p.X.Min, p.X.Max = lo, hi
		if i == len(series)-1 {
			p.X.Label.Text = "Time (s)"
		}
		plots[i] = []*plot.Plot{p}
	}

	img, err := encodePNG(o.Width, o.PanelHeight*vg.Length(len(series)), func(dc draw.Canvas) {
		tiles := draw.Tiles{
			Rows: len(series),
			Cols: 1,
			PadX: vg.Millimeter,
			PadY: 2 * vg.Millimeter,
		}
		canvases := plot.Align(plots, tiles, dc)
		for i := range plots {
			plots[i][0].Draw(canvases[i][0])
		}
	})
	if err != nil {
		return Section{}, fmt.Errorf("%w: sensor %s: %v", errs.ErrRender, sensor, err)
	}
	return Section{Kind: KindImage, Heading: "Sensor: " + sensor, Image: img}, nil
}

func instancePanel(s types.SensorSeries, labels []string, width vg.Length) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = s.Instance
	p.Y.Label.Text = "Value"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	for i, label := range labels {
		if i >= len(s.Axes) {
			break
		}
		pts := finitePoints(s.Time, s.Axes[i])
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("axis %s: %w", label, err)
		}
		line.Color = axisColors[i%len(axisColors)]
		line.Width = width
		p.Add(line)
		p.Legend.Add(label, line)
	}
	return p, nil
}

// finitePoints drops NaN and infinite samples, which plotter rejects.
func finitePoints(t, v []float64) plotter.XYs {
	n := min(len(t), len(v))
	pts := make(plotter.XYs, 0, n)
	for i := 0; i < n; i++ {
		if !isFinite(t[i]) || !isFinite(v[i]) {
			continue
		}
		pts = append(pts, plotter.XY{X: t[i], Y: v[i]})
	}
	return pts
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func timeRange(series []types.SensorSeries) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, t := range s.Time {
			if !isFinite(t) {
				continue
			}
			lo = math.Min(lo, t)
			hi = math.Max(hi, t)
		}
	}
	if lo > hi {
		return 0, 1
	}
	if lo == hi {
		return lo - 0.5, hi + 0.5
	}
	return lo, hi
}

// encodePNG acquires a canvas and an encode buffer, runs fill, and releases
// both before returning. A panic inside the plotting code becomes an error so
// the buffer still goes back to the pool.
func encodePNG(w, h vg.Length, fill func(dc draw.Canvas)) (out []byte, err error) {
	buf := pngBuffers.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("plot panicked: %v", r)
			out = nil
		}
		buf.Reset()
		pngBuffers.Put(buf)
	}()

	img := vgimg.New(w, h)
	fill(draw.New(img))
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(buf); err != nil {
		return nil, err
	}
	return bytes.Clone(buf.Bytes()), nil
}
