// Package report turns a loaded dataset or a notebook into one
// self-contained HTML document.
package report

import "sideseeing-report/internal/modules/dataset/types"

// Dataset is the read-only view the pipeline needs; *dataset.Handle
// implements it.
type Dataset interface {
	Size() int
	Metadata() []types.Metadata
	Sensors() types.Inventory
	Series(group types.AxisGroup, sensor, instance string) (types.SensorSeries, error)
}
