package dataset

import (
	"fmt"

	"sideseeing-report/internal/modules/dataset/repository"
	"sideseeing-report/internal/modules/dataset/types"
)

// Handle is a read-only view of one loaded dataset. Metadata and the sensor
// inventory are read once; series are fetched from the store on demand.
type Handle struct {
	repo      repository.DatasetRepository
	metadata  []types.Metadata
	inventory types.Inventory
}

// Open builds a Handle over whatever the repository currently holds.
func Open(repo repository.DatasetRepository) (*Handle, error) {
	md, err := repo.GetInstances()
	if err != nil {
		return nil, fmt.Errorf("read instances: %w", err)
	}
	entries, err := repo.GetSensorInventory()
	if err != nil {
		return nil, fmt.Errorf("read sensor inventory: %w", err)
	}
	inv := types.Inventory{}
	for _, e := range entries {
		inv.Add(e.Group, e.Sensor, e.Instance)
	}
	return &Handle{repo: repo, metadata: md, inventory: inv}, nil
}

// Size is the number of instances.
func (h *Handle) Size() int {
	return len(h.metadata)
}

// Metadata returns one record per instance ordered by instance name.
func (h *Handle) Metadata() []types.Metadata {
	return append([]types.Metadata(nil), h.metadata...)
}

// Sensors returns the axis group -> sensor -> instance set grouping.
// Callers must not modify it.
func (h *Handle) Sensors() types.Inventory {
	return h.inventory
}

func (h *Handle) Series(group types.AxisGroup, sensor, instance string) (types.SensorSeries, error) {
	return h.repo.GetSeries(instance, group, sensor)
}
