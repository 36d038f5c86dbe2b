package report

import (
	"sort"

	"sideseeing-report/internal/modules/dataset/types"
)

// Summary holds the aggregate statistics shown at the top of a dataset report.
type Summary struct {
	TotalInstances       int      `json:"total_instances"`
	TotalDurationSeconds float64  `json:"total_duration_seconds"`
	Devices              []string `json:"devices"`
	DevicesManufacturer  []string `json:"devices_manufacturer"`
	AndroidVersions      []string `json:"android_versions"`
	SOVersions           []string `json:"so_versions"`
	// SensorTypes keeps a name once per axis group it appears in, so a sensor
	// recorded in two groups is listed twice.
	SensorTypes []string `json:"sensor_types"`
}

// BuildSummary never fails; an empty dataset yields zero values and empty lists.
func BuildSummary(ds Dataset) Summary {
	s := Summary{
		TotalInstances:      ds.Size(),
		Devices:             []string{},
		DevicesManufacturer: []string{},
		AndroidVersions:     []string{},
		SOVersions:          []string{},
		SensorTypes:         []string{},
	}

	devices := newOrderedSet()
	makers := newOrderedSet()
	versions := newOrderedSet()
	for _, md := range ds.Metadata() {
		s.TotalDurationSeconds += float64(md.MediaTotalTime)
		devices.add(md.Model)
		versions.add(md.SOVersion)
		if md.Manufacturer != "" || md.Model != "" {
			makers.add(joinNonEmpty(md.Manufacturer, md.Model))
		}
	}
	s.Devices = devices.items
	s.DevicesManufacturer = makers.items
	s.AndroidVersions = versions.items
	s.SOVersions = append([]string{}, versions.items...)

	inv := ds.Sensors()
	for _, group := range types.AxisGroups {
		s.SensorTypes = append(s.SensorTypes, sortedSensors(inv, group)...)
	}
	return s
}

// Map is the template view of the summary, keyed by the documented names.
func (s Summary) Map() map[string]any {
	return map[string]any{
		"total_instances":        s.TotalInstances,
		"total_duration_seconds": s.TotalDurationSeconds,
		"devices":                s.Devices,
		"devices_manufacturer":   s.DevicesManufacturer,
		"android_versions":       s.AndroidVersions,
		"so_versions":            s.SOVersions,
		"sensor_types":           s.SensorTypes,
	}
}

type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{}), items: []string{}}
}

// add keeps the first occurrence of v and ignores empty values.
func (o *orderedSet) add(v string) {
	if v == "" {
		return
	}
	if _, ok := o.seen[v]; ok {
		return
	}
	o.seen[v] = struct{}{}
	o.items = append(o.items, v)
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}

func sortedSensors(inv types.Inventory, group types.AxisGroup) []string {
	names := make([]string, 0, len(inv[group]))
	for name := range inv[group] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedInstances(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
