package report

import (
	"errors"
	"reflect"
	"testing"

	"sideseeing-report/internal/modules/dataset/types"
)

// fakeDataset is an in-memory Dataset for pipeline tests.
type fakeDataset struct {
	metadata  []types.Metadata
	inventory types.Inventory
	series    map[string]types.SensorSeries
	seriesErr error
	calls     int
}

func newFakeDataset() *fakeDataset {
	return &fakeDataset{inventory: types.Inventory{}, series: map[string]types.SensorSeries{}}
}

func seriesKey(group types.AxisGroup, sensor, instance string) string {
	return group.Key() + "/" + sensor + "/" + instance
}

// addSeries registers n samples for every axis of group.
func (f *fakeDataset) addSeries(group types.AxisGroup, sensor, instance string, n int) {
	f.inventory.Add(group, sensor, instance)
	s := types.SensorSeries{Instance: instance, Sensor: sensor, Group: group}
	s.Axes = make([][]float64, len(group.Labels()))
	for i := 0; i < n; i++ {
		s.Time = append(s.Time, float64(i)*0.1)
		for a := range s.Axes {
			s.Axes[a] = append(s.Axes[a], float64(i*(a+1)))
		}
	}
	f.series[seriesKey(group, sensor, instance)] = s
}

func (f *fakeDataset) Size() int { return len(f.metadata) }
func (f *fakeDataset) Metadata() []types.Metadata { return f.metadata }
func (f *fakeDataset) Sensors() types.Inventory { return f.inventory }

func (f *fakeDataset) Series(group types.AxisGroup, sensor, instance string) (types.SensorSeries, error) {
	f.calls++
	if f.seriesErr != nil {
		return types.SensorSeries{}, f.seriesErr
	}
	return f.series[seriesKey(group, sensor, instance)], nil
}

func TestBuildSummary_Empty(t *testing.T) {
	s := BuildSummary(newFakeDataset())

	if s.TotalInstances != 0 || s.TotalDurationSeconds != 0 {
		t.Errorf("totals = (%d, %v); want zero", s.TotalInstances, s.TotalDurationSeconds)
	}
	for name, list := range map[string][]string{
		"devices":              s.Devices,
		"devices_manufacturer": s.DevicesManufacturer,
		"android_versions":     s.AndroidVersions,
		"so_versions":          s.SOVersions,
		"sensor_types":         s.SensorTypes,
	} {
		if list == nil || len(list) != 0 {
			t.Errorf("%s = %#v; want empty non-nil list", name, list)
		}
	}
}

func TestBuildSummary_Values(t *testing.T) {
	ds := newFakeDataset()
	ds.metadata = []types.Metadata{
		{Instance: "a", Model: "SM-A525M", Manufacturer: "samsung", SOVersion: "13", MediaTotalTime: 12.5},
		{Instance: "b", Model: "moto g(8)", Manufacturer: "motorola", SOVersion: "11", MediaTotalTime: 8.5},
		{Instance: "c", Model: "SM-A525M", Manufacturer: "samsung", SOVersion: "13", MediaTotalTime: 1},
		{Instance: "d"},
	}
	ds.addSeries(types.ThreeAxis, "gyroscope", "a", 2)
	ds.addSeries(types.ThreeAxis, "accelerometer", "a", 2)
	ds.addSeries(types.OneAxis, "light", "b", 2)
	ds.addSeries(types.SixAxis, "gyroscope", "b", 2)

	s := BuildSummary(ds)

	if s.TotalInstances != 4 {
		t.Errorf("TotalInstances = %d; want 4", s.TotalInstances)
	}
	if s.TotalDurationSeconds != 22 {
		t.Errorf("TotalDurationSeconds = %v; want 22", s.TotalDurationSeconds)
	}
	check := func(name string, got, want []string) {
		t.Helper()
		if !reflect.DeepEqual(got, want) {
			t.Errorf("%s = %v; want %v", name, got, want)
		}
	}
	check("devices", s.Devices, []string{"SM-A525M", "moto g(8)"})
	check("devices_manufacturer", s.DevicesManufacturer, []string{"samsung SM-A525M", "motorola moto g(8)"})
	check("android_versions", s.AndroidVersions, []string{"13", "11"})
	check("so_versions", s.SOVersions, []string{"13", "11"})
	// gyroscope is reported by a 3-axis and a 6-axis group and appears twice.
	check("sensor_types", s.SensorTypes, []string{"light", "accelerometer", "gyroscope", "gyroscope"})
}

func TestSummary_Map(t *testing.T) {
	m := Summary{TotalInstances: 1}.Map()
	for _, key := range []string{
		"total_instances", "total_duration_seconds", "devices", "devices_manufacturer",
		"android_versions", "so_versions", "sensor_types",
	} {
		if _, ok := m[key]; !ok {
			t.Errorf("Map() missing %q", key)
		}
	}
	if len(m) != 7 {
		t.Errorf("Map() has %d keys; want 7", len(m))
	}
	if _, ok := m["devices+manufacturer"]; ok {
		t.Error("Map() carries the devices+manufacturer key")
	}
}

func TestJoinNonEmpty(t *testing.T) {
	tests := []struct{ a, b, want string }{
		{"samsung", "A52", "samsung A52"},
		{"", "A52", "A52"},
		{"samsung", "", "samsung"},
	}
	for _, tt := range tests {
		if got := joinNonEmpty(tt.a, tt.b); got != tt.want {
			t.Errorf("joinNonEmpty(%q, %q) = %q; want %q", tt.a, tt.b, got, tt.want)
		}
	}
}

var errBoom = errors.New("boom")
