package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// AxisGroup classifies a sensor by how many numeric axes each sample carries.
type AxisGroup int

const (
	OneAxis   AxisGroup = 1
	ThreeAxis AxisGroup = 3
	SixAxis   AxisGroup = 6
)

// AxisGroups is the fixed visiting order used everywhere a report walks groups.
var AxisGroups = []AxisGroup{OneAxis, ThreeAxis, SixAxis}

// MaxAxes is the widest group and the number of value columns in the store.
const MaxAxes = 6

var axisLabels = map[AxisGroup][]string{
	OneAxis:   {"x"},
	ThreeAxis: {"x", "y", "z"},
	SixAxis:   {"x", "y", "z", "dx", "dy", "dz"},
}

var axisFiles = map[AxisGroup]string{
	OneAxis:   "sensors.one.csv",
	ThreeAxis: "sensors.three.csv",
	SixAxis:   "sensors.six.csv",
}

func (g AxisGroup) Valid() bool {
	_, ok := axisLabels[g]
	return ok
}

// Labels returns a copy of the ordered axis labels of the group.
func (g AxisGroup) Labels() []string {
	return append([]string(nil), axisLabels[g]...)
}

// Key is the section key of the group, e.g. "sensors3".
func (g AxisGroup) Key() string {
	return fmt.Sprintf("sensors%d", int(g))
}

// FileName is the per-instance CSV file holding the group's samples.
func (g AxisGroup) FileName() string {
	return axisFiles[g]
}

func (g AxisGroup) String() string {
	return g.Key()
}

// Metadata is one instance's metadata.json record.
type Metadata struct {
	Instance       string  `json:"-"`
	Model          string  `json:"model"`
	Manufacturer   string  `json:"manufacturer"`
	SOVersion      string  `json:"so_version"`
	MediaTotalTime Seconds `json:"media_total_time"`
}

// Seconds is a duration in seconds. It decodes from a JSON number, a numeric
// string, or a clock string such as "00:01:30.5".
type Seconds float64

func (s *Seconds) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = 0
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*s = Seconds(f)
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return fmt.Errorf("media_total_time: %s is neither a number nor a string", b)
	}
	v, err := ParseSeconds(str)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseSeconds parses "", "12.5", "01:30" or "00:01:30.5".
func ParseSeconds(s string) (Seconds, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("media_total_time: invalid duration %q", s)
	}
	var total float64
	for _, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil || f < 0 {
			return 0, fmt.Errorf("media_total_time: invalid duration %q", s)
		}
		total = total*60 + f
	}
	return Seconds(total), nil
}

// SensorSeries is the time-ordered samples of one sensor on one instance.
// Axes[i] lines up with Time and with Group.Labels()[i].
type SensorSeries struct {
	Instance string
	Sensor   string
	Group    AxisGroup
	Time     []float64
	Axes     [][]float64
}

func (s SensorSeries) Len() int {
	return len(s.Time)
}

func (s SensorSeries) Empty() bool {
	return len(s.Time) == 0
}

// Sample is one row of a sensors CSV file.
type Sample struct {
	Time   float64
	Values [MaxAxes]float64
}

// InventoryEntry says that Instance recorded Sensor within Group.
type InventoryEntry struct {
	Group    AxisGroup
	Sensor   string
	Instance string
}

// Inventory maps axis group to sensor name to the set of instances with data.
type Inventory map[AxisGroup]map[string]map[string]struct{}

func (inv Inventory) Add(group AxisGroup, sensor, instance string) {
	sensors, ok := inv[group]
	if !ok {
		sensors = make(map[string]map[string]struct{})
		inv[group] = sensors
	}
	instances, ok := sensors[sensor]
	if !ok {
		instances = make(map[string]struct{})
		sensors[sensor] = instances
	}
	instances[instance] = struct{}{}
}
