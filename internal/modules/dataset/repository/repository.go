package repository

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"math"

	"sideseeing-report/internal/modules/dataset/types"
)

//go:embed sql/reset.sql
var resetSQL string

//go:embed sql/insert-instance.sql
var insertInstanceSQL string

//go:embed sql/insert-sample.sql
var insertSampleSQL string

//go:embed sql/next-sample-seq.sql
var nextSampleSeqSQL string

//go:embed sql/get-instances.sql
var getInstancesSQL string

//go:embed sql/get-sensor-inventory.sql
var getSensorInventorySQL string

//go:embed sql/get-series.sql
var getSeriesSQL string

//go:embed sql/count-instances.sql
var countInstancesSQL string

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
	Prepare(query string) (*sql.Stmt, error)
}

type DatasetRepository interface {
	Reset() error
	InsertInstance(md types.Metadata) error
	InsertSeries(instance string, group types.AxisGroup, sensor string, samples []types.Sample) error
	GetInstances() ([]types.Metadata, error)
	GetSensorInventory() ([]types.InventoryEntry, error)
	GetSeries(instance string, group types.AxisGroup, sensor string) (types.SensorSeries, error)
	CountInstances() (int, error)
}

type repositoryImpl struct {
	db Querier
}

func NewRepository(db Querier) DatasetRepository {
	return &repositoryImpl{db: db}
}

// Reset empties the store so a run never sees rows from a previous ingest.
func (r *repositoryImpl) Reset() error {
	if _, err := r.db.Exec(resetSQL); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	return nil
}

func (r *repositoryImpl) InsertInstance(md types.Metadata) error {
	if md.Instance == "" {
		return fmt.Errorf("insert instance: empty name")
	}
	_, err := r.db.Exec(insertInstanceSQL,
		md.Instance, md.Model, md.Manufacturer, md.SOVersion, float64(md.MediaTotalTime))
	if err != nil {
		return fmt.Errorf("insert instance %q: %w", md.Instance, err)
	}
	return nil
}

// InsertSeries appends samples after any already stored for the same
// (instance, group, sensor), keeping their relative order.
func (r *repositoryImpl) InsertSeries(instance string, group types.AxisGroup, sensor string, samples []types.Sample) error {
	if !group.Valid() {
		return fmt.Errorf("insert series %s/%s: invalid axis group %d", instance, sensor, group)
	}
	if len(samples) == 0 {
		return nil
	}

	var seq int
	if err := r.db.QueryRow(nextSampleSeqSQL, instance, int(group), sensor).Scan(&seq); err != nil {
		return fmt.Errorf("next sequence %s/%s: %w", instance, sensor, err)
	}

	stmt, err := r.db.Prepare(insertSampleSQL)
	if err != nil {
		return fmt.Errorf("prepare insert sample: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			slog.Error("close insert sample statement", "error", err)
		}
	}()

	for i, s := range samples {
		v := s.Values
		if _, err := stmt.Exec(instance, int(group), sensor, seq+i, nullable(s.Time),
			nullable(v[0]), nullable(v[1]), nullable(v[2]), nullable(v[3]), nullable(v[4]), nullable(v[5])); err != nil {
			return fmt.Errorf("insert sample %s/%s #%d: %w", instance, sensor, seq+i, err)
		}
	}
	return nil
}

func (r *repositoryImpl) GetInstances() ([]types.Metadata, error) {
	rows, err := r.db.Query(getInstancesSQL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close instances rows", "error", err)
		}
	}()
	var out []types.Metadata
	for rows.Next() {
		var md types.Metadata
		var total float64
		if err := rows.Scan(&md.Instance, &md.Model, &md.Manufacturer, &md.SOVersion, &total); err != nil {
			return nil, err
		}
		md.MediaTotalTime = types.Seconds(total)
		out = append(out, md)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) GetSensorInventory() ([]types.InventoryEntry, error) {
	rows, err := r.db.Query(getSensorInventorySQL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close inventory rows", "error", err)
		}
	}()
	var out []types.InventoryEntry
	for rows.Next() {
		var e types.InventoryEntry
		var group int
		if err := rows.Scan(&group, &e.Sensor, &e.Instance); err != nil {
			return nil, err
		}
		e.Group = types.AxisGroup(group)
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetSeries returns an empty series, not an error, when nothing is stored.
func (r *repositoryImpl) GetSeries(instance string, group types.AxisGroup, sensor string) (types.SensorSeries, error) {
	series := types.SensorSeries{Instance: instance, Sensor: sensor, Group: group}
	if !group.Valid() {
		return series, fmt.Errorf("get series %s/%s: invalid axis group %d", instance, sensor, group)
	}
	n := len(group.Labels())
	series.Axes = make([][]float64, n)

	rows, err := r.db.Query(getSeriesSQL, instance, int(group), sensor)
	if err != nil {
		return series, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close series rows", "error", err)
		}
	}()
	for rows.Next() {
		var t sql.NullFloat64
		var v [types.MaxAxes]sql.NullFloat64
		if err := rows.Scan(&t, &v[0], &v[1], &v[2], &v[3], &v[4], &v[5]); err != nil {
			return series, err
		}
		series.Time = append(series.Time, fromNullable(t))
		for i := 0; i < n; i++ {
			series.Axes[i] = append(series.Axes[i], fromNullable(v[i]))
		}
	}
	return series, rows.Err()
}

// nullable stores a missing reading (NaN) as NULL. SQLite would do the same
// implicitly, so binding nil keeps the intent visible.
func nullable(f float64) any {
	if math.IsNaN(f) {
		return nil
	}
	return f
}

func fromNullable(f sql.NullFloat64) float64 {
	if !f.Valid {
		return math.NaN()
	}
	return f.Float64
}

func (r *repositoryImpl) CountInstances() (int, error) {
	var n int
	err := r.db.QueryRow(countInstancesSQL).Scan(&n)
	return n, err
}
