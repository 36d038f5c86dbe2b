// Package dataset reads a recorded sensor dataset directory into the
// scratch store and exposes it read-only through a Handle.
package dataset

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"sideseeing-report/internal/errs"
	"sideseeing-report/internal/modules/dataset/repository"
	"sideseeing-report/internal/modules/dataset/types"
)

const (
	metadataFile = "metadata.json"
	sensorColumn = "sensor_name"
	timeColumn   = "Time (s)"
)

type Loader struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewLoader returns a Loader that ingests into db. The schema must already
// be migrated.
func NewLoader(db *sql.DB, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{db: db, logger: logger.With("component", "dataset")}
}

// instanceData is one instance directory parsed in memory before ingest.
type instanceData struct {
	dir    string
	meta   types.Metadata
	series []parsedSeries
}

// parsedSeries keeps the file it came from so store failures can name it.
type parsedSeries struct {
	path    string
	group   types.AxisGroup
	sensor  string
	samples []types.Sample
}

// Load replaces the store contents with the dataset under root and returns
// a Handle over it. Failures are ErrInvalidInputPath or ErrDatasetLoad.
func (l *Loader) Load(ctx context.Context, root string) (*Handle, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errs.ErrInvalidInputPath, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", errs.ErrInvalidInputPath, root)
	}

	instances, err := l.scan(ctx, root)
	if err != nil {
		return nil, err
	}

	if err := l.ingest(root, instances); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDatasetLoad, err)
	}

	h, err := Open(repository.NewRepository(l.db))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errs.ErrDatasetLoad, root, err)
	}
	l.logger.Debug("dataset loaded", "root", root, "instances", h.Size())
	return h, nil
}

func (l *Loader) scan(ctx context.Context, root string) ([]instanceData, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errs.ErrInvalidInputPath, root, err)
	}

	var out []instanceData
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		inst, ok, err := readInstance(filepath.Join(root, e.Name()), e.Name())
		if err != nil {
			return nil, err
		}
		if !ok {
			l.logger.Debug("skipping directory without dataset files", "dir", e.Name())
			continue
		}
		out = append(out, inst)
	}
	return out, nil
}

// ingest writes every instance in one transaction. Errors name the file
// whose rows failed, or root for store-wide failures.
func (l *Loader) ingest(root string, instances []instanceData) error {
	tx, err := l.db.Begin()
	if err != nil {
		return fmt.Errorf("%s: begin ingest: %w", root, err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			l.logger.Error("rollback ingest", "error", err)
		}
	}()

	repo := repository.NewRepository(tx)
	if err := repo.Reset(); err != nil {
		return fmt.Errorf("%s: reset store: %w", root, err)
	}
	for _, inst := range instances {
		if err := repo.InsertInstance(inst.meta); err != nil {
			return fmt.Errorf("%s: %w", filepath.Join(inst.dir, metadataFile), err)
		}
		for _, s := range inst.series {
			if err := repo.InsertSeries(inst.meta.Instance, s.group, s.sensor, s.samples); err != nil {
				return fmt.Errorf("%s: %w", s.path, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit ingest: %w", root, err)
	}
	return nil
}

// readInstance reports ok=false for a directory holding no dataset files.
func readInstance(dir, name string) (instanceData, bool, error) {
	inst := instanceData{dir: dir, meta: types.Metadata{Instance: name}}
	found := false

	md, err := readMetadata(filepath.Join(dir, metadataFile))
	switch {
	case err == nil:
		md.Instance = name
		inst.meta = md
		found = true
	case errors.Is(err, fs.ErrNotExist):
	default:
		return inst, false, err
	}

	for _, group := range types.AxisGroups {
		path := filepath.Join(dir, group.FileName())
		series, err := readSensorFile(path, group)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return inst, false, err
		}
		found = true
		for i := range series {
			series[i].path = path
		}
		inst.series = append(inst.series, series...)
	}
	return inst, found, nil
}

func readMetadata(path string) (types.Metadata, error) {
	var md types.Metadata
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return md, err
		}
		return md, fmt.Errorf("%w: %s: %v", errs.ErrDatasetLoad, path, err)
	}
	if err := json.Unmarshal(b, &md); err != nil {
		return md, fmt.Errorf("%w: %s: %v", errs.ErrDatasetLoad, path, err)
	}
	return md, nil
}

// readSensorFile parses one sensors CSV into per-sensor series, in the order
// sensors first appear in the file.
func readSensorFile(path string, group types.AxisGroup) ([]parsedSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", errs.ErrDatasetLoad, path, err)
	}
	defer f.Close()

	series, err := parseSensorCSV(f, group)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errs.ErrDatasetLoad, path, err)
	}
	return series, nil
}

func parseSensorCSV(r io.Reader, group types.AxisGroup) ([]parsedSeries, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	cols, err := columnIndexes(header, group)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	var out []parsedSeries
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		sensor := strings.TrimSpace(rec[cols.sensor])
		if sensor == "" {
			return nil, fmt.Errorf("line %d: empty %s", line, sensorColumn)
		}
		var s types.Sample
		if s.Time, err = parseValue(rec[cols.time], line, timeColumn); err != nil {
			return nil, err
		}
		for i, c := range cols.axes {
			if s.Values[i], err = parseValue(rec[c], line, group.Labels()[i]); err != nil {
				return nil, err
			}
		}

		i, ok := index[sensor]
		if !ok {
			i = len(out)
			index[sensor] = i
			out = append(out, parsedSeries{group: group, sensor: sensor})
		}
		out[i].samples = append(out[i].samples, s)
	}
	return out, nil
}

type columns struct {
	sensor int
	time   int
	axes   []int
}

func columnIndexes(header []string, group types.AxisGroup) (columns, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	find := func(name string) (int, error) {
		i, ok := pos[strings.ToLower(name)]
		if !ok {
			return 0, fmt.Errorf("missing column %q", name)
		}
		return i, nil
	}

	var c columns
	var err error
	if c.sensor, err = find(sensorColumn); err != nil {
		return c, err
	}
	if c.time, err = find(timeColumn); err != nil {
		return c, err
	}
	for _, label := range group.Labels() {
		i, err := find(label)
		if err != nil {
			return c, err
		}
		c.axes = append(c.axes, i)
	}
	return c, nil
}

func parseValue(s string, line int, column string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: column %q: %q is not a number", line, column, s)
	}
	return v, nil
}
