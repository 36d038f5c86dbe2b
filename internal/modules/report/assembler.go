package report

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"sideseeing-report/internal/errs"
	"sideseeing-report/internal/modules/report/views"
)

// TimestampLayout is DD/MM/YYYY HH:MM:SS.
const TimestampLayout = "02/01/2006 15:04:05"

// Document is everything a report needs besides its template and timestamp.
// Dataset layouts use Summary and Sections; notebook layouts use Components.
type Document struct {
	Layout     views.Layout
	Title      string
	Summary    Summary
	Sections   Sections
	Components []Component
}

// DatasetTitle is the report title for a dataset directory.
func DatasetTitle(dir string) string {
	return fmt.Sprintf("Report of '%s'", filepath.Base(filepath.Clean(dir)))
}

// Result describes a written report.
type Result struct {
	Path        string
	GeneratedAt time.Time
	Size        int
}

type Assembler struct {
	cache  *views.Cache
	now    func() time.Time
	logger *slog.Logger
}

func NewAssembler(cache *views.Cache, logger *slog.Logger) *Assembler {
	if cache == nil {
		cache = views.NewCache()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{cache: cache, now: time.Now, logger: logger.With("component", "assembler")}
}

// Validate loads the template for layout so a missing or broken override
// fails before any input is read.
func (a *Assembler) Validate(layout views.Layout, templatePath string) error {
	_, err := a.cache.Get(layout, templatePath)
	return err
}

// Write renders doc and writes it to dest, creating parent directories.
// An existing file is overwritten in place; the write is not atomic.
func (a *Assembler) Write(doc Document, dest, templatePath string) (Result, error) {
	tmpl, err := a.cache.Get(doc.Layout, templatePath)
	if err != nil {
		return Result{}, err
	}

	generatedAt := a.now()
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, doc.context(generatedAt)); err != nil {
		return Result{}, fmt.Errorf("%w: execute template: %v", errs.ErrRender, err)
	}

	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Result{}, fmt.Errorf("%w: %s: %v", errs.ErrOutputNotWritable, dir, err)
		}
	}
	if err := os.WriteFile(dest, buf.Bytes(), 0o644); err != nil {
		return Result{}, fmt.Errorf("%w: %s: %v", errs.ErrOutputNotWritable, dest, err)
	}

	a.logger.Debug("report written", "path", dest, "bytes", buf.Len(), "template", tmpl.Path, "cached_templates", a.cache.Len())
	return Result{Path: dest, GeneratedAt: generatedAt, Size: buf.Len()}, nil
}

func (d Document) context(generatedAt time.Time) map[string]any {
	ctx := map[string]any{
		"title":        d.Title,
		"generated_at": generatedAt.Format(TimestampLayout),
	}
	if d.Layout == views.LayoutNotebook {
		ctx["components"] = d.Components
		return ctx
	}
	ctx["summary"] = d.Summary.Map()
	ctx["sections"] = d.Sections
	return ctx
}
