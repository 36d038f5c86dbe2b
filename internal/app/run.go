package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sideseeing-report/internal/config"
	"sideseeing-report/internal/db"
	"sideseeing-report/internal/errs"
	"sideseeing-report/internal/migrate"
	"sideseeing-report/internal/modules/dataset"
	"sideseeing-report/internal/modules/notebook"
	"sideseeing-report/internal/modules/report"
	"sideseeing-report/internal/modules/report/views"
	"sideseeing-report/internal/mqtt"

	"github.com/google/uuid"
)

// Options are the per-run parameters taken from the command line.
type Options struct {
	InputPath    string
	OutputPath   string
	TemplatePath string
	Mode         report.Mode
}

// Run produces one report. The template is resolved before the input is
// touched so a bad --template fails fast.
func Run(ctx context.Context, cfg config.Config, opts Options) (report.Result, error) {
	runID := uuid.NewString()
	logger := slog.Default().With("run_id", runID)

	mode := opts.Mode
	if mode == "" {
		mode = report.ModeStatic
	}
	layout := views.LayoutDataset
	if mode == report.ModeNotebook {
		layout = views.LayoutNotebook
	}

	assembler := report.NewAssembler(views.NewCache(), logger)
	if err := assembler.Validate(layout, opts.TemplatePath); err != nil {
		return report.Result{}, err
	}

	var (
		doc report.Document
		err error
	)
	if mode == report.ModeNotebook {
		doc, err = notebookDocument(opts, logger)
	} else {
		doc, err = datasetDocument(ctx, cfg, opts, mode, logger)
	}
	if err != nil {
		return report.Result{}, err
	}

	logger.Info("writing report", "path", opts.OutputPath)
	res, err := assembler.Write(doc, opts.OutputPath, opts.TemplatePath)
	if err != nil {
		return report.Result{}, err
	}

	sections := doc.Sections.Count()
	if mode == report.ModeNotebook {
		sections = len(doc.Components)
	}
	if cfg.NotifyEnabled() {
		notify(ctx, cfg, logger, mqtt.CompletionEvent{
			RunID:       runID,
			Title:       doc.Title,
			Mode:        string(mode),
			OutputPath:  res.Path,
			Sections:    sections,
			GeneratedAt: res.GeneratedAt,
		})
	}

	return res, nil
}

func datasetDocument(ctx context.Context, cfg config.Config, opts Options, mode report.Mode, logger *slog.Logger) (report.Document, error) {
	renderer, err := report.NewRenderer(mode, logger)
	if err != nil {
		return report.Document{}, err
	}

	store, err := db.Open(cfg, logger)
	if err != nil {
		return report.Document{}, fmt.Errorf("%w: open store: %v", errs.ErrDatasetLoad, err)
	}
	defer func() {
		if closeErr := db.Close(store); closeErr != nil {
			logger.Error("db close", "error", closeErr)
		}
	}()
	if _, err := migrate.Run(store, logger); err != nil {
		return report.Document{}, fmt.Errorf("%w: migrate store: %v", errs.ErrDatasetLoad, err)
	}

	logger.Info("loading dataset", "path", opts.InputPath)
	ds, err := dataset.NewLoader(store, logger).Load(ctx, opts.InputPath)
	if err != nil {
		return report.Document{}, err
	}

	logger.Info("summarizing dataset", "instances", ds.Size())
	summary := report.BuildSummary(ds)

	logger.Info("rendering sections", "mode", mode)
	overview, err := report.RenderOverview(ds)
	if err != nil {
		return report.Document{}, err
	}
	sensorSections, err := renderer.Render(ds)
	if err != nil {
		return report.Document{}, err
	}

	overviewGroup := report.SectionGroup{Key: "overview", Title: "Overview"}
	if overview != nil {
		overviewGroup.Sections = []report.Section{*overview}
	}
	return report.Document{
		Layout:  views.LayoutDataset,
		Title:   report.DatasetTitle(opts.InputPath),
		Summary: summary,
		Sections: report.NewSections(
			overviewGroup,
			report.SectionGroup{Key: "sensor", Title: "Sensors", Sections: sensorSections},
		),
	}, nil
}

func notebookDocument(opts Options, logger *slog.Logger) (report.Document, error) {
	logger.Info("converting notebook", "path", opts.InputPath)
	title, components, err := notebook.NewConverter(logger).ConvertFile(opts.InputPath)
	if err != nil {
		return report.Document{}, err
	}
	return report.Document{
		Layout:     views.LayoutNotebook,
		Title:      title,
		Components: components,
	}, nil
}

// notify publishes the completion event. A broker problem never fails the run.
func notify(ctx context.Context, cfg config.Config, logger *slog.Logger, ev mqtt.CompletionEvent) {
	publisher := mqtt.NewPublisher(cfg, logger)
	defer publisher.Disconnect()

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	err := publisher.Connect(connectCtx)
	cancel()
	if err != nil {
		logger.Warn("mqtt connection failed (report written, event skipped)", "error", err)
		return
	}
	if err := publisher.Publish(ev); err != nil {
		logger.Warn("completion event not published", "error", err)
		return
	}
	logger.Info("completion event published", "topic", cfg.MQTTTopic)
}
