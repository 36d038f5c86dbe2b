package app

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sideseeing-report/internal/config"
	"sideseeing-report/internal/errs"
	"sideseeing-report/internal/modules/report"
	"sideseeing-report/internal/utils"
)

const (
	datasetFixture  = "../modules/dataset/testdata/sample"
	notebookFixture = "../modules/notebook/testdata/analysis.ipynb"
)

func testConfig() config.Config {
	return config.Config{AppEnv: "dev", SQLitePath: ":memory:", MQTTPort: 1883, MQTTTopic: "sideseeing/reports"}
}

func readOutput(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	return string(b)
}

func TestRun_staticDataset(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "report.html")

	res, err := Run(context.Background(), testConfig(), Options{
		InputPath:  datasetFixture,
		OutputPath: out,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Path != out || res.Size == 0 {
		t.Errorf("result = %+v", res)
	}

	body := readOutput(t, out)
	title, ok, err := utils.FirstElementText(strings.NewReader(body), "h1")
	if err != nil || !ok {
		t.Fatalf("h1 not found: ok=%v err=%v", ok, err)
	}
	if title != "Report of 'sample'" {
		t.Errorf("title = %q", title)
	}
	for _, want := range []string{"Sensor: accelerometer", "Sensor: magnetometer_uncalibrated", "data:image/png;base64,", "Duration per instance"} {
		if !strings.Contains(body, want) {
			t.Errorf("report missing %q", want)
		}
	}
	if strings.Contains(body, "echarts") {
		t.Error("static report loads the chart script")
	}
}

func TestRun_interactiveDataset(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report.html")

	if _, err := Run(context.Background(), testConfig(), Options{
		InputPath:  datasetFixture,
		OutputPath: out,
		Mode:       report.ModeInteractive,
	}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	body := readOutput(t, out)
	for _, want := range []string{"echarts.init", "accelerometer / walk-01", "accelerometer / walk-02"} {
		if !strings.Contains(body, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestRun_notebook(t *testing.T) {
	out := filepath.Join(t.TempDir(), "notebook.html")

	if _, err := Run(context.Background(), testConfig(), Options{
		InputPath:  notebookFixture,
		OutputPath: out,
		Mode:       report.ModeNotebook,
	}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	title, ok, err := utils.FirstElementText(strings.NewReader(readOutput(t, out)), "title")
	if err != nil || !ok {
		t.Fatalf("title not found: ok=%v err=%v", ok, err)
	}
	if title != "Sidewalk accelerometer study" {
		t.Errorf("title = %q", title)
	}
}

func TestRun_templateCheckedBeforeInput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "report.html")

	_, err := Run(context.Background(), testConfig(), Options{
		InputPath:    filepath.Join(dir, "does-not-exist"),
		OutputPath:   out,
		TemplatePath: filepath.Join(dir, "missing.html"),
	})
	if !errors.Is(err, errs.ErrTemplateNotFound) {
		t.Fatalf("err = %v; want ErrTemplateNotFound", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Errorf("output created on failure: %v", statErr)
	}
}

func TestRun_failureKinds(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	tests := []struct {
		name string
		opts Options
		want error
	}{
		{
			name: "missing dataset",
			opts: Options{InputPath: filepath.Join(dir, "absent"), OutputPath: filepath.Join(dir, "a.html")},
			want: errs.ErrInvalidInputPath,
		},
		{
			name: "missing notebook",
			opts: Options{InputPath: filepath.Join(dir, "absent.ipynb"), OutputPath: filepath.Join(dir, "b.html"), Mode: report.ModeNotebook},
			want: errs.ErrInvalidInputPath,
		},
		{
			name: "output under a file",
			opts: Options{InputPath: datasetFixture, OutputPath: filepath.Join(blocker, "report.html")},
			want: errs.ErrOutputNotWritable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(context.Background(), testConfig(), tt.opts)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v; want %v", err, tt.want)
			}
		})
	}
}

func TestRun_brokerDownDoesNotFail(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()

	cfg := testConfig()
	cfg.MQTTBroker = "127.0.0.1"
	cfg.MQTTPort = port
	cfg.MQTTClientID = "run-test"

	out := filepath.Join(t.TempDir(), "report.html")
	if _, err := Run(context.Background(), cfg, Options{InputPath: datasetFixture, OutputPath: out}); err != nil {
		t.Fatalf("Run with unreachable broker: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("report not written: %v", err)
	}
}

func TestPreview_missingReport(t *testing.T) {
	err := Preview(context.Background(), testConfig(), filepath.Join(t.TempDir(), "absent.html"))
	if !errors.Is(err, errs.ErrInvalidInputPath) {
		t.Fatalf("err = %v; want ErrInvalidInputPath", err)
	}
}

func TestPreview_shutsDownOnCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.html")
	if err := os.WriteFile(path, []byte("<html></html>"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg := testConfig()
	cfg.HTTPAddr = "127.0.0.1:0"

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := Preview(ctx, cfg, path); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v; want DeadlineExceeded", err)
	}
}
