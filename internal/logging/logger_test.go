package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"sideseeing-report/internal/config"
)

func TestNew_prodWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(config.Config{AppEnv: "prod", LogLevel: slog.LevelInfo}, &buf, "1.2.3", "sideseeing-report")

	logger.Info("report written", "path", "out/report.html")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if rec["msg"] != "report written" {
		t.Errorf("msg = %v, want %q", rec["msg"], "report written")
	}
	if rec["app"] != "sideseeing-report" || rec["version"] != "1.2.3" || rec["env"] != "prod" {
		t.Errorf("attrs = %v", rec)
	}
	if rec["path"] != "out/report.html" {
		t.Errorf("path = %v", rec["path"])
	}
}

func TestNew_devUsesTint(t *testing.T) {
	var buf bytes.Buffer
	logger := New(config.Config{AppEnv: "dev", LogLevel: slog.LevelInfo}, &buf, "dev", "sideseeing-report")

	logger.Info("loading dataset")

	out := buf.String()
	if !strings.Contains(out, "loading dataset") {
		t.Errorf("output = %q, want message", out)
	}
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("dev output looks like JSON: %q", out)
	}
}

func TestNew_levelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := New(config.Config{AppEnv: "prod", LogLevel: slog.LevelWarn}, &buf, "1.0.0", "sideseeing-report")

	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %q", buf.String())
	}
}
