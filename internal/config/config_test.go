package config

import (
	"log/slog"
	"testing"
)

var allVars = []string{
	"APP_ENV", "LOG_LEVEL", "SQLITE_PATH", "SQL_DEBUG", "HTTP_ADDR",
	"MQTT_BROKER", "MQTT_PORT", "MQTT_CLIENT_ID", "MQTT_TOPIC",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allVars {
		t.Setenv(k, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	got, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v, want nil", err)
	}

	if got.AppEnv != "dev" {
		t.Errorf("AppEnv = %q, want %q", got.AppEnv, "dev")
	}
	if got.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want %v", got.LogLevel, slog.LevelInfo)
	}
	if got.SQLitePath != ":memory:" {
		t.Errorf("SQLitePath = %q, want %q", got.SQLitePath, ":memory:")
	}
	if got.SQLDebug {
		t.Error("SQLDebug = true, want false")
	}
	if got.HTTPAddr != "127.0.0.1:8080" {
		t.Errorf("HTTPAddr = %q, want %q", got.HTTPAddr, "127.0.0.1:8080")
	}
	if got.MQTTPort != 1883 {
		t.Errorf("MQTTPort = %d, want 1883", got.MQTTPort)
	}
	if got.MQTTClientID != "sideseeing-report" {
		t.Errorf("MQTTClientID = %q, want %q", got.MQTTClientID, "sideseeing-report")
	}
	if got.MQTTTopic != "sideseeing/reports" {
		t.Errorf("MQTTTopic = %q, want %q", got.MQTTTopic, "sideseeing/reports")
	}
	if got.NotifyEnabled() {
		t.Error("NotifyEnabled() = true with no broker, want false")
	}
}

func TestLoadFromEnv_AppEnv(t *testing.T) {
	tests := []struct {
		name    string
		appEnv  string
		want    string
		wantErr bool
	}{
		{name: "dev", appEnv: "dev", want: "dev"},
		{name: "prod with whitespace", appEnv: "\nprod\t", want: "prod"},
		{name: "staging", appEnv: "staging", wantErr: true},
		{name: "uppercase is not folded", appEnv: "DEV", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("APP_ENV", tt.appEnv)

			got, err := LoadFromEnv()
			if tt.wantErr {
				if err == nil {
					t.Fatal("LoadFromEnv() error = nil, want non-nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadFromEnv() error = %v, want nil", err)
			}
			if got.AppEnv != tt.want {
				t.Errorf("AppEnv = %q, want %q", got.AppEnv, tt.want)
			}
		})
	}
}

func TestLoadFromEnv_LogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warning", want: slog.LevelWarn},
		{in: " error ", want: slog.LevelError},
		{in: "trace", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("LOG_LEVEL", tt.in)

			got, err := LoadFromEnv()
			if tt.wantErr {
				if err == nil {
					t.Fatal("LoadFromEnv() error = nil, want non-nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadFromEnv() error = %v", err)
			}
			if got.LogLevel != tt.want {
				t.Errorf("LogLevel = %v, want %v", got.LogLevel, tt.want)
			}
		})
	}
}

func TestLoadFromEnv_SQLDebug(t *testing.T) {
	clearEnv(t)
	t.Setenv("SQL_DEBUG", "true")
	got, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if !got.SQLDebug {
		t.Error("SQLDebug = false, want true")
	}

	t.Setenv("SQL_DEBUG", "maybe")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("LoadFromEnv() with SQL_DEBUG=maybe error = nil, want non-nil")
	}
}

func TestLoadFromEnv_MQTT(t *testing.T) {
	t.Run("broker enables notify", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("MQTT_BROKER", "broker.local")
		t.Setenv("MQTT_PORT", "1884")
		t.Setenv("MQTT_TOPIC", "lab/reports")

		got, err := LoadFromEnv()
		if err != nil {
			t.Fatalf("LoadFromEnv() error = %v", err)
		}
		if !got.NotifyEnabled() {
			t.Error("NotifyEnabled() = false, want true")
		}
		if got.MQTTBroker != "broker.local" || got.MQTTPort != 1884 || got.MQTTTopic != "lab/reports" {
			t.Errorf("mqtt = %q:%d %q", got.MQTTBroker, got.MQTTPort, got.MQTTTopic)
		}
	})

	for _, port := range []string{"abc", "0", "70000"} {
		t.Run("invalid port "+port, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("MQTT_PORT", port)
			if _, err := LoadFromEnv(); err == nil {
				t.Fatalf("LoadFromEnv() with MQTT_PORT=%q error = nil, want non-nil", port)
			}
		})
	}
}
