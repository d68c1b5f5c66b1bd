package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		level    LogLevel
		expected string
	}{
		{"debug level", LevelDebug, "debug"},
		{"info level", LevelInfo, "info"},
		{"warn level", LevelWarn, "warn"},
		{"error level", LevelError, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if string(tt.level) != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, string(tt.level))
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != LevelInfo {
		t.Errorf("Expected default level %s, got %s", LevelInfo, cfg.Level)
	}
	if cfg.Format != FormatText {
		t.Errorf("Expected default format %s, got %s", FormatText, cfg.Format)
	}
	if cfg.Output != "stderr" {
		t.Errorf("Expected default output 'stderr', got '%s'", cfg.Output)
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("stderr text logger", func(t *testing.T) {
		logger, err := New(Config{Level: LevelInfo, Format: FormatText, Output: "stderr"})
		if err != nil {
			t.Fatalf("Failed to create logger: %v", err)
		}
		if logger.config.Level != LevelInfo {
			t.Errorf("Expected level %s, got %s", LevelInfo, logger.config.Level)
		}
	})

	t.Run("file logger creates directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "hostsweep.log")
		logger, err := New(Config{Level: LevelInfo, Format: FormatJSON, Output: path})
		if err != nil {
			t.Fatalf("Failed to create file logger: %v", err)
		}
		logger.Info("written to file")

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("Failed to read log file: %v", err)
		}
		if !strings.Contains(string(data), "written to file") {
			t.Errorf("Expected log line in file, got %q", string(data))
		}
	})
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(Config{Level: LevelWarn, Format: FormatText}, &buf)

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Info message should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("Warn message should be logged: %q", out)
	}
}

func TestDomainHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(Config{Level: LevelDebug, Format: FormatJSON}, &buf).
		WithSession("abc-123").
		WithComponent("discovery")

	logger.ErrorDiscovery("probe failed", "10.0.0.0/30", errors.New("boom"), "address", "10.0.0.2")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON log line, got %q: %v", buf.String(), err)
	}

	expected := map[string]string{
		"session_id": "abc-123",
		"component":  "discovery",
		"network":    "10.0.0.0/30",
		"error":      "boom",
		"address":    "10.0.0.2",
		"msg":        "probe failed",
	}
	for key, want := range expected {
		if got, _ := entry[key].(string); got != want {
			t.Errorf("Expected %s=%q, got %v", key, want, entry[key])
		}
	}
}

func TestDefaultLogger(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	var buf bytes.Buffer
	SetDefault(NewWithWriter(Config{Level: LevelDebug}, &buf))

	Default().Debug("debug message", "k", "v")
	Default().Warn("warn message")

	out := buf.String()
	if !strings.Contains(out, "debug message") || !strings.Contains(out, "warn message") {
		t.Errorf("Expected both messages in output, got %q", out)
	}
}
