package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sandeepkv93/agroplan/internal/config"
)

func TestNewWritesJSONOutsideLocal(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.RuntimeConfig{Env: config.EnvProd, LogLevel: "info"}, &buf)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Debug().Msg("hidden")
	logger.Info().Str("plot_id", "p-1").Msg("saved")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected debug to be filtered, got %q", buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("expected json line: %v", err)
	}
	if entry["plot_id"] != "p-1" || entry["message"] != "saved" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Fatalf("expected timestamp field: %v", entry)
	}
}

func TestNewConsoleForLocal(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.RuntimeConfig{Env: config.EnvLocal, LogLevel: "debug"}, &buf)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Debug().Msg("hello")
	if strings.HasPrefix(buf.String(), "{") || !strings.Contains(buf.String(), "hello") {
		t.Fatalf("expected console output, got %q", buf.String())
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(config.RuntimeConfig{Env: config.EnvProd, LogLevel: "loud"}, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestOpenFileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agroplan.log")
	logger, closer, err := OpenFile(config.RuntimeConfig{Env: config.EnvProd, LogLevel: "info"}, path)
	if err != nil {
		t.Fatalf("open file: %v", err)
	}
	logger.Info().Msg("first")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(raw), "first") {
		t.Fatalf("log file missing entry: %q", raw)
	}
}
