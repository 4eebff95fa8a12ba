package log

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "debug", Format: "console", Writer: &buf})

	WithComponent("trace").Debug("traced mask", slog.Int("paths", 3), slog.String("note", "two words"))

	line := buf.String()
	for _, want := range []string{" DBG traced mask", "app=sketch-mcp", "component=trace", "paths=3", `note="two words"`} {
		if !strings.Contains(line, want) {
			t.Errorf("console line %q missing %q", line, want)
		}
	}
	if !strings.HasSuffix(line, "\n") {
		t.Error("console line should end with a newline")
	}
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "warn", Writer: &buf})

	L().Info("hidden")
	L().Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record written at warn level: %q", out)
	}
	if !strings.Contains(out, "WRN shown") {
		t.Errorf("warn record missing: %q", out)
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "info", Format: "json", Writer: &buf})

	WithComponent("pipeline").Info("processed", slog.Int("width", 640))

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("unmarshal json log %q: %v", buf.String(), err)
	}
	if m["msg"] != "processed" || m["component"] != "pipeline" || m["app"] != "sketch-mcp" {
		t.Errorf("unexpected record: %v", m)
	}
	if m["width"] != float64(640) {
		t.Errorf("width: got %v, want 640", m["width"])
	}
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sketch.log")
	var console bytes.Buffer
	Init(Options{Level: "debug", Writer: &console, File: path})

	L().Info("to both", slog.String("k", "v"))

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var last string
	scanner := bufio.NewScanner(bytes.NewReader(b))
	for scanner.Scan() {
		if s := strings.TrimSpace(scanner.Text()); s != "" {
			last = s
		}
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("unmarshal file log %q: %v", last, err)
	}
	if m["msg"] != "to both" || m["k"] != "v" {
		t.Errorf("unexpected file record: %v", m)
	}
	if !strings.Contains(console.String(), "to both") {
		t.Error("console output missing record")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" DEBUG ", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("SKETCH_MCP_LOG_LEVEL", "debug")
	t.Setenv("SKETCH_MCP_LOG_FORMAT", "json")
	t.Setenv("SKETCH_MCP_LOG_SOURCE", "TRUE")
	t.Setenv("SKETCH_MCP_LOG_FILE", "/tmp/x.log")

	opts := FromEnv()
	if opts.Level != "debug" || opts.Format != "json" || !opts.AddSource || opts.File != "/tmp/x.log" {
		t.Errorf("FromEnv: got %+v", opts)
	}
}
