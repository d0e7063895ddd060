package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestInitWriterLevels(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, log.InfoLevel)
	defer func() { Logger = nil }()

	Debug("hidden")
	Info("fetched", "count", 10)
	Warn("slow")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug message should be filtered at info level")
	}
	if !strings.Contains(out, "fetched") || !strings.Contains(out, "count=10") {
		t.Errorf("expected info line with keyvals, got %q", out)
	}
	if !strings.Contains(out, "slow") {
		t.Error("expected warn line")
	}
}

func TestInitCreatesDatedFile(t *testing.T) {
	dir := t.TempDir()
	if err := Init(dir); err != nil {
		t.Fatalf("Init: %v", err)
	}
	Info("hello")
	Close()
	Logger = nil

	matches, _ := filepath.Glob(filepath.Join(dir, "newshub-*.log"))
	if len(matches) != 1 {
		t.Fatalf("expected one log file, got %v", matches)
	}
	data, _ := os.ReadFile(matches[0])
	if !strings.Contains(string(data), "hello") {
		t.Errorf("expected message in file, got %q", data)
	}
}

func TestWithPrefixBeforeInit(t *testing.T) {
	Logger = nil
	if WithPrefix("feed") == nil {
		t.Fatal("expected a usable logger before Init")
	}
	Error("no-op before init")
}
