package logging_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"landscaper/internal/config"
	"landscaper/internal/logging"
	"landscaper/internal/services"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(content)
}

func TestNewFromConfigWritesJSONRunLog(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")

	logger, logPath, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	if logPath != filepath.Join(cfg.Paths.LogDir, logging.LogFileName) {
		t.Fatalf("unexpected log path %q", logPath)
	}
	logger.Info("run started", logging.String("root", "/photos"))

	line := strings.TrimSpace(readLog(t, logPath))
	var payload map[string]any
	if err := json.Unmarshal([]byte(line), &payload); err != nil {
		t.Fatalf("decode json line %q: %v", line, err)
	}
	if payload["msg"] != "run started" || payload["level"] != "info" || payload["root"] != "/photos" {
		t.Fatalf("unexpected payload %#v", payload)
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key in %#v", payload)
	}
}

func TestNewFromConfigWithoutLogDir(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = ""

	logger, logPath, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	if logger == nil || logPath != "" {
		t.Fatalf("expected console-only logger, got path %q", logPath)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")

	if content := readLog(t, logPath); strings.Contains(content, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Debug("message with caller", logging.String("command", "magick identify a.jpg"))

	content := readLog(t, logPath)
	if !strings.Contains(content, "logger_test.go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
	if !strings.Contains(content, "    command: ") {
		t.Fatalf("expected raw debug attributes, got %q", content)
	}
}

func TestConsoleFormatsComponentSubjectAndFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	base, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithRunID(context.Background(), "run-1")
	ctx = services.WithDirectory(ctx, "/photos/2020/summer")
	logger := logging.WithContext(ctx, logging.NewComponentLogger(base, "walker"))
	logger.Info("montage composed",
		logging.String("output", "a_b_montage.png"),
		logging.Bool("dry_run", false),
	)

	content := readLog(t, logPath)
	for _, want := range []string{
		" INFO [walker] 2020/summer – montage composed\n",
		"    - Output: a_b_montage.png\n",
		"    - Dry Run: no\n",
		"    + 1 more field hidden\n",
	} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %q in console output, got %q", want, content)
		}
	}
	if strings.Contains(content, "run-1") {
		t.Fatalf("run id should be hidden at info level, got %q", content)
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.WarnWithContext(logger, "delete failed", "disposition_failed",
		logging.Error(errors.New("permission denied")),
		logging.String(logging.FieldErrorHint, "check file permissions"),
	)

	var payload map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(readLog(t, logPath))), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload[logging.FieldEventType] != "disposition_failed" {
		t.Fatalf("event type missing: %#v", payload)
	}
	if payload[logging.FieldErrorHint] != "check file permissions" {
		t.Fatalf("explicit hint overwritten: %#v", payload)
	}
	if payload[logging.FieldImpact] == nil {
		t.Fatalf("impact default missing: %#v", payload)
	}
	if payload["error"] != "permission denied" {
		t.Fatalf("error not rendered as string: %#v", payload)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 12) {
		t.Fatal("nop logger should never be enabled")
	}
	logging.WarnWithContext(nil, "ignored", "none")
	logging.ErrorWithContext(nil, "ignored", "none")
}

func TestPairAttrsUseBaseNames(t *testing.T) {
	attrs := append(logging.Pair("/photos/2020/a.jpg", "/photos/2020/b.jpg"),
		logging.Image(logging.FieldOutput, "/photos/2020/a_montage.png"))
	got := make(map[string]string, len(attrs))
	for _, a := range attrs {
		got[a.Key] = a.Value.String()
	}
	want := map[string]string{
		logging.FieldFirst:  "a.jpg",
		logging.FieldSecond: "b.jpg",
		logging.FieldOutput: "a_montage.png",
	}
	if len(got) != len(want) {
		t.Fatalf("attrs = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("attrs = %v, want %v", got, want)
		}
	}
	if logging.Image("file", "").Value.String() != "" {
		t.Fatal("empty path should stay empty")
	}
}
