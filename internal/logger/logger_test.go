package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// setupTestLogger points the logger at a temp file and returns its path.
func setupTestLogger(t *testing.T) string {
	t.Helper()
	Reset()
	t.Cleanup(Reset)

	logPath := filepath.Join(t.TempDir(), "test-debug.log")
	if err := Init(logPath); err != nil {
		t.Fatalf("Failed to init logger: %v", err)
	}
	return logPath
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	return string(content)
}

func TestInit_WritesHeader(t *testing.T) {
	logPath := setupTestLogger(t)

	if !strings.Contains(readLog(t, logPath), "logger initialized") {
		t.Error("log file should contain the initialization line")
	}
	if Path() != logPath {
		t.Errorf("Path() = %q, want %q", Path(), logPath)
	}
}

func TestInit_BadPath(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	err := Init(filepath.Join(t.TempDir(), "missing", "dir", "x.log"))
	if err == nil {
		t.Fatal("expected error for unopenable path")
	}
}

func TestWithComponent(t *testing.T) {
	logPath := setupTestLogger(t)

	WithComponent("dispatch").Info("request sent", "status", 200)

	content := readLog(t, logPath)
	if !strings.Contains(content, "component=dispatch") {
		t.Errorf("expected component attribute, got:\n%s", content)
	}
	if !strings.Contains(content, "status=200") {
		t.Errorf("expected status attribute, got:\n%s", content)
	}
}

func TestWithSession(t *testing.T) {
	logPath := setupTestLogger(t)

	WithSession(1700000000000).Warn("append dropped")

	if !strings.Contains(readLog(t, logPath), "sessionID=1700000000000") {
		t.Error("expected sessionID attribute")
	}
}

func TestSetDebug(t *testing.T) {
	logPath := setupTestLogger(t)

	WithComponent("test").Debug("hidden-debug-line")
	if strings.Contains(readLog(t, logPath), "hidden-debug-line") {
		t.Error("debug line should not be written at info level")
	}
	if Enabled(slog.LevelDebug) {
		t.Error("debug should be disabled by default")
	}

	SetDebug(true)
	WithComponent("test").Debug("visible-debug-line")
	if !strings.Contains(readLog(t, logPath), "visible-debug-line") {
		t.Error("debug line should be written after SetDebug(true)")
	}
}

func TestReset_AllowsReinit(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "log1.log")
	second := filepath.Join(dir, "log2.log")

	Reset()
	t.Cleanup(Reset)
	if err := Init(first); err != nil {
		t.Fatal(err)
	}
	WithComponent("test").Info("message to log1")

	Reset()
	if err := Init(second); err != nil {
		t.Fatal(err)
	}
	WithComponent("test").Info("message to log2")

	if c := readLog(t, first); strings.Contains(c, "message to log2") {
		t.Error("log1 should not contain the second message")
	}
	if c := readLog(t, second); !strings.Contains(c, "message to log2") {
		t.Error("log2 should contain the second message")
	}
}

func TestClose_ThenLogDoesNotPanic(t *testing.T) {
	setupTestLogger(t)
	Close()

	// After Close the root logger falls back to slog.Default.
	WithComponent("test").Info("after close")
}

func TestConcurrentLogging(t *testing.T) {
	setupTestLogger(t)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := range 50 {
				WithComponent("test").Info("concurrent", "worker", n, "iter", j)
			}
		}(i)
	}
	wg.Wait()
}
