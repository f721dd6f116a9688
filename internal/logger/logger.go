// Package logger writes chatbox diagnostics to a log file through log/slog.
//
// The TUI owns the terminal, so nothing is ever logged to stdout or stderr
// once the program is running. Callers obtain a scoped *slog.Logger via
// WithComponent or WithSession and log structured key/value pairs.
package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// DefaultLogPath is the log file used when Init is never called.
const DefaultLogPath = "/tmp/chatbox-debug.log"

// logGlob matches every log file chatbox may have written under /tmp.
const logGlob = "/tmp/chatbox-*.log"

var (
	slogLogger *slog.Logger
	levelVar   = new(slog.LevelVar)
	logFile    *os.File
	logPath    string
	mu         sync.Mutex
	initDone   bool
	debug      bool
)

// SetDebug switches between debug and info level. It may be called before
// or after Init.
func SetDebug(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	debug = enabled
	levelVar.Set(currentLevel())
}

func currentLevel() slog.Level {
	if debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// Init opens path for appending and installs it as the log destination.
// Calling Init again after a successful call is a no-op until Reset.
func Init(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if initDone {
		return nil
	}
	return open(path)
}

// open must be called with mu held.
func open(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	logFile = f
	logPath = path
	levelVar.Set(currentLevel())
	slogLogger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: levelVar}))
	initDone = true

	slogLogger.Info("logger initialized", "path", path)
	return nil
}

func ensureInit() {
	if initDone {
		return
	}
	if err := open(DefaultLogPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}

// Path returns the file currently being written, or "" before the first log.
func Path() string {
	mu.Lock()
	defer mu.Unlock()
	return logPath
}

// Logger returns the root logger, falling back to slog.Default when the
// log file could not be opened.
func Logger() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()

	ensureInit()
	if slogLogger == nil {
		return slog.Default()
	}
	return slogLogger
}

// WithComponent returns a logger with the component attribute attached.
//
//	log := logger.WithComponent("dispatch")
//	log.Info("request sent", "sessionID", id)
func WithComponent(component string) *slog.Logger {
	return Logger().With(slog.String("component", component))
}

// WithSession returns a logger scoped to one chat session.
func WithSession(sessionID int64) *slog.Logger {
	return Logger().With(slog.String("sessionID", strconv.FormatInt(sessionID, 10)))
}

// Enabled reports whether level would currently be written.
func Enabled(level slog.Level) bool {
	return Logger().Enabled(context.Background(), level)
}

// Close flushes and closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	slogLogger = nil
}

// Reset drops all logger state so Init can be called again. Tests use it.
func Reset() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	slogLogger = nil
	initDone = false
	logPath = ""
	debug = false
	levelVar = new(slog.LevelVar)
}

// ClearLogs removes every chatbox log file from /tmp and returns how many
// were deleted.
func ClearLogs() (int, error) {
	matches, err := filepath.Glob(logGlob)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, path := range matches {
		if err := os.Remove(path); err == nil {
			count++
		} else if !os.IsNotExist(err) {
			return count, err
		}
	}
	return count, nil
}
