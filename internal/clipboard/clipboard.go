// Package clipboard copies text to and from the system clipboard.
package clipboard

import (
	"fmt"
	"sync"

	"golang.design/x/clipboard"

	"github.com/ediscovery/chatbox/internal/logger"
)

var (
	mu          sync.Mutex
	initialized bool

	// Replaced in tests.
	initFunc  = clipboard.Init
	writeFunc = func(data []byte) { clipboard.Write(clipboard.FmtText, data) }
	readFunc  = func() []byte { return clipboard.Read(clipboard.FmtText) }
)

// Init initializes the clipboard. Must be called before other functions.
// This is safe to call multiple times.
func Init() error {
	mu.Lock()
	defer mu.Unlock()
	return initLocked()
}

func initLocked() error {
	if initialized {
		return nil
	}
	if err := initFunc(); err != nil {
		logger.WithComponent("clipboard").Warn("failed to initialize clipboard", "error", err)
		return fmt.Errorf("failed to initialize clipboard: %w", err)
	}
	initialized = true
	logger.WithComponent("clipboard").Debug("clipboard initialized")
	return nil
}

// WriteText places text on the clipboard.
func WriteText(text string) error {
	mu.Lock()
	defer mu.Unlock()
	if err := initLocked(); err != nil {
		return err
	}
	writeFunc([]byte(text))
	logger.WithComponent("clipboard").Debug("copied text", "bytes", len(text))
	return nil
}

// ReadText returns the text currently on the clipboard.
func ReadText() (string, error) {
	mu.Lock()
	defer mu.Unlock()
	if err := initLocked(); err != nil {
		return "", err
	}
	return string(readFunc()), nil
}
