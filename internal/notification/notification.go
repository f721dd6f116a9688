// Package notification provides cross-platform desktop notifications.
// It uses the beeep library to send notifications on macOS, Linux, and Windows.
package notification

import (
	"sync"

	"github.com/gen2brain/beeep"

	"github.com/ediscovery/chatbox/internal/logger"
)

// AppName is the title of every notification.
const AppName = "chatbox"

// notifyFunc matches beeep.Notify.
type notifyFunc func(title, message string, icon any) error

var (
	mu       sync.Mutex
	notifier notifyFunc = beeep.Notify
)

// SetNotifier replaces the notification backend, for tests.
func SetNotifier(fn func(title, message string, icon any) error) {
	mu.Lock()
	defer mu.Unlock()
	notifier = fn
}

// ResetNotifier restores beeep as the backend.
func ResetNotifier() {
	mu.Lock()
	defer mu.Unlock()
	notifier = beeep.Notify
}

// Send sends a desktop notification with the given title and message.
// On macOS, it uses terminal-notifier or AppleScript.
// On Linux, it uses D-Bus or notify-send.
// On Windows, it uses the Windows Runtime COM API.
func Send(title, message string) error {
	mu.Lock()
	fn := notifier
	mu.Unlock()

	log := logger.WithComponent("notification")
	log.Debug("sending notification", "title", title, "message", message)
	// Empty icon lets beeep pick the platform default.
	if err := fn(title, message, ""); err != nil {
		log.Warn("failed to send notification", "error", err)
		return err
	}
	return nil
}

// ReplyReceived announces that a session not currently on screen got its
// assistant reply.
func ReplyReceived(sessionTitle string) error {
	return Send(AppName, sessionTitle+" has a new reply")
}
