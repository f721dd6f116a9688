package ui

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// KeyBinding represents a keyboard shortcut
type KeyBinding struct {
	Key  string
	Desc string
}

// FlashType is the severity of a flash message
type FlashType int

const (
	FlashInfo FlashType = iota
	FlashSuccess
	FlashWarning
	FlashError
)

// DefaultFlashDuration is how long a flash message stays in the footer
const DefaultFlashDuration = 3 * time.Second

// FlashTickMsg is sent periodically while a flash message is shown
type FlashTickMsg time.Time

// FlashTick returns a command that checks for flash expiry after a delay
func FlashTick() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return FlashTickMsg(t)
	})
}

// FlashMessage is a transient notice that replaces the key hints
type FlashMessage struct {
	Text      string
	Type      FlashType
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired reports whether the message has outlived its duration
func (f *FlashMessage) IsExpired() bool {
	return time.Since(f.CreatedAt) > f.Duration
}

func (t FlashType) icon() string {
	switch t {
	case FlashError:
		return "✕"
	case FlashWarning:
		return "⚠"
	case FlashSuccess:
		return "✓"
	default:
		return "ℹ"
	}
}

func (t FlashType) color() lipgloss.Style {
	switch t {
	case FlashError:
		return lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	case FlashWarning:
		return lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	case FlashSuccess:
		return lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(ColorInfo).Bold(true)
	}
}

// Footer represents the bottom footer bar with keybindings
type Footer struct {
	width          int
	bindings       []KeyBinding
	sidebarFocused bool // Whether sidebar has focus
	waiting        bool // Whether the active session has a request in flight
	resizing       bool // Whether the sidebar border is being dragged
	flashMessage   *FlashMessage
}

// NewFooter creates a new footer
func NewFooter() *Footer {
	return &Footer{
		bindings: []KeyBinding{
			{Key: "↑/↓", Desc: "select"},
			{Key: "enter", Desc: "open"},
			{Key: "n", Desc: "new chat"},
			{Key: "tab", Desc: "switch pane"},
			{Key: "[/]", Desc: "resize"},
			{Key: "q", Desc: "quit"},
		},
		sidebarFocused: true,
	}
}

// SetContext updates the footer's context for conditional bindings
func (f *Footer) SetContext(sidebarFocused, waiting, resizing bool) {
	f.sidebarFocused = sidebarFocused
	f.waiting = waiting
	f.resizing = resizing
}

// SetWidth sets the footer width
func (f *Footer) SetWidth(width int) {
	f.width = width
}

// SetBindings allows custom keybindings
func (f *Footer) SetBindings(bindings []KeyBinding) {
	f.bindings = bindings
}

// SetFlash shows text for DefaultFlashDuration
func (f *Footer) SetFlash(text string, flashType FlashType) {
	f.SetFlashWithDuration(text, flashType, DefaultFlashDuration)
}

// SetFlashWithDuration shows text for d
func (f *Footer) SetFlashWithDuration(text string, flashType FlashType, d time.Duration) {
	f.flashMessage = &FlashMessage{
		Text:      text,
		Type:      flashType,
		CreatedAt: time.Now(),
		Duration:  d,
	}
}

// ClearFlash removes the flash message
func (f *Footer) ClearFlash() {
	f.flashMessage = nil
}

// HasFlash reports whether a flash message is set
func (f *Footer) HasFlash() bool {
	return f.flashMessage != nil
}

// ClearIfExpired removes an expired flash message and reports whether it did
func (f *Footer) ClearIfExpired() bool {
	if f.flashMessage != nil && f.flashMessage.IsExpired() {
		f.flashMessage = nil
		return true
	}
	return false
}

// View renders the footer
func (f *Footer) View() string {
	if f.flashMessage != nil {
		style := f.flashMessage.Type.color()
		content := style.Render(f.flashMessage.Type.icon() + " " + f.flashMessage.Text)
		return FooterStyle.Width(f.width).Render(content)
	}

	var bindings []KeyBinding
	switch {
	case f.resizing:
		bindings = []KeyBinding{
			{Key: "drag", Desc: "resize sidebar"},
			{Key: "release", Desc: "done"},
		}
	case !f.sidebarFocused && f.waiting:
		bindings = []KeyBinding{
			{Key: "tab", Desc: "switch pane"},
			{Key: "pgup/dn", Desc: "scroll"},
			{Key: "ctrl+n", Desc: "new chat"},
		}
	case !f.sidebarFocused:
		bindings = []KeyBinding{
			{Key: "enter", Desc: "send"},
			{Key: "shift+enter", Desc: "newline"},
			{Key: "tab", Desc: "switch pane"},
			{Key: "pgup/dn", Desc: "scroll"},
			{Key: "ctrl+y", Desc: "copy reply"},
		}
	default:
		bindings = f.bindings
	}

	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		key := FooterKeyStyle.Render(b.Key)
		desc := FooterDescStyle.Render(": " + b.Desc)
		parts = append(parts, key+desc)
	}

	content := strings.Join(parts, "  "+lipgloss.NewStyle().Foreground(ColorBorder).Render("|")+"  ")
	return FooterStyle.Width(f.width).Render(content)
}
