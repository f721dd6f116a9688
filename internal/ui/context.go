package ui

import (
	"sync"

	"github.com/ediscovery/chatbox/internal/logger"
)

// ViewContext holds centralized layout calculations and provides debug logging.
// All size calculations should go through this to avoid duplication.
type ViewContext struct {
	// Terminal dimensions
	TerminalWidth  int
	TerminalHeight int

	// SidebarPercent is the sidebar share of the terminal width
	SidebarPercent float64

	// Calculated dimensions
	HeaderHeight  int
	FooterHeight  int
	ContentHeight int
	SidebarWidth  int
	ChatWidth     int

	mu sync.Mutex
}

// Global view context instance
var ctx *ViewContext
var ctxOnce sync.Once

// GetViewContext returns the singleton ViewContext instance
func GetViewContext() *ViewContext {
	ctxOnce.Do(func() {
		ctx = &ViewContext{
			HeaderHeight:   HeaderHeight,
			FooterHeight:   FooterHeight,
			SidebarPercent: DefaultSidebarPercent,
		}
		logger.WithComponent("ui").Debug("ViewContext initialized")
	})
	return ctx
}

// Log writes a debug message to the log file using slog structured logging.
func (v *ViewContext) Log(msg string, args ...any) {
	logger.WithComponent("ui").Debug(msg, args...)
}

// UpdateTerminalSize recalculates all dimensions when terminal size changes.
// This method is thread-safe and should be called from the main event loop
// when the terminal is resized.
func (v *ViewContext) UpdateTerminalSize(width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	// Validate dimensions to prevent negative layout values
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}
	if height < MinTerminalHeight {
		height = MinTerminalHeight
	}

	v.TerminalWidth = width
	v.TerminalHeight = height
	v.HeaderHeight = HeaderHeight
	v.FooterHeight = FooterHeight

	// Content area is everything between header and footer
	v.ContentHeight = height - v.HeaderHeight - v.FooterHeight
	v.recalcWidths()
}

// SetSidebarPercent changes the sidebar share and recomputes panel widths.
// Callers are expected to pass a value within [MinSidebarPercent,
// MaxSidebarPercent]; the Resizer guarantees that.
func (v *ViewContext) SetSidebarPercent(percent float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.SidebarPercent = percent
	v.recalcWidths()
}

// recalcWidths must be called with mu held.
func (v *ViewContext) recalcWidths() {
	v.SidebarWidth = int(float64(v.TerminalWidth) * v.SidebarPercent / 100)
	if v.SidebarWidth < BorderSize+1 {
		v.SidebarWidth = BorderSize + 1
	}
	v.ChatWidth = v.TerminalWidth - v.SidebarWidth

	logger.WithComponent("ui").Debug("layout updated",
		"width", v.TerminalWidth,
		"height", v.TerminalHeight,
		"contentHeight", v.ContentHeight,
		"sidebarPercent", v.SidebarPercent,
		"sidebarWidth", v.SidebarWidth,
		"chatWidth", v.ChatWidth,
	)
}

// InnerWidth returns the usable width inside a panel with borders
func (v *ViewContext) InnerWidth(panelWidth int) int {
	return panelWidth - BorderSize
}

// InnerHeight returns the usable height inside a panel with borders
func (v *ViewContext) InnerHeight(panelHeight int) int {
	return panelHeight - BorderSize
}
