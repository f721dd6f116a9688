package ui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/rivo/uniseg"
)

// AppTitle is shown at the left edge of the header
const AppTitle = " chatbox"

// Header represents the top header bar
type Header struct {
	width        int
	sessionTitle string
	backend      string
}

// NewHeader creates a new header
func NewHeader() *Header {
	return &Header{}
}

// SetWidth sets the header width
func (h *Header) SetWidth(width int) {
	h.width = width
}

// SetSessionTitle sets the active session title to display
func (h *Header) SetSessionTitle(title string) {
	h.sessionTitle = title
}

// SetBackend sets the backend address shown after the session title
func (h *Header) SetBackend(backend string) {
	h.backend = backend
}

// View renders the header
func (h *Header) View() string {
	var right string
	if h.sessionTitle != "" {
		right = firstLine(h.sessionTitle)
		if h.backend != "" {
			right += " (" + h.backend + ")"
		}
		right += " "
	}

	// Session titles are the raw first message, so they can be longer than
	// the header. Keep the app title and cut the right side.
	room := h.width - uniseg.StringWidth(AppTitle) - 1
	if room < 0 {
		room = 0
	}
	if uniseg.StringWidth(right) > room {
		right = truncateGraphemes(right, room)
	}

	paddingLen := h.width - uniseg.StringWidth(AppTitle) - uniseg.StringWidth(right)
	if paddingLen < 0 {
		paddingLen = 0
	}

	content := AppTitle + strings.Repeat(" ", paddingLen) + right
	return h.renderGradient(content)
}

// firstLine returns s up to its first newline.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// truncateGraphemes cuts s to at most width display cells, ending in "…"
// when anything was removed.
func truncateGraphemes(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if uniseg.StringWidth(s) <= width {
		return s
	}

	var b strings.Builder
	used := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		w := g.Width()
		if used+w > width-1 {
			break
		}
		b.WriteString(g.Str())
		used += w
	}
	b.WriteString("…")
	return b.String()
}

// parseHexColor parses a hex color string (e.g., "#7C3AED") into RGB components
func parseHexColor(hex string) (r, g, b int) {
	if len(hex) == 7 && hex[0] == '#' {
		fmt.Sscanf(hex[1:], "%02x%02x%02x", &r, &g, &b)
	}
	return
}

// renderGradient renders content over a purple-to-background gradient.
// The backend address is rendered muted.
func (h *Header) renderGradient(content string) string {
	if content == "" {
		return ""
	}

	startR, startG, startB := parseHexColor(headerGradientStart)
	endR, endG, endB := parseHexColor(headerGradientEnd)
	textColor := lipgloss.Color(headerText)
	mutedColor := lipgloss.Color(headerTextMuted)

	mutedFrom := -1
	if h.backend != "" {
		mutedFrom = strings.LastIndex(content, "("+h.backend+")")
	}

	total := uniseg.StringWidth(content)
	titleWidth := uniseg.StringWidth(AppTitle)

	var result strings.Builder
	col := 0
	g := uniseg.NewGraphemes(content)
	for g.Next() {
		t := float64(col) / float64(total)

		cr := int(float64(startR)*(1-t) + float64(endR)*t)
		cg := int(float64(startG)*(1-t) + float64(endG)*t)
		cb := int(float64(startB)*(1-t) + float64(endB)*t)
		bgColor := lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", cr, cg, cb))

		from, _ := g.Positions()
		style := lipgloss.NewStyle().
			Background(bgColor).
			Bold(col < titleWidth)
		if mutedFrom >= 0 && from >= mutedFrom {
			style = style.Foreground(mutedColor)
		} else {
			style = style.Foreground(textColor)
		}

		result.WriteString(style.Render(g.Str()))
		col += g.Width()
	}

	return result.String()
}
