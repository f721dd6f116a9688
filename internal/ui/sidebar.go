package ui

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"github.com/ediscovery/chatbox/internal/keys"
	"github.com/ediscovery/chatbox/internal/session"
)

// sidebarSpinnerFrames uses the same shimmering spinner as the chat panel
var sidebarSpinnerFrames = []string{"·", "✺", "✹", "✸", "✷", "✶", "✵", "✴", "✳", "✲", "✱", "✧", "✦", "·"}

// sidebarSpinnerHoldTimes defines how long each frame should be held (in ticks)
var sidebarSpinnerHoldTimes = []int{3, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 3}

// NewChatLabel is the action row at the top of the session list
const NewChatLabel = "+ New Chat"

// SidebarTickMsg is sent to advance the spinner animation
type SidebarTickMsg time.Time

// SidebarTick returns a command that sends a tick message after a delay
func SidebarTick() tea.Cmd {
	return tea.Tick(300*time.Millisecond, func(t time.Time) tea.Msg {
		return SidebarTickMsg(t)
	})
}

// SessionItem is one row of the session list
type SessionItem struct {
	ID       session.ID
	Title    string
	InFlight int  // Outstanding requests
	Unread   bool // A reply landed while another session was active
}

// Sidebar represents the left panel with the session list.
// Row 0 is the "+ New Chat" action; row i+1 is items[i].
type Sidebar struct {
	items        []SessionItem
	activeID     session.ID
	selectedIdx  int
	scrollOffset int
	width        int
	height       int
	focused      bool
	dragging     bool
	spinnerFrame int
	spinnerTick  int
}

// NewSidebar creates a new sidebar
func NewSidebar() *Sidebar {
	return &Sidebar{focused: true}
}

// SetSize sets the sidebar dimensions
func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.ensureVisible()
}

// Width returns the sidebar width
func (s *Sidebar) Width() int {
	return s.width
}

// SetFocused sets the focus state
func (s *Sidebar) SetFocused(focused bool) {
	s.focused = focused
}

// IsFocused returns the focus state
func (s *Sidebar) IsFocused() bool {
	return s.focused
}

// SetDragging highlights the border while the sidebar is being resized
func (s *Sidebar) SetDragging(dragging bool) {
	s.dragging = dragging
}

// SetSessions replaces the session list. The selection stays on the same
// session when it still exists.
func (s *Sidebar) SetSessions(items []SessionItem) {
	selected, hadSelection := s.SelectedID()
	s.items = items
	if hadSelection {
		s.selectByID(selected)
	}
	if s.selectedIdx > len(s.items) {
		s.selectedIdx = len(s.items)
	}
	s.ensureVisible()
}

// SetActive marks id as the session shown in the chat panel and moves the
// selection to it.
func (s *Sidebar) SetActive(id session.ID) {
	s.activeID = id
	s.selectByID(id)
	s.ensureVisible()
}

// MarkActive marks id as the session shown in the chat panel without
// moving the selection.
func (s *Sidebar) MarkActive(id session.ID) {
	s.activeID = id
}

// ClickRow selects the list row at the given line inside the border. It
// reports whether the line held a row.
func (s *Sidebar) ClickRow(line int) bool {
	if line < 0 || line >= s.visibleRows() {
		return false
	}
	idx := s.scrollOffset + line
	if idx > len(s.items) {
		return false
	}
	s.selectedIdx = idx
	return true
}

func (s *Sidebar) selectByID(id session.ID) {
	for i, item := range s.items {
		if item.ID == id {
			s.selectedIdx = i + 1
			return
		}
	}
}

// SelectedID returns the session under the cursor. It returns false when
// the "+ New Chat" row is selected.
func (s *Sidebar) SelectedID() (session.ID, bool) {
	if s.selectedIdx < 1 || s.selectedIdx > len(s.items) {
		return 0, false
	}
	return s.items[s.selectedIdx-1].ID, true
}

// IsNewChatSelected reports whether the "+ New Chat" row is selected
func (s *Sidebar) IsNewChatSelected() bool {
	return s.selectedIdx == 0
}

// HasInFlight reports whether any session is waiting for a reply
func (s *Sidebar) HasInFlight() bool {
	for _, item := range s.items {
		if item.InFlight > 0 {
			return true
		}
	}
	return false
}

// Update handles messages
func (s *Sidebar) Update(msg tea.Msg) (*Sidebar, tea.Cmd) {
	switch msg := msg.(type) {
	case SidebarTickMsg:
		if !s.HasInFlight() {
			return s, nil
		}
		// Advance the spinner with easing (some frames hold longer)
		s.spinnerTick++
		holdTime := sidebarSpinnerHoldTimes[s.spinnerFrame%len(sidebarSpinnerHoldTimes)]
		if s.spinnerTick >= holdTime {
			s.spinnerTick = 0
			s.spinnerFrame = (s.spinnerFrame + 1) % len(sidebarSpinnerFrames)
		}
		return s, SidebarTick()

	case tea.KeyPressMsg:
		if !s.focused {
			return s, nil
		}
		switch msg.String() {
		case keys.Up, "k":
			if s.selectedIdx > 0 {
				s.selectedIdx--
			}
		case keys.Down, "j":
			if s.selectedIdx < len(s.items) {
				s.selectedIdx++
			}
		case keys.Home, "g":
			s.selectedIdx = 0
		case keys.End, "G":
			s.selectedIdx = len(s.items)
		}
		s.ensureVisible()
	}

	return s, nil
}

// visibleRows is the number of list rows that fit inside the border
func (s *Sidebar) visibleRows() int {
	rows := s.height - BorderSize
	if rows < 1 {
		rows = 1
	}
	return rows
}

// ensureVisible scrolls so the selected row is on screen. Rows never wrap,
// so one item is one line.
func (s *Sidebar) ensureVisible() {
	rows := s.visibleRows()
	if s.selectedIdx < s.scrollOffset {
		s.scrollOffset = s.selectedIdx
	}
	if s.selectedIdx >= s.scrollOffset+rows {
		s.scrollOffset = s.selectedIdx - rows + 1
	}
	if s.scrollOffset < 0 {
		s.scrollOffset = 0
	}
}

// View renders the sidebar
func (s *Sidebar) View() string {
	ctx := GetViewContext()

	style := PanelStyle
	switch {
	case s.dragging:
		style = PanelDraggingStyle
	case s.focused:
		style = PanelFocusedStyle
	}

	innerWidth := ctx.InnerWidth(s.width)
	if innerWidth < 1 {
		innerWidth = 1
	}
	// Item styles pad one cell on each side
	textWidth := innerWidth - 2
	if textWidth < 1 {
		textWidth = 1
	}

	var lines []string
	total := len(s.items) + 1
	end := s.scrollOffset + s.visibleRows()
	if end > total {
		end = total
	}
	for idx := s.scrollOffset; idx < end; idx++ {
		lines = append(lines, s.renderRow(idx, innerWidth, textWidth))
	}

	if len(s.items) == 0 && len(lines) < s.visibleRows() {
		empty := lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Italic(true).
			Padding(0, 1).
			Render(runewidth.Truncate("No chats yet.", textWidth, "…"))
		lines = append(lines, empty)
	}

	return style.Width(s.width).Height(s.height).Render(strings.Join(lines, "\n"))
}

func (s *Sidebar) renderRow(idx, innerWidth, textWidth int) string {
	selected := idx == s.selectedIdx && s.focused

	if idx == 0 {
		label := runewidth.Truncate(NewChatLabel, textWidth, "…")
		if selected {
			return SidebarSelectedStyle.Width(innerWidth).Render(label)
		}
		return SidebarNewChatStyle.Width(innerWidth).Render(label)
	}

	item := s.items[idx-1]
	symbol := " "
	switch {
	case item.InFlight > 0:
		symbol = sidebarSpinnerFrames[s.spinnerFrame]
	case item.Unread:
		symbol = SidebarUnreadStyle.Render("●")
	}

	title := runewidth.Truncate(firstLine(item.Title), textWidth-2, "…")
	line := symbol + " " + title

	switch {
	case selected:
		return SidebarSelectedStyle.Width(innerWidth).Render(line)
	case item.ID == s.activeID:
		return SidebarItemStyle.Width(innerWidth).Foreground(ColorPrimary).Bold(true).Render(line)
	default:
		return SidebarItemStyle.Width(innerWidth).Render(line)
	}
}
