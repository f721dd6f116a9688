package app

import (
	tea "charm.land/bubbletea/v2"

	"github.com/ediscovery/chatbox/internal/ui"
)

// handleMouse routes mouse events. Dragging the sidebar border resizes it;
// clicks pick a sidebar row or focus the chat; the wheel scrolls history.
func (m *Model) handleMouse(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.MouseClickMsg:
		if msg.Button != tea.MouseLeft || !m.inContent(msg.Y) {
			return nil
		}
		sidebarWidth := m.sidebar.Width()
		if m.resizer.OnHandle(msg.X, sidebarWidth) {
			m.resizer.Start()
			m.sidebar.SetDragging(true)
			ui.GetViewContext().Log("sidebar resize started", "x", msg.X)
			return nil
		}
		if msg.X < sidebarWidth {
			m.setFocus(FocusSidebar)
			// Rows start below the header and the panel's top border
			if m.sidebar.ClickRow(msg.Y - ui.HeaderHeight - 1) {
				return m.openSelected()
			}
			return nil
		}
		m.setFocus(FocusChat)
		return nil

	case tea.MouseMotionMsg:
		if !m.resizer.Armed() {
			return nil
		}
		if m.resizer.Move(msg.X, m.width) {
			m.applySidebarPercent()
		}
		return nil

	case tea.MouseReleaseMsg:
		if !m.resizer.Armed() {
			return nil
		}
		m.resizer.Stop()
		m.sidebar.SetDragging(false)
		ui.GetViewContext().Log("sidebar resize finished", "percent", m.resizer.Percent())
		return m.persistSidebar()

	case tea.MouseWheelMsg:
		if msg.X >= m.sidebar.Width() {
			_, cmd := m.chat.Update(msg)
			return cmd
		}
	}
	return nil
}

// inContent reports whether row y lies between the header and footer
func (m *Model) inContent(y int) bool {
	return y >= ui.HeaderHeight && y < m.height-ui.FooterHeight
}

// applySidebarPercent pushes the resizer's width to the layout
func (m *Model) applySidebarPercent() {
	ui.GetViewContext().SetSidebarPercent(m.resizer.Percent())
	if m.width > 0 && m.height > 0 {
		m.updateSizes()
	}
}

// persistSidebar stores the sidebar width in the config file, if there is one
func (m *Model) persistSidebar() tea.Cmd {
	m.config.SetSidebarPercent(m.resizer.Percent())
	if m.config.Path() == "" {
		return nil
	}
	return m.saveConfigOrFlash()
}
