package app

import (
	tea "charm.land/bubbletea/v2"

	"github.com/ediscovery/chatbox/internal/clipboard"
	"github.com/ediscovery/chatbox/internal/dispatch"
	cerrors "github.com/ediscovery/chatbox/internal/errors"
	"github.com/ediscovery/chatbox/internal/keys"
	"github.com/ediscovery/chatbox/internal/logger"
	"github.com/ediscovery/chatbox/internal/notification"
	"github.com/ediscovery/chatbox/internal/session"
	"github.com/ediscovery/chatbox/internal/ui"
)

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateSizes()
		return m, nil

	case tea.KeyPressMsg:
		return m, m.handleKey(msg)

	case tea.MouseClickMsg, tea.MouseMotionMsg, tea.MouseReleaseMsg, tea.MouseWheelMsg:
		return m, m.handleMouse(msg)

	case ReplyMsg:
		return m, m.handleReply(msg.Outcome)

	case ui.FlashTickMsg:
		if m.footer.ClearIfExpired() || !m.footer.HasFlash() {
			return m, nil
		}
		return m, ui.FlashTick()

	case ui.SidebarTickMsg:
		_, cmd := m.sidebar.Update(msg)
		m.spinnerRunning = cmd != nil
		return m, cmd

	case ui.StopwatchTickMsg:
		_, cmd := m.chat.Update(msg)
		m.stopwatchRunning = cmd != nil
		return m, cmd

	case notifiedMsg:
		if msg.err != nil {
			logger.WithComponent("app").Warn("notification failed", "error", msg.err)
		}
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			return m, m.ShowFlashError("Copy failed: " + msg.err.Error())
		}
		return m, m.ShowFlashSuccess("Copied reply to clipboard")
	}

	// Paste, cursor blink and the like belong to the input
	_, cmd := m.chat.Update(msg)
	m.syncDraft()
	return m, cmd
}

// handleKey routes a key press by focus
func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	key := msg.String()

	switch key {
	case keys.CtrlC:
		return tea.Quit
	case keys.CtrlN:
		return m.newChat()
	case keys.Tab, keys.ShiftTab:
		m.toggleFocus()
		return nil
	}

	if m.focus == FocusSidebar {
		switch key {
		case "q":
			return tea.Quit
		case "n":
			return m.newChat()
		case keys.Enter:
			return m.openSelected()
		case "y":
			return m.copyLastReply()
		case "[":
			return m.nudgeSidebar(-ui.SidebarNudgePercent)
		case "]":
			return m.nudgeSidebar(ui.SidebarNudgePercent)
		case keys.PgUp, keys.PgDown, keys.CtrlU, keys.CtrlD:
			// Scroll the chat history without leaving the sidebar
			_, cmd := m.chat.Update(msg)
			return cmd
		}
		_, cmd := m.sidebar.Update(msg)
		return cmd
	}

	switch key {
	case keys.Enter:
		return m.submit()
	case keys.Escape:
		m.setFocus(FocusSidebar)
		return nil
	case keys.CtrlY:
		return m.copyLastReply()
	}

	_, cmd := m.chat.Update(msg)
	m.syncDraft()
	return cmd
}

// syncDraft mirrors the textarea into the store's draft
func (m *Model) syncDraft() {
	if m.chat.HasSession() {
		m.store.SetDraft(m.chat.GetInput())
	}
}

// newChat creates a session, shows it and focuses the input
func (m *Model) newChat() tea.Cmd {
	id := m.store.Create()
	m.chat.ClearInput()
	m.refresh()
	m.sidebar.SetActive(id)
	m.setFocus(FocusChat)
	logger.WithSession(id).Info("new chat")
	return nil
}

// openSelected acts on the sidebar selection
func (m *Model) openSelected() tea.Cmd {
	if m.sidebar.IsNewChatSelected() {
		return m.newChat()
	}
	id, ok := m.sidebar.SelectedID()
	if !ok {
		return nil
	}
	return m.selectSession(id)
}

// selectSession switches the chat panel to id
func (m *Model) selectSession(id session.ID) tea.Cmd {
	if id != m.store.ActiveID() {
		if !m.store.Select(id) {
			return nil
		}
		m.chat.ClearInput()
	}
	delete(m.unread, id)
	m.refresh()
	m.sidebar.SetActive(id)
	m.setFocus(FocusChat)
	return m.startTickers()
}

// submit sends the input of the active session
func (m *Model) submit() tea.Cmd {
	text := m.chat.GetInput()
	m.store.SetDraft(text)

	ticket, ok := m.dispatcher.Begin(text)
	if !ok {
		return nil
	}
	if _, waiting := m.waitStart[ticket.SessionID]; !waiting {
		m.waitStart[ticket.SessionID] = ticket.Started
	}
	m.refresh()

	return tea.Batch(m.exchangeCmd(ticket), m.startTickers())
}

// exchangeCmd performs the request off the event loop
func (m *Model) exchangeCmd(t *dispatch.Ticket) tea.Cmd {
	d, ctx := m.dispatcher, m.ctx
	return func() tea.Msg {
		return ReplyMsg{Outcome: d.Exchange(ctx, t)}
	}
}

// handleReply settles an exchange into its session
func (m *Model) handleReply(o dispatch.Outcome) tea.Cmd {
	if o.Ticket == nil {
		return nil
	}
	id := o.Ticket.SessionID
	log := logger.WithSession(id)

	_, err := m.dispatcher.Settle(o)
	m.chat.ClearInput()
	if m.store.InFlight(id) == 0 {
		delete(m.waitStart, id)
	}

	var cmds []tea.Cmd
	if err != nil {
		log.Error("reply could not be stored", "error", err)
		m.refresh()
		return m.ShowFlashError("Reply dropped: its chat no longer exists")
	}

	if o.Failed() {
		cmds = append(cmds, m.ShowFlashWarning(failureText(o.Err)))
	}

	if id != m.store.ActiveID() {
		m.unread[id] = true
		if m.config.GetNotificationsEnabled() {
			if sess, ok := m.store.Get(id); ok {
				cmds = append(cmds, notifyCmd(sess.Title))
			}
		}
	}

	m.refresh()
	return tea.Batch(cmds...)
}

// failureText describes a failed exchange for the footer
func failureText(err error) string {
	switch cerrors.GetKind(err) {
	case cerrors.KindTimeout:
		return "Request timed out"
	case cerrors.KindNetwork:
		return "Backend unreachable"
	case cerrors.KindStatus:
		return "Backend returned an error"
	case cerrors.KindDecode:
		return "Unexpected response from backend"
	default:
		return "Request failed"
	}
}

func notifyCmd(title string) tea.Cmd {
	return func() tea.Msg {
		return notifiedMsg{err: notification.ReplyReceived(title)}
	}
}

// copyLastReply copies the active session's latest assistant message
func (m *Model) copyLastReply() tea.Cmd {
	sess, ok := m.store.Active()
	if !ok {
		return m.ShowFlashInfo("No chat selected")
	}
	text, ok := sess.LastAssistant()
	if !ok {
		return m.ShowFlashInfo("No reply to copy yet")
	}
	return func() tea.Msg {
		return copiedMsg{err: clipboard.WriteText(text)}
	}
}

// nudgeSidebar changes the sidebar width from the keyboard
func (m *Model) nudgeSidebar(delta float64) tea.Cmd {
	if !m.resizer.Nudge(delta) {
		return nil
	}
	m.applySidebarPercent()
	return m.persistSidebar()
}

// startTickers starts the chat stopwatch and sidebar spinner unless they
// are already running. Each loop ends once nothing is waiting.
func (m *Model) startTickers() tea.Cmd {
	var cmds []tea.Cmd
	if m.chat.IsWaiting() && !m.stopwatchRunning {
		m.stopwatchRunning = true
		cmds = append(cmds, ui.StopwatchTick())
	}
	if m.sidebar.HasInFlight() && !m.spinnerRunning {
		m.spinnerRunning = true
		cmds = append(cmds, ui.SidebarTick())
	}
	return tea.Batch(cmds...)
}

// refresh copies store state into the components
func (m *Model) refresh() {
	sessions := m.store.Sessions()
	items := make([]ui.SessionItem, len(sessions))
	for i, sess := range sessions {
		items[i] = ui.SessionItem{
			ID:       sess.ID,
			Title:    sess.Title,
			InFlight: m.store.InFlight(sess.ID),
			Unread:   m.unread[sess.ID],
		}
	}
	m.sidebar.SetSessions(items)

	active, ok := m.store.Active()
	if !ok {
		m.header.SetSessionTitle("")
		m.chat.ClearSession()
		return
	}
	m.sidebar.MarkActive(active.ID)
	m.header.SetSessionTitle(active.Title)
	m.chat.SetSession(active.Title, active.Messages)

	start, waiting := m.waitStart[active.ID]
	m.chat.SetWaitingWithStart(waiting && m.store.InFlight(active.ID) > 0, start)
}
