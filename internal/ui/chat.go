package ui

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/ediscovery/chatbox/internal/keys"
	"github.com/ediscovery/chatbox/internal/session"
)

// StopwatchTickMsg is sent to update the waiting indicator
type StopwatchTickMsg time.Time

// thinkingVerbs cycle in the waiting indicator
var thinkingVerbs = []string{
	"Thinking",
	"Searching",
	"Querying",
	"Reading",
	"Cross-referencing",
	"Sifting",
	"Collating",
	"Reviewing",
	"Matching",
	"Tracing",
}

// randomThinkingVerb returns a random verb from the list
func randomThinkingVerb() string {
	return thinkingVerbs[rand.Intn(len(thinkingVerbs))]
}

// spinnerFrames animate the waiting indicator
var spinnerFrames = []string{"·", "✺", "✹", "✸", "✷", "✶", "✵", "✴", "✳", "✲", "✱", "✧", "✦", "·"}

// Role labels shown above each message
const (
	UserLabel      = "You"
	AssistantLabel = "Assistant"
)

// Chat represents the right panel with conversation view
type Chat struct {
	viewport      viewport.Model
	input         textarea.Model
	width         int
	height        int
	focused       bool
	hasSession    bool
	title         string
	messages      []session.Message
	waiting       bool      // Active session has a request in flight
	waitStartTime time.Time // When the oldest outstanding request started
	waitingVerb   string
	spinnerIdx    int
}

// NewChat creates a new chat panel
func NewChat() *Chat {
	ti := textarea.New()
	ti.Placeholder = "Ask about the case..."
	ti.CharLimit = 0
	ti.SetHeight(TextareaHeight)
	ti.ShowLineNumbers = false
	ti.Prompt = ""
	// Enter submits; the app intercepts it before the textarea sees it
	ti.KeyMap.InsertNewline.SetKeys(keys.ShiftEnter, "ctrl+j")

	vp := viewport.New()
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	c := &Chat{
		viewport: vp,
		input:    ti,
	}
	c.updateContent()
	return c
}

// SetSize sets the chat panel dimensions
func (c *Chat) SetSize(width, height int) {
	c.width = width
	c.height = height

	ctx := GetViewContext()

	// Chat panel height (excluding input area which is separate)
	chatPanelHeight := height - InputTotalHeight

	innerWidth := ctx.InnerWidth(width)
	viewportHeight := ctx.InnerHeight(chatPanelHeight)
	if viewportHeight < 1 {
		viewportHeight = 1
	}

	c.viewport.SetWidth(innerWidth)
	c.viewport.SetHeight(viewportHeight)

	// Input width accounts for its own border AND padding
	c.input.SetWidth(ctx.InnerWidth(width) - InputPaddingWidth)

	ctx.Log("chat resized", "width", width, "height", height, "viewportWidth", innerWidth, "viewportHeight", viewportHeight)
	c.updateContent()
}

// SetFocused sets the focus state
func (c *Chat) SetFocused(focused bool) {
	c.focused = focused
	if focused {
		c.input.Focus()
	} else {
		c.input.Blur()
	}
}

// IsFocused returns the focus state
func (c *Chat) IsFocused() bool {
	return c.focused
}

// HasSession reports whether a session is shown
func (c *Chat) HasSession() bool {
	return c.hasSession
}

// SetSession shows the given session
func (c *Chat) SetSession(title string, messages []session.Message) {
	c.title = title
	c.messages = messages
	c.hasSession = true
	c.updateContent()
}

// ClearSession shows the placeholder
func (c *Chat) ClearSession() {
	c.title = ""
	c.messages = nil
	c.hasSession = false
	c.waiting = false
	c.updateContent()
}

// GetInput returns the input text as typed
func (c *Chat) GetInput() string {
	return c.input.Value()
}

// SetInput replaces the input text
func (c *Chat) SetInput(value string) {
	c.input.SetValue(value)
}

// ClearInput clears the input field
func (c *Chat) ClearInput() {
	c.input.Reset()
}

// SetWaiting sets the waiting state starting now
func (c *Chat) SetWaiting(waiting bool) {
	c.SetWaitingWithStart(waiting, time.Now())
}

// SetWaitingWithStart sets the waiting state with a specific start time,
// used when switching back to a session whose request started earlier.
func (c *Chat) SetWaitingWithStart(waiting bool, startTime time.Time) {
	if waiting && !c.waiting {
		c.waitingVerb = randomThinkingVerb()
	}
	c.waiting = waiting
	c.waitStartTime = startTime
	c.updateContent()
}

// IsWaiting returns whether we're waiting for a response
func (c *Chat) IsWaiting() bool {
	return c.waiting
}

// StopwatchTick returns a command that sends a tick message after a delay
func StopwatchTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return StopwatchTickMsg(t)
	})
}

// formatElapsed formats a duration as a stopwatch string (e.g., "1.2s", "1:23")
func formatElapsed(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", mins, secs)
}

// renderNoSessionMessage renders the placeholder when no session exists
func (c *Chat) renderNoSessionMessage() string {
	msgStyle := lipgloss.NewStyle().Foreground(ColorTextMuted)
	keyStyle := lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)

	var sb strings.Builder
	sb.WriteString(msgStyle.Italic(true).Render("No chat selected"))
	sb.WriteString("\n\n")
	sb.WriteString(msgStyle.Render("  • Press "))
	sb.WriteString(keyStyle.Render("n"))
	sb.WriteString(msgStyle.Render(" or choose "))
	sb.WriteString(keyStyle.Render(NewChatLabel))
	sb.WriteString(msgStyle.Render(" to start one"))
	return sb.String()
}

func (c *Chat) updateContent() {
	wrapWidth := c.viewport.Width()
	if wrapWidth <= 0 {
		wrapWidth = DefaultWrapWidth
	}

	var sb strings.Builder
	switch {
	case !c.hasSession:
		sb.WriteString(c.renderNoSessionMessage())
	case len(c.messages) == 0 && !c.waiting:
		sb.WriteString(ChatEmptyStyle.Render("Ask a question to start the conversation..."))
	default:
		for i, msg := range c.messages {
			if i > 0 {
				sb.WriteString("\n\n")
			}
			if msg.Role == session.RoleUser {
				sb.WriteString(ChatUserStyle.Render(UserLabel + ":"))
			} else {
				sb.WriteString(ChatAssistantStyle.Render(AssistantLabel + ":"))
			}
			sb.WriteString("\n")
			sb.WriteString(renderContent(strings.TrimSpace(msg.Content), wrapWidth))
		}

		if c.waiting {
			if len(c.messages) > 0 {
				sb.WriteString("\n\n")
			}
			frame := spinnerFrames[c.spinnerIdx%len(spinnerFrames)]
			stopwatchStyle := lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
			sb.WriteString(ChatAssistantStyle.Render(AssistantLabel + ":"))
			sb.WriteString("\n")
			sb.WriteString(lipgloss.NewStyle().Foreground(ColorUser).Bold(true).Render(frame))
			sb.WriteString(" ")
			sb.WriteString(StatusLoadingStyle.Render(c.waitingVerb + "... "))
			sb.WriteString(stopwatchStyle.Render(formatElapsed(time.Since(c.waitStartTime))))
		}
	}

	c.viewport.SetContent(sb.String())
	c.viewport.GotoBottom()
}

// Update handles messages
func (c *Chat) Update(msg tea.Msg) (*Chat, tea.Cmd) {
	var cmds []tea.Cmd

	if _, ok := msg.(StopwatchTickMsg); ok {
		if !c.waiting {
			return c, nil
		}
		c.spinnerIdx = (c.spinnerIdx + 1) % len(spinnerFrames)
		c.updateContent()
		return c, StopwatchTick()
	}

	if c.focused && c.hasSession {
		if keyMsg, isKey := msg.(tea.KeyPressMsg); isKey {
			switch keyMsg.String() {
			case keys.PgUp, keys.PgDown, keys.CtrlUp, keys.CtrlDown, keys.Home, keys.End, keys.CtrlU, keys.CtrlD:
				var cmd tea.Cmd
				c.viewport, cmd = c.viewport.Update(msg)
				return c, cmd
			}

			var cmd tea.Cmd
			c.input, cmd = c.input.Update(msg)
			return c, cmd
		}

		var cmd tea.Cmd
		c.input, cmd = c.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	// Mouse wheel and other non-key events scroll the history
	var cmd tea.Cmd
	c.viewport, cmd = c.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return c, tea.Batch(cmds...)
}

// View renders the chat panel
func (c *Chat) View() string {
	panelStyle := PanelStyle
	if c.focused {
		panelStyle = PanelFocusedStyle
	}

	if !c.hasSession {
		return panelStyle.Width(c.width).Height(c.height).Render(c.renderNoSessionMessage())
	}

	chatPanelHeight := c.height - InputTotalHeight
	chatPanel := panelStyle.Width(c.width).Height(chatPanelHeight).Render(c.viewport.View())

	inputStyle := ChatInputStyle
	if c.focused {
		inputStyle = ChatInputFocusedStyle
	}
	inputArea := inputStyle.Width(c.width).Render(c.input.View())

	return lipgloss.JoinVertical(lipgloss.Left, chatPanel, inputArea)
}

// ViewportContent returns the rendered history, for tests and copying
func (c *Chat) ViewportContent() string {
	return c.viewport.GetContent()
}
