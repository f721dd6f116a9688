package ui

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/ediscovery/chatbox/internal/chatapi"
	"github.com/ediscovery/chatbox/internal/session"
)

func newSizedChat() *Chat {
	GetViewContext().UpdateTerminalSize(120, 40)
	c := NewChat()
	c.SetSize(80, 30)
	return c
}

func TestNewChat(t *testing.T) {
	c := NewChat()

	if c.HasSession() {
		t.Error("new chat should have no session")
	}
	if c.IsWaiting() {
		t.Error("new chat should not be waiting")
	}
	if !strings.Contains(stripANSI(c.View()), "No chat selected") {
		t.Error("placeholder should be shown without a session")
	}
}

func TestChat_SetSession_RendersRoles(t *testing.T) {
	c := newSizedChat()

	c.SetSession("What is the capital of France?", []session.Message{
		session.UserMessage("What is the capital of France?"),
		session.AssistantMessage("Paris"),
	})

	content := stripANSI(c.ViewportContent())
	for _, want := range []string{UserLabel + ":", AssistantLabel + ":", "What is the capital of France?", "Paris"} {
		if !strings.Contains(content, want) {
			t.Errorf("content missing %q:\n%s", want, content)
		}
	}
	if strings.Index(content, "France?") > strings.Index(content, "Paris") {
		t.Error("messages should render in order")
	}
}

func TestChat_EmptySession(t *testing.T) {
	c := newSizedChat()

	c.SetSession("Chat 1", nil)

	if !strings.Contains(stripANSI(c.ViewportContent()), "Ask a question") {
		t.Error("empty session should show a hint")
	}
}

func TestChat_ClearSession(t *testing.T) {
	c := newSizedChat()
	c.SetSession("Chat 1", []session.Message{session.UserMessage("hi")})
	c.SetWaiting(true)

	c.ClearSession()

	if c.HasSession() || c.IsWaiting() {
		t.Error("ClearSession should reset session and waiting state")
	}
}

func TestChat_QueryReplyRendered(t *testing.T) {
	c := newSizedChat()
	reply := chatapi.QueryResult{Query: "MATCH (n) RETURN count(n)", Results: []byte(`[{"count(n)":3}]`)}

	c.SetSession("count", []session.Message{
		session.UserMessage("count"),
		session.AssistantMessage(reply.Render()),
	})

	content := stripANSI(c.ViewportContent())
	if !strings.Contains(content, chatapi.QueryHeader) || !strings.Contains(content, `"count(n)": 3`) {
		t.Errorf("query reply not rendered:\n%s", content)
	}
}

func TestChat_Waiting(t *testing.T) {
	c := newSizedChat()
	c.SetSession("Chat 1", []session.Message{session.UserMessage("hello")})

	c.SetWaitingWithStart(true, time.Now().Add(-2*time.Second))

	if !c.IsWaiting() {
		t.Fatal("IsWaiting() should be true")
	}
	content := stripANSI(c.ViewportContent())
	if !strings.Contains(content, c.waitingVerb+"...") {
		t.Errorf("waiting indicator missing:\n%s", content)
	}
	if !strings.Contains(content, "2.") {
		t.Errorf("stopwatch should show about two seconds:\n%s", content)
	}

	if _, cmd := c.Update(StopwatchTickMsg{}); cmd == nil {
		t.Error("stopwatch should keep ticking while waiting")
	}

	c.SetWaiting(false)
	if _, cmd := c.Update(StopwatchTickMsg{}); cmd != nil {
		t.Error("stopwatch should stop when not waiting")
	}
}

func TestChat_Input(t *testing.T) {
	c := newSizedChat()
	c.SetSession("Chat 1", nil)
	c.SetFocused(true)

	c.Update(tea.KeyPressMsg{Code: 'h', Text: "h"})
	c.Update(tea.KeyPressMsg{Code: 'i', Text: "i"})

	if c.GetInput() != "hi" {
		t.Errorf("GetInput() = %q, want hi", c.GetInput())
	}

	c.SetInput("  padded  ")
	if c.GetInput() != "  padded  " {
		t.Errorf("GetInput() should not trim, got %q", c.GetInput())
	}

	c.ClearInput()
	if c.GetInput() != "" {
		t.Errorf("ClearInput left %q", c.GetInput())
	}
}

func TestChat_InputIgnoredWhenUnfocused(t *testing.T) {
	c := newSizedChat()
	c.SetSession("Chat 1", nil)

	c.Update(tea.KeyPressMsg{Code: 'x', Text: "x"})

	if c.GetInput() != "" {
		t.Errorf("unfocused chat should not take input, got %q", c.GetInput())
	}
}

func TestChat_ShiftEnterInsertsNewline(t *testing.T) {
	c := newSizedChat()
	c.SetSession("Chat 1", nil)
	c.SetFocused(true)

	c.Update(tea.KeyPressMsg{Code: 'a', Text: "a"})
	c.Update(tea.KeyPressMsg{Code: tea.KeyEnter, Mod: tea.ModShift})
	c.Update(tea.KeyPressMsg{Code: 'b', Text: "b"})

	if c.GetInput() != "a\nb" {
		t.Errorf("GetInput() = %q, want %q", c.GetInput(), "a\nb")
	}
}

func TestChat_View_Dimensions(t *testing.T) {
	c := newSizedChat()
	c.SetSession("Chat 1", []session.Message{session.UserMessage("hello")})

	lines := strings.Split(c.View(), "\n")

	if len(lines) != 30 {
		t.Errorf("view height = %d lines, want 30", len(lines))
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{1200 * time.Millisecond, "1.2s"},
		{59 * time.Second, "59.0s"},
		{83 * time.Second, "1:23"},
	}
	for _, tt := range tests {
		if got := formatElapsed(tt.d); got != tt.want {
			t.Errorf("formatElapsed(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
