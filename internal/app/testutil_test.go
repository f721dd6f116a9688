package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/ediscovery/chatbox/internal/chatapi"
	"github.com/ediscovery/chatbox/internal/config"
	"github.com/ediscovery/chatbox/internal/keys"
	"github.com/ediscovery/chatbox/internal/ui"
)

// fakeClient is a dispatch.Client that answers from a function and
// records every request it sees.
type fakeClient struct {
	mu       sync.Mutex
	requests []chatapi.Request
	respond  func(req chatapi.Request) (chatapi.Reply, error)
}

func (c *fakeClient) Chat(ctx context.Context, req chatapi.Request) (chatapi.Reply, error) {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	respond := c.respond
	c.mu.Unlock()

	if respond == nil {
		return chatapi.PlainReply{Text: "echo: " + req.Input}, nil
	}
	return respond(req)
}

func (c *fakeClient) Requests() []chatapi.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]chatapi.Request(nil), c.requests...)
}

// failingClient returns a client whose every request fails with err.
func failingClient(err error) *fakeClient {
	return &fakeClient{respond: func(chatapi.Request) (chatapi.Reply, error) {
		return nil, err
	}}
}

var errBackendDown = errors.New("connection refused")

// testConfig creates a config that never touches the user's home directory.
func testConfig() *config.Config {
	return config.Default()
}

// testModel creates a test Model with the given config and client.
func testModel(t *testing.T, cfg *config.Config, client *fakeClient) *Model {
	t.Helper()
	if client == nil {
		client = &fakeClient{}
	}
	m := New(cfg, client, "0.0.0-test")
	t.Cleanup(m.Close)
	return m
}

// testModelWithSize creates a test Model and sets its size.
func testModelWithSize(t *testing.T, cfg *config.Config, client *fakeClient, width, height int) *Model {
	t.Helper()
	m := testModel(t, cfg, client)
	m.Update(tea.WindowSizeMsg{Width: width, Height: height})
	return m
}

// keyPress creates a tea.KeyPressMsg for the given key string.
// Examples: "a", "enter", "tab", "esc", "ctrl+c", "up", "down"
func keyPress(key string) tea.KeyPressMsg {
	switch key {
	case keys.Enter:
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case keys.ShiftEnter:
		return tea.KeyPressMsg{Code: tea.KeyEnter, Mod: tea.ModShift}
	case keys.Tab:
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case keys.ShiftTab:
		return tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift}
	case keys.Escape:
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case keys.Up:
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case keys.Down:
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case keys.Home:
		return tea.KeyPressMsg{Code: tea.KeyHome}
	case keys.End:
		return tea.KeyPressMsg{Code: tea.KeyEnd}
	case keys.PgUp:
		return tea.KeyPressMsg{Code: tea.KeyPgUp}
	case keys.PgDown:
		return tea.KeyPressMsg{Code: tea.KeyPgDown}
	case keys.CtrlC:
		return tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl}
	case keys.CtrlN:
		return tea.KeyPressMsg{Code: 'n', Mod: tea.ModCtrl}
	case keys.CtrlY:
		return tea.KeyPressMsg{Code: 'y', Mod: tea.ModCtrl}
	case " ":
		return tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}
	default:
		// Regular character - for single characters, set both Code and Text
		if len(key) == 1 {
			return tea.KeyPressMsg{Code: rune(key[0]), Text: key}
		}
		// Fallback for unknown keys
		return tea.KeyPressMsg{Text: key}
	}
}

// sendKey sends a key press to the model and returns the command it produced.
func sendKey(m *Model, key string) tea.Cmd {
	_, cmd := m.Update(keyPress(key))
	return cmd
}

// typeText simulates typing a string by sending individual character key presses.
func typeText(m *Model, text string) {
	for _, ch := range text {
		sendKey(m, string(ch))
	}
}

// isTick reports whether msg belongs to one of the animation loops.
func isTick(msg tea.Msg) bool {
	switch msg.(type) {
	case ui.FlashTickMsg, ui.SidebarTickMsg, ui.StopwatchTickMsg:
		return true
	}
	return false
}

// collectMsgs runs cmd (expanding batches) and returns the non-tick messages
// it produced. Commands run concurrently so timers do not add up.
func collectMsgs(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		msgs []tea.Msg
		run  func(tea.Cmd)
	)
	run = func(c tea.Cmd) {
		defer wg.Done()
		msg := c()
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, sub := range batch {
				if sub != nil {
					wg.Add(1)
					go run(sub)
				}
			}
			return
		}
		if msg == nil || isTick(msg) {
			return
		}
		mu.Lock()
		msgs = append(msgs, msg)
		mu.Unlock()
	}

	wg.Add(1)
	go run(cmd)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("commands did not finish")
	}
	return msgs
}

// deliver runs cmd and feeds every resulting message back into the model.
func deliver(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	for _, msg := range collectMsgs(t, cmd) {
		_, next := m.Update(msg)
		if next != nil {
			deliver(t, m, next)
		}
	}
}

// replies runs cmd and returns only the chat replies it produced, without
// delivering them.
func replies(t *testing.T, cmd tea.Cmd) []ReplyMsg {
	t.Helper()
	var out []ReplyMsg
	for _, msg := range collectMsgs(t, cmd) {
		if r, ok := msg.(ReplyMsg); ok {
			out = append(out, r)
		}
	}
	return out
}

// submitText types text into the chat and presses enter, returning the
// command that carries the request.
func submitText(m *Model, text string) tea.Cmd {
	typeText(m, text)
	return sendKey(m, keys.Enter)
}
