package app

import (
	"context"
	"net/url"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/ediscovery/chatbox/internal/config"
	"github.com/ediscovery/chatbox/internal/dispatch"
	"github.com/ediscovery/chatbox/internal/logger"
	"github.com/ediscovery/chatbox/internal/session"
	"github.com/ediscovery/chatbox/internal/ui"
)

// Focus represents which panel is focused
type Focus int

const (
	FocusSidebar Focus = iota
	FocusChat
)

func (f Focus) String() string {
	if f == FocusChat {
		return "chat"
	}
	return "sidebar"
}

// Model is the main Bubble Tea model
type Model struct {
	config     *config.Config
	version    string
	store      *session.Store
	dispatcher *dispatch.Dispatcher

	header  *ui.Header
	footer  *ui.Footer
	sidebar *ui.Sidebar
	chat    *ui.Chat
	resizer *ui.Resizer

	width  int
	height int
	focus  Focus

	// waitStart is when the oldest outstanding request of a session began
	waitStart map[session.ID]time.Time
	// unread marks sessions that got a reply while another was on screen
	unread map[session.ID]bool

	// Tick loops in progress, so a second submit does not start another
	stopwatchRunning bool
	spinnerRunning   bool

	// ctx is canceled by Close so in-flight requests stop with the program
	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

// ReplyMsg carries the result of one chat exchange back to the event loop
type ReplyMsg struct {
	Outcome dispatch.Outcome
}

// notifiedMsg reports the result of a desktop notification
type notifiedMsg struct {
	err error
}

// copiedMsg reports the result of a clipboard write
type copiedMsg struct {
	err error
}

// New creates a new app model
func New(cfg *config.Config, client dispatch.Client, version string) *Model {
	store := session.NewStore()
	ctx, cancel := context.WithCancel(context.Background())

	m := &Model{
		config:     cfg,
		version:    version,
		store:      store,
		dispatcher: dispatch.New(store, client),
		header:     ui.NewHeader(),
		footer:     ui.NewFooter(),
		sidebar:    ui.NewSidebar(),
		chat:       ui.NewChat(),
		resizer:    ui.NewResizer(cfg.GetSidebarPercent()),
		focus:      FocusSidebar,
		waitStart:  make(map[session.ID]time.Time),
		unread:     make(map[session.ID]bool),
		ctx:        ctx,
		cancel:     cancel,
	}

	ui.GetViewContext().SetSidebarPercent(m.resizer.Percent())
	m.header.SetBackend(backendLabel(cfg.GetBackendURL()))
	m.sidebar.SetFocused(true)
	m.refresh()

	return m
}

// backendLabel shortens a backend URL to its host for the header.
func backendLabel(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Close disarms the resizer and cancels outstanding requests. It is safe
// to call more than once.
func (m *Model) Close() {
	if m.closed {
		return
	}
	m.closed = true
	m.resizer.Stop()
	m.sidebar.SetDragging(false)
	m.cancel()
	logger.WithComponent("app").Debug("app closed", "sessions", m.store.Len())
}

// Store returns the session store
func (m *Model) Store() *session.Store {
	return m.store
}

// Focus returns the focused panel
func (m *Model) Focus() Focus {
	return m.focus
}

// SidebarPercent returns the current sidebar width in percent
func (m *Model) SidebarPercent() float64 {
	return m.resizer.Percent()
}

// setFocus moves keyboard focus to f
func (m *Model) setFocus(f Focus) {
	if f == FocusChat && !m.chat.HasSession() {
		return
	}
	m.focus = f
	m.sidebar.SetFocused(f == FocusSidebar)
	m.chat.SetFocused(f == FocusChat)
}

// toggleFocus switches focus between sidebar and chat
func (m *Model) toggleFocus() {
	if m.focus == FocusSidebar {
		m.setFocus(FocusChat)
	} else {
		m.setFocus(FocusSidebar)
	}
}
