// Package dispatch turns one user submission into one chat request and
// reconciles its outcome back into the session store.
//
// A submission runs in three steps so the UI thread never blocks:
//
//  1. Begin appends the user message to the active session and returns a
//     Ticket. It runs on the caller's goroutine.
//  2. Exchange performs the HTTP request. It does not touch the store and
//     may run anywhere, typically inside a tea.Cmd.
//  3. Settle appends exactly one assistant message, either the rendered
//     reply or FallbackReply, and then clears the draft.
//
// Submit chains all three for callers that can block.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ediscovery/chatbox/internal/chatapi"
	"github.com/ediscovery/chatbox/internal/logger"
	"github.com/ediscovery/chatbox/internal/session"
)

// FallbackReply is the assistant message appended when a request fails for
// any reason.
const FallbackReply = "Error getting response."

// Client is the subset of chatapi.Client the dispatcher needs.
type Client interface {
	Chat(ctx context.Context, req chatapi.Request) (chatapi.Reply, error)
}

// Ticket identifies one submission between Begin and Settle.
type Ticket struct {
	SessionID  session.ID
	Generation uint64
	Input      string
	// History is the session's messages before Input was appended.
	History []session.Message
	Started time.Time
}

// Outcome is the result of Exchange.
type Outcome struct {
	Ticket  *Ticket
	Reply   chatapi.Reply
	Err     error
	Elapsed time.Duration
}

// Failed reports whether the exchange produced no usable reply.
func (o Outcome) Failed() bool {
	return o.Err != nil || o.Reply == nil
}

// Dispatcher binds a store to a chat client.
type Dispatcher struct {
	store  *session.Store
	client Client
	log    *slog.Logger
}

// New creates a dispatcher.
func New(store *session.Store, client Client) *Dispatcher {
	return &Dispatcher{
		store:  store,
		client: client,
		log:    logger.WithComponent("dispatch"),
	}
}

// Store returns the store the dispatcher writes to.
func (d *Dispatcher) Store() *session.Store {
	return d.store
}

// Begin records text as a user message in the active session. It returns
// false without side effects when text is blank or no session is active.
func (d *Dispatcher) Begin(text string) (*Ticket, bool) {
	if strings.TrimSpace(text) == "" {
		return nil, false
	}
	active, ok := d.store.Active()
	if !ok {
		d.log.Debug("submit ignored, no active session")
		return nil, false
	}

	if err := d.store.Append(active.ID, session.UserMessage(text)); err != nil {
		d.log.Warn("submit dropped", "sessionID", active.ID, "error", err)
		return nil, false
	}
	gen, err := d.store.BeginRequest(active.ID)
	if err != nil {
		d.log.Warn("could not track request", "sessionID", active.ID, "error", err)
	}

	t := &Ticket{
		SessionID:  active.ID,
		Generation: gen,
		Input:      text,
		History:    active.Messages,
		Started:    time.Now(),
	}
	logger.WithSession(t.SessionID).Debug("submission started",
		"generation", t.Generation,
		"inFlight", d.store.InFlight(t.SessionID))
	return t, true
}

// Exchange sends the ticket's request. Panics in the client are recovered
// and reported as errors.
func (d *Dispatcher) Exchange(ctx context.Context, t *Ticket) (out Outcome) {
	out.Ticket = t
	defer func() {
		out.Elapsed = time.Since(t.Started)
		if r := recover(); r != nil {
			out.Reply = nil
			out.Err = fmt.Errorf("chat client panic: %v", r)
		}
	}()

	out.Reply, out.Err = d.client.Chat(ctx, chatapi.Request{
		Input:   t.Input,
		History: t.History,
	})
	return out
}

// Settle appends the assistant message for o and clears the draft. The
// returned error is non-nil only when the target session no longer exists;
// the message is then discarded.
func (d *Dispatcher) Settle(o Outcome) (session.Message, error) {
	t := o.Ticket
	log := logger.WithSession(t.SessionID)

	content := FallbackReply
	if o.Failed() {
		log.Error("chat request failed",
			"generation", t.Generation,
			"elapsed", o.Elapsed,
			"error", o.Err)
	} else {
		content = o.Reply.Render()
		log.Info("chat reply received",
			"generation", t.Generation,
			"kind", o.Reply.Kind(),
			"elapsed", o.Elapsed)
	}

	msg := session.AssistantMessage(content)
	err := d.store.Append(t.SessionID, msg)
	d.store.EndRequest(t.SessionID)
	d.store.ClearDraft()
	return msg, err
}

// Submit runs Begin, Exchange and Settle in sequence. ok is false when the
// submission was ignored.
func (d *Dispatcher) Submit(ctx context.Context, text string) (msg session.Message, ok bool, err error) {
	t, ok := d.Begin(text)
	if !ok {
		return session.Message{}, false, nil
	}
	msg, err = d.Settle(d.Exchange(ctx, t))
	return msg, true, err
}
