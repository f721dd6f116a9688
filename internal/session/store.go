package session

import (
	"sync"
	"time"

	cerrors "github.com/ediscovery/chatbox/internal/errors"
	"github.com/ediscovery/chatbox/internal/logger"
)

// requestState tracks outstanding chat requests for one session.
type requestState struct {
	inFlight   int
	generation uint64
}

// Store is the ordered collection of sessions plus the active selection
// and the draft. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	sessions []*Session
	index    map[ID]*Session
	requests map[ID]*requestState
	activeID ID
	draft    string
	lastID   ID
	now      func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		index:    make(map[ID]*Session),
		requests: make(map[ID]*requestState),
		now:      time.Now,
	}
}

// nextID must be called with mu held.
func (s *Store) nextID(t time.Time) ID {
	id := t.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// Create appends a new empty session, makes it active and clears the draft.
func (s *Store) Create() ID {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := s.now()
	sess := &Session{
		ID:        s.nextID(created),
		Title:     placeholderTitle(len(s.sessions) + 1),
		Messages:  []Message{},
		CreatedAt: created,
	}
	s.sessions = append(s.sessions, sess)
	s.index[sess.ID] = sess
	s.activeID = sess.ID
	s.draft = ""

	logger.WithSession(sess.ID).Debug("session created", "title", sess.Title)
	return sess.ID
}

// Select makes id the active session and clears the draft. Unknown ids are
// ignored and Select returns false.
func (s *Store) Select(id ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[id]; !ok {
		logger.WithComponent("session").Debug("select ignored, unknown session", "sessionID", id)
		return false
	}
	s.activeID = id
	s.draft = ""
	return true
}

// Append adds msg to the session identified by id. The first user message
// of a session also becomes its title. If id matches no session the message
// is discarded and a KindNotFound error is returned.
func (s *Store) Append(id ID, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.index[id]
	if !ok {
		logger.WithSession(id).Warn("append dropped, session not found", "role", msg.Role)
		return cerrors.SessionNotFound(id)
	}
	if len(sess.Messages) == 0 && msg.Role == RoleUser {
		sess.Title = msg.Content
	}
	sess.Messages = append(sess.Messages, msg)
	return nil
}

// Get returns a copy of the session with the given id.
func (s *Store) Get(id ID) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.index[id]
	if !ok {
		return Session{}, false
	}
	return sess.clone(), true
}

// ActiveID returns the active session id, or 0 when the store is empty.
func (s *Store) ActiveID() ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// Active returns a copy of the active session.
func (s *Store) Active() (Session, bool) {
	return s.Get(s.ActiveID())
}

// Sessions returns copies of all sessions in creation order.
func (s *Store) Sessions() []Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Session, len(s.sessions))
	for i, sess := range s.sessions {
		out[i] = sess.clone()
	}
	return out
}

// Len returns the number of sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Draft returns the pending input buffer.
func (s *Store) Draft() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft
}

// SetDraft replaces the pending input buffer.
func (s *Store) SetDraft(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = text
}

// ClearDraft empties the pending input buffer.
func (s *Store) ClearDraft() {
	s.SetDraft("")
}

// BeginRequest records an outstanding request for id and returns its
// generation number, starting at 1.
func (s *Store) BeginRequest(id ID) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[id]; !ok {
		return 0, cerrors.SessionNotFound(id)
	}
	rs := s.requests[id]
	if rs == nil {
		rs = &requestState{}
		s.requests[id] = rs
	}
	rs.inFlight++
	rs.generation++
	return rs.generation, nil
}

// EndRequest marks one outstanding request for id as settled.
func (s *Store) EndRequest(id ID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rs := s.requests[id]; rs != nil && rs.inFlight > 0 {
		rs.inFlight--
	}
}

// InFlight returns the number of outstanding requests for id.
func (s *Store) InFlight(id ID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if rs := s.requests[id]; rs != nil {
		return rs.inFlight
	}
	return 0
}

// Generation returns the generation of the latest request started for id.
func (s *Store) Generation(id ID) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if rs := s.requests[id]; rs != nil {
		return rs.generation
	}
	return 0
}
