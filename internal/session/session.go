package session

import (
	"fmt"
	"slices"
	"time"
)

// ID identifies a session. Zero means "no session".
type ID = int64

// Role is the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message is one entry of a conversation. Messages are never modified
// after they are appended.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserMessage builds a message authored by the user.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds a message authored by the remote assistant.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// Session is one independent conversation thread.
type Session struct {
	ID        ID
	Title     string
	Messages  []Message
	CreatedAt time.Time
}

// placeholderTitle returns the title given to the n-th session (1-based).
func placeholderTitle(n int) string {
	return fmt.Sprintf("Chat %d", n)
}

// clone returns a copy that shares no slice memory with s.
func (s *Session) clone() Session {
	c := *s
	c.Messages = slices.Clone(s.Messages)
	return c
}

// LastAssistant returns the content of the most recent assistant message.
func (s Session) LastAssistant() (string, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleAssistant {
			return s.Messages[i].Content, true
		}
	}
	return "", false
}
