// Package session holds the in-memory chat sessions of one chatbox run.
//
// # Overview
//
// A Store keeps an ordered list of sessions, the id of the active session
// and the pending input buffer (the draft). Nothing is persisted: every
// session lives until the process exits.
//
// # Session Lifecycle
//
//  1. Create: a new session is appended with no messages and a placeholder
//     title ("Chat N"). It becomes the active session and the draft is
//     cleared.
//  2. Select: switching to another existing session clears the draft so
//     unsent text never leaks between conversations. Unknown ids are ignored.
//  3. Append: messages are appended in arrival order. The first user
//     message of a session also becomes its title. Appending to an id that
//     does not exist returns a KindNotFound error instead of silently
//     discarding the message.
//
// Sessions are never deleted, so an in-flight reply always finds its
// session unless it was addressed to an id that never existed.
//
// # Identifiers
//
// Session ids are the creation time in Unix milliseconds. Two sessions
// created within the same millisecond get consecutive ids, so ids are unique
// and strictly increasing in creation order.
//
// # In-flight requests
//
// BeginRequest and EndRequest bracket one outstanding chat request. The
// store counts them per session and hands out a per-session generation
// number so callers can tell requests apart. The counts only describe what
// is outstanding; they do not serialize requests.
package session
