package chatapi

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ediscovery/chatbox/internal/session"
)

// Format selects the JSON body shape sent to the chat endpoint.
type Format string

const (
	// FormatHistory sends {user_input, history}.
	FormatHistory Format = "history"
	// FormatInput sends {user_input}.
	FormatInput Format = "input"
	// FormatMessage sends {message}, the shape of the earliest backends.
	FormatMessage Format = "message"
)

// Formats lists every supported request format, default first.
var Formats = []Format{FormatHistory, FormatInput, FormatMessage}

// ParseFormat returns the Format named by s. An empty string selects
// FormatHistory.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatHistory, nil
	}
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown request format %q", s)
}

// Request is one chat submission.
type Request struct {
	// Input is the text the user typed, sent as-is.
	Input string
	// History holds the messages of the session before Input.
	History []session.Message
}

type historyBody struct {
	UserInput string            `json:"user_input"`
	History   []session.Message `json:"history"`
}

type inputBody struct {
	UserInput string `json:"user_input"`
}

type messageBody struct {
	Message string `json:"message"`
}

// encode marshals req in the given format.
func encode(f Format, req Request) ([]byte, error) {
	switch f {
	case FormatHistory, "":
		history := req.History
		if history == nil {
			history = []session.Message{}
		}
		return json.Marshal(historyBody{UserInput: req.Input, History: history})
	case FormatInput:
		return json.Marshal(inputBody{UserInput: req.Input})
	case FormatMessage:
		return json.Marshal(messageBody{Message: req.Input})
	default:
		return nil, fmt.Errorf("unknown request format %q", f)
	}
}
