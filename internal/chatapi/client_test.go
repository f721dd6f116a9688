package chatapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/ediscovery/chatbox/internal/errors"
	"github.com/ediscovery/chatbox/internal/session"
)

// captured records what the test server received.
type captured struct {
	path      string
	method    string
	requestID string
	body      map[string]any
}

func newServer(t *testing.T, status int, reply string, got *captured) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got != nil {
			got.path = r.URL.Path
			got.method = r.Method
			got.requestID = r.Header.Get(RequestIDHeader)
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, &got.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, baseURL string, format Format) *Client {
	t.Helper()
	c, err := New(Config{BaseURL: baseURL, Format: format})
	require.NoError(t, err)
	return c
}

func TestChat_HistoryFormat(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, `{"natural_response": "Paris"}`, &got)
	c := newClient(t, srv.URL, FormatHistory)

	reply, err := c.Chat(context.Background(), Request{
		Input: "And its capital?",
		History: []session.Message{
			session.UserMessage("Tell me about France"),
			session.AssistantMessage("France is a country."),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, Answer{Text: "Paris"}, reply)
	assert.Equal(t, "/chat", got.path)
	assert.Equal(t, http.MethodPost, got.method)
	assert.NotEmpty(t, got.requestID)
	assert.Equal(t, "And its capital?", got.body["user_input"])

	history, ok := got.body["history"].([]any)
	require.True(t, ok, "history should be a JSON array")
	require.Len(t, history, 2)
	assert.Equal(t, map[string]any{"role": "user", "content": "Tell me about France"}, history[0])
	assert.Equal(t, map[string]any{"role": "assistant", "content": "France is a country."}, history[1])
}

func TestChat_EmptyHistoryIsArray(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, `{"natural_response": "ok"}`, &got)
	c := newClient(t, srv.URL, "")

	_, err := c.Chat(context.Background(), Request{Input: "hi"})
	require.NoError(t, err)

	assert.Equal(t, []any{}, got.body["history"])
}

func TestChat_InputAndMessageFormats(t *testing.T) {
	tests := []struct {
		format   Format
		wantKeys []string
		field    string
	}{
		{FormatInput, []string{"user_input"}, "user_input"},
		{FormatMessage, []string{"message"}, "message"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var got captured
			srv := newServer(t, http.StatusOK, `{"reply": "pong"}`, &got)
			c := newClient(t, srv.URL, tt.format)

			reply, err := c.Chat(context.Background(), Request{
				Input:   "ping",
				History: []session.Message{session.UserMessage("earlier")},
			})
			require.NoError(t, err)
			assert.Equal(t, "pong", reply.Render())

			keys := make([]string, 0, len(got.body))
			for k := range got.body {
				keys = append(keys, k)
			}
			assert.ElementsMatch(t, tt.wantKeys, keys)
			assert.Equal(t, "ping", got.body[tt.field])
		})
	}
}

func TestChat_BasePathIsKept(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, `{"natural_response": "ok"}`, &got)
	c := newClient(t, srv.URL+"/api/v1/", FormatInput)

	_, err := c.Chat(context.Background(), Request{Input: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/chat", got.path)
	assert.Equal(t, srv.URL+"/api/v1/chat", c.Endpoint())
}

func TestChat_NonSuccessStatus(t *testing.T) {
	srv := newServer(t, http.StatusBadRequest, `{"error": "Missing 'user_input' parameter"}`, nil)
	c := newClient(t, srv.URL, FormatHistory)

	reply, err := c.Chat(context.Background(), Request{Input: "hi"})
	assert.Nil(t, reply)
	require.Error(t, err)
	assert.True(t, cerrors.Is(err, cerrors.KindStatus))
	assert.Contains(t, err.Error(), "status=400")
	assert.Contains(t, err.Error(), "Missing 'user_input' parameter")
}

func TestChat_MalformedBody(t *testing.T) {
	srv := newServer(t, http.StatusOK, `not json`, nil)
	c := newClient(t, srv.URL, FormatHistory)

	_, err := c.Chat(context.Background(), Request{Input: "hi"})
	assert.True(t, cerrors.Is(err, cerrors.KindDecode), "err = %v", err)
}

func TestChat_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newClient(t, url, FormatHistory)
	_, err := c.Chat(context.Background(), Request{Input: "hi"})
	assert.True(t, cerrors.Is(err, cerrors.KindNetwork), "err = %v", err)
}

func TestChat_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c, err := New(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = c.Chat(context.Background(), Request{Input: "hi"})
	assert.True(t, cerrors.Is(err, cerrors.KindTimeout), "err = %v", err)
}

func TestChat_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c := newClient(t, srv.URL, FormatHistory)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Chat(ctx, Request{Input: "hi"})
	assert.True(t, cerrors.Is(err, cerrors.KindTimeout), "err = %v", err)
}

func TestChat_KeepsCallerRequestID(t *testing.T) {
	var seen string
	inner := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		seen = r.Header.Get(RequestIDHeader)
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"reply": "x"}`)),
			Header:     make(http.Header),
			Request:    r,
		}, nil
	})

	rt := newLoggingTransport(inner)
	req, err := http.NewRequest(http.MethodPost, "http://example.test/chat", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "fixed-id")

	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "fixed-id", seen)
}

func TestChat_RequestIDDoesNotMutateCaller(t *testing.T) {
	var seen string
	inner := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		seen = r.Header.Get(RequestIDHeader)
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{}`)),
			Header:     make(http.Header),
			Request:    r,
		}, nil
	})

	rt := newLoggingTransport(inner)
	req, err := http.NewRequest(http.MethodPost, "http://example.test/chat", nil)
	require.NoError(t, err)

	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotEmpty(t, seen)
	assert.Empty(t, req.Header.Get(RequestIDHeader))
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"relative url", Config{BaseURL: "localhost:5000"}},
		{"bad scheme", Config{BaseURL: "ftp://example.com"}},
		{"empty", Config{BaseURL: ""}},
		{"unknown format", Config{BaseURL: "http://localhost:5000", Format: "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			assert.True(t, cerrors.Is(err, cerrors.KindInvalid), "err = %v", err)
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatHistory, f)

	f, err = ParseFormat(" Message ")
	require.NoError(t, err)
	assert.Equal(t, FormatMessage, f)

	_, err = ParseFormat("graphql")
	assert.Error(t, err)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
