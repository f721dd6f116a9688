// Package chatapi talks to the remote chat endpoint: it encodes one POST per
// submission and classifies the response body into a Reply.
package chatapi

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"time"

	cerrors "github.com/ediscovery/chatbox/internal/errors"
	"github.com/ediscovery/chatbox/internal/logger"
)

const (
	// ChatPath is appended to the configured base URL.
	ChatPath = "/chat"

	maxBodySize     = 5 * 1024 * 1024
	maxErrorSnippet = 512
)

// Config configures a Client.
type Config struct {
	// BaseURL is the backend root, e.g. http://localhost:5000.
	BaseURL string
	Format  Format
	// Timeout bounds one request. Zero means no timeout.
	Timeout time.Duration
	// Transport overrides the underlying round tripper, mainly for tests.
	Transport http.RoundTripper
}

// Client posts chat requests to one backend.
type Client struct {
	base   *url.URL
	format Format
	http   *http.Client
}

// New builds a Client. It fails when BaseURL is not an absolute http(s) URL
// or Format is unknown.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, cerrors.ConfigInvalid("backend URL: " + err.Error())
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, cerrors.ConfigInvalid("backend URL must be an absolute http(s) URL: " + cfg.BaseURL)
	}
	format, err := ParseFormat(string(cfg.Format))
	if err != nil {
		return nil, cerrors.ConfigInvalid(err.Error())
	}
	return &Client{
		base:   base,
		format: format,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: newLoggingTransport(cfg.Transport),
		},
	}, nil
}

// Endpoint returns the full URL requests are posted to.
func (c *Client) Endpoint() string {
	u := *c.base
	u.Path = path.Join(u.Path, ChatPath)
	return u.String()
}

// Format returns the request format in use.
func (c *Client) Format() Format {
	return c.format
}

// Chat sends req and classifies the response. Errors carry KindNetwork,
// KindTimeout, KindStatus or KindDecode.
func (c *Client) Chat(ctx context.Context, req Request) (Reply, error) {
	log := logger.WithComponent("chatapi")
	endpoint := c.Endpoint()

	payload, err := encode(c.format, req)
	if err != nil {
		return nil, cerrors.E(cerrors.Op("chatapi.Chat"), cerrors.KindInvalid, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, cerrors.RequestFailed(endpoint, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	log.Debug("sending chat request", "url", endpoint, "format", c.format, "historyLen", len(req.History))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, cerrors.RequestTimeout(endpoint, err)
		}
		return nil, cerrors.RequestFailed(endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, cerrors.RequestTimeout(endpoint, err)
		}
		return nil, cerrors.RequestFailed(endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, cerrors.UnexpectedStatus(resp.StatusCode, snippet(body))
	}

	reply, err := Classify(body)
	if err != nil {
		return nil, err
	}
	log.Debug("chat reply classified", "kind", reply.Kind())
	return reply, nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func snippet(body []byte) string {
	b := bytes.TrimSpace(body)
	if len(b) > maxErrorSnippet {
		b = b[:maxErrorSnippet]
	}
	return string(b)
}
