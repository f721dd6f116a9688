package chatapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ediscovery/chatbox/internal/logger"
)

// RequestIDHeader carries a per-request id so backend logs can be matched
// against ours.
const RequestIDHeader = "X-Request-Id"

// loggingTransport stamps every outbound request with a request id and logs
// its outcome.
type loggingTransport struct {
	inner http.RoundTripper
}

func newLoggingTransport(inner http.RoundTripper) http.RoundTripper {
	if inner == nil {
		inner = http.DefaultTransport
	}
	return &loggingTransport{inner: inner}
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	log := logger.WithComponent("chatapi")

	requestID := req.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
		// RoundTrippers must not modify the caller's request.
		req = req.Clone(req.Context())
		req.Header.Set(RequestIDHeader, requestID)
	}

	resp, err := t.inner.RoundTrip(req)
	duration := time.Since(start)
	if err != nil {
		log.Error("chat request failed",
			"method", req.Method,
			"url", req.URL.String(),
			"duration", duration,
			"requestID", requestID,
			"error", err)
		return nil, err
	}

	log.Debug("chat request done",
		"method", req.Method,
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"duration", duration,
		"requestID", requestID)
	return resp, nil
}
