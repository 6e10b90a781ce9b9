// Package proxy is the browser/terminal side client of the chat relay.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/anubhav-ai/assistant/internal/model/persona"
	"github.com/anubhav-ai/assistant/internal/model/relay"
)

// ErrorKind classifies a failed relay call.
type ErrorKind string

const (
	KindTransport    ErrorKind = "transport"
	KindStatus       ErrorKind = "status"
	KindDecode       ErrorKind = "decode"
	KindMissingReply ErrorKind = "missing_reply"
)

// Sentinels usable with errors.Is against an *Error of the matching kind.
var (
	ErrTransport    = errors.New("relay unreachable")
	ErrStatus       = errors.New("relay returned non-success status")
	ErrDecode       = errors.New("relay returned malformed body")
	ErrMissingReply = errors.New("relay reply has no response field")
)

// Error is the typed failure returned by Client.Send.
type Error struct {
	Kind ErrorKind
	// Status is the HTTP status when one was received.
	Status int
	// Detail is the relay's {"error"} text, if any.
	Detail string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("chat relay: ")
	b.WriteString(string(e.Kind))
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	switch e.Kind {
	case KindTransport:
		return target == ErrTransport
	case KindStatus:
		return target == ErrStatus
	case KindDecode:
		return target == ErrDecode
	case KindMissingReply:
		return target == ErrMissingReply
	}
	return false
}

// Client posts user messages to /api/chat.
type Client struct {
	endpoint   string
	httpClient *http.Client
	persona    persona.Persona
	timeout    time.Duration
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithPersona wraps outgoing text with the persona preamble.
func WithPersona(p persona.Persona) Option {
	return func(c *Client) { c.persona = p }
}

// WithTimeout bounds each call. Zero, the default, means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// NewClient returns a client for the relay at baseURL (scheme and host, no path).
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		endpoint:   strings.TrimSuffix(baseURL, "/") + "/api/chat",
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send forwards text and returns the assistant reply.
func (c *Client) Send(ctx context.Context, text string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(relay.Request{Message: c.persona.Wrap(text)})
	if err != nil {
		return "", fmt.Errorf("marshal relay request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &Error{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Kind: KindTransport, Status: resp.StatusCode, Err: err}
	}

	var decoded relay.Response
	decodeErr := json.Unmarshal(body, &decoded)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &Error{Kind: KindStatus, Status: resp.StatusCode, Detail: decoded.Error}
	}
	if decodeErr != nil {
		return "", &Error{Kind: KindDecode, Status: resp.StatusCode, Err: decodeErr}
	}
	if decoded.Response == "" {
		return "", &Error{Kind: KindMissingReply, Status: resp.StatusCode}
	}

	return decoded.Response, nil
}
