package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anubhav-ai/assistant/internal/model/persona"
	"github.com/anubhav-ai/assistant/internal/model/relay"
)

func newRelay(t *testing.T, status int, body string, seen *relay.Request) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSendReturnsReply(t *testing.T) {
	var seen relay.Request
	srv := newRelay(t, http.StatusOK, `{"response":"hello back"}`, &seen)

	reply, err := NewClient(srv.URL+"/").Send(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello back", reply)
	assert.Equal(t, "hello", seen.Message)
}

func TestSendWrapsWithPersona(t *testing.T) {
	var seen relay.Request
	srv := newRelay(t, http.StatusOK, `{"response":"ok"}`, &seen)

	p, ok := persona.NewMemoryStore(persona.Seed()).FindByID("anubhav")
	require.True(t, ok)

	_, err := NewClient(srv.URL, WithPersona(p)).Send(context.Background(), "who made you?")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(seen.Message, "Context: "))
	assert.True(t, strings.HasSuffix(seen.Message, "User message: who made you?"))
}

func TestSendNonSuccessStatus(t *testing.T) {
	srv := newRelay(t, http.StatusInternalServerError, `{"error":"Failed to get response from AI"}`, nil)

	_, err := NewClient(srv.URL).Send(context.Background(), "hi")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStatus)

	var relayErr *Error
	require.True(t, errors.As(err, &relayErr))
	assert.Equal(t, http.StatusInternalServerError, relayErr.Status)
	assert.Equal(t, "Failed to get response from AI", relayErr.Detail)
}

func TestSendMalformedBody(t *testing.T) {
	srv := newRelay(t, http.StatusOK, `<html>`, nil)

	_, err := NewClient(srv.URL).Send(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrDecode)
}

func TestSendMissingReplyField(t *testing.T) {
	srv := newRelay(t, http.StatusOK, `{"other":"x"}`, nil)

	_, err := NewClient(srv.URL).Send(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrMissingReply)
}

func TestSendTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).Send(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrTransport)
	assert.NotErrorIs(t, err, ErrStatus)
}

func TestSendTimeout(t *testing.T) {
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

	_, err := NewClient(srv.URL, WithTimeout(50*time.Millisecond)).Send(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
