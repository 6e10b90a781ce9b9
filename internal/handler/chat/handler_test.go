package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/anubhav-ai/assistant/internal/model/relay"
)

type fakeReplier struct {
	reply    string
	err      error
	received []string
}

func (f *fakeReplier) GenerateReply(_ context.Context, message string) (string, error) {
	f.received = append(f.received, message)
	return f.reply, f.err
}

func setupRouter(replier Replier) *chi.Mux {
	r := chi.NewRouter()
	New(replier).RegisterRoutes(r)
	return r
}

func postChat(t *testing.T, r http.Handler, body string) (*httptest.ResponseRecorder, relay.Response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	var decoded relay.Response
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("decode response: %v (body=%s)", err, resp.Body.String())
	}
	return resp, decoded
}

func TestChatMissingMessage(t *testing.T) {
	fake := &fakeReplier{reply: "unused"}
	resp, body := postChat(t, setupRouter(fake), `{}`)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if body.Error == "" {
		t.Fatal("expected error field")
	}
	if len(fake.received) != 0 {
		t.Fatal("upstream must not be called for invalid input")
	}
}

func TestChatInvalidJSON(t *testing.T) {
	resp, body := postChat(t, setupRouter(&fakeReplier{}), `{"message":`)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if body.Error != errInvalidBody {
		t.Fatalf("unexpected error: %q", body.Error)
	}
}

func TestChatUnconfiguredCredential(t *testing.T) {
	resp, body := postChat(t, setupRouter(nil), `{"message":"hello"}`)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	if body.Error != errNotConfigured {
		t.Fatalf("unexpected error: %q", body.Error)
	}
}

func TestChatUpstreamFailureHidesDetails(t *testing.T) {
	fake := &fakeReplier{err: errors.New("upstream returned status 503: secret detail")}
	resp, body := postChat(t, setupRouter(fake), `{"message":"hello"}`)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	if body.Error != errUpstream {
		t.Fatalf("unexpected error: %q", body.Error)
	}
	if strings.Contains(resp.Body.String(), "secret") {
		t.Fatal("upstream details leaked to client")
	}
}

func TestChatSuccess(t *testing.T) {
	fake := &fakeReplier{reply: "Hi from upstream"}
	resp, body := postChat(t, setupRouter(fake), `{"message":"hello"}`)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if body.Response != "Hi from upstream" {
		t.Fatalf("unexpected response: %q", body.Response)
	}
	if len(fake.received) != 1 || fake.received[0] != "hello" {
		t.Fatalf("unexpected forwarded messages: %v", fake.received)
	}
}

func TestWebSocketRelaysEachFrame(t *testing.T) {
	fake := &fakeReplier{reply: "pong"}
	srv := httptest.NewServer(setupRouter(fake))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/chat/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(relay.Request{Message: "ping"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var first relay.Response
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read: %v", err)
	}
	if first.Response != "pong" {
		t.Fatalf("unexpected reply: %+v", first)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"message":""}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	var second relay.Response
	if err := conn.ReadJSON(&second); err != nil {
		t.Fatalf("read: %v", err)
	}
	if second.Error != errMessageRequired {
		t.Fatalf("expected validation error, got %+v", second)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`nope`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	var third relay.Response
	if err := conn.ReadJSON(&third); err != nil {
		t.Fatalf("read: %v", err)
	}
	if third.Error != errInvalidBody {
		t.Fatalf("expected invalid body error, got %+v", third)
	}

	if len(fake.received) != 1 {
		t.Fatalf("expected exactly one upstream call, got %d", len(fake.received))
	}
}
