package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	path   string
	apiKey string
	body   map[string]any
}

func newUpstream(t *testing.T, status int, reply string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.path = r.URL.Path
		captured.apiKey = r.Header.Get("x-goog-api-key")
		if err := json.NewDecoder(r.Body).Decode(&captured.body); err != nil {
			t.Errorf("decode upstream body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func newTestModel(t *testing.T, baseURL string) *GeminiChatModel {
	t.Helper()
	m, err := NewGeminiChatModel(GeminiConfig{APIKey: "test-key", Model: "gemini-test", BaseURL: baseURL})
	require.NoError(t, err)
	return m
}

func TestGenerateSendsFixedParameters(t *testing.T) {
	srv, captured := newUpstream(t, http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"hi!"}]}}]}`)
	m := newTestModel(t, srv.URL)

	msg, err := m.Generate(context.Background(), []*schema.Message{schema.UserMessage("hello")})
	require.NoError(t, err)
	assert.Equal(t, "hi!", msg.Content)
	assert.Equal(t, schema.Assistant, msg.Role)

	assert.Equal(t, "/models/gemini-test:generateContent", captured.path)
	assert.Equal(t, "test-key", captured.apiKey)

	gen := captured.body["generationConfig"].(map[string]any)
	assert.InDelta(t, 0.7, gen["temperature"], 1e-6)
	assert.InDelta(t, 0.95, gen["topP"], 1e-6)
	assert.EqualValues(t, 40, gen["topK"])
	assert.EqualValues(t, 1024, gen["maxOutputTokens"])

	safety := captured.body["safetySettings"].([]any)
	require.Len(t, safety, 4)
	for _, raw := range safety {
		setting := raw.(map[string]any)
		assert.Equal(t, "BLOCK_MEDIUM_AND_ABOVE", setting["threshold"])
	}

	contents := captured.body["contents"].([]any)
	require.Len(t, contents, 1)
	parts := contents[0].(map[string]any)["parts"].([]any)
	assert.Equal(t, "hello", parts[0].(map[string]any)["text"])
}

func TestGenerateEmptyPartsYieldsEmptyContent(t *testing.T) {
	srv, _ := newUpstream(t, http.StatusOK, `{"candidates":[{"content":{"parts":[]}}]}`)
	m := newTestModel(t, srv.URL)

	msg, err := m.Generate(context.Background(), []*schema.Message{schema.UserMessage("hello")})
	require.NoError(t, err)
	assert.Empty(t, msg.Content)
}

func TestGenerateNonSuccessStatus(t *testing.T) {
	srv, _ := newUpstream(t, http.StatusTooManyRequests, `{"error":{"message":"quota"}}`)
	m := newTestModel(t, srv.URL)

	_, err := m.Generate(context.Background(), []*schema.Message{schema.UserMessage("hello")})
	require.Error(t, err)

	var upstreamErr *UpstreamError
	require.True(t, errors.As(err, &upstreamErr))
	assert.Equal(t, http.StatusTooManyRequests, upstreamErr.Status)
	assert.NotContains(t, err.Error(), "quota")
}

func TestGenerateMalformedBody(t *testing.T) {
	srv, _ := newUpstream(t, http.StatusOK, `not json`)
	m := newTestModel(t, srv.URL)

	_, err := m.Generate(context.Background(), []*schema.Message{schema.UserMessage("hello")})
	assert.Error(t, err)
}

func TestBuildRequestMapsRoles(t *testing.T) {
	m := newTestModel(t, "http://unused")
	temperature, topP, maxTokens, name := float32(0.7), float32(0.95), 1024, "gemini-test"

	req := m.buildRequest([]*schema.Message{
		schema.SystemMessage("be brief"),
		schema.UserMessage("q1"),
		schema.AssistantMessage("a1", nil),
		schema.UserMessage("q2"),
	}, &model.Options{Temperature: &temperature, TopP: &topP, MaxTokens: &maxTokens, Model: &name})

	require.NotNil(t, req.SystemInstruction)
	assert.Equal(t, "be brief", req.SystemInstruction.Parts[0].Text)
	require.Len(t, req.Contents, 3)
	assert.Equal(t, "user", req.Contents[0].Role)
	assert.Equal(t, "model", req.Contents[1].Role)
	assert.Equal(t, "user", req.Contents[2].Role)
}

func TestNewGeminiChatModelValidates(t *testing.T) {
	_, err := NewGeminiChatModel(GeminiConfig{Model: "m"})
	assert.Error(t, err)

	_, err = NewGeminiChatModel(GeminiConfig{APIKey: "k"})
	assert.Error(t, err)
}
