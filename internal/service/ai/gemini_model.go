package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/anubhav-ai/assistant/internal/service/ai"

// GenerationConfig holds the sampling parameters sent with every request.
type GenerationConfig struct {
	Temperature     float32
	TopP            float32
	TopK            int
	MaxOutputTokens int
}

// DefaultGeneration is the fixed relay generation profile.
var DefaultGeneration = GenerationConfig{
	Temperature:     0.7,
	TopP:            0.95,
	TopK:            40,
	MaxOutputTokens: 1024,
}

// SafetySetting is one harm category threshold.
type SafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

// DefaultSafetySettings blocks medium-and-above content in the four standard categories.
func DefaultSafetySettings() []SafetySetting {
	const threshold = "BLOCK_MEDIUM_AND_ABOVE"
	return []SafetySetting{
		{Category: "HARM_CATEGORY_HARASSMENT", Threshold: threshold},
		{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: threshold},
		{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: threshold},
		{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: threshold},
	}
}

// UpstreamError reports a non-success status from the generation endpoint.
// Body is kept for server-side logs only.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.Status)
}

// GeminiConfig configures GeminiChatModel.
type GeminiConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Generation GenerationConfig
	Safety     []SafetySetting
}

// GeminiChatModel adapts the Gemini generateContent REST endpoint to eino's ChatModel.
type GeminiChatModel struct {
	cfg    GeminiConfig
	client *http.Client
}

var _ model.ChatModel = (*GeminiChatModel)(nil)

// NewGeminiChatModel validates cfg and returns a ready model.
func NewGeminiChatModel(cfg GeminiConfig) (*GeminiChatModel, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("gemini model is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if cfg.Generation == (GenerationConfig{}) {
		cfg.Generation = DefaultGeneration
	}
	if cfg.Safety == nil {
		cfg.Safety = DefaultSafetySettings()
	}

	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	return &GeminiChatModel{cfg: cfg, client: client}, nil
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     *float32 `json:"temperature,omitempty"`
	TopK            int      `json:"topK,omitempty"`
	TopP            *float32 `json:"topP,omitempty"`
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
	StopSequences   []string `json:"stopSequences,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent        `json:"contents"`
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
	SafetySettings    []SafetySetting        `json:"safetySettings"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
}

// Generate sends one generateContent call. A response without a first candidate
// text part yields an assistant message with empty content.
func (m *GeminiChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	temperature := m.cfg.Generation.Temperature
	topP := m.cfg.Generation.TopP
	maxTokens := m.cfg.Generation.MaxOutputTokens
	modelName := m.cfg.Model
	options := model.GetCommonOptions(&model.Options{
		Temperature: &temperature,
		TopP:        &topP,
		MaxTokens:   &maxTokens,
		Model:       &modelName,
	}, opts...)

	ctx, span := otel.Tracer(tracerName).Start(ctx, "gemini.generateContent",
		trace.WithAttributes(attribute.String("gemini.model", *options.Model)))
	defer span.End()

	text, err := m.generate(ctx, input, options)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate failed")
		return nil, err
	}

	span.SetAttributes(attribute.Int("gemini.reply_length", len(text)))
	return schema.AssistantMessage(text, nil), nil
}

func (m *GeminiChatModel) generate(ctx context.Context, input []*schema.Message, options *model.Options) (string, error) {
	payload := m.buildRequest(input, options)
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal gemini request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", m.cfg.BaseURL, *options.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// Header instead of ?key= so transport errors never print the credential.
	req.Header.Set("x-goog-api-key", m.cfg.APIKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", &UpstreamError{Status: resp.StatusCode, Body: string(snippet)}
	}

	var decoded geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}

	return firstText(decoded), nil
}

func (m *GeminiChatModel) buildRequest(input []*schema.Message, options *model.Options) geminiRequest {
	req := geminiRequest{
		Contents: make([]geminiContent, 0, len(input)),
		GenerationConfig: geminiGenerationConfig{
			Temperature:     options.Temperature,
			TopK:            m.cfg.Generation.TopK,
			TopP:            options.TopP,
			MaxOutputTokens: options.MaxTokens,
			StopSequences:   options.Stop,
		},
		SafetySettings: m.cfg.Safety,
	}

	var system []geminiPart
	for _, msg := range input {
		if msg == nil {
			continue
		}
		switch msg.Role {
		case schema.System:
			system = append(system, geminiPart{Text: msg.Content})
		case schema.Assistant:
			req.Contents = append(req.Contents, geminiContent{Role: "model", Parts: []geminiPart{{Text: msg.Content}}})
		default:
			req.Contents = append(req.Contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: msg.Content}}})
		}
	}
	if len(system) > 0 {
		req.SystemInstruction = &geminiContent{Parts: system}
	}

	return req
}

func firstText(resp geminiResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	parts := resp.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return ""
	}
	return parts[0].Text
}

// Stream wraps Generate in a single-chunk stream; token streaming is not offered.
func (m *GeminiChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

// BindTools is unsupported; the relay never sends tool definitions.
func (m *GeminiChatModel) BindTools(_ []*schema.ToolInfo) error {
	return errors.New("gemini relay model does not support tools")
}
