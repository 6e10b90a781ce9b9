package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/anubhav-ai/assistant/internal/config"
)

// FallbackReply replaces an empty upstream answer so the relay never returns a blank reply.
const FallbackReply = "Sorry, I could not generate a response."

// Service forwards a single user message to the upstream model.
type Service struct {
	chatModel model.ChatModel
	provider  string
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates the upstream model for the configured provider and compiles the relay chain.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("%s credentials not configured", cfg.Provider)
	}

	var (
		chatModel model.ChatModel
		err       error
	)
	switch cfg.Provider {
	case config.ProviderArk:
		chatModel, err = cfg.NewArkChatModel(ctx, DefaultGeneration.Temperature, DefaultGeneration.TopP, DefaultGeneration.MaxOutputTokens)
	default:
		chatModel, err = NewGeminiChatModel(GeminiConfig{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			BaseURL: cfg.GeminiBaseURL,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	return NewServiceWithModel(ctx, cfg.Provider, chatModel)
}

// NewServiceWithModel compiles the relay chain around an existing model.
func NewServiceWithModel(ctx context.Context, provider string, chatModel model.ChatModel) (*Service, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.UserMessage("{message}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile relay chain: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		provider:  provider,
		chain:     runnable,
	}, nil
}

// Provider reports which upstream backs the service.
func (s *Service) Provider() string {
	return s.provider
}

// GenerateReply returns the upstream answer, or FallbackReply when the answer is empty.
func (s *Service) GenerateReply(ctx context.Context, message string) (string, error) {
	response, err := s.chain.Invoke(ctx, map[string]any{"message": message})
	if err != nil {
		return "", fmt.Errorf("failed to run relay chain: %w", err)
	}

	if response == nil || strings.TrimSpace(response.Content) == "" {
		slog.WarnContext(ctx, "upstream returned no text, using fallback reply", "provider", s.provider)
		return FallbackReply, nil
	}

	slog.DebugContext(ctx, "generated reply", "provider", s.provider, "length", len(response.Content))
	return response.Content, nil
}
