package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

const (
	ProviderGemini = "gemini"
	ProviderArk    = "ark"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server    ServerConfig
	AI        AIConfig
	Persona   PersonaConfig
	Log       LogConfig
	Telemetry TelemetryConfig
	Client    ClientConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	telemetry, err := loadTelemetryConfig()
	if err != nil {
		return nil, err
	}

	client, err := loadClientConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:    server,
		AI:        ai,
		Persona:   loadPersonaConfig(),
		Log:       loadLogConfig(),
		Telemetry: telemetry,
		Client:    client,
	}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
	// WebDir 为浏览器端静态资源目录，为空时不提供静态文件。
	WebDir string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	webDir := strings.TrimSpace(os.Getenv("WEB_DIR"))

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port, WebDir: webDir}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, WebDir: webDir}, nil
}

// AIConfig 描述上游大模型相关配置。
type AIConfig struct {
	Provider string

	// Gemini
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	// Volcengine Ark
	ArkAPIKey    string
	ArkAccessKey string
	ArkSecretKey string
	ArkModel     string
	ArkBaseURL   string
	ArkRegion    string
}

// Enabled 表示当前 provider 是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	switch c.Provider {
	case ProviderArk:
		return c.ArkModel != "" && (c.ArkAPIKey != "" || (c.ArkAccessKey != "" && c.ArkSecretKey != ""))
	default:
		return c.GeminiAPIKey != ""
	}
}

// NewArkChatModel 使用 Ark 配置创建一个模型实例，生成参数与 Gemini 保持一致。
func (c AIConfig) NewArkChatModel(ctx context.Context, temperature, topP float32, maxTokens int) (model.ChatModel, error) {
	if c.Provider != ProviderArk || !c.Enabled() {
		return nil, fmt.Errorf("Ark 凭证或模型配置缺失，至少提供 ARK_API_KEY + Model 或 AK/SK 组合")
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.ArkBaseURL,
		Region:      c.ArkRegion,
		APIKey:      c.ArkAPIKey,
		AccessKey:   c.ArkAccessKey,
		SecretKey:   c.ArkSecretKey,
		Model:       c.ArkModel,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
		TopP:        &topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	provider := strings.ToLower(getEnvOrDefault("LLM_PROVIDER", ProviderGemini))
	if provider != ProviderGemini && provider != ProviderArk {
		return AIConfig{}, fmt.Errorf("invalid LLM_PROVIDER value %q", provider)
	}

	return AIConfig{
		Provider:      provider,
		GeminiAPIKey:  strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:   getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash-lite"),
		GeminiBaseURL: strings.TrimSuffix(getEnvOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"), "/"),
		ArkAPIKey:     strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		ArkAccessKey:  strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		ArkSecretKey:  strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		ArkModel:      strings.TrimSpace(os.Getenv("Model")),
		ArkBaseURL:    getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		ArkRegion:     getEnvOrDefault("ARK_REGION", "cn-beijing"),
	}, nil
}

// PersonaConfig 描述前端使用的角色设定来源。
type PersonaConfig struct {
	File string
	ID   string
}

func loadPersonaConfig() PersonaConfig {
	return PersonaConfig{
		File: strings.TrimSpace(os.Getenv("PERSONA_FILE")),
		ID:   getEnvOrDefault("PERSONA_ID", "anubhav"),
	}
}

// LogConfig 描述日志输出。
type LogConfig struct {
	Dir   string
	Level string
}

func loadLogConfig() LogConfig {
	return LogConfig{
		Dir:   getEnvOrDefault("LOG_DIR", "logs"),
		Level: strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
	}
}

// TelemetryConfig 控制 OpenTelemetry 导出。
type TelemetryConfig struct {
	Enabled bool
}

func loadTelemetryConfig() (TelemetryConfig, error) {
	enabled, err := parseBoolEnv("TELEMETRY_ENABLED", false)
	if err != nil {
		return TelemetryConfig{}, err
	}
	return TelemetryConfig{Enabled: enabled}, nil
}

// ClientConfig 描述终端/浏览器客户端访问中转服务的方式。
type ClientConfig struct {
	BaseURL string
	// Timeout 为 0 表示不设超时。
	Timeout time.Duration
}

func loadClientConfig() (ClientConfig, error) {
	timeout, err := parseOptionalDurationEnv("CHAT_TIMEOUT")
	if err != nil {
		return ClientConfig{}, err
	}

	cfg := ClientConfig{
		BaseURL: strings.TrimSuffix(getEnvOrDefault("CHAT_API_URL", "http://localhost:8080"), "/"),
	}
	if timeout != nil {
		cfg.Timeout = *timeout
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalDurationEnv(key string) (*time.Duration, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := time.ParseDuration(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	if val < 0 {
		return nil, fmt.Errorf("invalid %s value %q: must not be negative", key, value)
	}
	return &val, nil
}
