package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/anubhav-ai/assistant/internal/model/relay"
	"github.com/anubhav-ai/assistant/pkg/utils"
)

const (
	errInvalidBody     = "invalid request body"
	errMessageRequired = "message is required"
	errNotConfigured   = "API key not configured"
	errUpstream        = "Failed to get response from AI"

	maxBodyBytes = 1 << 20
)

// Replier 抽象上游大模型调用，便于测试替换。
type Replier interface {
	GenerateReply(ctx context.Context, message string) (string, error)
}

// Handler 是无状态的聊天中转处理器。
type Handler struct {
	replier  Replier
	requests metric.Int64Counter
	upgrader websocket.Upgrader
}

// New 创建聊天中转处理器。replier 为 nil 表示上游凭证未配置。
func New(replier Replier) *Handler {
	requests, err := otel.Meter("github.com/anubhav-ai/assistant/internal/handler/chat").Int64Counter(
		"relay.requests",
		metric.WithDescription("Chat relay requests by transport and outcome"),
	)
	if err != nil {
		slog.Warn("failed to create relay request counter", "error", err)
	}

	return &Handler{
		replier:  replier,
		requests: requests,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/chat/ws", h.handleWebSocket)
}

// handleChat 处理 POST /api/chat
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload relay.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&payload); err != nil {
		h.count(r.Context(), "http", "bad_request")
		utils.RespondError(w, http.StatusBadRequest, errInvalidBody)
		return
	}

	status, resp := h.relay(r.Context(), "http", payload)
	utils.RespondJSON(w, status, resp)
}

// relay validates one request and forwards it upstream. Internal failures are
// logged and collapsed into a generic error body.
func (h *Handler) relay(ctx context.Context, transport string, req relay.Request) (int, relay.Response) {
	if strings.TrimSpace(req.Message) == "" {
		h.count(ctx, transport, "bad_request")
		return http.StatusBadRequest, relay.Response{Error: errMessageRequired}
	}

	if h.replier == nil {
		slog.ErrorContext(ctx, "chat relay called without upstream credentials")
		h.count(ctx, transport, "unconfigured")
		return http.StatusInternalServerError, relay.Response{Error: errNotConfigured}
	}

	reply, err := h.replier.GenerateReply(ctx, req.Message)
	if err != nil {
		slog.ErrorContext(ctx, "error in chat relay", "transport", transport, "error", err)
		h.count(ctx, transport, "upstream_error")
		return http.StatusInternalServerError, relay.Response{Error: errUpstream}
	}

	h.count(ctx, transport, "ok")
	return http.StatusOK, relay.Response{Response: reply}
}

func (h *Handler) count(ctx context.Context, transport, outcome string) {
	if h.requests == nil {
		return
	}
	h.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("transport", transport),
		attribute.String("outcome", outcome),
	))
}
