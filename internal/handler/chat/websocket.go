package chat

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/anubhav-ai/assistant/internal/model/relay"
)

const wsWriteTimeout = 10 * time.Second

// handleWebSocket relays chat frames over a WebSocket. Frames are handled one at a
// time, so a connection never has more than one upstream call in flight.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxBodyBytes)
	ctx := r.Context()
	requestID := middleware.GetReqID(ctx)
	slog.InfoContext(ctx, "chat websocket opened", "request_id", requestID)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.WarnContext(ctx, "chat websocket closed unexpectedly", "request_id", requestID, "error", err)
			}
			return
		}

		var resp relay.Response
		var req relay.Request
		if err := json.Unmarshal(data, &req); err != nil {
			h.count(ctx, "ws", "bad_request")
			resp = relay.Response{Error: errInvalidBody}
		} else {
			_, resp = h.relay(ctx, "ws", req)
		}

		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(resp); err != nil {
			slog.WarnContext(ctx, "failed to write websocket reply", "request_id", requestID, "error", err)
			return
		}
	}
}
