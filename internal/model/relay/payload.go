package relay

// Request 是 POST /api/chat 的请求体。
type Request struct {
	Message string `json:"message"`
}

// Response 是 /api/chat 的响应体，成功时只有 Response，失败时只有 Error。
type Response struct {
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}
