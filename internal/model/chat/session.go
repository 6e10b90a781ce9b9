package chat

// State is a point-in-time copy of a chat session.
type State struct {
	Messages    []Message `json:"messages"`
	IsLoading   bool      `json:"isLoading"`
	IsListening bool      `json:"isListening"`
}
