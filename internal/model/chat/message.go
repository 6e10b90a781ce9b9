package chat

import "time"

// Origin identifies who authored a message.
type Origin string

const (
	OriginUser      Origin = "user"
	OriginAssistant Origin = "assistant"
)

// Message is one immutable turn of the visible conversation.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Origin    Origin    `json:"origin"`
	Timestamp time.Time `json:"timestamp"`
}

// IsUser reports whether the message was typed (or dictated) by the user.
func (m Message) IsUser() bool {
	return m.Origin == OriginUser
}
