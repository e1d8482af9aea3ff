package chat

import "time"

// Wire frames exchanged over a chat session.

// InboundFrame is what a client sends: {"message": "..."}.
type InboundFrame struct {
	Message *string `json:"message"`
}

// MessageFrame carries one stored message to every subscriber of a room.
type MessageFrame struct {
	Message MessagePayload `json:"message"`
}

type MessagePayload struct {
	ID             int64     `json:"id"`
	Conversation   int64     `json:"conversation"`
	Sender         int64     `json:"sender"`
	SenderUsername string    `json:"sender_username"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// ErrorFrame is sent privately to a single connection.
type ErrorFrame struct {
	Error string `json:"error"`
}

func NewMessageFrame(m Message) MessageFrame {
	return MessageFrame{Message: MessagePayload{
		ID:             m.ID,
		Conversation:   m.ConversationID,
		Sender:         m.SenderID,
		SenderUsername: m.SenderUsername,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}}
}
