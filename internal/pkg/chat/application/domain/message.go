package chat

import (
	"sort"
	"strings"
	"time"
)

// Message is an immutable log entry in a conversation.
// Messages are totally ordered by (CreatedAt, ID) ascending.
type Message struct {
	ID             int64     `db:"id" json:"id"`
	ConversationID int64     `db:"conversation_id" json:"conversation"`
	SenderID       int64     `db:"sender_id" json:"sender"`
	SenderUsername string    `db:"sender_username" json:"sender_username"`
	Content        string    `db:"content" json:"content"`
	Attachment     *string   `db:"attachment" json:"attachment,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// NewMessage validates a draft before it is persisted. Content is trimmed;
// it may only be empty when an attachment is present.
func NewMessage(conversationID, senderID int64, content string, attachment *string) (*Message, error) {
	if conversationID == 0 || senderID == 0 {
		return nil, ErrMissingIdentifiers
	}
	content = strings.TrimSpace(content)
	if attachment != nil && strings.TrimSpace(*attachment) == "" {
		attachment = nil
	}
	if content == "" && attachment == nil {
		return nil, ErrEmptyMessage
	}
	return &Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		Attachment:     attachment,
	}, nil
}

// Before reports whether m sorts before other in conversation order.
func (m Message) Before(other Message) bool {
	if !m.CreatedAt.Equal(other.CreatedAt) {
		return m.CreatedAt.Before(other.CreatedAt)
	}
	return m.ID < other.ID
}

// SortMessages orders msgs in place by (CreatedAt, ID) ascending.
func SortMessages(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Before(msgs[j])
	})
}
