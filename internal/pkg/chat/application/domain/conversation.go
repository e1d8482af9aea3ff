package chat

import (
	"fmt"
	"strconv"
	"time"
)

// ConversationKind distinguishes one-to-one threads from named groups.
type ConversationKind string

const (
	ConversationDirect ConversationKind = "direct"
	ConversationGroup  ConversationKind = "group"
)

// Valid reports whether k is a known kind.
func (k ConversationKind) Valid() bool {
	return k == ConversationDirect || k == ConversationGroup
}

// Conversation is a direct or group thread.
// A direct conversation has exactly two memberships; a group has one or more
// and its name, when set, is unique among groups.
type Conversation struct {
	ID        int64            `db:"id" json:"id"`
	Kind      ConversationKind `db:"type" json:"type"`
	Name      string           `db:"name" json:"name"`
	CreatedBy int64            `db:"created_by" json:"created_by"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// IsDirect tells whether contact status gates sending in this conversation.
func (c Conversation) IsDirect() bool {
	return c.Kind == ConversationDirect
}

// RoomKey is the broadcast scope for the conversation's live subscribers.
func (c Conversation) RoomKey() string {
	return RoomKey(c.ID)
}

// RoomKey derives the registry key for a conversation id.
func RoomKey(conversationID int64) string {
	return fmt.Sprintf("chat_%d", conversationID)
}

// ParseConversationID interprets a room identifier as a numeric id.
// The second result is false when the identifier is not purely digits.
func ParseConversationID(identifier string) (int64, bool) {
	if identifier == "" {
		return 0, false
	}
	for _, r := range identifier {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(identifier, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
