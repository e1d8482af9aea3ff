package chat

// Chat is the send-time view of a conversation, hydrated by the application
// layer with the sender's membership and, for direct conversations, the
// contact verdict against the counterpart.
//
// Notes:
//   - Hydration happens per message; nothing here is cached across sends,
//     so a contact blocked mid-session takes effect on the next message.
//   - Persistence is handled by repositories outside the domain; this type only
//     enforces rules and shapes intent.
type Chat struct {
	Conversation Conversation
	Sender       *Membership
	Counterpart  *Membership // direct conversations only; nil means no second member
	InContact    bool
}

// HasParticipant tells whether userID holds the sender membership.
func (c *Chat) HasParticipant(userID int64) bool {
	return c != nil && c.Sender != nil && c.Sender.UserID == userID && c.Sender.ConversationID == c.Conversation.ID
}

// PostMessage applies domain rules and returns a validated message ready to persist.
//
// Validations:
// - Conversation/message identity must match
// - Sender must be a member
// - Direct conversations need a counterpart and an accepted contact in either direction
// - Content must be non-empty after trimming unless an attachment is present
func (c *Chat) PostMessage(m Message) (Message, error) {
	if m.ConversationID == 0 || m.ConversationID != c.Conversation.ID {
		return Message{}, ErrConversationNotFound
	}
	if !c.HasParticipant(m.SenderID) {
		return Message{}, ErrNotParticipant
	}
	if c.Conversation.IsDirect() && (c.Counterpart == nil || !c.InContact) {
		return Message{}, ErrNotInContact
	}
	draft, err := NewMessage(m.ConversationID, m.SenderID, m.Content, m.Attachment)
	if err != nil {
		return Message{}, err
	}
	return *draft, nil
}
