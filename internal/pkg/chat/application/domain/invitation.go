package chat

import "time"

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// GroupInvitation asks ToUserID to join a group conversation.
// Unique per (ConversationID, ToUserID).
type GroupInvitation struct {
	ID               int64            `db:"id" json:"id"`
	ConversationID   int64            `db:"conversation_id" json:"conversation"`
	ConversationName string           `db:"conversation_name" json:"conversation_name"`
	FromUserID       int64            `db:"from_user_id" json:"from_user_id"`
	ToUserID         int64            `db:"to_user_id" json:"to_user_id"`
	Status           InvitationStatus `db:"status" json:"status"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updated_at"`
}

// Respond validates the invitee's answer.
func (g GroupInvitation) Respond(actorID int64, to InvitationStatus) error {
	if actorID != g.ToUserID {
		return ErrNotRecipient
	}
	if g.Status != InvitationPending || (to != InvitationAccepted && to != InvitationDeclined) {
		return ErrInvalidTransition
	}
	return nil
}
