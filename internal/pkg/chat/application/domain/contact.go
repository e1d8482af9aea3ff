package chat

import "time"

// ContactStatus is the state of a directed contact request.
type ContactStatus string

const (
	ContactPending  ContactStatus = "pending"
	ContactAccepted ContactStatus = "accepted"
	ContactBlocked  ContactStatus = "blocked"
)

// Contact is a directed relationship, unique per ordered (FromUserID, ToUserID).
// The unordered pair counts as "in contact" when either direction is accepted.
type Contact struct {
	ID           int64         `db:"id" json:"id"`
	FromUserID   int64         `db:"from_user_id" json:"from_user_id"`
	FromUsername string        `db:"from_username" json:"from_username"`
	ToUserID     int64         `db:"to_user_id" json:"to_user_id"`
	ToUsername   string        `db:"to_username" json:"to_username"`
	Status       ContactStatus `db:"status" json:"status"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`
}

// Involves tells whether userID is either side of the contact.
func (c Contact) Involves(userID int64) bool {
	return c.FromUserID == userID || c.ToUserID == userID
}

// Transition validates a status change requested by actorID.
// Only the recipient may change status; blocked is terminal.
func (c Contact) Transition(actorID int64, to ContactStatus) error {
	if actorID != c.ToUserID {
		return ErrNotRecipient
	}
	switch {
	case c.Status == ContactPending && (to == ContactAccepted || to == ContactBlocked):
		return nil
	case c.Status == ContactAccepted && to == ContactBlocked:
		return nil
	default:
		return ErrInvalidTransition
	}
}

// AnyAccepted reports whether any of the rows grants contact between a and b.
func AnyAccepted(rows []Contact, a, b int64) bool {
	for _, c := range rows {
		if c.Status != ContactAccepted {
			continue
		}
		if (c.FromUserID == a && c.ToUserID == b) || (c.FromUserID == b && c.ToUserID == a) {
			return true
		}
	}
	return false
}
