package chat

import "time"

// Membership links one user to one conversation.
// Primary key: ID; unique on (ConversationID, UserID).
type Membership struct {
	ID             int64      `db:"id" json:"id"`
	ConversationID int64      `db:"conversation_id" json:"conversation"`
	UserID         int64      `db:"user_id" json:"user_id"`
	Username       string     `db:"username" json:"username"`
	IsAdmin        bool       `db:"is_admin" json:"is_admin"`
	JoinedAt       time.Time  `db:"joined_at" json:"joined_at"`
	LastReadAt     *time.Time `db:"last_read_at" json:"last_read_at"`
}

// Watermark returns the last-read timestamp, treating an unset value as the epoch.
func (m Membership) Watermark() time.Time {
	if m.LastReadAt == nil {
		return time.Unix(0, 0).UTC()
	}
	return *m.LastReadAt
}

// AdvanceWatermark returns the new last-read value for a mark-read at now.
// The watermark never moves backwards.
func (m Membership) AdvanceWatermark(now time.Time) time.Time {
	now = now.UTC()
	if m.LastReadAt != nil && m.LastReadAt.After(now) {
		return *m.LastReadAt
	}
	return now
}
