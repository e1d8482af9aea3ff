package chat

// User is the subset of the account record the chat core reads.
type User struct {
	ID       int64  `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
}

// Identity is the authenticated user attached to a request or connection at handshake time.
type Identity struct {
	UserID   int64
	Username string
}

// Valid reports whether the identity names a user.
func (i *Identity) Valid() bool {
	return i != nil && i.UserID > 0
}
