package repository

import (
	"context"
	"time"

	chat "go-chatline/internal/pkg/chat/application/domain"
)

// Lookups that find nothing return an error wrapping chat.ErrNotFound;
// uniqueness violations return an error wrapping chat.ErrConflict. Anything
// else is an infrastructure failure.

// ConversationRepository owns conversations and memberships.
type ConversationRepository interface {
	GetConversation(ctx context.Context, id int64) (*chat.Conversation, error)
	// FindGroupsByName returns every group conversation with the exact name.
	FindGroupsByName(ctx context.Context, name string) ([]chat.Conversation, error)
	// CreateGroup inserts a group and its creator's admin membership atomically.
	CreateGroup(ctx context.Context, name string, creatorID int64) (*chat.Conversation, error)
	// FindDirect returns the direct conversation shared by a and b.
	FindDirect(ctx context.Context, a, b int64) (*chat.Conversation, error)
	// CreateDirect inserts a direct conversation with both memberships atomically; creator is admin.
	CreateDirect(ctx context.Context, creatorID, otherID int64) (*chat.Conversation, error)
	ListConversationsForUser(ctx context.Context, userID int64, kind chat.ConversationKind) ([]chat.Conversation, error)

	GetMembership(ctx context.Context, conversationID, userID int64) (*chat.Membership, error)
	// GetOtherMembership returns any membership of the conversation not owned by excludingUserID.
	GetOtherMembership(ctx context.Context, conversationID, excludingUserID int64) (*chat.Membership, error)
	// AddMembership is get-or-create on (conversation, user).
	AddMembership(ctx context.Context, conversationID, userID int64, isAdmin bool) (*chat.Membership, error)
	ListMembers(ctx context.Context, conversationID int64) ([]chat.Membership, error)
	ListMembershipsForUser(ctx context.Context, userID int64) ([]chat.Membership, error)
	SetLastRead(ctx context.Context, membershipID int64, at time.Time) error
}

// MessageRepository owns the message log.
type MessageRepository interface {
	// CreateMessage durably appends a message and returns it with its generated
	// id, server timestamp and sender username. It must be committed on return.
	CreateMessage(ctx context.Context, m chat.Message) (*chat.Message, error)
	// ListMessages returns up to limit of the most recent messages in ascending (created_at, id) order.
	ListMessages(ctx context.Context, conversationID int64, limit int) ([]chat.Message, error)
	// CountMessagesAfter counts messages with created_at strictly greater than after.
	CountMessagesAfter(ctx context.Context, conversationID int64, after time.Time) (int, error)
}

// ContactRepository owns directed contact rows.
type ContactRepository interface {
	HasAcceptedContact(ctx context.Context, a, b int64) (bool, error)
	// GetContactBetween returns a row in either direction between a and b.
	GetContactBetween(ctx context.Context, a, b int64) (*chat.Contact, error)
	GetContact(ctx context.Context, id int64) (*chat.Contact, error)
	CreateContact(ctx context.Context, fromUserID, toUserID int64) (*chat.Contact, error)
	UpdateContactStatus(ctx context.Context, id int64, status chat.ContactStatus) (*chat.Contact, error)
	DeleteContact(ctx context.Context, id int64) error
	ListAcceptedContacts(ctx context.Context, userID int64) ([]chat.Contact, error)
	ListPendingContacts(ctx context.Context, toUserID int64) ([]chat.Contact, error)
}

// InvitationRepository owns group invitations.
type InvitationRepository interface {
	GetInvitation(ctx context.Context, id int64) (*chat.GroupInvitation, error)
	FindInvitation(ctx context.Context, conversationID, toUserID int64) (*chat.GroupInvitation, error)
	CreateInvitation(ctx context.Context, conversationID, fromUserID, toUserID int64) (*chat.GroupInvitation, error)
	// AcceptInvitation marks the invitation accepted and get-or-creates a
	// non-admin membership in one transaction.
	AcceptInvitation(ctx context.Context, id int64) (*chat.GroupInvitation, *chat.Membership, error)
	UpdateInvitationStatus(ctx context.Context, id int64, status chat.InvitationStatus) (*chat.GroupInvitation, error)
	ListPendingInvitations(ctx context.Context, toUserID int64) ([]chat.GroupInvitation, error)
}

// ChatRepository is the full persistence store the chat service depends on.
type ChatRepository interface {
	ConversationRepository
	MessageRepository
	ContactRepository
	InvitationRepository
	UserRepository
}
