package usecase

import (
	"context"
	"errors"

	chat "go-chatline/internal/pkg/chat/application/domain"
	repository "go-chatline/internal/pkg/chat/persistence/repository/port"
)

// AuthorizationGuard answers membership and contact questions straight from
// the store. It never caches a verdict and fails closed: any lookup error is
// returned to the caller, never treated as an allow.
type AuthorizationGuard struct {
	Conversations repository.ConversationRepository
	Contacts      repository.ContactRepository
}

func NewAuthorizationGuard(conversations repository.ConversationRepository, contacts repository.ContactRepository) *AuthorizationGuard {
	return &AuthorizationGuard{Conversations: conversations, Contacts: contacts}
}

// IsMember is true iff a membership row exists for (conversationID, userID).
func (g *AuthorizationGuard) IsMember(ctx context.Context, conversationID, userID int64) (bool, error) {
	_, err := g.Membership(ctx, conversationID, userID)
	if errors.Is(err, chat.ErrNotParticipant) {
		return false, nil
	}
	return err == nil, err
}

// Membership returns the caller's membership or chat.ErrNotParticipant.
func (g *AuthorizationGuard) Membership(ctx context.Context, conversationID, userID int64) (*chat.Membership, error) {
	m, err := g.Conversations.GetMembership(ctx, conversationID, userID)
	if errors.Is(err, chat.ErrNotFound) {
		return nil, chat.ErrNotParticipant
	}
	if err != nil {
		return nil, persistenceErr(err)
	}
	return m, nil
}

// IsInContact is true iff an accepted contact exists in either direction.
func (g *AuthorizationGuard) IsInContact(ctx context.Context, a, b int64) (bool, error) {
	if a == 0 || b == 0 || a == b {
		return false, nil
	}
	ok, err := g.Contacts.HasAcceptedContact(ctx, a, b)
	if err != nil {
		return false, persistenceErr(err)
	}
	return ok, nil
}

// ResolveOtherMember returns the membership that is not userID's, or nil when
// the conversation has no second member.
func (g *AuthorizationGuard) ResolveOtherMember(ctx context.Context, conversationID, userID int64) (*chat.Membership, error) {
	m, err := g.Conversations.GetOtherMembership(ctx, conversationID, userID)
	if errors.Is(err, chat.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, persistenceErr(err)
	}
	return m, nil
}

// HydrateChat builds the send-time view of conv for userID.
func (g *AuthorizationGuard) HydrateChat(ctx context.Context, conv chat.Conversation, userID int64) (*chat.Chat, error) {
	sender, err := g.Membership(ctx, conv.ID, userID)
	if err != nil {
		return nil, err
	}
	c := &chat.Chat{Conversation: conv, Sender: sender}
	if !conv.IsDirect() {
		return c, nil
	}
	c.Counterpart, err = g.ResolveOtherMember(ctx, conv.ID, userID)
	if err != nil {
		return nil, err
	}
	if c.Counterpart != nil {
		c.InContact, err = g.IsInContact(ctx, userID, c.Counterpart.UserID)
		if err != nil {
			return nil, err
		}
	}
	return c, nil
}
