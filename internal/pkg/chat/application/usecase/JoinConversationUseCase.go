package usecase

import (
	"context"

	chat "go-chatline/internal/pkg/chat/application/domain"
)

// JoinConversationInput is a request to attach a live session to a room.
type JoinConversationInput struct {
	Identity *chat.Identity
	Room     string
}

// JoinConversationOutput is what an authorized session needs to run.
type JoinConversationOutput struct {
	Conversation chat.Conversation
	Membership   chat.Membership
}

// JoinConversationUseCase authorizes a session at connect time: identity,
// then room resolution, then membership.
type JoinConversationUseCase struct {
	Resolver *ResolveConversationUseCase
	Guard    *AuthorizationGuard
}

func NewJoinConversationUseCase(resolver *ResolveConversationUseCase, guard *AuthorizationGuard) *JoinConversationUseCase {
	return &JoinConversationUseCase{Resolver: resolver, Guard: guard}
}

func (uc *JoinConversationUseCase) Execute(ctx context.Context, in JoinConversationInput) (*JoinConversationOutput, error) {
	if !in.Identity.Valid() {
		return nil, chat.ErrUnauthenticated
	}
	conv, err := uc.Resolver.Execute(ctx, ResolveConversationInput{Identifier: in.Room})
	if err != nil {
		return nil, err
	}
	m, err := uc.Guard.Membership(ctx, conv.ID, in.Identity.UserID)
	if err != nil {
		return nil, err
	}
	return &JoinConversationOutput{Conversation: *conv, Membership: *m}, nil
}
