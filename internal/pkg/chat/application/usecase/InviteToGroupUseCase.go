package usecase

import (
	"context"
	"errors"
	"strings"

	chat "go-chatline/internal/pkg/chat/application/domain"
	repository "go-chatline/internal/pkg/chat/persistence/repository/port"
)

type InviteToGroupInput struct {
	ConversationID int64
	InviterID      int64
	Username       string
}

// InviteToGroupUseCase lets a group admin invite another user.
type InviteToGroupUseCase struct {
	Repo  repository.ChatRepository
	Guard *AuthorizationGuard
}

func NewInviteToGroupUseCase(repo repository.ChatRepository, guard *AuthorizationGuard) *InviteToGroupUseCase {
	return &InviteToGroupUseCase{Repo: repo, Guard: guard}
}

func (uc *InviteToGroupUseCase) Execute(ctx context.Context, in InviteToGroupInput) (*chat.GroupInvitation, error) {
	username := strings.TrimSpace(in.Username)
	if in.ConversationID == 0 || username == "" {
		return nil, chat.ErrMissingIdentifiers
	}

	conv, err := uc.Repo.GetConversation(ctx, in.ConversationID)
	if err != nil {
		return nil, persistenceErr(err)
	}
	if conv.Kind != chat.ConversationGroup {
		return nil, chat.ErrNotGroup
	}

	inviter, err := uc.Guard.Membership(ctx, conv.ID, in.InviterID)
	if errors.Is(err, chat.ErrNotParticipant) || (err == nil && !inviter.IsAdmin) {
		return nil, chat.ErrNotAdmin
	}
	if err != nil {
		return nil, err
	}

	target, err := uc.Repo.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, persistenceErr(err)
	}
	isMember, err := uc.Guard.IsMember(ctx, conv.ID, target.ID)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, chat.ErrAlreadyMember
	}

	_, err = uc.Repo.FindInvitation(ctx, conv.ID, target.ID)
	if err == nil {
		return nil, chat.ErrInvitationExists
	}
	if !errors.Is(err, chat.ErrNotFound) {
		return nil, persistenceErr(err)
	}

	inv, err := uc.Repo.CreateInvitation(ctx, conv.ID, in.InviterID, target.ID)
	if err != nil {
		return nil, persistenceErr(err)
	}
	return inv, nil
}
