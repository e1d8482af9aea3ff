package usecase

import (
	"context"

	chat "go-chatline/internal/pkg/chat/application/domain"
	repository "go-chatline/internal/pkg/chat/persistence/repository/port"
)

// ListParticipantsInput wraps the conversation identifier to fetch its participants.
type ListParticipantsInput struct {
	ConversationID int64
	UserID         int64
}

// ListParticipantsUseCase returns the memberships of a conversation to one of its members.
type ListParticipantsUseCase struct {
	Repo  repository.ConversationRepository
	Guard *AuthorizationGuard
}

func NewListParticipantsUseCase(repo repository.ConversationRepository, guard *AuthorizationGuard) *ListParticipantsUseCase {
	return &ListParticipantsUseCase{Repo: repo, Guard: guard}
}

func (uc *ListParticipantsUseCase) Execute(ctx context.Context, in ListParticipantsInput) ([]chat.Membership, error) {
	if in.ConversationID == 0 {
		return nil, chat.ErrMissingIdentifiers
	}
	if _, err := uc.Guard.Membership(ctx, in.ConversationID, in.UserID); err != nil {
		return nil, err
	}
	members, err := uc.Repo.ListMembers(ctx, in.ConversationID)
	if err != nil {
		return nil, persistenceErr(err)
	}
	return members, nil
}
