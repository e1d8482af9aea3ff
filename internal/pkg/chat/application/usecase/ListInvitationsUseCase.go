package usecase

import (
	"context"

	chat "go-chatline/internal/pkg/chat/application/domain"
	repository "go-chatline/internal/pkg/chat/persistence/repository/port"
)

type ListInvitationsInput struct {
	UserID int64
}

// ListInvitationsUseCase lists the caller's pending group invitations.
type ListInvitationsUseCase struct {
	Repo repository.InvitationRepository
}

func NewListInvitationsUseCase(repo repository.InvitationRepository) *ListInvitationsUseCase {
	return &ListInvitationsUseCase{Repo: repo}
}

func (uc *ListInvitationsUseCase) Execute(ctx context.Context, in ListInvitationsInput) ([]chat.GroupInvitation, error) {
	out, err := uc.Repo.ListPendingInvitations(ctx, in.UserID)
	if err != nil {
		return nil, persistenceErr(err)
	}
	return out, nil
}
