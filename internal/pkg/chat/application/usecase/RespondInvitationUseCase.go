package usecase

import (
	"context"

	chat "go-chatline/internal/pkg/chat/application/domain"
	repository "go-chatline/internal/pkg/chat/persistence/repository/port"
)

type RespondInvitationInput struct {
	InvitationID int64
	UserID       int64
	Status       chat.InvitationStatus
}

type RespondInvitationOutput struct {
	Invitation chat.GroupInvitation
	Membership *chat.Membership // set when accepted
}

// RespondInvitationUseCase lets the invitee accept (joining as a non-admin
// member in the same transaction) or decline.
type RespondInvitationUseCase struct {
	Repo repository.InvitationRepository
}

func NewRespondInvitationUseCase(repo repository.InvitationRepository) *RespondInvitationUseCase {
	return &RespondInvitationUseCase{Repo: repo}
}

func (uc *RespondInvitationUseCase) Execute(ctx context.Context, in RespondInvitationInput) (*RespondInvitationOutput, error) {
	inv, err := uc.Repo.GetInvitation(ctx, in.InvitationID)
	if err != nil {
		return nil, persistenceErr(err)
	}
	if inv.ToUserID != in.UserID {
		return nil, chat.ErrInvitationNotFound
	}
	if err := inv.Respond(in.UserID, in.Status); err != nil {
		return nil, err
	}

	if in.Status == chat.InvitationAccepted {
		accepted, m, err := uc.Repo.AcceptInvitation(ctx, inv.ID)
		if err != nil {
			return nil, persistenceErr(err)
		}
		return &RespondInvitationOutput{Invitation: *accepted, Membership: m}, nil
	}

	declined, err := uc.Repo.UpdateInvitationStatus(ctx, inv.ID, in.Status)
	if err != nil {
		return nil, persistenceErr(err)
	}
	return &RespondInvitationOutput{Invitation: *declined}, nil
}
