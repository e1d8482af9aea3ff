package usecase

import (
	"context"

	chat "go-chatline/internal/pkg/chat/application/domain"
	repository "go-chatline/internal/pkg/chat/persistence/repository/port"
)

type RespondContactRequestInput struct {
	ContactID int64
	UserID    int64
	Status    chat.ContactStatus
}

// RespondContactRequestUseCase lets the recipient accept, decline or block.
// Declining and blocking both end in the blocked status.
type RespondContactRequestUseCase struct {
	Repo repository.ContactRepository
}

func NewRespondContactRequestUseCase(repo repository.ContactRepository) *RespondContactRequestUseCase {
	return &RespondContactRequestUseCase{Repo: repo}
}

func (uc *RespondContactRequestUseCase) Execute(ctx context.Context, in RespondContactRequestInput) (*chat.Contact, error) {
	c, err := uc.Repo.GetContact(ctx, in.ContactID)
	if err != nil {
		return nil, persistenceErr(err)
	}
	if !c.Involves(in.UserID) {
		return nil, chat.ErrContactNotFound
	}
	if err := c.Transition(in.UserID, in.Status); err != nil {
		return nil, err
	}
	updated, err := uc.Repo.UpdateContactStatus(ctx, c.ID, in.Status)
	if err != nil {
		return nil, persistenceErr(err)
	}
	return updated, nil
}
