package usecase

import (
	"context"

	chat "go-chatline/internal/pkg/chat/application/domain"
	repository "go-chatline/internal/pkg/chat/persistence/repository/port"
)

type DeleteContactInput struct {
	ContactID int64
	UserID    int64
}

// DeleteContactUseCase removes a contact row; either side may do it.
type DeleteContactUseCase struct {
	Repo repository.ContactRepository
}

func NewDeleteContactUseCase(repo repository.ContactRepository) *DeleteContactUseCase {
	return &DeleteContactUseCase{Repo: repo}
}

func (uc *DeleteContactUseCase) Execute(ctx context.Context, in DeleteContactInput) error {
	c, err := uc.Repo.GetContact(ctx, in.ContactID)
	if err != nil {
		return persistenceErr(err)
	}
	if !c.Involves(in.UserID) {
		return chat.ErrNotContactSide
	}
	return persistenceErr(uc.Repo.DeleteContact(ctx, c.ID))
}
