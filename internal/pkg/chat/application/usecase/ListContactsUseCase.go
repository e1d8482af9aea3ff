package usecase

import (
	"context"

	chat "go-chatline/internal/pkg/chat/application/domain"
	repository "go-chatline/internal/pkg/chat/persistence/repository/port"
)

type ListContactsInput struct {
	UserID int64
	// Pending lists requests received and still pending instead of accepted contacts.
	Pending bool
}

type ListContactsUseCase struct {
	Repo repository.ContactRepository
}

func NewListContactsUseCase(repo repository.ContactRepository) *ListContactsUseCase {
	return &ListContactsUseCase{Repo: repo}
}

func (uc *ListContactsUseCase) Execute(ctx context.Context, in ListContactsInput) ([]chat.Contact, error) {
	var (
		out []chat.Contact
		err error
	)
	if in.Pending {
		out, err = uc.Repo.ListPendingContacts(ctx, in.UserID)
	} else {
		out, err = uc.Repo.ListAcceptedContacts(ctx, in.UserID)
	}
	if err != nil {
		return nil, persistenceErr(err)
	}
	return out, nil
}
