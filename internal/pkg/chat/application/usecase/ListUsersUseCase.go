package usecase

import (
	"context"

	chat "go-chatline/internal/pkg/chat/application/domain"
	repository "go-chatline/internal/pkg/chat/persistence/repository/port"
)

// ListUsersUseCase returns every account, for picking invitees and contacts.
type ListUsersUseCase struct {
	Repo repository.UserRepository
}

func NewListUsersUseCase(repo repository.UserRepository) *ListUsersUseCase {
	return &ListUsersUseCase{Repo: repo}
}

func (uc *ListUsersUseCase) Execute(ctx context.Context) ([]chat.User, error) {
	users, err := uc.Repo.ListUsers(ctx)
	if err != nil {
		return nil, persistenceErr(err)
	}
	return users, nil
}
