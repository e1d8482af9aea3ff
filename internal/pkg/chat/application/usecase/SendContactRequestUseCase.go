package usecase

import (
	"context"
	"errors"
	"strings"

	chat "go-chatline/internal/pkg/chat/application/domain"
	repository "go-chatline/internal/pkg/chat/persistence/repository/port"
)

type SendContactRequestInput struct {
	FromUserID int64
	Username   string
}

// SendContactRequestUseCase creates a pending request when no row exists in
// either direction between the two users.
type SendContactRequestUseCase struct {
	Repo repository.ChatRepository
}

func NewSendContactRequestUseCase(repo repository.ChatRepository) *SendContactRequestUseCase {
	return &SendContactRequestUseCase{Repo: repo}
}

func (uc *SendContactRequestUseCase) Execute(ctx context.Context, in SendContactRequestInput) (*chat.Contact, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, chat.ErrUsernameRequired
	}
	target, err := uc.Repo.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, persistenceErr(err)
	}
	if target.ID == in.FromUserID {
		return nil, chat.ErrSelfTarget
	}

	_, err = uc.Repo.GetContactBetween(ctx, in.FromUserID, target.ID)
	if err == nil {
		return nil, chat.ErrContactExists
	}
	if !errors.Is(err, chat.ErrNotFound) {
		return nil, persistenceErr(err)
	}

	c, err := uc.Repo.CreateContact(ctx, in.FromUserID, target.ID)
	if err != nil {
		return nil, persistenceErr(err)
	}
	return c, nil
}
