package usecase

import (
	"context"
	"errors"

	chat "go-chatline/internal/pkg/chat/application/domain"
	repository "go-chatline/internal/pkg/chat/persistence/repository/port"
)

// MaxHistoryLimit caps a single history page.
const MaxHistoryLimit = 200

// GetMessageInput carries parameters to fetch messages of a conversation
type GetMessageInput struct {
	ConversationID int64
	UserID         int64
	Limit          int
}

// GetMessageUseCase returns the most recent messages of a conversation to one of its members.
type GetMessageUseCase struct {
	Repo         repository.ChatRepository
	Guard        *AuthorizationGuard
	DefaultLimit int
}

func NewGetMessageUseCase(repo repository.ChatRepository, guard *AuthorizationGuard, defaultLimit int) *GetMessageUseCase {
	if defaultLimit <= 0 || defaultLimit > MaxHistoryLimit {
		defaultLimit = MaxHistoryLimit
	}
	return &GetMessageUseCase{Repo: repo, Guard: guard, DefaultLimit: defaultLimit}
}

// Execute returns up to Limit messages ascending by (created_at, id).
func (uc *GetMessageUseCase) Execute(ctx context.Context, in GetMessageInput) ([]chat.Message, error) {
	if in.ConversationID == 0 {
		return nil, chat.ErrMissingIdentifiers
	}
	if _, err := uc.Repo.GetConversation(ctx, in.ConversationID); err != nil {
		if errors.Is(err, chat.ErrNotFound) {
			return nil, chat.ErrConversationNotFound
		}
		return nil, persistenceErr(err)
	}
	if _, err := uc.Guard.Membership(ctx, in.ConversationID, in.UserID); err != nil {
		return nil, err
	}

	limit := in.Limit
	if limit <= 0 {
		limit = uc.DefaultLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	msgs, err := uc.Repo.ListMessages(ctx, in.ConversationID, limit)
	if err != nil {
		return nil, persistenceErr(err)
	}
	chat.SortMessages(msgs)
	return msgs, nil
}
