package usecase

import (
	"context"

	chat "go-chatline/internal/pkg/chat/application/domain"
	repository "go-chatline/internal/pkg/chat/persistence/repository/port"
)

type UnreadCountInput struct {
	UserID int64
}

// UnreadCountUseCase computes, on demand, how many messages in each of the
// user's conversations are newer than that membership's watermark.
type UnreadCountUseCase struct {
	Repo repository.ChatRepository
}

func NewUnreadCountUseCase(repo repository.ChatRepository) *UnreadCountUseCase {
	return &UnreadCountUseCase{Repo: repo}
}

func (uc *UnreadCountUseCase) Execute(ctx context.Context, in UnreadCountInput) (*chat.UnreadSummary, error) {
	memberships, err := uc.Repo.ListMembershipsForUser(ctx, in.UserID)
	if err != nil {
		return nil, persistenceErr(err)
	}
	summary := chat.NewUnreadSummary()
	for _, m := range memberships {
		n, err := uc.Repo.CountMessagesAfter(ctx, m.ConversationID, m.Watermark())
		if err != nil {
			return nil, persistenceErr(err)
		}
		summary.Add(m.ConversationID, n)
	}
	return &summary, nil
}
