package usecase

import (
	"context"
	"time"

	repository "go-chatline/internal/pkg/chat/persistence/repository/port"
)

type MarkReadInput struct {
	ConversationID int64
	UserID         int64
}

// MarkReadUseCase moves the caller's watermark to now. The watermark never
// moves backwards and never lands before the newest stored message, so a
// mark-read always clears the conversation's unread count even when the
// application and database clocks disagree.
type MarkReadUseCase struct {
	Repo  repository.ChatRepository
	Guard *AuthorizationGuard
	Now   func() time.Time
}

func NewMarkReadUseCase(repo repository.ChatRepository, guard *AuthorizationGuard) *MarkReadUseCase {
	return &MarkReadUseCase{Repo: repo, Guard: guard, Now: time.Now}
}

func (uc *MarkReadUseCase) Execute(ctx context.Context, in MarkReadInput) (time.Time, error) {
	m, err := uc.Guard.Membership(ctx, in.ConversationID, in.UserID)
	if err != nil {
		return time.Time{}, err
	}

	at := m.AdvanceWatermark(uc.Now())
	latest, err := uc.Repo.ListMessages(ctx, in.ConversationID, 1)
	if err != nil {
		return time.Time{}, persistenceErr(err)
	}
	if len(latest) == 1 && latest[0].CreatedAt.After(at) {
		at = latest[0].CreatedAt.UTC()
	}

	if err := uc.Repo.SetLastRead(ctx, m.ID, at); err != nil {
		return time.Time{}, persistenceErr(err)
	}
	return at, nil
}
