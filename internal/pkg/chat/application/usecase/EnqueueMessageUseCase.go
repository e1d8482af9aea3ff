package usecase

import (
	"context"
	"strings"

	chat "go-chatline/internal/pkg/chat/application/domain"
)

// MessageEnqueuer hands a send request to the background queue.
type MessageEnqueuer interface {
	EnqueueSendMessage(ctx context.Context, in SendMessageInput) (taskID string, err error)
}

// EnqueueMessageUseCase accepts a message for asynchronous delivery. Only cheap
// checks run here; the worker re-runs the full send path, contact gate included.
type EnqueueMessageUseCase struct {
	Guard *AuthorizationGuard
	Queue MessageEnqueuer
}

func NewEnqueueMessageUseCase(guard *AuthorizationGuard, queue MessageEnqueuer) *EnqueueMessageUseCase {
	return &EnqueueMessageUseCase{Guard: guard, Queue: queue}
}

func (uc *EnqueueMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (string, error) {
	if in.ConversationID == 0 || in.SenderID == 0 {
		return "", chat.ErrMissingIdentifiers
	}
	if strings.TrimSpace(in.Content) == "" && (in.Attachment == nil || strings.TrimSpace(*in.Attachment) == "") {
		return "", chat.ErrEmptyMessage
	}
	if _, err := uc.Guard.Membership(ctx, in.ConversationID, in.SenderID); err != nil {
		return "", err
	}
	in.Source = SourceQueue
	id, err := uc.Queue.EnqueueSendMessage(ctx, in)
	if err != nil {
		return "", persistenceErr(err)
	}
	return id, nil
}
