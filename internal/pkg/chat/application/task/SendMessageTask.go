package task

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	qport "go-chatline/internal/infrastructure/queue/port"
	chat "go-chatline/internal/pkg/chat/application/domain"
	"go-chatline/internal/pkg/chat/application/usecase"
)

// SendMessageTaskType is the queue task name for sending a message within the chat domain.
const SendMessageTaskType = "chat:send_message"

// SendMessageQueue is the asynq queue send tasks are routed to.
const SendMessageQueue = "chat"

const (
	sendMessageMaxRetry = 5
	sendMessageTimeout  = 10 * time.Second
)

// SendMessageTaskPayload is the JSON payload transported via the queue.
// Kept decoupled from domain types to avoid tight coupling with JSON tags.
type SendMessageTaskPayload struct {
	ConversationID int64   `json:"conversation_id"`
	SenderID       int64   `json:"sender_id"`
	Content        string  `json:"content"`
	Attachment     *string `json:"attachment,omitempty"`
}

// Enqueuer puts send requests on the queue for the worker.
type Enqueuer struct {
	client qport.Client
}

func NewEnqueuer(client qport.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

var _ usecase.MessageEnqueuer = (*Enqueuer)(nil)

func (e *Enqueuer) EnqueueSendMessage(ctx context.Context, in usecase.SendMessageInput) (string, error) {
	payload, err := json.Marshal(SendMessageTaskPayload{
		ConversationID: in.ConversationID,
		SenderID:       in.SenderID,
		Content:        in.Content,
		Attachment:     in.Attachment,
	})
	if err != nil {
		return "", err
	}
	return e.client.Enqueue(ctx, qport.Task{Type: SendMessageTaskType, Payload: payload}, qport.EnqueueOption{
		Queue:    SendMessageQueue,
		MaxRetry: sendMessageMaxRetry,
		Timeout:  sendMessageTimeout,
	})
}

// RegisterSendMessageTask binds the task handler to the provided server.
// The handler runs the same send path as the live session, so membership and
// contact status are checked again at execution time. Malformed payloads and
// rejected messages are not retried; store failures are.
func RegisterSendMessageTask(srv qport.Server, send *usecase.SendMessageUseCase) {
	srv.Register(SendMessageTaskType, func(ctx context.Context, t qport.Task) error {
		var p SendMessageTaskPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			return fmt.Errorf("decode %s: %v: %w", SendMessageTaskType, err, qport.ErrSkipRetry)
		}

		// give DB a reasonable time budget per task execution
		ctx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
		defer cancel()

		_, err := send.Execute(ctx, usecase.SendMessageInput{
			ConversationID: p.ConversationID,
			SenderID:       p.SenderID,
			Content:        p.Content,
			Attachment:     p.Attachment,
			Source:         usecase.SourceQueue,
		})
		if err != nil && chat.IsDomainError(err) {
			return fmt.Errorf("%w: %w", err, qport.ErrSkipRetry)
		}
		return err
	})
}
