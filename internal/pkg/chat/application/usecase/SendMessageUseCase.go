package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"go-chatline/internal/infrastructure/metrics"
	chat "go-chatline/internal/pkg/chat/application/domain"
	repository "go-chatline/internal/pkg/chat/persistence/repository/port"
)

// Entry paths of a message, used as the metrics source label.
const (
	SourceSession = "session"
	SourceREST    = "rest"
	SourceQueue   = "queue"
)

// SendMessageInput carries the data needed to send a new message.
type SendMessageInput struct {
	ConversationID int64
	SenderID       int64
	Content        string
	Attachment     *string
	Source         string
}

// SendMessageUseCase authorizes, persists and then broadcasts one message.
// The Chat aggregate is hydrated per call, so membership and contact status
// are re-read for every message. The broadcast starts only after the store has
// returned the committed row; a failed broadcast is logged and does not undo it.
type SendMessageUseCase struct {
	Conversations repository.ConversationRepository
	Messages      repository.MessageRepository
	Guard         *AuthorizationGuard
	Broadcaster   *BroadcastMessageUseCase
	Log           zerolog.Logger
}

func NewSendMessageUseCase(repo repository.ChatRepository, guard *AuthorizationGuard, broadcaster *BroadcastMessageUseCase, log zerolog.Logger) *SendMessageUseCase {
	return &SendMessageUseCase{
		Conversations: repo,
		Messages:      repo,
		Guard:         guard,
		Broadcaster:   broadcaster,
		Log:           log.With().Str("component", "send_message").Logger(),
	}
}

// Execute sends/persists a new message for a conversation
func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*chat.Message, error) {
	if in.ConversationID == 0 || in.SenderID == 0 {
		return nil, chat.ErrMissingIdentifiers
	}
	source := in.Source
	if source == "" {
		source = SourceREST
	}

	conv, err := uc.Conversations.GetConversation(ctx, in.ConversationID)
	if errors.Is(err, chat.ErrNotFound) {
		return nil, chat.ErrConversationNotFound
	}
	if err != nil {
		return nil, persistenceErr(err)
	}

	agg, err := uc.Guard.HydrateChat(ctx, *conv, in.SenderID)
	if err != nil {
		uc.reject(err, in)
		return nil, err
	}
	draft, err := agg.PostMessage(chat.Message{
		ConversationID: in.ConversationID,
		SenderID:       in.SenderID,
		Content:        in.Content,
		Attachment:     in.Attachment,
	})
	if err != nil {
		uc.reject(err, in)
		return nil, err
	}

	start := time.Now()
	stored, err := uc.Messages.CreateMessage(ctx, draft)
	metrics.PersistDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		uc.Log.Error().Err(err).Int64("conversation_id", in.ConversationID).Int64("sender_id", in.SenderID).Msg("persist message failed")
		return nil, persistenceErr(err)
	}
	metrics.MessagesPersisted.WithLabelValues(source).Inc()

	if err := uc.Broadcaster.Execute(ctx, BroadcastMessageInput{Message: *stored}); err != nil {
		uc.Log.Error().Err(err).Int64("message_id", stored.ID).Int64("conversation_id", stored.ConversationID).Msg("broadcast failed")
	}
	return stored, nil
}

func (uc *SendMessageUseCase) reject(err error, in SendMessageInput) {
	reason := "invalid"
	switch {
	case errors.Is(err, chat.ErrNotInContact):
		reason = "not_in_contact"
	case errors.Is(err, chat.ErrNotParticipant):
		reason = "not_member"
	case !chat.IsDomainError(err):
		reason = "persistence"
	}
	metrics.MessagesRejected.WithLabelValues(reason).Inc()
	uc.Log.Debug().Err(err).Str("reason", reason).Int64("conversation_id", in.ConversationID).Int64("sender_id", in.SenderID).Msg("message rejected")
}
