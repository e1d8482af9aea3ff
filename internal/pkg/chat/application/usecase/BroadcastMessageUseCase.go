package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	chat "go-chatline/internal/pkg/chat/application/domain"
)

// Publisher delivers an encoded frame to every subscriber of a room.
type Publisher interface {
	Publish(ctx context.Context, roomKey string, payload []byte) error
}

type BroadcastMessageInput struct {
	Message chat.Message
}

// BroadcastMessageUseCase fans a stored message out to its conversation's room.
// Live sessions, the REST send path and queue workers all publish through it.
type BroadcastMessageUseCase struct {
	Bus Publisher
}

func NewBroadcastMessageUseCase(bus Publisher) *BroadcastMessageUseCase {
	return &BroadcastMessageUseCase{Bus: bus}
}

func (uc *BroadcastMessageUseCase) Execute(ctx context.Context, in BroadcastMessageInput) error {
	if in.Message.ID == 0 || in.Message.ConversationID == 0 {
		return chat.ErrMissingIdentifiers
	}
	payload, err := json.Marshal(chat.NewMessageFrame(in.Message))
	if err != nil {
		return fmt.Errorf("encode message frame: %w", err)
	}
	return uc.Bus.Publish(ctx, chat.RoomKey(in.Message.ConversationID), payload)
}
