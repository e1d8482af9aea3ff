package usecase

import (
	"context"

	chat "go-chatline/internal/pkg/chat/application/domain"
	repository "go-chatline/internal/pkg/chat/persistence/repository/port"
)

type ListConversationsInput struct {
	UserID int64
	Kind   chat.ConversationKind // empty lists every kind
}

// ConversationView is a conversation with its members.
type ConversationView struct {
	chat.Conversation
	Members []chat.Membership `json:"members"`
}

// ListConversationsUseCase lists the caller's conversations, newest first.
type ListConversationsUseCase struct {
	Repo repository.ConversationRepository
}

func NewListConversationsUseCase(repo repository.ConversationRepository) *ListConversationsUseCase {
	return &ListConversationsUseCase{Repo: repo}
}

func (uc *ListConversationsUseCase) Execute(ctx context.Context, in ListConversationsInput) ([]ConversationView, error) {
	if in.Kind != "" && !in.Kind.Valid() {
		return nil, chat.ErrInvalidKind
	}
	convs, err := uc.Repo.ListConversationsForUser(ctx, in.UserID, in.Kind)
	if err != nil {
		return nil, persistenceErr(err)
	}
	out := make([]ConversationView, 0, len(convs))
	for _, c := range convs {
		members, err := uc.Repo.ListMembers(ctx, c.ID)
		if err != nil {
			return nil, persistenceErr(err)
		}
		out = append(out, ConversationView{Conversation: c, Members: members})
	}
	return out, nil
}
