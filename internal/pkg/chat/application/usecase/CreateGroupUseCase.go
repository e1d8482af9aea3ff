package usecase

import (
	"context"
	"strings"

	chat "go-chatline/internal/pkg/chat/application/domain"
	repository "go-chatline/internal/pkg/chat/persistence/repository/port"
)

// CreateGroupInput carries the required data to open a new group conversation.
type CreateGroupInput struct {
	CreatorID int64
	Name      string
}

// CreateGroupUseCase creates a named group; the creator becomes its admin member.
type CreateGroupUseCase struct {
	Repo repository.ConversationRepository
}

func NewCreateGroupUseCase(repo repository.ConversationRepository) *CreateGroupUseCase {
	return &CreateGroupUseCase{Repo: repo}
}

func (uc *CreateGroupUseCase) Execute(ctx context.Context, in CreateGroupInput) (*chat.Conversation, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, chat.ErrNameRequired
	}
	if in.CreatorID == 0 {
		return nil, chat.ErrMissingIdentifiers
	}
	// Digit-only names would be shadowed by id lookups on the room route.
	if _, numeric := chat.ParseConversationID(name); numeric {
		return nil, chat.ErrInvalidGroupName
	}

	groups, err := uc.Repo.FindGroupsByName(ctx, name)
	if err != nil {
		return nil, persistenceErr(err)
	}
	if len(groups) > 0 {
		return nil, chat.ErrDuplicateGroupName
	}

	conv, err := uc.Repo.CreateGroup(ctx, name, in.CreatorID)
	if err != nil {
		return nil, persistenceErr(err)
	}
	return conv, nil
}
