package usecase

import (
	"context"
	"errors"
	"strings"

	chat "go-chatline/internal/pkg/chat/application/domain"
	repository "go-chatline/internal/pkg/chat/persistence/repository/port"
)

type JoinGroupInput struct {
	ConversationID int64
	ActorID        int64
	// Username is the user to add; empty means the actor.
	Username string
}

// JoinGroupUseCase adds a user to a group directly, skipping the invitation
// round trip. Only group admins may add anyone; for a current member joining
// again is a no-op.
type JoinGroupUseCase struct {
	Repo  repository.ChatRepository
	Guard *AuthorizationGuard
}

func NewJoinGroupUseCase(repo repository.ChatRepository, guard *AuthorizationGuard) *JoinGroupUseCase {
	return &JoinGroupUseCase{Repo: repo, Guard: guard}
}

func (uc *JoinGroupUseCase) Execute(ctx context.Context, in JoinGroupInput) (*chat.Membership, error) {
	if in.ConversationID == 0 || in.ActorID == 0 {
		return nil, chat.ErrMissingIdentifiers
	}

	conv, err := uc.Repo.GetConversation(ctx, in.ConversationID)
	if err != nil {
		return nil, persistenceErr(err)
	}
	if conv.Kind != chat.ConversationGroup {
		return nil, chat.ErrNotGroup
	}

	actor, err := uc.Guard.Membership(ctx, conv.ID, in.ActorID)
	if errors.Is(err, chat.ErrNotParticipant) {
		return nil, chat.ErrAdminJoinOnly
	}
	if err != nil {
		return nil, err
	}

	targetID := in.ActorID
	if username := strings.TrimSpace(in.Username); username != "" {
		target, err := uc.Repo.FindUserByUsername(ctx, username)
		if err != nil {
			return nil, persistenceErr(err)
		}
		targetID = target.ID
	}
	if targetID == in.ActorID {
		return actor, nil
	}
	if !actor.IsAdmin {
		return nil, chat.ErrAdminJoinOnly
	}

	m, err := uc.Repo.AddMembership(ctx, conv.ID, targetID, false)
	if err != nil {
		return nil, persistenceErr(err)
	}
	return m, nil
}
