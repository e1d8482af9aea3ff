package usecase

import (
	"context"
	"errors"
	"strings"

	chat "go-chatline/internal/pkg/chat/application/domain"
	repository "go-chatline/internal/pkg/chat/persistence/repository/port"
)

// CreateDirectInput names the counterpart by id or, when RequireContact is
// set, by username.
type CreateDirectInput struct {
	CreatorID    int64
	TargetUserID int64
	Username     string
}

// CreateDirectUseCase opens, or reuses, the direct conversation between two users.
// The by-id variant only needs the target to exist; the by-username variant
// additionally requires an accepted contact.
type CreateDirectUseCase struct {
	Repo           repository.ChatRepository
	Guard          *AuthorizationGuard
	RequireContact bool
}

func NewCreateDirectUseCase(repo repository.ChatRepository, guard *AuthorizationGuard) *CreateDirectUseCase {
	return &CreateDirectUseCase{Repo: repo, Guard: guard}
}

func NewCreateDirectByUsernameUseCase(repo repository.ChatRepository, guard *AuthorizationGuard) *CreateDirectUseCase {
	return &CreateDirectUseCase{Repo: repo, Guard: guard, RequireContact: true}
}

func (uc *CreateDirectUseCase) Execute(ctx context.Context, in CreateDirectInput) (*chat.Conversation, error) {
	if in.CreatorID == 0 {
		return nil, chat.ErrMissingIdentifiers
	}
	target, err := uc.target(ctx, in)
	if err != nil {
		return nil, err
	}
	if target.ID == in.CreatorID {
		return nil, chat.ErrSelfTarget
	}

	if uc.RequireContact {
		ok, err := uc.Guard.IsInContact(ctx, in.CreatorID, target.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, chat.ErrContactMissing
		}
	}

	existing, err := uc.Repo.FindDirect(ctx, in.CreatorID, target.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, chat.ErrNotFound) {
		return nil, persistenceErr(err)
	}

	conv, err := uc.Repo.CreateDirect(ctx, in.CreatorID, target.ID)
	if err != nil {
		return nil, persistenceErr(err)
	}
	return conv, nil
}

func (uc *CreateDirectUseCase) target(ctx context.Context, in CreateDirectInput) (*chat.User, error) {
	var (
		u   *chat.User
		err error
	)
	if uc.RequireContact || in.TargetUserID == 0 {
		username := strings.TrimSpace(in.Username)
		if username == "" {
			if uc.RequireContact {
				return nil, chat.ErrUsernameRequired
			}
			return nil, chat.ErrMissingIdentifiers
		}
		u, err = uc.Repo.FindUserByUsername(ctx, username)
	} else {
		u, err = uc.Repo.FindUserByID(ctx, in.TargetUserID)
	}
	if errors.Is(err, chat.ErrNotFound) {
		return nil, chat.ErrUserNotFound
	}
	if err != nil {
		return nil, persistenceErr(err)
	}
	return u, nil
}
