package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	cport "go-chatline/internal/infrastructure/cache/port"
	chat "go-chatline/internal/pkg/chat/application/domain"
	repository "go-chatline/internal/pkg/chat/persistence/repository/port"
)

const roomCachePrefix = "room:"

// ResolveConversationInput names a room by numeric id or by group name.
type ResolveConversationInput struct {
	Identifier string
}

// ResolveConversationUseCase maps a room identifier to exactly one conversation.
// Digits are always an id; anything else is looked up among group names only,
// and more than one match counts as not found. Name lookups are cached.
type ResolveConversationUseCase struct {
	Repo  repository.ConversationRepository
	Cache cport.Cache
	TTL   time.Duration
}

func NewResolveConversationUseCase(repo repository.ConversationRepository, cache cport.Cache, ttl time.Duration) *ResolveConversationUseCase {
	return &ResolveConversationUseCase{Repo: repo, Cache: cache, TTL: ttl}
}

func (uc *ResolveConversationUseCase) Execute(ctx context.Context, in ResolveConversationInput) (*chat.Conversation, error) {
	identifier := strings.TrimSpace(in.Identifier)
	if identifier == "" {
		return nil, chat.ErrConversationNotFound
	}
	if id, ok := chat.ParseConversationID(identifier); ok {
		return uc.byID(ctx, id)
	}

	key := roomCachePrefix + identifier
	if uc.Cache != nil {
		if v, err := uc.Cache.Get(ctx, key); err == nil {
			if id, perr := strconv.ParseInt(v, 10, 64); perr == nil {
				conv, err := uc.byID(ctx, id)
				if err == nil {
					return conv, nil
				}
				if !errors.Is(err, chat.ErrNotFound) {
					return nil, err
				}
			}
			_, _ = uc.Cache.Del(ctx, key)
		}
	}

	groups, err := uc.Repo.FindGroupsByName(ctx, identifier)
	if err != nil {
		return nil, persistenceErr(err)
	}
	if len(groups) != 1 {
		return nil, chat.ErrConversationNotFound
	}
	conv := groups[0]
	if uc.Cache != nil {
		_ = uc.Cache.Set(ctx, key, strconv.FormatInt(conv.ID, 10), uc.TTL)
	}
	return &conv, nil
}

func (uc *ResolveConversationUseCase) byID(ctx context.Context, id int64) (*chat.Conversation, error) {
	conv, err := uc.Repo.GetConversation(ctx, id)
	if errors.Is(err, chat.ErrNotFound) {
		return nil, chat.ErrConversationNotFound
	}
	if err != nil {
		return nil, persistenceErr(err)
	}
	return conv, nil
}
