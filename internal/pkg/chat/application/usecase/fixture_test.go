package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	cacheAdapter "go-chatline/internal/infrastructure/cache/adapter"
	"go-chatline/internal/infrastructure/realtime"
	chat "go-chatline/internal/pkg/chat/application/domain"
	"go-chatline/internal/pkg/chat/application/usecase"
	"go-chatline/internal/pkg/chat/persistence/repository/adapter"
)

// recorder is a room subscriber that keeps every decoded frame.
type recorder struct {
	id string

	mu     sync.Mutex
	frames []chat.MessageFrame
}

func (r *recorder) ID() string { return r.id }

func (r *recorder) Send(payload []byte) error {
	var f chat.MessageFrame
	if err := json.Unmarshal(payload, &f); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
	return nil
}

func (r *recorder) Frames() []chat.MessageFrame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]chat.MessageFrame(nil), r.frames...)
}

type fixture struct {
	ctx      context.Context
	repo     *adapter.MemoryChatRepository
	registry *realtime.Registry
	guard    *usecase.AuthorizationGuard
	send     *usecase.SendMessageUseCase
	join     *usecase.JoinConversationUseCase
	clock    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{ctx: context.Background(), clock: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
	f.repo = adapter.NewMemoryChatRepository(adapter.WithClock(f.now))
	f.registry = realtime.NewRegistry(zerolog.Nop())
	f.guard = usecase.NewAuthorizationGuard(f.repo, f.repo)
	broadcaster := usecase.NewBroadcastMessageUseCase(realtime.NewLocalBus(f.registry))
	f.send = usecase.NewSendMessageUseCase(f.repo, f.guard, broadcaster, zerolog.Nop())
	resolver := usecase.NewResolveConversationUseCase(f.repo, cacheAdapter.NewMemoryCache(), time.Minute)
	f.join = usecase.NewJoinConversationUseCase(resolver, f.guard)
	return f
}

// now advances one second per call so stored rows have distinct timestamps.
func (f *fixture) now() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fixture) subscribe(conversationID int64, id string) *recorder {
	r := &recorder{id: id}
	f.registry.Subscribe(chat.RoomKey(conversationID), r)
	return r
}

func (f *fixture) group(t *testing.T, name string, owner chat.User, members ...chat.User) *chat.Conversation {
	t.Helper()
	conv, err := usecase.NewCreateGroupUseCase(f.repo).Execute(f.ctx, usecase.CreateGroupInput{CreatorID: owner.ID, Name: name})
	require.NoError(t, err)
	for _, m := range members {
		_, err := f.repo.AddMembership(f.ctx, conv.ID, m.ID, false)
		require.NoError(t, err)
	}
	return conv
}

func (f *fixture) acceptContact(t *testing.T, from, to chat.User) *chat.Contact {
	t.Helper()
	c, err := usecase.NewSendContactRequestUseCase(f.repo).Execute(f.ctx, usecase.SendContactRequestInput{FromUserID: from.ID, Username: to.Username})
	require.NoError(t, err)
	c, err = usecase.NewRespondContactRequestUseCase(f.repo).Execute(f.ctx, usecase.RespondContactRequestInput{ContactID: c.ID, UserID: to.ID, Status: chat.ContactAccepted})
	require.NoError(t, err)
	return c
}

func (f *fixture) messageCount(t *testing.T, conversationID int64) int {
	t.Helper()
	msgs, err := f.repo.ListMessages(f.ctx, conversationID, 200)
	require.NoError(t, err)
	return len(msgs)
}

// brokenStore fails every message write.
type brokenStore struct {
	*adapter.MemoryChatRepository
}

var errDiskFull = errors.New("disk full")

func (b brokenStore) CreateMessage(context.Context, chat.Message) (*chat.Message, error) {
	return nil, errDiskFull
}
