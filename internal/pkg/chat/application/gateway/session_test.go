package gateway_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cacheAdapter "go-chatline/internal/infrastructure/cache/adapter"
	"go-chatline/internal/infrastructure/realtime"
	chat "go-chatline/internal/pkg/chat/application/domain"
	"go-chatline/internal/pkg/chat/application/gateway"
	"go-chatline/internal/pkg/chat/application/usecase"
	"go-chatline/internal/pkg/chat/persistence/repository/adapter"
)

type peer struct {
	id string

	mu     sync.Mutex
	frames []map[string]json.RawMessage
}

func (p *peer) ID() string { return p.id }

func (p *peer) Send(payload []byte) error {
	var f map[string]json.RawMessage
	if err := json.Unmarshal(payload, &f); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frames = append(p.frames, f)
	return nil
}

func (p *peer) messages(t *testing.T) []chat.MessagePayload {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []chat.MessagePayload
	for _, f := range p.frames {
		raw, ok := f["message"]
		if !ok {
			continue
		}
		var m chat.MessagePayload
		require.NoError(t, json.Unmarshal(raw, &m))
		out = append(out, m)
	}
	return out
}

func (p *peer) errors(t *testing.T) []string {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, f := range p.frames {
		raw, ok := f["error"]
		if !ok {
			continue
		}
		var s string
		require.NoError(t, json.Unmarshal(raw, &s))
		out = append(out, s)
	}
	return out
}

type env struct {
	ctx      context.Context
	repo     *adapter.MemoryChatRepository
	registry *realtime.Registry
	gw       *gateway.Gateway
	seq      int
}

func newEnv(t *testing.T, opts ...gateway.Option) *env {
	t.Helper()
	clock := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	repo := adapter.NewMemoryChatRepository(adapter.WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))
	registry := realtime.NewRegistry(zerolog.Nop())
	guard := usecase.NewAuthorizationGuard(repo, repo)
	send := usecase.NewSendMessageUseCase(repo, guard, usecase.NewBroadcastMessageUseCase(realtime.NewLocalBus(registry)), zerolog.Nop())
	join := usecase.NewJoinConversationUseCase(usecase.NewResolveConversationUseCase(repo, cacheAdapter.NewMemoryCache(), time.Minute), guard)
	return &env{
		ctx:      context.Background(),
		repo:     repo,
		registry: registry,
		gw:       gateway.New(join, send, registry, zerolog.Nop(), opts...),
	}
}

func (e *env) open(t *testing.T, u chat.User, room string) (*gateway.Session, *peer) {
	t.Helper()
	e.seq++
	p := &peer{id: fmt.Sprintf("conn-%d", e.seq)}
	s := e.gw.NewSession(p)
	require.NoError(t, s.Connect(e.ctx, &chat.Identity{UserID: u.ID, Username: u.Username}, room))
	return s, p
}

func frame(content string) []byte {
	b, _ := json.Marshal(map[string]string{"message": content})
	return b
}

func TestConnectIsSilentAndSubscribes(t *testing.T) {
	e := newEnv(t)
	alice := e.repo.AddUser("alice")
	team, err := e.repo.CreateGroup(e.ctx, "Team", alice.ID)
	require.NoError(t, err)

	s, p := e.open(t, alice, "Team")
	assert.Equal(t, gateway.StateOpen, s.State())
	assert.Equal(t, team.ID, s.Conversation().ID)
	assert.Empty(t, p.frames)
	assert.Equal(t, 1, e.registry.RoomSize(team.RoomKey()))

	assert.ErrorIs(t, s.Connect(e.ctx, &chat.Identity{UserID: alice.ID}, "Team"), gateway.ErrAlreadyConnected)
}

func TestConnectRefusals(t *testing.T) {
	e := newEnv(t)
	alice := e.repo.AddUser("alice")
	eve := e.repo.AddUser("eve")
	team, err := e.repo.CreateGroup(e.ctx, "Team", alice.ID)
	require.NoError(t, err)

	tests := []struct {
		name     string
		identity *chat.Identity
		room     string
		code     int
		reason   string
	}{
		{"no identity", nil, "Team", 4401, "unauthenticated"},
		{"missing room", &chat.Identity{UserID: alice.ID}, "Nowhere", 4404, "room missing"},
		{"missing id", &chat.Identity{UserID: alice.ID}, "987654", 4404, "room missing"},
		{"not a member", &chat.Identity{UserID: eve.ID}, strconv.FormatInt(team.ID, 10), 4403, "not a member"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &peer{id: tt.name}
			s := e.gw.NewSession(p)
			err := s.Connect(e.ctx, tt.identity, tt.room)
			require.Error(t, err)
			assert.Equal(t, tt.code, gateway.CloseCode(err))
			assert.Equal(t, tt.reason, gateway.CloseReason(err))
			assert.Equal(t, gateway.StateClosed, s.State())
			assert.Empty(t, p.frames)

			s.Disconnect()
			s.Disconnect()
			assert.ErrorIs(t, s.Receive(e.ctx, frame("hi")), gateway.ErrSessionClosed)
		})
	}
	assert.Equal(t, 0, e.registry.RoomSize(team.RoomKey()))
}

func TestReceiveBroadcastsToEveryoneIncludingSender(t *testing.T) {
	e := newEnv(t)
	alice := e.repo.AddUser("alice")
	bob := e.repo.AddUser("bob")
	team, err := e.repo.CreateGroup(e.ctx, "Team", alice.ID)
	require.NoError(t, err)
	_, err = e.repo.AddMembership(e.ctx, team.ID, bob.ID, false)
	require.NoError(t, err)

	as, ap := e.open(t, alice, "Team")
	_, bp := e.open(t, bob, strconv.FormatInt(team.ID, 10))

	require.NoError(t, as.Receive(e.ctx, frame("  hello  ")))

	for _, p := range []*peer{ap, bp} {
		msgs := p.messages(t)
		require.Len(t, msgs, 1)
		assert.Equal(t, "hello", msgs[0].Content)
		assert.Equal(t, team.ID, msgs[0].Conversation)
		assert.Equal(t, alice.ID, msgs[0].Sender)
		assert.Equal(t, "alice", msgs[0].SenderUsername)
		assert.NotZero(t, msgs[0].ID)
		assert.False(t, msgs[0].CreatedAt.IsZero())
	}

	stored, err := e.repo.ListMessages(e.ctx, team.ID, 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, stored[0].ID, ap.messages(t)[0].ID)
}

func TestReceiveDropsEmptyAndReportsInvalid(t *testing.T) {
	e := newEnv(t)
	alice := e.repo.AddUser("alice")
	team, err := e.repo.CreateGroup(e.ctx, "Team", alice.ID)
	require.NoError(t, err)
	s, p := e.open(t, alice, "Team")

	require.NoError(t, s.Receive(e.ctx, frame("   ")))
	assert.Empty(t, p.frames)

	require.NoError(t, s.Receive(e.ctx, []byte("not json")))
	require.NoError(t, s.Receive(e.ctx, []byte(`{"text":"wrong key"}`)))
	assert.Equal(t, []string{"invalid payload", "invalid payload"}, p.errors(t))
	assert.Equal(t, gateway.StateOpen, s.State())

	stored, err := e.repo.ListMessages(e.ctx, team.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestDirectContactIsCheckedPerMessage(t *testing.T) {
	e := newEnv(t)
	alice := e.repo.AddUser("alice")
	bob := e.repo.AddUser("bob")
	contact, err := e.repo.CreateContact(e.ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = e.repo.UpdateContactStatus(e.ctx, contact.ID, chat.ContactAccepted)
	require.NoError(t, err)
	direct, err := e.repo.CreateDirect(e.ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	room := strconv.FormatInt(direct.ID, 10)

	as, ap := e.open(t, alice, room)
	_, bp := e.open(t, bob, room)

	require.NoError(t, as.Receive(e.ctx, frame("first")))
	assert.Len(t, bp.messages(t), 1)

	_, err = e.repo.UpdateContactStatus(e.ctx, contact.ID, chat.ContactBlocked)
	require.NoError(t, err)

	require.NoError(t, as.Receive(e.ctx, frame("second")))
	assert.Len(t, bp.messages(t), 1)
	assert.Empty(t, bp.errors(t))
	assert.Len(t, ap.messages(t), 1)
	assert.Equal(t, []string{"cannot send message, you are no longer in contact with this user"}, ap.errors(t))
	assert.Equal(t, gateway.StateOpen, as.State())

	stored, err := e.repo.ListMessages(e.ctx, direct.ID, 10)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestDisconnectUnsubscribes(t *testing.T) {
	e := newEnv(t)
	alice := e.repo.AddUser("alice")
	bob := e.repo.AddUser("bob")
	team, err := e.repo.CreateGroup(e.ctx, "Team", alice.ID)
	require.NoError(t, err)
	_, err = e.repo.AddMembership(e.ctx, team.ID, bob.ID, false)
	require.NoError(t, err)

	as, _ := e.open(t, alice, "Team")
	bs, bp := e.open(t, bob, "Team")
	assert.Equal(t, 2, e.registry.RoomSize(team.RoomKey()))

	bs.Disconnect()
	bs.Disconnect()
	assert.Equal(t, gateway.StateClosed, bs.State())
	assert.Equal(t, 1, e.registry.RoomSize(team.RoomKey()))

	require.NoError(t, as.Receive(e.ctx, frame("after")))
	assert.Empty(t, bp.messages(t))
	assert.ErrorIs(t, bs.Receive(e.ctx, frame("late")), gateway.ErrSessionClosed)
}

func TestDisconnectBeforeConnect(t *testing.T) {
	e := newEnv(t)
	alice := e.repo.AddUser("alice")
	_, err := e.repo.CreateGroup(e.ctx, "Team", alice.ID)
	require.NoError(t, err)

	s := e.gw.NewSession(&peer{id: "early"})
	s.Disconnect()
	assert.Equal(t, gateway.StateClosed, s.State())
	assert.ErrorIs(t, s.Connect(e.ctx, &chat.Identity{UserID: alice.ID}, "Team"), gateway.ErrAlreadyConnected)
}

func TestCloseCodeForInfrastructureErrors(t *testing.T) {
	err := fmt.Errorf("%w: %w", usecase.ErrPersistence, errors.New("connection refused"))
	assert.Equal(t, gateway.CloseInternalError, gateway.CloseCode(err))
	assert.Equal(t, "internal error", gateway.CloseReason(err))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "connecting", gateway.StateConnecting.String())
	assert.Equal(t, "authorized", gateway.StateAuthorized.String())
	assert.Equal(t, "open", gateway.StateOpen.String())
	assert.Equal(t, "closed", gateway.StateClosed.String())
	assert.Equal(t, "unknown", gateway.State(42).String())
}

func TestMessageRateOption(t *testing.T) {
	e := newEnv(t, gateway.WithMessageRate(1000))
	alice := e.repo.AddUser("alice")
	_, err := e.repo.CreateGroup(e.ctx, "Team", alice.ID)
	require.NoError(t, err)
	s, p := e.open(t, alice, "Team")

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Receive(e.ctx, frame(fmt.Sprintf("m%d", i))))
	}
	assert.Len(t, p.messages(t), 3)
}
