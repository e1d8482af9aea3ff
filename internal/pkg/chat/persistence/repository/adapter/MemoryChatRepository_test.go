package adapter

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chat "go-chatline/internal/pkg/chat/application/domain"
)

type steppedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *steppedClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func TestListMessagesOrdersByTimestampThenID(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := &steppedClock{now: base}
	repo := NewMemoryChatRepository(WithClock(clock.Now))

	a := repo.AddUser("alice")
	conv, err := repo.CreateGroup(ctx, "Team", a.ID)
	require.NoError(t, err)

	clock.Set(base.Add(2 * time.Second))
	late, err := repo.CreateMessage(ctx, chat.Message{ConversationID: conv.ID, SenderID: a.ID, Content: "late"})
	require.NoError(t, err)

	// inserted after "late" but stamped earlier
	clock.Set(base.Add(time.Second))
	early, err := repo.CreateMessage(ctx, chat.Message{ConversationID: conv.ID, SenderID: a.ID, Content: "early"})
	require.NoError(t, err)

	clock.Set(base.Add(time.Second))
	tie, err := repo.CreateMessage(ctx, chat.Message{ConversationID: conv.ID, SenderID: a.ID, Content: "tie"})
	require.NoError(t, err)

	msgs, err := repo.ListMessages(ctx, conv.ID, 200)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, []int64{early.ID, tie.ID, late.ID}, []int64{msgs[0].ID, msgs[1].ID, msgs[2].ID})
	assert.Equal(t, "alice", msgs[0].SenderUsername)

	recent, err := repo.ListMessages(ctx, conv.ID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, tie.ID, recent[0].ID)
	assert.Equal(t, late.ID, recent[1].ID)
}

func TestCreateGroupRejectsDuplicateName(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryChatRepository()
	a := repo.AddUser("alice")

	_, err := repo.CreateGroup(ctx, "Team", a.ID)
	require.NoError(t, err)
	_, err = repo.CreateGroup(ctx, "Team", a.ID)
	assert.ErrorIs(t, err, chat.ErrDuplicateGroupName)
	assert.ErrorIs(t, err, chat.ErrConflict)
}

func TestCreateGroupMakesCreatorAdmin(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryChatRepository()
	a := repo.AddUser("alice")

	conv, err := repo.CreateGroup(ctx, "Team", a.ID)
	require.NoError(t, err)
	m, err := repo.GetMembership(ctx, conv.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, m.IsAdmin)
	assert.Equal(t, "alice", m.Username)
}

func TestAddMembershipIsGetOrCreate(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryChatRepository()
	a := repo.AddUser("alice")
	b := repo.AddUser("bob")
	conv, err := repo.CreateGroup(ctx, "Team", a.ID)
	require.NoError(t, err)

	first, err := repo.AddMembership(ctx, conv.ID, b.ID, false)
	require.NoError(t, err)
	second, err := repo.AddMembership(ctx, conv.ID, b.ID, true)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.False(t, second.IsAdmin)

	members, err := repo.ListMembers(ctx, conv.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestDirectConversationMemberships(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryChatRepository()
	a := repo.AddUser("alice")
	b := repo.AddUser("bob")
	c := repo.AddUser("carol")

	conv, err := repo.CreateDirect(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, chat.ConversationDirect, conv.Kind)

	found, err := repo.FindDirect(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, found.ID)

	_, err = repo.FindDirect(ctx, a.ID, c.ID)
	assert.ErrorIs(t, err, chat.ErrNotFound)

	other, err := repo.GetOtherMembership(ctx, conv.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, other.UserID)
	assert.False(t, other.IsAdmin)
}

func TestContactUniquenessIsDirected(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryChatRepository()
	a := repo.AddUser("alice")
	b := repo.AddUser("bob")

	_, err := repo.CreateContact(ctx, a.ID, b.ID)
	require.NoError(t, err)
	_, err = repo.CreateContact(ctx, a.ID, b.ID)
	assert.ErrorIs(t, err, chat.ErrContactExists)

	reverse, err := repo.CreateContact(ctx, b.ID, a.ID)
	require.NoError(t, err)

	ok, err := repo.HasAcceptedContact(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.UpdateContactStatus(ctx, reverse.ID, chat.ContactAccepted)
	require.NoError(t, err)
	ok, err = repo.HasAcceptedContact(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAcceptInvitationCreatesNonAdminMembership(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryChatRepository()
	a := repo.AddUser("alice")
	b := repo.AddUser("bob")
	conv, err := repo.CreateGroup(ctx, "Team", a.ID)
	require.NoError(t, err)

	inv, err := repo.CreateInvitation(ctx, conv.ID, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Team", inv.ConversationName)

	_, err = repo.CreateInvitation(ctx, conv.ID, a.ID, b.ID)
	assert.ErrorIs(t, err, chat.ErrInvitationExists)

	accepted, m, err := repo.AcceptInvitation(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, chat.InvitationAccepted, accepted.Status)
	assert.False(t, m.IsAdmin)
	assert.Equal(t, b.ID, m.UserID)

	pending, err := repo.ListPendingInvitations(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestCountMessagesAfterIsStrict(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := NewMemoryChatRepository(WithClock(func() time.Time { return at }))
	a := repo.AddUser("alice")
	conv, err := repo.CreateGroup(ctx, "Team", a.ID)
	require.NoError(t, err)
	_, err = repo.CreateMessage(ctx, chat.Message{ConversationID: conv.ID, SenderID: a.ID, Content: "x"})
	require.NoError(t, err)

	n, err := repo.CountMessagesAfter(ctx, conv.ID, at)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = repo.CountMessagesAfter(ctx, conv.ID, time.Unix(0, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestLookupsReturnNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryChatRepository()

	_, err := repo.GetConversation(ctx, 99)
	assert.ErrorIs(t, err, chat.ErrNotFound)
	_, err = repo.GetMembership(ctx, 1, 1)
	assert.ErrorIs(t, err, chat.ErrNotFound)
	_, err = repo.FindUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, chat.ErrUserNotFound)
	assert.ErrorIs(t, repo.SetLastRead(ctx, 7, time.Now()), chat.ErrNotFound)
}
