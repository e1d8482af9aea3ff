package usecase_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chat "go-chatline/internal/pkg/chat/application/domain"
	"go-chatline/internal/pkg/chat/application/usecase"
)

func TestUnreadCountsAndMarkRead(t *testing.T) {
	f := newFixture(t)
	alice := f.repo.AddUser("alice")
	bob := f.repo.AddUser("bob")
	team := f.group(t, "Team", alice, bob)
	other := f.group(t, "Other", alice, bob)

	for _, content := range []string{"one", "two", "three"} {
		_, err := f.send.Execute(f.ctx, usecase.SendMessageInput{ConversationID: team.ID, SenderID: alice.ID, Content: content})
		require.NoError(t, err)
	}
	_, err := f.send.Execute(f.ctx, usecase.SendMessageInput{ConversationID: other.ID, SenderID: alice.ID, Content: "x"})
	require.NoError(t, err)

	unread := usecase.NewUnreadCountUseCase(f.repo)
	sum, err := unread.Execute(f.ctx, usecase.UnreadCountInput{UserID: bob.ID})
	require.NoError(t, err)
	assert.Equal(t, 3, sum.ByConversation[team.ID])
	assert.Equal(t, 1, sum.ByConversation[other.ID])
	assert.Equal(t, 4, sum.Total)

	markRead := usecase.NewMarkReadUseCase(f.repo, f.guard)
	// an application clock behind the store must still clear the count
	markRead.Now = func() time.Time { return time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC) }

	first, err := markRead.Execute(f.ctx, usecase.MarkReadInput{ConversationID: team.ID, UserID: bob.ID})
	require.NoError(t, err)
	second, err := markRead.Execute(f.ctx, usecase.MarkReadInput{ConversationID: team.ID, UserID: bob.ID})
	require.NoError(t, err)
	assert.False(t, second.Before(first))

	sum, err = unread.Execute(f.ctx, usecase.UnreadCountInput{UserID: bob.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, sum.ByConversation[team.ID])
	assert.Equal(t, 1, sum.Total)

	_, err = f.send.Execute(f.ctx, usecase.SendMessageInput{ConversationID: team.ID, SenderID: alice.ID, Content: "four"})
	require.NoError(t, err)
	sum, err = unread.Execute(f.ctx, usecase.UnreadCountInput{UserID: bob.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.ByConversation[team.ID])
}

func TestUnreadCountWithoutMemberships(t *testing.T) {
	f := newFixture(t)
	loner := f.repo.AddUser("loner")

	sum, err := usecase.NewUnreadCountUseCase(f.repo).Execute(f.ctx, usecase.UnreadCountInput{UserID: loner.ID})
	require.NoError(t, err)
	assert.Empty(t, sum.ByConversation)
	assert.Zero(t, sum.Total)
}

func TestMarkReadRequiresMembership(t *testing.T) {
	f := newFixture(t)
	alice := f.repo.AddUser("alice")
	eve := f.repo.AddUser("eve")
	team := f.group(t, "Team", alice)

	_, err := usecase.NewMarkReadUseCase(f.repo, f.guard).Execute(f.ctx, usecase.MarkReadInput{ConversationID: team.ID, UserID: eve.ID})
	assert.ErrorIs(t, err, chat.ErrNotParticipant)
}

func TestHistoryIsAscendingAndCapped(t *testing.T) {
	f := newFixture(t)
	alice := f.repo.AddUser("alice")
	eve := f.repo.AddUser("eve")
	team := f.group(t, "Team", alice)
	for _, content := range []string{"a", "b", "c", "d"} {
		_, err := f.send.Execute(f.ctx, usecase.SendMessageInput{ConversationID: team.ID, SenderID: alice.ID, Content: content})
		require.NoError(t, err)
	}

	history := usecase.NewGetMessageUseCase(f.repo, f.guard, 50)
	msgs, err := history.Execute(f.ctx, usecase.GetMessageInput{ConversationID: team.ID, UserID: alice.ID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "c", msgs[0].Content)
	assert.Equal(t, "d", msgs[1].Content)

	msgs, err = history.Execute(f.ctx, usecase.GetMessageInput{ConversationID: team.ID, UserID: alice.ID, Limit: 10_000})
	require.NoError(t, err)
	assert.Len(t, msgs, 4)

	_, err = history.Execute(f.ctx, usecase.GetMessageInput{ConversationID: team.ID, UserID: eve.ID})
	assert.ErrorIs(t, err, chat.ErrNotParticipant)

	_, err = history.Execute(f.ctx, usecase.GetMessageInput{ConversationID: 404, UserID: alice.ID})
	assert.ErrorIs(t, err, chat.ErrConversationNotFound)
}
