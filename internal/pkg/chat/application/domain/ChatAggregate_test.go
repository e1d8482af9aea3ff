package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func directChat(inContact bool, counterpart bool) *Chat {
	c := &Chat{
		Conversation: Conversation{ID: 10, Kind: ConversationDirect},
		Sender:       &Membership{ID: 1, ConversationID: 10, UserID: 1},
		InContact:    inContact,
	}
	if counterpart {
		c.Counterpart = &Membership{ID: 2, ConversationID: 10, UserID: 2}
	}
	return c
}

func TestPostMessageDirectRequiresContact(t *testing.T) {
	_, err := directChat(false, true).PostMessage(Message{ConversationID: 10, SenderID: 1, Content: "hi"})
	assert.ErrorIs(t, err, ErrNotInContact)
	assert.ErrorIs(t, err, ErrForbidden)

	m, err := directChat(true, true).PostMessage(Message{ConversationID: 10, SenderID: 1, Content: " hi "})
	require.NoError(t, err)
	assert.Equal(t, "hi", m.Content)
}

func TestPostMessageDirectWithoutCounterpartDenies(t *testing.T) {
	_, err := directChat(true, false).PostMessage(Message{ConversationID: 10, SenderID: 1, Content: "hi"})
	assert.ErrorIs(t, err, ErrNotInContact)
}

func TestPostMessageGroupSkipsContact(t *testing.T) {
	c := &Chat{
		Conversation: Conversation{ID: 3, Kind: ConversationGroup, Name: "Team"},
		Sender:       &Membership{ConversationID: 3, UserID: 9},
	}
	_, err := c.PostMessage(Message{ConversationID: 3, SenderID: 9, Content: "hello"})
	assert.NoError(t, err)
}

func TestPostMessageRejectsNonMember(t *testing.T) {
	c := &Chat{Conversation: Conversation{ID: 3, Kind: ConversationGroup}}
	_, err := c.PostMessage(Message{ConversationID: 3, SenderID: 9, Content: "hello"})
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = directChat(true, true).PostMessage(Message{ConversationID: 11, SenderID: 1, Content: "x"})
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestContactTransitions(t *testing.T) {
	c := Contact{FromUserID: 1, ToUserID: 2, Status: ContactPending}
	assert.ErrorIs(t, c.Transition(1, ContactAccepted), ErrNotRecipient)
	assert.NoError(t, c.Transition(2, ContactAccepted))
	assert.NoError(t, c.Transition(2, ContactBlocked))

	c.Status = ContactAccepted
	assert.NoError(t, c.Transition(2, ContactBlocked))
	assert.ErrorIs(t, c.Transition(2, ContactPending), ErrInvalidTransition)

	c.Status = ContactBlocked
	assert.ErrorIs(t, c.Transition(2, ContactAccepted), ErrConflict)
}

func TestAnyAcceptedIsUnordered(t *testing.T) {
	rows := []Contact{
		{FromUserID: 1, ToUserID: 2, Status: ContactBlocked},
		{FromUserID: 2, ToUserID: 1, Status: ContactAccepted},
	}
	assert.True(t, AnyAccepted(rows, 1, 2))
	assert.True(t, AnyAccepted(rows, 2, 1))
	assert.False(t, AnyAccepted(rows, 1, 3))
	assert.False(t, AnyAccepted(rows[:1], 1, 2))
}

func TestInvitationRespond(t *testing.T) {
	inv := GroupInvitation{ToUserID: 5, Status: InvitationPending}
	assert.ErrorIs(t, inv.Respond(4, InvitationAccepted), ErrNotRecipient)
	assert.NoError(t, inv.Respond(5, InvitationDeclined))
	inv.Status = InvitationAccepted
	assert.ErrorIs(t, inv.Respond(5, InvitationDeclined), ErrInvalidTransition)
}

func TestWatermarkNeverMovesBack(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	var m Membership
	assert.Equal(t, int64(0), m.Watermark().Unix())
	assert.Equal(t, now, m.AdvanceWatermark(now))

	later := now.Add(time.Hour)
	m.LastReadAt = &later
	assert.Equal(t, later, m.AdvanceWatermark(now))
}

func TestUnreadSummaryTotals(t *testing.T) {
	s := NewUnreadSummary()
	s.Add(1, 3)
	s.Add(2, 0)
	s.Add(3, 4)
	s.Add(1, 1)
	assert.Equal(t, 5, s.Total)
	assert.Equal(t, map[int64]int{1: 1, 2: 0, 3: 4}, s.ByConversation)
}
