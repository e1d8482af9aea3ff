package chat

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessageTrimsContent(t *testing.T) {
	m, err := NewMessage(1, 2, "  hello \n", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", m.Content)
}

func TestNewMessageRejectsBlankWithoutAttachment(t *testing.T) {
	_, err := NewMessage(1, 2, "   ", nil)
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.ErrorIs(t, err, ErrValidation)

	blank := " "
	_, err = NewMessage(1, 2, "", &blank)
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestNewMessageAllowsAttachmentOnly(t *testing.T) {
	att := "chat_attachments/a.png"
	m, err := NewMessage(1, 2, "", &att)
	require.NoError(t, err)
	assert.Equal(t, "", m.Content)
	require.NotNil(t, m.Attachment)
}

func TestNewMessageRequiresIdentifiers(t *testing.T) {
	_, err := NewMessage(0, 2, "x", nil)
	assert.True(t, errors.Is(err, ErrMissingIdentifiers))
}

func TestSortMessagesUsesIDAsTieBreak(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	msgs := []Message{
		{ID: 3, CreatedAt: base},
		{ID: 1, CreatedAt: base.Add(time.Second)},
		{ID: 2, CreatedAt: base},
		{ID: 4, CreatedAt: base.Add(-time.Second)},
	}
	SortMessages(msgs)

	ids := make([]int64, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []int64{4, 2, 3, 1}, ids)
}

func TestParseConversationID(t *testing.T) {
	tests := []struct {
		in   string
		id   int64
		isID bool
	}{
		{"42", 42, true},
		{"", 0, false},
		{"Team", 0, false},
		{"12a", 0, false},
		{"-3", 0, false},
		{"99999999999999999999", 0, false},
	}
	for _, tt := range tests {
		id, ok := ParseConversationID(tt.in)
		assert.Equal(t, tt.isID, ok, tt.in)
		assert.Equal(t, tt.id, id, tt.in)
	}
}

func TestRoomKeyIsUniquePerConversation(t *testing.T) {
	assert.Equal(t, "chat_7", RoomKey(7))
	assert.NotEqual(t, RoomKey(1), RoomKey(11))
	assert.Equal(t, RoomKey(5), Conversation{ID: 5}.RoomKey())
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "cannot send message, you are no longer in contact with this user", PublicMessage(ErrNotInContact))
	assert.Equal(t, "content is required", PublicMessage(fmt.Errorf("send: %w", ErrEmptyMessage)))
	assert.Equal(t, "not found", PublicMessage(ErrNotFound))
	assert.Equal(t, "internal error", PublicMessage(errors.New("pool closed")))
	assert.Empty(t, PublicMessage(nil))
}
