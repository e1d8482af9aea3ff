package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubscriber struct {
	id   string
	fail bool

	mu     sync.Mutex
	frames [][]byte
}

func (f *fakeSubscriber) ID() string { return f.id }

func (f *fakeSubscriber) Send(payload []byte) error {
	if f.fail {
		return errors.New("broken pipe")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, payload)
	return nil
}

func (f *fakeSubscriber) Frames() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.frames...)
}

func TestBroadcastFanOutIsScopedToRoom(t *testing.T) {
	reg := NewRegistry(zerolog.Nop())
	subs := []*fakeSubscriber{{id: "a"}, {id: "b"}, {id: "c"}}
	for _, s := range subs {
		reg.Subscribe("chat_1", s)
	}
	other := &fakeSubscriber{id: "d"}
	reg.Subscribe("chat_2", other)

	res := reg.Broadcast("chat_1", []byte(`{"message":{"id":1}}`))
	assert.Equal(t, BroadcastResult{Delivered: 3}, res)
	for _, s := range subs {
		require.Len(t, s.Frames(), 1)
		assert.JSONEq(t, `{"message":{"id":1}}`, string(s.Frames()[0]))
	}
	assert.Empty(t, other.Frames())
}

func TestBroadcastDropsFailingSubscriber(t *testing.T) {
	reg := NewRegistry(zerolog.Nop())
	ok := &fakeSubscriber{id: "ok"}
	broken := &fakeSubscriber{id: "broken", fail: true}
	reg.Subscribe("chat_1", ok)
	reg.Subscribe("chat_1", broken)

	res := reg.Broadcast("chat_1", []byte("x"))
	assert.Equal(t, BroadcastResult{Delivered: 1, Dropped: 1}, res)
	assert.Equal(t, 1, reg.RoomSize("chat_1"))

	res = reg.Broadcast("chat_1", []byte("y"))
	assert.Equal(t, BroadcastResult{Delivered: 1}, res)
	assert.Len(t, ok.Frames(), 2)
}

func TestSubscribeTwiceIsNoop(t *testing.T) {
	reg := NewRegistry(zerolog.Nop())
	s := &fakeSubscriber{id: "a"}
	assert.True(t, reg.Subscribe("chat_1", s))
	assert.False(t, reg.Subscribe("chat_1", s))
	assert.Equal(t, 1, reg.RoomSize("chat_1"))

	reg.Broadcast("chat_1", []byte("x"))
	assert.Len(t, s.Frames(), 1)
}

func TestUnsubscribeAndEmptyRooms(t *testing.T) {
	reg := NewRegistry(zerolog.Nop())
	s := &fakeSubscriber{id: "a"}

	reg.Unsubscribe("chat_1", s)
	assert.Equal(t, BroadcastResult{}, reg.Broadcast("chat_9", []byte("x")))

	reg.Subscribe("chat_1", s)
	reg.Unsubscribe("chat_1", s)
	reg.Unsubscribe("chat_1", s)
	assert.Equal(t, 0, reg.RoomSize("chat_1"))
}

func TestRegistryConcurrentAccess(t *testing.T) {
	reg := NewRegistry(zerolog.Nop())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := &fakeSubscriber{id: fmt.Sprintf("s%d", i)}
			reg.Subscribe("chat_1", s)
			reg.Broadcast("chat_1", []byte("x"))
			if i%2 == 0 {
				reg.Unsubscribe("chat_1", s)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 25, reg.RoomSize("chat_1"))
}

func TestLocalBusPublishesIntoRegistry(t *testing.T) {
	reg := NewRegistry(zerolog.Nop())
	s := &fakeSubscriber{id: "a"}
	reg.Subscribe("chat_3", s)

	bus := NewLocalBus(reg)
	require.NoError(t, bus.Publish(context.Background(), "chat_3", []byte("hello")))
	require.Len(t, s.Frames(), 1)
	assert.Equal(t, "hello", string(s.Frames()[0]))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, bus.Run(ctx))
}
