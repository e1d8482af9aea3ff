package realtime

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoServer upgrades and hands the server-side Connection to fn.
func echoServer(t *testing.T, opts ConnectionOptions, fn func(*Connection)) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := NewConnection(1, ws, opts)
		c.Start()
		fn(c)
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestConnectionSendReachesClient(t *testing.T) {
	client := echoServer(t, ConnectionOptions{SendBuffer: 4}, func(c *Connection) {
		assert.NotEmpty(t, c.ID())
		assert.Equal(t, int64(1), c.UserID())
		assert.NoError(t, c.Send([]byte(`{"message":"hi"}`)))
	})

	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := client.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"hi"}`, string(data))
}

func TestConnectionCloseSendsCode(t *testing.T) {
	client := echoServer(t, ConnectionOptions{SendBuffer: 4}, func(c *Connection) {
		c.Close(4403, "not a member")
		c.Close(4403, "again")
		assert.ErrorIs(t, c.Send([]byte("late")), ErrConnectionClosed)
	})

	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := client.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, 4403, closeErr.Code)
	assert.Equal(t, "not a member", closeErr.Text)
}

func TestStalledClientDoesNotHoldUpRoom(t *testing.T) {
	conns := make(chan *Connection, 1)
	// the client never reads, so socket buffers fill and the write loop blocks
	_ = echoServer(t, ConnectionOptions{SendBuffer: 1}, func(c *Connection) { conns <- c })
	stalled := <-conns

	reg := NewRegistry(zerolog.Nop())
	fast := &fakeSubscriber{id: "fast"}
	reg.Subscribe("chat_1", stalled)
	reg.Subscribe("chat_1", fast)

	payload := bytes.Repeat([]byte("x"), 1<<20)
	var slowest time.Duration
	rounds := 0
	for ; rounds < 64 && reg.RoomSize("chat_1") == 2; rounds++ {
		start := time.Now()
		reg.Broadcast("chat_1", payload)
		if d := time.Since(start); d > slowest {
			slowest = d
		}
	}

	assert.Equal(t, 1, reg.RoomSize("chat_1"), "stalled client should have been dropped")
	assert.Less(t, slowest, time.Second)
	assert.Len(t, fast.Frames(), rounds)
	assert.ErrorIs(t, stalled.Send([]byte("late")), ErrConnectionClosed)
}

func TestRegistryCloseReturnsWithStalledClient(t *testing.T) {
	conns := make(chan *Connection, 1)
	_ = echoServer(t, ConnectionOptions{SendBuffer: 64}, func(c *Connection) { conns <- c })
	stalled := <-conns

	reg := NewRegistry(zerolog.Nop())
	reg.Subscribe("chat_1", stalled)
	payload := bytes.Repeat([]byte("x"), 1<<20)
	for i := 0; i < 32; i++ {
		if stalled.Send(payload) != nil {
			break
		}
	}

	start := time.Now()
	reg.Close()
	assert.Less(t, time.Since(start), time.Second)
	assert.Zero(t, reg.RoomSize("chat_1"))
}
