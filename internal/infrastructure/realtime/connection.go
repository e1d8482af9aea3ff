package realtime

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrBufferExceeded   = errors.New("connection buffer exceeded")
)

// ConnectionOptions tunes a websocket session. Zero values fall back to defaults.
type ConnectionOptions struct {
	SendBuffer int
	ReadLimit  int64
	PongWait   time.Duration
}

func (o ConnectionOptions) withDefaults() ConnectionOptions {
	if o.SendBuffer <= 0 {
		o.SendBuffer = 128
	}
	if o.ReadLimit <= 0 {
		o.ReadLimit = 64 << 10
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	return o
}

// Connection wraps a websocket and coordinates outbound writes via a buffered channel.
// Reads happen on the caller's goroutine through ReadMessage; all writes go
// through the write loop. Safe for concurrent Send and Close.
type Connection struct {
	id     string
	userID int64

	ws         *websocket.Conn
	send       chan []byte
	once       sync.Once
	close      chan struct{}
	pingPeriod time.Duration

	// set once, before close is closed
	closeCode   int
	closeReason string
	abort       bool
}

// NewConnection constructs a Connection for the given user and arms the read
// deadline, pong handler and frame size limit.
func NewConnection(userID int64, ws *websocket.Conn, opts ConnectionOptions) *Connection {
	opts = opts.withDefaults()
	c := &Connection{
		id:         uuid.NewString(),
		userID:     userID,
		ws:         ws,
		send:       make(chan []byte, opts.SendBuffer),
		close:      make(chan struct{}),
		pingPeriod: opts.PongWait * 9 / 10,
	}
	ws.SetReadLimit(opts.ReadLimit)
	_ = ws.SetReadDeadline(time.Now().Add(opts.PongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(opts.PongWait))
	})
	return c
}

func (c *Connection) ID() string { return c.id }

func (c *Connection) UserID() int64 { return c.userID }

// Start launches the write loop. It must be called exactly once per
// connection; the loop owns every write, including the final close frame.
func (c *Connection) Start() {
	go c.writeLoop()
}

// Send enqueues payload for delivery and never blocks. A client whose buffer
// is full is cut off without a close frame, since it is not reading anyway.
func (c *Connection) Send(payload []byte) error {
	select {
	case <-c.close:
		return ErrConnectionClosed
	default:
	}
	select {
	case c.send <- payload:
		return nil
	default:
		c.shutdown(websocket.CloseGoingAway, "send buffer full", true)
		return ErrBufferExceeded
	}
}

// ReadMessage blocks for the next text or binary frame from the client.
func (c *Connection) ReadMessage() ([]byte, error) {
	_, data, err := c.ws.ReadMessage()
	return data, err
}

// Close asks the write loop to send a close frame with code and reason and
// tear the socket down. It returns immediately; only the first call has an effect.
func (c *Connection) Close(code int, reason string) {
	c.shutdown(code, reason, false)
}

func (c *Connection) shutdown(code int, reason string, abort bool) {
	c.once.Do(func() {
		c.closeCode, c.closeReason, c.abort = code, reason, abort
		close(c.close)
		if abort {
			// unblock a write stuck on a peer that stopped reading
			_ = c.ws.NetConn().SetWriteDeadline(time.Now())
		}
	})
}

func (c *Connection) writeLoop() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		if !c.abort {
			_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(c.closeCode, c.closeReason), time.Now().Add(writeWait))
		}
		_ = c.ws.Close()
	}()

	for {
		select {
		case <-c.close:
			return
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				c.shutdown(websocket.CloseAbnormalClosure, "write failed", true)
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.shutdown(websocket.CloseAbnormalClosure, "ping failed", true)
				return
			}
		}
	}
}

func (c *Connection) write(messageType int, payload []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(messageType, payload)
}
