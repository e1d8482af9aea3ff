package controller

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"go-chatline/internal/infrastructure/auth"
	"go-chatline/internal/infrastructure/realtime"
	"go-chatline/internal/pkg/chat/application/gateway"
)

// ChatSocketController handles the websocket endpoint for realtime chat traffic.
// The room comes from the path; the identity from the handshake token. The
// upgrade always completes so refusals can be reported with a close code.
type ChatSocketController struct {
	gateway         *gateway.Gateway
	jwt             *auth.JWT
	upgrader        websocket.Upgrader
	connOpts        realtime.ConnectionOptions
	inflightTimeout time.Duration
	log             zerolog.Logger
}

func NewChatSocketController(gw *gateway.Gateway, jwt *auth.JWT, allowedOrigins []string, opts realtime.ConnectionOptions, inflightTimeout time.Duration, log zerolog.Logger) *ChatSocketController {
	if inflightTimeout <= 0 {
		inflightTimeout = 5 * time.Second
	}
	return &ChatSocketController{
		gateway: gw,
		jwt:     jwt,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		connOpts:        opts,
		inflightTimeout: inflightTimeout,
		log:             log.With().Str("component", "chat_socket").Logger(),
	}
}

// originChecker accepts requests without an Origin header (non-browser
// clients), any origin when the list holds "*", and otherwise exact matches.
func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		if o != "" {
			set[strings.ToLower(o)] = struct{}{}
		}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[strings.ToLower(strings.TrimRight(origin, "/"))]
		return ok
	}
}

// Handle upgrades HTTP connections to websocket and processes frames until the client disconnects.
func (ctl *ChatSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		room := c.Param("room")
		// a missing or bad token is reported through the close code after upgrade
		identity, _ := ctl.jwt.Authenticate(c.Request)

		ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response; just log and return.
			ctl.log.Debug().Err(err).Msg("upgrade failed")
			return
		}

		var userID int64
		if identity != nil {
			userID = identity.UserID
		}
		conn := realtime.NewConnection(userID, ws, ctl.connOpts)
		conn.Start()
		session := ctl.gateway.NewSession(conn)

		ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
		err = session.Connect(ctx, identity, room)
		cancel()
		if err != nil {
			conn.Close(gateway.CloseCode(err), gateway.CloseReason(err))
			return
		}
		defer func() {
			session.Disconnect()
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		for {
			data, err := conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) &&
					!errors.Is(err, websocket.ErrCloseSent) {
					ctl.log.Debug().Err(err).Str("connection_id", conn.ID()).Msg("read ended")
				}
				return
			}

			ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
			err = session.Receive(ctx, data)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
