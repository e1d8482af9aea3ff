// Package gateway runs the per-connection chat protocol: connect, receive,
// broadcast and disconnect over any transport that can deliver frames.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"go.uber.org/ratelimit"

	"go-chatline/internal/infrastructure/metrics"
	"go-chatline/internal/infrastructure/realtime"
	chat "go-chatline/internal/pkg/chat/application/domain"
	"go-chatline/internal/pkg/chat/application/usecase"
)

var (
	ErrSessionClosed    = errors.New("gateway: session is not open")
	ErrAlreadyConnected = errors.New("gateway: session already connected")
)

const invalidPayload = "invalid payload"

// State is the lifecycle position of a Session.
type State int

const (
	StateConnecting State = iota
	StateAuthorized
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthorized:
		return "authorized"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Registry is the part of the connection registry a session uses.
type Registry interface {
	Subscribe(roomKey string, s realtime.Subscriber) bool
	Unsubscribe(roomKey string, s realtime.Subscriber)
}

// Gateway builds sessions that share one registry and one send path.
type Gateway struct {
	join     *usecase.JoinConversationUseCase
	send     *usecase.SendMessageUseCase
	registry Registry
	perSec   int
	log      zerolog.Logger
}

type Option func(*Gateway)

// WithMessageRate throttles each session to n inbound messages per second.
// Zero or less means unlimited.
func WithMessageRate(n int) Option {
	return func(g *Gateway) { g.perSec = n }
}

func New(join *usecase.JoinConversationUseCase, send *usecase.SendMessageUseCase, registry Registry, log zerolog.Logger, opts ...Option) *Gateway {
	g := &Gateway{
		join:     join,
		send:     send,
		registry: registry,
		log:      log.With().Str("component", "gateway").Logger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewSession starts a session in the Connecting state for peer.
func (g *Gateway) NewSession(peer realtime.Subscriber) *Session {
	limiter := ratelimit.NewUnlimited()
	if g.perSec > 0 {
		limiter = ratelimit.New(g.perSec)
	}
	return &Session{
		gw:      g,
		peer:    peer,
		limiter: limiter,
		log:     g.log.With().Str("connection_id", peer.ID()).Logger(),
	}
}

// Session is one live connection's protocol state.
// Connect, Receive and Disconnect may be called from different goroutines.
type Session struct {
	gw      *Gateway
	peer    realtime.Subscriber
	limiter ratelimit.Limiter
	log     zerolog.Logger

	mu       sync.Mutex
	state    State
	identity chat.Identity
	conv     chat.Conversation
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Conversation returns the room the session joined. Zero until Open.
func (s *Session) Conversation() chat.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv
}

// Connect authorizes identity for room and subscribes the session to it.
// Accept is silent: nothing is sent to the peer. On failure the session is
// Closed and the error maps to a close code through CloseCode.
func (s *Session) Connect(ctx context.Context, identity *chat.Identity, room string) error {
	s.mu.Lock()
	if s.state != StateConnecting {
		s.mu.Unlock()
		return ErrAlreadyConnected
	}
	s.mu.Unlock()

	out, err := s.gw.join.Execute(ctx, usecase.JoinConversationInput{Identity: identity, Room: room})
	if err != nil {
		s.reject(err, room)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateConnecting {
		// disconnected while authorizing
		return ErrSessionClosed
	}
	s.identity = *identity
	s.conv = out.Conversation
	s.transition(StateAuthorized)
	s.gw.registry.Subscribe(s.conv.RoomKey(), s.peer)
	s.transition(StateOpen)
	s.log = s.log.With().Int64("user_id", identity.UserID).Int64("conversation_id", s.conv.ID).Logger()
	s.log.Info().Str("room", s.conv.RoomKey()).Msg("session accepted")
	return nil
}

// Receive handles one inbound frame. Rejections are reported to the peer as a
// private error frame and leave the session open; the returned error is only
// set when the session cannot continue.
func (s *Session) Receive(ctx context.Context, raw []byte) error {
	s.mu.Lock()
	if s.state != StateOpen {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	conv, identity := s.conv, s.identity
	s.mu.Unlock()

	s.limiter.Take()

	var in chat.InboundFrame
	if err := json.Unmarshal(raw, &in); err != nil || in.Message == nil {
		metrics.MessagesRejected.WithLabelValues("invalid_payload").Inc()
		return s.sendError(invalidPayload)
	}
	content := strings.TrimSpace(*in.Message)
	if content == "" {
		return nil
	}

	_, err := s.gw.send.Execute(ctx, usecase.SendMessageInput{
		ConversationID: conv.ID,
		SenderID:       identity.UserID,
		Content:        content,
		Source:         usecase.SourceSession,
	})
	if err != nil {
		if !chat.IsDomainError(err) {
			s.log.Error().Err(err).Msg("message not stored")
		}
		return s.sendError(chat.PublicMessage(err))
	}
	return nil
}

// Disconnect leaves the room if the session had joined one. Safe to call
// more than once and from any state.
func (s *Session) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateClosed:
		return
	case StateOpen:
		s.gw.registry.Unsubscribe(s.conv.RoomKey(), s.peer)
		s.log.Info().Msg("session closed")
	}
	s.transition(StateClosed)
}

func (s *Session) reject(err error, room string) {
	reason := CloseReason(err)
	metrics.ConnectionsRejected.WithLabelValues(strings.ReplaceAll(reason, " ", "_")).Inc()
	ev := s.log.Info()
	if CloseCode(err) == CloseInternalError {
		ev = s.log.Error()
	}
	ev.Err(err).Str("room", room).Str("reason", reason).Msg("session refused")

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateClosed {
		s.transition(StateClosed)
	}
}

func (s *Session) sendError(text string) error {
	payload, err := json.Marshal(chat.ErrorFrame{Error: text})
	if err != nil {
		return err
	}
	return s.peer.Send(payload)
}

// transition must be called with mu held.
func (s *Session) transition(to State) {
	metrics.RecordStateTransition(s.state.String(), to.String())
	s.state = to
}
