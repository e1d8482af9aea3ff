package gateway

import (
	"errors"

	chat "go-chatline/internal/pkg/chat/application/domain"
)

// Close codes sent when a connect is refused.
const (
	CloseUnauthenticated = 4401
	CloseForbidden       = 4403
	CloseNotFound        = 4404
	CloseInternalError   = 1011
)

// CloseCode maps a Connect error to the websocket close code for the client.
func CloseCode(err error) int {
	switch {
	case errors.Is(err, chat.ErrUnauthenticated):
		return CloseUnauthenticated
	case errors.Is(err, chat.ErrNotFound):
		return CloseNotFound
	case errors.Is(err, chat.ErrForbidden):
		return CloseForbidden
	default:
		return CloseInternalError
	}
}

// CloseReason is the short close-frame text matching CloseCode.
func CloseReason(err error) string {
	switch CloseCode(err) {
	case CloseUnauthenticated:
		return "unauthenticated"
	case CloseNotFound:
		return "room missing"
	case CloseForbidden:
		return "not a member"
	default:
		return "internal error"
	}
}
