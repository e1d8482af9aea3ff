package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	chat "go-chatline/internal/pkg/chat/application/domain"
	"go-chatline/internal/pkg/chat/application/usecase"
)

// ListConversationsController lists the caller's conversations with members.
// DefaultKind applies when the request has no ?type= filter.
type ListConversationsController struct {
	UC          *usecase.ListConversationsUseCase
	DefaultKind chat.ConversationKind
	Timeout     time.Duration
}

func NewListConversationsController(uc *usecase.ListConversationsUseCase, defaultKind chat.ConversationKind, timeout time.Duration) *ListConversationsController {
	return &ListConversationsController{UC: uc, DefaultKind: defaultKind, Timeout: timeout}
}

func (h *ListConversationsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := caller(c)
		if !ok {
			return
		}
		kind := chat.ConversationKind(c.DefaultQuery("type", string(h.DefaultKind)))

		ctx, cancel := withTimeout(c, h.Timeout)
		defer cancel()
		out, err := h.UC.Execute(ctx, usecase.ListConversationsInput{UserID: who.UserID, Kind: kind})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}
