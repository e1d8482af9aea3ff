package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-chatline/internal/pkg/chat/application/usecase"
)

type ListParticipantsController struct {
	UC      *usecase.ListParticipantsUseCase
	Timeout time.Duration
}

func NewListParticipantsController(uc *usecase.ListParticipantsUseCase, timeout time.Duration) *ListParticipantsController {
	return &ListParticipantsController{UC: uc, Timeout: timeout}
}

func (h *ListParticipantsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := caller(c)
		if !ok {
			return
		}
		conversationID, ok := pathID(c, "id")
		if !ok {
			return
		}

		ctx, cancel := withTimeout(c, h.Timeout)
		defer cancel()
		members, err := h.UC.Execute(ctx, usecase.ListParticipantsInput{ConversationID: conversationID, UserID: who.UserID})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, members)
	}
}
