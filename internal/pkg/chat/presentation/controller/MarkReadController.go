package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-chatline/internal/pkg/chat/application/usecase"
)

type MarkReadController struct {
	UC      *usecase.MarkReadUseCase
	Timeout time.Duration
}

func NewMarkReadController(uc *usecase.MarkReadUseCase, timeout time.Duration) *MarkReadController {
	return &MarkReadController{UC: uc, Timeout: timeout}
}

func (h *MarkReadController) Handle() gin.HandlerFunc {
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
		at, err := h.UC.Execute(ctx, usecase.MarkReadInput{ConversationID: conversationID, UserID: who.UserID})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "last_read_at": at})
	}
}
