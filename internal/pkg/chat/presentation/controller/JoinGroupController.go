package controller

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-chatline/internal/pkg/chat/application/usecase"
)

// JoinGroupController adds a member to a group without an invitation.
type JoinGroupController struct {
	UC      *usecase.JoinGroupUseCase
	Timeout time.Duration
}

func NewJoinGroupController(uc *usecase.JoinGroupUseCase, timeout time.Duration) *JoinGroupController {
	return &JoinGroupController{UC: uc, Timeout: timeout}
}

type joinGroupRequest struct {
	Username string `json:"username"`
}

func (h *JoinGroupController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := caller(c)
		if !ok {
			return
		}
		conversationID, ok := pathID(c, "id")
		if !ok {
			return
		}
		// the body is optional
		var req joinGroupRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			badRequest(c, "invalid request body")
			return
		}

		ctx, cancel := withTimeout(c, h.Timeout)
		defer cancel()
		m, err := h.UC.Execute(ctx, usecase.JoinGroupInput{
			ConversationID: conversationID,
			ActorID:        who.UserID,
			Username:       req.Username,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "joined", "membership": m})
	}
}
