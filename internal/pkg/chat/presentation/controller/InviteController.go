package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-chatline/internal/pkg/chat/application/usecase"
)

// InviteController lets a group admin invite a user by username.
type InviteController struct {
	UC      *usecase.InviteToGroupUseCase
	Timeout time.Duration
}

func NewInviteController(uc *usecase.InviteToGroupUseCase, timeout time.Duration) *InviteController {
	return &InviteController{UC: uc, Timeout: timeout}
}

type inviteRequest struct {
	ConversationID int64  `json:"conversation_id"`
	Username       string `json:"username"`
}

func (h *InviteController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := caller(c)
		if !ok {
			return
		}
		var req inviteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}

		ctx, cancel := withTimeout(c, h.Timeout)
		defer cancel()
		inv, err := h.UC.Execute(ctx, usecase.InviteToGroupInput{
			ConversationID: req.ConversationID,
			InviterID:      who.UserID,
			Username:       req.Username,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, inv)
	}
}
