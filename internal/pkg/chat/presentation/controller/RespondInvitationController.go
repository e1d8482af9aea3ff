package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	chat "go-chatline/internal/pkg/chat/application/domain"
	"go-chatline/internal/pkg/chat/application/usecase"
)

// RespondInvitationController answers an invitation with Status.
type RespondInvitationController struct {
	UC      *usecase.RespondInvitationUseCase
	Status  chat.InvitationStatus
	Timeout time.Duration
}

func NewRespondInvitationController(uc *usecase.RespondInvitationUseCase, status chat.InvitationStatus, timeout time.Duration) *RespondInvitationController {
	return &RespondInvitationController{UC: uc, Status: status, Timeout: timeout}
}

func (h *RespondInvitationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := caller(c)
		if !ok {
			return
		}
		invitationID, ok := pathID(c, "id")
		if !ok {
			return
		}

		ctx, cancel := withTimeout(c, h.Timeout)
		defer cancel()
		out, err := h.UC.Execute(ctx, usecase.RespondInvitationInput{InvitationID: invitationID, UserID: who.UserID, Status: h.Status})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"invitation": out.Invitation, "membership": out.Membership})
	}
}
