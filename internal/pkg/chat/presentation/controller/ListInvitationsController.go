package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-chatline/internal/pkg/chat/application/usecase"
)

type ListInvitationsController struct {
	UC      *usecase.ListInvitationsUseCase
	Timeout time.Duration
}

func NewListInvitationsController(uc *usecase.ListInvitationsUseCase, timeout time.Duration) *ListInvitationsController {
	return &ListInvitationsController{UC: uc, Timeout: timeout}
}

func (h *ListInvitationsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := caller(c)
		if !ok {
			return
		}
		ctx, cancel := withTimeout(c, h.Timeout)
		defer cancel()
		invitations, err := h.UC.Execute(ctx, usecase.ListInvitationsInput{UserID: who.UserID})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, invitations)
	}
}
