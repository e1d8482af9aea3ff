package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	chat "go-chatline/internal/pkg/chat/application/domain"
	"go-chatline/internal/pkg/chat/application/usecase"
)

// RespondContactController moves a received request to Status. Accept,
// decline and block are mounted as separate routes over the same use case.
type RespondContactController struct {
	UC      *usecase.RespondContactRequestUseCase
	Status  chat.ContactStatus
	Timeout time.Duration
}

func NewRespondContactController(uc *usecase.RespondContactRequestUseCase, status chat.ContactStatus, timeout time.Duration) *RespondContactController {
	return &RespondContactController{UC: uc, Status: status, Timeout: timeout}
}

func (h *RespondContactController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := caller(c)
		if !ok {
			return
		}
		contactID, ok := pathID(c, "id")
		if !ok {
			return
		}

		ctx, cancel := withTimeout(c, h.Timeout)
		defer cancel()
		contact, err := h.UC.Execute(ctx, usecase.RespondContactRequestInput{ContactID: contactID, UserID: who.UserID, Status: h.Status})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, contact)
	}
}
