package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-chatline/internal/pkg/chat/application/usecase"
)

type DeleteContactController struct {
	UC      *usecase.DeleteContactUseCase
	Timeout time.Duration
}

func NewDeleteContactController(uc *usecase.DeleteContactUseCase, timeout time.Duration) *DeleteContactController {
	return &DeleteContactController{UC: uc, Timeout: timeout}
}

func (h *DeleteContactController) Handle() gin.HandlerFunc {
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
		if err := h.UC.Execute(ctx, usecase.DeleteContactInput{ContactID: contactID, UserID: who.UserID}); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	}
}
