package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-chatline/internal/pkg/chat/application/usecase"
)

// ListContactsController lists accepted contacts, or received pending
// requests when Pending is set.
type ListContactsController struct {
	UC      *usecase.ListContactsUseCase
	Pending bool
	Timeout time.Duration
}

func NewListContactsController(uc *usecase.ListContactsUseCase, pending bool, timeout time.Duration) *ListContactsController {
	return &ListContactsController{UC: uc, Pending: pending, Timeout: timeout}
}

func (h *ListContactsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := caller(c)
		if !ok {
			return
		}
		ctx, cancel := withTimeout(c, h.Timeout)
		defer cancel()
		contacts, err := h.UC.Execute(ctx, usecase.ListContactsInput{UserID: who.UserID, Pending: h.Pending})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, contacts)
	}
}
