package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-chatline/internal/pkg/chat/application/usecase"
)

type UnreadCountController struct {
	UC      *usecase.UnreadCountUseCase
	Timeout time.Duration
}

func NewUnreadCountController(uc *usecase.UnreadCountUseCase, timeout time.Duration) *UnreadCountController {
	return &UnreadCountController{UC: uc, Timeout: timeout}
}

func (h *UnreadCountController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := caller(c)
		if !ok {
			return
		}
		ctx, cancel := withTimeout(c, h.Timeout)
		defer cancel()
		summary, err := h.UC.Execute(ctx, usecase.UnreadCountInput{UserID: who.UserID})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}
