package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-chatline/internal/pkg/chat/application/usecase"
)

type ListUsersController struct {
	UC      *usecase.ListUsersUseCase
	Timeout time.Duration
}

func NewListUsersController(uc *usecase.ListUsersUseCase, timeout time.Duration) *ListUsersController {
	return &ListUsersController{UC: uc, Timeout: timeout}
}

func (h *ListUsersController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := caller(c); !ok {
			return
		}
		ctx, cancel := withTimeout(c, h.Timeout)
		defer cancel()
		users, err := h.UC.Execute(ctx)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, users)
	}
}
