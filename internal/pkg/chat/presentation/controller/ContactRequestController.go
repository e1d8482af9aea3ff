package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-chatline/internal/pkg/chat/application/usecase"
)

// ContactRequestController sends a contact request to a user by username.
type ContactRequestController struct {
	UC      *usecase.SendContactRequestUseCase
	Timeout time.Duration
}

func NewContactRequestController(uc *usecase.SendContactRequestUseCase, timeout time.Duration) *ContactRequestController {
	return &ContactRequestController{UC: uc, Timeout: timeout}
}

type usernameRequest struct {
	Username string `json:"username"`
}

func (h *ContactRequestController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := caller(c)
		if !ok {
			return
		}
		var req usernameRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}

		ctx, cancel := withTimeout(c, h.Timeout)
		defer cancel()
		contact, err := h.UC.Execute(ctx, usecase.SendContactRequestInput{FromUserID: who.UserID, Username: req.Username})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, contact)
	}
}
