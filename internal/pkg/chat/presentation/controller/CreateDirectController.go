package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-chatline/internal/pkg/chat/application/usecase"
)

// CreateDirectController serves both direct-conversation endpoints: by user id
// and, with a contact requirement, by username. Which one depends on the use case.
type CreateDirectController struct {
	UC      *usecase.CreateDirectUseCase
	Timeout time.Duration
}

func NewCreateDirectController(uc *usecase.CreateDirectUseCase, timeout time.Duration) *CreateDirectController {
	return &CreateDirectController{UC: uc, Timeout: timeout}
}

type createDirectRequest struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

func (h *CreateDirectController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := caller(c)
		if !ok {
			return
		}
		var req createDirectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}

		ctx, cancel := withTimeout(c, h.Timeout)
		defer cancel()
		conv, err := h.UC.Execute(ctx, usecase.CreateDirectInput{
			CreatorID:    who.UserID,
			TargetUserID: req.UserID,
			Username:     req.Username,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, conv)
	}
}
