package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-chatline/internal/pkg/chat/application/usecase"
)

// CreateGroupController handles the group creation endpoint
// One controller per endpoint
type CreateGroupController struct {
	UC      *usecase.CreateGroupUseCase
	Timeout time.Duration
}

func NewCreateGroupController(uc *usecase.CreateGroupUseCase, timeout time.Duration) *CreateGroupController {
	return &CreateGroupController{UC: uc, Timeout: timeout}
}

type createGroupRequest struct {
	Name string `json:"name"`
}

func (h *CreateGroupController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := caller(c)
		if !ok {
			return
		}
		var req createGroupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}

		ctx, cancel := withTimeout(c, h.Timeout)
		defer cancel()
		conv, err := h.UC.Execute(ctx, usecase.CreateGroupInput{CreatorID: who.UserID, Name: req.Name})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, conv)
	}
}
